// Package cache implements the instruction and data caches. Both share a
// fixed geometry of 64 sets, 2 ways, and 4-word lines; tag, valid, and LRU
// state lives in an Akita cache directory, with line data held alongside.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Cache geometry, fixed for both caches.
const (
	NumSets      = 64
	NumWays      = 2
	WordsPerLine = 4
	LineBytes    = WordsPerLine * 4
)

// Statistics counts cache accesses. Misses count once per missing request,
// not once per retry while the fill is in flight.
type Statistics struct {
	Reads  uint64
	Writes uint64
	Hits   uint64
	Misses uint64
	Fills  uint64
}

// lineAddr returns the line-aligned address containing addr.
func lineAddr(addr uint32) uint32 {
	return addr &^ (LineBytes - 1)
}

// lineStore couples the directory's tag/valid/LRU bookkeeping with the line
// data arrays.
type lineStore struct {
	directory *akitacache.DirectoryImpl
	lines     [][WordsPerLine]uint32
}

func newLineStore() *lineStore {
	return &lineStore{
		directory: akitacache.NewDirectory(
			NumSets,
			NumWays,
			LineBytes,
			akitacache.NewLRUVictimFinder(),
		),
		lines: make([][WordsPerLine]uint32, NumSets*NumWays),
	}
}

func (s *lineStore) index(block *akitacache.Block) int {
	return block.SetID*NumWays + block.WayID
}

// lookup returns the valid block holding addr's line, refreshing LRU, or nil
// on a miss.
func (s *lineStore) lookup(addr uint32) *akitacache.Block {
	block := s.directory.Lookup(0, uint64(lineAddr(addr)))
	if block == nil || !block.IsValid {
		return nil
	}
	s.directory.Visit(block)
	return block
}

// readWord returns the word at addr from a valid block.
func (s *lineStore) readWord(block *akitacache.Block, addr uint32) uint32 {
	return s.lines[s.index(block)][addr/4%WordsPerLine]
}

// writeWord updates the word at addr in a valid block under a byte mask.
func (s *lineStore) writeWord(block *akitacache.Block, addr uint32, data uint32, mask uint8) {
	word := &s.lines[s.index(block)][addr/4%WordsPerLine]
	*word = mergeWord(*word, data, mask)
}

// install places a freshly filled line, evicting the set's LRU way, and
// marks the new line most recently used.
func (s *lineStore) install(addr uint32, words [WordsPerLine]uint32) *akitacache.Block {
	la := uint64(lineAddr(addr))
	victim := s.directory.FindVictim(la)
	victim.Tag = la
	victim.IsValid = true
	victim.IsDirty = false
	s.lines[s.index(victim)] = words
	s.directory.Visit(victim)
	return victim
}

func (s *lineStore) reset() {
	s.directory.Reset()
	for i := range s.lines {
		s.lines[i] = [WordsPerLine]uint32{}
	}
}

// mergeWord combines old and new word values under a byte mask.
func mergeWord(old, data uint32, mask uint8) uint32 {
	var merged uint32
	for i := uint(0); i < 4; i++ {
		lane := uint32(0xff) << (8 * i)
		if mask&(1<<i) != 0 {
			merged |= data & lane
		} else {
			merged |= old & lane
		}
	}
	return merged
}
