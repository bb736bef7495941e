package bus

import "github.com/brvlab/brv32p/insts"

// Memory is the word-addressable backing store. Words never written read as
// the no-op instruction pattern, so the pipeline keeps executing harmlessly
// past the end of a boot image.
type Memory struct {
	words map[uint32]uint32
}

// NewMemory creates an empty backing memory.
func NewMemory() *Memory {
	return &Memory{words: make(map[uint32]uint32)}
}

// ReadWord returns the word at the aligned address.
func (m *Memory) ReadWord(addr uint32) uint32 {
	if w, ok := m.words[addr&^3]; ok {
		return w
	}
	return insts.NOPWord
}

// WriteWord stores data at the aligned address under the given byte mask.
func (m *Memory) WriteWord(addr uint32, data uint32, mask uint8) {
	addr &^= 3
	old := m.ReadWord(addr)
	var merged uint32
	for i := uint(0); i < 4; i++ {
		lane := uint32(0xff) << (8 * i)
		if mask&(1<<i) != 0 {
			merged |= data & lane
		} else {
			merged |= old & lane
		}
	}
	m.words[addr] = merged
}

// Load copies a boot image into memory starting at base.
func (m *Memory) Load(base uint32, words []uint32) {
	for i, w := range words {
		m.words[base&^3+uint32(i)*4] = w
	}
}
