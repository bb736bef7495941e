package cache

import (
	"github.com/brvlab/brv32p/insts"
	"github.com/brvlab/brv32p/timing/bus"
)

type fillState int

const (
	fillIdle fillState = iota
	fillActive
)

// ICache is the read-only instruction cache. Fetches are served in halfword
// parcels so compressed instructions can straddle word boundaries; a parcel
// whose two halves live in different lines may take two sequential fills.
type ICache struct {
	store *lineStore
	arb   *bus.Arbiter
	stats Statistics

	state       fillState
	fillBase    uint32
	fillCount   int
	fillWords   [WordsPerLine]uint32
	outstanding bool
}

// NewICache creates an instruction cache with all lines invalid.
func NewICache(arb *bus.Arbiter) *ICache {
	return &ICache{store: newLineStore(), arb: arb}
}

// Fetch looks up the instruction parcel at pc: the halfword at pc and, when
// that halfword opens a 32-bit encoding, the one at pc+2. ok is false while
// any needed line is missing; the caller retries until the fill lands.
func (c *ICache) Fetch(pc uint32) (low, high uint16, ok bool) {
	w, hit := c.word(pc)
	if !hit {
		c.miss(pc)
		return 0, 0, false
	}

	if pc&2 == 0 {
		c.stats.Reads++
		c.stats.Hits++
		return uint16(w), uint16(w >> 16), true
	}

	low = uint16(w >> 16)
	if insts.IsCompressed(low) {
		c.stats.Reads++
		c.stats.Hits++
		return low, 0, true
	}

	w2, hit2 := c.word(pc + 2)
	if !hit2 {
		c.miss(pc + 2)
		return 0, 0, false
	}
	c.stats.Reads++
	c.stats.Hits++
	return low, uint16(w2), true
}

// Tick advances an in-flight line fill by at most one bus word. A launched
// fill always runs to completion even if the fetch that caused it was
// flushed away.
func (c *ICache) Tick() {
	if c.state != fillActive {
		return
	}

	if c.outstanding {
		resp := c.arb.Response(bus.PortInstFetch)
		if !resp.Valid {
			return
		}
		c.fillWords[c.fillCount] = resp.Data
		c.fillCount++
		c.outstanding = false
		if c.fillCount == WordsPerLine {
			c.store.install(c.fillBase, c.fillWords)
			c.stats.Fills++
			c.state = fillIdle
			return
		}
	}

	c.arb.Request(bus.PortInstFetch, bus.Transaction{
		Addr: c.fillBase + uint32(c.fillCount)*4,
	})
	c.outstanding = true
}

// Stats returns the access counters.
func (c *ICache) Stats() Statistics { return c.stats }

// Reset invalidates every line and abandons any fill bookkeeping.
func (c *ICache) Reset() {
	c.store.reset()
	c.state = fillIdle
	c.fillCount = 0
	c.outstanding = false
	c.stats = Statistics{}
}

func (c *ICache) word(addr uint32) (uint32, bool) {
	block := c.store.lookup(addr)
	if block == nil {
		return 0, false
	}
	return c.store.readWord(block, addr), true
}

// miss launches a fill for addr's line unless one is already running. A
// request for the in-flight line simply waits; a request for a different
// line waits its turn, one fill at a time.
func (c *ICache) miss(addr uint32) {
	if c.state != fillIdle {
		return
	}
	c.stats.Reads++
	c.stats.Misses++
	c.state = fillActive
	c.fillBase = lineAddr(addr)
	c.fillCount = 0
}
