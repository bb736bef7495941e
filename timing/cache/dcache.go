package cache

import (
	"github.com/brvlab/brv32p/insts"
	"github.com/brvlab/brv32p/timing/bus"
)

type dcacheState int

const (
	dIdle dcacheState = iota
	dFill
	dUncached
)

// DCache is the write-through data cache with a single-entry write buffer.
// Peripheral-region addresses bypass the line storage entirely: reads go out
// as uncached bus reads and writes go straight to the write buffer, so
// device registers are never served from stale cache state.
type DCache struct {
	store *lineStore
	arb   *bus.Arbiter
	stats Statistics

	state       dcacheState
	fillBase    uint32
	fillCount   int
	fillWords   [WordsPerLine]uint32
	outstanding bool

	uncachedAddr uint32
	uncachedData uint32
	uncachedDone bool

	wbufValid       bool
	wbufAddr        uint32
	wbufData        uint32
	wbufMask        uint8
	wbufOutstanding bool
}

// NewDCache creates a data cache with all lines invalid and the write buffer
// empty.
func NewDCache(arb *bus.Arbiter) *DCache {
	return &DCache{store: newLineStore(), arb: arb}
}

// Read services a load. ready is false while the access is blocked on a
// fill, an uncached bus read, or a draining write buffer; the memory stage
// repeats the request each tick until ready.
func (c *DCache) Read(addr uint32, width insts.MemWidth, unsigned bool) (value uint32, ready bool) {
	if bus.IsPeripheral(addr) {
		return c.readUncached(addr, width, unsigned)
	}

	block := c.store.lookup(addr)
	if block != nil {
		c.stats.Reads++
		c.stats.Hits++
		return extractValue(c.store.readWord(block, addr), addr, width, unsigned), true
	}

	c.startFill(addr, false)
	return 0, false
}

// Write services a store. The cache is write-through: a hit updates the
// line and enqueues the write buffer; a miss fills the line first and the
// repeated request then takes the hit path. ready is false while the write
// buffer is occupied or a fill is running.
func (c *DCache) Write(addr uint32, value uint32, width insts.MemWidth) (ready bool) {
	if c.wbufValid || c.state != dIdle {
		return false
	}

	data, mask := placeValue(addr, value, width)

	if bus.IsPeripheral(addr) {
		c.stats.Writes++
		c.enqueueWrite(addr&^3, data, mask)
		return true
	}

	block := c.store.lookup(addr)
	if block == nil {
		c.startFill(addr, true)
		return false
	}

	c.stats.Writes++
	c.stats.Hits++
	c.store.writeWord(block, addr, data, mask)
	c.enqueueWrite(addr&^3, data, mask)
	return true
}

// Tick drains the write buffer and advances any fill or uncached read by at
// most one bus word. Launched bus work always runs to completion, even when
// the instruction that caused it was flushed.
func (c *DCache) Tick() {
	c.tickWriteBuffer()

	switch c.state {
	case dFill:
		c.tickFill()
	case dUncached:
		c.tickUncached()
	}
}

// Stats returns the access counters.
func (c *DCache) Stats() Statistics { return c.stats }

// WriteBufferBusy reports whether a write is waiting to drain.
func (c *DCache) WriteBufferBusy() bool { return c.wbufValid }

// Reset invalidates every line, empties the write buffer, and abandons any
// fill bookkeeping.
func (c *DCache) Reset() {
	c.store.reset()
	c.state = dIdle
	c.fillCount = 0
	c.outstanding = false
	c.uncachedDone = false
	c.wbufValid = false
	c.wbufOutstanding = false
	c.stats = Statistics{}
}

func (c *DCache) readUncached(addr uint32, width insts.MemWidth, unsigned bool) (uint32, bool) {
	if c.uncachedDone {
		if c.uncachedAddr == addr&^3 {
			c.uncachedDone = false
			c.state = dIdle
			return extractValue(c.uncachedData, addr, width, unsigned), true
		}
		// Result of an access whose instruction was squashed. Discard it so
		// the new address can issue.
		c.uncachedDone = false
		c.state = dIdle
	}

	// Let the write buffer drain first so device reads observe preceding
	// device writes.
	if c.state == dIdle && !c.wbufValid {
		c.stats.Reads++
		c.stats.Misses++
		c.state = dUncached
		c.uncachedAddr = addr &^ 3
		c.outstanding = false
	}
	return 0, false
}

// startFill launches a line fill unless the cache is already occupied. A
// miss while the write buffer holds an entry must wait: fills and the write
// buffer are never active at the same time.
func (c *DCache) startFill(addr uint32, isWrite bool) {
	if c.state != dIdle || c.wbufValid {
		return
	}
	if isWrite {
		c.stats.Writes++
	} else {
		c.stats.Reads++
	}
	c.stats.Misses++
	c.state = dFill
	c.fillBase = lineAddr(addr)
	c.fillCount = 0
	c.outstanding = false
}

func (c *DCache) enqueueWrite(addr uint32, data uint32, mask uint8) {
	c.wbufValid = true
	c.wbufAddr = addr
	c.wbufData = data
	c.wbufMask = mask
	c.wbufOutstanding = false
}

func (c *DCache) tickWriteBuffer() {
	if !c.wbufValid {
		return
	}
	if c.wbufOutstanding {
		if c.arb.Response(bus.PortDataWrite).Valid {
			c.wbufValid = false
			c.wbufOutstanding = false
		}
		return
	}
	c.arb.Request(bus.PortDataWrite, bus.Transaction{
		Addr:  c.wbufAddr,
		Data:  c.wbufData,
		Mask:  c.wbufMask,
		Write: true,
	})
	c.wbufOutstanding = true
}

func (c *DCache) tickFill() {
	if c.outstanding {
		resp := c.arb.Response(bus.PortDataRead)
		if !resp.Valid {
			return
		}
		c.fillWords[c.fillCount] = resp.Data
		c.fillCount++
		c.outstanding = false
		if c.fillCount == WordsPerLine {
			c.store.install(c.fillBase, c.fillWords)
			c.stats.Fills++
			c.state = dIdle
			return
		}
	}

	c.arb.Request(bus.PortDataRead, bus.Transaction{
		Addr: c.fillBase + uint32(c.fillCount)*4,
	})
	c.outstanding = true
}

func (c *DCache) tickUncached() {
	if c.uncachedDone {
		return
	}
	if c.outstanding {
		resp := c.arb.Response(bus.PortDataRead)
		if resp.Valid {
			c.uncachedData = resp.Data
			c.uncachedDone = true
			c.outstanding = false
		}
		return
	}
	c.arb.Request(bus.PortDataRead, bus.Transaction{Addr: c.uncachedAddr})
	c.outstanding = true
}

// extractValue pulls the addressed sub-word out of a bus word and extends it
// to 32 bits.
func extractValue(word, addr uint32, width insts.MemWidth, unsigned bool) uint32 {
	switch width {
	case insts.MemHalf:
		half := uint16(word >> (addr & 2 * 8))
		if unsigned {
			return uint32(half)
		}
		return uint32(int32(int16(half)))
	case insts.MemByte:
		b := uint8(word >> (addr & 3 * 8))
		if unsigned {
			return uint32(b)
		}
		return uint32(int32(int8(b)))
	}
	return word
}

// placeValue shifts a store value into its byte lanes and builds the byte
// mask for the write.
func placeValue(addr, value uint32, width insts.MemWidth) (data uint32, mask uint8) {
	switch width {
	case insts.MemHalf:
		shift := addr & 2 * 8
		return value << shift, 0x3 << (addr & 2)
	case insts.MemByte:
		shift := addr & 3 * 8
		return value << shift, 1 << (addr & 3)
	}
	return value, 0xf
}
