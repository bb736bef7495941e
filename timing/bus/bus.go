// Package bus implements the shared memory bus: a fixed-priority arbiter
// over the cache request ports, the word-addressable backing memory, and the
// routing between the memory and peripheral address regions.
package bus

// Port identifies a bus master. The order is the arbitration priority.
type Port int

// Bus master ports, highest priority first.
const (
	PortDataWrite Port = iota
	PortDataRead
	PortInstFetch
	NumPorts
)

// Transaction is one bus request. Address, data, and mask are latched by the
// arbiter at acceptance and stay fixed until the destination responds.
type Transaction struct {
	Addr  uint32
	Data  uint32
	Mask  uint8 // byte lanes written, bit 0 = lowest byte
	Write bool
}

// Response carries a destination's answer back to the requesting master.
// Valid holds for exactly one tick.
type Response struct {
	Valid bool
	Data  uint32
}

// Target is a bus destination: the backing memory or the peripheral bridge.
// Accesses complete combinationally; the arbiter provides the one-tick
// response latency.
type Target interface {
	ReadWord(addr uint32) uint32
	WriteWord(addr uint32, data uint32, mask uint8)
}

// IsPeripheral reports whether an address decodes to the peripheral region
// (top nibble 2) rather than unified memory.
func IsPeripheral(addr uint32) bool {
	return addr>>28 == 0x2
}
