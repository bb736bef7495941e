// Package periph provides the peripheral bridge and the functional models
// of the GPIO, UART, and timer register banks behind it.
package periph

// Peripheral is one address-decoded register bank behind the bridge. Offsets
// are byte offsets within the peripheral's 256-byte window, always
// word-aligned by the bridge.
type Peripheral interface {
	ReadReg(offset uint8) uint32
	WriteReg(offset uint8, value uint32)
}

// Slot indices within the peripheral region, selected by address bits 10:8.
const (
	SlotGPIO  = 0
	SlotUART  = 1
	SlotTimer = 2

	numSlots = 8
)

// Bridge decodes peripheral-region bus accesses onto individual register
// banks. It satisfies the bus target contract; unpopulated slots read as
// zero and swallow writes.
type Bridge struct {
	slots [numSlots]Peripheral
}

// NewBridge creates a bridge with every slot empty.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach populates a slot.
func (b *Bridge) Attach(slot int, p Peripheral) {
	b.slots[slot] = p
}

// ReadWord services a bus read of a peripheral register.
func (b *Bridge) ReadWord(addr uint32) uint32 {
	p := b.slots[addr>>8&(numSlots-1)]
	if p == nil {
		return 0
	}
	return p.ReadReg(uint8(addr) &^ 3)
}

// WriteWord services a bus write of a peripheral register. Partial-word
// writes merge into the register's current value.
func (b *Bridge) WriteWord(addr uint32, data uint32, mask uint8) {
	p := b.slots[addr>>8&(numSlots-1)]
	if p == nil {
		return
	}
	offset := uint8(addr) &^ 3
	if mask != 0xf {
		old := p.ReadReg(offset)
		var merged uint32
		for i := uint(0); i < 4; i++ {
			lane := uint32(0xff) << (8 * i)
			if mask&(1<<i) != 0 {
				merged |= data & lane
			} else {
				merged |= old & lane
			}
		}
		data = merged
	}
	p.WriteReg(offset, data)
}
