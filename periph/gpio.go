package periph

// GPIO register offsets.
const (
	GPIOOut = 0x0
	GPIOIn  = 0x4
	GPIODir = 0x8
)

// GPIO is a 32-line general-purpose I/O bank. Output and direction latches
// are guest-writable; the input lines are driven from outside the core.
type GPIO struct {
	out uint32
	in  uint32
	dir uint32
}

// NewGPIO creates a GPIO bank with all latches cleared.
func NewGPIO() *GPIO {
	return &GPIO{}
}

// ReadReg implements Peripheral.
func (g *GPIO) ReadReg(offset uint8) uint32 {
	switch offset {
	case GPIOOut:
		return g.out
	case GPIOIn:
		return g.in
	case GPIODir:
		return g.dir
	}
	return 0
}

// WriteReg implements Peripheral.
func (g *GPIO) WriteReg(offset uint8, value uint32) {
	switch offset {
	case GPIOOut:
		g.out = value
	case GPIODir:
		g.dir = value
	}
}

// Output returns the current output latch.
func (g *GPIO) Output() uint32 { return g.out }

// SetInput drives the input lines.
func (g *GPIO) SetInput(value uint32) { g.in = value }
