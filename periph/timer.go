package periph

// Timer register offsets.
const (
	TimerCount = 0x0
	TimerCmp   = 0x4
	TimerCtrl  = 0x8
)

// Timer control bits.
const (
	TimerCtrlEnable    = 1 << 0
	TimerCtrlIRQEnable = 1 << 1
)

// Timer is a free-running tick counter with a compare register. Its
// interrupt line is level-signaled: it stays asserted while the count has
// reached the compare value, until the guest rewinds the count or raises
// the compare.
type Timer struct {
	count uint32
	cmp   uint32
	ctrl  uint32
}

// NewTimer creates a stopped timer.
func NewTimer() *Timer {
	return &Timer{}
}

// Tick advances the counter when the timer is enabled.
func (t *Timer) Tick() {
	if t.ctrl&TimerCtrlEnable != 0 {
		t.count++
	}
}

// ReadReg implements Peripheral.
func (t *Timer) ReadReg(offset uint8) uint32 {
	switch offset {
	case TimerCount:
		return t.count
	case TimerCmp:
		return t.cmp
	case TimerCtrl:
		return t.ctrl
	}
	return 0
}

// WriteReg implements Peripheral.
func (t *Timer) WriteReg(offset uint8, value uint32) {
	switch offset {
	case TimerCount:
		t.count = value
	case TimerCmp:
		t.cmp = value
	case TimerCtrl:
		t.ctrl = value
	}
}

// IRQ reports the level of the timer's interrupt line.
func (t *Timer) IRQ() bool {
	return t.ctrl&TimerCtrlIRQEnable != 0 && t.count >= t.cmp
}
