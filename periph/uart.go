package periph

// UART register offsets.
const (
	UARTTx     = 0x0
	UARTRx     = 0x4
	UARTStatus = 0x8
	UARTCtrl   = 0xc
)

// UART status bits.
const (
	UARTStatusTxReady = 1 << 0
	UARTStatusRxValid = 1 << 1
)

// UART control bits.
const (
	UARTCtrlRxIRQEnable = 1 << 0
)

// UART is a byte-stream port. Transmitted bytes accumulate for the host to
// collect; received bytes are queued by the host and popped one per RX read.
// The transmitter is always ready.
type UART struct {
	tx   []byte
	rx   []byte
	ctrl uint32
}

// NewUART creates a UART with empty queues.
func NewUART() *UART {
	return &UART{}
}

// ReadReg implements Peripheral. Reading RX consumes one queued byte.
func (u *UART) ReadReg(offset uint8) uint32 {
	switch offset {
	case UARTRx:
		if len(u.rx) == 0 {
			return 0
		}
		b := u.rx[0]
		u.rx = u.rx[1:]
		return uint32(b)
	case UARTStatus:
		status := uint32(UARTStatusTxReady)
		if len(u.rx) > 0 {
			status |= UARTStatusRxValid
		}
		return status
	case UARTCtrl:
		return u.ctrl
	}
	return 0
}

// WriteReg implements Peripheral.
func (u *UART) WriteReg(offset uint8, value uint32) {
	switch offset {
	case UARTTx:
		u.tx = append(u.tx, byte(value))
	case UARTCtrl:
		u.ctrl = value
	}
}

// IRQ reports the level of the UART's interrupt line: receive data pending
// with the receive interrupt enabled.
func (u *UART) IRQ() bool {
	return u.ctrl&UARTCtrlRxIRQEnable != 0 && len(u.rx) > 0
}

// Feed queues bytes for the guest to receive.
func (u *UART) Feed(data []byte) {
	u.rx = append(u.rx, data...)
}

// Output returns everything transmitted so far.
func (u *UART) Output() []byte { return u.tx }
