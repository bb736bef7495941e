package emu

import "github.com/brvlab/brv32p/insts"

// Machine-mode CSR addresses.
const (
	CSRMStatus   uint16 = 0x300
	CSRMIE       uint16 = 0x304
	CSRMTVec     uint16 = 0x305
	CSRMEPC      uint16 = 0x341
	CSRMCause    uint16 = 0x342
	CSRMTVal     uint16 = 0x343
	CSRMIP       uint16 = 0x344
	CSRMCycle    uint16 = 0xb00
	CSRMInstRet  uint16 = 0xb02
	CSRMCycleH   uint16 = 0xb80
	CSRMInstRetH uint16 = 0xb82
)

// mstatus bit positions.
const (
	mstatusMIE  uint32 = 1 << 3
	mstatusMPIE uint32 = 1 << 7
)

// Interrupt numbers as they appear in mie/mip and in trap causes.
const (
	IntTimer uint32 = 7
	IntIO    uint32 = 11
)

// Trap cause values.
const (
	CauseIllegal   uint32 = 2
	CauseBreak     uint32 = 3
	CauseECall     uint32 = 11
	CauseInterrupt uint32 = 0x80000000
)

// CSRFile holds the machine-mode control and status registers. It is read
// every tick for interrupt evaluation and mutated by explicit CSR
// instructions and by trap entry/return.
type CSRFile struct {
	mstatus uint32
	mie     uint32
	mtvec   uint32
	mepc    uint32
	mcause  uint32
	mtval   uint32
	mip     uint32

	cycles  uint64
	retired uint64
}

// NewCSRFile creates a CSR file in its reset state (all zero).
func NewCSRFile() *CSRFile {
	return &CSRFile{}
}

// Reset zeroes every register and counter.
func (c *CSRFile) Reset() {
	*c = CSRFile{}
}

// Read returns the value of a CSR. Unimplemented addresses read as zero.
func (c *CSRFile) Read(addr uint16) uint32 {
	switch addr {
	case CSRMStatus:
		return c.mstatus
	case CSRMIE:
		return c.mie
	case CSRMTVec:
		return c.mtvec
	case CSRMEPC:
		return c.mepc
	case CSRMCause:
		return c.mcause
	case CSRMTVal:
		return c.mtval
	case CSRMIP:
		return c.mip
	case CSRMCycle:
		return uint32(c.cycles)
	case CSRMCycleH:
		return uint32(c.cycles >> 32)
	case CSRMInstRet:
		return uint32(c.retired)
	case CSRMInstRetH:
		return uint32(c.retired >> 32)
	}
	return 0
}

func (c *CSRFile) write(addr uint16, value uint32) {
	switch addr {
	case CSRMStatus:
		c.mstatus = value
	case CSRMIE:
		c.mie = value
	case CSRMTVec:
		c.mtvec = value
	case CSRMEPC:
		c.mepc = value &^ 1
	case CSRMCause:
		c.mcause = value
	case CSRMTVal:
		c.mtval = value
	case CSRMIP:
		// Level-signaled bits track the interrupt lines; software writes
		// cannot latch them.
	case CSRMCycle:
		c.cycles = c.cycles&^0xffffffff | uint64(value)
	case CSRMCycleH:
		c.cycles = c.cycles&0xffffffff | uint64(value)<<32
	case CSRMInstRet:
		c.retired = c.retired&^0xffffffff | uint64(value)
	case CSRMInstRetH:
		c.retired = c.retired&0xffffffff | uint64(value)<<32
	}
}

// Apply performs a read-modify-write CSR access and returns the old value.
// Set/clear operations with a zero operand do not write, matching the ISA's
// side-effect rule.
func (c *CSRFile) Apply(op insts.CSROp, addr uint16, operand uint32) uint32 {
	old := c.Read(addr)
	switch op {
	case insts.CSRReadWrite:
		c.write(addr, operand)
	case insts.CSRReadSet:
		if operand != 0 {
			c.write(addr, old|operand)
		}
	case insts.CSRReadClear:
		if operand != 0 {
			c.write(addr, old&^operand)
		}
	}
	return old
}

// CycleTick advances the free-running cycle counter.
func (c *CSRFile) CycleTick() {
	c.cycles++
}

// InstructionRetired advances the retired-instruction counter.
func (c *CSRFile) InstructionRetired() {
	c.retired++
}

// Cycles returns the current cycle count.
func (c *CSRFile) Cycles() uint64 { return c.cycles }

// Retired returns the retired-instruction count.
func (c *CSRFile) Retired() uint64 { return c.retired }

// SetInterruptLines samples the level-signaled interrupt inputs into the
// pending mask.
func (c *CSRFile) SetInterruptLines(io, timer bool) {
	c.mip = 0
	if io {
		c.mip |= 1 << IntIO
	}
	if timer {
		c.mip |= 1 << IntTimer
	}
}

// PendingInterrupt reports whether an enabled interrupt is pending and, if
// so, its trap cause. The I/O line outranks the timer line.
func (c *CSRFile) PendingInterrupt() (cause uint32, pending bool) {
	if c.mstatus&mstatusMIE == 0 {
		return 0, false
	}
	active := c.mip & c.mie
	if active&(1<<IntIO) != 0 {
		return CauseInterrupt | IntIO, true
	}
	if active&(1<<IntTimer) != 0 {
		return CauseInterrupt | IntTimer, true
	}
	return 0, false
}

// TakeTrap records a trap's cause, return address, and trap value, swaps the
// interrupt-enable bit into its saved copy, and returns the handler vector.
func (c *CSRFile) TakeTrap(cause, epc, tval uint32) (vector uint32) {
	c.mcause = cause
	c.mepc = epc &^ 1
	c.mtval = tval
	if c.mstatus&mstatusMIE != 0 {
		c.mstatus |= mstatusMPIE
	} else {
		c.mstatus &^= mstatusMPIE
	}
	c.mstatus &^= mstatusMIE
	return c.mtvec
}

// Return undoes a trap entry's interrupt-enable swap and returns the saved
// resume address.
func (c *CSRFile) Return() (epc uint32) {
	if c.mstatus&mstatusMPIE != 0 {
		c.mstatus |= mstatusMIE
	} else {
		c.mstatus &^= mstatusMIE
	}
	c.mstatus |= mstatusMPIE
	return c.mepc
}
