// Package emu implements the architectural state and functional units of the
// processor: register file, ALU, multiply/divide unit, and CSR file.
package emu

// RegisterFile holds the 32 general-purpose integer registers. x0 is
// hardwired to zero; writes to it are dropped.
type RegisterFile struct {
	regs [32]uint32
}

// NewRegisterFile creates a register file with all registers cleared.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{}
}

// Read returns the value of register r.
func (rf *RegisterFile) Read(r uint8) uint32 {
	return rf.regs[r]
}

// Write sets register r to value. Writes to x0 have no effect.
func (rf *RegisterFile) Write(r uint8, value uint32) {
	if r == 0 {
		return
	}
	rf.regs[r] = value
}

// Reset clears every register.
func (rf *RegisterFile) Reset() {
	rf.regs = [32]uint32{}
}
