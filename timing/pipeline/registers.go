// Package pipeline implements the five-stage in-order pipeline: fetch,
// decode, execute, memory, and writeback, with forwarding, speculation, and
// trap handling.
package pipeline

import "github.com/brvlab/brv32p/insts"

// IFID latches the fetched parcel between fetch and decode.
type IFID struct {
	Valid bool
	PC    uint32
	Low   uint16
	High  uint16

	// What fetch assumed about this instruction's control flow.
	PredTaken  bool
	PredTarget uint32
}

// IDEX latches the decoded instruction and its register reads between
// decode and execute.
type IDEX struct {
	Valid bool
	PC    uint32
	Inst  insts.Instruction

	RS1Val uint32
	RS2Val uint32

	PredTaken  bool
	PredTarget uint32
}

// EXMEM latches the execute result between execute and memory. Result holds
// the ALU output, the link address, or the multiply/divide result; for
// memory instructions it is the effective address.
type EXMEM struct {
	Valid bool
	PC    uint32
	Inst  insts.Instruction

	Result     uint32
	StoreVal   uint32
	CSROperand uint32
}

// MEMWB latches the value to commit between memory and writeback.
type MEMWB struct {
	Valid bool
	PC    uint32
	Inst  insts.Instruction

	WBValue uint32
}
