package pipeline

import "github.com/brvlab/brv32p/insts"

// Forward selects where an execute-stage operand comes from.
type Forward int

// Forwarding sources, in priority order.
const (
	ForwardNone   Forward = iota // read latched register value
	ForwardMemory                // result of the instruction one stage ahead
	ForwardWriteback
)

// pendingResult reports whether an instruction's register value is not yet
// available at the end of execute. Loads produce in the memory stage, and
// CSR reads resolve there too, so neither may be forwarded out of the
// execute/memory latch.
func pendingResult(inst *insts.Instruction) bool {
	return inst.MemRead || inst.CSROp != insts.CSRNone
}

// ForwardFor resolves the forwarding source for one execute-stage source
// register against the two instructions ahead of it.
func ForwardFor(reg uint8, uses bool, mem *EXMEM, wb *MEMWB) Forward {
	if !uses || reg == 0 {
		return ForwardNone
	}
	if mem.Valid && mem.Inst.RegWrite && mem.Inst.Rd == reg &&
		!pendingResult(&mem.Inst) {
		return ForwardMemory
	}
	if wb.Valid && wb.Inst.RegWrite && wb.Inst.Rd == reg {
		return ForwardWriteback
	}
	return ForwardNone
}

// LoadUseHazard reports whether the decoded instruction needs a value that
// the execute-stage instruction only produces in the memory stage. Fetch and
// decode must hold for one tick and execute receives a bubble.
func LoadUseHazard(decoded *insts.Instruction, ex *IDEX) bool {
	if !ex.Valid || !ex.Inst.RegWrite || !pendingResult(&ex.Inst) {
		return false
	}
	rd := ex.Inst.Rd
	if rd == 0 {
		return false
	}
	return decoded.UsesRs1 && decoded.Rs1 == rd ||
		decoded.UsesRs2 && decoded.Rs2 == rd
}
