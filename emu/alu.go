package emu

import "github.com/brvlab/brv32p/insts"

// ALU evaluates a single-cycle integer operation. Shift amounts use only the
// low five bits of operand B.
func ALU(op insts.ALUOp, a, b uint32) uint32 {
	switch op {
	case insts.ALUAdd:
		return a + b
	case insts.ALUSub:
		return a - b
	case insts.ALUSll:
		return a << (b & 0x1f)
	case insts.ALUSrl:
		return a >> (b & 0x1f)
	case insts.ALUSra:
		return uint32(int32(a) >> (b & 0x1f))
	case insts.ALUSlt:
		if int32(a) < int32(b) {
			return 1
		}
		return 0
	case insts.ALUSltu:
		if a < b {
			return 1
		}
		return 0
	case insts.ALUXor:
		return a ^ b
	case insts.ALUOr:
		return a | b
	case insts.ALUAnd:
		return a & b
	case insts.ALUPassB:
		return b
	}
	return 0
}

// BranchTaken evaluates a conditional branch comparison.
func BranchTaken(cond insts.BranchCond, a, b uint32) bool {
	switch cond {
	case insts.BranchEQ:
		return a == b
	case insts.BranchNE:
		return a != b
	case insts.BranchLT:
		return int32(a) < int32(b)
	case insts.BranchGE:
		return int32(a) >= int32(b)
	case insts.BranchLTU:
		return a < b
	case insts.BranchGEU:
		return a >= b
	}
	return false
}
