package insts

// Field extraction helpers for the base 32-bit encoding.

func opcodeOf(w uint32) uint32 { return w & 0x7f }
func rdOf(w uint32) uint8      { return uint8(w >> 7 & 0x1f) }
func funct3Of(w uint32) uint32 { return w >> 12 & 0x7 }
func rs1Of(w uint32) uint8     { return uint8(w >> 15 & 0x1f) }
func rs2Of(w uint32) uint8     { return uint8(w >> 20 & 0x1f) }
func funct7Of(w uint32) uint32 { return w >> 25 & 0x7f }

func immI(w uint32) int32 { return int32(w) >> 20 }

func immS(w uint32) int32 {
	return int32(w)>>25<<5 | int32(w>>7&0x1f)
}

func immB(w uint32) int32 {
	imm := int32(w)>>31<<12 |
		int32(w>>7&0x1)<<11 |
		int32(w>>25&0x3f)<<5 |
		int32(w>>8&0xf)<<1
	return imm
}

func immU(w uint32) int32 { return int32(w & 0xfffff000) }

func immJ(w uint32) int32 {
	imm := int32(w)>>31<<20 |
		int32(w>>12&0xff)<<12 |
		int32(w>>20&0x1)<<11 |
		int32(w>>21&0x3ff)<<1
	return imm
}

// IsCompressed reports whether a fetched parcel starting with the given
// halfword is a 16-bit encoding. The two low bits of every 32-bit
// instruction are 0b11; anything else is compressed.
func IsCompressed(low uint16) bool {
	return low&0x3 != 0x3
}

// Decode translates an instruction word into its control bundle. Compressed
// encodings must be expanded with ExpandCompressed first; Decode assumes a
// full 32-bit word.
func Decode(w uint32) Instruction {
	inst := Instruction{Raw: w}

	switch opcodeOf(w) {
	case 0x37: // LUI
		inst.Rd = rdOf(w)
		inst.Imm = immU(w)
		inst.ALUOp = ALUPassB
		inst.BImmediate = true
		inst.RegWrite = true
	case 0x17: // AUIPC
		inst.Rd = rdOf(w)
		inst.Imm = immU(w)
		inst.ALUOp = ALUAdd
		inst.BImmediate = true
		inst.PCRelative = true
		inst.RegWrite = true
	case 0x6f: // JAL
		inst.Rd = rdOf(w)
		inst.Imm = immJ(w)
		inst.Jump = JumpJAL
		inst.RegWrite = true
		inst.WBSrc = WBLink
	case 0x67: // JALR
		if funct3Of(w) != 0 {
			inst.Illegal = true
			break
		}
		inst.Rd = rdOf(w)
		inst.Rs1 = rs1Of(w)
		inst.UsesRs1 = true
		inst.Imm = immI(w)
		inst.Jump = JumpJALR
		inst.RegWrite = true
		inst.WBSrc = WBLink
	case 0x63: // conditional branches
		decodeBranch(&inst, w)
	case 0x03: // loads
		decodeLoad(&inst, w)
	case 0x23: // stores
		decodeStore(&inst, w)
	case 0x13: // integer-immediate ALU
		decodeOpImm(&inst, w)
	case 0x33: // register-register ALU and M extension
		decodeOp(&inst, w)
	case 0x0f: // FENCE: ordering is trivial on a single in-order hart
		inst.ALUOp = ALUAdd
	case 0x73: // SYSTEM
		decodeSystem(&inst, w)
	default:
		inst.Illegal = true
	}

	if inst.Rd == 0 {
		inst.RegWrite = false
	}
	return inst
}

func decodeBranch(inst *Instruction, w uint32) {
	conds := [8]BranchCond{
		BranchEQ, BranchNE, BranchNone, BranchNone,
		BranchLT, BranchGE, BranchLTU, BranchGEU,
	}
	cond := conds[funct3Of(w)]
	if cond == BranchNone {
		inst.Illegal = true
		return
	}
	inst.Branch = cond
	inst.Rs1 = rs1Of(w)
	inst.Rs2 = rs2Of(w)
	inst.UsesRs1 = true
	inst.UsesRs2 = true
	inst.Imm = immB(w)
}

func decodeLoad(inst *Instruction, w uint32) {
	switch funct3Of(w) {
	case 0:
		inst.MemWidth = MemByte
	case 1:
		inst.MemWidth = MemHalf
	case 2:
		inst.MemWidth = MemWord
	case 4:
		inst.MemWidth = MemByte
		inst.MemUnsigned = true
	case 5:
		inst.MemWidth = MemHalf
		inst.MemUnsigned = true
	default:
		inst.Illegal = true
		return
	}
	inst.Rd = rdOf(w)
	inst.Rs1 = rs1Of(w)
	inst.UsesRs1 = true
	inst.Imm = immI(w)
	inst.BImmediate = true
	inst.MemRead = true
	inst.RegWrite = true
	inst.WBSrc = WBMem
}

func decodeStore(inst *Instruction, w uint32) {
	switch funct3Of(w) {
	case 0:
		inst.MemWidth = MemByte
	case 1:
		inst.MemWidth = MemHalf
	case 2:
		inst.MemWidth = MemWord
	default:
		inst.Illegal = true
		return
	}
	inst.Rs1 = rs1Of(w)
	inst.Rs2 = rs2Of(w)
	inst.UsesRs1 = true
	inst.UsesRs2 = true
	inst.Imm = immS(w)
	inst.BImmediate = true
	inst.MemWrite = true
}

func decodeOpImm(inst *Instruction, w uint32) {
	inst.Rd = rdOf(w)
	inst.Rs1 = rs1Of(w)
	inst.UsesRs1 = true
	inst.Imm = immI(w)
	inst.BImmediate = true
	inst.RegWrite = true

	switch funct3Of(w) {
	case 0:
		inst.ALUOp = ALUAdd
	case 1: // SLLI
		if funct7Of(w) != 0 {
			inst.Illegal = true
			return
		}
		inst.ALUOp = ALUSll
		inst.Imm &= 0x1f
	case 2:
		inst.ALUOp = ALUSlt
	case 3:
		inst.ALUOp = ALUSltu
	case 4:
		inst.ALUOp = ALUXor
	case 5: // SRLI / SRAI
		switch funct7Of(w) {
		case 0x00:
			inst.ALUOp = ALUSrl
		case 0x20:
			inst.ALUOp = ALUSra
		default:
			inst.Illegal = true
			return
		}
		inst.Imm &= 0x1f
	case 6:
		inst.ALUOp = ALUOr
	case 7:
		inst.ALUOp = ALUAnd
	}
}

func decodeOp(inst *Instruction, w uint32) {
	inst.Rd = rdOf(w)
	inst.Rs1 = rs1Of(w)
	inst.Rs2 = rs2Of(w)
	inst.UsesRs1 = true
	inst.UsesRs2 = true
	inst.RegWrite = true

	f3 := funct3Of(w)
	switch funct7Of(w) {
	case 0x00:
		inst.ALUOp = [8]ALUOp{
			ALUAdd, ALUSll, ALUSlt, ALUSltu,
			ALUXor, ALUSrl, ALUOr, ALUAnd,
		}[f3]
	case 0x20:
		switch f3 {
		case 0:
			inst.ALUOp = ALUSub
		case 5:
			inst.ALUOp = ALUSra
		default:
			inst.Illegal = true
		}
	case 0x01: // M extension
		inst.MulDiv = MulDivOp(f3) + OpMUL
		inst.WBSrc = WBMulDiv
	default:
		inst.Illegal = true
	}
}

func decodeSystem(inst *Instruction, w uint32) {
	f3 := funct3Of(w)
	if f3 == 0 {
		if rdOf(w) != 0 || rs1Of(w) != 0 {
			inst.Illegal = true
			return
		}
		switch w >> 20 {
		case 0x000:
			inst.ECall = true
		case 0x001:
			inst.EBreak = true
		case 0x302:
			inst.MRet = true
		default:
			inst.Illegal = true
		}
		return
	}

	var op CSROp
	switch f3 & 0x3 {
	case 1:
		op = CSRReadWrite
	case 2:
		op = CSRReadSet
	case 3:
		op = CSRReadClear
	default:
		inst.Illegal = true
		return
	}

	inst.CSROp = op
	inst.CSRAddr = uint16(w >> 20)
	inst.Rd = rdOf(w)
	inst.RegWrite = true
	inst.WBSrc = WBCsr
	if f3&0x4 != 0 {
		// Immediate form: the rs1 field is a 5-bit unsigned operand.
		inst.CSRImm = true
		inst.Imm = int32(rs1Of(w))
	} else {
		inst.Rs1 = rs1Of(w)
		inst.UsesRs1 = true
	}
}
