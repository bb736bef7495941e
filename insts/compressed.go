package insts

// RV32C expansion. Every supported compressed encoding maps onto exactly one
// base instruction, so the rest of the pipeline only ever sees 32-bit words.

func creg(f uint16) uint32 { return uint32(f&0x7) + 8 }

func bit(h uint16, n uint) int32 { return int32(h >> n & 1) }

// ExpandCompressed translates a 16-bit parcel into the equivalent 32-bit
// instruction word. ok is false for encodings outside RV32C's integer subset
// (including the all-zero halfword), which decode as illegal.
func ExpandCompressed(h uint16) (word uint32, ok bool) {
	funct3 := h >> 13 & 0x7

	switch h & 0x3 {
	case 0x0:
		return expandQ0(h, funct3)
	case 0x1:
		return expandQ1(h, funct3)
	case 0x2:
		return expandQ2(h, funct3)
	}
	return 0, false
}

func expandQ0(h, funct3 uint16) (uint32, bool) {
	switch funct3 {
	case 0x0: // C.ADDI4SPN
		if h == 0 {
			return 0, false
		}
		imm := bit(h, 12)<<5 | bit(h, 11)<<4 |
			bit(h, 10)<<9 | bit(h, 9)<<8 | bit(h, 8)<<7 | bit(h, 7)<<6 |
			bit(h, 6)<<2 | bit(h, 5)<<3
		if imm == 0 {
			return 0, false
		}
		return ADDI(creg(h>>2), 2, imm), true
	case 0x2: // C.LW
		imm := bit(h, 12)<<5 | bit(h, 11)<<4 | bit(h, 10)<<3 |
			bit(h, 6)<<2 | bit(h, 5)<<6
		return LW(creg(h>>2), creg(h>>7), imm), true
	case 0x6: // C.SW
		imm := bit(h, 12)<<5 | bit(h, 11)<<4 | bit(h, 10)<<3 |
			bit(h, 6)<<2 | bit(h, 5)<<6
		return SW(creg(h>>2), creg(h>>7), imm), true
	}
	return 0, false
}

func expandQ1(h, funct3 uint16) (uint32, bool) {
	rd := uint32(h >> 7 & 0x1f)
	imm6 := bit(h, 12)<<31>>26 | int32(h>>2&0x1f) // sext {h[12], h[6:2]}

	switch funct3 {
	case 0x0: // C.ADDI / C.NOP
		return ADDI(rd, rd, imm6), true
	case 0x1: // C.JAL
		return JAL(1, cjOffset(h)), true
	case 0x2: // C.LI
		return ADDI(rd, 0, imm6), true
	case 0x3:
		if rd == 2 { // C.ADDI16SP
			imm := bit(h, 12)<<31>>22 | bit(h, 6)<<4 | bit(h, 5)<<6 |
				bit(h, 4)<<8 | bit(h, 3)<<7 | bit(h, 2)<<5
			if imm == 0 {
				return 0, false
			}
			return ADDI(2, 2, imm), true
		}
		// C.LUI
		if imm6 == 0 {
			return 0, false
		}
		return LUI(rd, imm6<<12), true
	case 0x4:
		return expandQ1ALU(h)
	case 0x5: // C.J
		return JAL(0, cjOffset(h)), true
	case 0x6: // C.BEQZ
		return BEQ(creg(h>>7), 0, cbOffset(h)), true
	case 0x7: // C.BNEZ
		return BNE(creg(h>>7), 0, cbOffset(h)), true
	}
	return 0, false
}

func expandQ1ALU(h uint16) (uint32, bool) {
	rd := creg(h >> 7)
	switch h >> 10 & 0x3 {
	case 0x0: // C.SRLI
		if h>>12&1 != 0 {
			return 0, false
		}
		return SRLI(rd, rd, uint32(h>>2&0x1f)), true
	case 0x1: // C.SRAI
		if h>>12&1 != 0 {
			return 0, false
		}
		return SRAI(rd, rd, uint32(h>>2&0x1f)), true
	case 0x2: // C.ANDI
		imm := bit(h, 12)<<31>>26 | int32(h>>2&0x1f)
		return ANDI(rd, rd, imm), true
	case 0x3:
		if h>>12&1 != 0 {
			return 0, false
		}
		rs2 := creg(h >> 2)
		switch h >> 5 & 0x3 {
		case 0x0:
			return SUB(rd, rd, rs2), true
		case 0x1:
			return XOR(rd, rd, rs2), true
		case 0x2:
			return OR(rd, rd, rs2), true
		case 0x3:
			return AND(rd, rd, rs2), true
		}
	}
	return 0, false
}

func expandQ2(h, funct3 uint16) (uint32, bool) {
	rd := uint32(h >> 7 & 0x1f)
	rs2 := uint32(h >> 2 & 0x1f)

	switch funct3 {
	case 0x0: // C.SLLI
		if h>>12&1 != 0 {
			return 0, false
		}
		return SLLI(rd, rd, rs2), true
	case 0x2: // C.LWSP
		if rd == 0 {
			return 0, false
		}
		imm := bit(h, 12)<<5 | int32(h>>4&0x7)<<2 | int32(h>>2&0x3)<<6
		return LW(rd, 2, imm), true
	case 0x4:
		if h>>12&1 == 0 {
			if rs2 == 0 { // C.JR
				if rd == 0 {
					return 0, false
				}
				return JALR(0, rd, 0), true
			}
			return ADD(rd, 0, rs2), true // C.MV
		}
		if rs2 == 0 {
			if rd == 0 { // C.EBREAK
				return EBREAK(), true
			}
			return JALR(1, rd, 0), true // C.JALR
		}
		return ADD(rd, rd, rs2), true // C.ADD
	case 0x6: // C.SWSP
		imm := int32(h>>9&0xf)<<2 | int32(h>>7&0x3)<<6
		return SW(rs2, 2, imm), true
	}
	return 0, false
}

func cjOffset(h uint16) int32 {
	return bit(h, 12)<<31>>20 | bit(h, 11)<<4 | bit(h, 10)<<9 |
		bit(h, 9)<<8 | bit(h, 8)<<10 | bit(h, 7)<<6 | bit(h, 6)<<7 |
		bit(h, 5)<<3 | bit(h, 4)<<2 | bit(h, 3)<<1 | bit(h, 2)<<5
}

func cbOffset(h uint16) int32 {
	return bit(h, 12)<<31>>23 | bit(h, 11)<<4 | bit(h, 10)<<3 |
		bit(h, 6)<<7 | bit(h, 5)<<6 | bit(h, 4)<<2 | bit(h, 3)<<1 |
		bit(h, 2)<<5
}

// DecodeParcel decodes a fetch parcel. low is the halfword at the fetch PC
// and high the following halfword, which is only consumed for 32-bit
// encodings.
func DecodeParcel(low, high uint16) Instruction {
	if IsCompressed(low) {
		word, ok := ExpandCompressed(low)
		if !ok {
			return Instruction{Raw: uint32(low), Compressed: true, Illegal: true}
		}
		inst := Decode(word)
		inst.Compressed = true
		return inst
	}
	return Decode(uint32(high)<<16 | uint32(low))
}
