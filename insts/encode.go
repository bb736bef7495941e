package insts

// Instruction word builders. The compressed-instruction expander is built on
// these, and tests use the named assemblers to author programs without an
// external toolchain.

func encR(funct7, rs2, rs1, funct3, rd, opcode uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encI(imm int32, rs1, funct3, rd, opcode uint32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encS(imm int32, rs2, rs1, funct3, opcode uint32) uint32 {
	u := uint32(imm)
	return u>>5&0x7f<<25 | rs2<<20 | rs1<<15 | funct3<<12 | u&0x1f<<7 | opcode
}

func encB(imm int32, rs2, rs1, funct3 uint32) uint32 {
	u := uint32(imm)
	return u>>12&0x1<<31 | u>>5&0x3f<<25 | rs2<<20 | rs1<<15 |
		funct3<<12 | u>>1&0xf<<8 | u>>11&0x1<<7 | 0x63
}

func encU(imm int32, rd, opcode uint32) uint32 {
	return uint32(imm)&0xfffff000 | rd<<7 | opcode
}

func encJ(imm int32, rd uint32) uint32 {
	u := uint32(imm)
	return u>>20&0x1<<31 | u>>1&0x3ff<<21 | u>>11&0x1<<20 |
		u>>12&0xff<<12 | rd<<7 | 0x6f
}

// Named assemblers for the subset used in tests and the boot examples.

func ADDI(rd, rs1 uint32, imm int32) uint32  { return encI(imm, rs1, 0, rd, 0x13) }
func ANDI(rd, rs1 uint32, imm int32) uint32  { return encI(imm, rs1, 7, rd, 0x13) }
func ORI(rd, rs1 uint32, imm int32) uint32   { return encI(imm, rs1, 6, rd, 0x13) }
func XORI(rd, rs1 uint32, imm int32) uint32  { return encI(imm, rs1, 4, rd, 0x13) }
func SLTI(rd, rs1 uint32, imm int32) uint32  { return encI(imm, rs1, 2, rd, 0x13) }
func SLTIU(rd, rs1 uint32, imm int32) uint32 { return encI(imm, rs1, 3, rd, 0x13) }
func SLLI(rd, rs1, shamt uint32) uint32      { return encI(int32(shamt), rs1, 1, rd, 0x13) }
func SRLI(rd, rs1, shamt uint32) uint32      { return encI(int32(shamt), rs1, 5, rd, 0x13) }
func SRAI(rd, rs1, shamt uint32) uint32      { return encI(int32(0x400|shamt), rs1, 5, rd, 0x13) }

func ADD(rd, rs1, rs2 uint32) uint32  { return encR(0x00, rs2, rs1, 0, rd, 0x33) }
func SUB(rd, rs1, rs2 uint32) uint32  { return encR(0x20, rs2, rs1, 0, rd, 0x33) }
func SLL(rd, rs1, rs2 uint32) uint32  { return encR(0x00, rs2, rs1, 1, rd, 0x33) }
func SLT(rd, rs1, rs2 uint32) uint32  { return encR(0x00, rs2, rs1, 2, rd, 0x33) }
func SLTU(rd, rs1, rs2 uint32) uint32 { return encR(0x00, rs2, rs1, 3, rd, 0x33) }
func XOR(rd, rs1, rs2 uint32) uint32  { return encR(0x00, rs2, rs1, 4, rd, 0x33) }
func SRL(rd, rs1, rs2 uint32) uint32  { return encR(0x00, rs2, rs1, 5, rd, 0x33) }
func SRA(rd, rs1, rs2 uint32) uint32  { return encR(0x20, rs2, rs1, 5, rd, 0x33) }
func OR(rd, rs1, rs2 uint32) uint32   { return encR(0x00, rs2, rs1, 6, rd, 0x33) }
func AND(rd, rs1, rs2 uint32) uint32  { return encR(0x00, rs2, rs1, 7, rd, 0x33) }

func MUL(rd, rs1, rs2 uint32) uint32    { return encR(0x01, rs2, rs1, 0, rd, 0x33) }
func MULH(rd, rs1, rs2 uint32) uint32   { return encR(0x01, rs2, rs1, 1, rd, 0x33) }
func MULHSU(rd, rs1, rs2 uint32) uint32 { return encR(0x01, rs2, rs1, 2, rd, 0x33) }
func MULHU(rd, rs1, rs2 uint32) uint32  { return encR(0x01, rs2, rs1, 3, rd, 0x33) }
func DIV(rd, rs1, rs2 uint32) uint32    { return encR(0x01, rs2, rs1, 4, rd, 0x33) }
func DIVU(rd, rs1, rs2 uint32) uint32   { return encR(0x01, rs2, rs1, 5, rd, 0x33) }
func REM(rd, rs1, rs2 uint32) uint32    { return encR(0x01, rs2, rs1, 6, rd, 0x33) }
func REMU(rd, rs1, rs2 uint32) uint32   { return encR(0x01, rs2, rs1, 7, rd, 0x33) }

func LB(rd, rs1 uint32, imm int32) uint32  { return encI(imm, rs1, 0, rd, 0x03) }
func LH(rd, rs1 uint32, imm int32) uint32  { return encI(imm, rs1, 1, rd, 0x03) }
func LW(rd, rs1 uint32, imm int32) uint32  { return encI(imm, rs1, 2, rd, 0x03) }
func LBU(rd, rs1 uint32, imm int32) uint32 { return encI(imm, rs1, 4, rd, 0x03) }
func LHU(rd, rs1 uint32, imm int32) uint32 { return encI(imm, rs1, 5, rd, 0x03) }
func SB(rs2, rs1 uint32, imm int32) uint32 { return encS(imm, rs2, rs1, 0, 0x23) }
func SH(rs2, rs1 uint32, imm int32) uint32 { return encS(imm, rs2, rs1, 1, 0x23) }
func SW(rs2, rs1 uint32, imm int32) uint32 { return encS(imm, rs2, rs1, 2, 0x23) }

func BEQ(rs1, rs2 uint32, off int32) uint32  { return encB(off, rs2, rs1, 0) }
func BNE(rs1, rs2 uint32, off int32) uint32  { return encB(off, rs2, rs1, 1) }
func BLT(rs1, rs2 uint32, off int32) uint32  { return encB(off, rs2, rs1, 4) }
func BGE(rs1, rs2 uint32, off int32) uint32  { return encB(off, rs2, rs1, 5) }
func BLTU(rs1, rs2 uint32, off int32) uint32 { return encB(off, rs2, rs1, 6) }
func BGEU(rs1, rs2 uint32, off int32) uint32 { return encB(off, rs2, rs1, 7) }

func LUI(rd uint32, imm int32) uint32   { return encU(imm, rd, 0x37) }
func AUIPC(rd uint32, imm int32) uint32 { return encU(imm, rd, 0x17) }
func JAL(rd uint32, off int32) uint32   { return encJ(off, rd) }
func JALR(rd, rs1 uint32, imm int32) uint32 {
	return encI(imm, rs1, 0, rd, 0x67)
}

func CSRRW(rd, csr, rs1 uint32) uint32  { return encI(int32(csr), rs1, 1, rd, 0x73) }
func CSRRS(rd, csr, rs1 uint32) uint32  { return encI(int32(csr), rs1, 2, rd, 0x73) }
func CSRRC(rd, csr, rs1 uint32) uint32  { return encI(int32(csr), rs1, 3, rd, 0x73) }
func CSRRWI(rd, csr, z uint32) uint32   { return encI(int32(csr), z, 5, rd, 0x73) }
func CSRRSI(rd, csr, z uint32) uint32   { return encI(int32(csr), z, 6, rd, 0x73) }
func CSRRCI(rd, csr, z uint32) uint32   { return encI(int32(csr), z, 7, rd, 0x73) }

func ECALL() uint32  { return 0x00000073 }
func EBREAK() uint32 { return 0x00100073 }
func MRET() uint32   { return 0x30200073 }
func NOP() uint32    { return NOPWord }
