// Package insts provides RV32IMC instruction definitions and decoding.
package insts

// ALUOp selects the operation performed by the execute-stage ALU.
type ALUOp uint8

// ALU operation selectors.
const (
	ALUAdd ALUOp = iota
	ALUSub
	ALUSll
	ALUSrl
	ALUSra
	ALUSlt
	ALUSltu
	ALUXor
	ALUOr
	ALUAnd
	ALUPassB // operand B passes through unchanged (LUI)
)

// MemWidth is the access width of a load or store.
type MemWidth uint8

// Memory access widths.
const (
	MemWord MemWidth = iota
	MemHalf
	MemByte
)

// BranchCond is the comparison kind of a conditional branch.
type BranchCond uint8

// Conditional branch kinds. BranchNone marks a non-branch instruction.
const (
	BranchNone BranchCond = iota
	BranchEQ
	BranchNE
	BranchLT
	BranchGE
	BranchLTU
	BranchGEU
)

// JumpKind distinguishes unconditional jumps.
type JumpKind uint8

// Jump kinds. JumpNone marks a non-jump instruction.
const (
	JumpNone JumpKind = iota
	JumpJAL
	JumpJALR
)

// MulDivOp selects a multiply/divide unit operation.
type MulDivOp uint8

// Multiply/divide operations (M extension funct3 order).
const (
	MulDivNone MulDivOp = iota
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU
)

// IsDivide reports whether the operation uses the iterative divider.
func (op MulDivOp) IsDivide() bool {
	return op == OpDIV || op == OpDIVU || op == OpREM || op == OpREMU
}

// CSROp selects a CSR access operation.
type CSROp uint8

// CSR operations.
const (
	CSRNone CSROp = iota
	CSRReadWrite
	CSRReadSet
	CSRReadClear
)

// WBSource selects where the writeback value comes from.
type WBSource uint8

// Writeback sources.
const (
	WBAlu WBSource = iota
	WBMem
	WBLink // PC + instruction length (JAL/JALR)
	WBCsr
	WBMulDiv
)

// Instruction is the control bundle produced by decode. It carries every
// signal the later pipeline stages need, so the raw word is never
// re-inspected after the decode stage.
type Instruction struct {
	// Raw is the canonical 32-bit instruction word. For compressed
	// instructions this is the expanded form, not the fetched halfword.
	Raw uint32

	// Compressed reports whether the fetched encoding was 16 bits wide
	// (governs the PC increment of 2 vs 4).
	Compressed bool

	// Register indices.
	Rd  uint8
	Rs1 uint8
	Rs2 uint8

	// UsesRs1/UsesRs2 report whether the source registers are actually
	// read; hazard detection ignores indices that are not.
	UsesRs1 bool
	UsesRs2 bool

	// Imm is the sign-extended immediate for the instruction's class.
	Imm int32

	// ALU controls.
	ALUOp      ALUOp
	BImmediate bool // operand B is Imm instead of rs2
	PCRelative bool // operand A is the instruction's PC (AUIPC)

	// Memory request controls.
	MemRead     bool
	MemWrite    bool
	MemWidth    MemWidth
	MemUnsigned bool // zero-extend loaded value

	// Control flow.
	Branch BranchCond
	Jump   JumpKind

	// Multiply/divide.
	MulDiv MulDivOp

	// CSR access.
	CSROp   CSROp
	CSRAddr uint16
	CSRImm  bool // operand is the zero-extended rs1 field, not a register

	// Trap requests.
	Illegal bool
	ECall   bool
	EBreak  bool
	MRet    bool

	// Writeback.
	RegWrite bool
	WBSrc    WBSource
}

// Length returns the encoded instruction length in bytes.
func (i *Instruction) Length() uint32 {
	if i.Compressed {
		return 2
	}
	return 4
}

// IsControlFlow reports whether the instruction resolves a branch or jump
// in the execute stage.
func (i *Instruction) IsControlFlow() bool {
	return i.Branch != BranchNone || i.Jump != JumpNone
}

// NOPWord is the canonical no-op encoding (ADDI x0, x0, 0). Backing memory
// words not covered by a boot image read as this pattern, and flushed
// pipeline stages behave as if they held it.
const NOPWord uint32 = 0x00000013
