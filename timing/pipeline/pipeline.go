package pipeline

import (
	"github.com/brvlab/brv32p/emu"
	"github.com/brvlab/brv32p/insts"
	"github.com/brvlab/brv32p/timing/cache"
)

// ResetVector is the PC established at reset.
const ResetVector uint32 = 0

// Statistics holds pipeline performance counters. A tick may count under at
// most one stall category; flushes count redirect events, not ticks.
type Statistics struct {
	// Cycles is the number of ticks simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// LoadUseStalls is the number of ticks fetch and decode held for a
	// load-use (or CSR-use) dependency.
	LoadUseStalls uint64
	// DivideStalls is the number of ticks execute held for the divider.
	DivideStalls uint64
	// MemStalls is the number of ticks the memory stage held for the data
	// cache.
	MemStalls uint64
	// FetchStalls is the number of ticks fetch waited on the instruction
	// cache.
	FetchStalls uint64
	// Flushes is the number of control-flow corrections (mispredicted
	// branches and jumps).
	Flushes uint64
	// TrapFlushes is the number of trap entries and returns.
	TrapFlushes uint64
}

// CPI returns the cycles per retired instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Stalls returns the total stalled ticks across all categories.
func (s Statistics) Stalls() uint64 {
	return s.LoadUseStalls + s.DivideStalls + s.MemStalls + s.FetchStalls
}

// Pipeline is the five-stage execution engine. Each Tick evaluates the
// stages against the previous tick's latched contents and commits the next
// latch values atomically at the end, so no stage ever observes a same-tick
// write.
type Pipeline struct {
	icache *cache.ICache
	dcache *cache.DCache
	regs   *emu.RegisterFile
	csr    *emu.CSRFile
	mdu    *emu.MulDivUnit
	pred   *BranchPredictor

	pc    uint32
	ifid  IFID
	idex  IDEX
	exmem EXMEM
	memwb MEMWB

	stats Statistics

	// Divide-in-flight bookkeeping. The result is latched here because the
	// unit's done pulse lasts one tick but the execute stage may be held by
	// a memory stall when it fires.
	divIssued bool
	divDone   bool
	divResult uint32
}

// New creates a pipeline over the given caches and functional units.
func New(ic *cache.ICache, dc *cache.DCache, regs *emu.RegisterFile,
	csr *emu.CSRFile, mdu *emu.MulDivUnit, pred *BranchPredictor) *Pipeline {
	return &Pipeline{
		icache: ic,
		dcache: dc,
		regs:   regs,
		csr:    csr,
		mdu:    mdu,
		pred:   pred,
		pc:     ResetVector,
	}
}

// PC returns the current fetch program counter.
func (p *Pipeline) PC() uint32 { return p.pc }

// Stats returns the performance counters.
func (p *Pipeline) Stats() Statistics { return p.stats }

// Reset returns the pipeline to its power-on state: PC at the reset vector
// and every stage latch a bubble.
func (p *Pipeline) Reset() {
	p.pc = ResetVector
	p.ifid = IFID{}
	p.idex = IDEX{}
	p.exmem = EXMEM{}
	p.memwb = MEMWB{}
	p.divIssued = false
	p.divDone = false
	p.stats = Statistics{}
}

type memOutput struct {
	next     MEMWB
	stall    bool
	trap     bool
	mret     bool
	redirect uint32
}

type exOutput struct {
	next       EXMEM
	stall      bool
	mispredict bool
	redirect   uint32

	trainValid  bool
	trainPC     uint32
	trainTaken  bool
	trainTarget uint32
}

// Tick advances the pipeline by one tick. Stage precedence: structural
// hazard (divide busy) over data hazard (load-use) over control hazard, with
// a control-flow correction flushing decode and execute regardless of any
// stall decision for them.
func (p *Pipeline) Tick() {
	p.stats.Cycles++

	p.mdu.Tick()
	if p.divIssued && p.mdu.Done() {
		p.divResult = p.mdu.Result()
		p.divDone = true
	}

	prevIFID := p.ifid
	prevIDEX := p.idex
	prevEXMEM := p.exmem
	prevMEMWB := p.memwb

	p.writeback(&prevMEMWB)

	mem := p.memory(&prevEXMEM)
	squashEX := mem.trap || mem.mret

	ex := p.execute(&prevIDEX, &prevEXMEM, &prevMEMWB, squashEX, mem.stall)

	redirect := mem.trap || mem.mret || ex.mispredict
	stall := mem.stall || ex.stall

	// Decode, and with it the load-use check against the instruction now
	// leaving for execute.
	var nextIDEX IDEX
	loadUse := false
	if prevIFID.Valid {
		decoded := insts.DecodeParcel(prevIFID.Low, prevIFID.High)
		loadUse = LoadUseHazard(&decoded, &prevIDEX)
		nextIDEX = IDEX{
			Valid:      true,
			PC:         prevIFID.PC,
			Inst:       decoded,
			RS1Val:     p.regs.Read(decoded.Rs1),
			RS2Val:     p.regs.Read(decoded.Rs2),
			PredTaken:  prevIFID.PredTaken,
			PredTarget: prevIFID.PredTarget,
		}
	}

	switch {
	case mem.trap || mem.mret:
		p.stats.TrapFlushes++
	case ex.mispredict:
		p.stats.Flushes++
	}
	switch {
	case mem.stall:
		p.stats.MemStalls++
	case ex.stall:
		p.stats.DivideStalls++
	case loadUse && !redirect:
		p.stats.LoadUseStalls++
	}

	// Fetch runs only when its latch will actually accept the parcel.
	var nextIFID IFID
	nextPC := p.pc
	if !redirect && !stall && !loadUse {
		nextIFID, nextPC = p.fetch()
	}

	// Commit all latches.
	if mem.stall {
		p.memwb = MEMWB{}
	} else {
		p.memwb = mem.next
	}

	switch {
	case mem.stall:
		// hold
	case ex.stall || squashEX:
		p.exmem = EXMEM{}
	default:
		p.exmem = ex.next
	}

	switch {
	case redirect:
		p.idex = IDEX{}
	case stall:
		// hold
	case loadUse:
		p.idex = IDEX{}
	default:
		p.idex = nextIDEX
	}

	switch {
	case redirect:
		p.ifid = IFID{}
	case stall || loadUse:
		// hold
	default:
		p.ifid = nextIFID
	}

	switch {
	case mem.trap || mem.mret:
		p.pc = mem.redirect
	case ex.mispredict:
		p.pc = ex.redirect
	case stall || loadUse:
		// hold
	default:
		p.pc = nextPC
	}

	// Predictor training lands after this tick's fetch has predicted, so a
	// resolution becomes visible one tick later.
	if ex.trainValid {
		p.pred.Update(ex.trainPC, ex.trainTaken, ex.trainTarget)
	}
}

func (p *Pipeline) writeback(wb *MEMWB) {
	if !wb.Valid {
		return
	}
	if wb.Inst.RegWrite {
		p.regs.Write(wb.Inst.Rd, wb.WBValue)
	}
	p.stats.Instructions++
	p.csr.InstructionRetired()
}

// memory processes the instruction in the memory stage: trap detection,
// data-cache access, and CSR access. Trap causes rank illegal over
// environment-call over breakpoint over pending interrupt; entering a trap
// suppresses the instruction's writeback and CSR side effects.
func (p *Pipeline) memory(m *EXMEM) memOutput {
	var out memOutput
	if !m.Valid {
		return out
	}
	inst := &m.Inst

	var cause, tval uint32
	trap := true
	switch {
	case inst.Illegal:
		cause, tval = emu.CauseIllegal, inst.Raw
	case inst.ECall:
		cause = emu.CauseECall
	case inst.EBreak:
		cause = emu.CauseBreak
	default:
		cause, trap = p.csr.PendingInterrupt()
	}
	if trap {
		out.trap = true
		out.redirect = p.csr.TakeTrap(cause, m.PC, tval)
		return out
	}

	if inst.MRet {
		out.mret = true
		out.redirect = p.csr.Return()
	}

	wbValue := m.Result
	switch {
	case inst.MemRead:
		value, ready := p.dcache.Read(m.Result, inst.MemWidth, inst.MemUnsigned)
		if !ready {
			out.stall = true
			return out
		}
		wbValue = value
	case inst.MemWrite:
		if !p.dcache.Write(m.Result, m.StoreVal, inst.MemWidth) {
			out.stall = true
			return out
		}
	case inst.CSROp != insts.CSRNone:
		wbValue = p.csr.Apply(inst.CSROp, inst.CSRAddr, m.CSROperand)
	}

	out.next = MEMWB{Valid: true, PC: m.PC, Inst: *inst, WBValue: wbValue}
	return out
}

// execute processes the instruction in the execute stage: operand
// forwarding, ALU/multiply/divide evaluation, and branch resolution. It does
// nothing during a memory stall (it will re-run next tick) and squashes
// without side effects when the memory stage redirects.
func (p *Pipeline) execute(e *IDEX, fwdMem *EXMEM, fwdWB *MEMWB,
	squash, memStall bool) exOutput {
	var out exOutput

	if squash {
		if p.divIssued && !p.divDone {
			p.mdu.Cancel()
		}
		p.divIssued = false
		p.divDone = false
		return out
	}
	if !e.Valid || memStall {
		return out
	}

	inst := &e.Inst
	rs1 := p.operand(inst.Rs1, inst.UsesRs1, e.RS1Val, fwdMem, fwdWB)
	rs2 := p.operand(inst.Rs2, inst.UsesRs2, e.RS2Val, fwdMem, fwdWB)

	result, stalled := p.computeResult(e, inst, rs1, rs2)
	if stalled {
		out.stall = true
		return out
	}

	// Resolve the actual control-flow outcome and compare it with what
	// fetch assumed.
	taken := false
	var target uint32
	switch {
	case inst.Jump == insts.JumpJAL:
		taken = true
		target = e.PC + uint32(inst.Imm)
	case inst.Jump == insts.JumpJALR:
		taken = true
		target = (rs1 + uint32(inst.Imm)) &^ 1
	case inst.Branch != insts.BranchNone:
		taken = emu.BranchTaken(inst.Branch, rs1, rs2)
		target = e.PC + uint32(inst.Imm)
	}

	mispredict := taken != e.PredTaken ||
		(taken && e.PredTaken && target != e.PredTarget)
	if mispredict {
		out.mispredict = true
		if taken {
			out.redirect = target
		} else {
			out.redirect = e.PC + inst.Length()
		}
	}

	if inst.IsControlFlow() {
		out.trainValid = true
		out.trainPC = e.PC
		out.trainTaken = taken
		out.trainTarget = target
	}

	csrOperand := rs1
	if inst.CSRImm {
		csrOperand = uint32(inst.Imm)
	}

	out.next = EXMEM{
		Valid:      true,
		PC:         e.PC,
		Inst:       *inst,
		Result:     result,
		StoreVal:   rs2,
		CSROperand: csrOperand,
	}
	return out
}

// computeResult produces the execute-stage result value. stalled is true
// while a divide is in flight.
func (p *Pipeline) computeResult(e *IDEX, inst *insts.Instruction,
	rs1, rs2 uint32) (result uint32, stalled bool) {
	if inst.MulDiv != insts.MulDivNone {
		if !inst.MulDiv.IsDivide() {
			return emu.Multiply(inst.MulDiv, rs1, rs2), false
		}
		if !p.divIssued {
			p.mdu.Start(inst.MulDiv, rs1, rs2)
			p.divIssued = true
			return 0, true
		}
		if !p.divDone {
			return 0, true
		}
		p.divIssued = false
		p.divDone = false
		return p.divResult, false
	}

	if inst.WBSrc == insts.WBLink {
		return e.PC + inst.Length(), false
	}

	a := rs1
	if inst.PCRelative {
		a = e.PC
	}
	b := rs2
	if inst.BImmediate {
		b = uint32(inst.Imm)
	}
	return emu.ALU(inst.ALUOp, a, b), false
}

func (p *Pipeline) operand(reg uint8, uses bool, latched uint32,
	fwdMem *EXMEM, fwdWB *MEMWB) uint32 {
	switch ForwardFor(reg, uses, fwdMem, fwdWB) {
	case ForwardMemory:
		return fwdMem.Result
	case ForwardWriteback:
		return fwdWB.WBValue
	}
	return latched
}

// fetch asks the instruction cache for the parcel at the current PC and
// forms the next sequential or predicted PC. A missing line yields a bubble
// with the PC held for retry.
func (p *Pipeline) fetch() (IFID, uint32) {
	predTaken, predTarget, targetKnown := p.pred.Predict(p.pc)

	low, high, ok := p.icache.Fetch(p.pc)
	if !ok {
		p.stats.FetchStalls++
		return IFID{}, p.pc
	}

	length := uint32(4)
	if insts.IsCompressed(low) {
		length = 2
	}

	effective := predTaken && targetKnown
	next := p.pc + length
	if effective {
		next = predTarget
	}

	return IFID{
		Valid:      true,
		PC:         p.pc,
		Low:        low,
		High:       high,
		PredTaken:  effective,
		PredTarget: predTarget,
	}, next
}
