// Package core assembles the full system: pipeline, caches, bus, backing
// memory, and peripherals, advanced in lockstep one tick at a time.
package core

import (
	"github.com/brvlab/brv32p/emu"
	"github.com/brvlab/brv32p/periph"
	"github.com/brvlab/brv32p/timing/bus"
	"github.com/brvlab/brv32p/timing/cache"
	"github.com/brvlab/brv32p/timing/pipeline"
)

// Memory map bases.
const (
	CodeBase   uint32 = 0x00000000
	DataBase   uint32 = 0x10000000
	PeriphBase uint32 = 0x20000000
)

// System is the complete simulated machine.
type System struct {
	Memory  *bus.Memory
	Arbiter *bus.Arbiter
	ICache  *cache.ICache
	DCache  *cache.DCache

	Regs *emu.RegisterFile
	CSR  *emu.CSRFile
	MDU  *emu.MulDivUnit

	Predictor *pipeline.BranchPredictor
	Pipeline  *pipeline.Pipeline

	Bridge *periph.Bridge
	GPIO   *periph.GPIO
	UART   *periph.UART
	Timer  *periph.Timer
}

// NewSystem wires up a machine in its reset state.
func NewSystem() *System {
	s := &System{
		Memory: bus.NewMemory(),
		Regs:   emu.NewRegisterFile(),
		CSR:    emu.NewCSRFile(),
		MDU:    emu.NewMulDivUnit(),
		GPIO:   periph.NewGPIO(),
		UART:   periph.NewUART(),
		Timer:  periph.NewTimer(),
		Bridge: periph.NewBridge(),
	}

	s.Bridge.Attach(periph.SlotGPIO, s.GPIO)
	s.Bridge.Attach(periph.SlotUART, s.UART)
	s.Bridge.Attach(periph.SlotTimer, s.Timer)

	s.Arbiter = bus.NewArbiter(s.Memory, s.Bridge)
	s.ICache = cache.NewICache(s.Arbiter)
	s.DCache = cache.NewDCache(s.Arbiter)
	s.Predictor = pipeline.NewBranchPredictor()
	s.Pipeline = pipeline.New(s.ICache, s.DCache, s.Regs, s.CSR, s.MDU,
		s.Predictor)

	return s
}

// LoadImage places a boot image in backing memory.
func (s *System) LoadImage(base uint32, words []uint32) {
	s.Memory.Load(base, words)
}

// Tick advances the whole machine by one tick. Peripherals and interrupt
// sampling go first so the pipeline's memory stage sees this tick's line
// levels; the arbiter precedes the caches so a completed bus transaction is
// consumed the tick it lands.
func (s *System) Tick() {
	s.Timer.Tick()
	s.CSR.SetInterruptLines(s.UART.IRQ(), s.Timer.IRQ())

	s.Arbiter.Tick()
	s.ICache.Tick()
	s.DCache.Tick()

	s.Pipeline.Tick()
	s.CSR.CycleTick()
}

// Stats returns the pipeline's performance counters.
func (s *System) Stats() pipeline.Statistics {
	return s.Pipeline.Stats()
}

// Run advances the machine by n ticks.
func (s *System) Run(n uint64) {
	for i := uint64(0); i < n; i++ {
		s.Tick()
	}
}

// Reset returns every component to its power-on state. Backing memory
// contents survive, matching a hardware reset line.
func (s *System) Reset() {
	s.Regs.Reset()
	s.CSR.Reset()
	s.MDU.Cancel()
	s.Arbiter.Reset()
	s.ICache.Reset()
	s.DCache.Reset()
	s.Predictor.Reset()
	s.Pipeline.Reset()
}
