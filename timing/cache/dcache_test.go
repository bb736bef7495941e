package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/brvlab/brv32p/insts"
	"github.com/brvlab/brv32p/periph"
	"github.com/brvlab/brv32p/timing/bus"
	"github.com/brvlab/brv32p/timing/cache"
)

var _ = Describe("DCache", func() {
	var (
		mem    *bus.Memory
		bridge *periph.Bridge
		gpio   *periph.GPIO
		arb    *bus.Arbiter
		dc     *cache.DCache
	)

	BeforeEach(func() {
		mem = bus.NewMemory()
		gpio = periph.NewGPIO()
		bridge = periph.NewBridge()
		bridge.Attach(periph.SlotGPIO, gpio)
		arb = bus.NewArbiter(mem, bridge)
		dc = cache.NewDCache(arb)
	})

	tick := func() {
		arb.Tick()
		dc.Tick()
	}

	readEventually := func(addr uint32, width insts.MemWidth, unsigned bool) uint32 {
		for i := 0; i < 100; i++ {
			if v, ready := dc.Read(addr, width, unsigned); ready {
				return v
			}
			tick()
		}
		Fail("read never became ready")
		return 0
	}

	writeEventually := func(addr, value uint32, width insts.MemWidth) {
		for i := 0; i < 100; i++ {
			if dc.Write(addr, value, width) {
				return
			}
			tick()
		}
		Fail("write never became ready")
	}

	drain := func() {
		for i := 0; i < 100 && dc.WriteBufferBusy(); i++ {
			tick()
		}
		Expect(dc.WriteBufferBusy()).To(BeFalse())
	}

	Describe("reads", func() {
		It("should fill a line on miss and then hit", func() {
			mem.WriteWord(0x100, 0xCAFED00D, 0xF)

			_, ready := dc.Read(0x100, insts.MemWord, false)
			Expect(ready).To(BeFalse())

			Expect(readEventually(0x100, insts.MemWord, false)).
				To(Equal(uint32(0xCAFED00D)))

			// Same line, different word: immediate hit.
			_, ready = dc.Read(0x104, insts.MemWord, false)
			Expect(ready).To(BeTrue())
			Expect(dc.Stats().Fills).To(Equal(uint64(1)))
		})

		It("should extract sub-word values with sign handling", func() {
			mem.WriteWord(0x100, 0x80FF7F01, 0xF)
			readEventually(0x100, insts.MemWord, false)

			v, _ := dc.Read(0x100, insts.MemByte, false)
			Expect(v).To(Equal(uint32(1)))
			v, _ = dc.Read(0x101, insts.MemByte, false)
			Expect(v).To(Equal(uint32(0x7F)))
			v, _ = dc.Read(0x102, insts.MemByte, false)
			Expect(int32(v)).To(Equal(int32(-1)))
			v, _ = dc.Read(0x102, insts.MemByte, true)
			Expect(v).To(Equal(uint32(0xFF)))
			v, _ = dc.Read(0x102, insts.MemHalf, false)
			Expect(int32(v)).To(Equal(int32(-32513))) // 0x80FF
			v, _ = dc.Read(0x100, insts.MemHalf, true)
			Expect(v).To(Equal(uint32(0x7F01)))
		})
	})

	Describe("writes", func() {
		It("should write through: line updated and memory updated after drain", func() {
			mem.WriteWord(0x200, 0x11111111, 0xF)
			readEventually(0x200, insts.MemWord, false)

			Expect(dc.Write(0x200, 0xABCD0123, insts.MemWord)).To(BeTrue())
			v, _ := dc.Read(0x200, insts.MemWord, false)
			Expect(v).To(Equal(uint32(0xABCD0123)))

			drain()
			Expect(mem.ReadWord(0x200)).To(Equal(uint32(0xABCD0123)))
		})

		It("should merge sub-word writes into line and memory", func() {
			mem.WriteWord(0x200, 0x11223344, 0xF)
			readEventually(0x200, insts.MemWord, false)

			writeEventually(0x201, 0xAA, insts.MemByte)
			drain()
			writeEventually(0x202, 0xBBCC, insts.MemHalf)
			drain()

			v, _ := dc.Read(0x200, insts.MemWord, false)
			Expect(v).To(Equal(uint32(0xBBCCAA44)))
			Expect(mem.ReadWord(0x200)).To(Equal(uint32(0xBBCCAA44)))
		})

		It("should block a second write while the buffer is draining", func() {
			mem.WriteWord(0x200, 0, 0xF)
			readEventually(0x200, insts.MemWord, false)
			mem.WriteWord(0x204, 0, 0xF)

			Expect(dc.Write(0x200, 1, insts.MemWord)).To(BeTrue())
			Expect(dc.Write(0x204, 2, insts.MemWord)).To(BeFalse())

			writeEventually(0x204, 2, insts.MemWord)
			drain()
			Expect(mem.ReadWord(0x200)).To(Equal(uint32(1)))
			Expect(mem.ReadWord(0x204)).To(Equal(uint32(2)))
		})

		It("should fill on a write miss and then apply the write", func() {
			mem.WriteWord(0x300, 0x0000FFFF, 0xF)

			Expect(dc.Write(0x300, 0xAB, insts.MemByte)).To(BeFalse())
			writeEventually(0x300, 0xAB, insts.MemByte)

			// The freshly filled line carries the merged value.
			v, ready := dc.Read(0x300, insts.MemWord, false)
			Expect(ready).To(BeTrue())
			Expect(v).To(Equal(uint32(0x0000FFAB)))

			drain()
			Expect(mem.ReadWord(0x300)).To(Equal(uint32(0x0000FFAB)))
			Expect(dc.Stats().Fills).To(Equal(uint64(1)))
		})

		It("should hold a miss while the write buffer is occupied", func() {
			mem.WriteWord(0x200, 5, 0xF)
			readEventually(0x200, insts.MemWord, false)

			Expect(dc.Write(0x200, 6, insts.MemWord)).To(BeTrue())
			fillsBefore := dc.Stats().Fills

			// Miss to a different line: must not launch a fill while the
			// buffer holds an entry.
			_, ready := dc.Read(0x400, insts.MemWord, false)
			Expect(ready).To(BeFalse())
			Expect(dc.Stats().Fills).To(Equal(fillsBefore))

			readEventually(0x400, insts.MemWord, false)
			Expect(mem.ReadWord(0x200)).To(Equal(uint32(6)))
		})
	})

	Describe("eviction coherency", func() {
		It("should refetch an evicted line with its written-through data", func() {
			// Three lines in one set; line size 16, 64 sets.
			a, b, c := uint32(0x1000), uint32(0x1400), uint32(0x1800)
			readEventually(a, insts.MemWord, false)
			Expect(dc.Write(a, 0x77, insts.MemWord)).To(BeTrue())
			drain()

			readEventually(b, insts.MemWord, false)
			readEventually(c, insts.MemWord, false) // evicts a

			// a misses now, but the write-through kept memory current.
			_, ready := dc.Read(a, insts.MemWord, false)
			Expect(ready).To(BeFalse())
			Expect(readEventually(a, insts.MemWord, false)).To(Equal(uint32(0x77)))
		})
	})

	Describe("peripheral region", func() {
		It("should read device registers uncached", func() {
			gpio.SetInput(0x5AA5)

			_, ready := dc.Read(0x20000004, insts.MemWord, false)
			Expect(ready).To(BeFalse())
			Expect(readEventually(0x20000004, insts.MemWord, false)).
				To(Equal(uint32(0x5AA5)))

			// No caching: a changed register value is observed.
			gpio.SetInput(0x1234)
			Expect(readEventually(0x20000004, insts.MemWord, false)).
				To(Equal(uint32(0x1234)))
		})

		It("should write device registers through the write buffer", func() {
			Expect(dc.Write(0x20000000, 0xFF, insts.MemWord)).To(BeTrue())
			drain()
			Expect(gpio.Output()).To(Equal(uint32(0xFF)))
		})
	})
})
