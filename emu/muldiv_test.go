package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/brvlab/brv32p/emu"
	"github.com/brvlab/brv32p/insts"
)

var _ = Describe("Multiply", func() {
	It("should compute the low half", func() {
		Expect(emu.Multiply(insts.OpMUL, 7, 6)).To(Equal(uint32(42)))
		Expect(emu.Multiply(insts.OpMUL, 0xFFFFFFFF, 2)).To(Equal(uint32(0xFFFFFFFE)))
	})

	It("should compute the high halves per signedness", func() {
		// -1 * -1 = 1: high half zero signed, large unsigned.
		Expect(emu.Multiply(insts.OpMULH, 0xFFFFFFFF, 0xFFFFFFFF)).
			To(Equal(uint32(0)))
		Expect(emu.Multiply(insts.OpMULHU, 0xFFFFFFFF, 0xFFFFFFFF)).
			To(Equal(uint32(0xFFFFFFFE)))
		// -1 (signed) * 2 (unsigned) = -2: high half all ones.
		Expect(emu.Multiply(insts.OpMULHSU, 0xFFFFFFFF, 2)).
			To(Equal(uint32(0xFFFFFFFF)))
	})
})

var _ = Describe("MulDivUnit", func() {
	var unit *emu.MulDivUnit

	BeforeEach(func() {
		unit = emu.NewMulDivUnit()
	})

	// divide runs one operation to completion, asserting the exact
	// 33-tick latency along the way.
	divide := func(op insts.MulDivOp, a, b uint32) uint32 {
		unit.Start(op, a, b)
		Expect(unit.Busy()).To(BeTrue())

		for i := 0; i < 32; i++ {
			unit.Tick()
			Expect(unit.Done()).To(BeFalse())
			Expect(unit.Busy()).To(BeTrue())
		}

		unit.Tick() // 33rd
		Expect(unit.Done()).To(BeTrue())
		Expect(unit.Busy()).To(BeFalse())
		return unit.Result()
	}

	It("should divide signed values truncating toward zero", func() {
		Expect(divide(insts.OpDIV, 7, 2)).To(Equal(uint32(3)))
		Expect(int32(divide(insts.OpDIV, uint32(4294967289), 2))).
			To(Equal(int32(-3))) // -7 / 2
		Expect(int32(divide(insts.OpDIV, uint32(4294967289), 3))).
			To(Equal(int32(-2))) // -7 / 3
	})

	It("should compute signed remainders with the dividend's sign", func() {
		Expect(divide(insts.OpREM, 7, 3)).To(Equal(uint32(1)))
		Expect(int32(divide(insts.OpREM, uint32(4294967289), 3))).
			To(Equal(int32(-1))) // -7 rem 3 = -1
		Expect(int32(divide(insts.OpREM, 7, uint32(4294967293)))).
			To(Equal(int32(1))) // 7 rem -3 = 1
	})

	It("should divide unsigned values", func() {
		Expect(divide(insts.OpDIVU, 0xFFFFFFFF, 16)).To(Equal(uint32(0x0FFFFFFF)))
		Expect(divide(insts.OpREMU, 0xFFFFFFFF, 16)).To(Equal(uint32(0xF)))
	})

	It("should handle the minimum-signed-value over minus-one overflow", func() {
		Expect(divide(insts.OpDIV, 0x80000000, 0xFFFFFFFF)).
			To(Equal(uint32(0x80000000)))
		Expect(divide(insts.OpREM, 0x80000000, 0xFFFFFFFF)).
			To(Equal(uint32(0)))
	})

	It("should define division by zero", func() {
		Expect(divide(insts.OpDIV, 42, 0)).To(Equal(uint32(0xFFFFFFFF)))
		Expect(divide(insts.OpDIVU, 42, 0)).To(Equal(uint32(0xFFFFFFFF)))
		Expect(divide(insts.OpREM, 42, 0)).To(Equal(uint32(42)))
		Expect(int32(divide(insts.OpREM, uint32(4294967254), 0))).
			To(Equal(int32(-42)))
		Expect(divide(insts.OpREMU, 42, 0)).To(Equal(uint32(42)))
	})

	It("should hold Done for exactly one tick", func() {
		divide(insts.OpDIVU, 10, 2)
		unit.Tick()
		Expect(unit.Done()).To(BeFalse())
	})

	It("should abandon a cancelled divide", func() {
		unit.Start(insts.OpDIV, 100, 3)
		for i := 0; i < 10; i++ {
			unit.Tick()
		}
		unit.Cancel()
		Expect(unit.Busy()).To(BeFalse())

		for i := 0; i < 40; i++ {
			unit.Tick()
			Expect(unit.Done()).To(BeFalse())
		}
	})
})
