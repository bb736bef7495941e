package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/brvlab/brv32p/insts"
)

var _ = Describe("Compressed expansion", func() {
	expand := func(h uint16) uint32 {
		word, ok := insts.ExpandCompressed(h)
		ExpectWithOffset(1, ok).To(BeTrue())
		return word
	}

	It("should detect compressed parcels by their low bits", func() {
		Expect(insts.IsCompressed(0x0001)).To(BeTrue())
		Expect(insts.IsCompressed(0x4082)).To(BeTrue())
		Expect(insts.IsCompressed(0x0003)).To(BeFalse())
	})

	Describe("quadrant 0", func() {
		It("should expand C.ADDI4SPN to ADDI off the stack pointer", func() {
			// c.addi4spn x8, sp, 16
			h := uint16(0x0800)
			Expect(expand(h)).To(Equal(insts.ADDI(8, 2, 16)))
		})

		It("should expand C.LW and C.SW with scaled offsets", func() {
			// c.lw x9, 4(x10): offset bits land in inst[6] for uimm[2]
			h := uint16(0x2<<13 | 0x2<<7 | 0x1<<2 | 1<<6)
			Expect(expand(h)).To(Equal(insts.LW(9, 10, 4)))

			// c.sw x9, 8(x10)
			h = uint16(0x6<<13 | 0x1<<10 | 0x2<<7 | 0x1<<2)
			Expect(expand(h)).To(Equal(insts.SW(9, 10, 8)))
		})

		It("should reject the all-zero parcel", func() {
			_, ok := insts.ExpandCompressed(0)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("quadrant 1", func() {
		It("should expand C.ADDI including negative immediates", func() {
			// c.addi x1, -1: imm6 = 111111
			h := uint16(0x0<<13 | 1<<12 | 1<<7 | 0x1f<<2 | 0x1)
			Expect(expand(h)).To(Equal(insts.ADDI(1, 1, -1)))
		})

		It("should expand C.LI to ADDI from x0", func() {
			// c.li x1, 7
			Expect(expand(0x409d)).To(Equal(insts.ADDI(1, 0, 7)))
		})

		It("should expand C.LUI with the immediate shifted into the upper bits", func() {
			// c.lui x3 with a negative six-bit immediate (-31 << 12)
			h := uint16(0x3<<13 | 1<<12 | 3<<7 | 0x1<<2 | 0x1)
			Expect(expand(h)).To(Equal(insts.LUI(3, -126976)))
		})

		It("should expand the register-register ALU group", func() {
			// c.sub x8, x9
			h := uint16(0x4<<13 | 0x3<<10 | 0x0<<7 | 0x0<<5 | 0x1<<2 | 0x1)
			Expect(expand(h)).To(Equal(insts.SUB(8, 8, 9)))

			// c.and x8, x9
			h = uint16(0x4<<13 | 0x3<<10 | 0x0<<7 | 0x3<<5 | 0x1<<2 | 0x1)
			Expect(expand(h)).To(Equal(insts.AND(8, 8, 9)))
		})

		It("should expand C.J and C.BEQZ with halfword-scaled offsets", func() {
			// c.j +4: offset bit 2 is parcel bit 4
			h := uint16(0x5<<13 | 1<<4 | 0x1)
			Expect(expand(h)).To(Equal(insts.JAL(0, 4)))

			// c.beqz x8, +4
			h = uint16(0x6<<13 | 0x0<<7 | 1<<4 | 0x1)
			Expect(expand(h)).To(Equal(insts.BEQ(8, 0, 4)))
		})
	})

	Describe("quadrant 2", func() {
		It("should expand C.SLLI", func() {
			// c.slli x5, 3
			h := uint16(0x0<<13 | 5<<7 | 3<<2 | 0x2)
			Expect(expand(h)).To(Equal(insts.SLLI(5, 5, 3)))
		})

		It("should expand C.LWSP and C.SWSP", func() {
			// c.lwsp x7, 8(sp)
			h := uint16(0x2<<13 | 7<<7 | 0x2<<4 | 0x2)
			Expect(expand(h)).To(Equal(insts.LW(7, 2, 8)))

			// c.swsp x7, 12(sp)
			h = uint16(0x6<<13 | 0x3<<9 | 7<<2 | 0x2)
			Expect(expand(h)).To(Equal(insts.SW(7, 2, 12)))
		})

		It("should expand the jump-register family", func() {
			// c.jr x1
			h := uint16(0x4<<13 | 1<<7 | 0x2)
			Expect(expand(h)).To(Equal(insts.JALR(0, 1, 0)))

			// c.jalr x5
			h = uint16(0x4<<13 | 1<<12 | 5<<7 | 0x2)
			Expect(expand(h)).To(Equal(insts.JALR(1, 5, 0)))

			// c.mv x3, x4
			h = uint16(0x4<<13 | 3<<7 | 4<<2 | 0x2)
			Expect(expand(h)).To(Equal(insts.ADD(3, 0, 4)))

			// c.add x3, x4
			h = uint16(0x4<<13 | 1<<12 | 3<<7 | 4<<2 | 0x2)
			Expect(expand(h)).To(Equal(insts.ADD(3, 3, 4)))
		})

		It("should expand C.EBREAK", func() {
			h := uint16(0x4<<13 | 1<<12 | 0x2)
			Expect(expand(h)).To(Equal(insts.EBREAK()))
		})
	})

	Describe("DecodeParcel", func() {
		It("should mark compressed instructions for the 2-byte PC step", func() {
			inst := insts.DecodeParcel(0x409d, 0)
			Expect(inst.Compressed).To(BeTrue())
			Expect(inst.Length()).To(Equal(uint32(2)))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int32(7)))
		})

		It("should join two halfwords for full-width instructions", func() {
			word := insts.ADDI(5, 6, 1)
			inst := insts.DecodeParcel(uint16(word), uint16(word>>16))
			Expect(inst.Compressed).To(BeFalse())
			Expect(inst.Length()).To(Equal(uint32(4)))
			Expect(inst.Rd).To(Equal(uint8(5)))
		})

		It("should decode unsupported compressed encodings as illegal", func() {
			inst := insts.DecodeParcel(0x0000, 0)
			Expect(inst.Illegal).To(BeTrue())
			Expect(inst.Compressed).To(BeTrue())
		})
	})
})
