package loader_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/brvlab/brv32p/loader"
)

var _ = Describe("Parse", func() {
	parse := func(text string) []loader.Segment {
		segs, err := loader.Parse(strings.NewReader(text))
		Expect(err).NotTo(HaveOccurred())
		return segs
	}

	It("reads one word per line starting at address zero", func() {
		segs := parse("00000013\ndeadbeef\n")

		Expect(segs).To(HaveLen(1))
		Expect(segs[0].Base).To(Equal(uint32(0)))
		Expect(segs[0].Words).To(Equal([]uint32{0x13, 0xdeadbeef}))
	})

	It("accepts several words on one line", func() {
		segs := parse("1 2 3\n")
		Expect(segs[0].Words).To(Equal([]uint32{1, 2, 3}))
	})

	It("starts a new segment at an @ directive, word-granular", func() {
		segs := parse("11\n@40\n22\n33\n")

		Expect(segs).To(HaveLen(2))
		Expect(segs[0].Base).To(Equal(uint32(0)))
		Expect(segs[0].Words).To(Equal([]uint32{0x11}))
		Expect(segs[1].Base).To(Equal(uint32(0x100)))
		Expect(segs[1].Words).To(Equal([]uint32{0x22, 0x33}))
	})

	It("strips // and # comments", func() {
		segs := parse("13 // reset stub\n# a full-line note\n17\n")
		Expect(segs[0].Words).To(Equal([]uint32{0x13, 0x17}))
	})

	It("handles an empty image", func() {
		Expect(parse("")).To(BeEmpty())
	})

	It("rejects a malformed word with its line number", func() {
		_, err := loader.Parse(strings.NewReader("13\nnothex\n"))
		Expect(err).To(MatchError(ContainSubstring("line 2")))
		Expect(err).To(MatchError(ContainSubstring("nothex")))
	})

	It("rejects a malformed @ directive", func() {
		_, err := loader.Parse(strings.NewReader("@zz\n"))
		Expect(err).To(MatchError(ContainSubstring("bad address")))
	})

	It("rejects words wider than 32 bits", func() {
		_, err := loader.Parse(strings.NewReader("112233445\n"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ParseBinary", func() {
	It("assembles little-endian words at address zero", func() {
		segs, err := loader.ParseBinary(strings.NewReader(
			"\x13\x00\x00\x00\xef\xbe\xad\xde"))

		Expect(err).NotTo(HaveOccurred())
		Expect(segs).To(HaveLen(1))
		Expect(segs[0].Base).To(Equal(uint32(0)))
		Expect(segs[0].Words).To(Equal([]uint32{0x13, 0xdeadbeef}))
	})

	It("zero-pads a trailing partial word", func() {
		segs, err := loader.ParseBinary(strings.NewReader("\x13\x00"))

		Expect(err).NotTo(HaveOccurred())
		Expect(segs[0].Words).To(Equal([]uint32{0x13}))
	})

	It("handles an empty image", func() {
		segs, err := loader.ParseBinary(strings.NewReader(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(segs).To(BeEmpty())
	})
})

var _ = Describe("LoadFile", func() {
	It("parses an image from disk", func() {
		path := filepath.Join(GinkgoT().TempDir(), "boot.hex")
		err := os.WriteFile(path, []byte("@10\nabcd\n"), 0o644)
		Expect(err).NotTo(HaveOccurred())

		segs, err := loader.LoadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(segs).To(HaveLen(1))
		Expect(segs[0].Base).To(Equal(uint32(0x40)))
		Expect(segs[0].Words).To(Equal([]uint32{0xabcd}))
	})

	It("selects the binary format by extension", func() {
		path := filepath.Join(GinkgoT().TempDir(), "boot.bin")
		err := os.WriteFile(path, []byte{0x93, 0x00, 0x10, 0x00}, 0o644)
		Expect(err).NotTo(HaveOccurred())

		segs, err := loader.LoadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(segs[0].Words).To(Equal([]uint32{0x00100093}))
	})

	It("reports a missing file", func() {
		_, err := loader.LoadFile("no/such/image.hex")
		Expect(err).To(MatchError(ContainSubstring("opening image")))
	})
})
