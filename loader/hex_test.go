package loader_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/loader"
)

var _ = Describe("Parse", func() {
	It("should parse address:data lines", func() {
		img, err := loader.Parse(strings.NewReader(
			"00000000:00500093\n00000004:00100073\n"))

		Expect(err).To(BeNil())
		Expect(img.Words).To(HaveLen(2))
		Expect(img.Words[0]).To(Equal(loader.Word{Addr: 0, Value: 0x00500093}))
		Expect(img.Words[1]).To(Equal(loader.Word{Addr: 4, Value: 0x00100073}))
	})

	It("should skip blank lines and comments", func() {
		img, err := loader.Parse(strings.NewReader(
			"# boot block\n\n// entry\n00000000:deadbeef\n"))

		Expect(err).To(BeNil())
		Expect(img.Words).To(HaveLen(1))
		Expect(img.Words[0].Value).To(Equal(uint32(0xDEADBEEF)))
	})

	It("should tolerate whitespace around the fields", func() {
		img, err := loader.Parse(strings.NewReader("  00000100 : 12345678  \n"))

		Expect(err).To(BeNil())
		Expect(img.Words[0]).To(Equal(loader.Word{Addr: 0x100, Value: 0x12345678}))
	})

	It("should report the line number of a malformed line", func() {
		_, err := loader.Parse(strings.NewReader("00000000:11111111\nnot-a-line\n"))

		Expect(err).NotTo(BeNil())
		Expect(err.Error()).To(ContainSubstring("line 2"))
	})

	It("should reject a misaligned address", func() {
		_, err := loader.Parse(strings.NewReader("00000002:11111111\n"))

		Expect(err).NotTo(BeNil())
		Expect(err.Error()).To(ContainSubstring("not word-aligned"))
	})

	It("should reject data wider than 32 bits", func() {
		_, err := loader.Parse(strings.NewReader("00000000:111111111\n"))

		Expect(err).NotTo(BeNil())
	})

	It("should reject non-hex fields", func() {
		_, err := loader.Parse(strings.NewReader("0000000g:11111111\n"))

		Expect(err).NotTo(BeNil())
	})
})

var _ = Describe("Image", func() {
	It("should apply its words to a memory", func() {
		img := &loader.Image{Words: []loader.Word{
			{Addr: 0, Value: 0x00500093},
			{Addr: 0x100, Value: 0xCAFEBABE},
		}}
		mem := emu.NewMemory()

		img.Apply(mem)

		Expect(mem.Read32(0)).To(Equal(uint32(0x00500093)))
		Expect(mem.Read32(0x100)).To(Equal(uint32(0xCAFEBABE)))
		Expect(mem.Read32(4)).To(Equal(uint32(0)))
	})
})

var _ = Describe("Load", func() {
	It("should read an image from a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "firmware.hex")
		err := os.WriteFile(path, []byte("00000000:00500093\n"), 0o644)
		Expect(err).To(BeNil())

		img, err := loader.Load(path)

		Expect(err).To(BeNil())
		Expect(img.Words).To(HaveLen(1))
	})

	It("should report a missing file", func() {
		_, err := loader.Load("/nonexistent/firmware.hex")

		Expect(err).NotTo(BeNil())
	})
})
