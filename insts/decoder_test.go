package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder(insts.XLen32)
	})

	Describe("register-immediate instructions", func() {
		It("should decode ADDI x1, x0, 5", func() {
			inst := decoder.Decode(0x00500093)

			Expect(inst.Format).To(Equal(insts.FormatOpImm))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(inst.UsesRs1).To(BeTrue())
			Expect(inst.UsesRs2).To(BeFalse())
			Expect(inst.Imm).To(Equal(int64(5)))
			Expect(inst.ExecOp).To(Equal(insts.ExecOpAdd))
			Expect(inst.WBSource).To(Equal(insts.WBSourceALU))
			Expect(inst.PCOp).To(Equal(insts.PCOpIncrement))
		})

		It("should sign-extend negative immediates", func() {
			// ADDI x1, x0, -1
			inst := decoder.Decode(0xFFF00093)

			Expect(inst.Imm).To(Equal(int64(-1)))
		})

		It("should decode SRAI with a 5-bit shift amount", func() {
			// SRAI x1, x2, 4
			inst := decoder.Decode(0x40415093)

			Expect(inst.ExecOp).To(Equal(insts.ExecOpSra))
			Expect(inst.Imm).To(Equal(int64(4)))
		})

		It("should reject SLLI with shamt[5] set on RV32", func() {
			// SLLI x1, x2, 32 is not encodable in RV32I.
			inst := decoder.Decode(0x02011093)

			Expect(inst.IsBubble()).To(BeTrue())
		})
	})

	Describe("register-register instructions", func() {
		It("should decode ADD x3, x1, x2", func() {
			inst := decoder.Decode(0x002081B3)

			Expect(inst.Format).To(Equal(insts.FormatOp))
			Expect(inst.Rd).To(Equal(uint8(3)))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.UsesRs1).To(BeTrue())
			Expect(inst.UsesRs2).To(BeTrue())
			Expect(inst.ExecOp).To(Equal(insts.ExecOpAdd))
		})

		It("should decode SUB via funct7", func() {
			// SUB x3, x1, x2
			inst := decoder.Decode(0x402081B3)

			Expect(inst.ExecOp).To(Equal(insts.ExecOpSub))
		})

		It("should reject an OP encoding with a bad funct7", func() {
			// ADD with funct7 = 0x11.
			inst := decoder.Decode(0x222081B3)

			Expect(inst.IsBubble()).To(BeTrue())
		})
	})

	Describe("upper-immediate instructions", func() {
		It("should decode LUI x1, 0x12345", func() {
			inst := decoder.Decode(0x123450B7)

			Expect(inst.Format).To(Equal(insts.FormatLui))
			Expect(inst.Imm).To(Equal(int64(0x12345000)))
			Expect(inst.WBSource).To(Equal(insts.WBSourceALU))
		})

		It("should decode AUIPC x1, 1", func() {
			inst := decoder.Decode(0x00001097)

			Expect(inst.Format).To(Equal(insts.FormatAuipc))
			Expect(inst.Imm).To(Equal(int64(0x1000)))
		})
	})

	Describe("loads and stores", func() {
		It("should decode LB x1, 0(x2)", func() {
			inst := decoder.Decode(0x00010083)

			Expect(inst.Format).To(Equal(insts.FormatLoad))
			Expect(inst.MemOp).To(Equal(insts.MemOpLoadByte))
			Expect(inst.MemOp.SignExtend()).To(BeTrue())
			Expect(inst.WBSource).To(Equal(insts.WBSourceMemory))
		})

		It("should decode LHU as a zero-extending load", func() {
			// LHU x1, 0(x2)
			inst := decoder.Decode(0x00015083)

			Expect(inst.MemOp).To(Equal(insts.MemOpLoadHalfU))
			Expect(inst.MemOp.SignExtend()).To(BeFalse())
		})

		It("should decode SB x1, 3(x2) with an S-type immediate", func() {
			inst := decoder.Decode(0x001101A3)

			Expect(inst.Format).To(Equal(insts.FormatStore))
			Expect(inst.MemOp).To(Equal(insts.MemOpStoreByte))
			Expect(inst.Imm).To(Equal(int64(3)))
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.UsesRs2).To(BeTrue())
			Expect(inst.WBSource).To(Equal(insts.WBSourceIdle))
		})

		It("should reject LD on RV32", func() {
			// LD x1, 0(x2)
			inst := decoder.Decode(0x00013083)

			Expect(inst.IsBubble()).To(BeTrue())
		})
	})

	Describe("control flow", func() {
		It("should decode BEQ x1, x1, +8", func() {
			inst := decoder.Decode(0x00108463)

			Expect(inst.Format).To(Equal(insts.FormatBranch))
			Expect(inst.ExecOp).To(Equal(insts.ExecOpEq))
			Expect(inst.PCOp).To(Equal(insts.PCOpConditional))
			Expect(inst.Imm).To(Equal(int64(8)))
			Expect(inst.WBSource).To(Equal(insts.WBSourceIdle))
		})

		It("should decode a backward branch offset", func() {
			// BNE x1, x2, -4
			inst := decoder.Decode(0xFE209EE3)

			Expect(inst.ExecOp).To(Equal(insts.ExecOpNe))
			Expect(inst.Imm).To(Equal(int64(-4)))
		})

		It("should decode JAL x1, +8", func() {
			inst := decoder.Decode(0x008000EF)

			Expect(inst.Format).To(Equal(insts.FormatJal))
			Expect(inst.PCOp).To(Equal(insts.PCOpAddRelative))
			Expect(inst.Imm).To(Equal(int64(8)))
			Expect(inst.WBSource).To(Equal(insts.WBSourcePCLink))
		})

		It("should decode JALR x0, 0(x1)", func() {
			inst := decoder.Decode(0x00008067)

			Expect(inst.Format).To(Equal(insts.FormatJalr))
			Expect(inst.PCOp).To(Equal(insts.PCOpSetAbsolute))
			Expect(inst.Rd).To(Equal(uint8(0)))
		})
	})

	Describe("system instructions", func() {
		It("should decode CSRRS x1, mcycle, x0 as a CSR read", func() {
			inst := decoder.Decode(0xB00020F3)

			Expect(inst.Format).To(Equal(insts.FormatCSR))
			Expect(inst.CSRAddr).To(Equal(uint16(0xB00)))
			Expect(inst.CSROp).To(Equal(insts.CSROpIdle))
			Expect(inst.WBSource).To(Equal(insts.WBSourceOperand3))
		})

		It("should decode ECALL as a bubble", func() {
			inst := decoder.Decode(0x00000073)

			Expect(inst.IsBubble()).To(BeTrue())
			Expect(inst.IsBreak).To(BeFalse())
		})

		It("should flag EBREAK", func() {
			inst := decoder.Decode(0x00100073)

			Expect(inst.IsBubble()).To(BeTrue())
			Expect(inst.IsBreak).To(BeTrue())
		})

		It("should decode FENCE as a bubble", func() {
			inst := decoder.Decode(0x0FF0000F)

			Expect(inst.IsBubble()).To(BeTrue())
		})
	})

	Describe("unknown words", func() {
		It("should decode an all-zero word as a bubble", func() {
			inst := decoder.Decode(0x00000000)

			Expect(inst.IsBubble()).To(BeTrue())
			Expect(inst.WBSource).To(Equal(insts.WBSourceIdle))
			Expect(inst.MemOp).To(Equal(insts.MemOpIdle))
		})
	})

	Describe("on a 64-bit decoder", func() {
		BeforeEach(func() {
			decoder = insts.NewDecoder(insts.XLen64)
		})

		It("should decode ADDIW with the word bit set", func() {
			// ADDIW x1, x2, 1
			inst := decoder.Decode(0x0011009B)

			Expect(inst.ExecOp.Base()).To(Equal(insts.ExecOpAdd))
			Expect(inst.ExecOp.IsWord()).To(BeTrue())
		})

		It("should decode SUBW", func() {
			// SUBW x3, x1, x2
			inst := decoder.Decode(0x402081BB)

			Expect(inst.ExecOp.Base()).To(Equal(insts.ExecOpSub))
			Expect(inst.ExecOp.IsWord()).To(BeTrue())
		})

		It("should accept a 6-bit shift amount for SLLI", func() {
			// SLLI x1, x2, 32
			inst := decoder.Decode(0x02011093)

			Expect(inst.ExecOp).To(Equal(insts.ExecOpSll))
			Expect(inst.Imm).To(Equal(int64(32)))
		})

		It("should decode LD and SD", func() {
			ld := decoder.Decode(0x00013083)
			sd := decoder.Decode(0x00113023)

			Expect(ld.MemOp).To(Equal(insts.MemOpLoadDouble))
			Expect(sd.MemOp).To(Equal(insts.MemOpStoreDouble))
		})
	})
})
