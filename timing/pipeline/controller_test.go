package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/pipeline"
)

var _ = Describe("Controller", func() {
	var ctrl *pipeline.Controller

	BeforeEach(func() {
		ctrl = pipeline.NewController(insts.XLen64, 0x1000)
	})

	It("should hold the PC while fetch is not hitting", func() {
		decision := ctrl.Evaluate(false, pipeline.ControlPayload{})

		Expect(decision.Update).To(BeFalse())
		Expect(decision.Squash).To(BeFalse())

		ctrl.Commit(decision)

		Expect(ctrl.PC()).To(Equal(uint64(0x1000)))
	})

	It("should advance the PC sequentially on a fetch hit", func() {
		decision := ctrl.Evaluate(true, pipeline.ControlPayload{})

		Expect(decision.Update).To(BeTrue())
		Expect(decision.Next).To(Equal(uint64(0x1004)))
		Expect(decision.Squash).To(BeFalse())
	})

	It("should squash and redirect on an absolute jump", func() {
		decision := ctrl.Evaluate(true, pipeline.ControlPayload{
			Valid:  true,
			PC:     0x1000,
			Result: 0x2000,
			PCOp:   insts.PCOpSetAbsolute,
		})

		Expect(decision.Squash).To(BeTrue())
		Expect(decision.Next).To(Equal(uint64(0x2000)))
	})

	It("should clear the low bit of an absolute target", func() {
		decision := ctrl.Evaluate(false, pipeline.ControlPayload{
			Valid:  true,
			Result: 0x2001,
			PCOp:   insts.PCOpSetAbsolute,
		})

		Expect(decision.Next).To(Equal(uint64(0x2000)))
	})

	It("should add a relative target to the instruction's own address", func() {
		decision := ctrl.Evaluate(false, pipeline.ControlPayload{
			Valid:  true,
			PC:     0x1000,
			Result: 0x40,
			PCOp:   insts.PCOpAddRelative,
		})

		Expect(decision.Squash).To(BeTrue())
		Expect(decision.Next).To(Equal(uint64(0x1040)))
	})

	It("should take a conditional branch when the condition bit is set", func() {
		decision := ctrl.Evaluate(false, pipeline.ControlPayload{
			Valid:  true,
			PC:     0x1000,
			Result: 1,
			Op3:    0xFFFFFFFFFFFFFFF8, // -8
			PCOp:   insts.PCOpConditional,
		})

		Expect(decision.Squash).To(BeTrue())
		Expect(decision.Next).To(Equal(uint64(0xFF8)))
	})

	It("should fall through a not-taken conditional without squashing", func() {
		decision := ctrl.Evaluate(true, pipeline.ControlPayload{
			Valid: true,
			PC:    0x1000,
			Op3:   8,
			PCOp:  insts.PCOpConditional,
		})

		Expect(decision.Squash).To(BeFalse())
		Expect(decision.Update).To(BeTrue())
		Expect(decision.Next).To(Equal(uint64(0x1004)))
	})

	Context("on a 32-bit core", func() {
		BeforeEach(func() {
			ctrl = pipeline.NewController(insts.XLen32, 8)
		})

		It("should wrap a backward relative target around the register width", func() {
			// A 32-bit ALU reports a negative offset zero-extended.
			decision := ctrl.Evaluate(false, pipeline.ControlPayload{
				Valid:  true,
				PC:     8,
				Result: 0xFFFFFFFC, // -4
				PCOp:   insts.PCOpAddRelative,
			})

			Expect(decision.Squash).To(BeTrue())
			Expect(decision.Next).To(Equal(uint64(4)))
		})

		It("should wrap a backward conditional target", func() {
			decision := ctrl.Evaluate(false, pipeline.ControlPayload{
				Valid:  true,
				PC:     0x10,
				Result: 1,
				Op3:    0xFFFFFFFFFFFFFFF8, // -8, sign-extended at decode
				PCOp:   insts.PCOpConditional,
			})

			Expect(decision.Next).To(Equal(uint64(8)))
		})

		It("should wrap sequential advance at the top of the address space", func() {
			ctrl.SetPC(0xFFFFFFFC)

			decision := ctrl.Evaluate(true, pipeline.ControlPayload{})

			Expect(decision.Update).To(BeTrue())
			Expect(decision.Next).To(Equal(uint64(0)))
		})
	})

	It("should restore the PC and clear the scoreboard on reset", func() {
		ctrl.Scoreboard().Update(true, 5, false, 0)
		ctrl.Commit(pipeline.PCDecision{Next: 0x2000, Update: true})

		ctrl.Reset(0x1000)

		Expect(ctrl.PC()).To(Equal(uint64(0x1000)))
		Expect(ctrl.Scoreboard().Dirty(5)).To(BeFalse())
	})
})
