package pipeline

import "github.com/sarchlab/rvsim/insts"

// PCDecision is the controller's program-counter verdict for one cycle.
type PCDecision struct {
	// Next is the PC value to commit when Update is true.
	Next uint64
	// Update is the PC write enable; when false the PC holds.
	Update bool
	// Squash is the one-cycle control-flow squash pulse: fetch, decode,
	// and execute state is cleared so the pipeline restarts from Next.
	Squash bool
}

// Controller owns the RAW-hazard scoreboard, the control-flow squash
// signal, and the program counter. Every committed PC value is truncated
// to the register width, so a backward jump on a 32-bit core wraps
// instead of escaping the 32-bit address space.
type Controller struct {
	scoreboard *Scoreboard
	pc         uint64
	mask       uint64
}

// NewController creates a controller of the given width with the PC at
// the given reset address.
func NewController(xlen insts.XLen, resetPC uint64) *Controller {
	mask := xlen.Mask()
	return &Controller{
		scoreboard: NewScoreboard(),
		pc:         resetPC & mask,
		mask:       mask,
	}
}

// PC returns the current fetch address.
func (c *Controller) PC() uint64 {
	return c.pc
}

// SetPC overrides the fetch address (reset and verification harnesses).
func (c *Controller) SetPC(pc uint64) {
	c.pc = pc & c.mask
}

// Scoreboard returns the hazard scoreboard.
func (c *Controller) Scoreboard() *Scoreboard {
	return c.scoreboard
}

// Evaluate computes the PC update for this cycle from the execute
// stage's control payload and the fetch hit signal. A taken redirection
// (absolute jump, relative jump, or a conditional with its condition bit
// set) wins over sequential advance and raises the squash pulse; the PC
// update is otherwise enabled only while fetch is hitting.
func (c *Controller) Evaluate(hit bool, ctrl ControlPayload) PCDecision {
	if ctrl.Valid {
		switch ctrl.PCOp {
		case insts.PCOpSetAbsolute:
			// Target alignment: the low bit is forced to zero.
			return PCDecision{Next: ctrl.Result &^ 1 & c.mask, Update: true, Squash: true}
		case insts.PCOpAddRelative:
			return PCDecision{Next: (ctrl.PC + ctrl.Result) & c.mask, Update: true, Squash: true}
		case insts.PCOpConditional:
			if ctrl.Result&1 != 0 {
				return PCDecision{Next: (ctrl.PC + ctrl.Op3) & c.mask, Update: true, Squash: true}
			}
			// Not taken: fall through sequentially with fetch.
		}
	}

	if hit {
		return PCDecision{Next: (c.pc + instrBytes) & c.mask, Update: true}
	}
	return PCDecision{Update: false}
}

// Commit applies the decision at the cycle boundary.
func (c *Controller) Commit(d PCDecision) {
	if d.Update {
		c.pc = d.Next
	}
}

// Reset restores the PC to the given address and clears the scoreboard.
func (c *Controller) Reset(pc uint64) {
	c.pc = pc & c.mask
	c.scoreboard.Reset()
}
