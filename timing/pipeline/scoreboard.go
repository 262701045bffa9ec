package pipeline

// scoreboardMax is the saturation bound of each per-register counter.
// The pipeline can hold at most three in-flight writes to one register,
// so saturation is never reached in normal operation.
const scoreboardMax = 7

// Scoreboard tracks pending GPR writes with one small saturating counter
// per register. A register is hazard-free exactly when its counter is
// zero. The counter for register 0 is pinned at zero.
type Scoreboard struct {
	counters [32]uint8
}

// NewScoreboard creates an empty scoreboard.
func NewScoreboard() *Scoreboard {
	return &Scoreboard{}
}

// Dirty reports whether the register has an in-flight write.
func (s *Scoreboard) Dirty(reg uint8) bool {
	if reg >= 32 {
		return false
	}
	return s.counters[reg] != 0
}

// Counter returns the raw counter value (debug observation).
func (s *Scoreboard) Counter(reg uint8) uint8 {
	if reg >= 32 {
		return 0
	}
	return s.counters[reg]
}

// Update applies one cycle's adjustments: an increment for an instruction
// accepted into the pipeline and a decrement for a write-back retiring.
// Both are reconciled into a single next value per register, so the same
// register being incremented and decremented in one cycle nets to no
// change rather than two ordered steps.
func (s *Scoreboard) Update(incValid bool, incReg uint8, decValid bool, decReg uint8) {
	inc := incValid && incReg != 0 && incReg < 32
	dec := decValid && decReg != 0 && decReg < 32

	if inc && dec && incReg == decReg {
		return
	}
	if inc && s.counters[incReg] < scoreboardMax {
		s.counters[incReg]++
	}
	if dec && s.counters[decReg] > 0 {
		s.counters[decReg]--
	}
}

// Reset clears all counters.
func (s *Scoreboard) Reset() {
	s.counters = [32]uint8{}
}
