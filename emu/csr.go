package emu

// CSR addresses implemented by the core. All three are machine-level
// performance counters and are read-only from software.
const (
	// CSRCycle (mcycle) counts every elapsed cycle.
	CSRCycle uint16 = 0xB00
	// CSRStallCycles (mhpmcounter3) counts cycles the pipeline spent
	// stalled.
	CSRStallCycles uint16 = 0xB03
	// CSRTakenBranches (mhpmcounter4) counts taken control-flow
	// redirections.
	CSRTakenBranches uint16 = 0xB04
)

// CSRFile holds the control/status registers: a free-running cycle
// counter plus the stall and taken-branch performance counters. The
// counters are maintained by the pipeline, not by instructions; CSR
// writes from software are accepted and discarded.
type CSRFile struct {
	cycle         uint64
	stallCycles   uint64
	takenBranches uint64
}

// NewCSRFile creates an empty CSR file.
func NewCSRFile() *CSRFile {
	return &CSRFile{}
}

// Read returns a CSR value. Unimplemented addresses read as zero.
func (c *CSRFile) Read(addr uint16) uint64 {
	switch addr {
	case CSRCycle:
		return c.cycle
	case CSRStallCycles:
		return c.stallCycles
	case CSRTakenBranches:
		return c.takenBranches
	default:
		return 0
	}
}

// Write applies a software CSR write. The implemented CSRs are all
// read-only counters, so the value is discarded; the method exists so the
// writeback path has a single place to route CSR commits.
func (c *CSRFile) Write(addr uint16, value uint64) {
	_ = addr
	_ = value
}

// TickCycle advances the cycle counter. Called once per core cycle.
func (c *CSRFile) TickCycle() {
	c.cycle++
}

// AddStallCycle records one stalled cycle.
func (c *CSRFile) AddStallCycle() {
	c.stallCycles++
}

// AddTakenBranch records one taken control-flow redirection.
func (c *CSRFile) AddTakenBranch() {
	c.takenBranches++
}

// Cycle returns the current cycle count (debug observation).
func (c *CSRFile) Cycle() uint64 {
	return c.cycle
}

// Reset clears all counters.
func (c *CSRFile) Reset() {
	*c = CSRFile{}
}
