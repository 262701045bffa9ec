// Package emu provides the architectural state and pure function units of
// the RISC-V core: general-purpose registers, CSRs, the arithmetic/compare
// unit, and backing memory.
package emu

import (
	"fmt"

	"github.com/sarchlab/rvsim/insts"
)

// RegFile holds the 32 general-purpose registers of an RV32I/RV64I core.
// Register x0 is hard-wired to zero and never written. The register width
// is fixed at construction. Reads observe the value committed in a prior
// cycle; a write becomes visible to reads from the next cycle on, which is
// the caller's (pipeline's) ordering discipline to preserve.
type RegFile struct {
	x    [32]uint64
	xlen insts.XLen
}

// NewRegFile creates a register file of the given width. Unsupported
// widths are a configuration error and refuse to build.
func NewRegFile(xlen insts.XLen) (*RegFile, error) {
	if err := xlen.Validate(); err != nil {
		return nil, fmt.Errorf("regfile: %w", err)
	}
	return &RegFile{xlen: xlen}, nil
}

// XLen returns the register width.
func (r *RegFile) XLen() insts.XLen {
	return r.xlen
}

// Read returns a register value. Register 0 always reads as zero.
func (r *RegFile) Read(reg uint8) uint64 {
	if reg == 0 || reg >= 32 {
		return 0
	}
	return r.x[reg]
}

// Write commits a value to a register, masked to the register width.
// Writes to register 0 are discarded.
func (r *RegFile) Write(reg uint8, value uint64) {
	if reg == 0 || reg >= 32 {
		return
	}
	r.x[reg] = r.mask(value)
}

// Poke is the verification escape hatch: it writes a register directly,
// bypassing the normal writeback path. Test harnesses only.
func (r *RegFile) Poke(reg uint8, value uint64) {
	r.Write(reg, value)
}

// Snapshot returns a copy of all 32 registers for debug observation.
func (r *RegFile) Snapshot() [32]uint64 {
	return r.x
}

// Reset clears all registers.
func (r *RegFile) Reset() {
	r.x = [32]uint64{}
}

func (r *RegFile) mask(v uint64) uint64 {
	if r.xlen == insts.XLen32 {
		return v & 0xFFFFFFFF
	}
	return v
}
