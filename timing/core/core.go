// Package core assembles the full CPU core model: register files, CSRs,
// instruction and data memories, and the pipeline engine, behind a
// high-level interface for harnesses and the CLI.
package core

import (
	"fmt"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/cache"
	"github.com/sarchlab/rvsim/timing/latency"
	"github.com/sarchlab/rvsim/timing/pipeline"
)

// Config selects the build-time parameters of a core instance.
type Config struct {
	// XLen is the register width, 32 or 64.
	XLen insts.XLen

	// ResetPC is the fetch address after reset.
	ResetPC uint64

	// Timing holds the memory latencies. Nil selects the defaults.
	Timing *latency.TimingConfig

	// DCache enables a data cache with the given geometry. Nil disables
	// the cache.
	DCache *cache.Config
}

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of stall cycles.
	Stalls uint64
	// Flushes is the number of control-flow squashes.
	Flushes uint64
}

// CPI returns the cycles-per-instruction ratio.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core is one in-order RISC-V core with its private memories.
type Core struct {
	// Pipeline is the underlying cycle-stepped engine.
	Pipeline *pipeline.Pipeline

	regFile  *emu.RegFile
	csrFile  *emu.CSRFile
	instrMem *emu.Memory
	dataMem  *emu.Memory
	config   Config
}

// NewCore builds a core. An unsupported register width or invalid cache
// or latency configuration refuses to build.
func NewCore(config Config) (*Core, error) {
	regFile, err := emu.NewRegFile(config.XLen)
	if err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}

	csrFile := emu.NewCSRFile()
	instrMem := emu.NewMemory()
	dataMem := emu.NewMemory()

	var opts []pipeline.PipelineOption
	if config.Timing != nil {
		opts = append(opts, pipeline.WithTimingConfig(config.Timing))
	}
	if config.DCache != nil {
		opts = append(opts, pipeline.WithDCache(*config.DCache))
	}

	pipe, err := pipeline.NewPipeline(regFile, csrFile, instrMem, dataMem, opts...)
	if err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	pipe.SetPC(config.ResetPC)

	return &Core{
		Pipeline: pipe,
		regFile:  regFile,
		csrFile:  csrFile,
		instrMem: instrMem,
		dataMem:  dataMem,
		config:   config,
	}, nil
}

// InstrMem returns the instruction memory, for loading firmware before
// reset is released.
func (c *Core) InstrMem() *emu.Memory {
	return c.instrMem
}

// DataMem returns the data memory.
func (c *Core) DataMem() *emu.Memory {
	return c.dataMem
}

// Reg reads a general-purpose register (debug observation).
func (c *Core) Reg(reg uint8) uint64 {
	return c.regFile.Read(reg)
}

// PokeReg overrides a general-purpose register without going through the
// writeback path. Verification harnesses only.
func (c *Core) PokeReg(reg uint8, value uint64) {
	c.regFile.Poke(reg, value)
}

// CSR reads a control/status register (debug observation).
func (c *Core) CSR(addr uint16) uint64 {
	return c.csrFile.Read(addr)
}

// PC returns the current fetch address.
func (c *Core) PC() uint64 {
	return c.Pipeline.PC()
}

// SetPC overrides the fetch address. Verification harnesses only.
func (c *Core) SetPC(pc uint64) {
	c.Pipeline.SetPC(pc)
}

// Tick executes one core cycle.
func (c *Core) Tick() error {
	return c.Pipeline.Tick()
}

// Halted reports whether the core has halted on an EBREAK.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// Run executes until the core halts or maxCycles elapse (0 = no limit).
func (c *Core) Run(maxCycles uint64) error {
	return c.Pipeline.Run(maxCycles)
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	pipeStats := c.Pipeline.Stats()
	return Stats{
		Cycles:       pipeStats.Cycles,
		Instructions: pipeStats.Instructions,
		Stalls:       pipeStats.Stalls,
		Flushes:      pipeStats.Flushes,
	}
}

// Reset clears pipeline and register state and returns the PC to the
// configured reset address. Memory contents are preserved, matching the
// platform's separate core and RAM resets.
func (c *Core) Reset() {
	c.Pipeline.Reset()
	c.regFile.Reset()
	c.csrFile.Reset()
	c.Pipeline.SetPC(c.config.ResetPC)
}
