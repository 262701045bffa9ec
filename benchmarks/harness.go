package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/core"
)

// defaultMaxCycles bounds a benchmark run that fails to halt.
const defaultMaxCycles = 1_000_000

// Result holds the timing results for one benchmark run.
type Result struct {
	// Name identifies the benchmark.
	Name string `json:"name"`

	// Description explains what the benchmark measures.
	Description string `json:"description"`

	// Cycles is the total cycle count.
	Cycles uint64 `json:"cycles"`

	// Instructions is the number of retired instructions.
	Instructions uint64 `json:"instructions"`

	// CPI is cycles per instruction.
	CPI float64 `json:"cpi"`

	// Stalls is the number of cycles decode held a ready instruction.
	Stalls uint64 `json:"stalls"`

	// Flushes is the number of control-flow squashes.
	Flushes uint64 `json:"flushes"`

	// WallTime is the host time taken by the simulation.
	WallTime time.Duration `json:"wall_time_ns"`
}

// RunBenchmark executes one benchmark on a fresh core built from config.
// The benchmark's expected register values are checked after the halt; a
// mismatch is an error.
func RunBenchmark(b Benchmark, config core.Config) (Result, error) {
	if config.XLen == 0 {
		config.XLen = insts.XLen64
	}

	c, err := core.NewCore(config)
	if err != nil {
		return Result{}, fmt.Errorf("benchmark %s: %w", b.Name, err)
	}

	for i, word := range b.Program {
		c.InstrMem().Write32(config.ResetPC+uint64(i)*4, word)
	}
	if b.Setup != nil {
		b.Setup(c)
	}

	maxCycles := b.MaxCycles
	if maxCycles == 0 {
		maxCycles = defaultMaxCycles
	}

	start := time.Now()
	if err := c.Run(maxCycles); err != nil {
		return Result{}, fmt.Errorf("benchmark %s: %w", b.Name, err)
	}
	wallTime := time.Since(start)

	for reg, want := range b.ExpectedRegs {
		if got := c.Reg(reg); got != want {
			return Result{}, fmt.Errorf(
				"benchmark %s: x%d = %d, want %d", b.Name, reg, got, want)
		}
	}

	stats := c.Stats()
	return Result{
		Name:         b.Name,
		Description:  b.Description,
		Cycles:       stats.Cycles,
		Instructions: stats.Instructions,
		CPI:          stats.CPI(),
		Stalls:       stats.Stalls,
		Flushes:      stats.Flushes,
		WallTime:     wallTime,
	}, nil
}

// RunAll executes every benchmark in the set and collects the results.
func RunAll(set []Benchmark, config core.Config) ([]Result, error) {
	results := make([]Result, 0, len(set))
	for _, b := range set {
		r, err := RunBenchmark(b, config)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// WriteResults renders results as indented JSON.
func WriteResults(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to write benchmark results: %w", err)
	}
	return nil
}
