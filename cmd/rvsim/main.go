// Command rvsim runs a firmware image on the cycle-stepped RISC-V core
// model and reports timing statistics.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/loader"
	"github.com/sarchlab/rvsim/timing/cache"
	"github.com/sarchlab/rvsim/timing/core"
	"github.com/sarchlab/rvsim/timing/latency"
)

var (
	xlen       = flag.Int("xlen", 32, "Register width (32 or 64)")
	resetPC    = flag.Uint64("reset-pc", 0, "Fetch address after reset")
	configPath = flag.String("config", "", "Path to timing configuration JSON file")
	useDCache  = flag.Bool("dcache", false, "Enable the data cache")
	maxCycles  = flag.Uint64("max-cycles", 100_000_000, "Cycle limit (0 = none)")
	dataImage  = flag.String("data", "", "Separate data-memory image (defaults to the firmware image)")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rvsim [options] <firmware.hex>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(firmwarePath string) error {
	img, err := loader.Load(firmwarePath)
	if err != nil {
		return err
	}

	var timingConfig *latency.TimingConfig
	if *configPath != "" {
		timingConfig, err = latency.LoadConfig(*configPath)
		if err != nil {
			return err
		}
	}

	config := core.Config{
		XLen:    insts.XLen(*xlen),
		ResetPC: *resetPC,
		Timing:  timingConfig,
	}
	if *useDCache {
		dc := cache.DefaultConfig()
		config.DCache = &dc
	}

	c, err := core.NewCore(config)
	if err != nil {
		return err
	}

	// The firmware image fills instruction memory; data memory gets the
	// same image unless a separate one is given, matching the platform
	// loader's handling of the two RAMs.
	img.Apply(c.InstrMem())
	dataImg := img
	if *dataImage != "" {
		dataImg, err = loader.Load(*dataImage)
		if err != nil {
			return err
		}
	}
	dataImg.Apply(c.DataMem())

	if *verbose {
		fmt.Printf("Loaded: %s (%d words)\n", firmwarePath, len(img.Words))
		fmt.Printf("XLEN: %d, reset PC: 0x%x\n", *xlen, *resetPC)
	}

	if err := c.Run(*maxCycles); err != nil {
		return err
	}

	printReport(c)
	return nil
}

func printReport(c *core.Core) {
	stats := c.Stats()
	pipeStats := c.Pipeline.Stats()

	fmt.Printf("\n")
	fmt.Printf("Total Instructions: %d\n", stats.Instructions)
	fmt.Printf("Total Cycles:       %d\n", stats.Cycles)
	fmt.Printf("CPI:                %.2f\n", stats.CPI())
	fmt.Printf("\n")
	fmt.Printf("Pipeline Events:\n")
	fmt.Printf("  Stalls:         %d (%d from data hazards)\n",
		stats.Stalls, pipeStats.DataHazards)
	fmt.Printf("  Flushes:        %d\n", stats.Flushes)
	fmt.Printf("  Taken branches: %d\n", c.CSR(emu.CSRTakenBranches))

	if *useDCache {
		cstats := c.Pipeline.DCacheStats()
		total := cstats.Hits + cstats.Misses
		hitRate := 0.0
		if total > 0 {
			hitRate = 100 * float64(cstats.Hits) / float64(total)
		}
		fmt.Printf("\nD-Cache:\n")
		fmt.Printf("  Accesses: %d (%.1f%% hits)\n", total, hitRate)
		fmt.Printf("  Evictions: %d, writebacks: %d\n",
			cstats.Evictions, cstats.Writebacks)
	}
}
