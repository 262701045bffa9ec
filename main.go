// Package main provides the entry point for rvsim.
// rvsim is a cycle-stepped RV32I/RV64I in-order core simulator.
//
// For the full CLI, use: go run ./cmd/rvsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rvsim - RISC-V in-order core simulator")
	fmt.Println("")
	fmt.Println("Usage: rvsim [options] <firmware.hex>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -xlen        Register width, 32 or 64")
	fmt.Println("  -config      Path to timing configuration JSON file")
	fmt.Println("  -dcache      Enable the data cache")
	fmt.Println("  -max-cycles  Cycle limit")
	fmt.Println("  -v           Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rvsim' instead.")
	}
}
