package benchmarks

import (
	"github.com/sarchlab/rvsim/timing/core"
)

// Benchmark defines one hand-assembled program together with the
// architectural results it must produce.
type Benchmark struct {
	// Name identifies the benchmark.
	Name string

	// Description explains what the benchmark measures.
	Description string

	// Setup pre-initializes core state before the run.
	Setup func(c *core.Core)

	// Program is the instruction words, placed from the reset address.
	Program []uint32

	// ExpectedRegs maps register indices to the values they must hold
	// when the program halts.
	ExpectedRegs map[uint8]uint64

	// MaxCycles bounds the run (0 uses the harness default).
	MaxCycles uint64
}

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each
// one targets a specific pipeline characteristic.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		fibonacciLoop(),
		memorySweep(),
		branchMix(),
		functionCalls(),
		byteAccess(),
	}
}

// arithmeticSequential measures peak issue with independent ALU
// operations that never touch the scoreboard of one another.
func arithmeticSequential() Benchmark {
	program := make([]uint32, 0, 21)
	for i := 0; i < 4; i++ {
		for reg := uint8(5); reg <= 9; reg++ {
			program = append(program, EncodeADDI(reg, reg, 1))
		}
	}
	program = append(program, EncodeEBREAK())

	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 independent ADDIs across five registers",
		Program:     program,
		ExpectedRegs: map[uint8]uint64{
			5: 4, 6: 4, 7: 4, 8: 4, 9: 4,
		},
	}
}

// dependencyChain measures the RAW stall cost: every instruction reads
// the register the previous one writes.
func dependencyChain() Benchmark {
	program := make([]uint32, 0, 21)
	for i := 0; i < 20; i++ {
		program = append(program, EncodeADDI(5, 5, 1))
	}
	program = append(program, EncodeEBREAK())

	return Benchmark{
		Name:         "dependency_chain",
		Description:  "20 dependent ADDIs on one register",
		Program:      program,
		ExpectedRegs: map[uint8]uint64{5: 20},
	}
}

// fibonacciLoop runs ten iterations of the Fibonacci recurrence with a
// backward branch, mixing RAW hazards with taken control flow.
func fibonacciLoop() Benchmark {
	return Benchmark{
		Name:        "fibonacci_loop",
		Description: "fib(11) via a ten-iteration counted loop",
		Program: []uint32{
			EncodeADDI(1, 0, 0),  // x1 = fib(n-1)
			EncodeADDI(2, 0, 1),  // x2 = fib(n)
			EncodeADDI(3, 0, 10), // x3 = counter
			EncodeADD(4, 1, 2),   // loop: x4 = x1 + x2
			EncodeADDI(1, 2, 0),  // x1 = x2
			EncodeADDI(2, 4, 0),  // x2 = x4
			EncodeADDI(3, 3, -1), // x3--
			EncodeBNE(3, 0, -16), // repeat while x3 != 0
			EncodeEBREAK(),
		},
		ExpectedRegs: map[uint8]uint64{2: 89, 3: 0},
	}
}

// memorySweep stores ten words to consecutive addresses, then loads them
// back and sums them, exercising the byte-lane path and load formatting.
func memorySweep() Benchmark {
	return Benchmark{
		Name:        "memory_sweep",
		Description: "ten-word store sweep followed by a load-and-sum pass",
		Program: []uint32{
			EncodeLUI(1, 1),      // x1 = 0x1000 (base)
			EncodeADDI(2, 0, 10), // x2 = store counter
			EncodeADDI(4, 1, 0),  // x4 = write pointer
			EncodeSW(4, 2, 0),    // store: mem[x4] = x2
			EncodeADDI(4, 4, 4),
			EncodeADDI(2, 2, -1),
			EncodeBNE(2, 0, -12),
			EncodeADDI(2, 0, 10), // x2 = load counter
			EncodeADDI(4, 1, 0),  // x4 = read pointer
			EncodeADDI(5, 0, 0),  // x5 = sum
			EncodeLW(6, 4, 0),    // load: x6 = mem[x4]
			EncodeADD(5, 5, 6),
			EncodeADDI(4, 4, 4),
			EncodeADDI(2, 2, -1),
			EncodeBNE(2, 0, -16),
			EncodeEBREAK(),
		},
		ExpectedRegs: map[uint8]uint64{5: 55},
	}
}

// functionCalls drives a counted loop through a leaf call, paying the
// jal/jalr squash pair on every iteration.
func functionCalls() Benchmark {
	return Benchmark{
		Name:        "function_calls",
		Description: "five leaf calls through jal/jalr",
		Program: []uint32{
			EncodeADDI(10, 0, 0),  // x10 = acc
			EncodeADDI(11, 0, 5),  // x11 = counter
			EncodeJAL(1, 20),      // loop: call leaf at +20
			EncodeADDI(11, 11, -1),
			EncodeBNE(11, 0, -8), // repeat while x11 != 0
			EncodeCSRR(12, 0xB00),
			EncodeEBREAK(),
			EncodeADDI(10, 10, 1), // leaf: x10++
			EncodeJALR(0, 1, 0),   // return
		},
		ExpectedRegs: map[uint8]uint64{10: 5, 11: 0},
	}
}

// byteAccess stores one byte into the middle of a word and reads it
// back, exercising the byte-lane path at a non-zero offset.
func byteAccess() Benchmark {
	return Benchmark{
		Name:        "byte_access",
		Description: "sub-word store and zero-extending load at offset 3",
		Program: []uint32{
			EncodeLUI(1, 1),      // x1 = 0x1000
			EncodeADDI(2, 0, 171),
			EncodeSB(1, 2, 3),    // mem[x1+3] = 0xAB
			EncodeLBU(3, 1, 3),   // x3 = mem[x1+3]
			EncodeSUB(4, 3, 2),   // x4 = 0 when the round trip held
			EncodeEBREAK(),
		},
		ExpectedRegs: map[uint8]uint64{3: 171, 4: 0},
	}
}

// branchMix alternates taken and not-taken branches over a counted loop.
func branchMix() Benchmark {
	return Benchmark{
		Name:        "branch_mix",
		Description: "counts odd loop indices, mixing branch outcomes",
		Program: []uint32{
			EncodeADDI(1, 0, 10), // x1 = counter
			EncodeADDI(2, 0, 0),  // x2 = odd count
			EncodeANDI(3, 1, 1),  // loop: x3 = x1 & 1
			EncodeBEQ(3, 0, 8),   // skip the increment when even
			EncodeADDI(2, 2, 1),
			EncodeADDI(1, 1, -1),
			EncodeBNE(1, 0, -16),
			EncodeEBREAK(),
		},
		ExpectedRegs: map[uint8]uint64{1: 0, 2: 5},
	}
}
