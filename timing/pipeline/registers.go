// Package pipeline implements the cycle-stepped in-order pipeline of the
// RISC-V core: fetch, decode, execute, memory, writeback, and the
// controller that owns the hazard scoreboard and the program counter.
package pipeline

import "github.com/sarchlab/rvsim/insts"

// FetchRegister holds the output of the fetch stage: one fetched
// instruction waiting to be decoded and issued.
type FetchRegister struct {
	// Valid indicates the register holds a fetched instruction.
	Valid bool

	// PC is the instruction's own address.
	PC uint64

	// Word is the raw 32-bit instruction word.
	Word uint32
}

// Clear resets the fetch register to empty state.
func (r *FetchRegister) Clear() {
	*r = FetchRegister{}
}

// ExecuteRegister holds the decode bundle the execute stage is working
// on. It is replaced with a fresh bundle (or a bubble) whenever the
// downstream memory unit is ready.
type ExecuteRegister struct {
	// Valid indicates the register holds a real instruction. A cleared
	// register is a bubble.
	Valid bool

	// Bundle is the decode-to-execute payload.
	Bundle insts.DecodeBundle
}

// Clear resets the execute register to a bubble.
func (r *ExecuteRegister) Clear() {
	*r = ExecuteRegister{}
}

// MemoryRegister is the execute-to-memory payload: the execute result
// plus everything the memory unit and writeback still need.
type MemoryRegister struct {
	// Valid indicates the register holds a real instruction.
	Valid bool

	// PC is the instruction's own address.
	PC uint64

	// ALUResult is the execute result: the value to commit for ALU
	// instructions, the transaction address for loads and stores, and
	// the CSR write value for CSR instructions.
	ALUResult uint64

	// Op3 is the pass-through operand (store data or CSR read value).
	Op3 uint64

	// Rd is the destination GPR index.
	Rd uint8
	// CSRAddr is the destination CSR index.
	CSRAddr uint16

	// Control fields consumed downstream.
	MemOp    insts.MemOp
	CSROp    insts.CSROp
	WBSource insts.WBSource

	// IsBreak marks an EBREAK flowing to retirement.
	IsBreak bool
}

// Clear resets the memory register to empty state.
func (r *MemoryRegister) Clear() {
	*r = MemoryRegister{}
}

// WritebackRegister is the memory-to-writeback payload. For loads it
// carries the raw bus word plus the byte offset captured when the
// transaction was issued; the offset stays stable even after the execute
// stage has moved on to a different address.
type WritebackRegister struct {
	// Valid indicates the register holds a completed instruction.
	Valid bool

	// PC is the instruction's own address.
	PC uint64

	// ALUResult is the execute result.
	ALUResult uint64

	// Op3 is the pass-through operand.
	Op3 uint64

	// MemData is the full bus word returned for a load.
	MemData uint64

	// ByteOffset is the load's offset within the bus word, captured at
	// request time.
	ByteOffset uint64

	// Rd is the destination GPR index.
	Rd uint8
	// CSRAddr is the destination CSR index.
	CSRAddr uint16

	// Control fields for the writeback mux.
	MemOp    insts.MemOp
	CSROp    insts.CSROp
	WBSource insts.WBSource

	// IsBreak marks an EBREAK retiring.
	IsBreak bool
}

// Clear resets the writeback register to empty state.
func (r *WritebackRegister) Clear() {
	*r = WritebackRegister{}
}

// ControlPayload is the execute-to-controller payload that drives the
// program-counter update and the squash pulse.
type ControlPayload struct {
	// Valid indicates the payload carries a real instruction's control
	// information this cycle.
	Valid bool

	// PC is the executing instruction's own address (the base for
	// relative targets).
	PC uint64

	// Result is the execute result: the absolute target for
	// PCOpSetAbsolute, the offset for PCOpAddRelative, and the condition
	// bit for PCOpConditional.
	Result uint64

	// Op3 is the branch offset for PCOpConditional.
	Op3 uint64

	// PCOp selects the program-counter update.
	PCOp insts.PCOp
}
