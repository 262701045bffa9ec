// Package insts provides RISC-V instruction definitions and decoding.
//
// This package implements decoding of RV32I/RV64I machine code into
// structured micro-op representations consumed by the pipeline. Each
// decoded instruction carries five independent control fields:
//   - ExecOp: which ALU operation to perform
//   - MemOp: which memory transaction to issue (if any)
//   - PCOp: how the program counter advances
//   - WBSource: which value is committed to the destination GPR
//   - CSROp: whether a CSR is written
//
// Usage:
//
//	decoder := insts.NewDecoder(insts.XLen32)
//	inst := decoder.Decode(0x00500093) // ADDI x1, x0, 5
package insts

import "fmt"

// XLen is the register width of a core, fixed at construction.
type XLen int

const (
	// XLen32 selects a 32-bit (RV32I) core.
	XLen32 XLen = 32
	// XLen64 selects a 64-bit (RV64I) core.
	XLen64 XLen = 64
)

// Validate returns an error if the width is not a supported RISC-V width.
func (x XLen) Validate() error {
	if x != XLen32 && x != XLen64 {
		return fmt.Errorf("unsupported register width %d: must be 32 or 64", int(x))
	}
	return nil
}

// Bytes returns the register width in bytes.
func (x XLen) Bytes() int {
	return int(x) / 8
}

// ShiftMask returns the mask applied to shift amounts (5 bits for 32-bit
// cores, 6 bits for 64-bit cores).
func (x XLen) ShiftMask() uint64 {
	if x == XLen64 {
		return 0x3F
	}
	return 0x1F
}

// Mask returns the mask that truncates a value to the register width.
func (x XLen) Mask() uint64 {
	if x == XLen64 {
		return ^uint64(0)
	}
	return 0xFFFFFFFF
}

// ExecOp selects the operation performed by the arithmetic/compare unit.
// The zero value is not a valid operation; the ALU reports valid=false
// for it. On a 64-bit core, ORing ExecOpWord selects the 32-bit "word"
// variant, which operates on the low 32 bits and sign-extends the result.
type ExecOp uint8

const (
	// ExecOpNone is the invalid/idle operation.
	ExecOpNone ExecOp = 0

	// ExecOpAdd computes op1 + op2.
	ExecOpAdd ExecOp = iota
	// ExecOpSub computes op1 - op2.
	ExecOpSub
	// ExecOpSll shifts op1 left by op2 (masked to the width's shift bits).
	ExecOpSll
	// ExecOpSrl shifts op1 right logically by op2.
	ExecOpSrl
	// ExecOpSra shifts op1 right arithmetically by op2.
	ExecOpSra
	// ExecOpSlt produces 1 if op1 < op2 as signed values, else 0.
	ExecOpSlt
	// ExecOpSltu produces 1 if op1 < op2 as unsigned values, else 0.
	ExecOpSltu
	// ExecOpXor computes op1 ^ op2.
	ExecOpXor
	// ExecOpOr computes op1 | op2.
	ExecOpOr
	// ExecOpAnd computes op1 & op2.
	ExecOpAnd
	// ExecOpEq produces 1 if op1 == op2, else 0.
	ExecOpEq
	// ExecOpNe produces 1 if op1 != op2, else 0.
	ExecOpNe
	// ExecOpGe produces 1 if op1 >= op2 as signed values, else 0.
	ExecOpGe
	// ExecOpGeu produces 1 if op1 >= op2 as unsigned values, else 0.
	ExecOpGeu

	// ExecOpWord is the high bit selecting the 32-bit variant of an
	// operation on a 64-bit core (ADDW, SUBW, SLLW, SRLW, SRAW).
	ExecOpWord ExecOp = 1 << 5
)

// Base strips the word-variant bit, leaving the underlying operation.
func (op ExecOp) Base() ExecOp {
	return op &^ ExecOpWord
}

// IsWord reports whether the word-variant bit is set.
func (op ExecOp) IsWord() bool {
	return op&ExecOpWord != 0
}

// PCOp selects how the program counter is updated when an instruction
// reaches the execute stage.
type PCOp uint8

const (
	// PCOpIncrement advances the PC by the instruction width.
	PCOpIncrement PCOp = iota
	// PCOpSetAbsolute sets the PC to the execute result with the low bit
	// cleared (JALR).
	PCOpSetAbsolute
	// PCOpAddRelative sets the PC to the instruction's own address plus
	// the execute result (JAL).
	PCOpAddRelative
	// PCOpConditional sets the PC to the instruction's own address plus
	// the branch offset when the execute result's low bit is set,
	// otherwise falls through (conditional branches).
	PCOpConditional
)

// IsRedirect reports whether this PC operation can redirect control flow
// away from sequential fetch.
func (op PCOp) IsRedirect() bool {
	return op != PCOpIncrement
}

// MemOp selects the memory transaction issued for an instruction.
type MemOp uint8

const (
	// MemOpIdle issues no transaction.
	MemOpIdle MemOp = iota
	// MemOpLoadByte reads one byte and sign-extends it.
	MemOpLoadByte
	// MemOpLoadHalf reads two bytes and sign-extends them.
	MemOpLoadHalf
	// MemOpLoadWord reads four bytes and sign-extends them.
	MemOpLoadWord
	// MemOpLoadDouble reads eight bytes (RV64 only).
	MemOpLoadDouble
	// MemOpLoadByteU reads one byte and zero-extends it.
	MemOpLoadByteU
	// MemOpLoadHalfU reads two bytes and zero-extends them.
	MemOpLoadHalfU
	// MemOpLoadWordU reads four bytes and zero-extends them (RV64 only).
	MemOpLoadWordU
	// MemOpStoreByte writes one byte.
	MemOpStoreByte
	// MemOpStoreHalf writes two bytes.
	MemOpStoreHalf
	// MemOpStoreWord writes four bytes.
	MemOpStoreWord
	// MemOpStoreDouble writes eight bytes (RV64 only).
	MemOpStoreDouble
)

// IsLoad reports whether the operation reads memory.
func (op MemOp) IsLoad() bool {
	return op >= MemOpLoadByte && op <= MemOpLoadWordU
}

// IsStore reports whether the operation writes memory.
func (op MemOp) IsStore() bool {
	return op >= MemOpStoreByte && op <= MemOpStoreDouble
}

// AccessBytes returns the number of bytes the operation transfers, or 0
// for idle.
func (op MemOp) AccessBytes() int {
	switch op {
	case MemOpLoadByte, MemOpLoadByteU, MemOpStoreByte:
		return 1
	case MemOpLoadHalf, MemOpLoadHalfU, MemOpStoreHalf:
		return 2
	case MemOpLoadWord, MemOpLoadWordU, MemOpStoreWord:
		return 4
	case MemOpLoadDouble, MemOpStoreDouble:
		return 8
	default:
		return 0
	}
}

// SignExtend reports whether load data is sign-extended after narrowing.
func (op MemOp) SignExtend() bool {
	switch op {
	case MemOpLoadByte, MemOpLoadHalf, MemOpLoadWord, MemOpLoadDouble:
		return true
	default:
		return false
	}
}

// WBSource selects which value the writeback unit commits to the
// destination GPR.
type WBSource uint8

const (
	// WBSourceIdle commits nothing.
	WBSourceIdle WBSource = iota
	// WBSourceMemory commits the formatted load data.
	WBSourceMemory
	// WBSourceALU commits the execute result.
	WBSourceALU
	// WBSourcePCLink commits the instruction's own address plus the
	// instruction width (the return address for JAL/JALR).
	WBSourcePCLink
	// WBSourceOperand3 commits the third operand verbatim (CSR reads).
	WBSourceOperand3
)

// CSROp selects whether a CSR is written at retirement.
type CSROp uint8

const (
	// CSROpIdle performs no CSR write.
	CSROpIdle CSROp = iota
	// CSROpWrite writes the first operand to the destination CSR.
	CSROpWrite
)

// Format identifies the operand routing of a decoded instruction.
type Format uint8

const (
	// FormatNop is a bubble: no operands, no side effects.
	FormatNop Format = iota
	// FormatOp is a register-register ALU instruction.
	FormatOp
	// FormatOpImm is a register-immediate ALU instruction.
	FormatOpImm
	// FormatLui loads an upper immediate.
	FormatLui
	// FormatAuipc adds an upper immediate to the PC.
	FormatAuipc
	// FormatLoad is a memory read.
	FormatLoad
	// FormatStore is a memory write.
	FormatStore
	// FormatBranch is a conditional branch.
	FormatBranch
	// FormatJal is a PC-relative jump-and-link.
	FormatJal
	// FormatJalr is an absolute jump-and-link through a register.
	FormatJalr
	// FormatCSR is a CSR read and optional write.
	FormatCSR
)

// Instruction is a decoded RV32I/RV64I instruction. It carries register
// indices and the immediate; operand values are bound by the pipeline's
// decode stage, which reads the register files.
type Instruction struct {
	// Raw is the undecoded 32-bit instruction word.
	Raw uint32

	// Format selects the operand routing.
	Format Format

	// Rd is the destination GPR index.
	Rd uint8
	// Rs1 is the first source GPR index.
	Rs1 uint8
	// Rs2 is the second source GPR index.
	Rs2 uint8

	// UsesRs1 and UsesRs2 report which source registers the instruction
	// actually reads, for hazard tracking.
	UsesRs1 bool
	UsesRs2 bool

	// Imm is the sign-extended immediate.
	Imm int64

	// Micro-op control fields.
	ExecOp   ExecOp
	MemOp    MemOp
	PCOp     PCOp
	WBSource WBSource
	CSROp    CSROp

	// CSRAddr is the CSR index for FormatCSR instructions.
	CSRAddr uint16

	// IsBreak marks an EBREAK. Architecturally a no-op; harnesses use it
	// to end a run.
	IsBreak bool
}

// DecodeBundle is the decode-to-execute payload: operand values bound
// from the register files plus the five micro-op control fields. It is
// the fixed contract the pipeline consumes; one bundle flows per pipeline
// slot per cycle and is replaced wholesale at each cycle boundary.
type DecodeBundle struct {
	// PC is the instruction's own address.
	PC uint64

	// Op1 and Op2 feed the arithmetic/compare unit.
	Op1 uint64
	Op2 uint64
	// Op3 is the pass-through operand: store data, branch offset, or a
	// CSR read value, depending on the micro-ops.
	Op3 uint64

	// Rd is the destination GPR index (0 when no GPR is written).
	Rd uint8
	// CSRAddr is the destination CSR index for CSROpWrite.
	CSRAddr uint16

	// Micro-op control fields.
	ExecOp   ExecOp
	MemOp    MemOp
	CSROp    CSROp
	WBSource WBSource
	PCOp     PCOp

	// IsBreak marks an EBREAK reaching the pipeline.
	IsBreak bool
}

// IsBubble reports whether the instruction does nothing at all.
func (i Instruction) IsBubble() bool {
	return i.Format == FormatNop
}

// WritesGPR reports whether the instruction commits a GPR value.
func (i Instruction) WritesGPR() bool {
	return i.WBSource != WBSourceIdle && i.Rd != 0
}
