package emu

import "github.com/sarchlab/rvsim/insts"

// ALU is the arithmetic/compare unit. It is a pure function of two
// operands and an operation code; it holds no state beyond the register
// width it was built for.
type ALU struct {
	xlen insts.XLen
}

// NewALU creates an ALU for the given register width.
func NewALU(xlen insts.XLen) *ALU {
	return &ALU{xlen: xlen}
}

// Evaluate applies the operation to the operands. valid is false for the
// zero code and for codes the unit does not recognize (including word
// variants on a 32-bit core), in which case the result is zero. Compare
// operations produce exactly 0 or 1. Shift amounts are masked to the
// width's shift bits. Word variants on a 64-bit core operate on the low
// 32 bits and sign-extend the 32-bit result.
func (a *ALU) Evaluate(op1, op2 uint64, op insts.ExecOp) (uint64, bool) {
	if op == insts.ExecOpNone {
		return 0, false
	}

	if op.IsWord() {
		if a.xlen != insts.XLen64 {
			return 0, false
		}
		result, ok := evalWord(uint32(op1), uint32(op2), op.Base())
		if !ok {
			return 0, false
		}
		return uint64(int64(int32(result))), true
	}

	if a.xlen == insts.XLen32 {
		result, ok := eval32(uint32(op1), uint32(op2), op)
		return uint64(result), ok
	}
	return eval64(op1, op2, op)
}

func eval64(op1, op2 uint64, op insts.ExecOp) (uint64, bool) {
	switch op {
	case insts.ExecOpAdd:
		return op1 + op2, true
	case insts.ExecOpSub:
		return op1 - op2, true
	case insts.ExecOpSll:
		return op1 << (op2 & 0x3F), true
	case insts.ExecOpSrl:
		return op1 >> (op2 & 0x3F), true
	case insts.ExecOpSra:
		return uint64(int64(op1) >> (op2 & 0x3F)), true
	case insts.ExecOpSlt:
		return boolBit(int64(op1) < int64(op2)), true
	case insts.ExecOpSltu:
		return boolBit(op1 < op2), true
	case insts.ExecOpXor:
		return op1 ^ op2, true
	case insts.ExecOpOr:
		return op1 | op2, true
	case insts.ExecOpAnd:
		return op1 & op2, true
	case insts.ExecOpEq:
		return boolBit(op1 == op2), true
	case insts.ExecOpNe:
		return boolBit(op1 != op2), true
	case insts.ExecOpGe:
		return boolBit(int64(op1) >= int64(op2)), true
	case insts.ExecOpGeu:
		return boolBit(op1 >= op2), true
	default:
		return 0, false
	}
}

func eval32(op1, op2 uint32, op insts.ExecOp) (uint32, bool) {
	switch op {
	case insts.ExecOpAdd:
		return op1 + op2, true
	case insts.ExecOpSub:
		return op1 - op2, true
	case insts.ExecOpSll:
		return op1 << (op2 & 0x1F), true
	case insts.ExecOpSrl:
		return op1 >> (op2 & 0x1F), true
	case insts.ExecOpSra:
		return uint32(int32(op1) >> (op2 & 0x1F)), true
	case insts.ExecOpSlt:
		return uint32(boolBit(int32(op1) < int32(op2))), true
	case insts.ExecOpSltu:
		return uint32(boolBit(op1 < op2)), true
	case insts.ExecOpXor:
		return op1 ^ op2, true
	case insts.ExecOpOr:
		return op1 | op2, true
	case insts.ExecOpAnd:
		return op1 & op2, true
	case insts.ExecOpEq:
		return uint32(boolBit(op1 == op2)), true
	case insts.ExecOpNe:
		return uint32(boolBit(op1 != op2)), true
	case insts.ExecOpGe:
		return uint32(boolBit(int32(op1) >= int32(op2))), true
	case insts.ExecOpGeu:
		return uint32(boolBit(op1 >= op2)), true
	default:
		return 0, false
	}
}

// evalWord handles the RV64 word variants. Only the operations with a
// W-form encoding are recognized.
func evalWord(op1, op2 uint32, op insts.ExecOp) (uint32, bool) {
	switch op {
	case insts.ExecOpAdd:
		return op1 + op2, true
	case insts.ExecOpSub:
		return op1 - op2, true
	case insts.ExecOpSll:
		return op1 << (op2 & 0x1F), true
	case insts.ExecOpSrl:
		return op1 >> (op2 & 0x1F), true
	case insts.ExecOpSra:
		return uint32(int32(op1) >> (op2 & 0x1F)), true
	default:
		return 0, false
	}
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
