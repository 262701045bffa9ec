package insts

// RV32I/RV64I base opcodes (instruction word bits [6:0]).
const (
	opcodeLoad    = 0x03
	opcodeMiscMem = 0x0F
	opcodeOpImm   = 0x13
	opcodeAuipc   = 0x17
	opcodeOpImm32 = 0x1B
	opcodeStore   = 0x23
	opcodeOp      = 0x33
	opcodeLui     = 0x37
	opcodeOp32    = 0x3B
	opcodeBranch  = 0x63
	opcodeJalr    = 0x67
	opcodeJal     = 0x6F
	opcodeSystem  = 0x73
)

// Decoder decodes RV32I/RV64I instruction words into Instruction records.
// A decoder is fixed to one register width; RV64-only encodings decode to
// bubbles on a 32-bit decoder.
type Decoder struct {
	xlen XLen
}

// NewDecoder creates a decoder for the given register width.
func NewDecoder(xlen XLen) *Decoder {
	return &Decoder{xlen: xlen}
}

// Decode turns a raw instruction word into an Instruction. Words the
// decoder does not recognize, and legal-but-unimplemented instructions
// (FENCE, ECALL), decode to bubbles so they flow through the pipeline
// without side effects.
func (d *Decoder) Decode(word uint32) Instruction {
	inst := Instruction{
		Raw: word,
		Rd:  uint8((word >> 7) & 0x1F),
		Rs1: uint8((word >> 15) & 0x1F),
		Rs2: uint8((word >> 20) & 0x1F),
	}
	funct3 := (word >> 12) & 0x7
	funct7 := (word >> 25) & 0x7F

	switch word & 0x7F {
	case opcodeOp:
		return d.decodeOp(inst, funct3, funct7, false)
	case opcodeOp32:
		if d.xlen != XLen64 {
			return bubble(word)
		}
		return d.decodeOp(inst, funct3, funct7, true)
	case opcodeOpImm:
		return d.decodeOpImm(inst, funct3, funct7, false)
	case opcodeOpImm32:
		if d.xlen != XLen64 {
			return bubble(word)
		}
		return d.decodeOpImm(inst, funct3, funct7, true)
	case opcodeLui:
		inst.Format = FormatLui
		inst.Imm = immU(word)
		inst.ExecOp = ExecOpAdd
		inst.WBSource = WBSourceALU
		return inst
	case opcodeAuipc:
		inst.Format = FormatAuipc
		inst.Imm = immU(word)
		inst.ExecOp = ExecOpAdd
		inst.WBSource = WBSourceALU
		return inst
	case opcodeLoad:
		return d.decodeLoad(inst, funct3)
	case opcodeStore:
		return d.decodeStore(inst, funct3)
	case opcodeBranch:
		return d.decodeBranch(inst, funct3)
	case opcodeJal:
		inst.Format = FormatJal
		inst.Imm = immJ(word)
		inst.ExecOp = ExecOpAdd
		inst.PCOp = PCOpAddRelative
		inst.WBSource = WBSourcePCLink
		return inst
	case opcodeJalr:
		if funct3 != 0 {
			return bubble(word)
		}
		inst.Format = FormatJalr
		inst.Imm = immI(word)
		inst.UsesRs1 = true
		inst.ExecOp = ExecOpAdd
		inst.PCOp = PCOpSetAbsolute
		inst.WBSource = WBSourcePCLink
		return inst
	case opcodeSystem:
		return d.decodeSystem(inst, funct3)
	case opcodeMiscMem:
		// FENCE: no-op on a single in-order core.
		return bubble(word)
	default:
		return bubble(word)
	}
}

// bubble returns a no-op instruction carrying the raw word for debugging.
func bubble(word uint32) Instruction {
	return Instruction{Raw: word, Format: FormatNop}
}

func (d *Decoder) decodeOp(inst Instruction, funct3, funct7 uint32, word32 bool) Instruction {
	op, ok := regALUOp(funct3, funct7, word32)
	if !ok {
		return bubble(inst.Raw)
	}
	inst.Format = FormatOp
	inst.UsesRs1 = true
	inst.UsesRs2 = true
	inst.ExecOp = op
	if word32 {
		inst.ExecOp |= ExecOpWord
	}
	inst.WBSource = WBSourceALU
	return inst
}

// regALUOp maps OP/OP-32 funct fields to an ExecOp.
func regALUOp(funct3, funct7 uint32, word32 bool) (ExecOp, bool) {
	switch funct3 {
	case 0x0:
		switch funct7 {
		case 0x00:
			return ExecOpAdd, true
		case 0x20:
			return ExecOpSub, true
		}
	case 0x1:
		if funct7 == 0x00 {
			return ExecOpSll, true
		}
	case 0x2:
		if funct7 == 0x00 && !word32 {
			return ExecOpSlt, true
		}
	case 0x3:
		if funct7 == 0x00 && !word32 {
			return ExecOpSltu, true
		}
	case 0x4:
		if funct7 == 0x00 && !word32 {
			return ExecOpXor, true
		}
	case 0x5:
		switch funct7 {
		case 0x00:
			return ExecOpSrl, true
		case 0x20:
			return ExecOpSra, true
		}
	case 0x6:
		if funct7 == 0x00 && !word32 {
			return ExecOpOr, true
		}
	case 0x7:
		if funct7 == 0x00 && !word32 {
			return ExecOpAnd, true
		}
	}
	return ExecOpNone, false
}

func (d *Decoder) decodeOpImm(inst Instruction, funct3, funct7 uint32, word32 bool) Instruction {
	inst.Format = FormatOpImm
	inst.UsesRs1 = true
	inst.Imm = immI(inst.Raw)
	inst.WBSource = WBSourceALU

	switch funct3 {
	case 0x0:
		inst.ExecOp = ExecOpAdd
	case 0x1:
		if funct7&^d.shamtHighBit(word32) != 0 {
			return bubble(inst.Raw)
		}
		inst.ExecOp = ExecOpSll
		inst.Imm = d.shamt(inst.Raw, word32)
	case 0x2:
		if word32 {
			return bubble(inst.Raw)
		}
		inst.ExecOp = ExecOpSlt
	case 0x3:
		if word32 {
			return bubble(inst.Raw)
		}
		inst.ExecOp = ExecOpSltu
	case 0x4:
		if word32 {
			return bubble(inst.Raw)
		}
		inst.ExecOp = ExecOpXor
	case 0x5:
		switch funct7 &^ d.shamtHighBit(word32) {
		case 0x00:
			inst.ExecOp = ExecOpSrl
		case 0x20:
			inst.ExecOp = ExecOpSra
		default:
			return bubble(inst.Raw)
		}
		inst.Imm = d.shamt(inst.Raw, word32)
	case 0x6:
		if word32 {
			return bubble(inst.Raw)
		}
		inst.ExecOp = ExecOpOr
	case 0x7:
		if word32 {
			return bubble(inst.Raw)
		}
		inst.ExecOp = ExecOpAnd
	}
	if word32 {
		inst.ExecOp |= ExecOpWord
	}
	return inst
}

// shamtHighBit returns the funct7 bit that carries shamt[5]: available
// only for full-width shifts on a 64-bit core, zero otherwise (shamt[5]
// set on RV32 or on word shifts is an illegal encoding).
func (d *Decoder) shamtHighBit(word32 bool) uint32 {
	if d.xlen == XLen64 && !word32 {
		return 0x01
	}
	return 0
}

// shamt extracts the shift amount: 5 bits on RV32 and word shifts, 6 bits
// otherwise.
func (d *Decoder) shamt(word uint32, word32 bool) int64 {
	if d.xlen == XLen64 && !word32 {
		return int64((word >> 20) & 0x3F)
	}
	return int64((word >> 20) & 0x1F)
}

func (d *Decoder) decodeLoad(inst Instruction, funct3 uint32) Instruction {
	var memOp MemOp
	switch funct3 {
	case 0x0:
		memOp = MemOpLoadByte
	case 0x1:
		memOp = MemOpLoadHalf
	case 0x2:
		memOp = MemOpLoadWord
	case 0x3:
		if d.xlen != XLen64 {
			return bubble(inst.Raw)
		}
		memOp = MemOpLoadDouble
	case 0x4:
		memOp = MemOpLoadByteU
	case 0x5:
		memOp = MemOpLoadHalfU
	case 0x6:
		if d.xlen != XLen64 {
			return bubble(inst.Raw)
		}
		memOp = MemOpLoadWordU
	default:
		return bubble(inst.Raw)
	}
	inst.Format = FormatLoad
	inst.UsesRs1 = true
	inst.Imm = immI(inst.Raw)
	inst.ExecOp = ExecOpAdd
	inst.MemOp = memOp
	inst.WBSource = WBSourceMemory
	return inst
}

func (d *Decoder) decodeStore(inst Instruction, funct3 uint32) Instruction {
	var memOp MemOp
	switch funct3 {
	case 0x0:
		memOp = MemOpStoreByte
	case 0x1:
		memOp = MemOpStoreHalf
	case 0x2:
		memOp = MemOpStoreWord
	case 0x3:
		if d.xlen != XLen64 {
			return bubble(inst.Raw)
		}
		memOp = MemOpStoreDouble
	default:
		return bubble(inst.Raw)
	}
	inst.Format = FormatStore
	inst.Rd = 0
	inst.UsesRs1 = true
	inst.UsesRs2 = true
	inst.Imm = immS(inst.Raw)
	inst.ExecOp = ExecOpAdd
	inst.MemOp = memOp
	return inst
}

func (d *Decoder) decodeBranch(inst Instruction, funct3 uint32) Instruction {
	var op ExecOp
	switch funct3 {
	case 0x0:
		op = ExecOpEq
	case 0x1:
		op = ExecOpNe
	case 0x4:
		op = ExecOpSlt
	case 0x5:
		op = ExecOpGe
	case 0x6:
		op = ExecOpSltu
	case 0x7:
		op = ExecOpGeu
	default:
		return bubble(inst.Raw)
	}
	inst.Format = FormatBranch
	inst.Rd = 0
	inst.UsesRs1 = true
	inst.UsesRs2 = true
	inst.Imm = immB(inst.Raw)
	inst.ExecOp = op
	inst.PCOp = PCOpConditional
	return inst
}

func (d *Decoder) decodeSystem(inst Instruction, funct3 uint32) Instruction {
	switch funct3 {
	case 0x0:
		// ECALL (imm=0) and EBREAK (imm=1) are no-ops architecturally;
		// EBREAK is flagged so a harness can end the run.
		b := bubble(inst.Raw)
		if (inst.Raw>>20)&0xFFF == 1 {
			b.IsBreak = true
		}
		return b
	case 0x1: // CSRRW
		inst.Format = FormatCSR
		inst.UsesRs1 = true
		inst.CSRAddr = uint16(inst.Raw >> 20)
		inst.CSROp = CSROpWrite
		// The ALU passes rs1 through (op2 is zero) so the execute
		// result carries the CSR write value.
		inst.ExecOp = ExecOpAdd
		if inst.Rd != 0 {
			inst.WBSource = WBSourceOperand3
		}
		return inst
	case 0x2, 0x3: // CSRRS / CSRRC
		inst.Format = FormatCSR
		inst.CSRAddr = uint16(inst.Raw >> 20)
		inst.ExecOp = ExecOpAdd
		inst.WBSource = WBSourceOperand3
		if inst.Rs1 != 0 {
			// Read-modify-write forms are not supported against the
			// read-only counter CSRs; the write side is dropped.
			inst.UsesRs1 = true
		}
		return inst
	default:
		return bubble(inst.Raw)
	}
}

// immI extracts the sign-extended I-type immediate (bits [31:20]).
func immI(word uint32) int64 {
	return int64(int32(word)) >> 20
}

// immS extracts the sign-extended S-type immediate.
func immS(word uint32) int64 {
	imm := int64(int32(word&0xFE000000)) >> 20
	return imm | int64((word>>7)&0x1F)
}

// immB extracts the sign-extended B-type immediate (always even).
func immB(word uint32) int64 {
	imm := int64(int32(word&0x80000000)) >> 19
	imm |= int64((word>>7)&0x1) << 11
	imm |= int64((word>>25)&0x3F) << 5
	imm |= int64((word>>8)&0xF) << 1
	return imm
}

// immU extracts the U-type immediate (upper 20 bits, sign-extended).
func immU(word uint32) int64 {
	return int64(int32(word & 0xFFFFF000))
}

// immJ extracts the sign-extended J-type immediate (always even).
func immJ(word uint32) int64 {
	imm := int64(int32(word&0x80000000)) >> 11
	imm |= int64(word & 0xFF000)
	imm |= int64((word>>20)&0x1) << 11
	imm |= int64((word>>21)&0x3FF) << 1
	return imm
}
