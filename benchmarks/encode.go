// Package benchmarks provides hand-assembled RISC-V programs and a
// timing harness for exercising the core end to end.
package benchmarks

const (
	opcodeLoad   = 0x03
	opcodeOpImm  = 0x13
	opcodeStore  = 0x23
	opcodeOp     = 0x33
	opcodeLui    = 0x37
	opcodeBranch = 0x63
	opcodeJalr   = 0x67
	opcodeJal    = 0x6F
	opcodeSystem = 0x73
)

func encodeR(opcode, funct3, funct7 uint32, rd, rs1, rs2 uint8) uint32 {
	return funct7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 |
		funct3<<12 | uint32(rd)<<7 | opcode
}

func encodeI(opcode, funct3 uint32, rd, rs1 uint8, imm int32) uint32 {
	return uint32(imm)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

func encodeS(opcode, funct3 uint32, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm)
	return (u>>5&0x7F)<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 |
		funct3<<12 | (u&0x1F)<<7 | opcode
}

func encodeB(funct3 uint32, rs1, rs2 uint8, offset int32) uint32 {
	u := uint32(offset)
	return (u>>12&0x1)<<31 | (u>>5&0x3F)<<25 | uint32(rs2)<<20 |
		uint32(rs1)<<15 | funct3<<12 | (u>>1&0xF)<<8 | (u>>11&0x1)<<7 |
		opcodeBranch
}

// EncodeADDI encodes addi rd, rs1, imm.
func EncodeADDI(rd, rs1 uint8, imm int32) uint32 {
	return encodeI(opcodeOpImm, 0x0, rd, rs1, imm)
}

// EncodeANDI encodes andi rd, rs1, imm.
func EncodeANDI(rd, rs1 uint8, imm int32) uint32 {
	return encodeI(opcodeOpImm, 0x7, rd, rs1, imm)
}

// EncodeADD encodes add rd, rs1, rs2.
func EncodeADD(rd, rs1, rs2 uint8) uint32 {
	return encodeR(opcodeOp, 0x0, 0x00, rd, rs1, rs2)
}

// EncodeSUB encodes sub rd, rs1, rs2.
func EncodeSUB(rd, rs1, rs2 uint8) uint32 {
	return encodeR(opcodeOp, 0x0, 0x20, rd, rs1, rs2)
}

// EncodeLUI encodes lui rd, imm20 (imm20 is the upper-20-bit field, not
// the shifted value).
func EncodeLUI(rd uint8, imm20 uint32) uint32 {
	return imm20<<12 | uint32(rd)<<7 | opcodeLui
}

// EncodeLW encodes lw rd, imm(rs1).
func EncodeLW(rd, rs1 uint8, imm int32) uint32 {
	return encodeI(opcodeLoad, 0x2, rd, rs1, imm)
}

// EncodeLBU encodes lbu rd, imm(rs1).
func EncodeLBU(rd, rs1 uint8, imm int32) uint32 {
	return encodeI(opcodeLoad, 0x4, rd, rs1, imm)
}

// EncodeSW encodes sw rs2, imm(rs1).
func EncodeSW(rs1, rs2 uint8, imm int32) uint32 {
	return encodeS(opcodeStore, 0x2, rs1, rs2, imm)
}

// EncodeSB encodes sb rs2, imm(rs1).
func EncodeSB(rs1, rs2 uint8, imm int32) uint32 {
	return encodeS(opcodeStore, 0x0, rs1, rs2, imm)
}

// EncodeBEQ encodes beq rs1, rs2, offset (offset relative to the branch).
func EncodeBEQ(rs1, rs2 uint8, offset int32) uint32 {
	return encodeB(0x0, rs1, rs2, offset)
}

// EncodeBNE encodes bne rs1, rs2, offset.
func EncodeBNE(rs1, rs2 uint8, offset int32) uint32 {
	return encodeB(0x1, rs1, rs2, offset)
}

// EncodeJAL encodes jal rd, offset.
func EncodeJAL(rd uint8, offset int32) uint32 {
	u := uint32(offset)
	return (u>>20&0x1)<<31 | (u>>1&0x3FF)<<21 | (u>>11&0x1)<<20 |
		(u>>12&0xFF)<<12 | uint32(rd)<<7 | opcodeJal
}

// EncodeJALR encodes jalr rd, imm(rs1).
func EncodeJALR(rd, rs1 uint8, imm int32) uint32 {
	return encodeI(opcodeJalr, 0x0, rd, rs1, imm)
}

// EncodeCSRR encodes csrrs rd, csr, x0 (a plain CSR read).
func EncodeCSRR(rd uint8, csr uint16) uint32 {
	return encodeI(opcodeSystem, 0x2, rd, 0, int32(csr))
}

// EncodeEBREAK encodes the ebreak halt marker.
func EncodeEBREAK() uint32 {
	return 1<<20 | opcodeSystem
}
