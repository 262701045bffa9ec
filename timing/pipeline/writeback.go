package pipeline

import (
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

// RetireInfo reports what the writeback unit committed this cycle.
type RetireInfo struct {
	// Retired is true when a real instruction left the pipeline.
	Retired bool
	// WroteGPR is true when a GPR value was committed.
	WroteGPR bool
	// Rd is the written register (when WroteGPR).
	Rd uint8
	// Value is the committed value (when WroteGPR).
	Value uint64
	// IsBreak is true when the retiring instruction was an EBREAK.
	IsBreak bool
}

// WritebackUnit selects the final value committed to a GPR and applies
// GPR and CSR writes. It is the only writer of the register file.
type WritebackUnit struct {
	regFile *emu.RegFile
	csrFile *emu.CSRFile
	xlen    insts.XLen
}

// NewWritebackUnit creates a writeback unit committing to the given
// register files.
func NewWritebackUnit(regFile *emu.RegFile, csrFile *emu.CSRFile) *WritebackUnit {
	return &WritebackUnit{
		regFile: regFile,
		csrFile: csrFile,
		xlen:    regFile.XLen(),
	}
}

// Commit retires the payload in the writeback register. The written
// value becomes visible to register reads from the next cycle on.
func (u *WritebackUnit) Commit(wb *WritebackRegister) RetireInfo {
	if !wb.Valid {
		return RetireInfo{}
	}

	info := RetireInfo{Retired: true, IsBreak: wb.IsBreak}

	if wb.CSROp == insts.CSROpWrite {
		u.csrFile.Write(wb.CSRAddr, wb.ALUResult)
	}

	// Register 0 is never written, whatever the selector says.
	if wb.WBSource == insts.WBSourceIdle || wb.Rd == 0 {
		return info
	}

	var value uint64
	switch wb.WBSource {
	case insts.WBSourceALU:
		value = wb.ALUResult
	case insts.WBSourcePCLink:
		value = wb.PC + instrBytes
	case insts.WBSourceOperand3:
		value = wb.Op3
	case insts.WBSourceMemory:
		value = u.formatLoad(wb)
	}

	u.regFile.Write(wb.Rd, value)
	info.WroteGPR = true
	info.Rd = wb.Rd
	info.Value = value
	return info
}

// formatLoad extracts the accessed sub-word from the bus read data at the
// byte offset captured by the memory unit, then sign- or zero-extends it
// per the memory op. An op without a narrowing width yields the full
// native word.
func (u *WritebackUnit) formatLoad(wb *WritebackRegister) uint64 {
	size := wb.MemOp.AccessBytes()
	if size == 0 || size >= u.xlen.Bytes() {
		return wb.MemData >> (8 * wb.ByteOffset)
	}

	raw := wb.MemData >> (8 * wb.ByteOffset)
	bits := uint(8 * size)
	raw &= 1<<bits - 1

	if wb.MemOp.SignExtend() && raw&(1<<(bits-1)) != 0 {
		raw |= ^uint64(0) << bits
	}
	return raw
}
