package pipeline

import (
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/bus"
)

// MemoryUnit turns the memory micro-op of the payload held in the memory
// register into an aligned bus transaction and tracks its multi-cycle
// completion. Idle payloads complete one cycle after the execute-valid
// was observed, so non-memory instructions keep the same pipeline
// latency.
type MemoryUnit struct {
	port      *bus.Port
	wordBytes int

	// issued is true while a bus transaction for the current payload is
	// outstanding.
	issued bool

	// offset is the byte offset within the bus word, captured when the
	// transaction is issued. It must stay stable until writeback even if
	// the execute stage has already produced a different address for the
	// next instruction.
	offset uint64
}

// NewMemoryUnit creates a memory unit on the given data port.
func NewMemoryUnit(port *bus.Port) *MemoryUnit {
	return &MemoryUnit{
		port:      port,
		wordBytes: port.WordBytes(),
	}
}

// Step advances the current memory payload by one cycle. done reports
// that the payload leaves the unit at the end of this cycle; when the
// payload was a real instruction the returned writeback register carries
// it onward. A bus fault is returned as a hard error.
func (u *MemoryUnit) Step(reg *MemoryRegister) (WritebackRegister, bool, error) {
	resp := u.port.Tick()

	if !reg.Valid {
		return WritebackRegister{}, true, nil
	}

	if reg.MemOp == insts.MemOpIdle {
		return u.complete(reg, 0, 0), true, nil
	}

	if !u.issued {
		u.issue(reg)
		return WritebackRegister{}, false, nil
	}

	if !resp.Valid {
		return WritebackRegister{}, false, nil
	}
	u.issued = false
	if resp.Err != nil {
		return WritebackRegister{}, false, resp.Err
	}
	return u.complete(reg, resp.Data, u.offset), true, nil
}

// issue builds and presents the bus transaction for the payload. The
// request is held (re-presented next cycle) if the port does not grant
// it.
func (u *MemoryUnit) issue(reg *MemoryRegister) {
	mask := uint64(u.wordBytes - 1)
	alignedAddr := reg.ALUResult &^ mask
	offset := reg.ALUResult & mask

	tx := bus.Transaction{Addr: alignedAddr}
	if reg.MemOp.IsStore() {
		// The store data is shifted into its byte lane and the enable
		// mask is sized to the access width at that lane.
		size := reg.MemOp.AccessBytes()
		tx.IsWrite = true
		tx.Data = reg.Op3 << (8 * offset)
		tx.ByteEnable = uint8((1<<size - 1) << offset)
	} else {
		// Reads transfer the full word; narrowing happens in
		// writeback.
		tx.ByteEnable = uint8(1<<u.wordBytes - 1)
	}

	if u.port.Request(tx) {
		u.issued = true
		u.offset = offset
	}
}

// complete shapes the memory-to-writeback payload.
func (u *MemoryUnit) complete(reg *MemoryRegister, memData, offset uint64) WritebackRegister {
	return WritebackRegister{
		Valid:      true,
		PC:         reg.PC,
		ALUResult:  reg.ALUResult,
		Op3:        reg.Op3,
		MemData:    memData,
		ByteOffset: offset,
		Rd:         reg.Rd,
		CSRAddr:    reg.CSRAddr,
		MemOp:      reg.MemOp,
		CSROp:      reg.CSROp,
		WBSource:   reg.WBSource,
		IsBreak:    reg.IsBreak,
	}
}

// Reset drops any outstanding transaction.
func (u *MemoryUnit) Reset() {
	u.issued = false
	u.offset = 0
	u.port.Reset()
}
