package pipeline

import (
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/bus"
)

// instrBytes is the instruction width. Compressed instructions are not
// supported, so every fetch and every sequential PC step is 4 bytes.
const instrBytes = 4

// FetchStage issues one instruction-memory read per cycle at the
// controller-supplied PC and forwards the word downstream once a hit is
// observed for that same address. A response for a stale address
// (because a squash moved the PC while the request was in flight), or
// one arriving while the fetch register downstream has no room, is
// dropped without asserting validity; the dropped word is refetched
// because the PC only advances on a hit.
type FetchStage struct {
	port        *bus.Port
	outstanding bool
	reqAddr     uint64
}

// NewFetchStage creates a fetch stage on the given instruction port.
func NewFetchStage(port *bus.Port) *FetchStage {
	return &FetchStage{port: port}
}

// Poll consumes any instruction-bus response, matching it against the
// current fetch address. room reports whether the fetch register can
// take the word this cycle. It returns the fetched word (hit true) or
// an empty result, and any bus fault.
func (s *FetchStage) Poll(pc uint64, room bool) (FetchRegister, bool, error) {
	resp := s.port.Tick()
	if !resp.Valid || !s.outstanding {
		return FetchRegister{}, false, nil
	}

	s.outstanding = false
	if resp.Err != nil {
		return FetchRegister{}, false, resp.Err
	}
	if s.reqAddr != pc || !room {
		return FetchRegister{}, false, nil
	}
	return FetchRegister{Valid: true, PC: pc, Word: uint32(resp.Data)}, true, nil
}

// Launch issues the next instruction read at the given address. It is a
// no-op while a request is already in flight, so the stage keeps one
// transaction outstanding at a time.
func (s *FetchStage) Launch(pc uint64) {
	if s.outstanding || s.port.Busy() {
		return
	}
	if s.port.Request(bus.Transaction{Addr: pc}) {
		s.outstanding = true
		s.reqAddr = pc
	}
}

// Reset drops the in-flight request.
func (s *FetchStage) Reset() {
	s.outstanding = false
	s.reqAddr = 0
	s.port.Reset()
}

// DecodeStage turns a fetched word into the decode-to-execute bundle,
// binding operand values from the register files. The stage itself is
// combinational; whether the bundle is accepted is the controller's
// decision.
type DecodeStage struct {
	decoder *insts.Decoder
	regFile *emu.RegFile
	csrFile *emu.CSRFile
}

// NewDecodeStage creates a decode stage reading the given register files.
func NewDecodeStage(xlen insts.XLen, regFile *emu.RegFile, csrFile *emu.CSRFile) *DecodeStage {
	return &DecodeStage{
		decoder: insts.NewDecoder(xlen),
		regFile: regFile,
		csrFile: csrFile,
	}
}

// Decode decodes the fetched word without binding operands, for hazard
// inspection.
func (s *DecodeStage) Decode(word uint32) insts.Instruction {
	return s.decoder.Decode(word)
}

// Bundle binds operand values for a decoded instruction, producing the
// decode-to-execute payload.
func (s *DecodeStage) Bundle(pc uint64, inst insts.Instruction) insts.DecodeBundle {
	b := insts.DecodeBundle{
		PC:       pc,
		Rd:       inst.Rd,
		CSRAddr:  inst.CSRAddr,
		ExecOp:   inst.ExecOp,
		MemOp:    inst.MemOp,
		CSROp:    inst.CSROp,
		WBSource: inst.WBSource,
		PCOp:     inst.PCOp,
		IsBreak:  inst.IsBreak,
	}

	rs1 := s.regFile.Read(inst.Rs1)
	rs2 := s.regFile.Read(inst.Rs2)
	imm := uint64(inst.Imm)

	switch inst.Format {
	case insts.FormatOp:
		b.Op1 = rs1
		b.Op2 = rs2
	case insts.FormatOpImm:
		b.Op1 = rs1
		b.Op2 = imm
	case insts.FormatLui:
		b.Op1 = 0
		b.Op2 = imm
	case insts.FormatAuipc:
		b.Op1 = pc
		b.Op2 = imm
	case insts.FormatLoad:
		b.Op1 = rs1
		b.Op2 = imm
	case insts.FormatStore:
		b.Op1 = rs1
		b.Op2 = imm
		b.Op3 = rs2
	case insts.FormatBranch:
		b.Op1 = rs1
		b.Op2 = rs2
		b.Op3 = imm
	case insts.FormatJal:
		b.Op1 = imm
		b.Op2 = 0
	case insts.FormatJalr:
		b.Op1 = rs1
		b.Op2 = imm
	case insts.FormatCSR:
		b.Op1 = rs1
		b.Op2 = 0
		b.Op3 = s.csrFile.Read(inst.CSRAddr)
	}

	return b
}

// ExecuteStage drives the arithmetic/compare unit from the held decode
// bundle and shapes the two outward payloads: one toward the memory unit
// and one toward the controller.
type ExecuteStage struct {
	alu *emu.ALU
}

// NewExecuteStage creates an execute stage with an ALU of the given
// width.
func NewExecuteStage(xlen insts.XLen) *ExecuteStage {
	return &ExecuteStage{alu: emu.NewALU(xlen)}
}

// Execute evaluates the held bundle. aluValid is false when a non-idle
// execute op was not recognized, which indicates a decode contract
// violation upstream.
func (s *ExecuteStage) Execute(reg *ExecuteRegister) (MemoryRegister, ControlPayload, bool) {
	if !reg.Valid {
		return MemoryRegister{}, ControlPayload{}, true
	}

	b := reg.Bundle
	result, valid := s.alu.Evaluate(b.Op1, b.Op2, b.ExecOp)
	aluValid := valid || b.ExecOp == insts.ExecOpNone

	mem := MemoryRegister{
		Valid:     true,
		PC:        b.PC,
		ALUResult: result,
		Op3:       b.Op3,
		Rd:        b.Rd,
		CSRAddr:   b.CSRAddr,
		MemOp:     b.MemOp,
		CSROp:     b.CSROp,
		WBSource:  b.WBSource,
		IsBreak:   b.IsBreak,
	}

	ctrl := ControlPayload{
		Valid:  true,
		PC:     b.PC,
		Result: result,
		Op3:    b.Op3,
		PCOp:   b.PCOp,
	}

	return mem, ctrl, aluValid
}
