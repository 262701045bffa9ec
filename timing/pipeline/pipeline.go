package pipeline

import (
	"fmt"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/bus"
	"github.com/sarchlab/rvsim/timing/cache"
	"github.com/sarchlab/rvsim/timing/latency"
)

// Statistics holds pipeline performance counters.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of cycles decode held a valid instruction but
	// could not issue it.
	Stalls uint64
	// DataHazards is the number of stall cycles caused by a dirty source
	// register.
	DataHazards uint64
	// Flushes is the number of control-flow squashes.
	Flushes uint64
	// ContractViolations counts undefined micro-op codes observed by the
	// execute stage. Always zero unless the decode contract is broken.
	ContractViolations uint64
}

// CPI returns the cycles-per-instruction ratio.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithTimingConfig sets the memory-port latencies.
func WithTimingConfig(config *latency.TimingConfig) PipelineOption {
	return func(p *Pipeline) {
		p.timing = config
	}
}

// WithDCache puts a data cache with the given geometry in front of the
// data port.
func WithDCache(config cache.Config) PipelineOption {
	return func(p *Pipeline) {
		p.dcacheConfig = &config
	}
}

// Pipeline is the in-order, single-issue five-stage core engine. One
// call to Tick advances every stage by one cycle: all next-state values
// are computed from the current registered state first, then committed
// together at the end, mirroring the register semantics of the hardware
// it models.
type Pipeline struct {
	// Architectural state.
	regFile *emu.RegFile
	csrFile *emu.CSRFile
	xlen    insts.XLen

	// Stages and units.
	fetchStage    *FetchStage
	decodeStage   *DecodeStage
	executeStage  *ExecuteStage
	memoryUnit    *MemoryUnit
	writebackUnit *WritebackUnit
	controller    *Controller

	// Pipeline registers.
	fetchReg FetchRegister
	exReg    ExecuteRegister
	memReg   MemoryRegister
	wbReg    WritebackRegister

	// Construction-time configuration.
	timing       *latency.TimingConfig
	dcacheConfig *cache.Config
	dcache       *cache.Cache
	resetPC      uint64

	stats  Statistics
	halted bool
	fault  error
}

// NewPipeline builds the pipeline around the given register files and
// instruction/data memories. Configuration problems (bad cache geometry,
// bad latencies) are reported here; the pipeline refuses to build rather
// than run misconfigured.
func NewPipeline(
	regFile *emu.RegFile,
	csrFile *emu.CSRFile,
	instrMem, dataMem *emu.Memory,
	opts ...PipelineOption,
) (*Pipeline, error) {
	p := &Pipeline{
		regFile: regFile,
		csrFile: csrFile,
		xlen:    regFile.XLen(),
		timing:  latency.DefaultTimingConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.timing.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	instrPort := bus.NewPort(instrMem, instrBytes, p.timing.InstrMemLatency)

	var dataPortOpts []bus.PortOption
	if p.dcacheConfig != nil {
		cfg := *p.dcacheConfig
		cfg.HitLatency = p.timing.CacheHitLatency
		cfg.MissLatency = p.timing.CacheMissLatency
		dcache, err := cache.New(cfg, cache.NewMemoryBacking(dataMem))
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		p.dcache = dcache
		dataPortOpts = append(dataPortOpts, bus.WithCache(dcache))
	}
	dataPort := bus.NewPort(dataMem, p.xlen.Bytes(), p.timing.DataMemLatency, dataPortOpts...)

	p.fetchStage = NewFetchStage(instrPort)
	p.decodeStage = NewDecodeStage(p.xlen, regFile, csrFile)
	p.executeStage = NewExecuteStage(p.xlen)
	p.memoryUnit = NewMemoryUnit(dataPort)
	p.writebackUnit = NewWritebackUnit(regFile, csrFile)
	p.controller = NewController(p.xlen, 0)

	return p, nil
}

// SetPC sets the fetch address. Used at reset release and by
// verification harnesses.
func (p *Pipeline) SetPC(pc uint64) {
	p.resetPC = pc
	p.controller.SetPC(pc)
}

// PC returns the current fetch address.
func (p *Pipeline) PC() uint64 {
	return p.controller.PC()
}

// Controller exposes the pipeline controller (scoreboard observation).
func (p *Pipeline) Controller() *Controller {
	return p.controller
}

// DCacheStats returns data-cache statistics, or zero statistics when no
// cache is configured.
func (p *Pipeline) DCacheStats() cache.Statistics {
	if p.dcache == nil {
		return cache.Statistics{}
	}
	return p.dcache.Stats()
}

// Halted reports whether an EBREAK has retired.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// Stats returns the accumulated performance counters.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Tick advances the whole core by one cycle. A bus fault stops the core
// and is returned; subsequent Ticks keep returning it.
func (p *Pipeline) Tick() error {
	if p.fault != nil {
		return p.fault
	}

	p.stats.Cycles++
	p.csrFile.TickCycle()

	// Writeback: commit the payload that completed last cycle. The
	// retirement decrements the scoreboard below; writes become visible
	// to decode's register reads from the next cycle on, which the
	// scoreboard stall already guarantees.
	retire := p.writebackUnit.Commit(&p.wbReg)
	if retire.Retired {
		p.stats.Instructions++
		if retire.IsBreak {
			p.halted = true
		}
	}

	// Memory: advance the held payload. memReady means the unit frees
	// up at this cycle's end and execute may hand over a new payload.
	nextWB, memReady, err := p.memoryUnit.Step(&p.memReg)
	if err != nil {
		p.fault = fmt.Errorf("data bus fault at pc 0x%x: %w", p.memReg.PC, err)
		return p.fault
	}

	// Execute: outputs are presented in the cycle the payload is handed
	// to the memory unit, so the control payload (and any squash it
	// causes) pulses exactly once per instruction.
	var execOut MemoryRegister
	var ctrl ControlPayload
	if memReady {
		var aluOK bool
		execOut, ctrl, aluOK = p.executeStage.Execute(&p.exReg)
		if !aluOK {
			p.stats.ContractViolations++
		}
	}

	// Decode: issue decision against the current scoreboard state.
	var bundle insts.DecodeBundle
	accepted := false
	hazard := false
	stalled := false
	if p.fetchReg.Valid {
		inst := p.decodeStage.Decode(p.fetchReg.Word)
		hazard = (inst.UsesRs1 && p.controller.Scoreboard().Dirty(inst.Rs1)) ||
			(inst.UsesRs2 && p.controller.Scoreboard().Dirty(inst.Rs2))
		switch {
		case hazard:
			stalled = true
		case !memReady:
			stalled = true
		default:
			bundle = p.decodeStage.Bundle(p.fetchReg.PC, inst)
			accepted = true
		}
	}

	// Control flow: a taken redirection squashes the instruction decode
	// just accepted along with everything younger.
	decision := p.controller.Evaluate(false, ctrl)
	if decision.Squash {
		accepted = false
	}

	// Fetch: consume the instruction-bus response. The word only lands
	// when the fetch register has room for it this cycle; a dropped
	// word is refetched because the PC holds without a hit.
	room := (!p.fetchReg.Valid || accepted) && !decision.Squash
	fetchOut, hit, err := p.fetchStage.Poll(p.controller.PC(), room)
	if err != nil {
		p.fault = fmt.Errorf("instruction bus fault at pc 0x%x: %w", p.controller.PC(), err)
		return p.fault
	}
	if !decision.Squash {
		decision = p.controller.Evaluate(hit, ctrl)
	}

	// Commit phase: replace every pipeline register wholesale.
	if decision.Squash {
		p.fetchReg.Clear()
		p.exReg.Clear()
		p.stats.Flushes++
		p.csrFile.AddTakenBranch()
	} else {
		if hit {
			p.fetchReg = fetchOut
		} else if accepted {
			p.fetchReg.Clear()
		}
		if memReady {
			if accepted {
				p.exReg = ExecuteRegister{Valid: true, Bundle: bundle}
			} else {
				p.exReg.Clear()
			}
		}
	}
	if memReady {
		p.memReg = execOut
	}
	p.wbReg = nextWB

	incValid := accepted && bundle.WBSource != insts.WBSourceIdle
	p.controller.Scoreboard().Update(incValid, bundle.Rd, retire.WroteGPR, retire.Rd)
	p.controller.Commit(decision)

	// The next read is launched at the committed PC, so the response
	// for the following address can arrive while the current word sits
	// in decode. The squash cycle clears the front end; the redirected
	// fetch starts on the next one.
	if !decision.Squash {
		p.fetchStage.Launch(p.controller.PC())
	}

	if stalled {
		p.stats.Stalls++
		p.csrFile.AddStallCycle()
		if hazard {
			p.stats.DataHazards++
		}
	}

	return nil
}

// Run ticks the core until an EBREAK retires, a bus fault occurs, or
// maxCycles elapse (0 means no limit). It returns the fault, or an error
// when the cycle limit is hit before the core halts.
func (p *Pipeline) Run(maxCycles uint64) error {
	for !p.halted {
		if maxCycles != 0 && p.stats.Cycles >= maxCycles {
			return fmt.Errorf("core did not halt within %d cycles", maxCycles)
		}
		if err := p.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// RunCycles ticks the core for at most n cycles. It reports whether the
// core is still running.
func (p *Pipeline) RunCycles(n uint64) (bool, error) {
	for i := uint64(0); i < n && !p.halted; i++ {
		if err := p.Tick(); err != nil {
			return false, err
		}
	}
	return !p.halted, nil
}

// Reset clears all pipeline state and returns the PC to the last address
// given to SetPC. Architectural register state is left to the caller.
func (p *Pipeline) Reset() {
	p.fetchReg.Clear()
	p.exReg.Clear()
	p.memReg.Clear()
	p.wbReg.Clear()
	p.fetchStage.Reset()
	p.memoryUnit.Reset()
	p.controller.Reset(p.resetPC)
	if p.dcache != nil {
		p.dcache.Reset()
	}
	p.stats = Statistics{}
	p.halted = false
	p.fault = nil
}
