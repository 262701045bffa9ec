// Package bus models the memory bus the core's fetch stage and memory
// unit talk to: a request/grant/response protocol with one word-aligned
// transaction outstanding at a time and a bounded response latency.
package bus

import (
	"fmt"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/timing/cache"
)

// Transaction is one bus request. Addr must be aligned to the port's word
// size. For writes, ByteEnable carries one bit per byte lane of the word;
// only enabled lanes are committed.
type Transaction struct {
	Addr       uint64
	IsWrite    bool
	Data       uint64
	ByteEnable uint8
}

// Response is the completion of a transaction. Valid pulses for exactly
// one Tick. A non-nil Err is a bus fault; the core does not recover from
// it and the harness treats it as a hard failure.
type Response struct {
	Valid bool
	Data  uint64
	Err   error
}

// PortOption configures a Port.
type PortOption func(*Port)

// WithCache routes the port's transactions through a data cache, whose
// hit/miss latencies replace the port's fixed latency.
func WithCache(c *cache.Cache) PortOption {
	return func(p *Port) {
		p.dcache = c
	}
}

// Port is one bus attachment point. The requester calls Request until it
// is granted, then calls Tick every cycle until the response is valid.
type Port struct {
	memory    *emu.Memory
	dcache    *cache.Cache
	wordBytes int
	latency   uint64

	busy      bool
	remaining uint64
	resp      Response
}

// NewPort creates a port in front of the given memory. wordBytes is the
// native word size (4 or 8); latency is the fixed response latency in
// cycles when no cache is attached.
func NewPort(memory *emu.Memory, wordBytes int, latency uint64, opts ...PortOption) *Port {
	if latency == 0 {
		latency = 1
	}
	p := &Port{
		memory:    memory,
		wordBytes: wordBytes,
		latency:   latency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Busy reports whether a transaction is outstanding.
func (p *Port) Busy() bool {
	return p.busy
}

// WordBytes returns the native word size of the port.
func (p *Port) WordBytes() int {
	return p.wordBytes
}

// Request presents a transaction. The return value is the grant: false
// means the port is busy and the requester must hold the request.
func (p *Port) Request(tx Transaction) bool {
	if p.busy {
		return false
	}

	p.busy = true
	p.remaining = p.latency
	p.resp = Response{}

	if tx.Addr%uint64(p.wordBytes) != 0 {
		p.resp.Err = fmt.Errorf("misaligned bus access at 0x%x (word size %d)",
			tx.Addr, p.wordBytes)
		return true
	}

	if tx.IsWrite {
		p.performWrite(tx)
	} else {
		p.performRead(tx)
	}
	return true
}

// Tick advances the outstanding transaction by one cycle. The returned
// response is valid exactly once, on the cycle the latency expires.
func (p *Port) Tick() Response {
	if !p.busy {
		return Response{}
	}

	p.remaining--
	if p.remaining > 0 {
		return Response{}
	}

	p.busy = false
	resp := p.resp
	resp.Valid = true
	p.resp = Response{}
	return resp
}

// Reset drops any outstanding transaction.
func (p *Port) Reset() {
	p.busy = false
	p.remaining = 0
	p.resp = Response{}
}

// performRead reads the full word; narrowing happens in the writeback
// unit, not on the bus.
func (p *Port) performRead(tx Transaction) {
	if p.dcache != nil {
		result := p.dcache.Read(tx.Addr, p.wordBytes)
		p.remaining = result.Latency
		p.resp.Data = result.Data
		return
	}
	p.resp.Data = p.memory.Read(tx.Addr, p.wordBytes)
}

// performWrite commits the enabled byte lanes.
func (p *Port) performWrite(tx Transaction) {
	latencySet := false
	for lane := 0; lane < p.wordBytes; lane++ {
		if tx.ByteEnable&(1<<lane) == 0 {
			continue
		}
		b := uint8(tx.Data >> (8 * lane))
		if p.dcache != nil {
			result := p.dcache.Write(tx.Addr+uint64(lane), 1, uint64(b))
			// The first lane pays the hit or miss cost; the rest of
			// the lanes land in the now-resident line.
			if !latencySet {
				p.remaining = result.Latency
				latencySet = true
			}
			continue
		}
		p.memory.Write8(tx.Addr+uint64(lane), b)
	}
	if p.dcache != nil && !latencySet {
		// A write with no enabled lanes still completes.
		p.remaining = p.latency
	}
}
