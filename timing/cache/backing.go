package cache

import (
	"github.com/sarchlab/rvsim/emu"
)

// MemoryBacking adapts emu.Memory as the level behind the cache.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking wraps a memory as a BackingStore.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches size bytes from memory.
func (m *MemoryBacking) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = m.memory.Read8(addr + uint64(i))
	}
	return data
}

// Write stores data into memory.
func (m *MemoryBacking) Write(addr uint64, data []byte) {
	for i, b := range data {
		m.memory.Write8(addr+uint64(i), b)
	}
}
