package emu

// memPageSize is the granularity of lazily allocated backing pages.
const memPageSize = 4096

// Memory is a sparse byte-addressable backing store. Pages are allocated
// on first touch; untouched addresses read as zero. The bus layer sits in
// front of this for timing; Memory itself is zero-latency state.
type Memory struct {
	pages map[uint64][]byte
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint64][]byte)}
}

func (m *Memory) page(addr uint64, allocate bool) []byte {
	base := addr &^ (memPageSize - 1)
	p, ok := m.pages[base]
	if !ok && allocate {
		p = make([]byte, memPageSize)
		m.pages[base] = p
	}
	return p
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint64) uint8 {
	p := m.page(addr, false)
	if p == nil {
		return 0
	}
	return p[addr%memPageSize]
}

// Write8 writes one byte.
func (m *Memory) Write8(addr uint64, value uint8) {
	m.page(addr, true)[addr%memPageSize] = value
}

// Read reads size bytes starting at addr, little-endian, as a value.
func (m *Memory) Read(addr uint64, size int) uint64 {
	var v uint64
	for i := 0; i < size; i++ {
		v |= uint64(m.Read8(addr+uint64(i))) << (8 * i)
	}
	return v
}

// Write writes the low size bytes of value starting at addr,
// little-endian.
func (m *Memory) Write(addr uint64, size int, value uint64) {
	for i := 0; i < size; i++ {
		m.Write8(addr+uint64(i), uint8(value>>(8*i)))
	}
}

// Read32 reads a 32-bit little-endian word.
func (m *Memory) Read32(addr uint64) uint32 {
	return uint32(m.Read(addr, 4))
}

// Write32 writes a 32-bit little-endian word.
func (m *Memory) Write32(addr uint64, value uint32) {
	m.Write(addr, 4, uint64(value))
}

// Read64 reads a 64-bit little-endian word.
func (m *Memory) Read64(addr uint64) uint64 {
	return m.Read(addr, 8)
}

// Write64 writes a 64-bit little-endian word.
func (m *Memory) Write64(addr uint64, value uint64) {
	m.Write(addr, 8, value)
}

// Reset discards all contents.
func (m *Memory) Reset() {
	m.pages = make(map[uint64][]byte)
}
