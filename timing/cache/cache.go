// Package cache models a small direct-attached data cache in front of the
// memory bus, using Akita cache components for tag and replacement state.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache geometry and timing.
type Config struct {
	// Size in bytes.
	Size int
	// Associativity is the number of ways.
	Associativity int
	// BlockSize is the cache line size in bytes.
	BlockSize int
	// HitLatency in cycles.
	HitLatency uint64
	// MissLatency in cycles, including the line fill.
	MissLatency uint64
}

// Validate checks the geometry divides into whole sets.
func (c Config) Validate() error {
	if c.Size <= 0 || c.Associativity <= 0 || c.BlockSize <= 0 {
		return fmt.Errorf("cache geometry must be positive: size=%d ways=%d block=%d",
			c.Size, c.Associativity, c.BlockSize)
	}
	if c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("cache size %d is not a multiple of ways*block (%d*%d)",
			c.Size, c.Associativity, c.BlockSize)
	}
	return nil
}

// DefaultConfig returns the geometry of the reference platform's data-side
// cache: 4KB, 2-way, 16-byte lines.
func DefaultConfig() Config {
	return Config{
		Size:          4 * 1024,
		Associativity: 2,
		BlockSize:     16,
		HitLatency:    1,
		MissLatency:   12,
	}
}

// AccessResult reports the outcome of one cache access.
type AccessResult struct {
	// Hit is true when the line was present.
	Hit bool
	// Latency is the cycle cost of this access.
	Latency uint64
	// Data is the value read (loads only).
	Data uint64
	// Evicted is true when a valid line was displaced.
	Evicted bool
	// EvictedAddr is the block address of the displaced line.
	EvictedAddr uint64
}

// BackingStore is the next level behind the cache.
type BackingStore interface {
	// Read fetches size bytes at addr.
	Read(addr uint64, size int) []byte
	// Write stores data at addr.
	Write(addr uint64, data []byte)
}

// Statistics holds cache event counts.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// Cache is a write-back, write-allocate cache. Tag state and LRU
// replacement come from the Akita cache directory; data lives in a local
// store indexed by set and way.
type Cache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	dataStore [][]byte
	backing   BackingStore
	stats     Statistics
}

// New creates a cache with the given configuration and backing store.
func New(config Config, backing BackingStore) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	numSets := config.Size / (config.Associativity * config.BlockSize)
	dataStore := make([][]byte, numSets*config.Associativity)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}, nil
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns accumulated event counts.
func (c *Cache) Stats() Statistics {
	return c.stats
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return addr &^ uint64(c.config.BlockSize-1)
}

// Read performs a read of size bytes at addr.
func (c *Cache) Read(addr uint64, size int) AccessResult {
	c.stats.Reads++

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		line := c.dataStore[c.blockIndex(block)]
		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
			Data:    extractData(line, addr%uint64(c.config.BlockSize), size),
		}
	}

	c.stats.Misses++
	return c.handleMiss(addr, size, false, 0)
}

// Write performs a write of size bytes at addr. Misses allocate the line.
func (c *Cache) Write(addr uint64, size int, data uint64) AccessResult {
	c.stats.Writes++

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		line := c.dataStore[c.blockIndex(block)]
		storeData(line, addr%uint64(c.config.BlockSize), size, data)
		block.IsDirty = true
		return AccessResult{Hit: true, Latency: c.config.HitLatency}
	}

	c.stats.Misses++
	return c.handleMiss(addr, size, true, data)
}

func (c *Cache) handleMiss(addr uint64, size int, isWrite bool, writeData uint64) AccessResult {
	result := AccessResult{Latency: c.config.MissLatency}
	blockAddr := c.blockAddr(addr)

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}
	line := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag

		if victim.IsDirty && c.backing != nil {
			c.stats.Writebacks++
			c.backing.Write(victim.Tag, line)
		}
	}

	if c.backing != nil {
		copy(line, c.backing.Read(blockAddr, c.config.BlockSize))
	} else {
		for i := range line {
			line[i] = 0
		}
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	offset := addr % uint64(c.config.BlockSize)
	if isWrite {
		storeData(line, offset, size, writeData)
		victim.IsDirty = true
	} else {
		result.Data = extractData(line, offset, size)
	}

	c.directory.Visit(victim)
	return result
}

// Flush writes back all dirty lines and invalidates everything.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty && c.backing != nil {
				c.stats.Writebacks++
				c.backing.Write(block.Tag, c.dataStore[c.blockIndex(block)])
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all lines without writeback and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

func extractData(line []byte, offset uint64, size int) uint64 {
	if line == nil || int(offset)+size > len(line) {
		return 0
	}
	var v uint64
	for i := 0; i < size; i++ {
		v |= uint64(line[int(offset)+i]) << (8 * i)
	}
	return v
}

func storeData(line []byte, offset uint64, size int, value uint64) {
	if line == nil || int(offset)+size > len(line) {
		return
	}
	for i := 0; i < size; i++ {
		line[int(offset)+i] = byte(value >> (8 * i))
	}
}
