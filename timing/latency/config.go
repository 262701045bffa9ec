// Package latency provides memory-timing configuration for the core model.
package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds response latencies, in cycles, for the memory ports
// the core talks to. A latency of 1 means the response-valid pulse arrives
// one cycle after the request is granted.
type TimingConfig struct {
	// InstrMemLatency is the instruction-memory response latency.
	InstrMemLatency uint64 `json:"instr_mem_latency"`

	// DataMemLatency is the data-memory response latency when no data
	// cache is configured.
	DataMemLatency uint64 `json:"data_mem_latency"`

	// CacheHitLatency is the data-cache hit latency when a cache is
	// configured.
	CacheHitLatency uint64 `json:"cache_hit_latency"`

	// CacheMissLatency is the data-cache miss latency, including the
	// fill from backing memory.
	CacheMissLatency uint64 `json:"cache_miss_latency"`
}

// DefaultTimingConfig returns the timing of the reference platform: both
// RAMs answer in one cycle, so loads and stores cost one extra cycle over
// ALU instructions.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		InstrMemLatency:  1,
		DataMemLatency:   1,
		CacheHitLatency:  1,
		CacheMissLatency: 12,
	}
}

// Validate checks that every latency is at least one cycle.
func (c *TimingConfig) Validate() error {
	if c.InstrMemLatency == 0 {
		return fmt.Errorf("instr_mem_latency must be at least 1 cycle")
	}
	if c.DataMemLatency == 0 {
		return fmt.Errorf("data_mem_latency must be at least 1 cycle")
	}
	if c.CacheHitLatency == 0 {
		return fmt.Errorf("cache_hit_latency must be at least 1 cycle")
	}
	if c.CacheMissLatency < c.CacheHitLatency {
		return fmt.Errorf("cache_miss_latency (%d) must not be below cache_hit_latency (%d)",
			c.CacheMissLatency, c.CacheHitLatency)
	}
	return nil
}

// LoadConfig reads a TimingConfig from a JSON file. Missing fields keep
// their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config %s: %w", path, err)
	}
	return config, nil
}
