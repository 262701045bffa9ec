package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/timing/latency"
)

var _ = Describe("TimingConfig", func() {
	It("should accept the defaults", func() {
		Expect(latency.DefaultTimingConfig().Validate()).To(BeNil())
	})

	It("should reject a zero instruction-memory latency", func() {
		cfg := latency.DefaultTimingConfig()
		cfg.InstrMemLatency = 0

		Expect(cfg.Validate()).NotTo(BeNil())
	})

	It("should reject a miss latency below the hit latency", func() {
		cfg := latency.DefaultTimingConfig()
		cfg.CacheHitLatency = 4
		cfg.CacheMissLatency = 2

		Expect(cfg.Validate()).NotTo(BeNil())
	})
})

var _ = Describe("LoadConfig", func() {
	writeConfig := func(content string) string {
		path := filepath.Join(GinkgoT().TempDir(), "timing.json")
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(BeNil())
		return path
	}

	It("should load a full configuration", func() {
		path := writeConfig(`{
			"instr_mem_latency": 2,
			"data_mem_latency": 3,
			"cache_hit_latency": 1,
			"cache_miss_latency": 20
		}`)

		cfg, err := latency.LoadConfig(path)

		Expect(err).To(BeNil())
		Expect(cfg.InstrMemLatency).To(Equal(uint64(2)))
		Expect(cfg.DataMemLatency).To(Equal(uint64(3)))
		Expect(cfg.CacheMissLatency).To(Equal(uint64(20)))
	})

	It("should keep defaults for missing fields", func() {
		path := writeConfig(`{"instr_mem_latency": 5}`)

		cfg, err := latency.LoadConfig(path)

		Expect(err).To(BeNil())
		Expect(cfg.InstrMemLatency).To(Equal(uint64(5)))
		Expect(cfg.DataMemLatency).To(Equal(uint64(1)))
	})

	It("should reject malformed JSON", func() {
		path := writeConfig(`{"instr_mem_latency": }`)

		_, err := latency.LoadConfig(path)

		Expect(err).NotTo(BeNil())
	})

	It("should reject an invalid loaded configuration", func() {
		path := writeConfig(`{"data_mem_latency": 0}`)

		_, err := latency.LoadConfig(path)

		Expect(err).NotTo(BeNil())
	})

	It("should report a missing file", func() {
		_, err := latency.LoadConfig("/nonexistent/timing.json")

		Expect(err).NotTo(BeNil())
	})
})
