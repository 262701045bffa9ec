package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/timing/cache"
)

var _ = Describe("Config", func() {
	It("should accept the default geometry", func() {
		Expect(cache.DefaultConfig().Validate()).To(BeNil())
	})

	It("should reject non-positive geometry", func() {
		cfg := cache.DefaultConfig()
		cfg.Size = 0

		Expect(cfg.Validate()).NotTo(BeNil())
	})

	It("should reject a size that does not divide into whole sets", func() {
		cfg := cache.Config{
			Size:          1000,
			Associativity: 2,
			BlockSize:     16,
			HitLatency:    1,
			MissLatency:   12,
		}

		Expect(cfg.Validate()).NotTo(BeNil())
	})
})

var _ = Describe("Cache", func() {
	var (
		mem *emu.Memory
		c   *cache.Cache
	)

	BeforeEach(func() {
		mem = emu.NewMemory()

		var err error
		c, err = cache.New(cache.DefaultConfig(), cache.NewMemoryBacking(mem))
		Expect(err).To(BeNil())
	})

	It("should refuse a bad configuration", func() {
		cfg := cache.DefaultConfig()
		cfg.Associativity = 0

		_, err := cache.New(cfg, cache.NewMemoryBacking(mem))

		Expect(err).NotTo(BeNil())
	})

	It("should miss on the first access and pay the miss latency", func() {
		mem.Write32(0x100, 0xCAFEBABE)

		result := c.Read(0x100, 4)

		Expect(result.Hit).To(BeFalse())
		Expect(result.Latency).To(Equal(uint64(12)))
		Expect(result.Data).To(Equal(uint64(0xCAFEBABE)))
	})

	It("should hit on the second access and pay the hit latency", func() {
		mem.Write32(0x100, 0xCAFEBABE)
		c.Read(0x100, 4)

		result := c.Read(0x100, 4)

		Expect(result.Hit).To(BeTrue())
		Expect(result.Latency).To(Equal(uint64(1)))
		Expect(result.Data).To(Equal(uint64(0xCAFEBABE)))
	})

	It("should hit anywhere within a fetched line", func() {
		mem.Write32(0x100, 0x11223344)
		mem.Write32(0x104, 0x55667788)
		c.Read(0x100, 4)

		result := c.Read(0x104, 4)

		Expect(result.Hit).To(BeTrue())
		Expect(result.Data).To(Equal(uint64(0x55667788)))
	})

	It("should return written data on a later read", func() {
		c.Write(0x200, 4, 0xDEADBEEF)

		result := c.Read(0x200, 4)

		Expect(result.Hit).To(BeTrue())
		Expect(result.Data).To(Equal(uint64(0xDEADBEEF)))
	})

	It("should hold dirty data without writing through", func() {
		c.Write(0x200, 4, 0xDEADBEEF)

		Expect(mem.Read32(0x200)).To(Equal(uint32(0)))
	})

	It("should evict the least recently used way on a set conflict", func() {
		// The default cache has 128 sets of 16-byte lines; addresses
		// 2048*k apart map to the same set.
		c.Read(0x0000, 4)
		c.Read(0x0800, 4)

		result := c.Read(0x1000, 4)

		Expect(result.Hit).To(BeFalse())
		Expect(result.Evicted).To(BeTrue())
		Expect(result.EvictedAddr).To(Equal(uint64(0x0000)))
	})

	It("should write back a dirty line when it is evicted", func() {
		c.Write(0x0000, 4, 0xDEADBEEF)
		c.Read(0x0800, 4)

		c.Read(0x1000, 4)

		Expect(mem.Read32(0x0000)).To(Equal(uint32(0xDEADBEEF)))
		Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
	})

	It("should write back all dirty lines on flush", func() {
		c.Write(0x100, 4, 0x11111111)
		c.Write(0x800, 4, 0x22222222)

		c.Flush()

		Expect(mem.Read32(0x100)).To(Equal(uint32(0x11111111)))
		Expect(mem.Read32(0x800)).To(Equal(uint32(0x22222222)))

		result := c.Read(0x100, 4)
		Expect(result.Hit).To(BeFalse())
	})

	It("should count hits and misses", func() {
		c.Read(0x100, 4)
		c.Read(0x100, 4)
		c.Read(0x100, 4)

		stats := c.Stats()

		Expect(stats.Reads).To(Equal(uint64(3)))
		Expect(stats.Misses).To(Equal(uint64(1)))
		Expect(stats.Hits).To(Equal(uint64(2)))
	})

	It("should invalidate without writeback on reset", func() {
		c.Write(0x100, 4, 0xDEADBEEF)

		c.Reset()

		Expect(mem.Read32(0x100)).To(Equal(uint32(0)))
		Expect(c.Stats().Writes).To(Equal(uint64(0)))

		result := c.Read(0x100, 4)
		Expect(result.Hit).To(BeFalse())
	})
})
