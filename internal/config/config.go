// Package config provides tunable parameters for the storage engine.
package config

import "time"

const (
	defaultMemtableMax        = 1000
	defaultIndexPerChunk      = 512
	defaultMaxChunkBytes      = 4096
	defaultCompactTrigger     = 100
	defaultMinCompactInterval = time.Microsecond
	defaultMaxCompactInterval = 100000 * time.Microsecond
	defaultBloomBits          = 100000
	defaultBloomCapacity      = 10000
)

// Config holds all tunable parameters for the engine. The zero value of any
// field means "use the default"; DataDir defaults to the process working
// directory.
type Config struct {
	// DataDir is the directory under which SSTable folders are created.
	DataDir string
	// MemtableMax is the number of distinct keys that triggers a flush.
	MemtableMax int
	// IndexPerChunk is the number of index entries per .bin index chunk.
	IndexPerChunk int
	// MaxChunkBytes is the byte threshold at which a new .txt data chunk
	// is started. A record never spans two chunks.
	MaxChunkBytes int
	// CompactTrigger is the registry length above which the compactor
	// merges the two tables at the tail (the newest end) of the registry.
	CompactTrigger int
	// MinCompactInterval and MaxCompactInterval bound the compactor's
	// adaptive sleep interval.
	MinCompactInterval time.Duration
	MaxCompactInterval time.Duration
	// BloomBits is the bit-array width of each SSTable's bloom filter.
	BloomBits int
	// BloomCapacity is the design capacity the filter's hash count is
	// derived from.
	BloomCapacity int
}

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() *Config {
	return &Config{
		DataDir:            ".",
		MemtableMax:        defaultMemtableMax,
		IndexPerChunk:      defaultIndexPerChunk,
		MaxChunkBytes:      defaultMaxChunkBytes,
		CompactTrigger:     defaultCompactTrigger,
		MinCompactInterval: defaultMinCompactInterval,
		MaxCompactInterval: defaultMaxCompactInterval,
		BloomBits:          defaultBloomBits,
		BloomCapacity:      defaultBloomCapacity,
	}
}

// FillDefaults sets any zero-value fields to their default values.
func (c *Config) FillDefaults() {
	def := DefaultConfig()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.MemtableMax == 0 {
		c.MemtableMax = def.MemtableMax
	}
	if c.IndexPerChunk == 0 {
		c.IndexPerChunk = def.IndexPerChunk
	}
	if c.MaxChunkBytes == 0 {
		c.MaxChunkBytes = def.MaxChunkBytes
	}
	if c.CompactTrigger == 0 {
		c.CompactTrigger = def.CompactTrigger
	}
	if c.MinCompactInterval == 0 {
		c.MinCompactInterval = def.MinCompactInterval
	}
	if c.MaxCompactInterval == 0 {
		c.MaxCompactInterval = def.MaxCompactInterval
	}
	if c.BloomBits == 0 {
		c.BloomBits = def.BloomBits
	}
	if c.BloomCapacity == 0 {
		c.BloomCapacity = def.BloomCapacity
	}
}
