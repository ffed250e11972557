package weakhash

import (
	"fmt"
	"math"
	"math/bits"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const (
	// DefaultBucketCount is the number of buckets a new table starts with.
	DefaultBucketCount = 8
	// DefaultMaxLoadFactor is the load factor above which a table grows.
	DefaultMaxLoadFactor = 1.0
	// DefaultFreeListSize bounds how many unlinked nodes a table keeps for reuse.
	DefaultFreeListSize = 64

	maxBucketCount = 1 << 30
)

// Config describes the shape and instrumentation of a table.
//
// Config is a plain struct. Start from NewConfig, set the fields you care
// about and pass it to a constructor, which calls Build.
type Config struct {
	// BucketCount is the initial number of buckets. It is rounded up to a
	// power of two.
	BucketCount int
	// MaxLoadFactor is the ratio of stored entries to buckets above which an
	// insert grows the table.
	MaxLoadFactor float64
	// FreeListSize bounds the number of recycled nodes. Zero disables reuse.
	FreeListSize int

	// Name identifies the table in logs and metrics.
	Name string
	// Logger receives debug events for rehashes and purge sweeps. Nil means
	// no logging.
	Logger *zap.Logger
	// Meter creates the table's counters. Nil means no metrics.
	Meter metric.Meter
}

// NewConfig returns the default configuration.
func NewConfig() Config {
	return Config{
		BucketCount:   DefaultBucketCount,
		MaxLoadFactor: DefaultMaxLoadFactor,
		FreeListSize:  DefaultFreeListSize,
	}
}

// Build validates c and returns a normalized copy.
//
// A zero BucketCount or MaxLoadFactor takes its default; a zero FreeListSize
// disables node reuse. A negative BucketCount or FreeListSize, or
// a MaxLoadFactor that is negative, NaN or infinite, is rejected.
func (c Config) Build() (Config, error) {
	if c.BucketCount < 0 || c.BucketCount > maxBucketCount {
		return c, fmt.Errorf("bucket count %d: %w", c.BucketCount, ErrInvalidBucketCount)
	}
	if c.BucketCount == 0 {
		c.BucketCount = DefaultBucketCount
	}
	c.BucketCount = roundUpPow2(c.BucketCount)

	if c.MaxLoadFactor == 0 {
		c.MaxLoadFactor = DefaultMaxLoadFactor
	}
	if err := validLoadFactor(c.MaxLoadFactor); err != nil {
		return c, err
	}

	if c.FreeListSize < 0 {
		return c, fmt.Errorf("free list size %d: %w", c.FreeListSize, ErrInvalidCapacity)
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c, nil
}

func validLoadFactor(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return fmt.Errorf("max load factor %v: %w", f, ErrInvalidLoadFactor)
	}
	return nil
}

func roundUpPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// minBuckets returns the smallest power-of-two bucket count that holds size
// entries within maxLoad.
func minBuckets(size int, maxLoad float64) int {
	need := int(math.Ceil(float64(size) / maxLoad))
	if need > maxBucketCount {
		need = maxBucketCount
	}
	return roundUpPow2(need)
}
