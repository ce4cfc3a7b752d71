// Package sortcfg defines the engine's configuration value. A single
// Config is built once from CLI flags and threaded explicitly through
// every component instead of being read from package-level variables
// (Design Note "Global mutable configuration"); the one package-level
// knob is recordio.UseMmap, which selects the I/O strategy.
package sortcfg

import (
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// RunGenerator selects the run-generation strategy (spec §4.4).
type RunGenerator string

const (
	// ChunkedSort is Strategy A: fill a buffer to 90% of the memory
	// budget, sort it, write one run.
	ChunkedSort RunGenerator = "chunked_sort"
	// SnowPlow is Strategy B: replacement selection over a heap,
	// reservoir and output buffer.
	SnowPlow RunGenerator = "snow_plow"
)

// MergeStrategy selects how runs are fanned into a single sorted output
// (spec §4.5/§4.6).
type MergeStrategy string

const (
	// KWay makes the final merge a single k-way pass over the whole pool.
	KWay MergeStrategy = "kway"
	// Binary makes the final merge a single pass when the pool holds at
	// most 2*WorkerCount files; otherwise the pool is split into
	// WorkerCount groups merged in parallel, then merged once more.
	Binary MergeStrategy = "binary"
)

// Config is the engine's single source of configuration. Every field is
// validated by Validate before use; nothing downstream re-derives or
// re-clamps these values.
type Config struct {
	// WorkerCount is the number of concurrent run-generation/merge tasks.
	WorkerCount int
	// MemoryBudgetBytes bounds the working set of any single task
	// (one run generator invocation, one merge stream fan-in).
	MemoryBudgetBytes int64
	// MergeStrategy selects kway or binary fan-in.
	MergeStrategy MergeStrategy
	// RunGenerator selects chunked_sort or snow_plow.
	RunGenerator RunGenerator
	// TmpDir is where intermediate run/merge files are created.
	TmpDir string
}

// Validate rejects a Config that cannot be used safely: a non-positive
// worker count or memory budget, an unrecognized strategy, or an empty
// temp directory.
func (c Config) Validate() error {
	if c.WorkerCount < 1 {
		return &sorterr.ConfigError{Field: "WorkerCount", Reason: "must be >= 1"}
	}
	if c.MemoryBudgetBytes < 1 {
		return &sorterr.ConfigError{Field: "MemoryBudgetBytes", Reason: "must be >= 1"}
	}
	switch c.MergeStrategy {
	case KWay, Binary:
	default:
		return &sorterr.ConfigError{Field: "MergeStrategy", Reason: "must be kway or binary"}
	}
	switch c.RunGenerator {
	case ChunkedSort, SnowPlow:
	default:
		return &sorterr.ConfigError{Field: "RunGenerator", Reason: "must be chunked_sort or snow_plow"}
	}
	if c.TmpDir == "" {
		return &sorterr.ConfigError{Field: "TmpDir", Reason: "must not be empty"}
	}
	return nil
}
