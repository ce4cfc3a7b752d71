// Package rungen implements the run generator (spec component C4):
// transforming a byte range of an input file into a list of sorted run
// files whose concatenation, in listed order, is a permutation of the
// range's records. Two strategies are provided, selected by
// sortcfg.Config.RunGenerator — chunked.go (in-memory chunk sort) and
// snowplow.go (replacement selection).
package rungen

import (
	"github.com/skiby7/parallel-external-mergesort/internal/sortcfg"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// Generate produces sorted run files covering [startOffset, startOffset+sizeBytes)
// of the file at inputPath, writing them under outputDir, and returns their
// paths in an order such that their concatenation is a permutation of the
// input range (each run already internally sorted by key).
//
// memoryBudget is this task's own share of memory — callers dividing a
// global budget across concurrent workers pass the per-worker share here,
// not the global total.
func Generate(cfg sortcfg.Config, inputPath string, startOffset, sizeBytes int64, outputDir string, memoryBudget int64) ([]string, error) {
	switch cfg.RunGenerator {
	case sortcfg.ChunkedSort:
		return generateChunked(inputPath, startOffset, sizeBytes, outputDir, memoryBudget)
	case sortcfg.SnowPlow:
		return generateSnowPlow(inputPath, startOffset, sizeBytes, outputDir, memoryBudget)
	default:
		return nil, &sorterr.ConfigError{Field: "RunGenerator", Reason: "unrecognized strategy"}
	}
}
