// Package genrecords synthesizes record files for exercising the other
// components: an external test-data collaborator (spec §1), not part of
// the sort engine itself, grounded on the original project's
// src/gen_file.cpp / src/generate_file.cpp test-fixture generators.
package genrecords

import (
	"math/rand"
	"os"

	"github.com/skiby7/parallel-external-mergesort/internal/record"
	"github.com/skiby7/parallel-external-mergesort/internal/recordio"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// Distribution selects how keys are derived from a record's ordinal.
type Distribution string

const (
	// Uniform draws each key independently from a seeded PRNG; keys may
	// repeat.
	Uniform Distribution = "uniform"
	// Feistel derives each key via a bijective-looking Feistel shuffle
	// over [0, count), guaranteeing no duplicate keys without sorting or
	// materializing a permutation array up front.
	Feistel Distribution = "feistel"
)

// Options configures a single Generate call.
type Options struct {
	Count        int
	MaxPayload   int
	Seed         int64
	Distribution Distribution
}

// Generate writes count records to path, honoring Options. Each
// record's payload is maxPayload/2 to maxPayload bytes of deterministic
// pseudorandom data seeded from Options.Seed, so repeated calls with the
// same seed reproduce byte-identical fixtures.
func Generate(path string, opts Options) error {
	if opts.Count < 0 {
		return &sorterr.ConfigError{Field: "Count", Reason: "must be >= 0"}
	}
	if opts.MaxPayload < 0 {
		return &sorterr.ConfigError{Field: "MaxPayload", Reason: "must be >= 0"}
	}

	f, err := os.Create(path)
	if err != nil {
		return &sorterr.IoError{Op: "create", Path: path, Err: err}
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(opts.Seed))
	sink := recordio.NewSliceSink(opts.Count)

	minPayload := opts.MaxPayload / 2
	for i := 0; i < opts.Count; i++ {
		var key uint64
		switch opts.Distribution {
		case Feistel:
			key = feistelKey(uint64(i), uint64(opts.Count), uint32(opts.Seed))
		default:
			key = rng.Uint64()
		}

		payloadLen := minPayload
		if opts.MaxPayload > minPayload {
			payloadLen += rng.Intn(opts.MaxPayload - minPayload + 1)
		}
		payload := make([]byte, payloadLen)
		rng.Read(payload)

		sink.Push(record.Record{Key: key, Payload: payload})
	}

	_, err = recordio.AppendRecords(f, recordio.AsSource(sink))
	return err
}
