package rungen

import (
	"github.com/skiby7/parallel-external-mergesort/internal/record"
)

// generateChunked implements Strategy A (spec §4.4): fill an in-memory
// buffer until the next record would push it past 90% of memoryBudget,
// sort the buffer by key, write it as one run, and repeat until the
// assigned range is consumed.
func generateChunked(inputPath string, startOffset, sizeBytes int64, outputDir string, memoryBudget int64) ([]string, error) {
	budget := (memoryBudget * 9) / 10
	if budget < 1 {
		budget = 1
	}

	puller, err := newRecordPuller(inputPath, startOffset, sizeBytes, memoryBudget)
	if err != nil {
		return nil, err
	}
	defer puller.Close()

	var runs []string

	for {
		var buf []record.Record
		var used int64

		for {
			rec, ok, err := puller.peek()
			if err != nil {
				return runs, err
			}
			if !ok {
				break
			}
			sz := int64(rec.ByteSize())
			if used > 0 && used+sz > budget {
				break
			}
			puller.consume()
			buf = append(buf, rec)
			used += sz
		}

		if len(buf) == 0 {
			break
		}

		path, err := writeSortedRun(outputDir, buf)
		if err != nil {
			return runs, err
		}
		runs = append(runs, path)

		if puller.exhausted() {
			break
		}
	}

	return runs, nil
}
