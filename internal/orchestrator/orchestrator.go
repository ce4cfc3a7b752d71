// Package orchestrator implements the local orchestrator (spec component
// C6): it drives C3/C4/C5 over a single input file using a bounded
// worker pool, and produces one sorted output file.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	natefinchatomic "github.com/natefinch/atomic"

	"github.com/skiby7/parallel-external-mergesort/internal/chunker"
	"github.com/skiby7/parallel-external-mergesort/internal/merge"
	"github.com/skiby7/parallel-external-mergesort/internal/rungen"
	"github.com/skiby7/parallel-external-mergesort/internal/sortcfg"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
	"github.com/skiby7/parallel-external-mergesort/internal/stats"
	"github.com/skiby7/parallel-external-mergesort/internal/taskpool"
	"github.com/skiby7/parallel-external-mergesort/internal/xlog"
)

const onePercent = 100

// Sort drives the whole local external-sort pipeline over inputPath,
// writing the sorted result to outputPath. cfg must already be valid
// (see sortcfg.Config.Validate). Logger and st may be nil; when non-nil
// they receive progress messages and operation counts respectively.
func Sort(ctx context.Context, cfg sortcfg.Config, inputPath, outputPath string, logger *xlog.Logger, st *stats.Stats) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	fi, err := os.Stat(inputPath)
	if err != nil {
		return &sorterr.IoError{Op: "stat", Path: inputPath, Err: err}
	}
	fileSize := fi.Size()

	if fileSize == 0 {
		f, err := os.Create(outputPath)
		if err != nil {
			return &sorterr.IoError{Op: "create", Path: outputPath, Err: err}
		}
		return f.Close()
	}

	perWorkerMemory := cfg.MemoryBudgetBytes / int64(cfg.WorkerCount)
	if perWorkerMemory < 1 {
		perWorkerMemory = 1
	}

	chunkSize := fileSize / onePercent
	if threeShares := 3 * perWorkerMemory; threeShares < chunkSize {
		chunkSize = threeShares
	}
	if chunkSize < 1 {
		chunkSize = 1
	}
	targetChunks := int((fileSize + chunkSize - 1) / chunkSize)
	if targetChunks < 1 {
		targetChunks = 1
	}

	ranges, err := chunker.Chunk(inputPath, targetChunks)
	if err != nil {
		return err
	}

	pool := taskpool.New(cfg.WorkerCount)
	results := make(chan completion, len(ranges)+cfg.WorkerCount)

	var state State = DistributingSorts
	if logger != nil {
		logger.Debug(xlog.PlainMessage(fmt.Sprintf("state=%s chunks=%d", state, len(ranges))))
	}

	var tracked []string // every produced intermediate, for cleanup on failure

	for i, rg := range ranges {
		i, rg := i, rg
		taskID := fmt.Sprintf("sort-%d", i)
		pool.Go(func() error {
			runs, err := rungen.Generate(cfg, inputPath, rg.Start, rg.Len(), cfg.TmpDir, perWorkerMemory)
			results <- completion{taskID: taskID, kind: kindSort, runs: runs, err: err}
			return err
		})
	}

	state = WaitingForSorts
	finalPool, failErr := drain(ctx, pool, cfg, results, len(ranges), &tracked, logger, st)

	if failErr != nil {
		state = Failed
		if logger != nil {
			logger.Error(xlog.ErrorMessage{Stage: state.String(), Err: failErr.Error()})
		}
		cleanup(tracked)
		return failErr
	}

	state = FinalMerge
	if logger != nil {
		logger.Debug(xlog.PlainMessage(fmt.Sprintf("state=%s pool_size=%d", state, len(finalPool))))
	}

	finalOutputTmp, err := finalMerge(cfg, finalPool, logger, st)
	if err != nil {
		cleanup(append(tracked, finalPool...))
		return err
	}

	if err := renameIntoPlace(finalOutputTmp, outputPath); err != nil {
		return err
	}

	if st != nil {
		if outFi, statErr := os.Stat(outputPath); statErr == nil {
			st.Add(stats.BytesWritten, uint64(outFi.Size()))
		}
	}

	sweep(cfg.TmpDir)

	state = Done
	if logger != nil {
		logger.Success(xlog.PlainMessage(fmt.Sprintf("state=%s output=%s", state, outputPath)))
	}
	return nil
}

// drain consumes completion messages until every sort task and every
// merge task it spawns along the way has reported in. The pending count
// grows when a sort completion with multiple runs spawns a consolidation
// merge — the defining trait of the orchestrator's cyclic control flow.
func drain(ctx context.Context, pool *taskpool.Pool, cfg sortcfg.Config, results chan completion, initialPending int, tracked *[]string, logger *xlog.Logger, st *stats.Stats) ([]string, error) {
	pending := initialPending
	var finalPool []string
	var firstErr error

	for pending > 0 {
		select {
		case <-ctx.Done():
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			pending--
			continue
		case c := <-results:
			pending--
			if c.err != nil {
				if firstErr == nil {
					firstErr = c.err
				}
				continue
			}
			*tracked = append(*tracked, c.runs...)

			switch c.kind {
			case kindSort:
				if st != nil {
					st.Add(stats.RunsWritten, uint64(len(c.runs)))
				}
				switch len(c.runs) {
				case 0:
					// empty chunk range, nothing to carry forward
				case 1:
					finalPool = append(finalPool, c.runs[0])
				default:
					pending++
					runs := c.runs
					taskID := c.taskID + "-merge"
					pool.Go(func() error {
						outPath := filepath.Join(cfg.TmpDir, "merge#"+uuid.New().String())
						err := merge.Merge(runs, outPath, cfg.MemoryBudgetBytes)
						var produced []string
						if err == nil {
							produced = []string{outPath}
						}
						results <- completion{taskID: taskID, kind: kindMerge, runs: produced, err: err}
						return err
					})
				}
			case kindMerge:
				if len(c.runs) == 1 {
					finalPool = append(finalPool, c.runs[0])
				}
			}
		}
	}

	if waitErr := pool.Wait(); waitErr != nil && firstErr == nil {
		firstErr = waitErr
	}

	if logger != nil {
		logger.Debug(xlog.PlainMessage(fmt.Sprintf("drained: pool_size=%d err=%v", len(finalPool), firstErr)))
	}

	return finalPool, firstErr
}

// finalMerge performs the orchestrator's last fan-in step: one merge if
// MergeStrategy is KWay or the pool holds at most 2*W files, otherwise a
// two-level merge partitioned into W groups. Returns the path of the
// single resulting file.
func finalMerge(cfg sortcfg.Config, finalPool []string, logger *xlog.Logger, st *stats.Stats) (string, error) {
	outPath := filepath.Join(cfg.TmpDir, "merge#"+uuid.New().String())

	if cfg.MergeStrategy == sortcfg.KWay || len(finalPool) <= 2*cfg.WorkerCount {
		if err := merge.Merge(finalPool, outPath, cfg.MemoryBudgetBytes); err != nil {
			return "", err
		}
		if st != nil {
			st.Increment(stats.MergesPerformed)
		}
		return outPath, nil
	}

	groups := partition(finalPool, cfg.WorkerCount)
	intermediates := make([]string, len(groups))
	errs := make([]error, len(groups))

	pool := taskpool.New(cfg.WorkerCount)
	for i, g := range groups {
		i, g := i, g
		pool.Go(func() error {
			p := filepath.Join(cfg.TmpDir, "merge#"+uuid.New().String())
			err := merge.Merge(g, p, cfg.MemoryBudgetBytes)
			intermediates[i] = p
			errs[i] = err
			return err
		})
	}
	if err := pool.Wait(); err != nil {
		cleanup(intermediates)
		return "", err
	}
	for _, e := range errs {
		if e != nil {
			cleanup(intermediates)
			return "", e
		}
	}
	if st != nil {
		st.Add(stats.MergesPerformed, uint64(len(groups)))
	}

	if err := merge.Merge(intermediates, outPath, cfg.MemoryBudgetBytes); err != nil {
		return "", err
	}
	if st != nil {
		st.Increment(stats.MergesPerformed)
	}
	if logger != nil {
		logger.Debug(xlog.PlainMessage(fmt.Sprintf("two-level final merge: %d groups", len(groups))))
	}
	return outPath, nil
}

// partition splits files into groups consecutive groups, as evenly as
// possible, never producing more than groupCount groups.
func partition(files []string, groupCount int) [][]string {
	if groupCount < 1 {
		groupCount = 1
	}
	if groupCount > len(files) {
		groupCount = len(files)
	}
	groups := make([][]string, groupCount)
	base := len(files) / groupCount
	extra := len(files) % groupCount
	idx := 0
	for i := 0; i < groupCount; i++ {
		n := base
		if i < extra {
			n++
		}
		groups[i] = files[idx : idx+n]
		idx += n
	}
	return groups
}

// renameIntoPlace atomically publishes src as dst: the output is visible
// to other processes only once fully written, per spec §6.
func renameIntoPlace(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return &sorterr.IoError{Op: "open", Path: src, Err: err}
	}
	defer f.Close()

	if err := natefinchatomic.WriteFile(dst, f); err != nil {
		return &sorterr.IoError{Op: "atomic rename", Path: dst, Err: err}
	}
	_ = os.Remove(src)
	return nil
}

// sweep removes any stray run#/merge# file left in tmpDir by a prior,
// interrupted invocation, per spec §6.
func sweep(tmpDir string) {
	for _, pattern := range []string{"run#*", "merge#*"} {
		matches, err := filepath.Glob(filepath.Join(tmpDir, pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			_ = os.Remove(m)
		}
	}
}

// cleanup best-effort removes intermediate files after a failed sort.
func cleanup(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
