package distsort

import (
	"context"
	"net"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	natefinchatomic "github.com/natefinch/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/skiby7/parallel-external-mergesort/internal/merge"
	"github.com/skiby7/parallel-external-mergesort/internal/record"
	"github.com/skiby7/parallel-external-mergesort/internal/recordio"
	"github.com/skiby7/parallel-external-mergesort/internal/sortcfg"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// RunCoordinator implements the coordinator role of spec §4.7: it shards
// inputPath's records round-robin across workerConns, collects each
// worker's sorted shard back into a per-worker intermediate file, merges
// those already-sorted files (each worker already sorted and merged its
// shard before streaming it back, so only a final merge — not a full
// re-sort — is needed here), and renames the result to outputPath.
func RunCoordinator(ctx context.Context, cfg sortcfg.Config, workerConns []net.Conn, inputPath, outputPath string) error {
	if len(workerConns) == 0 {
		return &sorterr.ConfigError{Field: "workerConns", Reason: "must have at least one worker"}
	}

	g, gctx := errgroup.WithContext(ctx)

	shardPaths := make([]string, len(workerConns))
	for i, conn := range workerConns {
		i, conn := i, conn
		shardPaths[i] = filepath.Join(cfg.TmpDir, "merge#"+uuid.New().String())
		g.Go(func() error {
			return receiveShard(conn, shardPaths[i])
		})
	}

	g.Go(func() error {
		return sendShards(gctx, cfg, inputPath, workerConns)
	})

	if err := g.Wait(); err != nil {
		for _, p := range shardPaths {
			_ = os.Remove(p)
		}
		return err
	}

	outTmp := filepath.Join(cfg.TmpDir, "merge#"+uuid.New().String())
	if err := merge.Merge(shardPaths, outTmp, cfg.MemoryBudgetBytes); err != nil {
		return err
	}

	f, err := os.Open(outTmp)
	if err != nil {
		return &sorterr.IoError{Op: "open", Path: outTmp, Err: err}
	}
	defer f.Close()
	if err := natefinchatomic.WriteFile(outputPath, f); err != nil {
		return &sorterr.IoError{Op: "atomic rename", Path: outputPath, Err: err}
	}
	_ = os.Remove(outTmp)
	return nil
}

// sendShards reads inputPath sequentially in at-most-half-memory-budget
// chunks and round-robin distributes its records across workerConns,
// flushing each worker's accumulation buffer once it exceeds a quarter
// of the memory budget, per spec §4.7 step 2.
func sendShards(ctx context.Context, cfg sortcfg.Config, inputPath string, workerConns []net.Conn) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return &sorterr.IoError{Op: "open", Path: inputPath, Err: err}
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return &sorterr.IoError{Op: "stat", Path: inputPath, Err: err}
	}

	readBudget := cfg.MemoryBudgetBytes / 2
	if readBudget < 1 {
		readBudget = 1
	}
	flushThreshold := cfg.MemoryBudgetBytes / 4
	if flushThreshold < 1 {
		flushThreshold = 1
	}

	buffers := make([][]byte, len(workerConns))
	var ordinal uint64

	flush := func(i int) error {
		if len(buffers[i]) == 0 {
			return nil
		}
		if err := writeFrame(workerConns[i], buffers[i]); err != nil {
			return err
		}
		buffers[i] = nil
		return nil
	}

	var offset int64
	for offset < fi.Size() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		sink := recordio.NewSliceSink(0)
		consumed, err := recordio.ReadRecords(f, offset, minInt64(readBudget, fi.Size()-offset), sink)
		if err != nil {
			return err
		}
		if consumed == 0 {
			break
		}
		offset += consumed

		for _, r := range sink.Records {
			worker := int(ordinal % uint64(len(workerConns)))
			ordinal++

			var buf []byte
			w := byteWriter{&buf}
			if err := record.Encode(&w, r); err != nil {
				return err
			}
			buffers[worker] = append(buffers[worker], buf...)

			if int64(len(buffers[worker])) >= flushThreshold {
				if err := flush(worker); err != nil {
					return err
				}
			}
		}
	}

	for i := range workerConns {
		if err := flush(i); err != nil {
			return err
		}
		if err := writeEndOfStream(workerConns[i]); err != nil {
			return err
		}
	}
	return nil
}

// receiveShard drains frames from conn until the end-of-stream sentinel,
// appending each frame's payload verbatim to a fresh intermediate file.
// Byte boundaries need not align with records: the sender is streaming
// an already-complete, already-sorted file's bytes in arbitrary windows,
// so a plain concatenation reconstructs it exactly (spec §4.7 step 3).
func receiveShard(conn net.Conn, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return &sorterr.IoError{Op: "create", Path: outPath, Err: err}
	}
	defer f.Close()

	for {
		payload, ok, err := readFrame(conn)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if _, err := f.Write(payload); err != nil {
			return &sorterr.IoError{Op: "write", Path: outPath, Err: err}
		}
	}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// byteWriter adapts a *[]byte to io.Writer for record.Encode.
type byteWriter struct {
	buf *[]byte
}

func (w *byteWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}
