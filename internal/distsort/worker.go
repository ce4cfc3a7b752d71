package distsort

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/skiby7/parallel-external-mergesort/internal/merge"
	"github.com/skiby7/parallel-external-mergesort/internal/record"
	"github.com/skiby7/parallel-external-mergesort/internal/recordio"
	"github.com/skiby7/parallel-external-mergesort/internal/sortcfg"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// RunWorker implements the worker role of spec §4.7: receive a shard of
// records over conn, sort it locally the same way the local orchestrator
// would (accumulate-and-spill, then merge the spilled runs), and stream
// the single sorted result back before cleaning up local temp files.
//
// sendChunkBudget bounds each outbound frame's payload size and is chosen
// by the caller; the work subcommand passes half of its memory budget,
// whatever the number of workers.
func RunWorker(cfg sortcfg.Config, conn net.Conn, sendChunkBudget int64) error {
	runFiles, err := accumulateAndSpill(cfg, conn)
	if err != nil {
		cleanupFiles(runFiles)
		return err
	}
	defer cleanupFiles(runFiles)

	shardPath := filepath.Join(cfg.TmpDir, "merge#"+uuid.New().String())
	if err := merge.Merge(runFiles, shardPath, cfg.MemoryBudgetBytes); err != nil {
		return err
	}
	defer os.Remove(shardPath)

	return streamShardBack(conn, shardPath, sendChunkBudget)
}

// accumulateAndSpill reads (size, bytes) frames from conn until the
// end-of-stream sentinel, decoding each frame's payload into records and
// buffering them; once the buffered records reach 90% of the memory
// budget, it sorts and spills the buffer to a new run file, mirroring
// rungen's chunked-sort strategy but fed by the network instead of a
// file range.
func accumulateAndSpill(cfg sortcfg.Config, conn net.Conn) ([]string, error) {
	budget := (cfg.MemoryBudgetBytes * 9) / 10
	if budget < 1 {
		budget = 1
	}
	maxPayload := uint32(cfg.MemoryBudgetBytes)

	var runFiles []string
	var buf []record.Record
	var used int64

	spill := func() error {
		if len(buf) == 0 {
			return nil
		}
		sort.Slice(buf, func(i, j int) bool { return buf[i].Less(buf[j]) })
		path := filepath.Join(cfg.TmpDir, "run#"+uuid.New().String())
		f, err := os.Create(path)
		if err != nil {
			return &sorterr.IoError{Op: "create run file", Path: path, Err: err}
		}
		defer f.Close()
		sink := recordio.NewSliceSink(len(buf))
		for _, r := range buf {
			sink.Push(r)
		}
		if _, err := recordio.AppendRecords(f, recordio.AsSource(sink)); err != nil {
			return err
		}
		runFiles = append(runFiles, path)
		buf = buf[:0]
		used = 0
		return nil
	}

	for {
		payload, ok, err := readFrame(conn)
		if err != nil {
			return runFiles, err
		}
		if !ok {
			break
		}

		r := bytes.NewReader(payload)
		for r.Len() > 0 {
			rec, err := record.Decode(r, maxPayload)
			if err != nil {
				return runFiles, err
			}
			buf = append(buf, rec)
			used += int64(rec.ByteSize())
			if used >= budget {
				if err := spill(); err != nil {
					return runFiles, err
				}
			}
		}
	}

	if err := spill(); err != nil {
		return runFiles, err
	}
	return runFiles, nil
}

// streamShardBack sends path's contents back over conn in chunks of at
// most chunkBudget bytes, terminated by the zero-size sentinel. Record
// boundaries need not be preserved per frame (spec §4.7 step 3).
func streamShardBack(conn net.Conn, path string, chunkBudget int64) error {
	f, err := os.Open(path)
	if err != nil {
		return &sorterr.IoError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	if chunkBudget < 1 {
		chunkBudget = 1
	}
	buf := make([]byte, chunkBudget)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if werr := writeFrame(conn, buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return &sorterr.IoError{Op: "read run file", Path: path, Err: err}
		}
	}
	return writeEndOfStream(conn)
}

func cleanupFiles(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
