package command

import (
	"github.com/urfave/cli/v2"

	"github.com/skiby7/parallel-external-mergesort/internal/sortcfg"
)

// configFromContext builds a sortcfg.Config from the app's global flags,
// threading one value through every subcommand instead of reading flags
// ad hoc deeper in the call stack.
func configFromContext(c *cli.Context) sortcfg.Config {
	runGenerator := sortcfg.ChunkedSort
	if c.String("run-generator") == "snowplow" {
		runGenerator = sortcfg.SnowPlow
	}
	mergeStrategy := sortcfg.Binary
	if c.Bool("k") {
		mergeStrategy = sortcfg.KWay
	}
	return sortcfg.Config{
		WorkerCount:       c.Int("t"),
		MemoryBudgetBytes: c.Int64("m"),
		MergeStrategy:     mergeStrategy,
		RunGenerator:      runGenerator,
		TmpDir:            c.String("p"),
	}
}
