// Package command wires the engine's subcommands onto one cli.App, the
// same single-binary-many-subcommands shape the reference CLI uses for
// its own many S3 operations.
package command

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/skiby7/parallel-external-mergesort/internal/stats"
	"github.com/skiby7/parallel-external-mergesort/internal/xlog"
	"github.com/skiby7/parallel-external-mergesort/strutil"
)

const appName = "mergesort"

var (
	globalLogger *xlog.Logger
	globalStats  *stats.Stats
)

var app = &cli.App{
	Name:  appName,
	Usage: "out-of-core external merge sort engine",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "t",
			Value: runtime.NumCPU(),
			Usage: "worker count",
		},
		&cli.Int64Flag{
			Name:  "m",
			Value: 8 << 30,
			Usage: "memory budget in bytes",
		},
		&cli.BoolFlag{
			Name:  "k",
			Usage: "prefer a single k-way merge over multi-level binary merge",
		},
		&cli.StringFlag{
			Name:  "p",
			Value: os.TempDir(),
			Usage: "temporary directory",
		},
		&cli.GenericFlag{
			Name: "log",
			Value: &EnumValue{
				Enum:    []string{"debug", "info", "warning", "error"},
				Default: "info",
			},
			Usage: "log level: (debug, info, warning, error)",
		},
		&cli.GenericFlag{
			Name: "run-generator",
			Value: &EnumValue{
				Enum:    []string{"chunked", "snowplow"},
				Default: "chunked",
			},
			Usage: "run generation strategy: (chunked, snowplow)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "emit log lines as JSON",
		},
		&cli.BoolFlag{
			Name:  "stat",
			Usage: "collect and print operation counters at the end",
		},
	},
	Before: func(c *cli.Context) error {
		level := xlog.ParseLevel(c.String("log"))
		globalLogger = xlog.New(level, c.Bool("json"))
		if c.Bool("stat") {
			globalStats = &stats.Stats{}
		}
		if c.Int("t") < 1 {
			return cli.Exit(fmt.Errorf("worker count must be >= 1"), 1)
		}
		return nil
	},
	OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
		_, _ = fmt.Fprintf(os.Stderr, "Incorrect Usage: %v\n", err)
		_, _ = fmt.Fprintf(os.Stderr, "See 'mergesort --help' for usage\n")
		return err
	},
	Action: func(c *cli.Context) error {
		if c.Args().Present() {
			_ = cli.ShowCommandHelp(c, c.Args().First())
			return cli.Exit("", 1)
		}
		return cli.ShowAppHelp(c)
	},
	After: func(c *cli.Context) error {
		if globalStats != nil {
			for name, v := range globalStats.Snapshot() {
				if name == stats.BytesWritten.String() {
					globalLogger.Info(xlog.PlainMessage(fmt.Sprintf("%s=%s", name, strutil.HumanizeBytes(int64(v)))))
					continue
				}
				globalLogger.Info(xlog.PlainMessage(fmt.Sprintf("%s=%d", name, v)))
			}
		}
		if globalLogger != nil {
			globalLogger.Close()
		}
		return nil
	},
}

func Commands() []*cli.Command {
	return []*cli.Command{
		NewSortCommand(),
		NewCoordinateCommand(),
		NewWorkCommand(),
		NewGenCommand(),
		NewVerifyCommand(),
		NewVersionCommand(),
	}
}

// Main is the entrypoint function to run the given command-line arguments
// against the engine's app.
func Main(ctx context.Context, args []string) error {
	app.Commands = Commands()
	return app.RunContext(ctx, args)
}
