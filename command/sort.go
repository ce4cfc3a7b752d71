package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/skiby7/parallel-external-mergesort/internal/orchestrator"
)

func NewSortCommand() *cli.Command {
	return &cli.Command{
		Name:      "sort",
		Usage:     "sort a single file out-of-core, locally",
		ArgsUsage: "<input> <output>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return cli.Exit(fmt.Errorf("sort requires exactly <input> <output>"), 1)
			}
			cfg := configFromContext(c)
			if err := cfg.Validate(); err != nil {
				return cli.Exit(err, 1)
			}
			input, output := c.Args().Get(0), c.Args().Get(1)
			if err := orchestrator.Sort(c.Context, cfg, input, output, globalLogger, globalStats); err != nil {
				return cli.Exit(err, 1)
			}
			return nil
		},
	}
}
