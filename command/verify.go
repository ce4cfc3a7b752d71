package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/skiby7/parallel-external-mergesort/internal/verify"
)

func NewVerifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "re-read a file and confirm it is sorted ascending by key",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return cli.Exit(fmt.Errorf("verify requires exactly <file>"), 1)
			}
			cfg := configFromContext(c)
			violation, err := verify.File(c.Args().Get(0), cfg.MemoryBudgetBytes)
			if err != nil {
				return cli.Exit(err, 1)
			}
			if violation != nil {
				return cli.Exit(violation, 1)
			}
			fmt.Println("sorted")
			return nil
		},
	}
}
