package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/skiby7/parallel-external-mergesort/version"
)

func NewVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print the engine's version",
		Action: func(c *cli.Context) error {
			if version.GitBranch != "" {
				fmt.Printf("%s version %s (from branch %s)\n", appName, version.GitSummary, version.GitBranch)
				return nil
			}
			fmt.Printf("%s version %s\n", appName, version.GitSummary)
			return nil
		},
	}
}
