package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/skiby7/parallel-external-mergesort/internal/genrecords"
)

func NewGenCommand() *cli.Command {
	return &cli.Command{
		Name:      "gen",
		Usage:     "synthesize a record file for exercising the other subcommands",
		ArgsUsage: "<output>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "count",
				Usage:    "number of records to generate",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "max-payload",
				Value: 64,
				Usage: "maximum payload size in bytes",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Value: 0,
				Usage: "PRNG seed, for reproducible fixtures",
			},
			&cli.GenericFlag{
				Name: "distribution",
				Value: &EnumValue{
					Enum:    []string{"uniform", "feistel"},
					Default: "uniform",
				},
				Usage: "key distribution: (uniform, feistel)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return cli.Exit(fmt.Errorf("gen requires exactly <output>"), 1)
			}
			dist := genrecords.Uniform
			if c.String("distribution") == "feistel" {
				dist = genrecords.Feistel
			}
			opts := genrecords.Options{
				Count:        c.Int("count"),
				MaxPayload:   c.Int("max-payload"),
				Seed:         c.Int64("seed"),
				Distribution: dist,
			}
			if err := genrecords.Generate(c.Args().Get(0), opts); err != nil {
				return cli.Exit(err, 1)
			}
			return nil
		},
	}
}
