package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/skiby7/parallel-external-mergesort/internal/distsort"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
	"github.com/skiby7/parallel-external-mergesort/internal/xlog"
)

func NewWorkCommand() *cli.Command {
	return &cli.Command{
		Name:  "work",
		Usage: "run the distributed worker role, accepting one coordinator connection",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "listen",
				Usage:    "host:port to listen on for the coordinator",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			cfg := configFromContext(c)
			if err := cfg.Validate(); err != nil {
				return cli.Exit(err, 1)
			}

			transport := distsort.TCPTransport{}
			ln, err := transport.Listen(c.String("listen"))
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer ln.Close()

			if globalLogger != nil {
				globalLogger.Info(xlog.PlainMessage(fmt.Sprintf("listening on %s", c.String("listen"))))
			}

			conn, err := ln.Accept()
			if err != nil {
				return cli.Exit(&sorterr.IoError{Op: "accept", Path: c.String("listen"), Err: err}, 1)
			}
			defer conn.Close()

			sendChunkBudget := cfg.MemoryBudgetBytes / 2
			if err := distsort.RunWorker(cfg, conn, sendChunkBudget); err != nil {
				return cli.Exit(err, 1)
			}
			if globalLogger != nil {
				globalLogger.Success(xlog.PlainMessage("shard sent"))
			}
			return nil
		},
	}
}
