package command

import (
	"fmt"
	"net"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/skiby7/parallel-external-mergesort/internal/distsort"
	"github.com/skiby7/parallel-external-mergesort/internal/xlog"
)

func NewCoordinateCommand() *cli.Command {
	return &cli.Command{
		Name:      "coordinate",
		Usage:     "run the distributed coordinator role against already-listening workers",
		ArgsUsage: "<input> <output>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "workers",
				Usage:    "comma-separated host:port list of worker addresses",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return cli.Exit(fmt.Errorf("coordinate requires exactly <input> <output>"), 1)
			}
			cfg := configFromContext(c)
			if err := cfg.Validate(); err != nil {
				return cli.Exit(err, 1)
			}

			addrs := strings.Split(c.String("workers"), ",")
			transport := distsort.TCPTransport{}
			conns := make([]net.Conn, 0, len(addrs))
			for _, addr := range addrs {
				addr = strings.TrimSpace(addr)
				if addr == "" {
					continue
				}
				conn, err := transport.Dial(addr)
				if err != nil {
					for _, opened := range conns {
						_ = opened.Close()
					}
					return cli.Exit(err, 1)
				}
				conns = append(conns, conn)
			}
			if len(conns) == 0 {
				return cli.Exit(fmt.Errorf("no worker addresses given"), 1)
			}
			defer func() {
				for _, conn := range conns {
					_ = conn.Close()
				}
			}()

			input, output := c.Args().Get(0), c.Args().Get(1)
			if err := distsort.RunCoordinator(c.Context, cfg, conns, input, output); err != nil {
				return cli.Exit(err, 1)
			}
			if globalLogger != nil {
				globalLogger.Success(xlog.PlainMessage(fmt.Sprintf("output=%s", output)))
			}
			return nil
		},
	}
}
