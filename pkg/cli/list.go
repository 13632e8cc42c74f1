package cli

import (
	"context"

	"github.com/csfalcao/magis/pkg/usecase/memory"
	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var (
		cfg        config
		memContext string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "context",
			Aliases:     []string{"c"},
			Usage:       "Restrict the listing to one context",
			Destination: &memContext,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List stored memories, most recent first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupContext(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			uc := memory.New(repo, memory.WithOutput(c.Root().Writer))
			_, err = uc.List(ctx, cfg.ownerID, memContext)
			return err
		},
	}
}
