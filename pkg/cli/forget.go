package cli

import (
	"context"
	"fmt"

	"github.com/csfalcao/magis/pkg/model"
	"github.com/csfalcao/magis/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func forgetCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "forget",
		Usage:     "Soft-delete a memory (it disappears from every search)",
		ArgsUsage: "<memory-id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupContext(ctx)

			id := model.MemoryID(c.Args().First())
			if id == "" {
				return goerr.New("memory ID is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			uc := memory.New(repo, memory.WithOutput(c.Root().Writer))
			if err := uc.Forget(ctx, cfg.ownerID, id); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Forgot %s\n", id)
			return nil
		},
	}
}
