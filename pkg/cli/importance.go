package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/csfalcao/magis/pkg/model"
	"github.com/csfalcao/magis/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func importanceCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "importance",
		Usage:     "Change the importance boost of a memory",
		ArgsUsage: "<memory-id> <1-10>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupContext(ctx)

			if c.Args().Len() != 2 {
				return goerr.New("memory ID and importance value are required")
			}

			id := model.MemoryID(c.Args().Get(0))
			importance, err := strconv.Atoi(c.Args().Get(1))
			if err != nil {
				return goerr.Wrap(err, "importance must be a number")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			uc := memory.New(repo, memory.WithOutput(c.Root().Writer))
			if err := uc.SetImportance(ctx, cfg.ownerID, id, importance); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Importance of %s set to %d\n", id, importance)
			return nil
		},
	}
}
