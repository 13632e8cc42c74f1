package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/csfalcao/magis/pkg/usecase/ingest"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func rememberCommand() *cli.Command {
	var (
		cfg        config
		memContext string
		importance int64
		bucket     string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "context",
			Aliases:     []string{"c"},
			Usage:       `Scope of the memory, e.g. "work", "personal", "family"`,
			Sources:     cli.EnvVars("MAGIS_CONTEXT"),
			Destination: &memContext,
		},
		&cli.IntFlag{
			Name:        "importance",
			Aliases:     []string{"i"},
			Usage:       "Importance 1-10 (default: 5)",
			Destination: &importance,
		},
		&cli.StringFlag{
			Name:        "transcript-bucket",
			Usage:       "Cloud Storage bucket for raw transcript archival (optional)",
			Sources:     cli.EnvVars("MAGIS_TRANSCRIPT_BUCKET"),
			Destination: &bucket,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "remember",
		Usage:     "Store a statement as a memory",
		ArgsUsage: "<text>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupContext(ctx)

			content := strings.Join(c.Args().Slice(), " ")
			if content == "" {
				return goerr.New("text to remember is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			var opts []ingest.Option
			if bucket != "" {
				storage, err := cfg.newStorage(ctx, bucket)
				if err != nil {
					return err
				}
				opts = append(opts, ingest.WithStorage(storage))
			}

			uc := ingest.New(repo, gemini, opts...)
			memory, err := uc.Ingest(ctx, ingest.Input{
				OwnerID:    cfg.ownerID,
				Content:    content,
				Context:    memContext,
				Importance: int(importance),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Remembered as %s (id: %s)\n", memory.Classification, memory.ID)
			if len(memory.Keywords) > 0 {
				fmt.Fprintf(c.Root().Writer, "Keywords: %s\n", strings.Join(memory.Keywords, ", "))
			}
			return nil
		},
	}
}
