package cli

import (
	"context"

	"github.com/csfalcao/magis/pkg/service/mcp"
	"github.com/csfalcao/magis/pkg/usecase/ingest"
	"github.com/csfalcao/magis/pkg/usecase/search"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	var cfg config

	flags := append(globalFlags(&cfg), llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve memory search and storage as MCP tools over stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupContext(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			weights, err := cfg.newWeights()
			if err != nil {
				return err
			}

			searchUC, err := search.New(repo, gemini, weights)
			if err != nil {
				return err
			}
			ingestUC := ingest.New(repo, gemini)

			server, err := mcp.New(searchUC, ingestUC, cfg.ownerID)
			if err != nil {
				return err
			}

			return server.Run(ctx)
		},
	}
}
