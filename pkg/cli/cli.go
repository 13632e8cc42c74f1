package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	// Local development convenience; a missing .env is not an error
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "magis",
		Usage: "Personal assistant memory engine",
		Commands: []*cli.Command{
			rememberCommand(),
			searchCommand(),
			askCommand(),
			listCommand(),
			importanceCommand(),
			forgetCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
