package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/csfalcao/magis/pkg/tool"
	"github.com/csfalcao/magis/pkg/tool/memorytool"
	"github.com/csfalcao/magis/pkg/usecase/chat"
	"github.com/csfalcao/magis/pkg/usecase/search"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var cfg config

	flags := append(globalFlags(&cfg), llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "ask",
		Usage: "Interactive assistant session answering from your memories",
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

			registry := tool.New(memorytool.NewRecall(searchUC, cfg.ownerID))
			session := chat.New(chat.NewInput{
				Gemini:   gemini,
				Registry: registry,
			})

			rl, err := readline.New("magis> ")
			if err != nil {
				return err
			}
			defer rl.Close()

			fmt.Fprintln(c.Root().Writer, "Ask about anything you told me. Type 'exit' to quit.")

			for {
				line, err := rl.Readline()
				if err != nil { // io.EOF or readline.ErrInterrupt
					if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
						return nil
					}
					return err
				}

				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
					spinner.WithWriter(c.Root().ErrWriter))
				sp.Suffix = " thinking..."
				sp.Start()

				answer, err := session.Send(ctx, line)
				sp.Stop()
				if err != nil {
					fmt.Fprintf(c.Root().ErrWriter, "error: %v\n", err)
					continue
				}

				fmt.Fprintln(c.Root().Writer, answer)
			}
		},
	}
}
