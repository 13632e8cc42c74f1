package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/csfalcao/magis/pkg/model"
	"github.com/csfalcao/magis/pkg/usecase/search"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg        config
		memContext string
		limit      int64
		threshold  float64
		memoryOnly bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "context",
			Aliases:     []string{"c"},
			Usage:       "Restrict the search to one context",
			Destination: &memContext,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of results",
			Value:       model.DefaultSearchLimit,
			Destination: &limit,
		},
		&cli.FloatFlag{
			Name:        "threshold",
			Aliases:     []string{"t"},
			Usage:       "Minimum combined score in [0,1]",
			Value:       model.DefaultSearchThreshold,
			Destination: &threshold,
		},
		&cli.BoolFlag{
			Name:        "memory-only",
			Usage:       "Skip the task-store path and score memories directly",
			Destination: &memoryOnly,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Search memories with the multi-dimensional scorer",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupContext(ctx)

			queryText := c.Args().First()
			if queryText == "" {
				return goerr.New("query text is required")
			}

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

			uc, err := search.New(repo, gemini, weights)
			if err != nil {
				return err
			}

			query := model.SearchQuery{
				Text:      queryText,
				Context:   memContext,
				Limit:     int(limit),
				Threshold: threshold,
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
				spinner.WithWriter(c.Root().ErrWriter))
			sp.Suffix = " searching..."
			sp.Start()

			var results []*model.SearchResult
			if memoryOnly {
				memories, err := uc.Search(ctx, cfg.ownerID, query)
				sp.Stop()
				if err != nil {
					return err
				}
				for _, m := range memories {
					results = append(results, &model.SearchResult{Type: model.ResultTypeMemory, Memory: m})
				}
			} else {
				results, err = uc.SearchTasksOrMemories(ctx, cfg.ownerID, query)
				sp.Stop()
				if err != nil {
					return err
				}
			}

			if len(results) == 0 {
				fmt.Fprintln(c.Root().Writer, "No matching memories found")
				return nil
			}

			for i, res := range results {
				printResult(c, i+1, res)
			}
			return nil
		},
	}
}

func printResult(c *cli.Command, n int, res *model.SearchResult) {
	w := c.Root().Writer

	switch res.Type {
	case model.ResultTypeTask:
		due := "unscheduled"
		if res.Task.DueDate != nil {
			due = res.Task.DueDate.Format("Mon 2006-01-02")
		}
		fmt.Fprintf(w, "%d. [task] %s\n", n, res.Task.Title)
		fmt.Fprintf(w, "   due: %s\n", due)

	case model.ResultTypeMemory:
		m := res.Memory
		fmt.Fprintf(w, "%d. [%.3f] %s\n", n, m.FinalScore, m.Memory.Content)
		fmt.Fprintf(w, "   semantic=%.2f entity=%.2f temporal=%.2f keyword=%.2f importance=%.2fx\n",
			m.Scores.Semantic, m.Scores.Entity, m.Scores.Temporal, m.Scores.Keyword, m.Scores.Importance)
	}
}
