package search

import (
	"context"
	"time"

	"github.com/csfalcao/magis/pkg/adapter"
	"github.com/csfalcao/magis/pkg/model"
	"github.com/csfalcao/magis/pkg/repository"
	"github.com/csfalcao/magis/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// UseCase provides memory retrieval over a user's accumulated memory store
type UseCase struct {
	repo   repository.Repository
	gemini adapter.Gemini
	scorer *Scorer
	now    func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithClock overrides the time source, used by tests to pin recency decay
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a search UseCase with the given weight configuration
func New(repo repository.Repository, gemini adapter.Gemini, weights Weights, opts ...Option) (*UseCase, error) {
	scorer, err := NewScorer(weights)
	if err != nil {
		return nil, err
	}

	uc := &UseCase{
		repo:   repo,
		gemini: gemini,
		scorer: scorer,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc, nil
}

// Search scores the owner's active memories against the query and returns
// the ranked results with their per-dimension score breakdown. The query is
// embedded once per call; if the embedding service fails after one retry the
// search proceeds without the semantic dimension rather than failing.
func (u *UseCase) Search(ctx context.Context, ownerID string, query model.SearchQuery) ([]*model.ScoredMemory, error) {
	if ownerID == "" {
		return nil, goerr.New("owner ID is required")
	}
	query = query.Normalize()

	embedding := u.embedQuery(ctx, query.Text)

	memories, err := u.repo.ListActiveMemories(ctx, ownerID, query.Context)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memories", goerr.V("owner_id", ownerID))
	}

	q := NewQuery(query.Text, embedding)
	now := u.now()

	scored := make([]*model.ScoredMemory, 0, len(memories))
	for _, m := range memories {
		scored = append(scored, u.scorer.Score(q, m, now))
	}

	return Rank(scored, query.Threshold, query.Limit), nil
}

// SearchTasksOrMemories is the hybrid search path. Scheduling-style queries
// consult the task store first; one or more task hits short-circuit the
// memory scoring pipeline entirely. Everything else (including task queries
// with no task hits) falls through to Search.
func (u *UseCase) SearchTasksOrMemories(ctx context.Context, ownerID string, query model.SearchQuery) ([]*model.SearchResult, error) {
	if ownerID == "" {
		return nil, goerr.New("owner ID is required")
	}
	query = query.Normalize()

	if isTaskQuery(query.Text) {
		tasks, err := u.repo.SearchTasks(ctx, ownerID, query.Text, eventTags)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to search tasks", goerr.V("owner_id", ownerID))
		}

		tasks = filterTasksByParticipant(tasks, extractParticipant(query.Text))
		if len(tasks) > 0 {
			if len(tasks) > query.Limit {
				tasks = tasks[:query.Limit]
			}
			results := make([]*model.SearchResult, 0, len(tasks))
			for _, t := range tasks {
				results = append(results, &model.SearchResult{Type: model.ResultTypeTask, Task: t})
			}
			return results, nil
		}
	}

	memories, err := u.Search(ctx, ownerID, query)
	if err != nil {
		return nil, err
	}

	results := make([]*model.SearchResult, 0, len(memories))
	for _, m := range memories {
		results = append(results, &model.SearchResult{Type: model.ResultTypeMemory, Memory: m})
	}
	return results, nil
}

// embedQuery generates the query embedding with a single retry. On repeated
// failure it returns nil and the search runs with semantic score 0 for every
// candidate; the degradation is logged, never silent.
func (u *UseCase) embedQuery(ctx context.Context, text string) []float32 {
	logger := logging.From(ctx)

	embedding, err := u.gemini.Embedding(ctx, text)
	if err == nil {
		return embedding
	}
	logger.Warn("query embedding failed, retrying once", "error", err)

	embedding, err = u.gemini.Embedding(ctx, text)
	if err == nil {
		return embedding
	}
	logger.Warn("query embedding failed twice, searching without semantic signal", "error", err)

	return nil
}
