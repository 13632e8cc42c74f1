package memorytool_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"google.golang.org/genai"

	"github.com/csfalcao/magis/pkg/model"
	"github.com/csfalcao/magis/pkg/repository"
	"github.com/csfalcao/magis/pkg/tool/memorytool"
	"github.com/csfalcao/magis/pkg/usecase/search"
)

type fixedGemini struct{}

func (fixedGemini) Embedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (fixedGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return &genai.GenerateContentResponse{}, nil
}

func setupRecall(t *testing.T) (*memorytool.Recall, repository.Repository) {
	t.Helper()
	repo := repository.NewMemory()
	uc, err := search.New(repo, fixedGemini{}, search.DefaultWeights())
	gt.NoError(t, err)
	return memorytool.NewRecall(uc, "alice"), repo
}

func seedMemory(t *testing.T, repo repository.Repository, owner, content string) {
	t.Helper()
	m := &model.Memory{
		ID:             model.NewMemoryID(),
		OwnerID:        owner,
		Content:        content,
		Embedding:      []float32{1, 0},
		Classification: model.ClassMemory,
		Importance:     5,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
		Active:         true,
	}
	gt.NoError(t, repo.PutMemory(context.Background(), m))
}

func TestRecallSpec(t *testing.T) {
	recall, _ := setupRecall(t)

	spec := recall.Spec()
	gt.V(t, len(spec.FunctionDeclarations)).Equal(2)
	gt.Equal(t, spec.FunctionDeclarations[0].Name, "recall")
	gt.Equal(t, spec.FunctionDeclarations[1].Name, "search_memories")
}

func TestRecallExecute(t *testing.T) {
	recall, repo := setupRecall(t)
	seedMemory(t, repo, "alice", "I love hiking in the mountains")

	resp, err := recall.Execute(context.Background(), genai.FunctionCall{
		Name: "recall",
		Args: map[string]any{"query": "hiking mountains"},
	})
	gt.NoError(t, err)
	gt.V(t, resp).NotNil()

	results := gt.Cast[[]map[string]any](t, resp.Response["results"])
	gt.A(t, results).Length(1)
	gt.V(t, results[0]["type"]).Equal("memory")
	gt.V(t, results[0]["content"]).Equal("I love hiking in the mountains")
}

func TestRecallExecuteScoredSearch(t *testing.T) {
	recall, repo := setupRecall(t)
	seedMemory(t, repo, "alice", "I love hiking in the mountains")

	resp, err := recall.Execute(context.Background(), genai.FunctionCall{
		Name: "search_memories",
		Args: map[string]any{"query": "hiking mountains"},
	})
	gt.NoError(t, err)

	results := gt.Cast[[]map[string]any](t, resp.Response["results"])
	gt.A(t, results).Length(1)
	scores := gt.Cast[map[string]any](t, results[0]["scores"])
	gt.V(t, scores["semantic"]).Equal(1.0)
}

func TestRecallExecuteRequiresQuery(t *testing.T) {
	recall, _ := setupRecall(t)

	_, err := recall.Execute(context.Background(), genai.FunctionCall{
		Name: "recall",
		Args: map[string]any{},
	})
	gt.Error(t, err)
}

func TestRecallOwnerIsFixed(t *testing.T) {
	recall, repo := setupRecall(t)
	seedMemory(t, repo, "bob", "bob's secret")

	// The session owner is alice; bob's memories stay invisible regardless
	// of what the model sends
	resp, err := recall.Execute(context.Background(), genai.FunctionCall{
		Name: "recall",
		Args: map[string]any{"query": "bob's secret"},
	})
	gt.NoError(t, err)

	results := gt.Cast[[]map[string]any](t, resp.Response["results"])
	gt.A(t, results).Length(0)
}
