package memorytool

import (
	"context"
	"encoding/json"

	"github.com/csfalcao/magis/pkg/model"
	"github.com/csfalcao/magis/pkg/usecase/search"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Recall exposes memory retrieval to the assistant LLM as function-calling
// tools. The owner is fixed at session start; the model can never pick whose
// memories it searches.
type Recall struct {
	search  *search.UseCase
	ownerID string
}

// NewRecall creates the recall toolset for one user's session
func NewRecall(uc *search.UseCase, ownerID string) *Recall {
	return &Recall{search: uc, ownerID: ownerID}
}

func (r *Recall) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name: "recall",
				Description: "Retrieve the user's relevant memories or scheduled events for a question. " +
					"Scheduling questions (meetings, appointments) are answered from structured tasks when available.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "Natural language question or topic to search for",
						},
						"context": {
							Type:        genai.TypeString,
							Description: `Optional scope filter such as "work", "personal" or "family"`,
						},
						"limit": {
							Type:        genai.TypeInteger,
							Description: "Max results (default: 10)",
						},
					},
					Required: []string{"query"},
				},
			},
			{
				Name: "search_memories",
				Description: "Score the user's memories against a query and return them with the per-dimension " +
					"score breakdown (semantic, entity, temporal, keyword). Use when ranking detail matters.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "Natural language question or topic to search for",
						},
						"context": {
							Type:        genai.TypeString,
							Description: `Optional scope filter such as "work", "personal" or "family"`,
						},
						"limit": {
							Type:        genai.TypeInteger,
							Description: "Max results (default: 10)",
						},
						"threshold": {
							Type:        genai.TypeNumber,
							Description: "Minimum combined score in [0,1] (default: 0.1)",
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}
}

func (r *Recall) Prompt(ctx context.Context) string {
	return "Use the recall tool whenever the user asks about their own life, plans, people they know " +
		"or anything they told you before. Do not guess from conversation history alone."
}

type recallInput struct {
	Query     string  `json:"query"`
	Context   string  `json:"context"`
	Limit     int     `json:"limit"`
	Threshold float64 `json:"threshold"`
}

func (r *Recall) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	var input recallInput
	if err := decodeArgs(fc.Args, &input); err != nil {
		return nil, err
	}
	if input.Query == "" {
		return nil, goerr.New("query is required", goerr.V("tool", fc.Name))
	}

	query := model.SearchQuery{
		Text:      input.Query,
		Context:   input.Context,
		Limit:     input.Limit,
		Threshold: input.Threshold,
	}

	var payload map[string]any
	switch fc.Name {
	case "recall":
		results, err := r.search.SearchTasksOrMemories(ctx, r.ownerID, query)
		if err != nil {
			return nil, err
		}
		payload = map[string]any{"results": formatResults(results)}

	case "search_memories":
		memories, err := r.search.Search(ctx, r.ownerID, query)
		if err != nil {
			return nil, err
		}
		items := make([]map[string]any, 0, len(memories))
		for _, m := range memories {
			items = append(items, formatScoredMemory(m))
		}
		payload = map[string]any{"results": items}

	default:
		return nil, goerr.New("unknown function", goerr.V("name", fc.Name))
	}

	return &genai.FunctionResponse{
		ID:       fc.ID,
		Name:     fc.Name,
		Response: payload,
	}, nil
}

func formatResults(results []*model.SearchResult) []map[string]any {
	items := make([]map[string]any, 0, len(results))
	for _, res := range results {
		switch res.Type {
		case model.ResultTypeTask:
			item := map[string]any{
				"type":        "task",
				"title":       res.Task.Title,
				"description": res.Task.Description,
				"tags":        res.Task.Tags,
			}
			if res.Task.DueDate != nil {
				item["due_date"] = res.Task.DueDate.Format("2006-01-02")
			}
			items = append(items, item)

		case model.ResultTypeMemory:
			items = append(items, formatScoredMemory(res.Memory))
		}
	}
	return items
}

func formatScoredMemory(m *model.ScoredMemory) map[string]any {
	return map[string]any{
		"type":           "memory",
		"content":        m.Memory.Content,
		"classification": string(m.Memory.Classification),
		"created_at":     m.Memory.CreatedAt.Format("2006-01-02"),
		"final_score":    m.FinalScore,
		"scores": map[string]any{
			"semantic":   m.Scores.Semantic,
			"entity":     m.Scores.Entity,
			"temporal":   m.Scores.Temporal,
			"keyword":    m.Scores.Keyword,
			"importance": m.Scores.Importance,
		},
	}
}

// decodeArgs converts the loosely typed function-call arguments into a
// typed input struct
func decodeArgs(args map[string]any, out any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return goerr.Wrap(err, "failed to encode function call args")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return goerr.Wrap(err, "failed to decode function call args")
	}
	return nil
}
