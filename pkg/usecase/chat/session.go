package chat

import (
	"context"
	"strings"

	"github.com/csfalcao/magis/pkg/adapter"
	"github.com/csfalcao/magis/pkg/tool"
	"github.com/csfalcao/magis/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// maxToolIterations bounds the function-call loop per message
const maxToolIterations = 5

const systemPromptBase = "You are Magis, a personal assistant. Answer from the user's stored memories " +
	"and tasks retrieved through your tools. When retrieval returns nothing relevant, say so instead of inventing facts."

// Session manages an interactive ask session for one user. The LLM answers
// from retrieved memories via the tool registry's function calls.
type Session struct {
	gemini   adapter.Gemini
	registry *tool.Registry
	history  []*genai.Content
}

// NewInput contains parameters for creating an ask session
type NewInput struct {
	Gemini   adapter.Gemini
	Registry *tool.Registry
}

// New creates an ask session
func New(input NewInput) *Session {
	return &Session{
		gemini:   input.Gemini,
		registry: input.Registry,
	}
}

// Send submits one user message and returns the assistant's answer,
// resolving any tool calls the model makes along the way
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	logger := logging.From(ctx)

	systemPrompt := systemPromptBase
	if toolPrompt := s.registry.Prompts(ctx); toolPrompt != "" {
		systemPrompt += "\n\n" + toolPrompt
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
		Tools:             s.registry.Specs(),
	}

	s.history = append(s.history, genai.NewContentFromText(message, genai.RoleUser))

	for i := 0; i < maxToolIterations; i++ {
		resp, err := s.gemini.GenerateContent(ctx, s.history, config)
		if err != nil {
			return "", goerr.Wrap(err, "failed to generate response")
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", goerr.New("model returned no candidates")
		}
		content := resp.Candidates[0].Content
		s.history = append(s.history, content)

		var toolParts []*genai.Part
		for _, part := range content.Parts {
			if part.FunctionCall == nil {
				continue
			}

			logger.Debug("tool call", "name", part.FunctionCall.Name)
			funcResp, err := s.registry.Execute(ctx, *part.FunctionCall)
			if err != nil {
				// Surface the failure to the model so it can answer without
				// the tool instead of aborting the whole turn
				logger.Warn("tool execution failed", "name", part.FunctionCall.Name, "error", err)
				funcResp = &genai.FunctionResponse{
					ID:       part.FunctionCall.ID,
					Name:     part.FunctionCall.Name,
					Response: map[string]any{"error": err.Error()},
				}
			}
			toolParts = append(toolParts, &genai.Part{FunctionResponse: funcResp})
		}

		if len(toolParts) == 0 {
			var texts []string
			for _, part := range content.Parts {
				if part.Text != "" {
					texts = append(texts, part.Text)
				}
			}
			return strings.Join(texts, "\n"), nil
		}

		s.history = append(s.history, &genai.Content{
			Role:  genai.RoleUser,
			Parts: toolParts,
		})
	}

	return "", goerr.New("tool iteration limit reached", goerr.V("limit", maxToolIterations))
}
