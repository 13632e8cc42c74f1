package tool

import (
	"context"

	"google.golang.org/genai"
)

// Tool represents a capability the assistant's LLM can call during an ask
// session, such as memory or task retrieval
type Tool interface {
	// Spec returns the tool specification for Gemini function calling
	Spec() *genai.Tool

	// Execute runs the tool with the given function call and returns the response
	Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error)

	// Prompt returns additional information to be added to the system prompt.
	// Returns empty string if no additional prompt is needed.
	Prompt(ctx context.Context) string
}
