package tool

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

var errToolNotFound = goerr.New("tool not found")

// Registry maps function-call names to tools for an ask session
type Registry struct {
	byName []namedTool
	all    []Tool
}

type namedTool struct {
	name string
	tool Tool
}

// New creates a new tool registry with the given tools
func New(tools ...Tool) *Registry {
	r := &Registry{all: tools}

	for _, t := range tools {
		spec := t.Spec()
		if spec == nil {
			continue
		}
		for _, fd := range spec.FunctionDeclarations {
			r.byName = append(r.byName, namedTool{name: fd.Name, tool: t})
		}
	}

	return r
}

// Specs returns all tool specifications for Gemini function calling
func (r *Registry) Specs() []*genai.Tool {
	var specs []*genai.Tool
	for _, t := range r.all {
		if spec := t.Spec(); spec != nil {
			specs = append(specs, spec)
		}
	}
	return specs
}

// Prompts returns all tool prompts concatenated
func (r *Registry) Prompts(ctx context.Context) string {
	var prompts []string
	for _, t := range r.all {
		if prompt := t.Prompt(ctx); prompt != "" {
			prompts = append(prompts, prompt)
		}
	}
	return strings.Join(prompts, "\n\n")
}

// Execute runs the tool registered for the function call's name
func (r *Registry) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	for _, nt := range r.byName {
		if nt.name == fc.Name {
			return nt.tool.Execute(ctx, fc)
		}
	}
	return nil, goerr.Wrap(errToolNotFound, "", goerr.V("name", fc.Name))
}
