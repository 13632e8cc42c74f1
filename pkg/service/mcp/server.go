package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/csfalcao/magis/pkg/model"
	"github.com/csfalcao/magis/pkg/usecase/ingest"
	"github.com/csfalcao/magis/pkg/usecase/search"
	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server exposes memory retrieval and ingestion over MCP stdio, so any MCP
// client (editor, chat frontend) can search and store the user's memories.
// One server instance serves exactly one owner.
type Server struct {
	search  *search.UseCase
	ingest  *ingest.UseCase
	ownerID string
}

// New creates an MCP server scoped to one owner
func New(searchUC *search.UseCase, ingestUC *ingest.UseCase, ownerID string) (*Server, error) {
	if ownerID == "" {
		return nil, goerr.New("owner ID is required")
	}

	return &Server{
		search:  searchUC,
		ingest:  ingestUC,
		ownerID: ownerID,
	}, nil
}

// Run serves MCP over stdio until the context is canceled
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "magis-memory",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name: "search_memories",
		Description: "Search the user's stored memories and scheduled events. " +
			"Scheduling questions are answered from structured tasks when available.",
	}, s.searchMemories)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remember",
		Description: "Store a new memory for the user. Classification and metadata extraction happen automatically.",
	}, s.remember)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "mcp server failed")
	}
	return nil
}

type searchParams struct {
	Query   string `json:"query" jsonschema:"Natural language query against the user's memories"`
	Context string `json:"context,omitempty" jsonschema:"Optional scope filter such as work or personal"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

func (s *Server) searchMemories(ctx context.Context, req *mcp.CallToolRequest, params *searchParams) (*mcp.CallToolResult, any, error) {
	if params.Query == "" {
		return nil, nil, goerr.New("query is required")
	}

	results, err := s.search.SearchTasksOrMemories(ctx, s.ownerID, model.SearchQuery{
		Text:    params.Query,
		Context: params.Context,
		Limit:   params.Limit,
	})
	if err != nil {
		return nil, nil, err
	}

	var text string
	if len(results) == 0 {
		text = "No matching memories found."
	} else {
		var lines []string
		for i, res := range results {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, formatResult(res)))
		}
		text = strings.Join(lines, "\n")
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

type rememberParams struct {
	Content    string `json:"content" jsonschema:"The statement to remember"`
	Context    string `json:"context,omitempty" jsonschema:"Optional scope such as work or personal"`
	Importance int    `json:"importance,omitempty" jsonschema:"Importance 1-10 (default 5)"`
}

func (s *Server) remember(ctx context.Context, req *mcp.CallToolRequest, params *rememberParams) (*mcp.CallToolResult, any, error) {
	memory, err := s.ingest.Ingest(ctx, ingest.Input{
		OwnerID:    s.ownerID,
		Content:    params.Content,
		Context:    params.Context,
		Importance: params.Importance,
	})
	if err != nil {
		return nil, nil, err
	}

	text := fmt.Sprintf("Stored as %s (id: %s)", memory.Classification, memory.ID)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

func formatResult(res *model.SearchResult) string {
	switch res.Type {
	case model.ResultTypeTask:
		due := "unscheduled"
		if res.Task.DueDate != nil {
			due = res.Task.DueDate.Format("2006-01-02")
		}
		return fmt.Sprintf("[task] %s (due %s)", res.Task.Title, due)

	case model.ResultTypeMemory:
		m := res.Memory
		return fmt.Sprintf("[memory %.2f] %s", m.FinalScore, m.Memory.Content)

	default:
		return "unknown result type"
	}
}
