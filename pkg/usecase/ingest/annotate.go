package ingest

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/csfalcao/magis/pkg/adapter"
	"github.com/csfalcao/magis/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

//go:embed prompt/annotate.md
var annotatePromptRaw string

// Annotation is the structured metadata the annotator extracts from raw
// content. Any field may be empty; retrieval degrades per dimension instead
// of failing.
type Annotation struct {
	Summary       string
	Entities      model.Entities
	Keywords      []string
	ResolvedDates []model.ResolvedDate
}

// Annotator extracts entities, keywords, dates and a summary from content
type Annotator interface {
	Annotate(ctx context.Context, content string) (*Annotation, error)
}

// GeminiAnnotator is the LLM-backed annotator
type GeminiAnnotator struct {
	gemini adapter.Gemini
}

// NewGeminiAnnotator creates the LLM-backed annotator
func NewGeminiAnnotator(gemini adapter.Gemini) *GeminiAnnotator {
	return &GeminiAnnotator{gemini: gemini}
}

type entityWire struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
}

type dateWire struct {
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Confidence float64 `json:"confidence"`
}

type annotationWire struct {
	Summary       string       `json:"summary"`
	Keywords      []string     `json:"keywords"`
	People        []entityWire `json:"people"`
	Organizations []entityWire `json:"organizations"`
	Locations     []entityWire `json:"locations"`
	Dates         []dateWire   `json:"dates"`
}

func (a *GeminiAnnotator) Annotate(ctx context.Context, content string) (*Annotation, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(annotatePromptRaw+"\n\n"+content, genai.RoleUser),
	}

	resp, err := a.gemini.GenerateContent(ctx, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to annotate content")
	}

	text := responseText(resp)
	if text == "" {
		return nil, goerr.New("empty annotation response")
	}

	var wire annotationWire
	if err := json.Unmarshal([]byte(jsonBlock(text)), &wire); err != nil {
		return nil, goerr.Wrap(err, "failed to parse annotation response", goerr.V("response", text))
	}

	return wire.toAnnotation(), nil
}

func (w *annotationWire) toAnnotation() *Annotation {
	ann := &Annotation{
		Summary:  w.Summary,
		Keywords: normalizeKeywords(w.Keywords),
		Entities: model.Entities{
			People:        toEntities(w.People),
			Organizations: toEntities(w.Organizations),
			Locations:     toEntities(w.Locations),
		},
	}

	for _, d := range w.Dates {
		start, ok := parseDate(d.Start)
		if !ok {
			continue
		}
		rd := model.ResolvedDate{Start: start, Confidence: d.Confidence}
		if end, ok := parseDate(d.End); ok {
			rd.End = end
		}
		ann.ResolvedDates = append(ann.ResolvedDates, rd)
	}

	return ann
}

func toEntities(wire []entityWire) []model.Entity {
	var out []model.Entity
	for _, e := range wire {
		if e.Name == "" {
			continue
		}
		out = append(out, model.Entity{Name: e.Name, Relation: e.Relation})
	}
	return out
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	var out []string
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// responseText extracts the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// jsonBlock strips markdown code fences that models sometimes wrap around
// JSON output
func jsonBlock(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "was": true, "are": true,
	"with": true, "that": true, "this": true, "have": true, "had": true,
	"his": true, "her": true, "our": true, "you": true, "your": true,
	"their": true, "will": true, "would": true, "about": true,
}

const maxHeuristicKeywords = 12

// HeuristicKeywords extracts fallback keywords from content when the
// annotator is unavailable: lowercased tokens of three or more characters,
// stopwords removed, deduplicated
func HeuristicKeywords(content string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, tok := range tokens {
		if len(tok) < 3 || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
		if len(out) >= maxHeuristicKeywords {
			break
		}
	}
	return out
}
