package ingest_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"

	"github.com/csfalcao/magis/pkg/usecase/ingest"
)

const annotationJSON = `{
	"summary": "Dinner with Sarah at Luigi's",
	"keywords": ["Dinner", "dinner", " sarah ", "luigi"],
	"people": [{"name": "Sarah", "relation": "friend"}, {"name": ""}],
	"locations": [{"name": "Luigi's", "relation": "restaurant"}],
	"dates": [
		{"start": "2026-08-29", "confidence": 0.9},
		{"start": "2026-08-29T19:00:00Z", "end": "2026-08-29T21:00:00Z", "confidence": 0.8},
		{"start": "not a date", "confidence": 0.5}
	]
}`

func TestGeminiAnnotator(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gt.V(t, config.ResponseMIMEType).Equal("application/json")
			return textResponse(annotationJSON), nil
		},
	}

	a := ingest.NewGeminiAnnotator(gemini)
	ann, err := a.Annotate(context.Background(), "Had dinner with Sarah at Luigi's last night")
	gt.NoError(t, err)

	gt.V(t, ann.Summary).Equal("Dinner with Sarah at Luigi's")

	// Keywords are lowercased, trimmed and deduplicated
	gt.A(t, ann.Keywords).Length(3)
	gt.V(t, ann.Keywords[0]).Equal("dinner")
	gt.V(t, ann.Keywords[1]).Equal("sarah")
	gt.V(t, ann.Keywords[2]).Equal("luigi")

	// Nameless entities are dropped
	gt.A(t, ann.Entities.People).Length(1)
	gt.V(t, ann.Entities.People[0].Relation).Equal("friend")
	gt.A(t, ann.Entities.Locations).Length(1)

	// Unparseable dates are skipped, both accepted formats survive
	gt.A(t, ann.ResolvedDates).Length(2)
	gt.V(t, ann.ResolvedDates[0].Start).Equal(time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC))
	gt.V(t, ann.ResolvedDates[1].End).Equal(time.Date(2026, 8, 29, 21, 0, 0, 0, time.UTC))
}

func TestGeminiAnnotatorFencedResponse(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse("```json\n" + annotationJSON + "\n```"), nil
		},
	}

	a := ingest.NewGeminiAnnotator(gemini)
	ann, err := a.Annotate(context.Background(), "Had dinner with Sarah")
	gt.NoError(t, err)
	gt.V(t, ann.Summary).Equal("Dinner with Sarah at Luigi's")
}

func TestGeminiAnnotatorGenerationError(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, goerr.New("model unavailable")
		},
	}

	a := ingest.NewGeminiAnnotator(gemini)
	_, err := a.Annotate(context.Background(), "anything")
	gt.Error(t, err)
}

func TestGeminiAnnotatorEmptyResponse(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		},
	}

	a := ingest.NewGeminiAnnotator(gemini)
	_, err := a.Annotate(context.Background(), "anything")
	gt.Error(t, err)
}

func TestHeuristicKeywords(t *testing.T) {
	keywords := ingest.HeuristicKeywords("The dinner with Sarah at Luigi's was great, the dinner really was")

	// Stopwords and short tokens out, duplicates collapsed, order preserved
	gt.V(t, keywords).Equal([]string{"dinner", "sarah", "luigi", "great", "really"})
}

func TestHeuristicKeywordsCap(t *testing.T) {
	keywords := ingest.HeuristicKeywords(
		"alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima mike november")
	gt.A(t, keywords).Length(12)
}
