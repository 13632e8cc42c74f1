package ingest

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/csfalcao/magis/pkg/adapter"
	"github.com/csfalcao/magis/pkg/model"
	"github.com/csfalcao/magis/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

//go:embed prompt/classify.md
var classifyPromptRaw string

// Classifier tags content as PROFILE, MEMORY or EXPERIENCE before storage,
// returning a confidence in [0,1]
type Classifier interface {
	Classify(ctx context.Context, content string) (model.Classification, float64, error)
}

// GeminiClassifier is the LLM-backed primary classifier
type GeminiClassifier struct {
	gemini adapter.Gemini
}

// NewGeminiClassifier creates the LLM-backed classifier
func NewGeminiClassifier(gemini adapter.Gemini) *GeminiClassifier {
	return &GeminiClassifier{gemini: gemini}
}

type classifyResponse struct {
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
}

func (c *GeminiClassifier) Classify(ctx context.Context, content string) (model.Classification, float64, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(classifyPromptRaw+"\n\n"+content, genai.RoleUser),
	}

	resp, err := c.gemini.GenerateContent(ctx, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", 0, goerr.Wrap(err, "failed to classify content")
	}

	text := responseText(resp)
	if text == "" {
		return "", 0, goerr.New("empty classification response")
	}

	var parsed classifyResponse
	if err := json.Unmarshal([]byte(jsonBlock(text)), &parsed); err != nil {
		return "", 0, goerr.Wrap(err, "failed to parse classification response", goerr.V("response", text))
	}

	classification := model.Classification(strings.ToUpper(parsed.Classification))
	if err := classification.Validate(); err != nil {
		return "", 0, err
	}

	return classification, parsed.Confidence, nil
}

// Indicator word lists for the heuristic fallback. Voting is by containment
// count; the class with the most hits wins.
var (
	profileIndicators = []string{
		"my name", "i am ", "i live", "i work at", "my birthday", "my email",
		"my phone", "i prefer", "i like", "i hate", "allergic", "my wife",
		"my husband", "my job",
	}
	experienceIndicators = []string{
		"meeting", "appointment", "dinner", "lunch", "went to", "visited",
		"tomorrow", "tonight", "next week", "last night", "yesterday",
		"party", "trip", "concert", "flight",
	}
	memoryIndicators = []string{
		"remember", "note that", "don't forget", "is located", "recipe",
		"the code", "wifi password", "address is",
	}
)

// KeywordClassifier is the heuristic fallback: indicator word-lists voting
// across the three classes. It never returns an error, so classification can
// never block storage of a memory.
type KeywordClassifier struct{}

// NewKeywordClassifier creates the heuristic fallback classifier
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Classify(ctx context.Context, content string) (model.Classification, float64, error) {
	lower := strings.ToLower(content)

	count := func(indicators []string) int {
		n := 0
		for _, ind := range indicators {
			if strings.Contains(lower, ind) {
				n++
			}
		}
		return n
	}

	profile := count(profileIndicators)
	experience := count(experienceIndicators)
	memory := count(memoryIndicators)
	total := profile + experience + memory

	if total == 0 {
		// Nothing matched; MEMORY is the safe default for plain facts
		return model.ClassMemory, 0.25, nil
	}

	switch {
	case experience >= profile && experience >= memory:
		return model.ClassExperience, float64(experience) / float64(total), nil
	case profile >= memory:
		return model.ClassProfile, float64(profile) / float64(total), nil
	default:
		return model.ClassMemory, float64(memory) / float64(total), nil
	}
}

// minPrimaryConfidence is the confidence below which the primary
// classification is discarded in favor of the fallback
const minPrimaryConfidence = 0.5

// FallbackClassifier runs the primary classifier and switches to the
// fallback when the primary fails or is not confident enough
type FallbackClassifier struct {
	primary  Classifier
	fallback Classifier
}

// NewFallbackClassifier combines a primary and a fallback classifier
func NewFallbackClassifier(primary, fallback Classifier) *FallbackClassifier {
	return &FallbackClassifier{primary: primary, fallback: fallback}
}

func (c *FallbackClassifier) Classify(ctx context.Context, content string) (model.Classification, float64, error) {
	classification, confidence, err := c.primary.Classify(ctx, content)
	if err == nil && confidence >= minPrimaryConfidence {
		return classification, confidence, nil
	}

	if err != nil {
		logging.From(ctx).Warn("primary classifier failed, using fallback", "error", err)
	} else {
		logging.From(ctx).Debug("primary classification below confidence floor, using fallback",
			"classification", classification, "confidence", confidence)
	}

	return c.fallback.Classify(ctx, content)
}
