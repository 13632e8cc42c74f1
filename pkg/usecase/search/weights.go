package search

import (
	"math"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

var ErrInvalidWeights = goerr.New("scoring weights must sum to 1.0")

// Weights configures how the four scoring dimensions combine into a final
// score. It is injected into the Scorer so alternative weightings can be
// tried without a code change.
type Weights struct {
	Semantic float64 `yaml:"semantic"`
	Entity   float64 `yaml:"entity"`
	Temporal float64 `yaml:"temporal"`
	Keyword  float64 `yaml:"keyword"`
}

// DefaultWeights is the semantic-dominant configuration tuned against
// disambiguation scenarios
func DefaultWeights() Weights {
	return Weights{
		Semantic: 0.6,
		Entity:   0.2,
		Temporal: 0.15,
		Keyword:  0.05,
	}
}

// Validate checks that every weight is non-negative and the sum is 1.0
func (w Weights) Validate() error {
	if w.Semantic < 0 || w.Entity < 0 || w.Temporal < 0 || w.Keyword < 0 {
		return goerr.Wrap(ErrInvalidWeights, "negative weight", goerr.V("weights", w))
	}

	sum := w.Semantic + w.Entity + w.Temporal + w.Keyword
	if math.Abs(sum-1.0) > 1e-9 {
		return goerr.Wrap(ErrInvalidWeights, "", goerr.V("sum", sum), goerr.V("weights", w))
	}

	return nil
}

// LoadWeights reads a weight configuration from a YAML file. Fields omitted
// in the file fall back to the default value for that dimension.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, goerr.Wrap(err, "failed to read weights file", goerr.V("path", path))
	}

	w := DefaultWeights()
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, goerr.Wrap(err, "failed to parse weights file", goerr.V("path", path))
	}

	if err := w.Validate(); err != nil {
		return Weights{}, err
	}

	return w, nil
}
