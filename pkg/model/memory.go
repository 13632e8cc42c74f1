package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidClassification = goerr.New("invalid classification")
	ErrInvalidImportance     = goerr.New("importance must be between 1 and 10")
)

type MemoryID string

// NewMemoryID generates a new unique MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

// Classification categorizes what kind of information a memory holds.
// It is assigned once at ingestion and never mutated by the search path.
type Classification string

const (
	// ClassProfile is long-lived personal data (name, birthday, preferences)
	ClassProfile Classification = "PROFILE"
	// ClassMemory is general factual information worth recalling
	ClassMemory Classification = "MEMORY"
	// ClassExperience is an event the user did or will do (dinners, meetings)
	ClassExperience Classification = "EXPERIENCE"
)

// Validate checks if the classification is one of the known values
func (c Classification) Validate() error {
	switch c {
	case ClassProfile, ClassMemory, ClassExperience:
		return nil
	default:
		return goerr.Wrap(ErrInvalidClassification, "unknown value", goerr.V("classification", c))
	}
}

// Entity is a structured entity extracted from memory content
type Entity struct {
	Name     string `json:"name"`
	Relation string `json:"relation,omitempty"`
}

// Entities groups extracted entities by kind
type Entities struct {
	People        []Entity `json:"people,omitempty"`
	Organizations []Entity `json:"organizations,omitempty"`
	Locations     []Entity `json:"locations,omitempty"`
}

// All flattens the entity groups into a single list
func (e Entities) All() []Entity {
	out := make([]Entity, 0, len(e.People)+len(e.Organizations)+len(e.Locations))
	out = append(out, e.People...)
	out = append(out, e.Organizations...)
	out = append(out, e.Locations...)
	return out
}

// ResolvedDate is a concrete date (or range) extracted from memory content,
// with a confidence assigned by the resolver
type ResolvedDate struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end,omitempty"`
	Confidence float64   `json:"confidence"`
}

// Memory represents one stored memory of a user. Content is immutable once
// classified; only Importance and Active may change after creation.
type Memory struct {
	ID             MemoryID
	OwnerID        string
	Content        string
	Summary        string
	Embedding      []float32
	Classification Classification
	Entities       Entities
	Keywords       []string
	ResolvedDates  []ResolvedDate
	Importance     int
	Context        string

	CreatedAt time.Time
	UpdatedAt time.Time
	Active    bool
}

// Validate checks structural invariants before storage
func (m *Memory) Validate() error {
	if m.ID == "" {
		return goerr.New("memory ID is empty")
	}
	if m.OwnerID == "" {
		return goerr.New("memory owner ID is empty")
	}
	if m.Content == "" {
		return goerr.New("memory content is empty")
	}
	if err := m.Classification.Validate(); err != nil {
		return err
	}
	if m.Importance < 1 || m.Importance > 10 {
		return goerr.Wrap(ErrInvalidImportance, "", goerr.V("importance", m.Importance))
	}
	return nil
}

// SearchText returns the lowercased concatenation of every text surface of
// the memory: content, summary, keywords and entity names. Keyword scoring
// matches query tokens against this string.
func (m *Memory) SearchText() string {
	var sb strings.Builder
	sb.WriteString(m.Content)
	sb.WriteByte(' ')
	sb.WriteString(m.Summary)
	for _, kw := range m.Keywords {
		sb.WriteByte(' ')
		sb.WriteString(kw)
	}
	for _, e := range m.Entities.All() {
		sb.WriteByte(' ')
		sb.WriteString(e.Name)
		if e.Relation != "" {
			sb.WriteByte(' ')
			sb.WriteString(e.Relation)
		}
	}
	return strings.ToLower(sb.String())
}
