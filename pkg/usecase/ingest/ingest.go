package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/csfalcao/magis/pkg/adapter"
	"github.com/csfalcao/magis/pkg/model"
	"github.com/csfalcao/magis/pkg/repository"
	"github.com/csfalcao/magis/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const defaultImportance = 5

// UseCase runs the ingestion path: classify, annotate, embed, deduplicate,
// store. Annotation and embedding failures degrade, they never block storage
// of the raw memory.
type UseCase struct {
	repo       repository.Repository
	gemini     adapter.Gemini
	classifier Classifier
	annotator  Annotator
	storage    adapter.Storage
	now        func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithClassifier overrides the default Gemini-with-keyword-fallback chain
func WithClassifier(c Classifier) Option {
	return func(uc *UseCase) {
		uc.classifier = c
	}
}

// WithAnnotator overrides the default Gemini annotator
func WithAnnotator(a Annotator) Option {
	return func(uc *UseCase) {
		uc.annotator = a
	}
}

// WithStorage enables raw transcript archival
func WithStorage(s adapter.Storage) Option {
	return func(uc *UseCase) {
		uc.storage = s
	}
}

// WithClock overrides the time source for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates an ingestion UseCase
func New(repo repository.Repository, gemini adapter.Gemini, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:   repo,
		gemini: gemini,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.classifier == nil {
		uc.classifier = NewFallbackClassifier(NewGeminiClassifier(gemini), NewKeywordClassifier())
	}
	if uc.annotator == nil {
		uc.annotator = NewGeminiAnnotator(gemini)
	}

	return uc
}

// Input describes a memory to ingest
type Input struct {
	OwnerID    string
	Content    string
	Context    string
	Importance int // 0 means default
}

// Ingest runs the full ingestion path and returns the stored memory. When
// the content near-duplicates an existing experience, the existing memory is
// returned and nothing new is stored.
func (u *UseCase) Ingest(ctx context.Context, input Input) (*model.Memory, error) {
	logger := logging.From(ctx)

	if input.OwnerID == "" {
		return nil, goerr.New("owner ID is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, goerr.New("content is empty")
	}
	if input.Importance == 0 {
		input.Importance = defaultImportance
	}
	if input.Importance < 1 || input.Importance > 10 {
		return nil, goerr.Wrap(model.ErrInvalidImportance, "", goerr.V("importance", input.Importance))
	}

	now := u.now()

	classification, confidence, err := u.classifier.Classify(ctx, input.Content)
	if err != nil {
		// The fallback chain should absorb failures; an error here means
		// even the heuristic path broke, so fall back to the safe default
		logger.Warn("classification failed entirely, defaulting to MEMORY", "error", err)
		classification = model.ClassMemory
		confidence = 0
	}

	annotation, err := u.annotator.Annotate(ctx, input.Content)
	if err != nil {
		logger.Warn("annotation failed, using heuristic keywords", "error", err)
		annotation = &Annotation{Keywords: HeuristicKeywords(input.Content)}
	}

	// Temporal backfill: a memory carrying only temporal keywords would
	// otherwise never score on the temporal dimension
	if len(annotation.ResolvedDates) == 0 {
		annotation.ResolvedDates = ResolveTemporalKeywords(annotation.Keywords, now)
	}

	embedding, err := u.gemini.Embedding(ctx, input.Content)
	if err != nil {
		logger.Warn("embedding failed, storing memory without semantic vector", "error", err)
		embedding = nil
	}

	memory := &model.Memory{
		ID:             model.NewMemoryID(),
		OwnerID:        input.OwnerID,
		Content:        input.Content,
		Summary:        annotation.Summary,
		Embedding:      embedding,
		Classification: classification,
		Entities:       annotation.Entities,
		Keywords:       annotation.Keywords,
		ResolvedDates:  annotation.ResolvedDates,
		Importance:     input.Importance,
		Context:        input.Context,
		CreatedAt:      now,
		UpdatedAt:      now,
		Active:         true,
	}

	if memory.Classification == model.ClassExperience {
		if existing, err := u.findDuplicate(ctx, memory); err != nil {
			return nil, err
		} else if existing != nil {
			logger.Info("near-duplicate experience detected, keeping existing memory",
				"existing_id", existing.ID, "owner_id", input.OwnerID)
			return existing, nil
		}
	}

	if err := u.repo.PutMemory(ctx, memory); err != nil {
		return nil, goerr.Wrap(err, "failed to store memory")
	}

	logger.Info("memory stored", "memory_id", memory.ID,
		"classification", memory.Classification, "confidence", confidence,
		"keywords", len(memory.Keywords), "dates", len(memory.ResolvedDates))

	u.archiveTranscript(ctx, memory)
	u.maybeCreateTask(ctx, memory)

	return memory, nil
}

// findDuplicate scans the owner's active memories in the same context for a
// near-duplicate of the candidate
func (u *UseCase) findDuplicate(ctx context.Context, candidate *model.Memory) (*model.Memory, error) {
	memories, err := u.repo.ListActiveMemories(ctx, candidate.OwnerID, candidate.Context)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memories for duplicate check")
	}

	for _, m := range memories {
		if isNearDuplicate(candidate, m) {
			return m, nil
		}
	}
	return nil, nil
}

// archiveTranscript writes the raw content to the transcript archive when
// one is configured. Archive failures are logged, never fatal.
func (u *UseCase) archiveTranscript(ctx context.Context, memory *model.Memory) {
	if u.storage == nil {
		return
	}
	logger := logging.From(ctx)

	key := fmt.Sprintf("transcripts/%s/%s.txt", memory.OwnerID, memory.ID)
	w, err := u.storage.Put(ctx, key)
	if err != nil {
		logger.Warn("failed to open transcript archive", "key", key, "error", err)
		return
	}

	if _, err := w.Write([]byte(memory.Content)); err != nil {
		logger.Warn("failed to write transcript", "key", key, "error", err)
	}
	if err := w.Close(); err != nil {
		logger.Warn("failed to close transcript", "key", key, "error", err)
	}
}

// eventWords decide which tag a detected future event gets
var eventWords = []string{"meeting", "appointment"}

// maybeCreateTask creates a structured task from an experience that mentions
// a meeting or appointment with a future resolved date. These tasks feed the
// hybrid search path, which prefers them over freeform memory scoring for
// scheduling questions. Task creation failure loses precision, not data, so
// it only logs.
func (u *UseCase) maybeCreateTask(ctx context.Context, memory *model.Memory) {
	if memory.Classification != model.ClassExperience {
		return
	}

	lower := strings.ToLower(memory.Content)
	var tag string
	for _, w := range eventWords {
		if strings.Contains(lower, w) {
			tag = w
			break
		}
	}
	if tag == "" {
		return
	}

	due := futureDate(memory.ResolvedDates, u.now())
	if due == nil {
		return
	}

	title := memory.Summary
	if title == "" {
		title = truncate(memory.Content, 80)
	}

	task := &model.Task{
		ID:          model.NewTaskID(),
		OwnerID:     memory.OwnerID,
		Title:       title,
		Description: memory.Content,
		Tags:        append([]string{tag}, memory.Keywords...),
		DueDate:     due,
		Context:     memory.Context,
		CreatedAt:   u.now(),
		Active:      true,
	}

	if err := u.repo.PutTask(ctx, task); err != nil {
		logging.From(ctx).Warn("failed to create task from experience",
			"memory_id", memory.ID, "error", err)
		return
	}

	logging.From(ctx).Info("task created from experience",
		"task_id", task.ID, "due", due.Format("2006-01-02"))
}

// futureDate returns the earliest resolved date not in the past, if any
func futureDate(dates []model.ResolvedDate, now time.Time) *time.Time {
	var earliest *time.Time
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, d := range dates {
		if d.Start.Before(today) {
			continue
		}
		if earliest == nil || d.Start.Before(*earliest) {
			start := d.Start
			earliest = &start
		}
	}
	return earliest
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
