package repository

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/csfalcao/magis/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionMemories = "memories"
	collectionTasks    = "tasks"
)

// Firestore implements Repository using Cloud Firestore
type Firestore struct {
	client *firestore.Client
}

// New creates a new Firestore repository
func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	return r.client.Close()
}

// memoryDoc is the Firestore representation of model.Memory. Embedding is
// stored as a Firestore vector value so the field stays queryable by the
// native vector index if one is ever added.
type memoryDoc struct {
	OwnerID        string               `firestore:"owner_id"`
	Content        string               `firestore:"content"`
	Summary        string               `firestore:"summary,omitempty"`
	Embedding      firestore.Vector32   `firestore:"embedding,omitempty"`
	Classification string               `firestore:"classification"`
	Entities       model.Entities       `firestore:"entities,omitempty"`
	Keywords       []string             `firestore:"keywords,omitempty"`
	ResolvedDates  []model.ResolvedDate `firestore:"resolved_dates,omitempty"`
	Importance     int                  `firestore:"importance"`
	Context        string               `firestore:"context,omitempty"`
	CreatedAt      time.Time            `firestore:"created_at"`
	UpdatedAt      time.Time            `firestore:"updated_at"`
	Active         bool                 `firestore:"active"`
}

func toMemoryDoc(m *model.Memory) *memoryDoc {
	return &memoryDoc{
		OwnerID:        m.OwnerID,
		Content:        m.Content,
		Summary:        m.Summary,
		Embedding:      firestore.Vector32(m.Embedding),
		Classification: string(m.Classification),
		Entities:       m.Entities,
		Keywords:       m.Keywords,
		ResolvedDates:  m.ResolvedDates,
		Importance:     m.Importance,
		Context:        m.Context,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		Active:         m.Active,
	}
}

func (d *memoryDoc) toModel(id model.MemoryID) *model.Memory {
	return &model.Memory{
		ID:             id,
		OwnerID:        d.OwnerID,
		Content:        d.Content,
		Summary:        d.Summary,
		Embedding:      []float32(d.Embedding),
		Classification: model.Classification(d.Classification),
		Entities:       d.Entities,
		Keywords:       d.Keywords,
		ResolvedDates:  d.ResolvedDates,
		Importance:     d.Importance,
		Context:        d.Context,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		Active:         d.Active,
	}
}

type taskDoc struct {
	OwnerID     string     `firestore:"owner_id"`
	Title       string     `firestore:"title"`
	Description string     `firestore:"description,omitempty"`
	Tags        []string   `firestore:"tags,omitempty"`
	DueDate     *time.Time `firestore:"due_date,omitempty"`
	Context     string     `firestore:"context,omitempty"`
	CreatedAt   time.Time  `firestore:"created_at"`
	Active      bool       `firestore:"active"`
}

func toTaskDoc(t *model.Task) *taskDoc {
	return &taskDoc{
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Tags:        t.Tags,
		DueDate:     t.DueDate,
		Context:     t.Context,
		CreatedAt:   t.CreatedAt,
		Active:      t.Active,
	}
}

func (d *taskDoc) toModel(id model.TaskID) *model.Task {
	return &model.Task{
		ID:          id,
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Description: d.Description,
		Tags:        d.Tags,
		DueDate:     d.DueDate,
		Context:     d.Context,
		CreatedAt:   d.CreatedAt,
		Active:      d.Active,
	}
}

func (r *Firestore) PutMemory(ctx context.Context, memory *model.Memory) error {
	if err := memory.Validate(); err != nil {
		return goerr.Wrap(err, "invalid memory")
	}

	doc := r.client.Collection(collectionMemories).Doc(string(memory.ID))
	if _, err := doc.Set(ctx, toMemoryDoc(memory)); err != nil {
		return goerr.Wrap(err, "failed to put memory", goerr.V("memory_id", memory.ID))
	}

	return nil
}

func (r *Firestore) GetMemory(ctx context.Context, ownerID string, id model.MemoryID) (*model.Memory, error) {
	snap, err := r.client.Collection(collectionMemories).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrMemoryNotFound, "", goerr.V("memory_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get memory", goerr.V("memory_id", id))
	}

	var doc memoryDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode memory", goerr.V("memory_id", id))
	}

	// A record of another owner is reported as missing, never leaked
	if doc.OwnerID != ownerID {
		return nil, goerr.Wrap(ErrMemoryNotFound, "", goerr.V("memory_id", id))
	}

	return doc.toModel(id), nil
}

func (r *Firestore) ListActiveMemories(ctx context.Context, ownerID string, contextFilter string) ([]*model.Memory, error) {
	// Owner scoping is part of the query itself, not post-filtering
	q := r.client.Collection(collectionMemories).
		Where("owner_id", "==", ownerID).
		Where("active", "==", true)
	if contextFilter != "" {
		q = q.Where("context", "==", contextFilter)
	}
	q = q.OrderBy("created_at", firestore.Desc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var memories []*model.Memory
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memories", goerr.V("owner_id", ownerID))
		}

		var doc memoryDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode memory", goerr.V("doc_id", snap.Ref.ID))
		}
		memories = append(memories, doc.toModel(model.MemoryID(snap.Ref.ID)))
	}

	return memories, nil
}

func (r *Firestore) PatchMemory(ctx context.Context, ownerID string, id model.MemoryID, patch MemoryPatch) error {
	if patch.Empty() {
		return goerr.Wrap(ErrEmptyPatch, "", goerr.V("memory_id", id))
	}
	if patch.Importance != nil && (*patch.Importance < 1 || *patch.Importance > 10) {
		return goerr.Wrap(model.ErrInvalidImportance, "", goerr.V("importance", *patch.Importance))
	}

	// Verify ownership before any write
	if _, err := r.GetMemory(ctx, ownerID, id); err != nil {
		return err
	}

	updates := []firestore.Update{
		{Path: "updated_at", Value: time.Now()},
	}
	if patch.Importance != nil {
		updates = append(updates, firestore.Update{Path: "importance", Value: *patch.Importance})
	}
	if patch.Active != nil {
		updates = append(updates, firestore.Update{Path: "active", Value: *patch.Active})
	}

	doc := r.client.Collection(collectionMemories).Doc(string(id))
	if _, err := doc.Update(ctx, updates); err != nil {
		return goerr.Wrap(err, "failed to patch memory", goerr.V("memory_id", id))
	}

	return nil
}

func (r *Firestore) PutTask(ctx context.Context, task *model.Task) error {
	if err := task.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task")
	}

	doc := r.client.Collection(collectionTasks).Doc(string(task.ID))
	if _, err := doc.Set(ctx, toTaskDoc(task)); err != nil {
		return goerr.Wrap(err, "failed to put task", goerr.V("task_id", task.ID))
	}

	return nil
}

func (r *Firestore) SearchTasks(ctx context.Context, ownerID string, queryText string, tagFilters []string) ([]*model.Task, error) {
	q := r.client.Collection(collectionTasks).
		Where("owner_id", "==", ownerID).
		Where("active", "==", true)
	if len(tagFilters) > 0 {
		q = q.Where("tags", "array-contains-any", tagFilters)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var tasks []*model.Task
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tasks", goerr.V("owner_id", ownerID))
		}

		var doc taskDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode task", goerr.V("doc_id", snap.Ref.ID))
		}

		task := doc.toModel(model.TaskID(snap.Ref.ID))
		if matchTaskText(task, queryText) {
			tasks = append(tasks, task)
		}
	}

	return tasks, nil
}

// matchTaskText reports whether any word of the query appears in the task's
// title, description or tags. Firestore has no text search, so text matching
// happens after the owner-scoped fetch.
func matchTaskText(task *model.Task, queryText string) bool {
	if queryText == "" {
		return true
	}

	surface := strings.ToLower(task.Title + " " + task.Description + " " + strings.Join(task.Tags, " "))
	for _, word := range strings.Fields(strings.ToLower(queryText)) {
		if len(word) <= 2 {
			continue
		}
		if strings.Contains(surface, word) {
			return true
		}
	}

	return false
}
