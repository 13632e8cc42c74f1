package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/csfalcao/magis/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Memory is an in-memory Repository used by tests and the --local CLI mode.
// It enforces the same owner scoping as the Firestore implementation so test
// code never exercises a looser contract than production.
type Memory struct {
	mu       sync.RWMutex
	memories map[model.MemoryID]*model.Memory
	tasks    map[model.TaskID]*model.Task
}

// NewMemory creates a new in-memory repository
func NewMemory() *Memory {
	return &Memory{
		memories: make(map[model.MemoryID]*model.Memory),
		tasks:    make(map[model.TaskID]*model.Task),
	}
}

func copyMemory(m *model.Memory) *model.Memory {
	c := *m
	return &c
}

func copyTask(t *model.Task) *model.Task {
	c := *t
	return &c
}

func (r *Memory) PutMemory(ctx context.Context, memory *model.Memory) error {
	if err := memory.Validate(); err != nil {
		return goerr.Wrap(err, "invalid memory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.memories[memory.ID] = copyMemory(memory)
	return nil
}

func (r *Memory) GetMemory(ctx context.Context, ownerID string, id model.MemoryID) (*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.memories[id]
	if !ok || m.OwnerID != ownerID {
		return nil, goerr.Wrap(ErrMemoryNotFound, "", goerr.V("memory_id", id))
	}
	return copyMemory(m), nil
}

func (r *Memory) ListActiveMemories(ctx context.Context, ownerID string, contextFilter string) ([]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var memories []*model.Memory
	for _, m := range r.memories {
		if m.OwnerID != ownerID || !m.Active {
			continue
		}
		if contextFilter != "" && m.Context != contextFilter {
			continue
		}
		memories = append(memories, copyMemory(m))
	}

	// Most recent first, matching the Firestore query ordering
	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].CreatedAt.After(memories[j].CreatedAt)
	})

	return memories, nil
}

func (r *Memory) PatchMemory(ctx context.Context, ownerID string, id model.MemoryID, patch MemoryPatch) error {
	if patch.Empty() {
		return goerr.Wrap(ErrEmptyPatch, "", goerr.V("memory_id", id))
	}
	if patch.Importance != nil && (*patch.Importance < 1 || *patch.Importance > 10) {
		return goerr.Wrap(model.ErrInvalidImportance, "", goerr.V("importance", *patch.Importance))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.memories[id]
	if !ok || m.OwnerID != ownerID {
		return goerr.Wrap(ErrMemoryNotFound, "", goerr.V("memory_id", id))
	}

	if patch.Importance != nil {
		m.Importance = *patch.Importance
	}
	if patch.Active != nil {
		m.Active = *patch.Active
	}
	m.UpdatedAt = time.Now()

	return nil
}

func (r *Memory) PutTask(ctx context.Context, task *model.Task) error {
	if err := task.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = copyTask(task)
	return nil
}

func (r *Memory) SearchTasks(ctx context.Context, ownerID string, queryText string, tagFilters []string) ([]*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tasks []*model.Task
	for _, t := range r.tasks {
		if t.OwnerID != ownerID || !t.Active {
			continue
		}
		if len(tagFilters) > 0 && !hasAnyTag(t, tagFilters) {
			continue
		}
		if !matchTaskText(t, queryText) {
			continue
		}
		tasks = append(tasks, copyTask(t))
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks, nil
}

func hasAnyTag(t *model.Task, tags []string) bool {
	for _, tag := range tags {
		if t.HasTag(tag) {
			return true
		}
	}
	return false
}
