package repository

import (
	"context"

	"github.com/csfalcao/magis/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrMemoryNotFound = goerr.New("memory not found")
	ErrTaskNotFound   = goerr.New("task not found")
	ErrEmptyPatch     = goerr.New("patch has no fields to update")
)

// MemoryPatch describes the only mutations allowed on a stored memory.
// Nil fields are left unchanged.
type MemoryPatch struct {
	Importance *int
	Active     *bool
}

// Empty reports whether the patch would change nothing
func (p MemoryPatch) Empty() bool {
	return p.Importance == nil && p.Active == nil
}

// Repository defines persistence for memories and tasks. Every operation is
// scoped by owner ID at query construction: a record of another owner is
// indistinguishable from a missing one.
type Repository interface {
	// PutMemory saves a memory
	PutMemory(ctx context.Context, memory *model.Memory) error

	// GetMemory retrieves a memory by ID within the owner's scope
	GetMemory(ctx context.Context, ownerID string, id model.MemoryID) (*model.Memory, error)

	// ListActiveMemories retrieves the owner's active memories, most recent
	// first. contextFilter narrows to one context when non-empty.
	ListActiveMemories(ctx context.Context, ownerID string, contextFilter string) ([]*model.Memory, error)

	// PatchMemory applies importance/active changes to an owned memory
	PatchMemory(ctx context.Context, ownerID string, id model.MemoryID, patch MemoryPatch) error

	// PutTask saves a task
	PutTask(ctx context.Context, task *model.Task) error

	// SearchTasks retrieves the owner's active tasks whose title, description
	// or tags contain the query text (case-insensitive). When tagFilters is
	// non-empty, a task must carry at least one of the tags to match.
	SearchTasks(ctx context.Context, ownerID string, queryText string, tagFilters []string) ([]*model.Task, error)
}
