package memory

import (
	"context"

	"github.com/csfalcao/magis/pkg/model"
	"github.com/csfalcao/magis/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
)

// SetImportance changes the importance boost of an owned memory
func (u *UseCase) SetImportance(ctx context.Context, ownerID string, id model.MemoryID, importance int) error {
	if importance < 1 || importance > 10 {
		return goerr.Wrap(model.ErrInvalidImportance, "", goerr.V("importance", importance))
	}

	patch := repository.MemoryPatch{Importance: &importance}
	if err := u.repo.PatchMemory(ctx, ownerID, id, patch); err != nil {
		return goerr.Wrap(err, "failed to update importance", goerr.V("memory_id", id))
	}

	return nil
}

// Forget soft-deletes a memory: it disappears from every query but is never
// hard-deleted
func (u *UseCase) Forget(ctx context.Context, ownerID string, id model.MemoryID) error {
	inactive := false
	patch := repository.MemoryPatch{Active: &inactive}
	if err := u.repo.PatchMemory(ctx, ownerID, id, patch); err != nil {
		return goerr.Wrap(err, "failed to forget memory", goerr.V("memory_id", id))
	}

	return nil
}
