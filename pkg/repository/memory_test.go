package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/csfalcao/magis/pkg/model"
	"github.com/csfalcao/magis/pkg/repository"
)

func newMemory(owner, content string, created time.Time) *model.Memory {
	return &model.Memory{
		ID:             model.NewMemoryID(),
		OwnerID:        owner,
		Content:        content,
		Classification: model.ClassMemory,
		Importance:     5,
		CreatedAt:      created,
		UpdatedAt:      created,
		Active:         true,
	}
}

func TestMemoryRepoPutGet(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	m := newMemory("alice", "I love hiking", time.Now())
	gt.NoError(t, repo.PutMemory(ctx, m))

	retrieved, err := repo.GetMemory(ctx, "alice", m.ID)
	gt.NoError(t, err)
	gt.V(t, retrieved).NotNil()
	gt.Equal(t, retrieved.ID, m.ID)
	gt.Equal(t, retrieved.Content, m.Content)
}

func TestMemoryRepoPutRejectsInvalid(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	m := newMemory("alice", "valid content", time.Now())
	m.Importance = 11
	gt.Error(t, repo.PutMemory(ctx, m))

	m = newMemory("alice", "", time.Now())
	gt.Error(t, repo.PutMemory(ctx, m))
}

func TestMemoryRepoGetWrongOwnerFailsClosed(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	m := newMemory("alice", "private thought", time.Now())
	gt.NoError(t, repo.PutMemory(ctx, m))

	// Another owner gets not-found, not a permission error that would
	// confirm the memory exists
	_, err := repo.GetMemory(ctx, "bob", m.ID)
	gt.Error(t, err)
	gt.B(t, errors.Is(err, repository.ErrMemoryNotFound)).True()
}

func TestMemoryRepoListActive(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()
	now := time.Now()

	oldest := newMemory("alice", "oldest", now.Add(-3*time.Hour))
	newest := newMemory("alice", "newest", now)
	inactive := newMemory("alice", "forgotten", now.Add(-time.Hour))
	inactive.Active = false
	other := newMemory("bob", "not alice's", now)

	for _, m := range []*model.Memory{oldest, newest, inactive, other} {
		gt.NoError(t, repo.PutMemory(ctx, m))
	}

	memories, err := repo.ListActiveMemories(ctx, "alice", "")
	gt.NoError(t, err)

	// Inactive and foreign memories are excluded, newest first
	gt.A(t, memories).Length(2)
	gt.Equal(t, memories[0].ID, newest.ID)
	gt.Equal(t, memories[1].ID, oldest.ID)
}

func TestMemoryRepoListContextFilter(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()
	now := time.Now()

	work := newMemory("alice", "standup moved to 10am", now)
	work.Context = "work"
	personal := newMemory("alice", "buy milk", now)
	personal.Context = "personal"

	gt.NoError(t, repo.PutMemory(ctx, work))
	gt.NoError(t, repo.PutMemory(ctx, personal))

	memories, err := repo.ListActiveMemories(ctx, "alice", "work")
	gt.NoError(t, err)
	gt.A(t, memories).Length(1)
	gt.Equal(t, memories[0].ID, work.ID)
}

func TestMemoryRepoPatch(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	m := newMemory("alice", "adjust me", time.Now())
	gt.NoError(t, repo.PutMemory(ctx, m))

	importance := 9
	gt.NoError(t, repo.PatchMemory(ctx, "alice", m.ID, repository.MemoryPatch{Importance: &importance}))

	retrieved, err := repo.GetMemory(ctx, "alice", m.ID)
	gt.NoError(t, err)
	gt.Equal(t, retrieved.Importance, 9)

	inactive := false
	gt.NoError(t, repo.PatchMemory(ctx, "alice", m.ID, repository.MemoryPatch{Active: &inactive}))

	memories, err := repo.ListActiveMemories(ctx, "alice", "")
	gt.NoError(t, err)
	gt.A(t, memories).Length(0)
}

func TestMemoryRepoPatchValidation(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	m := newMemory("alice", "adjust me", time.Now())
	gt.NoError(t, repo.PutMemory(ctx, m))

	err := repo.PatchMemory(ctx, "alice", m.ID, repository.MemoryPatch{})
	gt.B(t, errors.Is(err, repository.ErrEmptyPatch)).True()

	importance := 0
	err = repo.PatchMemory(ctx, "alice", m.ID, repository.MemoryPatch{Importance: &importance})
	gt.B(t, errors.Is(err, model.ErrInvalidImportance)).True()

	importance = 5
	err = repo.PatchMemory(ctx, "bob", m.ID, repository.MemoryPatch{Importance: &importance})
	gt.B(t, errors.Is(err, repository.ErrMemoryNotFound)).True()
}

func newTask(owner, title string, tags []string) *model.Task {
	return &model.Task{
		ID:        model.NewTaskID(),
		OwnerID:   owner,
		Title:     title,
		Tags:      tags,
		CreatedAt: time.Now(),
		Active:    true,
	}
}

func TestMemoryRepoSearchTasks(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	meeting := newTask("alice", "Meeting with John", []string{"meeting"})
	errand := newTask("alice", "Pick up dry cleaning", []string{"errand"})
	foreign := newTask("bob", "Meeting with John", []string{"meeting"})

	for _, task := range []*model.Task{meeting, errand, foreign} {
		gt.NoError(t, repo.PutTask(ctx, task))
	}

	t.Run("tag filter", func(t *testing.T) {
		tasks, err := repo.SearchTasks(ctx, "alice", "meeting", []string{"meeting", "appointment"})
		gt.NoError(t, err)
		gt.A(t, tasks).Length(1)
		gt.Equal(t, tasks[0].ID, meeting.ID)
	})

	t.Run("text match", func(t *testing.T) {
		tasks, err := repo.SearchTasks(ctx, "alice", "dry cleaning", nil)
		gt.NoError(t, err)
		gt.A(t, tasks).Length(1)
		gt.Equal(t, tasks[0].ID, errand.ID)
	})

	t.Run("no match", func(t *testing.T) {
		tasks, err := repo.SearchTasks(ctx, "alice", "dentist", []string{"appointment"})
		gt.NoError(t, err)
		gt.A(t, tasks).Length(0)
	})

	t.Run("owner scoped", func(t *testing.T) {
		tasks, err := repo.SearchTasks(ctx, "bob", "meeting", nil)
		gt.NoError(t, err)
		gt.A(t, tasks).Length(1)
		gt.Equal(t, tasks[0].ID, foreign.ID)
	})
}
