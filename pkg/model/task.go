package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type TaskID string

// NewTaskID generates a new unique TaskID
func NewTaskID() TaskID {
	return TaskID(uuid.New().String())
}

// Task is a structured record created from a detected future event in
// conversation ("meeting with Sarah next Friday"). The hybrid search path
// prefers tasks over freeform memories for scheduling questions.
type Task struct {
	ID          TaskID
	OwnerID     string
	Title       string
	Description string
	Tags        []string
	DueDate     *time.Time
	Context     string

	CreatedAt time.Time
	Active    bool
}

// Validate checks structural invariants before storage
func (t *Task) Validate() error {
	if t.ID == "" {
		return goerr.New("task ID is empty")
	}
	if t.OwnerID == "" {
		return goerr.New("task owner ID is empty")
	}
	if t.Title == "" {
		return goerr.New("task title is empty")
	}
	return nil
}

// HasTag reports whether the task carries the given tag (case-insensitive
// tags are normalized to lowercase at creation)
func (t *Task) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}
