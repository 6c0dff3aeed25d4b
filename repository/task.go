package repository

import (
	"context"

	"github.com/fastygo/taskproof/domain"
)

// TaskState narrows a listing to running or finished tasks.
type TaskState string

const (
	StateAny       TaskState = ""
	StateActive    TaskState = "active"
	StateCompleted TaskState = "completed"
	StateAbandoned TaskState = "abandoned"
)

type TaskFilter struct {
	UserIDs []string
	State   TaskState
	Limit   int
	Offset  int
}

// TaskRepository is the task data source.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}

// Matches reports whether a task passes the filter's user and state constraints.
func (f TaskFilter) Matches(task *domain.Task) bool {
	if task == nil {
		return false
	}
	if len(f.UserIDs) > 0 {
		found := false
		for _, id := range f.UserIDs {
			if id == task.UserID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	switch f.State {
	case StateActive:
		return task.IsActive()
	case StateCompleted:
		return task.IsCompleted
	case StateAbandoned:
		return task.IsAbandoned
	default:
		return true
	}
}

// ClampLimit bounds page sizes to (0, 100].
func ClampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
