// Package memory keeps tasks, users and views in process memory. It backs the
// terminal client's demo mode and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/repository"
)

// Store implements the task, user and view repositories.
type Store struct {
	mu      sync.RWMutex
	tasks   map[string]domain.Task
	users   map[string]domain.User
	friends map[string]map[string]struct{}
	views   map[string]map[string]struct{}
	now     func() time.Time
}

func New() *Store {
	return &Store{
		tasks:   make(map[string]domain.Task),
		users:   make(map[string]domain.User),
		friends: make(map[string]map[string]struct{}),
		views:   make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (s *Store) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	s.mu.RLock()
	var tasks []domain.Task
	for _, task := range s.tasks {
		task := task
		if filter.Matches(&task) {
			tasks = append(tasks, task)
		}
	}
	s.mu.RUnlock()

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].StartTime.Equal(tasks[j].StartTime) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].StartTime.After(tasks[j].StartTime)
	})

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(tasks) {
		return nil, nil
	}
	tasks = tasks[offset:]
	if limit := repository.ClampLimit(filter.Limit); len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (s *Store) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := s.now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.ID]; exists {
		return nil, domain.NewError(domain.ErrCodeConflict, "task already exists")
	}
	s.tasks[task.ID] = *task
	return task, nil
}

func (s *Store) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if err := task.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.UserID = current.UserID
	task.StartTime = current.StartTime
	task.StartImage = current.StartImage
	task.CreatedAt = current.CreatedAt
	if task.UpdatedAt.IsZero() || task.UpdatedAt.Before(current.UpdatedAt) {
		task.UpdatedAt = s.now()
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

var _ repository.TaskRepository = (*Store)(nil)
