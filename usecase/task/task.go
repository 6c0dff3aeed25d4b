package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/repository"
	"github.com/fastygo/taskproof/usecase"
)

type UseCase struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*UseCase)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

func New(tasks repository.TaskRepository, users repository.UserRepository, buffer usecase.OperationBuffer, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		tasks:  tasks,
		users:  users,
		buffer: buffer,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	tasks, err := uc.tasks.List(ctx, filter)
	return tasks, usecase.Unavailable(err)
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	return task, usecase.Unavailable(err)
}

// CreateTask validates the form input and starts a new task for userID.
func (uc *UseCase) CreateTask(ctx context.Context, userID string, in CreateInput) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := uc.now()
	task := &domain.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		TargetTime:  in.TargetTime(),
		StartTime:   now,
		StartImage:  in.StartImage,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if usecase.IsStorageFailure(err) && uc.shouldBuffer(ctx, usecase.OperationCreate, task) {
			return task, nil
		}
		return nil, usecase.Unavailable(err)
	}
	uc.logger.Info("task started", zap.String("task_id", created.ID), zap.String("user_id", userID), zap.Int("target_time", created.TargetTime))
	return created, nil
}

// CompleteTask closes an active task owned by userID with its end photo.
func (uc *UseCase) CompleteTask(ctx context.Context, userID, taskID, endImage string) (*domain.Task, error) {
	if strings.TrimSpace(endImage) == "" {
		verr := &domain.ValidationError{}
		verr.Add("end_image", "take an end photo")
		return nil, verr
	}
	task, err := uc.ownedActive(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	task.Complete(endImage, uc.now())
	if err := uc.update(ctx, task); err != nil {
		return nil, err
	}
	uc.logger.Info("task completed", zap.String("task_id", task.ID), zap.String("user_id", userID))
	return task, nil
}

// AbandonTask gives up an active task owned by userID.
func (uc *UseCase) AbandonTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := uc.ownedActive(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	task.Abandon(uc.now())
	if err := uc.update(ctx, task); err != nil {
		return nil, err
	}
	uc.logger.Info("task abandoned", zap.String("task_id", task.ID), zap.String("user_id", userID))
	return task, nil
}

// DeleteTask removes a completed task owned by userID.
func (uc *UseCase) DeleteTask(ctx context.Context, userID, taskID string) error {
	task, err := uc.owned(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if !task.IsCompleted {
		return domain.ErrTaskNotCompleted
	}
	if err := uc.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		if usecase.IsStorageFailure(err) && uc.shouldBuffer(ctx, usecase.OperationDelete, task) {
			return nil
		}
		return usecase.Unavailable(err)
	}
	uc.logger.Info("task deleted", zap.String("task_id", taskID), zap.String("user_id", userID))
	return nil
}

func (uc *UseCase) owned(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, usecase.Unavailable(err)
	}
	if err := usecase.OwnedBy(ctx, uc.users, task, userID); err != nil {
		return nil, err
	}
	return task, nil
}

// ActiveTask returns taskID if it is an active task of userID.
func (uc *UseCase) ActiveTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	return uc.ownedActive(ctx, userID, taskID)
}

func (uc *UseCase) ownedActive(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := uc.owned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsActive() {
		return nil, domain.ErrTaskFinished
	}
	return task, nil
}

func (uc *UseCase) update(ctx context.Context, task *domain.Task) error {
	if err := uc.tasks.Update(ctx, task); err != nil {
		if usecase.IsStorageFailure(err) && uc.shouldBuffer(ctx, usecase.OperationUpdate, task) {
			return nil
		}
		return usecase.Unavailable(err)
	}
	return nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, task *domain.Task) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation), zap.String("task_id", task.ID))
	return true
}
