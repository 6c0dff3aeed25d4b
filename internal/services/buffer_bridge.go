package services

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/infrastructure/buffer"
	"github.com/fastygo/taskproof/usecase"
)

// BufferBridge serializes use-case writes into buffer items for later replay.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferProfile(ctx context.Context, operation string, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityProfile, operation, user.ID, user.ID, user)
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityTask, operation, task.UserID, task.ID, task)
}

func (b *BufferBridge) enqueue(ctx context.Context, entity, operation, userID, entityID string, v any) error {
	if b.processor == nil {
		return domain.ErrStorageUnavailable
	}
	payload, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", entity, entityID, err)
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		UserID:    userID,
		Entity:    entity,
		EntityID:  entityID,
		Operation: operation,
		Data:      payload,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
