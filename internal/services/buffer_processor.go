package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/infrastructure/buffer"
	"github.com/fastygo/taskproof/repository"
)

// ConnectionHealth abstracts the connection monitor.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how often pending writes are replayed.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// BufferProcessor replays writes that were parked in the offline buffer.
type BufferProcessor struct {
	store  *buffer.Store
	health ConnectionHealth
	users  repository.UserRepository
	tasks  repository.TaskRepository
	logger *zap.Logger
	cron   *cron.Cron
	cfg    ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	health ConnectionHealth,
	users repository.UserRepository,
	tasks repository.TaskRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:  store,
		health: health,
		users:  users,
		tasks:  tasks,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	_, _ = bp.cron.AddFunc(fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds())), func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	})
	_, _ = bp.cron.AddFunc("@hourly", func() {
		removed, err := bp.store.Prune(time.Now().Add(-bp.cfg.Retention))
		if err != nil {
			bp.logger.Error("buffer prune failed", zap.Error(err))
			return
		}
		if removed > 0 {
			bp.logger.Warn("expired buffered writes dropped", zap.Int("count", removed))
		}
	})

	return bp
}

func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop waits for a running drain to finish or ctx to expire.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain replays one batch. When an item fails, later items for the same
// entity are held back so writes to one task never apply out of order.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.health != nil && !bp.health.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.Pending(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	blocked := make(map[string]bool)
	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if blocked[item.Key()] {
			continue
		}
		if err := bp.apply(ctx, item); err != nil {
			bp.handleFailure(item, err, blocked)
			continue
		}
		if err := bp.store.Ack(item); err != nil {
			bp.logger.Warn("failed to ack replayed write", zap.String("item_id", item.ID), zap.Error(err))
		}
	}
	return nil
}

func (bp *BufferProcessor) handleFailure(item buffer.Item, err error, blocked map[string]bool) {
	log := bp.logger.With(
		zap.String("item_id", item.ID),
		zap.String("entity", item.Entity),
		zap.String("entity_id", item.EntityID),
		zap.String("operation", item.Operation),
	)

	// a domain rejection will never succeed on retry
	var dErr *domain.Error
	if errors.As(err, &dErr) || item.Retries+1 >= bp.cfg.MaxRetries {
		log.Warn("dropping buffered write", zap.Int("retries", item.Retries), zap.Error(err))
		_ = bp.store.Ack(item)
		return
	}

	log.Error("buffered write replay failed", zap.Error(err))
	blocked[item.Key()] = true
	if _, err := bp.store.Retry(item); err != nil {
		log.Error("failed to record retry", zap.Error(err))
	}
}

// BufferOperation parks a write for later replay.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return fmt.Errorf("buffer processor not configured")
	}
	if err := bp.store.Enqueue(item); err != nil {
		return err
	}
	bp.logger.Info("write buffered",
		zap.String("entity", item.Entity),
		zap.String("entity_id", item.EntityID),
		zap.String("operation", item.Operation))
	return nil
}

// Size returns the number of pending writes.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) apply(ctx context.Context, item buffer.Item) error {
	switch item.Entity {
	case buffer.EntityProfile:
		var user domain.User
		if err := sonic.Unmarshal(item.Data, &user); err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "corrupt buffered profile", err)
		}
		return bp.users.Upsert(ctx, &user)

	case buffer.EntityTask:
		var task domain.Task
		if err := sonic.Unmarshal(item.Data, &task); err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "corrupt buffered task", err)
		}
		switch item.Operation {
		case buffer.OperationCreate:
			_, err := bp.tasks.Create(ctx, &task)
			return err
		case buffer.OperationUpdate:
			return bp.tasks.Update(ctx, &task)
		case buffer.OperationDelete:
			err := bp.tasks.Delete(ctx, task.ID)
			if errors.Is(err, domain.ErrTaskNotFound) {
				return nil
			}
			return err
		default:
			return domain.NewError(domain.ErrCodeInvalid, "unsupported operation "+item.Operation)
		}
	default:
		return domain.NewError(domain.ErrCodeInvalid, "unsupported entity "+item.Entity)
	}
}
