package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/repository"
)

var taskColumns = []string{
	"id", "user_id", "title", "description", "target_time", "start_time", "end_time",
	"start_image", "end_image", "is_completed", "is_abandoned", "created_at", "updated_at",
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query, args, err := psql.Select(taskColumns...).From("tasks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query, args, err := listTasksQuery(filter).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func listTasksQuery(filter repository.TaskFilter) sq.SelectBuilder {
	b := psql.Select(taskColumns...).From("tasks")
	if len(filter.UserIDs) > 0 {
		b = b.Where(sq.Eq{"user_id": filter.UserIDs})
	}
	switch filter.State {
	case repository.StateActive:
		b = b.Where(sq.Eq{"is_completed": false, "is_abandoned": false})
	case repository.StateCompleted:
		b = b.Where(sq.Eq{"is_completed": true})
	case repository.StateAbandoned:
		b = b.Where(sq.Eq{"is_abandoned": true})
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	return b.OrderBy("start_time DESC", "id").
		Limit(uint64(repository.ClampLimit(filter.Limit))).
		Offset(uint64(offset))
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	query, args, err := psql.Insert("tasks").
		Columns("id", "user_id", "title", "description", "target_time", "start_time", "end_time",
			"start_image", "end_image", "is_completed", "is_abandoned", "created_at", "updated_at").
		Values(task.ID, task.UserID, task.Title, task.Description, task.TargetTime, task.StartTime,
			nullTimePtr(task.EndTime), task.StartImage, task.EndImage, task.IsCompleted, task.IsAbandoned,
			sq.Expr("COALESCE(?, NOW())", nullTime(task.CreatedAt)), sq.Expr("NOW()")).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, classifyWriteError(err, "task")
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if err := task.Validate(); err != nil {
		return err
	}

	query, args, err := psql.Update("tasks").
		SetMap(map[string]interface{}{
			"title":        task.Title,
			"description":  task.Description,
			"target_time":  task.TargetTime,
			"end_time":     nullTimePtr(task.EndTime),
			"end_image":    task.EndImage,
			"is_completed": task.IsCompleted,
			"is_abandoned": task.IsAbandoned,
			"updated_at":   sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": task.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("tasks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var end *time.Time

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.TargetTime,
		&task.StartTime,
		&end,
		&task.StartImage,
		&task.EndImage,
		&task.IsCompleted,
		&task.IsAbandoned,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task.EndTime = end
	return &task, nil
}
