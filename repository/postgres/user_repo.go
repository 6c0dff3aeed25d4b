package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/repository"
)

var userColumns = []string{"id", "username", "nickname", "profile_image", "created_at", "updated_at"}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

func (r *userRepository) GetMany(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := psql.Select(userColumns...).From("users").Where(sq.Eq{"id": ids}).OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryUsers(ctx, query, args...)
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}

	query, args, err := psql.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Username, user.Nickname, user.ProfileImage,
			sq.Expr("COALESCE(?, NOW())", nullTime(user.CreatedAt)), sq.Expr("NOW()")).
		Suffix(`ON CONFLICT (id) DO UPDATE
	SET username = EXCLUDED.username,
		nickname = EXCLUDED.nickname,
		profile_image = EXCLUDED.profile_image,
		updated_at = NOW()
	RETURNING created_at, updated_at`).
		ToSql()
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) ListFriends(ctx context.Context, userID string) ([]domain.User, error) {
	query, args, err := psql.Select("u.id", "u.username", "u.nickname", "u.profile_image", "u.created_at", "u.updated_at").
		From("friendships f").
		Join("users u ON u.id = f.friend_id").
		Where(sq.Eq{"f.user_id": userID}).
		OrderBy("u.nickname", "u.id").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryUsers(ctx, query, args...)
}

// AddFriend links both users; the relation is symmetric.
func (r *userRepository) AddFriend(ctx context.Context, userID, friendID string) error {
	if userID == "" || friendID == "" || userID == friendID {
		return domain.ErrInvalidPayload
	}
	query, args, err := psql.Insert("friendships").
		Columns("user_id", "friend_id").
		Values(userID, friendID).
		Values(friendID, userID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}
	if _, err = r.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.ErrUserNotFound
		}
		return err
	}
	return nil
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.Username, &user.Nickname, &user.ProfileImage, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
