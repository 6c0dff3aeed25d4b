package repository

import (
	"context"

	"github.com/fastygo/taskproof/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetMany(ctx context.Context, ids []string) ([]domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
	ListFriends(ctx context.Context, userID string) ([]domain.User, error)
	AddFriend(ctx context.Context, userID, friendID string) error
}
