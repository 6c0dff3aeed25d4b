package usecase

import (
	"context"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/repository"
)

// Hidden reports whether ownerID's tasks are out of viewerID's sight: neither
// the viewer's own nor a friend's. Hidden tasks are answered as not found.
func Hidden(ctx context.Context, users repository.UserRepository, viewerID, ownerID string) (bool, error) {
	if viewerID != "" && viewerID == ownerID {
		return false, nil
	}
	if users == nil || viewerID == "" {
		return true, nil
	}
	friends, err := users.ListFriends(ctx, viewerID)
	if err != nil {
		return true, Unavailable(err)
	}
	for i := range friends {
		if friends[i].ID == ownerID {
			return false, nil
		}
	}
	return true, nil
}

// OwnedBy narrows a fetched task to its owner: a friend's task is forbidden,
// anyone else's is not found.
func OwnedBy(ctx context.Context, users repository.UserRepository, task *domain.Task, userID string) error {
	if task.UserID == userID {
		return nil
	}
	hidden, err := Hidden(ctx, users, userID, task.UserID)
	if err != nil {
		return err
	}
	if hidden {
		return domain.ErrTaskNotFound
	}
	return domain.ErrNotTaskOwner
}
