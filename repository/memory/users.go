package memory

import (
	"context"
	"sort"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/repository"
)

// Users exposes the store through the UserRepository contract. The task and
// user contracts both declare GetByID, so they cannot share one receiver.
func (s *Store) Users() repository.UserRepository { return userView{s} }

type userView struct{ s *Store }

func (u userView) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (u userView) GetMany(ctx context.Context, ids []string) ([]domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	var users []domain.User
	for _, id := range ids {
		if user, ok := u.s.users[id]; ok {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (u userView) Upsert(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	now := u.s.now()
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if existing, ok := u.s.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	u.s.users[user.ID] = *user
	return nil
}

func (u userView) ListFriends(ctx context.Context, userID string) ([]domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	var users []domain.User
	for id := range u.s.friends[userID] {
		if user, ok := u.s.users[id]; ok {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Nickname == users[j].Nickname {
			return users[i].ID < users[j].ID
		}
		return users[i].Nickname < users[j].Nickname
	})
	return users, nil
}

func (u userView) AddFriend(ctx context.Context, userID, friendID string) error {
	if userID == "" || friendID == "" || userID == friendID {
		return domain.ErrInvalidPayload
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[friendID]; !ok {
		return domain.ErrUserNotFound
	}
	link := func(a, b string) {
		if u.s.friends[a] == nil {
			u.s.friends[a] = make(map[string]struct{})
		}
		u.s.friends[a][b] = struct{}{}
	}
	link(userID, friendID)
	link(friendID, userID)
	return nil
}

// MarkViewed records that viewerID opened taskID.
func (s *Store) MarkViewed(ctx context.Context, viewerID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.views[viewerID] == nil {
		s.views[viewerID] = make(map[string]struct{})
	}
	s.views[viewerID][taskID] = struct{}{}
	return nil
}

// Viewed reports which of taskIDs viewerID has opened.
func (s *Store) Viewed(ctx context.Context, viewerID string, taskIDs []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(taskIDs))
	for _, id := range taskIDs {
		_, ok := s.views[viewerID][id]
		out[id] = ok
	}
	return out, nil
}

var _ repository.ViewRepository = (*Store)(nil)
