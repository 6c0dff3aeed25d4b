package profile

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/repository"
	"github.com/fastygo/taskproof/usecase"
)

const maxNicknameLength = 30

type UseCase struct {
	users  repository.UserRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(users repository.UserRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		buffer: buffer,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	return user, usecase.Unavailable(err)
}

func (uc *UseCase) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrInvalidPayload
	}
	user.Username = strings.TrimSpace(user.Username)
	user.Nickname = strings.TrimSpace(user.Nickname)

	verr := &domain.ValidationError{}
	if user.Username == "" {
		verr.Add("username", "enter a username")
	}
	if user.Nickname == "" {
		verr.Add("nickname", "enter a nickname")
	} else if utf8.RuneCountInString(user.Nickname) > maxNicknameLength {
		verr.Add("nickname", "nickname is too long")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		if usecase.IsStorageFailure(err) && uc.buffer != nil {
			if bufErr := uc.buffer.BufferProfile(ctx, usecase.OperationUpdate, user); bufErr != nil {
				uc.logger.Error("failed to buffer profile update", zap.Error(bufErr))
				return nil, usecase.Unavailable(err)
			}
			uc.logger.Warn("profile update buffered due to repository error", zap.Error(err))
			return user, nil
		}
		return nil, usecase.Unavailable(err)
	}
	return user, nil
}

func (uc *UseCase) ListFriends(ctx context.Context, userID string) ([]domain.User, error) {
	friends, err := uc.users.ListFriends(ctx, userID)
	return friends, usecase.Unavailable(err)
}

func (uc *UseCase) AddFriend(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return domain.NewError(domain.ErrCodeInvalid, "cannot befriend yourself")
	}
	if _, err := uc.users.GetByID(ctx, friendID); err != nil {
		return usecase.Unavailable(err)
	}
	if err := uc.users.AddFriend(ctx, userID, friendID); err != nil {
		return usecase.Unavailable(err)
	}
	uc.logger.Info("friend added", zap.String("user_id", userID), zap.String("friend_id", friendID))
	return nil
}
