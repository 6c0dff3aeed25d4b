package feed

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/repository"
	"github.com/fastygo/taskproof/usecase"
)

const pageSize = 100

// Feed is the main screen's content for one viewer.
type Feed struct {
	Stories       []domain.StoryItem    `json:"stories"`
	MyOngoing     []domain.Task         `json:"my_ongoing"`
	FriendOngoing []domain.TaskWithUser `json:"friend_ongoing"`
}

type UseCase struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	views  repository.ViewRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, users repository.UserRepository, views repository.ViewRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{tasks: tasks, users: users, views: views, logger: logger}
}

// Feed gathers the viewer's tasks and friends' tasks into story order.
func (uc *UseCase) Feed(ctx context.Context, viewerID string) (*Feed, error) {
	mine, friends, err := uc.load(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	out := &Feed{
		Stories:       BuildStories(mine, friends),
		MyOngoing:     []domain.Task{},
		FriendOngoing: []domain.TaskWithUser{},
	}
	for _, t := range mine {
		if t.IsActive() {
			out.MyOngoing = append(out.MyOngoing, t)
		}
	}
	for _, t := range friends {
		if t.IsActive() {
			out.FriendOngoing = append(out.FriendOngoing, t)
		}
	}
	return out, nil
}

// Sequence is the cyclic order the detail screen swipes through.
func (uc *UseCase) Sequence(ctx context.Context, viewerID string) ([]domain.StoryItem, error) {
	mine, friends, err := uc.load(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return BuildStories(mine, friends), nil
}

// MarkViewed records that the viewer opened a friend's task. Tasks the viewer
// cannot see are not found.
func (uc *UseCase) MarkViewed(ctx context.Context, viewerID, taskID string) error {
	item, err := uc.Visible(ctx, viewerID, taskID)
	if err != nil {
		return err
	}
	if item.IsMyTask {
		return nil
	}
	if err := uc.views.MarkViewed(ctx, viewerID, taskID); err != nil {
		return usecase.Unavailable(err)
	}
	return nil
}

// Visible returns a task the viewer may see: their own or a friend's.
// Anything else is reported as not found.
func (uc *UseCase) Visible(ctx context.Context, viewerID, taskID string) (*domain.StoryItem, error) {
	if viewerID == "" {
		return nil, domain.ErrUnauthorized
	}
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, usecase.Unavailable(err)
	}
	if task.UserID == viewerID {
		return &domain.StoryItem{Task: domain.TaskWithUser{Task: *task}, IsMyTask: true}, nil
	}

	friends, err := uc.users.ListFriends(ctx, viewerID)
	if err != nil {
		return nil, usecase.Unavailable(err)
	}
	for i := range friends {
		if friends[i].ID != task.UserID {
			continue
		}
		viewed, err := uc.views.Viewed(ctx, viewerID, []string{task.ID})
		if err != nil {
			uc.logger.Warn("view lookup failed", zap.String("viewer_id", viewerID), zap.Error(err))
		}
		return &domain.StoryItem{Task: domain.TaskWithUser{
			Task:     *task,
			User:     friends[i].Summary(),
			IsViewed: viewed[task.ID],
		}}, nil
	}
	return nil, domain.ErrTaskNotFound
}

func (uc *UseCase) load(ctx context.Context, viewerID string) ([]domain.Task, []domain.TaskWithUser, error) {
	if viewerID == "" {
		return nil, nil, domain.ErrUnauthorized
	}
	mine, err := uc.tasks.List(ctx, repository.TaskFilter{UserIDs: []string{viewerID}, Limit: pageSize})
	if err != nil {
		return nil, nil, usecase.Unavailable(err)
	}

	friends, err := uc.users.ListFriends(ctx, viewerID)
	if err != nil {
		return nil, nil, usecase.Unavailable(err)
	}
	if len(friends) == 0 {
		return mine, nil, nil
	}

	byID := make(map[string]domain.UserSummary, len(friends))
	ids := make([]string, 0, len(friends))
	for i := range friends {
		byID[friends[i].ID] = friends[i].Summary()
		ids = append(ids, friends[i].ID)
	}

	raw, err := uc.tasks.List(ctx, repository.TaskFilter{UserIDs: ids, Limit: pageSize})
	if err != nil {
		return nil, nil, usecase.Unavailable(err)
	}
	taskIDs := make([]string, 0, len(raw))
	for _, t := range raw {
		taskIDs = append(taskIDs, t.ID)
	}

	viewed, err := uc.views.Viewed(ctx, viewerID, taskIDs)
	if err != nil {
		// the feed is still usable without view marks
		uc.logger.Warn("view lookup failed", zap.String("viewer_id", viewerID), zap.Error(err))
		viewed = map[string]bool{}
	}

	out := make([]domain.TaskWithUser, 0, len(raw))
	for _, t := range raw {
		out = append(out, domain.TaskWithUser{Task: t, User: byID[t.UserID], IsViewed: viewed[t.ID]})
	}
	return mine, out, nil
}

// BuildStories orders the viewer's own tasks first, then friends' tasks with
// unviewed before viewed. Each group is sorted by most recent start.
func BuildStories(mine []domain.Task, friends []domain.TaskWithUser) []domain.StoryItem {
	own := append([]domain.Task(nil), mine...)
	sort.SliceStable(own, func(i, j int) bool { return own[i].StartTime.After(own[j].StartTime) })

	others := append([]domain.TaskWithUser(nil), friends...)
	sort.SliceStable(others, func(i, j int) bool {
		if others[i].IsViewed != others[j].IsViewed {
			return !others[i].IsViewed
		}
		return others[i].StartTime.After(others[j].StartTime)
	})

	items := make([]domain.StoryItem, 0, len(own)+len(others))
	for _, t := range own {
		items = append(items, domain.StoryItem{Task: domain.TaskWithUser{Task: t}, IsMyTask: true})
	}
	for _, t := range others {
		items = append(items, domain.StoryItem{Task: t})
	}
	return items
}
