package views

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/detail"
	"github.com/fastygo/taskproof/internal/progress"
	"github.com/fastygo/taskproof/usecase/capture"
	"github.com/fastygo/taskproof/usecase/feed"
	"github.com/fastygo/taskproof/usecase/task"
)

// FeedSource supplies the story feed and the detail sequence.
type FeedSource interface {
	Feed(ctx context.Context, viewerID string) (*feed.Feed, error)
	Sequence(ctx context.Context, viewerID string) ([]domain.StoryItem, error)
	MarkViewed(ctx context.Context, viewerID, taskID string) error
}

// TaskActions mutates the viewer's own tasks.
type TaskActions interface {
	CreateTask(ctx context.Context, userID string, in task.CreateInput) (*domain.Task, error)
	AbandonTask(ctx context.Context, userID, taskID string) (*domain.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// PhotoTaker runs the camera screen's capture and confirm steps.
type PhotoTaker interface {
	Capture(ctx context.Context, userID string, mode domain.CaptureMode, taskID string) (domain.Photo, error)
	Confirm(ctx context.Context, userID string, mode domain.CaptureMode, taskID string, photo domain.Photo) (*capture.Result, error)
}

// Deps is shared by every screen.
type Deps struct {
	Viewer  string
	Feed    FeedSource
	Tasks   TaskActions
	Camera  PhotoTaker
	Detail  detail.Options
	Now     func() time.Time
	Timeout time.Duration
	Logger  *zap.Logger
}

// WithDefaults fills unset optional fields.
func (d Deps) WithDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Timeout <= 0 {
		d.Timeout = 5 * time.Second
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Detail.Logger == nil {
		d.Detail.Logger = d.Logger
	}
	if d.Detail.Radius <= 0 {
		d.Detail.Radius = progress.DefaultRadius
	}
	return d
}

func (d Deps) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d.Timeout)
}
