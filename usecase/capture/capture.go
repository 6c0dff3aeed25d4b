package capture

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskproof/domain"
	cam "github.com/fastygo/taskproof/internal/capture"
	"github.com/fastygo/taskproof/internal/navigation"
)

// TaskCompleter finishes a task once its end photo is confirmed.
type TaskCompleter interface {
	ActiveTask(ctx context.Context, userID, taskID string) (*domain.Task, error)
	CompleteTask(ctx context.Context, userID, taskID, endImage string) (*domain.Task, error)
}

// Result is what the camera screen shows after a confirm.
type Result struct {
	Next navigation.Route `json:"next"`
	Task *domain.Task     `json:"task,omitempty"`
}

type UseCase struct {
	camera cam.Camera
	tasks  TaskCompleter
	logger *zap.Logger
}

func New(camera cam.Camera, tasks TaskCompleter, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{camera: camera, tasks: tasks, logger: logger}
}

// Capture takes a photo. In complete mode the task must be an active task of userID.
func (uc *UseCase) Capture(ctx context.Context, userID string, mode domain.CaptureMode, taskID string) (domain.Photo, error) {
	if err := navigation.CameraRoute(mode, taskID).Validate(); err != nil {
		return domain.Photo{}, err
	}
	if mode == domain.CaptureComplete {
		if err := uc.checkCompletable(ctx, userID, taskID); err != nil {
			return domain.Photo{}, err
		}
	}
	photo, err := uc.camera.Capture(ctx, mode)
	if err != nil {
		uc.logger.Info("capture failed", zap.String("mode", string(mode)), zap.Error(err))
		return domain.Photo{}, err
	}
	return photo, nil
}

// Confirm accepts a captured photo. A start photo leads to the creation form;
// a completion photo finishes the task and returns to the main screen.
func (uc *UseCase) Confirm(ctx context.Context, userID string, mode domain.CaptureMode, taskID string, photo domain.Photo) (*Result, error) {
	if photo.URI == "" {
		verr := &domain.ValidationError{}
		verr.Add("photo", "take a photo first")
		return nil, verr
	}
	if err := navigation.CameraRoute(mode, taskID).Validate(); err != nil {
		return nil, err
	}
	switch mode {
	case domain.CaptureStart:
		return &Result{Next: navigation.CreateTaskRoute()}, nil
	default:
		task, err := uc.tasks.CompleteTask(ctx, userID, taskID, photo.URI)
		if err != nil {
			return nil, err
		}
		return &Result{Next: navigation.MainRoute(), Task: task}, nil
	}
}

func (uc *UseCase) checkCompletable(ctx context.Context, userID, taskID string) error {
	_, err := uc.tasks.ActiveTask(ctx, userID, taskID)
	return err
}
