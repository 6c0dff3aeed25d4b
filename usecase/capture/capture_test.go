package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/taskproof/domain"
	cam "github.com/fastygo/taskproof/internal/capture"
	"github.com/fastygo/taskproof/internal/navigation"
	"github.com/fastygo/taskproof/repository/memory"
	taskuc "github.com/fastygo/taskproof/usecase/task"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type stubCamera struct {
	photo domain.Photo
	err   error
	calls int
}

func (s *stubCamera) Capture(ctx context.Context, mode domain.CaptureMode) (domain.Photo, error) {
	s.calls++
	if s.err != nil {
		return domain.Photo{}, s.err
	}
	photo := s.photo
	photo.Mode = mode
	return photo, nil
}

func newUseCase(t *testing.T, camera cam.Camera) (*UseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	if err := store.Seed(context.Background(), memory.DemoFixtures(now)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	tasks := taskuc.New(store, store.Users(), nil, nil, taskuc.WithClock(func() time.Time { return now }))
	return New(camera, tasks, nil), store
}

func TestCaptureStart(t *testing.T) {
	camera := cam.NewSimulated(cam.SimulatedConfig{BaseURL: "https://img.test"}, nil)
	uc, _ := newUseCase(t, camera)

	photo, err := uc.Capture(context.Background(), "user1", domain.CaptureStart, "")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if photo.URI == "" || photo.Mode != domain.CaptureStart {
		t.Fatalf("unexpected photo %+v", photo)
	}

	res, err := uc.Confirm(context.Background(), "user1", domain.CaptureStart, "", photo)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if res.Next.Destination != navigation.CreateTask || res.Task != nil {
		t.Fatalf("start confirm should lead to the creation form, got %+v", res)
	}
}

func TestCaptureCompleteFinishesTask(t *testing.T) {
	camera := &stubCamera{photo: domain.Photo{URI: "end.png"}}
	uc, store := newUseCase(t, camera)
	ctx := context.Background()

	photo, err := uc.Capture(ctx, "user1", domain.CaptureComplete, "1")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	res, err := uc.Confirm(ctx, "user1", domain.CaptureComplete, "1", photo)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if res.Next.Destination != navigation.Main || res.Task == nil || !res.Task.IsCompleted {
		t.Fatalf("unexpected result %+v", res)
	}
	stored, _ := store.GetByID(ctx, "1")
	if stored.EndImage != "end.png" {
		t.Fatalf("end image not stored, got %q", stored.EndImage)
	}
}

func TestCaptureCompleteRules(t *testing.T) {
	camera := &stubCamera{photo: domain.Photo{URI: "end.png"}}
	uc, _ := newUseCase(t, camera)
	ctx := context.Background()

	cases := []struct {
		name   string
		taskID string
		want   error
	}{
		{"friend task", "3", domain.ErrNotTaskOwner},
		{"finished task", "2", domain.ErrTaskFinished},
		{"missing task", "nope", domain.ErrTaskNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uc.Capture(ctx, "user1", domain.CaptureComplete, tc.taskID); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if _, err := uc.Capture(ctx, "user1", domain.CaptureComplete, ""); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("complete mode without a task should be invalid, got %v", err)
	}
	if camera.calls != 0 {
		t.Fatalf("camera should not be opened for rejected captures, got %d calls", camera.calls)
	}
}

func TestCaptureCompleteHiddenTask(t *testing.T) {
	camera := &stubCamera{photo: domain.Photo{URI: "end.png"}}
	uc, store := newUseCase(t, camera)
	ctx := context.Background()
	if err := store.Users().Upsert(ctx, &domain.User{ID: "user9", Username: "stranger"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if _, err := uc.Capture(ctx, "user9", domain.CaptureComplete, "1"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("capture: expected not found, got %v", err)
	}
	if _, err := uc.Confirm(ctx, "user9", domain.CaptureComplete, "1", domain.Photo{URI: "end.png"}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("confirm: expected not found, got %v", err)
	}
	if camera.calls != 0 {
		t.Fatalf("camera should stay closed, got %d calls", camera.calls)
	}
}

func TestCaptureDeniedAndCanceled(t *testing.T) {
	denied := cam.NewSimulated(cam.SimulatedConfig{Permission: func(context.Context) bool { return false }}, nil)
	uc, _ := newUseCase(t, denied)
	if _, err := uc.Capture(context.Background(), "user1", domain.CaptureStart, ""); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	slow := cam.NewSimulated(cam.SimulatedConfig{Delay: time.Minute}, nil)
	uc, _ = newUseCase(t, slow)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := uc.Capture(ctx, "user1", domain.CaptureStart, ""); !domain.IsDomainError(err, domain.ErrCodeCanceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestConfirmRequiresPhoto(t *testing.T) {
	uc, _ := newUseCase(t, &stubCamera{})
	_, err := uc.Confirm(context.Background(), "user1", domain.CaptureStart, "", domain.Photo{})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Field != "photo" {
		t.Fatalf("expected photo validation error, got %v", err)
	}
}
