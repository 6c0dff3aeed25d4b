// Package capture provides the camera capability used to document the start
// and the end of a task.
package capture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/domain"
)

// Camera takes a photo for the given mode.
type Camera interface {
	Capture(ctx context.Context, mode domain.CaptureMode) (domain.Photo, error)
}

// PermissionFunc reports whether the camera may be used.
type PermissionFunc func(ctx context.Context) bool

// AlwaysAllow grants camera access.
func AlwaysAllow(context.Context) bool { return true }

// SimulatedConfig tunes the simulated camera.
type SimulatedConfig struct {
	Delay      time.Duration
	BaseURL    string
	Permission PermissionFunc
	Now        func() time.Time
}

// Simulated stands in for device hardware: it waits a fixed delay and returns
// a placeholder image reference.
type Simulated struct {
	cfg    SimulatedConfig
	logger *zap.Logger
}

// NewSimulated builds a simulated camera.
func NewSimulated(cfg SimulatedConfig, logger *zap.Logger) *Simulated {
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://via.placeholder.com/300x400"
	}
	if cfg.Permission == nil {
		cfg.Permission = AlwaysAllow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulated{cfg: cfg, logger: logger}
}

// Capture resolves after the configured delay unless ctx ends first.
func (s *Simulated) Capture(ctx context.Context, mode domain.CaptureMode) (domain.Photo, error) {
	if _, err := domain.ParseCaptureMode(string(mode)); err != nil {
		return domain.Photo{}, err
	}
	if !s.cfg.Permission(ctx) {
		s.logger.Warn("camera permission denied", zap.String("mode", string(mode)))
		return domain.Photo{}, domain.ErrPermissionDenied
	}

	timer := time.NewTimer(s.cfg.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return domain.Photo{}, domain.WrapError(domain.ErrCodeCanceled, domain.ErrCaptureCanceled.Message, ctx.Err())
	case <-timer.C:
	}

	photo := domain.Photo{
		URI:        fmt.Sprintf("%s/%s?text=%s", strings.TrimRight(s.cfg.BaseURL, "/"), uuid.NewString(), mode),
		Mode:       mode,
		CapturedAt: s.cfg.Now(),
	}
	s.logger.Debug("photo captured", zap.String("mode", string(mode)), zap.String("uri", photo.URI))
	return photo, nil
}

var _ Camera = (*Simulated)(nil)
