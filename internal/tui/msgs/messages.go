// Package msgs defines shared message types for TUI screen transitions.
package msgs

import (
	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/navigation"
)

// GoToMainMsg resets the stack to the main screen.
type GoToMainMsg struct {
	Notice string
}

// GoToDetailMsg opens the detail screen for a task.
type GoToDetailMsg struct {
	Route navigation.Route
}

// GoToCameraMsg opens the camera in the given mode.
type GoToCameraMsg struct {
	Mode   domain.CaptureMode
	TaskID string
}

// GoToCreateTaskMsg opens the creation form with a confirmed start photo.
type GoToCreateTaskMsg struct {
	Photo domain.Photo
}

// ReplaceRouteMsg swaps the current screen's route without growing the stack.
type ReplaceRouteMsg struct {
	Route navigation.Route
}

// GoBackMsg pops the current screen.
type GoBackMsg struct{}
