// Package navigation describes the screens of the client and the transitions between them.
package navigation

import (
	"fmt"
	"sync"

	"github.com/fastygo/taskproof/domain"
)

// Destination names one screen.
type Destination string

const (
	Main       Destination = "main"
	Detail     Destination = "detail"
	CreateTask Destination = "create_task"
	Camera     Destination = "camera"
)

// Route is a destination together with its parameters.
type Route struct {
	Destination Destination        `json:"destination"`
	TaskID      string             `json:"task_id,omitempty"`
	IsMyTask    bool               `json:"is_my_task,omitempty"`
	IsCompleted bool               `json:"is_completed,omitempty"`
	Mode        domain.CaptureMode `json:"mode,omitempty"`
}

func MainRoute() Route { return Route{Destination: Main} }

func CreateTaskRoute() Route { return Route{Destination: CreateTask} }

// DetailRoute opens the detail screen for a story item.
func DetailRoute(item domain.StoryItem) Route {
	return Route{
		Destination: Detail,
		TaskID:      item.Task.ID,
		IsMyTask:    item.IsMyTask,
		IsCompleted: item.Task.IsCompleted,
	}
}

// CameraRoute opens the camera; taskID is required in complete mode.
func CameraRoute(mode domain.CaptureMode, taskID string) Route {
	return Route{Destination: Camera, Mode: mode, TaskID: taskID}
}

// Validate checks that the route carries what its destination needs.
func (r Route) Validate() error {
	switch r.Destination {
	case Main, CreateTask:
		return nil
	case Detail:
		if r.TaskID == "" {
			return domain.NewError(domain.ErrCodeInvalid, "detail route requires a task id")
		}
		return nil
	case Camera:
		if _, err := domain.ParseCaptureMode(string(r.Mode)); err != nil {
			return err
		}
		if r.Mode == domain.CaptureComplete && r.TaskID == "" {
			return domain.NewError(domain.ErrCodeInvalid, "complete capture requires a task id")
		}
		return nil
	default:
		return domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unknown destination %q", r.Destination))
	}
}

// Navigator is a stack of routes rooted at Main.
type Navigator struct {
	mu    sync.Mutex
	stack []Route
}

func NewNavigator() *Navigator {
	return &Navigator{stack: []Route{MainRoute()}}
}

// Navigate pushes a route.
func (n *Navigator) Navigate(r Route) error {
	if err := r.Validate(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = append(n.stack, r)
	return nil
}

// Replace swaps the top route, keeping the stack depth.
func (n *Navigator) Replace(r Route) error {
	if err := r.Validate(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) == 1 {
		n.stack = append(n.stack, r)
		return nil
	}
	n.stack[len(n.stack)-1] = r
	return nil
}

// Back pops the top route. The root is never popped.
func (n *Navigator) Back() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) > 1 {
		n.stack = n.stack[:len(n.stack)-1]
	}
	return n.stack[len(n.stack)-1]
}

// Reset drops everything above the root.
func (n *Navigator) Reset() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = n.stack[:1]
	return n.stack[0]
}

func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack[len(n.stack)-1]
}

func (n *Navigator) Depth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stack)
}
