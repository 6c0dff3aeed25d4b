// Package detail drives the task detail screen: a per-second elapsed-time
// poller for the active task and swipe navigation across a cyclic sequence.
package detail

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/navigation"
	"github.com/fastygo/taskproof/internal/progress"
)

// ErrClosed is returned when a torn-down controller is reused.
var ErrClosed = errors.New("detail controller closed")

// Options tune a Controller. Zero values fall back to defaults.
type Options struct {
	Clock    Clock
	Interval time.Duration
	Radius   float64
	Logger   *zap.Logger
}

// View is what the detail screen renders.
type View struct {
	Item     domain.StoryItem  `json:"item"`
	Index    int               `json:"index"`
	Total    int               `json:"total"`
	Progress progress.Snapshot `json:"progress"`
}

// SwipeResult reports what a released gesture did.
type SwipeResult struct {
	Direction Direction
	Navigated bool
	Route     navigation.Route
}

// Controller owns the state of one detail view instance.
type Controller struct {
	clock    Clock
	interval time.Duration
	radius   float64
	logger   *zap.Logger

	mu          sync.Mutex
	items       []domain.StoryItem
	index       int
	view        View
	swipe       SwipeState
	translation float64
	stopTimer   func()
	pending     int
	closed      bool
	updates     chan View
}

// New builds a controller over an ordered task sequence. Call Open to select a task.
func New(items []domain.StoryItem, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Radius <= 0 {
		opts.Radius = progress.DefaultRadius
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		clock:    opts.Clock,
		interval: opts.Interval,
		radius:   opts.Radius,
		logger:   opts.Logger,
		items:    append([]domain.StoryItem(nil), items...),
		index:    -1,
		updates:  make(chan View, 1),
	}
}

// Open selects the task with the given id and (re)starts polling if it is active.
func (c *Controller) Open(taskID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	idx := c.indexOfLocked(taskID)
	if idx < 0 {
		return domain.ErrTaskNotFound
	}
	c.selectLocked(idx)
	return nil
}

// SetSequence replaces the task sequence, keeping the current task when it is still present.
func (c *Controller) SetSequence(items []domain.StoryItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	var currentID string
	if c.index >= 0 {
		currentID = c.items[c.index].Task.ID
	}
	c.items = append([]domain.StoryItem(nil), items...)
	if currentID == "" {
		return nil
	}
	idx := c.indexOfLocked(currentID)
	if idx < 0 {
		c.stopTimerLocked()
		c.index = -1
		c.view = View{}
		return domain.ErrTaskNotFound
	}
	c.selectLocked(idx)
	return nil
}

// Current returns the latest computed view.
func (c *Controller) Current() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Updates delivers recomputed views. Only the latest unread value is kept.
func (c *Controller) Updates() <-chan View {
	return c.updates
}

// Drag records the horizontal translation of an in-progress gesture.
func (c *Controller) Drag(translation float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.swipe = Dragging
	c.translation = translation
}

// Release ends the gesture. The offset always springs back to zero.
func (c *Controller) Release() SwipeResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.swipe != Dragging {
		return SwipeResult{}
	}
	translation := c.translation
	c.swipe = Settled
	c.translation = 0

	if c.closed || c.index < 0 {
		return SwipeResult{}
	}
	next, dir := Resolve(c.index, len(c.items), translation)
	if dir == DirectionNone {
		return SwipeResult{}
	}
	c.selectLocked(next)
	c.logger.Debug("detail swipe",
		zap.String("direction", dir.String()),
		zap.String("task_id", c.items[next].Task.ID))
	return SwipeResult{
		Direction: dir,
		Navigated: true,
		Route:     navigation.DetailRoute(c.items[next]),
	}
}

// Gesture reports the swipe state and current translation.
func (c *Controller) Gesture() (SwipeState, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.swipe, c.translation
}

// PendingTimers reports how many polling timers are live.
func (c *Controller) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Close tears the view down and cancels polling.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimerLocked()
	c.closed = true
	close(c.updates)
}

func (c *Controller) indexOfLocked(taskID string) int {
	for i, item := range c.items {
		if item.Task.ID == taskID {
			return i
		}
	}
	return -1
}

func (c *Controller) selectLocked(idx int) {
	c.stopTimerLocked()
	c.index = idx
	c.refreshLocked()
	if c.items[idx].Task.IsActive() {
		c.startTimerLocked()
	}
}

func (c *Controller) refreshLocked() {
	item := c.items[c.index]
	c.view = View{
		Item:     item,
		Index:    c.index,
		Total:    len(c.items),
		Progress: progress.Compute(item.Task.Task, c.clock.Now(), c.radius),
	}
	select {
	case <-c.updates:
	default:
	}
	c.updates <- c.view
}

func (c *Controller) startTimerLocked() {
	ticker := c.clock.NewTicker(c.interval)
	done := make(chan struct{})
	c.stopTimer = func() {
		close(done)
		ticker.Stop()
	}
	c.pending++
	go c.poll(ticker, done)
}

func (c *Controller) stopTimerLocked() {
	if c.stopTimer == nil {
		return
	}
	c.stopTimer()
	c.stopTimer = nil
	c.pending--
}

func (c *Controller) poll(ticker Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C():
			c.mu.Lock()
			select {
			case <-done:
				// superseded while waiting for the lock
				c.mu.Unlock()
				return
			default:
			}
			c.refreshLocked()
			c.mu.Unlock()
		}
	}
}
