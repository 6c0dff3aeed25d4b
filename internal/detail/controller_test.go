package detail

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/navigation"
)

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTicker(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 1)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	tickers := append([]*fakeTicker(nil), f.tickers...)
	f.mu.Unlock()
	for _, t := range tickers {
		if t.isStopped() {
			continue
		}
		select {
		case t.ch <- now:
		default:
		}
	}
}

func (f *fakeClock) ticker(i int) *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[i]
}

var start = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sequence() []domain.StoryItem {
	end := start.Add(-30 * time.Minute)
	return []domain.StoryItem{
		{IsMyTask: true, Task: domain.TaskWithUser{Task: domain.Task{
			ID: "a", UserID: "me", TargetTime: 30, StartTime: start.Add(-20 * time.Minute),
		}}},
		{IsMyTask: true, Task: domain.TaskWithUser{Task: domain.Task{
			ID: "b", UserID: "me", TargetTime: 120, StartTime: start.Add(-2 * time.Hour),
			EndTime: &end, EndImage: "end.png", IsCompleted: true,
		}}},
		{Task: domain.TaskWithUser{Task: domain.Task{
			ID: "c", UserID: "friend", TargetTime: 60, StartTime: start.Add(-45 * time.Minute),
		}, User: domain.UserSummary{ID: "friend", Nickname: "F1"}}},
	}
}

func nextUpdate(t *testing.T, c *Controller) View {
	t.Helper()
	select {
	case v := <-c.Updates():
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return View{}
	}
}

func TestOpenComputesImmediately(t *testing.T) {
	clock := newFakeClock(start)
	c := New(sequence(), Options{Clock: clock})
	defer c.Close()

	if err := c.Open("a"); err != nil {
		t.Fatalf("open: %v", err)
	}
	v := nextUpdate(t, c)
	if v.Index != 0 || v.Total != 3 {
		t.Fatalf("unexpected position %d/%d", v.Index, v.Total)
	}
	if v.Progress.ElapsedMinutes != 20 || v.Progress.Percentage != 66 || v.Progress.Exceeded {
		t.Fatalf("unexpected progress %+v", v.Progress)
	}
}

func TestTickRecomputesElapsed(t *testing.T) {
	clock := newFakeClock(start)
	c := New(sequence(), Options{Clock: clock})
	defer c.Close()

	if err := c.Open("a"); err != nil {
		t.Fatalf("open: %v", err)
	}
	nextUpdate(t, c)

	clock.Advance(time.Second)
	v := nextUpdate(t, c)
	if v.Progress.ElapsedMinutes != 20 || v.Progress.ElapsedSeconds != 1 {
		t.Fatalf("expected 20m1s, got %dm%ds", v.Progress.ElapsedMinutes, v.Progress.ElapsedSeconds)
	}
}

func TestOpenUnknownTaskIsNotFound(t *testing.T) {
	c := New(sequence(), Options{Clock: newFakeClock(start)})
	defer c.Close()

	err := c.Open("missing")
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if c.PendingTimers() != 0 {
		t.Fatal("no timer should start for a missing task")
	}
}

func TestFinishedTaskHasNoTimer(t *testing.T) {
	c := New(sequence(), Options{Clock: newFakeClock(start)})
	defer c.Close()

	if err := c.Open("b"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if c.PendingTimers() != 0 {
		t.Fatalf("completed task should not poll, pending=%d", c.PendingTimers())
	}
	if got := c.Current().Progress.ElapsedMinutes; got != 90 {
		t.Fatalf("completed task elapsed should freeze at 90, got %d", got)
	}
}

func TestMountThenUnmountLeavesNoTimers(t *testing.T) {
	clock := newFakeClock(start)
	c := New(sequence(), Options{Clock: clock})
	if err := c.Open("a"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if c.PendingTimers() != 1 {
		t.Fatalf("expected one timer, got %d", c.PendingTimers())
	}
	c.Close()
	if c.PendingTimers() != 0 {
		t.Fatalf("expected zero timers after close, got %d", c.PendingTimers())
	}
	if !clock.ticker(0).isStopped() {
		t.Fatal("ticker should be stopped")
	}
	if err := c.Open("a"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestSwitchingTasksDoesNotStackTimers(t *testing.T) {
	clock := newFakeClock(start)
	c := New(sequence(), Options{Clock: clock})
	defer c.Close()

	_ = c.Open("a")
	_ = c.Open("c")
	_ = c.Open("a")
	if c.PendingTimers() != 1 {
		t.Fatalf("expected one timer, got %d", c.PendingTimers())
	}
	if !clock.ticker(0).isStopped() || !clock.ticker(1).isStopped() {
		t.Fatal("superseded tickers should be stopped")
	}
	if clock.ticker(2).isStopped() {
		t.Fatal("current ticker should be running")
	}
}

func TestSwipeNavigation(t *testing.T) {
	cases := []struct {
		name        string
		from        string
		translation float64
		wantID      string
		wantDir     Direction
	}{
		{"right wraps to last", "a", 150, "c", DirectionPrevious},
		{"left advances", "a", -150, "b", DirectionNext},
		{"left wraps to first", "c", -150, "a", DirectionNext},
		{"right goes back", "c", 150, "b", DirectionPrevious},
		{"short right stays", "a", 50, "a", DirectionNone},
		{"short left stays", "a", -50, "a", DirectionNone},
		{"exact threshold stays", "a", 100, "a", DirectionNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(sequence(), Options{Clock: newFakeClock(start)})
			defer c.Close()
			if err := c.Open(tc.from); err != nil {
				t.Fatalf("open: %v", err)
			}

			c.Drag(tc.translation)
			if state, _ := c.Gesture(); state != Dragging {
				t.Fatalf("expected dragging, got %s", state)
			}
			res := c.Release()

			if res.Direction != tc.wantDir {
				t.Fatalf("direction = %s, want %s", res.Direction, tc.wantDir)
			}
			if got := c.Current().Item.Task.ID; got != tc.wantID {
				t.Fatalf("current = %s, want %s", got, tc.wantID)
			}
			if res.Navigated {
				if res.Route.Destination != navigation.Detail || res.Route.TaskID != tc.wantID {
					t.Fatalf("unexpected route %+v", res.Route)
				}
			}
			state, offset := c.Gesture()
			if state != Settled || offset != 0 {
				t.Fatalf("gesture should spring back, got %s %v", state, offset)
			}
		})
	}
}

func TestSwipeRouteCarriesOwnership(t *testing.T) {
	c := New(sequence(), Options{Clock: newFakeClock(start)})
	defer c.Close()
	_ = c.Open("b")

	c.Drag(-200)
	res := c.Release()
	if !res.Navigated || res.Route.TaskID != "c" || res.Route.IsMyTask {
		t.Fatalf("unexpected route %+v", res.Route)
	}
	if c.PendingTimers() != 1 {
		t.Fatalf("swiping onto an active task should start polling, pending=%d", c.PendingTimers())
	}
}

func TestReleaseWithoutDragIsNoop(t *testing.T) {
	c := New(sequence(), Options{Clock: newFakeClock(start)})
	defer c.Close()
	_ = c.Open("a")
	if res := c.Release(); res.Navigated {
		t.Fatal("release without drag must not navigate")
	}
}

func TestResolveProperty(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for i := 0; i < n; i++ {
			if got, _ := Resolve(i, n, 150); got != (i-1+n)%n {
				t.Fatalf("Resolve(%d,%d,+150)=%d", i, n, got)
			}
			if got, _ := Resolve(i, n, -150); got != (i+1)%n {
				t.Fatalf("Resolve(%d,%d,-150)=%d", i, n, got)
			}
			if got, dir := Resolve(i, n, 50); got != i || dir != DirectionNone {
				t.Fatalf("Resolve(%d,%d,+50)=%d", i, n, got)
			}
			if got, dir := Resolve(i, n, -50); got != i || dir != DirectionNone {
				t.Fatalf("Resolve(%d,%d,-50)=%d", i, n, got)
			}
		}
	}
}

func TestSetSequenceKeepsCurrentTask(t *testing.T) {
	c := New(sequence(), Options{Clock: newFakeClock(start)})
	defer c.Close()
	_ = c.Open("c")

	items := sequence()
	reordered := []domain.StoryItem{items[2], items[0]}
	if err := c.SetSequence(reordered); err != nil {
		t.Fatalf("set sequence: %v", err)
	}
	if v := c.Current(); v.Index != 0 || v.Item.Task.ID != "c" || v.Total != 2 {
		t.Fatalf("unexpected view after reorder %+v", v)
	}

	if err := c.SetSequence(items[:2]); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected not found when current task disappears, got %v", err)
	}
	if c.PendingTimers() != 0 {
		t.Fatal("timer should stop when the current task disappears")
	}
}
