package views

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fastygo/taskproof/internal/capture"
	"github.com/fastygo/taskproof/internal/detail"
	"github.com/fastygo/taskproof/repository/memory"
	captureuc "github.com/fastygo/taskproof/usecase/capture"
	feeduc "github.com/fastygo/taskproof/usecase/feed"
	taskuc "github.com/fastygo/taskproof/usecase/task"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type stillClock struct{}

func (stillClock) Now() time.Time                         { return now }
func (stillClock) NewTicker(time.Duration) detail.Ticker { return stillTicker{} }

type stillTicker struct{}

func (stillTicker) C() <-chan time.Time { return nil }
func (stillTicker) Stop()               {}

func newDeps(t *testing.T, camera capture.Camera) (Deps, *memory.Store) {
	t.Helper()
	store := memory.New()
	if err := store.Seed(context.Background(), memory.DemoFixtures(now)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if camera == nil {
		camera = capture.NewSimulated(capture.SimulatedConfig{BaseURL: "https://img.test"}, nil)
	}
	tasks := taskuc.New(store, store.Users(), nil, nil, taskuc.WithClock(func() time.Time { return now }))
	deps := Deps{
		Viewer: memory.DemoViewer,
		Feed:   feeduc.New(store, store.Users(), store, nil),
		Tasks:  tasks,
		Camera: captureuc.New(camera, tasks, nil),
		Detail: detail.Options{Clock: stillClock{}},
		Now:    func() time.Time { return now },
	}
	return deps, store
}

// collect runs cmd and returns every message it produces, flattening batches.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// find returns the first message of type T produced by cmd.
func find[T any](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	for _, msg := range collect(cmd) {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T produced", zero)
	return zero
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
