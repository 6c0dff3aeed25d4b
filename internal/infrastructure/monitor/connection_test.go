package monitor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRefresh(t *testing.T) {
	pgUp := true
	m := New(Probes{
		Postgres: func(context.Context) error {
			if pgUp {
				return nil
			}
			return errors.New("refused")
		},
		BufferSize: func() (int, error) { return 7, nil },
	}, time.Hour, nil)

	status := m.Refresh(context.Background())
	if !status.PostgreSQL || status.Redis || !status.Buffer || status.BufferSize != 7 {
		t.Fatalf("unexpected status %+v", status)
	}
	if !m.IsOnline() {
		t.Fatal("expected online")
	}

	pgUp = false
	status = m.Refresh(context.Background())
	if m.IsOnline() || !status.Healthy() {
		t.Fatalf("expected offline but healthy through the buffer, got %+v", status)
	}
}

func TestStartStop(t *testing.T) {
	m := New(Probes{}, time.Millisecond, nil)
	m.Start()
	m.Stop()
	m.Stop()
	if m.GetStatus().LastCheck.IsZero() {
		t.Fatal("loop should refresh before stopping")
	}
}
