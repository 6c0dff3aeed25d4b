package cli

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskproof/repository"
	"github.com/fastygo/taskproof/repository/memory"
)

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"tui": false, "migrate": false, "seed": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected %s command to be registered", name)
		}
	}
}

func TestMigrateStepsFlag(t *testing.T) {
	flag := migrateCmd.Flags().Lookup("steps")
	if flag == nil {
		t.Fatal("expected --steps flag")
	}
	if flag.DefValue != "0" {
		t.Errorf("expected default 0, got %s", flag.DefValue)
	}
}

func TestTUIFlags(t *testing.T) {
	if f := tuiCmd.Flags().Lookup("demo"); f == nil || f.DefValue != "true" {
		t.Errorf("expected --demo to default to true")
	}
	if f := tuiCmd.Flags().Lookup("user"); f == nil || f.DefValue != memory.DemoViewer {
		t.Errorf("expected --user to default to the demo viewer")
	}
}

func TestSeedIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	b := &backend{Tasks: store, Users: store.Users(), Views: store}
	f := memory.DemoFixtures(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	created, err := seed(ctx, b, f, zap.NewNop())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if created != len(f.Tasks) {
		t.Errorf("expected %d tasks created, got %d", len(f.Tasks), created)
	}

	created, err = seed(ctx, b, memory.DemoFixtures(time.Now()), zap.NewNop())
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if created != 0 {
		t.Errorf("expected existing tasks to be skipped, got %d created", created)
	}

	friends, err := b.Users.ListFriends(ctx, memory.DemoViewer)
	if err != nil || len(friends) != 2 {
		t.Errorf("expected 2 friends, got %d (%v)", len(friends), err)
	}
	viewed, _ := b.Views.Viewed(ctx, memory.DemoViewer, []string{"4"})
	if !viewed["4"] {
		t.Error("expected fixture view marks applied")
	}
	tasks, _ := b.Tasks.List(ctx, repository.TaskFilter{UserIDs: []string{memory.DemoViewer}})
	if len(tasks) != 2 {
		t.Errorf("expected 2 tasks for the viewer, got %d", len(tasks))
	}
}

func TestDemoBackend(t *testing.T) {
	b, err := demoBackend(context.Background(), memory.DemoFixtures(time.Now()))
	if err != nil {
		t.Fatalf("demo backend: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if _, err := b.Tasks.GetByID(context.Background(), "1"); err != nil {
		t.Errorf("expected seeded task: %v", err)
	}
}
