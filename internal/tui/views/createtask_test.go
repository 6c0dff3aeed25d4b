package views

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/tui/msgs"
	"github.com/fastygo/taskproof/repository"
)

var startPhoto = domain.Photo{URI: "https://img.test/start", Mode: domain.CaptureStart}

func TestCreateTaskSubmits(t *testing.T) {
	deps, store := newDeps(t, nil)
	m := NewCreateTaskModel(deps, startPhoto)

	m, _ = m.Update(runes("Read"))
	m, _ = m.Update(key(tea.KeyTab))
	m, _ = m.Update(runes("Chapter four"))
	m, _ = m.Update(key(tea.KeyTab))
	m, _ = m.Update(runes("1"))
	m, _ = m.Update(key(tea.KeyEnter))
	m, _ = m.Update(runes("30"))
	if m.Focused() != fieldMinutes {
		t.Fatalf("expected minutes focused, got %d", m.Focused())
	}

	m, cmd := m.Update(key(tea.KeyEnter))
	if !m.submitting {
		t.Error("expected submitting state")
	}
	_, cmd = m.Update(find[taskCreatedMsg](t, cmd))

	got := find[msgs.GoToMainMsg](t, cmd)
	if got.Notice != "Started Read" {
		t.Errorf("unexpected notice %q", got.Notice)
	}

	tasks, err := store.List(context.Background(), repository.TaskFilter{UserIDs: []string{deps.Viewer}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var created *domain.Task
	for i := range tasks {
		if tasks[i].Title == "Read" {
			created = &tasks[i]
		}
	}
	if created == nil {
		t.Fatal("expected the task to be stored")
	}
	if created.TargetTime != 90 || created.StartImage != startPhoto.URI || created.Description != "Chapter four" {
		t.Errorf("unexpected task %+v", created)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	deps, _ := newDeps(t, nil)
	m := NewCreateTaskModel(deps, startPhoto)

	m, cmd := m.Update(key(tea.KeyCtrlS))
	m, _ = m.Update(find[taskCreatedMsg](t, cmd))

	if m.FieldError("title") == "" {
		t.Error("expected a title error")
	}
	if m.FieldError("target_time") == "" {
		t.Error("expected a target time error")
	}
	if m.submitting {
		t.Error("expected the form to be editable again")
	}
}

func TestCreateTaskRejectsNonNumericDuration(t *testing.T) {
	deps, _ := newDeps(t, nil)
	m := NewCreateTaskModel(deps, startPhoto)

	m, _ = m.Update(runes("Walk"))
	m, _ = m.Update(key(tea.KeyTab))
	m, _ = m.Update(key(tea.KeyTab))
	m, _ = m.Update(runes("x"))

	m, cmd := m.Update(key(tea.KeyCtrlS))
	if cmd != nil {
		t.Error("expected no submission")
	}
	if m.FieldError("target_hours") != "enter a number" {
		t.Errorf("unexpected hours error %q", m.FieldError("target_hours"))
	}
}

func TestCreateTaskFocusWraps(t *testing.T) {
	deps, _ := newDeps(t, nil)
	m := NewCreateTaskModel(deps, startPhoto)

	m, _ = m.Update(key(tea.KeyShiftTab))
	if m.Focused() != fieldMinutes {
		t.Errorf("expected focus to wrap to the last field, got %d", m.Focused())
	}
	m, _ = m.Update(key(tea.KeyTab))
	if m.Focused() != fieldTitle {
		t.Errorf("expected focus to wrap to the first field, got %d", m.Focused())
	}
}

func TestCreateTaskCancel(t *testing.T) {
	deps, _ := newDeps(t, nil)
	m := NewCreateTaskModel(deps, startPhoto)

	_, cmd := m.Update(key(tea.KeyEsc))
	find[msgs.GoBackMsg](t, cmd)
}
