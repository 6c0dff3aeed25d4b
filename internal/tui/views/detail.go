package views

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/detail"
	"github.com/fastygo/taskproof/internal/progress"
	"github.com/fastygo/taskproof/internal/tui/msgs"
	"github.com/fastygo/taskproof/internal/tui/styles"
)

// keySwipe is the drag distance a single arrow key press stands for.
const keySwipe = detail.SwipeThreshold * 1.5

type detailTickMsg struct {
	ctl  *detail.Controller
	view detail.View
}

type sequenceMsg struct {
	items  []domain.StoryItem
	notice string
	err    error
}

type taskDeletedMsg struct {
	err error
}

type pendingAction int

const (
	actionNone pendingAction = iota
	actionAbandon
	actionDelete
)

// DetailModel shows one task with a live elapsed-time readout. Left and right
// swipe through the feed sequence.
type DetailModel struct {
	deps    Deps
	ctl     *detail.Controller
	view    detail.View
	confirm pendingAction
	notice  string
	err     error
	width   int
	height  int
}

// NewDetailModel loads the feed sequence and opens taskID in it.
func NewDetailModel(deps Deps, taskID string) DetailModel {
	deps = deps.WithDefaults()
	m := DetailModel{deps: deps}

	ctx, cancel := deps.context()
	defer cancel()
	items, err := deps.Feed.Sequence(ctx, deps.Viewer)
	if err != nil {
		m.err = err
		return m
	}
	m.ctl = detail.New(items, deps.Detail)
	if err := m.ctl.Open(taskID); err != nil {
		m.err = err
		return m
	}
	m.view = m.ctl.Current()
	return m
}

// Init implements tea.Model.
func (m DetailModel) Init() tea.Cmd {
	if m.ctl == nil || m.err != nil {
		return nil
	}
	return tea.Batch(waitForView(m.ctl), m.markViewed(m.view.Item))
}

func waitForView(ctl *detail.Controller) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ctl.Updates()
		if !ok {
			return nil
		}
		return detailTickMsg{ctl: ctl, view: v}
	}
}

func (m DetailModel) markViewed(item domain.StoryItem) tea.Cmd {
	if item.IsMyTask {
		return nil
	}
	deps := m.deps
	taskID := item.Task.ID
	return func() tea.Msg {
		ctx, cancel := deps.context()
		defer cancel()
		if err := deps.Feed.MarkViewed(ctx, deps.Viewer, taskID); err != nil {
			deps.Logger.Debug("mark viewed failed", zap.String("task_id", taskID), zap.Error(err))
		}
		return nil
	}
}

// Close stops the controller's polling timer.
func (m DetailModel) Close() {
	if m.ctl != nil {
		m.ctl.Close()
	}
}

// Current returns the rendered view state.
func (m DetailModel) Current() detail.View {
	return m.view
}

// Err reports why the screen has nothing to show.
func (m DetailModel) Err() error {
	return m.err
}

// Update handles messages for the detail screen.
func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case detailTickMsg:
		if msg.ctl != m.ctl {
			return m, nil
		}
		m.view = msg.view
		return m, waitForView(m.ctl)

	case sequenceMsg:
		if msg.err != nil {
			m.notice = ""
			m.err = msg.err
			return m, nil
		}
		if err := m.ctl.SetSequence(msg.items); err != nil {
			m.view = detail.View{}
			m.err = err
			return m, nil
		}
		m.view = m.ctl.Current()
		m.notice = msg.notice
		return m, nil

	case taskDeletedMsg:
		if msg.err != nil {
			m.notice = ""
			m.err = msg.err
			return m, nil
		}
		return m, func() tea.Msg { return msgs.GoToMainMsg{Notice: "Task deleted"} }

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DetailModel) handleKey(msg tea.KeyMsg) (DetailModel, tea.Cmd) {
	key := msg.String()
	if key == "esc" || key == "backspace" {
		return m, func() tea.Msg { return msgs.GoBackMsg{} }
	}
	if m.ctl == nil || m.view.Item.Task.ID == "" {
		return m, nil
	}

	if m.confirm != actionNone {
		action := m.confirm
		m.confirm = actionNone
		if key != "y" {
			return m, nil
		}
		switch action {
		case actionAbandon:
			return m, m.abandon(m.view.Item.Task.ID)
		case actionDelete:
			return m, m.delete(m.view.Item.Task.ID)
		}
		return m, nil
	}

	item := m.view.Item
	switch key {
	case "left", "h":
		return m.swipe(keySwipe)
	case "right", "l":
		return m.swipe(-keySwipe)
	case "c":
		if item.IsMyTask && item.Task.IsActive() {
			taskID := item.Task.ID
			return m, func() tea.Msg { return msgs.GoToCameraMsg{Mode: domain.CaptureComplete, TaskID: taskID} }
		}
	case "a":
		if item.IsMyTask && item.Task.IsActive() {
			m.confirm = actionAbandon
		}
	case "d":
		if item.IsMyTask && item.Task.IsCompleted {
			m.confirm = actionDelete
		}
	}
	return m, nil
}

func (m DetailModel) swipe(translation float64) (DetailModel, tea.Cmd) {
	m.ctl.Drag(translation)
	res := m.ctl.Release()
	if !res.Navigated {
		return m, nil
	}
	m.view = m.ctl.Current()
	m.notice = ""
	m.err = nil
	route := res.Route
	return m, tea.Batch(
		func() tea.Msg { return msgs.ReplaceRouteMsg{Route: route} },
		m.markViewed(m.view.Item),
	)
}

func (m DetailModel) abandon(taskID string) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx, cancel := deps.context()
		defer cancel()
		if _, err := deps.Tasks.AbandonTask(ctx, deps.Viewer, taskID); err != nil {
			return sequenceMsg{err: err}
		}
		items, err := deps.Feed.Sequence(ctx, deps.Viewer)
		return sequenceMsg{items: items, notice: "Task abandoned", err: err}
	}
}

func (m DetailModel) delete(taskID string) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx, cancel := deps.context()
		defer cancel()
		return taskDeletedMsg{err: deps.Tasks.DeleteTask(ctx, deps.Viewer, taskID)}
	}
}

// View renders the detail screen.
func (m DetailModel) View() string {
	var b strings.Builder
	if m.ctl == nil || m.view.Item.Task.ID == "" {
		b.WriteString(styles.TitleStyle.Render("Task"))
		b.WriteString("\n")
		if errors.Is(m.err, domain.ErrTaskNotFound) || m.err == nil {
			b.WriteString(styles.ErrorStyle.Render("Task not found"))
		} else {
			b.WriteString(styles.ErrorStyle.Render(m.err.Error()))
		}
		b.WriteString("\n\n")
		b.WriteString(styles.SubtleStyle.Render("esc back"))
		return b.String()
	}

	item := m.view.Item
	snap := m.view.Progress
	t := item.Task

	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("%s  %d/%d", t.Title, m.view.Index+1, m.view.Total)))
	b.WriteString("\n")
	b.WriteString(styles.Dot(progress.StoryStatusColor(item)) + " " + ownerLabel(item) + "  " + statusLabel(t.Task))
	b.WriteString("\n")
	if t.Description != "" {
		b.WriteString(styles.SubtleStyle.Render(t.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.Colored(snap.Color, snap.Elapsed))
	b.WriteString(styles.SubtleStyle.Render("  target " + snap.Target))
	b.WriteString("\n")
	b.WriteString(styles.ProgressBar(snap.Percentage, 30, snap.Color))
	b.WriteString(fmt.Sprintf(" %3d%%", snap.Percentage))
	b.WriteString("\n")
	if snap.Exceeded {
		b.WriteString(styles.ErrorStyle.Render("Over the target time"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.SubtleStyle.Render("start  " + t.StartImage))
	b.WriteString("\n")
	if t.EndImage != "" {
		b.WriteString(styles.SubtleStyle.Render("end    " + t.EndImage))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.confirm == actionAbandon:
		b.WriteString(styles.ErrorStyle.Render("Abandon this task? y to confirm"))
	case m.confirm == actionDelete:
		b.WriteString(styles.ErrorStyle.Render("Delete this task? y to confirm"))
	case m.err != nil:
		b.WriteString(styles.ErrorStyle.Render(m.err.Error()))
	case m.notice != "":
		b.WriteString(styles.SuccessStyle.Render(m.notice))
	}
	b.WriteString("\n")
	b.WriteString(styles.SubtleStyle.Render(m.help()))
	return b.String()
}

func (m DetailModel) help() string {
	keys := []string{"←/→ swipe"}
	item := m.view.Item
	if item.IsMyTask && item.Task.IsActive() {
		keys = append(keys, "c complete", "a abandon")
	}
	if item.IsMyTask && item.Task.IsCompleted {
		keys = append(keys, "d delete")
	}
	keys = append(keys, "esc back")
	return strings.Join(keys, "  ")
}

func statusLabel(t domain.Task) string {
	switch {
	case t.IsCompleted:
		return styles.Colored(progress.ColorCompleted, "completed")
	case t.IsAbandoned:
		return styles.Colored(progress.ColorAbandoned, "abandoned")
	default:
		return "in progress"
	}
}
