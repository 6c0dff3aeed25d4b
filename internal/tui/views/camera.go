package views

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/navigation"
	"github.com/fastygo/taskproof/internal/tui/msgs"
	"github.com/fastygo/taskproof/internal/tui/styles"
	"github.com/fastygo/taskproof/usecase/capture"
)

type cameraState int

const (
	cameraCapturing cameraState = iota
	cameraPreview
	cameraConfirming
	cameraFailed
)

type photoTakenMsg struct {
	attempt int
	photo   domain.Photo
	err     error
}

type photoConfirmedMsg struct {
	result *capture.Result
	err    error
}

// CameraModel takes a start or completion photo and hands it on.
type CameraModel struct {
	deps    Deps
	mode    domain.CaptureMode
	taskID  string
	state   cameraState
	spinner spinner.Model
	photo   domain.Photo
	err     error
	attempt int
	cancel  context.CancelFunc
	pending tea.Cmd
	width   int
	height  int
}

// NewCameraModel creates the camera screen and arms the first capture.
func NewCameraModel(deps Deps, mode domain.CaptureMode, taskID string) CameraModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	m := CameraModel{
		deps:    deps.WithDefaults(),
		mode:    mode,
		taskID:  taskID,
		spinner: s,
	}
	m.pending = m.startCapture()
	return m
}

// Init implements tea.Model.
func (m CameraModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.pending)
}

func (m *CameraModel) startCapture() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.attempt++
	m.state = cameraCapturing
	m.err = nil
	m.photo = domain.Photo{}

	deps, mode, taskID, attempt := m.deps, m.mode, m.taskID, m.attempt
	return func() tea.Msg {
		photo, err := deps.Camera.Capture(ctx, deps.Viewer, mode, taskID)
		return photoTakenMsg{attempt: attempt, photo: photo, err: err}
	}
}

// Close cancels a capture in flight.
func (m CameraModel) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Photo returns the captured photo, if any.
func (m CameraModel) Photo() domain.Photo {
	return m.photo
}

// Update handles messages for the camera screen.
func (m CameraModel) Update(msg tea.Msg) (CameraModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.state != cameraCapturing && m.state != cameraConfirming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case photoTakenMsg:
		if msg.attempt != m.attempt {
			return m, nil
		}
		if msg.err != nil {
			m.state = cameraFailed
			m.err = msg.err
			return m, nil
		}
		m.state = cameraPreview
		m.photo = msg.photo
		return m, nil

	case photoConfirmedMsg:
		if msg.err != nil {
			m.state = cameraPreview
			m.err = msg.err
			return m, nil
		}
		return m, next(msg.result, m.photo)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m CameraModel) handleKey(msg tea.KeyMsg) (CameraModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Close()
		return m, func() tea.Msg { return msgs.GoBackMsg{} }
	case "r":
		if m.state == cameraPreview || m.state == cameraFailed {
			cmd := m.startCapture()
			return m, tea.Batch(m.spinner.Tick, cmd)
		}
	case "enter":
		if m.state == cameraPreview {
			m.state = cameraConfirming
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.confirm())
		}
	}
	return m, nil
}

func (m CameraModel) confirm() tea.Cmd {
	deps, mode, taskID, photo := m.deps, m.mode, m.taskID, m.photo
	return func() tea.Msg {
		ctx, cancel := deps.context()
		defer cancel()
		res, err := deps.Camera.Confirm(ctx, deps.Viewer, mode, taskID, photo)
		return photoConfirmedMsg{result: res, err: err}
	}
}

func next(res *capture.Result, photo domain.Photo) tea.Cmd {
	switch res.Next.Destination {
	case navigation.CreateTask:
		return func() tea.Msg { return msgs.GoToCreateTaskMsg{Photo: photo} }
	default:
		notice := ""
		if res.Task != nil {
			notice = "Completed " + res.Task.Title
		}
		return func() tea.Msg { return msgs.GoToMainMsg{Notice: notice} }
	}
}

// View renders the camera screen.
func (m CameraModel) View() string {
	var b strings.Builder
	title := "Start photo"
	if m.mode == domain.CaptureComplete {
		title = "Completion photo"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")

	switch m.state {
	case cameraCapturing:
		b.WriteString(m.spinner.View() + " Taking photo...")
		b.WriteString("\n\n")
		b.WriteString(styles.SubtleStyle.Render("esc cancel"))
	case cameraConfirming:
		b.WriteString(m.spinner.View() + " Saving...")
	case cameraPreview:
		b.WriteString(styles.BoxStyle.Render(m.photo.URI))
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(styles.ErrorStyle.Render(m.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(styles.SubtleStyle.Render("enter use photo  r retake  esc cancel"))
	case cameraFailed:
		b.WriteString(styles.ErrorStyle.Render(failureText(m.err)))
		b.WriteString("\n\n")
		b.WriteString(styles.SubtleStyle.Render("r retry  esc back"))
	}
	return b.String()
}

func failureText(err error) string {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return "Camera access was denied."
	case domain.IsDomainError(err, domain.ErrCodeCanceled):
		return "Capture canceled."
	case err != nil:
		return err.Error()
	default:
		return "Capture failed."
	}
}
