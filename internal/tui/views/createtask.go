package views

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/tui/msgs"
	"github.com/fastygo/taskproof/internal/tui/styles"
	"github.com/fastygo/taskproof/usecase/task"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldHours
	fieldMinutes
	fieldCount
)

var fieldNames = [fieldCount]string{"title", "description", "target_hours", "target_minutes"}

type taskCreatedMsg struct {
	task *domain.Task
	err  error
}

// CreateTaskModel is the form that starts a task from a confirmed start photo.
type CreateTaskModel struct {
	deps       Deps
	photo      domain.Photo
	inputs     [fieldCount]textinput.Model
	focus      int
	fieldErrs  map[string]string
	err        error
	submitting bool
	width      int
	height     int
}

// NewCreateTaskModel creates the form for the given start photo.
func NewCreateTaskModel(deps Deps, photo domain.Photo) CreateTaskModel {
	m := CreateTaskModel{
		deps:      deps.WithDefaults(),
		photo:     photo,
		fieldErrs: map[string]string{},
	}

	placeholders := [fieldCount]string{"What are you doing?", "Details (optional)", "0", "30"}
	limits := [fieldCount]int{task.MaxTitleLength, task.MaxDescriptionLength, 2, 2}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = 40
		m.inputs[i] = ti
	}
	m.inputs[fieldTitle].Focus()
	return m
}

// Init implements tea.Model.
func (m CreateTaskModel) Init() tea.Cmd {
	return textinput.Blink
}

// FieldError returns the message shown under a field.
func (m CreateTaskModel) FieldError(field string) string {
	return m.fieldErrs[field]
}

// Focused returns the index of the focused input.
func (m CreateTaskModel) Focused() int {
	return m.focus
}

// Update handles messages for the creation form.
func (m CreateTaskModel) Update(msg tea.Msg) (CreateTaskModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case taskCreatedMsg:
		m.submitting = false
		if msg.err != nil {
			var verr *domain.ValidationError
			if errors.As(msg.err, &verr) {
				for _, f := range verr.Fields {
					m.fieldErrs[f.Field] = f.Message
				}
				return m, nil
			}
			m.err = msg.err
			return m, nil
		}
		title := msg.task.Title
		return m, func() tea.Msg { return msgs.GoToMainMsg{Notice: "Started " + title} }

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return msgs.GoBackMsg{} }
		case "tab", "down":
			return m, m.setFocus(m.focus + 1)
		case "shift+tab", "up":
			return m, m.setFocus(m.focus - 1)
		case "ctrl+s":
			return m.submit()
		case "enter":
			if m.focus < fieldCount-1 {
				return m, m.setFocus(m.focus + 1)
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *CreateTaskModel) setFocus(i int) tea.Cmd {
	i = (i + fieldCount) % fieldCount
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m CreateTaskModel) submit() (CreateTaskModel, tea.Cmd) {
	m.fieldErrs = map[string]string{}
	m.err = nil

	hours, hErr := parseCount(m.inputs[fieldHours].Value())
	minutes, mErr := parseCount(m.inputs[fieldMinutes].Value())
	if hErr != nil {
		m.fieldErrs["target_hours"] = "enter a number"
	}
	if mErr != nil {
		m.fieldErrs["target_minutes"] = "enter a number"
	}
	if len(m.fieldErrs) > 0 {
		return m, nil
	}

	in := task.CreateInput{
		Title:         m.inputs[fieldTitle].Value(),
		Description:   m.inputs[fieldDescription].Value(),
		TargetHours:   hours,
		TargetMinutes: minutes,
		StartImage:    m.photo.URI,
	}
	m.submitting = true
	deps := m.deps
	return m, func() tea.Msg {
		ctx, cancel := deps.context()
		defer cancel()
		t, err := deps.Tasks.CreateTask(ctx, deps.Viewer, in)
		return taskCreatedMsg{task: t, err: err}
	}
}

func parseCount(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// View renders the creation form.
func (m CreateTaskModel) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("New task"))
	b.WriteString("\n")
	b.WriteString(styles.SubtleStyle.Render("photo  " + m.photo.URI))
	b.WriteString("\n\n")

	labels := [fieldCount]string{"Title", "Description", "Hours", "Minutes"}
	for i, input := range m.inputs {
		label := labels[i]
		if i == m.focus {
			label = styles.SelectedStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n")
		if msg := m.fieldErrs[fieldNames[i]]; msg != "" {
			b.WriteString(styles.ErrorStyle.Render(msg))
			b.WriteString("\n")
		}
	}
	for _, field := range []string{"target_time", "start_image"} {
		if msg := m.fieldErrs[field]; msg != "" {
			b.WriteString(styles.ErrorStyle.Render(msg))
			b.WriteString("\n")
		}
	}
	if m.err != nil {
		b.WriteString(styles.ErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.submitting {
		b.WriteString(styles.SubtleStyle.Render("Saving..."))
	} else {
		b.WriteString(styles.SubtleStyle.Render("tab next field  enter start  esc cancel"))
	}
	return b.String()
}
