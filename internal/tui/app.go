// Package tui is the terminal client: the main feed, task detail, task
// creation and camera screens on top of the same use cases as the HTTP API.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/internal/navigation"
	"github.com/fastygo/taskproof/internal/tui/msgs"
	"github.com/fastygo/taskproof/internal/tui/styles"
	"github.com/fastygo/taskproof/internal/tui/views"
)

// Screen is the screen currently shown.
type Screen int

const (
	ScreenMain Screen = iota
	ScreenDetail
	ScreenCreateTask
	ScreenCamera
)

// Model is the root Bubble Tea model. It keeps the route stack and the
// sub-model of the screen on top of it.
type Model struct {
	deps   views.Deps
	nav    *navigation.Navigator
	screen Screen
	width  int
	height int
	err    error

	main   views.MainModel
	detail views.DetailModel
	create views.CreateTaskModel
	camera views.CameraModel
}

// Run starts the terminal client and blocks until it exits.
func Run(deps views.Deps) error {
	p := tea.NewProgram(New(deps), tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.leave()
	}
	return err
}

// New builds the root model on the main screen.
func New(deps views.Deps) Model {
	deps = deps.WithDefaults()
	return Model{
		deps:   deps,
		nav:    navigation.NewNavigator(),
		screen: ScreenMain,
		main:   views.NewMainModel(deps, ""),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.main.Init()
}

// Screen returns the screen on top of the stack.
func (m Model) Screen() Screen {
	return m.screen
}

// Route returns the navigator's current route.
func (m Model) Route() navigation.Route {
	return m.nav.Current()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.leave()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case msgs.GoToMainMsg:
		m.leave()
		m.nav.Reset()
		return m.showMain(msg.Notice)

	case msgs.GoToDetailMsg:
		if err := m.nav.Navigate(msg.Route); err != nil {
			return m.fail(err)
		}
		m.leave()
		return m.showDetail(msg.Route.TaskID)

	case msgs.ReplaceRouteMsg:
		if err := m.nav.Replace(msg.Route); err != nil {
			m.deps.Logger.Warn("replace route", zap.Error(err))
		}
		return m, nil

	case msgs.GoToCameraMsg:
		route := navigation.CameraRoute(msg.Mode, msg.TaskID)
		if err := m.nav.Navigate(route); err != nil {
			return m.fail(err)
		}
		m.leave()
		m.err = nil
		m.camera = views.NewCameraModel(m.deps, msg.Mode, msg.TaskID)
		m.screen = ScreenCamera
		return m, m.camera.Init()

	case msgs.GoToCreateTaskMsg:
		if err := m.nav.Replace(navigation.CreateTaskRoute()); err != nil {
			return m.fail(err)
		}
		m.leave()
		m.err = nil
		m.create = views.NewCreateTaskModel(m.deps, msg.Photo)
		m.screen = ScreenCreateTask
		return m, m.create.Init()

	case msgs.GoBackMsg:
		m.leave()
		return m.show(m.nav.Back())
	}

	var cmd tea.Cmd
	switch m.screen {
	case ScreenMain:
		m.main, cmd = m.main.Update(msg)
	case ScreenDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ScreenCreateTask:
		m.create, cmd = m.create.Update(msg)
	case ScreenCamera:
		m.camera, cmd = m.camera.Update(msg)
	}
	return m, cmd
}

// show rebuilds the screen for a route uncovered by Back.
func (m Model) show(r navigation.Route) (tea.Model, tea.Cmd) {
	switch r.Destination {
	case navigation.Detail:
		return m.showDetail(r.TaskID)
	case navigation.Camera:
		m.camera = views.NewCameraModel(m.deps, r.Mode, r.TaskID)
		m.screen = ScreenCamera
		return m, m.camera.Init()
	case navigation.CreateTask:
		// the start photo is gone once the form is left
		m.nav.Reset()
		return m.showMain("")
	default:
		return m.showMain("")
	}
}

func (m Model) showMain(notice string) (tea.Model, tea.Cmd) {
	m.err = nil
	m.main = views.NewMainModel(m.deps, notice)
	m.screen = ScreenMain
	return m, m.main.Init()
}

func (m Model) showDetail(taskID string) (tea.Model, tea.Cmd) {
	m.err = nil
	m.detail = views.NewDetailModel(m.deps, taskID)
	m.screen = ScreenDetail
	return m, m.detail.Init()
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.deps.Logger.Warn("navigation rejected", zap.Error(err))
	m.err = err
	return m, nil
}

// leave releases what the current screen holds.
func (m Model) leave() {
	switch m.screen {
	case ScreenDetail:
		m.detail.Close()
	case ScreenCamera:
		m.camera.Close()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var body string
	switch m.screen {
	case ScreenDetail:
		body = m.detail.View()
	case ScreenCreateTask:
		body = m.create.View()
	case ScreenCamera:
		body = m.camera.View()
	default:
		body = m.main.View()
	}
	if m.err != nil {
		body += "\n" + styles.ErrorStyle.Render(m.err.Error())
	}
	return body
}
