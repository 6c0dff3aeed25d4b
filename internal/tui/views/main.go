package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/navigation"
	"github.com/fastygo/taskproof/internal/progress"
	"github.com/fastygo/taskproof/internal/tui/msgs"
	"github.com/fastygo/taskproof/internal/tui/styles"
	"github.com/fastygo/taskproof/usecase/feed"
)

type feedLoadedMsg struct {
	feed *feed.Feed
	err  error
}

// MainModel is the story feed: the viewer's tasks first, then friends'.
type MainModel struct {
	deps    Deps
	feed    *feed.Feed
	cursor  int
	loading bool
	notice  string
	err     error
	width   int
	height  int
}

// NewMainModel creates the main screen. notice is shown once above the list.
func NewMainModel(deps Deps, notice string) MainModel {
	return MainModel{
		deps:    deps.WithDefaults(),
		loading: true,
		notice:  notice,
	}
}

// Init implements tea.Model.
func (m MainModel) Init() tea.Cmd {
	return m.load()
}

func (m MainModel) load() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx, cancel := deps.context()
		defer cancel()
		f, err := deps.Feed.Feed(ctx, deps.Viewer)
		return feedLoadedMsg{feed: f, err: err}
	}
}

// Update handles messages for the main screen.
func (m MainModel) Update(msg tea.Msg) (MainModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case feedLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.deps.Logger.Warn("feed load failed", zap.Error(msg.err))
			return m, nil
		}
		m.feed = msg.feed
		if m.cursor >= len(m.feed.Stories) {
			m.cursor = max(len(m.feed.Stories)-1, 0)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.feed != nil && m.cursor < len(m.feed.Stories)-1 {
				m.cursor++
			}
		case "enter":
			item, ok := m.Selected()
			if !ok {
				return m, nil
			}
			route := navigation.DetailRoute(item)
			return m, func() tea.Msg { return msgs.GoToDetailMsg{Route: route} }
		case "n":
			return m, func() tea.Msg { return msgs.GoToCameraMsg{Mode: domain.CaptureStart} }
		case "r":
			m.loading = true
			m.notice = ""
			return m, m.load()
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

// Selected returns the story under the cursor.
func (m MainModel) Selected() (domain.StoryItem, bool) {
	if m.feed == nil || len(m.feed.Stories) == 0 {
		return domain.StoryItem{}, false
	}
	return m.feed.Stories[m.cursor], true
}

// Cursor returns the highlighted row.
func (m MainModel) Cursor() int {
	return m.cursor
}

// View renders the main screen.
func (m MainModel) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("taskproof"))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(styles.SuccessStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	switch {
	case m.loading:
		b.WriteString(styles.SubtleStyle.Render("Loading..."))
	case m.err != nil:
		b.WriteString(styles.ErrorStyle.Render("Could not load tasks: " + m.err.Error()))
	case len(m.feed.Stories) == 0:
		b.WriteString(styles.SubtleStyle.Render("No tasks yet. Press n to start one."))
	default:
		now := m.deps.Now()
		for i, item := range m.feed.Stories {
			b.WriteString(m.storyLine(i, item, now))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(styles.SubtleStyle.Render(fmt.Sprintf("%d of mine in progress, %d from friends",
			len(m.feed.MyOngoing), len(m.feed.FriendOngoing))))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.SubtleStyle.Render("↑/↓ move  enter open  n new task  r refresh  q quit"))
	return b.String()
}

func (m MainModel) storyLine(i int, item domain.StoryItem, now time.Time) string {
	snap := progress.Compute(item.Task.Task, now, m.deps.Detail.Radius)
	line := fmt.Sprintf("%s %-10s %-24s %s / %s %3d%%",
		styles.Dot(progress.StoryStatusColor(item)),
		ownerLabel(item),
		item.Task.Title,
		snap.Elapsed,
		snap.Target,
		snap.Percentage,
	)
	if i == m.cursor {
		return styles.SelectedStyle.Render("> ") + line
	}
	return "  " + line
}

func ownerLabel(item domain.StoryItem) string {
	if item.IsMyTask {
		return "You"
	}
	if item.Task.User.Nickname != "" {
		return item.Task.User.Nickname
	}
	return item.Task.User.Username
}
