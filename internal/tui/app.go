// Package tui is the Bubble Tea program that hosts the hub: a header with
// the current location, the shared content region as the body, a status
// line and a key-help footer.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/jask/bdhub/internal/lifecycle"
	"github.com/jask/bdhub/internal/route"
)

// Navigator is the router surface the chrome drives.
type Navigator interface {
	GoCatalog()
	Back() bool
	Forward() bool
	CanBack() bool
	CanForward() bool
	State() route.Route
	Location() string
}

// Host is the shell surface the chrome reads.
type Host interface {
	BackVisible() bool
	Running() (string, bool)
	Pause()
	Resume()
}

type Options struct {
	Title   string
	Router  Navigator
	Shell   Host
	Content *lifecycle.Region
	Keys    *KeyRegistry
	Logger  *zap.Logger
}

type App struct {
	title   string
	router  Navigator
	shell   Host
	content *lifecycle.Region
	keys    *KeyRegistry
	log     *zap.Logger

	width     int
	height    int
	status    string
	statusErr bool
	quitting  bool
}

var _ tea.Model = (*App)(nil)

func New(opts Options) *App {
	keys := opts.Keys
	if keys == nil {
		keys = NewKeyRegistry(DefaultKeyBindings())
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "bdhub"
	}
	return &App{
		title:   title,
		router:  opts.Router,
		shell:   opts.Shell,
		content: opts.Content,
		keys:    keys,
		log:     log.Named("tui"),
		width:   80,
		height:  24,
	}
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) scope() string {
	if a.router.State().IsCatalog() {
		return ScopeCatalog
	}
	return ScopeModule
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case RedrawMsg:
		return a, nil
	case StatusMsg:
		a.status, a.statusErr = msg.Text, msg.IsErr
		return a, nil
	case tea.BlurMsg:
		a.shell.Pause()
		return a, nil
	case tea.FocusMsg:
		a.shell.Resume()
		return a, nil
	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}
	return a, a.content.Update(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		a.quitting = true
		return tea.Quit
	}
	if c, ok := a.content.Current().(lifecycle.InputCapturer); ok && c.CapturingInput() {
		return a.content.Update(msg)
	}
	action, ok := a.keys.Action(msg, a.scope())
	if !ok {
		return a.content.Update(msg)
	}
	switch action {
	case ActionQuit, ActionForceQuit:
		a.quitting = true
		return tea.Quit
	case ActionHub:
		if !a.shell.BackVisible() {
			return a.content.Update(msg)
		}
		a.log.Debug("back to hub", zap.String("location", a.router.Location()))
		a.status, a.statusErr = "", false
		a.router.GoCatalog()
	case ActionBack:
		if !a.router.Back() {
			a.status, a.statusErr = "nothing to go back to", false
		}
	case ActionForward:
		if !a.router.Forward() {
			a.status, a.statusErr = "nothing to go forward to", false
		}
	}
	return nil
}

func (a *App) View() string {
	if a.quitting {
		return "Bye!\n"
	}
	header := a.renderHeader()
	status := renderStatusBar(a)
	footer := renderFooter(a)
	bodyHeight := max(0, a.height-lipgloss.Height(header)-lipgloss.Height(status)-lipgloss.Height(footer))

	var body string
	if bodyHeight >= 3 {
		title := "Games"
		if id, ok := a.shell.Running(); ok {
			title = id
		}
		p := pane{
			Title:   title,
			Content: a.content.Render(max(1, a.width-4), bodyHeight-2),
			Focused: !a.router.State().IsCatalog(),
		}
		body = p.Render(max(4, a.width), bodyHeight)
	}
	body = fitHeight(body, bodyHeight)
	view := strings.Join([]string{header, body, status, footer}, "\n")
	view = fitHeight(view, max(1, a.height))
	return appStyle.Width(max(1, a.width)).MaxWidth(max(1, a.width)).Render(view)
}

func (a *App) renderHeader() string {
	left := headerAppStyle.Render(a.title) + locationStyle.Render("  "+a.router.Location())
	right := ""
	if a.shell.BackVisible() {
		right = backHintStyle.Render("esc ‹ back to hub")
	}
	leftW, rightW := ansi.StringWidth(left), ansi.StringWidth(right)
	gap := 1
	if leftW+rightW+1 < a.width {
		gap = a.width - leftW - rightW
	}
	return renderHeaderBar(max(1, a.width), left+headerBarStyle.Render(strings.Repeat(" ", gap))+right)
}

func renderHeaderBar(width int, line string) string {
	line = ansi.Truncate(strings.ReplaceAll(line, "\n", " "), width, "")
	if w := ansi.StringWidth(line); w < width {
		line += headerBarStyle.Render(strings.Repeat(" ", width-w))
	}
	return line
}

func fitHeight(s string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
