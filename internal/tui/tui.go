// Package tui is the live preview for watch mode: the current layout tree
// and keybind table on screen, re-rendered whenever the document reloads.
// The view only ever reads the immutable session snapshot it was handed;
// reloads arrive as messages carrying the next snapshot.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"layout-lens/internal/layout"
	"layout-lens/internal/session"
)

// Styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	pluginStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13")) // magenta
	chordStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // red
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// view mode
type viewMode int

const (
	modeLayout viewMode = iota
	modeKeybinds
)

type keymap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func defaultKeymap() keymap {
	return keymap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous tab")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next tab")),
		Toggle: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "layout/keybinds")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// messages
type reloadMsg session.ReloadEvent

type eventsClosedMsg struct{}

// Options configures the watch TUI.
type Options struct {
	Path   string
	Holder *session.Holder
	Events <-chan session.ReloadEvent

	// InitialErr is shown when the document was already invalid at startup.
	InitialErr error
}

// Run starts the preview and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(newModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type model struct {
	opts Options
	keys keymap

	sess       *session.Session
	lastErr    error
	cursor     int
	mode       viewMode
	reloads    int
	lastReload time.Time

	width  int
	height int
}

func newModel(opts Options) model {
	return model{
		opts:    opts,
		keys:    defaultKeymap(),
		sess:    opts.Holder.Current(),
		lastErr: opts.InitialErr,
	}
}

func (m model) Init() tea.Cmd {
	return m.listen()
}

// listen waits for the next reload event from the watcher.
func (m model) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.opts.Events
		if !ok {
			return eventsClosedMsg{}
		}
		return reloadMsg(ev)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case reloadMsg:
		m.reloads++
		m.lastReload = time.Now()
		if msg.Err != nil {
			m.lastErr = msg.Err
		} else {
			m.lastErr = nil
			m.sess = msg.Session
			if m.cursor >= len(m.sess.Tabs) {
				m.cursor = 0
			}
		}
		return m, m.listen()

	case eventsClosedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.sess != nil && m.cursor < len(m.sess.Tabs)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if m.mode == modeLayout {
				m.mode = modeKeybinds
			} else {
				m.mode = modeLayout
			}
		case key.Matches(msg, m.keys.Reload):
			return m, m.manualReload()
		}
	}
	return m, nil
}

// manualReload rebuilds immediately without waiting for a file event.
func (m model) manualReload() tea.Cmd {
	return func() tea.Msg {
		s, err := session.Load(m.opts.Path)
		if err == nil && m.opts.Holder != nil {
			m.opts.Holder.Swap(s)
		}
		return reloadMsg(session.ReloadEvent{Session: s, Err: err})
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("layout-lens watch"))
	b.WriteString(headerStyle.Render("  " + m.opts.Path))
	if m.sess != nil {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  snapshot %.8s", m.sess.ID)))
	}
	b.WriteString("\n\n")

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("document invalid, showing last good snapshot:"))
		b.WriteString("\n")
		for _, line := range strings.Split(m.lastErr.Error(), "\n") {
			b.WriteString(errorStyle.Render("  " + line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	switch {
	case m.sess == nil:
		b.WriteString(dimStyle.Render("no snapshot yet"))
		b.WriteString("\n")
	case m.mode == modeLayout:
		m.viewLayout(&b)
	default:
		m.viewKeybinds(&b)
	}

	b.WriteString("\n")
	status := fmt.Sprintf("%d reload(s)", m.reloads)
	if !m.lastReload.IsZero() {
		status += "  last " + m.lastReload.Format("15:04:05")
	}
	status += "  •  ↑/↓ tab  b layout/keybinds  r reload  q quit"
	b.WriteString(statusStyle.Render(status))
	return b.String()
}

func (m model) viewLayout(b *strings.Builder) {
	if len(m.sess.Tabs) == 0 {
		b.WriteString(dimStyle.Render("no tabs"))
		b.WriteString("\n")
		return
	}
	for i, t := range m.sess.Tabs {
		line := tabLabel(t, i)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		} else if t.Focus {
			line = focusStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	tab := m.sess.Tabs[m.cursor]
	if tab.Root != nil {
		for _, c := range tab.Root.Children {
			renderTreeNode(b, c, 1)
		}
		if len(tab.Root.Children) == 0 {
			b.WriteString(dimStyle.Render("    (single pane)"))
			b.WriteString("\n")
		}
	}
}

func tabLabel(t layout.Tab, i int) string {
	name := t.Name
	if name == "" {
		name = fmt.Sprintf("tab %d", i+1)
	}
	label := fmt.Sprintf(" %d. %s (%d panes)", i+1, name, layout.CountPanes(t.Root))
	if t.Focus {
		label += " *"
	}
	return label
}

func renderTreeNode(b *strings.Builder, n *layout.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	label := describeNode(n)
	if n.Kind == layout.KindPlugin {
		label = pluginStyle.Render(label)
	} else if n.Focus {
		label = focusStyle.Render(label)
	}
	b.WriteString(indent + label)
	b.WriteString("\n")
	for _, c := range n.Children {
		renderTreeNode(b, c, depth+1)
	}
}

func describeNode(n *layout.Node) string {
	var parts []string
	switch {
	case n.Kind == layout.KindPlugin:
		parts = append(parts, "plugin "+n.Location)
	case len(n.Children) > 0:
		parts = append(parts, "split "+string(n.SplitDirection))
	case n.Command != "":
		parts = append(parts, "pane $ "+strings.Join(append([]string{n.Command}, n.Args...), " "))
	case n.Edit != "":
		parts = append(parts, "pane edit "+n.Edit)
	default:
		parts = append(parts, "pane")
	}
	if n.Name != "" {
		parts = append(parts, "["+n.Name+"]")
	}
	if !n.Size.IsZero() {
		parts = append(parts, n.Size.String())
	}
	if n.StartSuspended {
		parts = append(parts, "(suspended)")
	}
	return strings.Join(parts, " ")
}

func (m model) viewKeybinds(b *strings.Builder) {
	if m.sess.Keybinds == nil || len(m.sess.Keybinds.Scopes()) == 0 {
		b.WriteString(dimStyle.Render("no keybinds"))
		b.WriteString("\n")
		return
	}
	for _, scope := range m.sess.Keybinds.Scopes() {
		b.WriteString(titleStyle.Render(scope.Name))
		b.WriteString("\n")
		for _, bind := range scope.Bindings() {
			actions := make([]string, 0, len(bind.Actions))
			for _, a := range bind.Actions {
				actions = append(actions, a.String())
			}
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				chordStyle.Render(fmt.Sprintf("%-12s", bind.Chord)),
				strings.Join(actions, "; ")))
		}
	}
}
