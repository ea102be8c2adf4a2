package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/partext/internal/config"
	"github.com/san-kum/partext/internal/scene"
)

var (
	heading = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	sub     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pointer = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	current = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	detail  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	faint   = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	hintKey = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// Builder turns an edited preset into a running scene.
type Builder func(cfg *config.Config) (*scene.Scene, error)

// field is one editable line on the config screen: an element's text or
// the countdown length.
type field struct {
	label   string
	element int // -1 for the countdown
}

type picker struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	fields        []field
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	build         Builder
	opts          Options
	liveModel     Model
}

// NewPicker lists the presets; choosing one opens its text fields for
// editing before the scene starts.
func NewPicker(build Builder, opts Options) *picker {
	return &picker{state: stateMenu, presets: config.ListPresets(), build: build, opts: opts}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			next, cmd := m.liveModel.Update(msg)
			m.liveModel = next.(Model)
			return m, cmd
		}
		if ws, ok := msg.(tea.WindowSizeMsg); ok {
			m.opts.Cols, m.opts.Rows = ws.Width-panelWidth-4, ws.Height-2
		}
	}
	return m, nil
}

func (m picker) handleKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		next, cmd := m.liveModel.Update(msg)
		m.liveModel = next.(Model)
		return m, cmd
	}
	return m, nil
}

func (m picker) menuKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.presets) == 0 {
			return m, nil
		}
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
		m.setFields()
	}
	return m, nil
}

func (m *picker) setFields() {
	m.fields = m.fields[:0]
	for i, e := range m.cfg.Elements {
		if e.Role == config.RoleCountdown {
			continue
		}
		m.fields = append(m.fields, field{label: e.Name, element: i})
	}
	m.fields = append(m.fields, field{label: "countdown", element: -1})
}

func (m picker) value(f field) string {
	if f.element < 0 {
		return strconv.Itoa(m.cfg.CountdownSeconds)
	}
	return m.cfg.Elements[f.element].Text
}

func (m *picker) commit(f field, s string) {
	if f.element >= 0 {
		m.cfg.Elements[f.element].Text = s
		return
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n >= 0 {
		m.cfg.CountdownSeconds = n
	}
}

func (m picker) configKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	f := m.fields[m.fieldCursor]
	if m.editing {
		switch msg.Type {
		case tea.KeyEnter:
			m.commit(f, m.editBuf)
			m.editing, m.editBuf = false, ""
		case tea.KeyEsc:
			m.editing, m.editBuf = false, ""
		case tea.KeyBackspace:
			if r := []rune(m.editBuf); len(r) > 0 {
				m.editBuf = string(r[:len(r)-1])
			}
		case tea.KeySpace:
			if f.element >= 0 {
				m.editBuf += " "
			}
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				if f.element >= 0 || (r >= '0' && r <= '9') {
					m.editBuf += string(r)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(m.fields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, m.value(f)
	case "left", "h":
		if f.element < 0 && m.cfg.CountdownSeconds >= 10 {
			m.cfg.CountdownSeconds -= 10
		}
	case "right", "l":
		if f.element < 0 {
			m.cfg.CountdownSeconds += 10
		}
	case "s":
		return m.start()
	}
	return m, nil
}

func (m picker) start() (picker, tea.Cmd) {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return m, nil
	}
	s, err := m.build(m.cfg)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel = NewModel(s, m.selected, m.opts)
	m.state = stateSim
	return m, m.liveModel.Init()
}

func (m picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(hintKey.Render(pairs[i]) + idle.Render(" "+pairs[i+1]+"  "))
	}
	return strings.TrimRight(b.String(), " ")
}

func (m picker) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + heading.Render("PARTEXT") + "\n    " + sub.Render("particle text engine") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := config.PresetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pointer.Render("▸"), current.Render(fmt.Sprintf("%-12s", name)), detail.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idle.Render(fmt.Sprintf("  %-12s", name)), faint.Render(desc)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m picker) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + heading.Render(strings.ToUpper(m.selected)) + "\n    " + sub.Render(config.PresetInfo[m.selected]) + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, f := range m.fields {
		val := m.value(f)
		if f.element < 0 {
			val += "s"
		}
		if m.editing && i == m.fieldCursor {
			val = m.editBuf + "_"
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", pointer.Render("▸"), current.Render(fmt.Sprintf("%-10s", f.label)), detail.Bold(true).Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idle.Render(fmt.Sprintf("  %-10s", f.label)), faint.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "enter", "edit", "h/l", "countdown", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the preset picker.
func RunInteractive(build Builder, opts Options) error {
	_, err := tea.NewProgram(NewPicker(build, opts), tea.WithAltScreen()).Run()
	return err
}
