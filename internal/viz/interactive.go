package viz

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/world"
)

var presetInfo = map[string]string{
	"default": "five planets, near circular",
	"crowded": "two dozen small planets",
	"sparse":  "two wide orbits",
	"escape":  "fast launches, many escape",
	"tight":   "close, slow orbits",
	"heavy":   "massive sun",
}

// configKeys are the settings offered before a run starts.
var configKeys = []string{"planets", "seed", "g", "sun_mass", "orbit_speed_factor", "drag_stiffness", "drag_damping", "gravity_while_held"}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

type model struct {
	state, cursor int
	presets       []string
	selected      string
	base, cfg     *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           string
	width, height int
	logger        *log.Logger
	saveDir       string
	liveModel     Model
}

// NewInteractiveApp starts at the preset menu. base, when set, is
// offered as a "custom" entry ahead of the presets.
func NewInteractiveApp(base *config.Config, logger *log.Logger, saveDir string) *model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	presets := config.ListPresets()
	sort.Strings(presets)
	m := &model{
		state:   stateMenu,
		presets: presets,
		width:   width,
		height:  height,
		logger:  logger,
		saveDir: saveDir,
	}
	if base != nil {
		m.presets = append([]string{"custom"}, presets...)
		m.base = base.Clone()
	}
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
		return m, nil
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
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
		m.selected = m.presets[m.cursor]
		if m.selected == "custom" {
			m.cfg = m.base.Clone()
		} else {
			m.cfg = config.GetPreset(m.selected)
		}
		m.state, m.paramCursor, m.err = stateConfig, 0, ""
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	key := configKeys[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			m.editing = false
			val, err := strconv.ParseFloat(strings.TrimSpace(m.editBuf), 64)
			if err == nil {
				err = m.cfg.Set(key, val)
			}
			if err != nil {
				m.err = err.Error()
			}
			m.editBuf = ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	m.err = ""
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(configKeys)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		v, _ := m.cfg.Get(key)
		m.editing, m.editBuf = true, formatValue(v)
	case "s":
		cmd := m.start()
		return m, cmd
	case "left", "h":
		m.nudge(key, -1)
	case "right", "l":
		m.nudge(key, 1)
	}
	return m, nil
}

// nudge steps integer settings by one and others by ten percent.
func (m *model) nudge(key string, dir float64) {
	v, err := m.cfg.Get(key)
	if err != nil {
		return
	}
	switch key {
	case "planets", "seed":
		v += dir
	case "gravity_while_held":
		v = 1 - v
	default:
		v *= 1 + 0.1*dir
	}
	if err := m.cfg.Set(key, v); err != nil {
		m.err = err.Error()
	}
}

func (m *model) start() tea.Cmd {
	w, err := world.New(m.cfg, world.WithLogger(m.logger))
	if err != nil {
		m.err = err.Error()
		return nil
	}
	m.logger.Info("world started", "preset", m.selected, "planets", m.cfg.Planets, "seed", m.cfg.Seed)
	m.liveModel = NewModel(w, m.logger, m.saveDir)
	m.liveModel.width, m.liveModel.height = m.width, m.height
	m.liveModel.relayout()
	m.state = stateSim
	return m.liveModel.Init()
}

func (m model) View() string {
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
		b.WriteString(menuKeyStyle.Render(pairs[i]) + menuInactive.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("ORBITLAB") + "\n    " + menuSub.Render("2d orbital sandbox") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if name == "custom" {
			desc = "loaded configuration"
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-10s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuInactive.Render(fmt.Sprintf("  %-10s", name)), menuDim.Render(desc)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(m.selected)) + "\n    " + menuSub.Render(presetInfo[m.selected]) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, key := range configKeys {
		v, _ := m.cfg.Get(key)
		valStr := fmt.Sprintf("%10s", formatValue(v))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-20s", key)), menuDesc.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuInactive.Render(fmt.Sprintf("  %-20s", key)), menuDim.Render(valStr)))
		}
	}
	if m.err != "" {
		b.WriteString("\n    " + errorStyle.Render(m.err) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "enter", "type", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// RunInteractive opens the preset menu and then the live view.
func RunInteractive(base *config.Config, logger *log.Logger, saveDir string) error {
	_, err := tea.NewProgram(NewInteractiveApp(base, logger, saveDir), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
