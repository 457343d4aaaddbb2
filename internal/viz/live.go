package viz

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/export"
	"github.com/san-kum/orbitlab/internal/interact"
	"github.com/san-kum/orbitlab/internal/world"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 42
	historyCapacity = 300
	trailCapacity   = 40
	zoomStep        = 1.25

	// canvas origin inside the terminal, from canvasStyle padding
	canvasLeft = 2
	canvasTop  = 1
)

type TickMsg time.Time

// Model drives a world from the terminal. Pointer events are queued and
// drain at the next tick; keyboard commands apply at once.
type Model struct {
	world         *world.World
	logger        *log.Logger
	canvas        *Canvas
	view          Viewport
	width, height int
	fps           int
	zoom          float64
	running       bool
	trails        map[int][]cp.Vector
	history       []float64
	historyID     int
	field         int
	status        string
	showHelp      bool
	saveDir       string
}

// NewModel wraps w. SVG snapshots are written to saveDir.
func NewModel(w *world.World, logger *log.Logger, saveDir string) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	fps := w.Config().FPS
	if fps <= 0 {
		fps = 60
	}
	m := Model{
		world:     w,
		logger:    logger,
		width:     width,
		height:    height,
		fps:       fps,
		zoom:      1,
		running:   true,
		trails:    make(map[int][]cp.Vector),
		history:   make([]float64, 0, historyCapacity),
		historyID: -1,
		saveDir:   saveDir,
	}
	m.relayout()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.relayout()
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.world.State() == interact.Editing {
			m.editKey(msg)
			return m, nil
		}
		return m.key(msg)
	case TickMsg:
		var errs []error
		if m.running {
			errs = m.world.Step().Errors
		} else {
			errs = m.world.Flush()
		}
		m.report(errs)
		m.record()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) relayout() {
	cols := max(m.width-panelWidth-2*canvasLeft-1, 20)
	rows := max(m.height-2*canvasTop, 8)
	m.canvas = NewCanvas(cols, rows)
	cfg := m.world.Config()
	m.view = Fit(cols, rows, cp.Vector{X: cfg.SunX, Y: cfg.SunY}, cfg.OrbitDistanceMax*1.2).Zoom(m.zoom)
}

// toWorld maps a terminal cell to world coordinates. Cells outside the
// canvas report false.
func (m Model) toWorld(x, y int) (cp.Vector, bool) {
	col, row := x-canvasLeft, y-canvasTop
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		return cp.Vector{}, false
	}
	return m.view.CellToWorld(col, row), true
}

func (m *Model) mouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			if pos, ok := m.toWorld(msg.X, msg.Y); ok {
				m.world.Enqueue(world.PointerDown{Pos: pos})
			}
		case tea.MouseButtonWheelUp:
			m.setZoom(m.zoom / zoomStep)
		case tea.MouseButtonWheelDown:
			m.setZoom(m.zoom * zoomStep)
		}
	case tea.MouseActionMotion:
		if pos, ok := m.toWorld(msg.X, msg.Y); ok {
			m.world.Enqueue(world.PointerMove{Pos: pos})
		}
	case tea.MouseActionRelease:
		m.world.Enqueue(world.PointerUp{})
	}
}

func (m *Model) setZoom(z float64) {
	m.zoom = math.Min(math.Max(z, 0.05), 20)
	m.relayout()
}

// apply runs keyboard commands without waiting for the next tick.
func (m *Model) apply(cmds ...world.Command) {
	for _, c := range cmds {
		m.world.Enqueue(c)
	}
	m.report(m.world.Flush())
}

func (m *Model) report(errs []error) {
	if len(errs) > 0 {
		m.status = errs[len(errs)-1].Error()
	}
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "a":
		m.apply(world.AddPlanet{})
	case "x", "delete":
		m.apply(world.RemoveSelected{})
	case "l":
		m.apply(world.ToggleLock{})
	case "e", "enter":
		m.field = 0
		m.apply(world.BeginEdit{})
	case "tab":
		m.cycleSelection(1)
	case "shift+tab":
		m.cycleSelection(-1)
	case "esc":
		m.apply(world.Deselect{})
	case "t":
		NextTheme()
	case "+", "=":
		m.setZoom(m.zoom / zoomStep)
	case "-", "_":
		m.setZoom(m.zoom * zoomStep)
	case "s":
		m.saveSVG()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) cycleSelection(dir int) {
	bodies := m.world.Snapshot()
	if len(bodies) == 0 {
		return
	}
	idx := -1
	if id, ok := m.world.Selected(); ok {
		for i, b := range bodies {
			if b.ID == id {
				idx = i
			}
		}
	}
	next := (idx + dir + len(bodies)) % len(bodies)
	if idx < 0 && dir < 0 {
		next = len(bodies) - 1
	}
	m.apply(world.Select{ID: bodies[next].ID})
}

// formFields lists the draft's fields in form order.
func formFields(d interact.Draft) []dynamo.Field {
	var out []dynamo.Field
	for _, f := range dynamo.Fields() {
		if _, ok := d[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func (m *Model) editKey(msg tea.KeyMsg) {
	draft := m.world.Draft()
	fields := formFields(draft)
	if len(fields) == 0 {
		return
	}
	m.field = (m.field%len(fields) + len(fields)) % len(fields)
	f := fields[m.field]
	value := draft[f]

	switch msg.Type {
	case tea.KeyEsc:
		m.status = ""
		m.apply(world.CancelEdit{})
	case tea.KeyEnter:
		m.status = ""
		m.apply(world.CommitEdit{})
	case tea.KeyTab, tea.KeyDown:
		m.field = (m.field + 1) % len(fields)
	case tea.KeyShiftTab, tea.KeyUp:
		m.field = (m.field - 1 + len(fields)) % len(fields)
	case tea.KeyBackspace:
		if r := []rune(value); len(r) > 0 {
			m.apply(world.SetDraft{Field: f, Value: string(r[:len(r)-1])})
		}
	case tea.KeySpace:
		if f == dynamo.FieldLocked {
			m.apply(world.SetDraft{Field: f, Value: toggleBool(value)})
		} else {
			m.apply(world.SetDraft{Field: f, Value: value + " "})
		}
	case tea.KeyRunes:
		m.apply(world.SetDraft{Field: f, Value: value + string(msg.Runes)})
	}
}

func toggleBool(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "true") {
		return "false"
	}
	return "true"
}

// record appends trail points and the selected body's distance.
func (m *Model) record() {
	alive := make(map[int]bool)
	for _, b := range m.world.Snapshot() {
		alive[b.ID] = true
		if b.Kind == dynamo.Sun {
			continue
		}
		t := append(m.trails[b.ID], b.Position)
		if len(t) > trailCapacity {
			t = t[1:]
		}
		m.trails[b.ID] = t
	}
	for id := range m.trails {
		if !alive[id] {
			delete(m.trails, id)
		}
	}

	id, ok := m.world.Selected()
	if !ok || id != m.historyID {
		m.history = m.history[:0]
		m.historyID = -1
	}
	if !ok {
		return
	}
	if d, ok := m.world.DiagnosticsFor(id); ok {
		m.historyID = id
		m.history = append(m.history, d.Distance)
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
	}
}

func (m *Model) saveSVG() {
	selected := -1
	if id, ok := m.world.Selected(); ok {
		selected = id
	}
	cfg := m.world.Config()
	w := int(math.Max(2*cfg.SunX, 640))
	h := int(math.Max(2*cfg.SunY, 360))
	svg := export.SnapshotToSVG(m.world.Snapshot(), w, h, selected)
	path := filepath.Join(m.saveDir, fmt.Sprintf("orbitlab_%06d.svg", m.world.Frame()))
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		m.logger.Error("save snapshot", "path", path, "err", err)
		m.status = err.Error()
		return
	}
	m.logger.Info("snapshot saved", "path", path)
	m.status = "saved " + path
}

// draw renders the world into the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	theme := CurrentTheme
	for _, trail := range m.trails {
		for _, p := range trail {
			x, y := m.view.ToDot(p)
			m.canvas.SetColor(x, y, theme.Trail)
		}
	}
	selected, hasSel := m.world.Selected()
	for _, b := range m.world.Snapshot() {
		x, y := m.view.ToDot(b.Position)
		r := m.view.Dots(b.Radius)
		color := b.Color
		if b.Kind == dynamo.Sun {
			color = theme.Sun
		}
		m.canvas.FillCircle(x, y, r, color)
		if b.Locked {
			m.canvas.DrawCircle(x, y, r+2, theme.Locked)
		}
		if hasSel && b.ID == selected {
			m.canvas.DrawCircle(x, y, r+4, theme.Selection)
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render())
	statsView := statsStyle.Render(m.panel())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

func (m Model) panel() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(GradientText("ORBITLAB", string(CurrentTheme.Secondary), string(CurrentTheme.Primary))) + "\n")
	status := runningStyle.Render("RUNNING")
	if !m.running {
		status = pausedStyle.Render("PAUSED")
	}
	s.WriteString(status + "  " + subtleStyle.Render(m.world.State().String()) + "\n\n")
	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d", m.world.Frame())) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.1f", m.world.Time())) + "\n")
	s.WriteString(labelStyle.Render("Bodies") + valueStyle.Render(fmt.Sprintf("%d", len(m.world.Snapshot()))) + "\n")
	s.WriteString(Separator(panelWidth-6) + "\n")

	if id, ok := m.world.Selected(); ok {
		s.WriteString(m.inspector(id))
	} else {
		s.WriteString(subtleStyle.Render("click a body or press tab") + "\n")
	}
	if m.status != "" {
		s.WriteString("\n" + errorStyle.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause A:Add X:Remove L:Lock\nE:Edit TAB:Select T:Theme S:SVG\n+/-:Zoom ?:Help Q:Quit"))
	return s.String()
}

func (m Model) inspector(id int) string {
	var s strings.Builder
	b, ok := m.world.Body(id)
	if !ok {
		return ""
	}
	s.WriteString(swatch(b.Color) + " " + valueStyle.Render(fmt.Sprintf("%s #%d", b.Name, b.ID)) + "\n")
	if m.world.State() == interact.Editing {
		s.WriteString(m.form())
		return s.String()
	}
	s.WriteString(labelStyle.Render("Mass") + valueStyle.Render(fmt.Sprintf("%.2f", b.Mass)) + "\n")
	s.WriteString(labelStyle.Render("Radius") + valueStyle.Render(fmt.Sprintf("%.1f", b.Radius)) + "\n")
	if b.Kind == dynamo.Sun {
		return s.String()
	}
	flags := ""
	if b.Locked {
		flags += "locked "
	}
	if b.Held {
		flags += "held"
	}
	if flags != "" {
		s.WriteString(labelStyle.Render("State") + activeStyle.Render(flags) + "\n")
	}
	if d, ok := m.world.DiagnosticsFor(id); ok {
		s.WriteString(labelStyle.Render("Distance") + valueStyle.Render(fmt.Sprintf("%.1f", d.Distance)) + "\n")
		s.WriteString(labelStyle.Render("Angle") + valueStyle.Render(fmt.Sprintf("%.1f°", d.Angle)) + "\n")
		s.WriteString(labelStyle.Render("Radial") + valueStyle.Render(fmt.Sprintf("%+.3f", d.Radial)) + "\n")
		s.WriteString(labelStyle.Render("Tangential") + valueStyle.Render(fmt.Sprintf("%+.3f", d.Tangential)) + "\n")
		s.WriteString(labelStyle.Render("Force") + valueStyle.Render(fmt.Sprintf("%.3f", d.Force)) + "\n")
	}
	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(panelWidth-14), asciigraph.Caption("distance"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	return s.String()
}

func (m Model) form() string {
	var s strings.Builder
	draft := m.world.Draft()
	fields := formFields(draft)
	for i, f := range fields {
		line := fmt.Sprintf("%-7s %s", f, draft[f])
		if i == m.field%max(len(fields), 1) {
			s.WriteString(activeStyle.Render("> "+line+"_") + "\n")
		} else {
			s.WriteString("  " + valueStyle.Render(line) + "\n")
		}
	}
	s.WriteString(subtleStyle.Render("enter:save esc:cancel tab:next") + "\n")
	return s.String()
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Mouse    - Select and drag bodies   ║
║  Space    - Pause/Resume simulation  ║
║  A        - Add a planet             ║
║  X        - Remove selected planet   ║
║  L        - Lock/unlock selected     ║
║  E        - Edit selected body       ║
║  Tab      - Cycle selection          ║
║  Esc      - Deselect                 ║
║  T        - Cycle themes             ║
║  S        - Save SVG snapshot        ║
║  +/-      - Zoom                     ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run opens the live view on w.
func Run(w *world.World, logger *log.Logger, saveDir string) error {
	_, err := tea.NewProgram(NewModel(w, logger, saveDir), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
