package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/interact"
	"github.com/san-kum/orbitlab/internal/world"
)

func TestViewportRoundTrip(t *testing.T) {
	v := Fit(40, 20, cp.Vector{X: 100, Y: -50}, 200)
	if math.Abs(v.Scale-5) > 1e-9 {
		t.Fatalf("expected scale 5, got %f", v.Scale)
	}
	for _, cell := range [][2]int{{0, 0}, {20, 10}, {39, 19}, {7, 3}} {
		p := v.CellToWorld(cell[0], cell[1])
		x, y := v.ToDot(p)
		if x/2 != cell[0] || y/4 != cell[1] {
			t.Errorf("cell %v mapped to dot (%d,%d)", cell, x, y)
		}
	}
	x, y := v.ToDot(v.Center)
	if x != 40 || y != 40 {
		t.Errorf("center should map to canvas middle, got (%d,%d)", x, y)
	}
}

func TestViewportZoom(t *testing.T) {
	v := Fit(10, 10, cp.Vector{}, 20)
	if z := v.Zoom(2); z.Scale != 2*v.Scale {
		t.Errorf("expected scale %f, got %f", 2*v.Scale, z.Scale)
	}
	if z := v.Zoom(0); z.Scale != v.Scale {
		t.Error("non-positive zoom should be ignored")
	}
	if v.Dots(-3) != 0 {
		t.Error("negative length should clamp to zero dots")
	}
}

func TestCanvasCircle(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawCircle(10, 10, 4, "#ff0000")
	if c.Grid[10/4][14/2]&rune(pixelMap[10%4][14%2]) == 0 {
		t.Error("expected dot on the circle at (14,10)")
	}
	if c.Grid[10/4][10/2]&rune(pixelMap[10%4][10%2]) != 0 {
		t.Error("outline should leave the center empty")
	}
	if c.Colors[10/4][14/2] != "#ff0000" {
		t.Errorf("expected cell color, got %q", c.Colors[10/4][14/2])
	}

	c.Clear()
	c.FillCircle(10, 10, 3, "")
	if c.Grid[10/4][10/2]&rune(pixelMap[10%4][10%2]) == 0 {
		t.Error("filled circle should cover the center")
	}
	c.FillCircle(-100, -100, 2, "")
	c.Set(1000, 1000)
	if !strings.Contains(c.String(), "\n") {
		t.Error("expected rendered rows")
	}
}

func TestGradientText(t *testing.T) {
	if got := GradientText("abc", "bad", "#ffffff"); got != "abc" {
		t.Errorf("invalid color should return plain text, got %q", got)
	}
	if got := GradientText("", "#000000", "#ffffff"); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func newModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Planets = 0
	w, err := world.New(cfg, world.WithoutPopulation())
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(w, nil, t.TempDir())
	m.running = false
	return m
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestMousePressSelects(t *testing.T) {
	m := newModel(t)
	// Middle cell of the canvas lies on the sun.
	col, row := m.canvas.Width/2, m.canvas.Height/2
	m = update(m, tea.MouseMsg{X: col + canvasLeft, Y: row + canvasTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(m, TickMsg{})
	id, ok := m.world.Selected()
	if !ok || id != 0 {
		t.Fatalf("expected sun selected, got %d %v", id, ok)
	}

	m = update(m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(m, TickMsg{})
	if _, ok := m.world.Selected(); !ok {
		t.Error("press outside the canvas should be ignored")
	}
}

func TestEditForm(t *testing.T) {
	m := newModel(t)
	m = update(m, tea.KeyMsg{Type: tea.KeyTab})
	sun, ok := m.world.Body(0)
	if !ok {
		t.Fatal("missing sun")
	}
	if id, ok := m.world.Selected(); !ok || id != 0 {
		t.Fatalf("tab should select the sun, got %d %v", id, ok)
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if m.world.State() != interact.Editing {
		t.Fatalf("expected editing, got %s", m.world.State())
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.world.State() == interact.Editing {
		t.Fatal("commit should close the form")
	}
	got, _ := m.world.Body(0)
	if got.Name != sun.Name+"x" {
		t.Errorf("expected name %q, got %q", sun.Name+"x", got.Name)
	}
}

func TestRemoveSunReportsError(t *testing.T) {
	m := newModel(t)
	m = update(m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.status == "" {
		t.Error("expected an error status")
	}
	if _, ok := m.world.Body(0); !ok {
		t.Error("sun must survive removal")
	}
	if !strings.Contains(m.View(), "Frame") {
		t.Error("expected the stats panel")
	}
}

func TestAddPlanetKey(t *testing.T) {
	m := newModel(t)
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if n := len(m.world.Snapshot()); n != 2 {
		t.Fatalf("expected 2 bodies, got %d", n)
	}
	m.running = true
	m = update(m, TickMsg{})
	if m.world.Frame() != 1 {
		t.Errorf("expected one step, got frame %d", m.world.Frame())
	}
	if len(m.trails) != 1 {
		t.Errorf("expected a trail for the planet, got %d", len(m.trails))
	}
}
