package gui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/export"
	"github.com/san-kum/orbitlab/internal/interact"
	"github.com/san-kum/orbitlab/internal/world"
)

const (
	screenWidth  = 1280
	screenHeight = 720
	maxTelemetry = 200
	maxTrail     = 80
)

type App struct {
	World     *world.World
	Camera    rl.Camera2D
	Running   bool
	Font      rl.Font
	Trails    map[int][]cp.Vector
	Telemetry []float64 // selected body's distance
	TelemID   int
	Field     int
	Status    string
	SaveDir   string

	logger *log.Logger
	quit   bool
}

// initWindow opens the 1280x720 window and leaves Escape to the app.
func initWindow() {
	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(screenWidth, screenHeight, "orbitlab")
	rl.SetExitKey(0)
}

// loadFont loads Liberation Mono when present and falls back to the
// raylib default font.
func loadFont() rl.Font {
	const path = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
	if _, err := os.Stat(path); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(path, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func NewApp(w *world.World, logger *log.Logger, saveDir string) *App {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cfg := w.Config()
	fps := cfg.FPS
	if fps <= 0 {
		fps = 60
	}
	rl.SetTargetFPS(int32(fps))
	return &App{
		World: w,
		Camera: rl.Camera2D{
			Offset: rl.NewVector2(screenWidth/2, screenHeight/2),
			Target: rl.NewVector2(float32(cfg.SunX), float32(cfg.SunY)),
			Zoom:   1,
		},
		Running:   true,
		Font:      loadFont(),
		Trails:    make(map[int][]cp.Vector),
		Telemetry: make([]float64, 0, maxTelemetry),
		TelemID:   -1,
		SaveDir:   saveDir,
		logger:    logger,
	}
}

// Run opens a window on w and blocks until it is closed.
func Run(w *world.World, logger *log.Logger, saveDir string) {
	initWindow()
	defer rl.CloseWindow()
	app := NewApp(w, logger, saveDir)
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !a.quit {
		a.Update()
		a.Draw()
	}
}

func (a *App) mouseWorld() cp.Vector {
	p := rl.GetScreenToWorld2D(rl.GetMousePosition(), a.Camera)
	return cp.Vector{X: float64(p.X), Y: float64(p.Y)}
}

// apply runs keyboard commands without waiting for the next step.
func (a *App) apply(cmds ...world.Command) {
	for _, c := range cmds {
		a.World.Enqueue(c)
	}
	a.report(a.World.Flush())
}

func (a *App) report(errs []error) {
	if len(errs) > 0 {
		a.Status = errs[len(errs)-1].Error()
	}
}

func (a *App) Update() {
	a.pointer()
	a.camera()
	if a.World.State() == interact.Editing {
		a.editKeys()
	} else {
		a.keys()
	}

	var errs []error
	if a.Running {
		errs = a.World.Step().Errors
	} else {
		errs = a.World.Flush()
	}
	a.report(errs)
	a.record()
}

// pointer turns left button presses, drags and releases into commands.
func (a *App) pointer() {
	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		a.Status = ""
		a.World.Enqueue(world.PointerDown{Pos: a.mouseWorld()})
	case rl.IsMouseButtonReleased(rl.MouseButtonLeft):
		a.World.Enqueue(world.PointerUp{})
	case rl.IsMouseButtonDown(rl.MouseButtonLeft):
		a.World.Enqueue(world.PointerMove{Pos: a.mouseWorld()})
	}
}

func (a *App) camera() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		delta := rl.GetMouseDelta()
		a.Camera.Target = rl.Vector2Subtract(a.Camera.Target, rl.Vector2Scale(delta, 1/a.Camera.Zoom))
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		anchor := rl.GetScreenToWorld2D(rl.GetMousePosition(), a.Camera)
		a.Camera.Offset = rl.GetMousePosition()
		a.Camera.Target = anchor
		a.Camera.Zoom = rl.Clamp(a.Camera.Zoom*(1+0.1*wheel), 0.05, 20)
	}
}

func (a *App) keys() {
	switch {
	case rl.IsKeyPressed(rl.KeyQ):
		a.quit = true
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyA):
		a.Status = ""
		a.apply(world.AddPlanet{})
	case rl.IsKeyPressed(rl.KeyX), rl.IsKeyPressed(rl.KeyDelete):
		a.Status = ""
		a.apply(world.RemoveSelected{})
	case rl.IsKeyPressed(rl.KeyL):
		a.Status = ""
		a.apply(world.ToggleLock{})
	case rl.IsKeyPressed(rl.KeyE), rl.IsKeyPressed(rl.KeyEnter):
		a.Status, a.Field = "", 0
		a.apply(world.BeginEdit{})
	case rl.IsKeyPressed(rl.KeyTab):
		a.cycleSelection()
	case rl.IsKeyPressed(rl.KeyEscape):
		a.apply(world.Deselect{})
	case rl.IsKeyPressed(rl.KeyS):
		a.saveSVG()
	case rl.IsKeyPressed(rl.KeyC):
		cfg := a.World.Config()
		a.Camera.Offset = rl.NewVector2(screenWidth/2, screenHeight/2)
		a.Camera.Target = rl.NewVector2(float32(cfg.SunX), float32(cfg.SunY))
		a.Camera.Zoom = 1
	}
}

func (a *App) cycleSelection() {
	bodies := a.World.Snapshot()
	if len(bodies) == 0 {
		return
	}
	next := 0
	if id, ok := a.World.Selected(); ok {
		for i, b := range bodies {
			if b.ID == id {
				next = (i + 1) % len(bodies)
			}
		}
	}
	a.apply(world.Select{ID: bodies[next].ID})
}

func formFields(d interact.Draft) []dynamo.Field {
	var out []dynamo.Field
	for _, f := range dynamo.Fields() {
		if _, ok := d[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func (a *App) editKeys() {
	draft := a.World.Draft()
	fields := formFields(draft)
	if len(fields) == 0 {
		return
	}
	a.Field = (a.Field%len(fields) + len(fields)) % len(fields)
	f := fields[a.Field]
	value := draft[f]

	switch {
	case rl.IsKeyPressed(rl.KeyEscape):
		a.Status = ""
		a.apply(world.CancelEdit{})
		return
	case rl.IsKeyPressed(rl.KeyEnter):
		a.Status = ""
		a.apply(world.CommitEdit{})
		return
	case rl.IsKeyPressed(rl.KeyTab), rl.IsKeyPressed(rl.KeyDown):
		a.Field = (a.Field + 1) % len(fields)
		return
	case rl.IsKeyPressed(rl.KeyUp):
		a.Field = (a.Field - 1 + len(fields)) % len(fields)
		return
	case rl.IsKeyPressed(rl.KeyBackspace):
		if r := []rune(value); len(r) > 0 {
			value = string(r[:len(r)-1])
		}
	}
	for ch := rl.GetCharPressed(); ch > 0; ch = rl.GetCharPressed() {
		value += string(rune(ch))
	}
	if value != draft[f] {
		a.apply(world.SetDraft{Field: f, Value: value})
	}
}

func (a *App) record() {
	alive := make(map[int]bool)
	for _, b := range a.World.Snapshot() {
		alive[b.ID] = true
		if b.Kind == dynamo.Sun {
			continue
		}
		t := append(a.Trails[b.ID], b.Position)
		if len(t) > maxTrail {
			t = t[1:]
		}
		a.Trails[b.ID] = t
	}
	for id := range a.Trails {
		if !alive[id] {
			delete(a.Trails, id)
		}
	}

	id, ok := a.World.Selected()
	if !ok || id != a.TelemID {
		a.Telemetry = a.Telemetry[:0]
		a.TelemID = -1
	}
	if !ok {
		return
	}
	if d, ok := a.World.DiagnosticsFor(id); ok {
		a.TelemID = id
		a.Telemetry = append(a.Telemetry, d.Distance)
		if len(a.Telemetry) > maxTelemetry {
			a.Telemetry = a.Telemetry[1:]
		}
	}
}

func (a *App) saveSVG() {
	selected := -1
	if id, ok := a.World.Selected(); ok {
		selected = id
	}
	svg := export.SnapshotToSVG(a.World.Snapshot(), screenWidth, screenHeight, selected)
	path := filepath.Join(a.SaveDir, fmt.Sprintf("orbitlab_%06d.svg", a.World.Frame()))
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		a.logger.Error("save snapshot", "path", path, "err", err)
		a.Status = err.Error()
		return
	}
	a.logger.Info("snapshot saved", "path", path)
	a.Status = "saved " + path
}
