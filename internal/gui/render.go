package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/interact"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColLocked  = rl.NewColor(255, 0, 255, 255)
	ColError   = rl.NewColor(255, 68, 68, 255)
)

// bodyColor parses a hex color, falling back to gray.
func bodyColor(hex string, alpha uint8) rl.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return rl.NewColor(128, 128, 128, alpha)
	}
	r, g, b := c.RGB255()
	return rl.NewColor(r, g, b, alpha)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode2D(a.Camera)
	a.drawWorld()
	rl.EndMode2D()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) drawWorld() {
	bodies := a.World.Snapshot()
	colors := make(map[int]string, len(bodies))
	for _, b := range bodies {
		colors[b.ID] = b.Color
	}
	for id, trail := range a.Trails {
		for i := 1; i < len(trail); i++ {
			alpha := uint8(20 + 100*i/len(trail))
			rl.DrawLineV(vec(trail[i-1].X, trail[i-1].Y), vec(trail[i].X, trail[i].Y), bodyColor(colors[id], alpha))
		}
	}

	selected, hasSel := a.World.Selected()
	for _, b := range bodies {
		pos := vec(b.Position.X, b.Position.Y)
		r := float32(b.Radius)
		if b.Kind == dynamo.Sun {
			rl.DrawCircleV(pos, r*1.4, bodyColor(b.Color, 40))
		}
		rl.DrawCircleV(pos, r, bodyColor(b.Color, 255))
		if b.Locked {
			rl.DrawCircleLines(int32(pos.X), int32(pos.Y), r+3, ColLocked)
		}
		if b.Held {
			rl.DrawLineV(pos, rl.GetScreenToWorld2D(rl.GetMousePosition(), a.Camera), ColAccent)
		}
		if hasSel && b.ID == selected {
			rl.DrawCircleLines(int32(pos.X), int32(pos.Y), r+6, ColSelect)
		}
	}
}

func vec(x, y float64) rl.Vector2 { return rl.NewVector2(float32(x), float32(y)) }

func (a *App) DrawHUD() {
	a.drawText("orbitlab", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: frame %d  t %.1f  bodies %d", a.World.Frame(), a.World.Time(), len(a.World.Snapshot())), 160, 34, 16, ColText)

	status := "RUNNING"
	col := ColSelect
	if !a.Running {
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, 1150, 30, 16, col)

	if id, ok := a.World.Selected(); ok {
		a.drawInspector(id)
	}
	a.DrawTelemetry()
	if a.Status != "" {
		a.drawText(a.Status, 30, 640, 14, ColError)
	}

	a.drawText("[SPACE] PAUSE [A] ADD [X] REMOVE [L] LOCK [E] EDIT [TAB] SELECT [S] SVG [C] CENTER [Q] QUIT", 380, 690, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 690, 14, ColTextDim)
}

func (a *App) drawInspector(id int) {
	b, ok := a.World.Body(id)
	if !ok {
		return
	}
	x, y := 980, 80
	rl.DrawRectangle(int32(x-10), int32(y-10), 290, 260, rl.NewColor(20, 20, 20, 220))
	rl.DrawCircle(int32(x+8), int32(y+10), 8, bodyColor(b.Color, 255))
	a.drawText(fmt.Sprintf("%s #%d", b.Name, b.ID), x+24, y, 20, ColSelect)
	y += 36

	if a.World.State() == interact.Editing {
		draft := a.World.Draft()
		for i, f := range formFields(draft) {
			line := fmt.Sprintf("  %-7s %s", f, draft[f])
			c := ColText
			if i == a.Field {
				line = fmt.Sprintf("> %-7s %s_", f, draft[f])
				c = ColSelect
			}
			a.drawText(line, x, y, 16, c)
			y += 24
		}
		a.drawText("ENTER: SAVE  ESC: CANCEL  TAB: NEXT", x, y+8, 12, ColTextDim)
		return
	}

	lines := []string{
		fmt.Sprintf("mass      %.2f", b.Mass),
		fmt.Sprintf("radius    %.1f", b.Radius),
	}
	if d, ok := a.World.DiagnosticsFor(id); ok {
		lines = append(lines,
			fmt.Sprintf("distance  %.1f", d.Distance),
			fmt.Sprintf("angle     %.1f", d.Angle),
			fmt.Sprintf("radial    %+.3f", d.Radial),
			fmt.Sprintf("tangential %+.3f", d.Tangential),
			fmt.Sprintf("force     %.3f", d.Force),
		)
	}
	if b.Locked {
		lines = append(lines, "locked")
	}
	for _, l := range lines {
		a.drawText(l, x, y, 16, ColText)
		y += 24
	}
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// DrawTelemetry plots the selected body's distance history.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 560
	width, height := 400, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("d: %.1f", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
