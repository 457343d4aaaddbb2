package analysis

import (
	"strings"
)

// PhasePortrait2D pairs distance with radial velocity. A bound orbit
// traces a closed loop.
type PhasePortrait2D struct {
	Points []struct{ X, Y float64 }
}

func NewPhasePortrait(s *Series) *PhasePortrait2D {
	if s == nil {
		return nil
	}
	portrait := &PhasePortrait2D{
		Points: make([]struct{ X, Y float64 }, 0, s.Len()),
	}
	for i := range s.Distance {
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{
			X: s.Distance[i],
			Y: s.Radial[i],
		})
	}
	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := blank(width, height)

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Zero radial velocity marks the apsides.
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	return render(canvas)
}

func blank(width, height int) [][]rune {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}
	return canvas
}

func render(canvas [][]rune) string {
	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
