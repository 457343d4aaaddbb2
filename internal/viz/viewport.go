package viz

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Viewport maps world coordinates onto canvas dots. Scale is world units
// per dot; both axes share it so circles stay round.
type Viewport struct {
	Cols, Rows int
	Center     cp.Vector
	Scale      float64
}

// Fit returns a viewport over a cols x rows canvas that shows radius
// world units around center along the shorter axis.
func Fit(cols, rows int, center cp.Vector, radius float64) Viewport {
	short := math.Min(float64(cols*2), float64(rows*4))
	scale := 1.0
	if short > 0 && radius > 0 {
		scale = 2 * radius / short
	}
	return Viewport{Cols: cols, Rows: rows, Center: center, Scale: scale}
}

// ToDot maps a world point to dot coordinates.
func (v Viewport) ToDot(p cp.Vector) (int, int) {
	x := (p.X-v.Center.X)/v.Scale + float64(v.Cols*2)/2
	y := (p.Y-v.Center.Y)/v.Scale + float64(v.Rows*4)/2
	return int(math.Floor(x)), int(math.Floor(y))
}

// Dots converts a world length to dots, never below zero.
func (v Viewport) Dots(length float64) int {
	return int(math.Max(0, math.Round(length/v.Scale)))
}

// CellToWorld maps the center of terminal cell (col, row) to world
// coordinates.
func (v Viewport) CellToWorld(col, row int) cp.Vector {
	x := float64(col*2+1) - float64(v.Cols*2)/2
	y := float64(row*4+2) - float64(v.Rows*4)/2
	return cp.Vector{X: v.Center.X + x*v.Scale, Y: v.Center.Y + y*v.Scale}
}

// Zoom scales the view by factor around its center.
func (v Viewport) Zoom(factor float64) Viewport {
	if factor > 0 {
		v.Scale *= factor
	}
	return v
}
