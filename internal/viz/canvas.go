package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blankCell = 0x2800

// Canvas is a braille dot grid with one color per cell. The last color
// written to a cell wins.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]string
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]string, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]string, w)
	}
	c.Clear()
	return c
}

// SubWidth and SubHeight are the canvas size in dots.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// Set sets the dot at (x, y) in sub-pixel coordinates.
func (c *Canvas) Set(x, y int) { c.SetColor(x, y, "") }

// SetColor sets a dot and colors its cell. An empty color leaves the
// cell color as is.
func (c *Canvas) SetColor(x, y int, color string) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if color != "" {
		c.Colors[row][col] = color
	}
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] &= ^rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blankCell {
		c.Grid[row][col] = blankCell
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blankCell
			c.Colors[i][j] = ""
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, color string) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.SetColor(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle outlines a circle with the midpoint algorithm.
func (c *Canvas) DrawCircle(cx, cy, r int, color string) {
	if r <= 0 {
		c.SetColor(cx, cy, color)
		return
	}
	x, y, d := r, 0, 1-r
	for x >= y {
		for _, p := range [8][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}} {
			c.SetColor(cx+p[0], cy+p[1], color)
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

// FillCircle sets every dot within r of the center.
func (c *Canvas) FillCircle(cx, cy, r int, color string) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.SetColor(cx+dx, cy+dy, color)
			}
		}
	}
}

// String renders the dots without color.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render renders the dots with each cell's color.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if color := c.Colors[i][j]; color != "" && r != blankCell {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
			} else {
				b.WriteRune(r)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
