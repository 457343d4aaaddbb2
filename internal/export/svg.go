package export

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/orbitlab/internal/dynamo"
)

const background = "#0a0a0a"

// SnapshotToSVG draws bodies in world coordinates (y down) cropped to the
// width x height box centered on the sun. The selected body, if any, gets
// a ring.
func SnapshotToSVG(bodies []dynamo.BodyView, width, height int, selected int) string {
	var center struct{ X, Y float64 }
	for _, b := range bodies {
		if b.Kind == dynamo.Sun {
			center.X, center.Y = b.Position.X, b.Position.Y
		}
	}
	ox := center.X - float64(width)/2
	oy := center.Y - float64(height)/2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))

	for _, b := range bodies {
		cx, cy := b.Position.X-ox, b.Position.Y-oy
		fill := safeColor(b.Color)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"><title>%s</title></circle>
`, cx, cy, b.Radius, fill, html.EscapeString(b.Name)))
		if b.Locked {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#888888" stroke-dasharray="3 3"/>
`, cx, cy, b.Radius+3))
		}
		if b.ID == selected {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#ffffff" stroke-width="1.5"/>
`, cx, cy, b.Radius+6))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// safeColor passes through a valid hex color and falls back to gray.
func safeColor(s string) string {
	c, err := colorful.Hex(s)
	if err != nil {
		return "#808080"
	}
	return c.Hex()
}

// TrajectoryToSVG creates an SVG path from points in world coordinates,
// scaled to fit with padding. Screen orientation is kept.
func TrajectoryToSVG(points []struct{ X, Y float64 }, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
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
	// One scale for both axes keeps ellipses true to shape.
	scale := math.Min(float64(width)/(maxX-minX), float64(height)/(maxY-minY))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, safeColor(strokeColor)))

	for i, p := range points {
		x := (p.X - minX) * scale
		y := (p.Y - minY) * scale
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
