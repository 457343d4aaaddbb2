package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	canvasStyle  = lipgloss.NewStyle().Padding(1, 2)
	statsStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(panelWidth)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	runningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	pausedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
)

// GradientText blends each rune's color from start to end in Luv space.
// Unparseable colors fall back to plain text.
func GradientText(text, start, end string) string {
	a, err := colorful.Hex(start)
	if err != nil {
		return text
	}
	b, err := colorful.Hex(end)
	if err != nil {
		return text
	}
	runes := []rune(text)
	if len(runes) < 2 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(a.Hex())).Render(text)
	}
	var out strings.Builder
	for i, r := range runes {
		c := a.BlendLuv(b, float64(i)/float64(len(runes)-1)).Clamped()
		out.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return out.String()
}

// Separator draws a muted rule with a center mark.
func Separator(width int) string {
	if width < 8 {
		return subtleStyle.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return subtleStyle.Render(left + " ◆ " + right)
}

// swatch renders a small block in the given hex color.
func swatch(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "  "
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render("  ")
}
