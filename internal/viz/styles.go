package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FieldStyles returns n cell styles whose backgrounds blend from the theme's
// FieldLow to FieldHigh, with the foreground set to the front colour.
func FieldStyles(t Theme, n int) []lipgloss.Style {
	if n < 2 {
		n = 2
	}
	sr, sg, sb := parseHex(string(t.FieldLow))
	er, eg, eb := parseHex(string(t.FieldHigh))

	styles := make([]lipgloss.Style, n)
	for i := range styles {
		f := float64(i) / float64(n-1)
		r := int(float64(sr) + f*float64(er-sr))
		g := int(float64(sg) + f*float64(eg-sg))
		b := int(float64(sb) + f*float64(eb-sb))
		styles[i] = lipgloss.NewStyle().
			Foreground(t.Front).
			Background(lipgloss.Color(hexColor(r, g, b)))
	}
	return styles
}

// ProgressBar renders percent in [0, 1] as a bar of width cells.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	r = parseHexByte(hex[1:3])
	g = parseHexByte(hex[3:5])
	b = parseHexByte(hex[5:7])
	return
}

func parseHexByte(s string) int {
	var val int
	for _, c := range s {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}

func hexColor(r, g, b int) string {
	return "#" + hexByte(r) + hexByte(g) + hexByte(b)
}

func hexByte(v int) string {
	v = max(0, min(255, v))
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}
