package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/thermobox/internal/metrics"
)

// Styles are the lipgloss styles of one theme.
type Styles struct {
	Theme   Theme
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Hint    lipgloss.Style
	Running lipgloss.Style
	Paused  lipgloss.Style
	Wall    lipgloss.Style
	Gas     lipgloss.Style
	Cold    lipgloss.Style
	Hot     lipgloss.Style
	Chamber lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Theme:   t,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Label:   lipgloss.NewStyle().Foreground(t.Muted),
		Value:   lipgloss.NewStyle().Bold(true).Foreground(t.Gas),
		Hint:    lipgloss.NewStyle().Italic(true).Foreground(t.Muted),
		Running: lipgloss.NewStyle().Bold(true).Foreground(t.Gas),
		Paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Wall:    lipgloss.NewStyle().Foreground(t.Wall),
		Gas:     lipgloss.NewStyle().Foreground(t.Gas),
		Cold:    lipgloss.NewStyle().Foreground(t.Cold),
		Hot:     lipgloss.NewStyle().Foreground(t.Hot),
		// the border doubles as the enclosure walls
		Chamber: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(t.Wall),
	}
}

// GradientText colours text from start to end, one rune at a time.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	var result strings.Builder
	for i, c := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		style := lipgloss.NewStyle().Foreground(Blend(start, end, t))
		result.WriteString(style.Render(string(c)))
	}
	return result.String()
}

// Blend mixes two hex colours, t = 0 giving a and t = 1 giving b.
func Blend(a, b lipgloss.Color, t float64) lipgloss.Color {
	t = min(max(t, 0), 1)
	ar, ag, ab := parseHex(string(a))
	br, bg, bb := parseHex(string(b))
	return lipgloss.Color(hexColor(
		int(float64(ar)+t*float64(br-ar)),
		int(float64(ag)+t*float64(bg-ag)),
		int(float64(ab)+t*float64(bb-ab)),
	))
}

// ProgressBar renders a bar filled to percent in [0, 1].
func ProgressBar(percent float64, width int, fill, empty lipgloss.Style) string {
	filled := int(percent * float64(width))
	filled = min(max(filled, 0), width)
	return fill.Render(strings.Repeat("━", filled)) + empty.Render(strings.Repeat("─", width-filled))
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders the last width values as block characters.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(sparkChars)-1))
		idx = min(max(idx, 0), len(sparkChars)-1)
		sb.WriteRune(sparkChars[idx])
	}
	return sb.String()
}

// HistogramBars renders one horizontal bar per bucket, scaled so the
// fullest bucket spans width cells.
func HistogramBars(buckets []metrics.Bucket, width int, bar lipgloss.Style) []string {
	if len(buckets) == 0 || width <= 0 {
		return nil
	}

	peak := buckets[metrics.Peak(buckets)].Count
	lines := make([]string, 0, len(buckets))
	for _, b := range buckets {
		n := 0
		if peak > 0 {
			n = b.Count * width / peak
		}
		if b.Count > 0 && n == 0 {
			n = 1
		}
		label := fmt.Sprintf("%8.1f ", b.Lo)
		lines = append(lines, label+bar.Render(strings.Repeat("█", n))+fmt.Sprintf(" %d", b.Count))
	}
	return lines
}

// Separator renders a muted rule with a centre mark.
func Separator(width int, style lipgloss.Style) string {
	if width < 8 {
		return style.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return style.Render(left + " ◆ " + right)
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	return parseHexByte(hex[1:3]), parseHexByte(hex[3:5]), parseHexByte(hex[5:7])
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
	v = min(max(v, 0), 255)
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}
