package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/thermobox/internal/dynamo"
	"github.com/san-kum/thermobox/internal/physics"
	"github.com/san-kum/thermobox/internal/viz"
	"gonum.org/v1/gonum/floats"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG converts a Braille canvas to SVG, one dot per set sub-pixel.
func CanvasToSVG(canvas *viz.Canvas, scale float64, theme viz.Theme) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.PixelSize()
	var sb strings.Builder
	header(&sb, float64(pw)*scale, float64(ph)*scale)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", theme.Gas)

	dotRadius := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// FrameSVG draws every particle of f inside region, width pixels wide.
// Particles are coloured from theme.Cold to theme.Hot by temperature,
// relative to the hottest particle in the frame.
func FrameSVG(f *dynamo.Frame, region physics.Bounds, width int, theme viz.Theme) string {
	if f == nil || width <= 0 || region.Width() <= 0 || region.Height() <= 0 {
		return ""
	}

	scale := float64(width) / region.Width()
	height := region.Height() * scale

	var sb strings.Builder
	header(&sb, float64(width), height)
	fmt.Fprintf(&sb, "<rect x=\"0\" y=\"0\" width=\"%d\" height=\"%.0f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.1f\"/>\n",
		width, height, theme.Wall, math.Max(physics.WallThickness*scale, 1))

	hottest := 0.0
	if len(f.Temperatures) > 0 {
		hottest = floats.Max(f.Temperatures)
	}
	r := math.Max(physics.Radius*scale, 0.5)

	sb.WriteString("<g>\n")
	for i, p := range f.Positions {
		t := 0.0
		if hottest > 0 && i < len(f.Temperatures) {
			t = f.Temperatures[i] / hottest
		}
		x := (p.X - region.Left) * scale
		// svg y grows downward
		y := (region.Top - p.Y) * scale
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n",
			x, y, r, viz.Blend(theme.Cold, theme.Hot, t))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots values against times as a polyline.
func SeriesToSVG(times, values []float64, width, height int, strokeColor string) string {
	n := min(len(times), len(values))
	if n < 2 {
		return ""
	}
	times, values = times[:n], values[:n]

	minX, maxX := floats.Min(times), floats.Max(times)
	minY, maxY := floats.Min(values), floats.Max(values)

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i := range times {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)

		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
