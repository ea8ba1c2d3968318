package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/hybridsim/internal/hybrid"
)

type Point struct{ X, Y float64 }

// Curve is one polyline of a chart.
type Curve struct {
	Label  string
	Color  string
	Points []Point
}

// CurvesToSVG draws curves on shared axes with 10% padding around their
// combined bounds. Curves with fewer than two points are skipped.
func CurvesToSVG(title string, curves []Curve, width, height int) string {
	var drawn []Curve
	for _, c := range curves {
		if len(c.Points) >= 2 {
			drawn = append(drawn, c)
		}
	}
	if len(drawn) == 0 {
		return ""
	}

	// Find bounds
	minX, maxX := drawn[0].Points[0].X, drawn[0].Points[0].X
	minY, maxY := drawn[0].Points[0].Y, drawn[0].Points[0].Y
	for _, c := range drawn {
		for _, p := range c.Points {
			minX = min(minX, p.X)
			maxX = max(maxX, p.X)
			minY = min(minY, p.Y)
			maxY = max(maxY, p.Y)
		}
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

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="8" y="18" fill="#ffffff" font-family="monospace" font-size="14">%s</text>
`, html.EscapeString(title)))
	}

	// zero line when the data crosses it
	if minY < 0 && maxY > 0 {
		y := float64(height) - (0-minY)/rangeY*float64(height)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-dasharray="4 4"/>
`, y, width, y))
	}

	for ci, c := range drawn {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, c.Color))
		for i, p := range c.Points {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)

			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		if c.Label != "" {
			sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, width-180, 18+16*ci, c.Color, html.EscapeString(c.Label)))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func series(records []hybrid.StepRecord, field func(hybrid.StepRecord) float64) []Point {
	pts := make([]Point, len(records))
	for i, r := range records {
		pts[i] = Point{X: r.Time, Y: field(r)}
	}
	return pts
}

// ThrustSVG plots thrust against time.
func ThrustSVG(records []hybrid.StepRecord, width, height int) string {
	return CurvesToSVG("Thrust (N)", []Curve{
		{Label: "thrust", Color: "#00ff88", Points: series(records, func(r hybrid.StepRecord) float64 { return r.Thrust })},
	}, width, height)
}

// PressureSVG plots tank, manifold and chamber pressure in bar.
func PressureSVG(records []hybrid.StepRecord, width, height int) string {
	bar := func(f func(hybrid.StepRecord) float64) func(hybrid.StepRecord) float64 {
		return func(r hybrid.StepRecord) float64 { return f(r) / 1e5 }
	}
	return CurvesToSVG("Pressure (bar)", []Curve{
		{Label: "tank", Color: "#00ccff", Points: series(records, bar(func(r hybrid.StepRecord) float64 { return r.TankPressure }))},
		{Label: "manifold", Color: "#ffcc00", Points: series(records, bar(func(r hybrid.StepRecord) float64 { return r.ManifoldPressure }))},
		{Label: "chamber", Color: "#ff4444", Points: series(records, bar(func(r hybrid.StepRecord) float64 { return r.ChamberPressure }))},
	}, width, height)
}
