package report

import (
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hybridsim/internal/hybrid"
)

// PlotOptions sizes every chart.
type PlotOptions struct {
	Width  int
	Height int
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 80, Height: 12}
}

func column(records []hybrid.StepRecord, scale float64, f func(hybrid.StepRecord) float64) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = f(r) * scale
	}
	return out
}

// Pressures charts tank, manifold and chamber pressure in bar.
func Pressures(records []hybrid.StepRecord, opts PlotOptions) string {
	if len(records) < 2 {
		return ""
	}
	return asciigraph.PlotMany([][]float64{
		column(records, 1e-5, func(r hybrid.StepRecord) float64 { return r.TankPressure }),
		column(records, 1e-5, func(r hybrid.StepRecord) float64 { return r.ManifoldPressure }),
		column(records, 1e-5, func(r hybrid.StepRecord) float64 { return r.ChamberPressure }),
	},
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green, asciigraph.Red),
		asciigraph.Caption("pressure (bar): tank blue, manifold green, chamber red"),
	)
}

func single(records []hybrid.StepRecord, opts PlotOptions, caption string, f func(hybrid.StepRecord) float64) string {
	if len(records) < 2 {
		return ""
	}
	return asciigraph.Plot(column(records, 1, f),
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
	)
}

func Thrust(records []hybrid.StepRecord, opts PlotOptions) string {
	return single(records, opts, "thrust (N)", func(r hybrid.StepRecord) float64 { return r.Thrust })
}

func Flux(records []hybrid.StepRecord, opts PlotOptions) string {
	return single(records, opts, "oxidizer mass flux (kg/s/m^2)", func(r hybrid.StepRecord) float64 { return r.OxidizerFlux })
}

func OFRatio(records []hybrid.StepRecord, opts PlotOptions) string {
	return single(records, opts, "O/F ratio", func(r hybrid.StepRecord) float64 { return r.OFRatio })
}

// All renders the four firing charts over the fired ticks.
func All(records []hybrid.StepRecord, opts PlotOptions) string {
	if len(records) > 1 && records[0].Step == 0 {
		records = records[1:]
	}
	charts := []string{
		Pressures(records, opts),
		Thrust(records, opts),
		Flux(records, opts),
		OFRatio(records, opts),
	}

	var b strings.Builder
	for _, c := range charts {
		if c == "" {
			continue
		}
		b.WriteString(c)
		b.WriteString("\n\n")
	}
	return b.String()
}
