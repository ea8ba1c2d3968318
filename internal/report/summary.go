// Package report renders firing results for the terminal: a styled
// performance summary and ASCII charts of the main series.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/metrics"
	"github.com/san-kum/hybridsim/internal/motor"
)

type row struct {
	label string
	value string
}

// Summary renders the outcome line and performance table of a firing.
func Summary(result *motor.Result, s metrics.Summary) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("Firing summary"))
	b.WriteString("\n")
	b.WriteString(MetricLabel.Render("outcome  "))
	b.WriteString(OutcomeStyle(result.Outcome).Render(result.Outcome.String()))
	fmt.Fprintf(&b, "  %s\n", Subtle.Render(fmt.Sprintf("t=%.2f s, %d ticks", result.Time, result.Step)))
	if result.Cause != nil && !result.Outcome.Normal() {
		b.WriteString(Subtle.Render(result.Cause.Error()))
		b.WriteString("\n")
	}
	if result.FluxWarnings > 0 {
		b.WriteString(StatusWarn.Render(fmt.Sprintf("oxidizer flux limit exceeded %d time(s)", result.FluxWarnings)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(table([]row{
		{"burn time", fmt.Sprintf("%.2f s", s.BurnTime)},
		{"initial thrust", fmt.Sprintf("%.1f N", s.InitialThrust)},
		{"mean thrust", fmt.Sprintf("%.1f N", s.MeanThrust)},
		{"peak thrust", fmt.Sprintf("%.1f N", s.PeakThrust)},
		{"total impulse", fmt.Sprintf("%.0f N·s", s.TotalImpulse)},
		{"mean Isp", fmt.Sprintf("%.1f s", s.MeanIsp)},
		{"peak chamber pressure", fmt.Sprintf("%.2f bar", s.PeakChamberPressure/1e5)},
		{"mean chamber pressure", fmt.Sprintf("%.2f bar", s.MeanChamberPressure/1e5)},
		{"mid-burn O/F", fmt.Sprintf("%.2f", s.MidBurnOF)},
		{"mid-burn regression", fmt.Sprintf("%.3f mm/s", s.MidBurnRegression*1e3)},
		{"min pressure margin", fmt.Sprintf("%.1f %%", s.MinPressureMargin*100)},
		{"drop at liquid depletion", depletion(result, s)},
		{"pc oscillation", fmt.Sprintf("%.2f Hz, %.2f bar", s.ChamberOscillation.Frequency, s.ChamberOscillation.Amplitude/1e5)},
		{"propellant consumed", fmt.Sprintf("%.3f kg", s.PropellantConsumed)},
	}))

	return Panel.Render(b.String())
}

func depletion(result *motor.Result, s metrics.Summary) string {
	if result.Snapshot == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f %%", s.LiquidDepletionDrop*100)
}

func table(rows []row) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.label))
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		pad := strings.Repeat(" ", width-lipgloss.Width(r.label)+2)
		lines[i] = MetricLabel.Render(r.label) + pad + MetricValue.Render(r.value)
	}
	return strings.Join(lines, "\n")
}

// Conditions renders the tank and grain state of one record, used for the
// initial and final condition block.
func Conditions(title string, r hybrid.StepRecord, outerDiameter float64) string {
	return Title.Render(title) + "\n" + table([]row{
		{"time", fmt.Sprintf("%.2f s", r.Time)},
		{"tank temperature", fmt.Sprintf("%.2f °C", r.TankTemperature-273.15)},
		{"liquid mass", fmt.Sprintf("%.3f kg", r.LiquidMass)},
		{"vapour mass", fmt.Sprintf("%.3f kg", r.VaporMass)},
		{"vapour pressure", fmt.Sprintf("%.2f bar", r.TankPressure/1e5)},
		{"fuel thickness", fmt.Sprintf("%.2f mm", (outerDiameter-r.PortDiameter)/2*1e3)},
		{"fuel mass", fmt.Sprintf("%.3f kg", r.FuelMass)},
	})
}
