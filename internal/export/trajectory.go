package export

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"github.com/san-kum/hybridsim/internal/hybrid"
)

// Grain carries the fixed fuel-grain columns of the trajectory file.
type Grain struct {
	Density       float64
	OuterDiameter float64
	Length        float64
}

var trajectoryHeader = []string{
	"Time",
	"Propellant mass (kg)",
	"Chamber pressure (Pa)",
	"Throat diameter (m)",
	"Nozzle inlet gamma",
	"Nozzle efficiency",
	"Exit static pressure (Pa)",
	"Area ratio",
	"Vapour Density (kg/m^3)",
	"Vapour Mass (kg)",
	"Liquid Density (kg/m^3)",
	"Liquid Mass (kg)",
	"Solid Fuel Mass (kg)",
	"Solid Fuel Density (kg/m^3)",
	"Solid Fuel Outer Diameter (m)",
	"Solid Fuel Length (m)",
}

// WriteTrajectory writes the six-degree-of-freedom input table: one row per
// fired tick, then a burnout row one dt later with the oxidizer gone and
// only the remaining fuel counted as propellant.
func WriteTrajectory(w io.Writer, records []hybrid.StepRecord, g Grain) error {
	rows := fired(records)
	if len(rows) == 0 {
		return errors.New("trajectory: no records")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(trajectoryHeader); err != nil {
		return err
	}

	for _, r := range rows {
		if err := cw.Write(trajectoryRow(r, g)); err != nil {
			return err
		}
	}

	last := rows[len(rows)-1]
	burnout := last
	burnout.Time = last.Time + tickLength(records)
	burnout.PropellantMass = last.FuelMass
	burnout.VaporMass = 0
	if err := cw.Write(trajectoryRow(burnout, g)); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func trajectoryRow(r hybrid.StepRecord, g Grain) []string {
	vals := []float64{
		r.Time,
		r.PropellantMass,
		r.ChamberPressure,
		r.ThroatDiameter,
		r.Gamma,
		r.NozzleEfficiency,
		r.ExitPressure,
		r.AreaRatio,
		r.VaporDensity,
		r.VaporMass,
		r.LiquidDensity,
		r.LiquidMass,
		r.FuelMass,
		g.Density,
		g.OuterDiameter,
		g.Length,
	}
	row := make([]string, len(vals))
	for i, v := range vals {
		row[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return row
}

// tickLength infers dt from the first two records.
func tickLength(records []hybrid.StepRecord) float64 {
	if len(records) < 2 {
		return 0
	}
	return records[1].Time - records[0].Time
}
