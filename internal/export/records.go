// Package export writes firing records in the formats consumed downstream:
// a lossless record CSV, the trajectory-simulation CSV, RASP .eng thrust
// curves and SVG plots.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/hybridsim/internal/hybrid"
)

// recordField binds a CSV column to a StepRecord float field.
type recordField struct {
	name string
	get  func(*hybrid.StepRecord) *float64
}

var recordFields = []recordField{
	{"tank_pressure", func(r *hybrid.StepRecord) *float64 { return &r.TankPressure }},
	{"chamber_pressure", func(r *hybrid.StepRecord) *float64 { return &r.ChamberPressure }},
	{"manifold_pressure", func(r *hybrid.StepRecord) *float64 { return &r.ManifoldPressure }},
	{"exit_pressure", func(r *hybrid.StepRecord) *float64 { return &r.ExitPressure }},
	{"thrust", func(r *hybrid.StepRecord) *float64 { return &r.Thrust }},
	{"oxidizer_flux", func(r *hybrid.StepRecord) *float64 { return &r.OxidizerFlux }},
	{"oxidizer_mass_flow", func(r *hybrid.StepRecord) *float64 { return &r.OxidizerMassFlow }},
	{"fuel_mass_flow", func(r *hybrid.StepRecord) *float64 { return &r.FuelMassFlow }},
	{"propellant_mass", func(r *hybrid.StepRecord) *float64 { return &r.PropellantMass }},
	{"liquid_mass", func(r *hybrid.StepRecord) *float64 { return &r.LiquidMass }},
	{"vapour_mass", func(r *hybrid.StepRecord) *float64 { return &r.VaporMass }},
	{"liquid_density", func(r *hybrid.StepRecord) *float64 { return &r.LiquidDensity }},
	{"vapour_density", func(r *hybrid.StepRecord) *float64 { return &r.VaporDensity }},
	{"tank_temperature", func(r *hybrid.StepRecord) *float64 { return &r.TankTemperature }},
	{"fuel_mass", func(r *hybrid.StepRecord) *float64 { return &r.FuelMass }},
	{"gamma", func(r *hybrid.StepRecord) *float64 { return &r.Gamma }},
	{"c_star", func(r *hybrid.StepRecord) *float64 { return &r.CStar }},
	{"throat_diameter", func(r *hybrid.StepRecord) *float64 { return &r.ThroatDiameter }},
	{"nozzle_efficiency", func(r *hybrid.StepRecord) *float64 { return &r.NozzleEfficiency }},
	{"area_ratio", func(r *hybrid.StepRecord) *float64 { return &r.AreaRatio }},
	{"of_ratio", func(r *hybrid.StepRecord) *float64 { return &r.OFRatio }},
	{"regression_rate", func(r *hybrid.StepRecord) *float64 { return &r.RegressionRate }},
	{"port_diameter", func(r *hybrid.StepRecord) *float64 { return &r.PortDiameter }},
}

// RecordHeader is the column layout of WriteRecords.
func RecordHeader() []string {
	header := []string{"step", "time", "phase"}
	for _, f := range recordFields {
		header = append(header, f.name)
	}
	return header
}

// WriteRecords writes one row per record. Floats use the shortest exact
// representation so ReadRecords restores identical values.
func WriteRecords(w io.Writer, records []hybrid.StepRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordHeader()); err != nil {
		return err
	}

	row := make([]string, 0, len(recordFields)+3)
	for i := range records {
		r := &records[i]
		row = row[:0]
		row = append(row, strconv.Itoa(r.Step), formatExact(r.Time), r.Phase.String())
		for _, f := range recordFields {
			row = append(row, formatExact(*f.get(r)))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadRecords parses the output of WriteRecords.
func ReadRecords(r io.Reader) ([]hybrid.StepRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(recordFields) + 3

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("record csv: missing header")
	}

	records := make([]hybrid.StepRecord, 0, len(rows)-1)
	for line, row := range rows[1:] {
		var rec hybrid.StepRecord
		if rec.Step, err = strconv.Atoi(row[0]); err != nil {
			return nil, fmt.Errorf("record csv line %d: step: %w", line+2, err)
		}
		if rec.Time, err = strconv.ParseFloat(row[1], 64); err != nil {
			return nil, fmt.Errorf("record csv line %d: time: %w", line+2, err)
		}
		if rec.Phase, err = parsePhase(row[2]); err != nil {
			return nil, fmt.Errorf("record csv line %d: %w", line+2, err)
		}
		for j, f := range recordFields {
			v, err := strconv.ParseFloat(row[j+3], 64)
			if err != nil {
				return nil, fmt.Errorf("record csv line %d: %s: %w", line+2, f.name, err)
			}
			*f.get(&rec) = v
		}
		records = append(records, rec)
	}
	return records, nil
}

func parsePhase(s string) (hybrid.Phase, error) {
	switch s {
	case hybrid.PhaseLiquid.String():
		return hybrid.PhaseLiquid, nil
	case hybrid.PhaseVapor.String():
		return hybrid.PhaseVapor, nil
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

func formatExact(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// fired drops the initial-condition record, leaving one entry per tick.
func fired(records []hybrid.StepRecord) []hybrid.StepRecord {
	if len(records) > 1 && records[0].Step == 0 {
		return records[1:]
	}
	return records
}
