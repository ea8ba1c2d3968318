// Package combustion looks up equilibrium combustion properties for the
// nitrous/fuel propellant pair and turns them into chamber pressure.
package combustion

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/hybridsim/internal/hybrid"
)

//go:embed data/n2o_hdpe.csv
var defaultTable []byte

// Sample is one row of a propellant table.
type Sample struct {
	Pressure float64 // Pa
	OF       float64
	CStar    float64 // m/s
	Gamma    float64
}

// Table is a full rectangular grid of (chamber pressure, O/F) samples.
// It is read-only after construction.
type Table struct {
	pressures []float64
	ratios    []float64
	cstar     []float64 // pressure-major
	gamma     []float64
}

// NewTable builds a grid from samples in any order. Every (pressure, O/F)
// pair must appear exactly once.
func NewTable(samples []Sample) (*Table, error) {
	pressures := uniqueSorted(samples, func(s Sample) float64 { return s.Pressure })
	ratios := uniqueSorted(samples, func(s Sample) float64 { return s.OF })
	if len(pressures) < 2 || len(ratios) < 2 {
		return nil, fmt.Errorf("%w: propellant table needs at least 2 pressures and 2 O/F ratios", hybrid.ErrInvalidTable)
	}
	if len(samples) != len(pressures)*len(ratios) {
		return nil, fmt.Errorf("%w: %d samples do not fill a %dx%d grid", hybrid.ErrInvalidTable, len(samples), len(pressures), len(ratios))
	}

	t := &Table{
		pressures: pressures,
		ratios:    ratios,
		cstar:     make([]float64, len(samples)),
		gamma:     make([]float64, len(samples)),
	}
	seen := make([]bool, len(samples))
	for _, s := range samples {
		if s.CStar <= 0 || s.Gamma <= 1 {
			return nil, fmt.Errorf("%w: bad sample at p=%.0f O/F=%.2f: c*=%.1f gamma=%.4f", hybrid.ErrInvalidTable, s.Pressure, s.OF, s.CStar, s.Gamma)
		}
		i := sort.SearchFloat64s(pressures, s.Pressure)
		j := sort.SearchFloat64s(ratios, s.OF)
		k := t.index(i, j)
		if seen[k] {
			return nil, fmt.Errorf("%w: duplicate sample at p=%.0f O/F=%.2f", hybrid.ErrInvalidTable, s.Pressure, s.OF)
		}
		seen[k] = true
		t.cstar[k] = s.CStar
		t.gamma[k] = s.Gamma
	}
	return t, nil
}

func uniqueSorted(samples []Sample, key func(Sample) float64) []float64 {
	set := make(map[float64]struct{})
	for _, s := range samples {
		set[key(s)] = struct{}{}
	}
	out := make([]float64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

func (t *Table) index(i, j int) int {
	return i*len(t.ratios) + j
}

// ReadTable parses a "pressure_pa,of_ratio,c_star,gamma" CSV with a header row.
func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	var samples []Sample
	line := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", hybrid.ErrInvalidTable, err)
		}
		line++
		if line == 1 {
			continue
		}

		var vals [4]float64
		for i, field := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", hybrid.ErrInvalidTable, line, err)
			}
			vals[i] = v
		}
		samples = append(samples, Sample{Pressure: vals[0], OF: vals[1], CStar: vals[2], Gamma: vals[3]})
	}

	return NewTable(samples)
}

// LoadTable reads a table from path, or the embedded N2O/HDPE table when
// path is empty.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return LoadDefaultTable()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open propellant table: %w", err)
	}
	defer f.Close()
	return ReadTable(f)
}

func LoadDefaultTable() (*Table, error) {
	return ReadTable(bytes.NewReader(defaultTable))
}

// Lookup bilinearly interpolates c* and gamma. Inputs outside the grid clamp
// to its edges.
func (t *Table) Lookup(pressure, of float64) (cstar, gamma float64) {
	i, fp := bracket(t.pressures, pressure)
	j, fo := bracket(t.ratios, of)

	blend := func(v []float64) float64 {
		lo := v[t.index(i, j)]*(1-fo) + v[t.index(i, j+1)]*fo
		hi := v[t.index(i+1, j)]*(1-fo) + v[t.index(i+1, j+1)]*fo
		return lo*(1-fp) + hi*fp
	}
	return blend(t.cstar), blend(t.gamma)
}

// bracket returns the lower index of the segment containing x and the
// fractional position within it.
func bracket(xs []float64, x float64) (int, float64) {
	x = min(max(x, xs[0]), xs[len(xs)-1])
	i := sort.SearchFloat64s(xs, x)
	if i == 0 {
		i = 1
	}
	return i - 1, (x - xs[i-1]) / (xs[i] - xs[i-1])
}

// Bounds returns the tabulated pressure and O/F ranges.
func (t *Table) Bounds() (pMin, pMax, ofMin, ofMax float64) {
	return t.pressures[0], t.pressures[len(t.pressures)-1], t.ratios[0], t.ratios[len(t.ratios)-1]
}
