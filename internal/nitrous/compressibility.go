package nitrous

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/interp"

	"github.com/san-kum/hybridsim/internal/hybrid"
)

//go:embed data/n2o_compressibility.csv
var defaultCompressibility []byte

// CompressibilityTable maps vapour pressure to the compressibility factor Z.
// It is read-only after construction and safe to share.
type CompressibilityTable struct {
	pressures []float64
	factors   []float64
	fit       interp.PiecewiseLinear
	minZ      float64
	maxZ      float64
}

// NewCompressibilityTable builds a table from samples ordered by strictly
// increasing pressure.
func NewCompressibilityTable(pressures, factors []float64) (*CompressibilityTable, error) {
	if len(pressures) != len(factors) {
		return nil, fmt.Errorf("%w: %d pressures but %d compressibility factors", hybrid.ErrInvalidTable, len(pressures), len(factors))
	}
	if len(pressures) < 2 {
		return nil, fmt.Errorf("%w: compressibility table needs at least 2 rows", hybrid.ErrInvalidTable)
	}
	for i := 1; i < len(pressures); i++ {
		if pressures[i] <= pressures[i-1] {
			return nil, fmt.Errorf("%w: pressure %.1f at row %d is not increasing", hybrid.ErrInvalidTable, pressures[i], i)
		}
	}

	t := &CompressibilityTable{
		pressures: append([]float64(nil), pressures...),
		factors:   append([]float64(nil), factors...),
	}
	if err := t.fit.Fit(t.pressures, t.factors); err != nil {
		return nil, fmt.Errorf("%w: %v", hybrid.ErrInvalidTable, err)
	}

	t.minZ, t.maxZ = t.factors[0], t.factors[0]
	for _, z := range t.factors {
		if z <= 0 {
			return nil, fmt.Errorf("%w: compressibility factor %.4f must be positive", hybrid.ErrInvalidTable, z)
		}
		t.minZ = min(t.minZ, z)
		t.maxZ = max(t.maxZ, z)
	}
	return t, nil
}

// ReadCompressibility parses a "pressure_pa,z" CSV. A header row is optional.
func ReadCompressibility(r io.Reader) (*CompressibilityTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var pressures, factors []float64
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

		p, perr := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		z, zerr := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if perr != nil || zerr != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("%w: line %d: cannot parse %q", hybrid.ErrInvalidTable, line, row)
		}
		pressures = append(pressures, p)
		factors = append(factors, z)
	}

	return NewCompressibilityTable(pressures, factors)
}

// LoadCompressibility reads a table from path, or the embedded default when
// path is empty.
func LoadCompressibility(path string) (*CompressibilityTable, error) {
	if path == "" {
		return LoadDefaultCompressibility()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open compressibility table: %w", err)
	}
	defer f.Close()
	return ReadCompressibility(f)
}

// LoadDefaultCompressibility returns the embedded saturated N2O vapour table.
func LoadDefaultCompressibility() (*CompressibilityTable, error) {
	return ReadCompressibility(bytes.NewReader(defaultCompressibility))
}

// Z interpolates the compressibility factor at pressure p. Pressures outside
// the table clamp to the nearest end value.
func (t *CompressibilityTable) Z(p float64) float64 {
	return t.fit.Predict(p)
}

// Range returns the lowest and highest tabulated pressures.
func (t *CompressibilityTable) Range() (lo, hi float64) {
	return t.pressures[0], t.pressures[len(t.pressures)-1]
}

// FactorRange returns the smallest and largest tabulated Z.
func (t *CompressibilityTable) FactorRange() (lo, hi float64) {
	return t.minZ, t.maxZ
}

func (t *CompressibilityTable) Len() int { return len(t.pressures) }
