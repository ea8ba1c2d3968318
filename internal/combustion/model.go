package combustion

import (
	"fmt"

	"github.com/san-kum/hybridsim/internal/hybrid"
)

// Model applies a combustion efficiency to the ideal table values.
type Model struct {
	Table      *Table
	Efficiency float64
}

func (m Model) Validate() error {
	if m.Table == nil {
		return fmt.Errorf("%w: propellant table is required", hybrid.ErrInvalidConfig)
	}
	if m.Efficiency <= 0 || m.Efficiency > 1 {
		return fmt.Errorf("%w: c* efficiency must be in (0, 1], got %.3f", hybrid.ErrInvalidConfig, m.Efficiency)
	}
	return nil
}

// Lookup returns the delivered c* and the ideal gamma.
func (m Model) Lookup(pressure, of float64) (cstar, gamma float64) {
	cs, g := m.Table.Lookup(pressure, of)
	return cs * m.Efficiency, g
}

func (m Model) CStar(pressure, of float64) float64 {
	cs, _ := m.Lookup(pressure, of)
	return cs
}

func (m Model) Gamma(pressure, of float64) float64 {
	_, g := m.Table.Lookup(pressure, of)
	return g
}

// ChamberPressure is the pressure that chokes the total propellant flow
// through the throat at the given c*.
func ChamberPressure(flow, cstar, throatArea float64) float64 {
	return flow * cstar / throatArea
}
