package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/hybridsim/internal/hybrid"
)

// EngSamples is the number of thrust points written before burnout.
const EngSamples = 31

// Engine is the RASP header information that the simulation does not know.
type Engine struct {
	Name         string
	Diameter     float64 // mm
	Length       float64 // mm
	DryMass      float64 // kg
	Manufacturer string
}

func DefaultEngine() Engine {
	return Engine{
		Name:         "Pulsar",
		Diameter:     160,
		Length:       3000,
		DryMass:      40,
		Manufacturer: "CUSF",
	}
}

// WriteEng writes a RASP thrust curve: a header line, EngSamples evenly
// indexed thrust points and a zero-thrust point at the last record time.
func WriteEng(w io.Writer, records []hybrid.StepRecord, e Engine) error {
	rows := fired(records)
	if len(rows) == 0 {
		return errors.New("eng: no records")
	}

	name := strings.ReplaceAll(e.Name, " ", "_")
	prop := rows[0].PropellantMass

	var b strings.Builder
	b.WriteString(";\n")
	fmt.Fprintf(&b, "%s %g %g P %.2f %.2f %s\n", name, e.Diameter, e.Length, prop, prop+e.DryMass, e.Manufacturer)
	for i := 0; i < EngSamples; i++ {
		r := rows[i*len(rows)/EngSamples]
		fmt.Fprintf(&b, "\t%.2f %.2f\n", r.Time, r.Thrust)
	}
	fmt.Fprintf(&b, "\t%.2f 0.0\n", rows[len(rows)-1].Time)
	b.WriteString(";")

	_, err := io.WriteString(w, b.String())
	return err
}
