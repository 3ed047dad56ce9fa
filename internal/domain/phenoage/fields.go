package phenoage

import (
	"fmt"
	"sort"

	"github.com/okian/bioage/internal/domain/units"
)

var fieldSetters = []struct {
	name string
	set  func(*Input, float64)
}{
	{"age", func(in *Input, v float64) { in.Age = units.Years(v) }},
	{"albumin", func(in *Input, v float64) { in.Albumin = units.GramsPerLiter(v) }},
	{"creatinine", func(in *Input, v float64) { in.Creatinine = units.MicromolesPerLiter(v) }},
	{"glucose", func(in *Input, v float64) { in.Glucose = units.MillimolesPerLiter(v) }},
	{"crp", func(in *Input, v float64) { in.CRP = units.MilligramsPerLiter(v) }},
	{"lymphocyte_pct", func(in *Input, v float64) { in.LymphocytePct = units.Percent(v) }},
	{"mcv", func(in *Input, v float64) { in.MCV = units.Femtoliters(v) }},
	{"rdw", func(in *Input, v float64) { in.RDW = units.Percent(v) }},
	{"alkaline_phosphatase", func(in *Input, v float64) { in.AlkalinePhosphatase = units.UnitsPerLiter(v) }},
	{"wbc", func(in *Input, v float64) { in.WBC = units.CellsE9PerLiter(v) }},
}

// FieldNames returns the JSON names of every Input field, all of which are
// required.
func FieldNames() []string {
	names := make([]string, len(fieldSetters))
	for i, f := range fieldSetters {
		names[i] = f.name
	}
	return names
}

// InputFromFields builds an Input from values keyed by FieldNames.
func InputFromFields(values map[string]float64) (Input, error) {
	var in Input
	for _, f := range fieldSetters {
		v, ok := values[f.name]
		if !ok {
			return Input{}, fmt.Errorf("%w: missing %q", ErrInvalidInput, f.name)
		}
		f.set(&in, v)
	}
	if len(values) == len(fieldSetters) {
		return in, nil
	}
	extra := make([]string, 0, len(values))
	for name := range values {
		if !isField(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return Input{}, fmt.Errorf("%w: unexpected %q", ErrInvalidInput, extra[0])
}

func isField(name string) bool {
	for _, f := range fieldSetters {
		if f.name == name {
			return true
		}
	}
	return false
}
