// Package units tags clinical quantities with the physical unit they are
// expressed in. Values carry no conversion logic beyond the single CRP
// mg/L -> mg/dL step the PhenoAge model requires; callers are expected to
// supply measurements already in these units.
package units

// Conversion factor from milligrams per liter to milligrams per deciliter.
const mgPerLiterToMgPerDeciliter = 0.1

// Years is a duration of life in years.
type Years float64

// GramsPerLiter is a mass concentration in g/L (e.g. serum albumin).
type GramsPerLiter float64

// MicromolesPerLiter is a molar concentration in µmol/L (e.g. creatinine).
type MicromolesPerLiter float64

// MillimolesPerLiter is a molar concentration in mmol/L (e.g. fasting glucose).
type MillimolesPerLiter float64

// MilligramsPerLiter is a mass concentration in mg/L (e.g. C-reactive protein).
type MilligramsPerLiter float64

// MilligramsPerDeciliter is a mass concentration in mg/dL.
type MilligramsPerDeciliter float64

// Percent is a ratio expressed in percent.
type Percent float64

// Femtoliters is a cell volume in fL (e.g. mean corpuscular volume).
type Femtoliters float64

// UnitsPerLiter is an enzyme activity in U/L (e.g. alkaline phosphatase).
type UnitsPerLiter float64

// CellsE9PerLiter is a cell count in 10^9 cells per liter (e.g. white blood cells).
type CellsE9PerLiter float64

// MilligramsPerDeciliter converts the concentration to mg/dL.
func (v MilligramsPerLiter) MilligramsPerDeciliter() MilligramsPerDeciliter {
	return MilligramsPerDeciliter(mgPerLiterToMgPerDeciliter * float64(v))
}

func (Years) Unit() string                  { return "years" }
func (GramsPerLiter) Unit() string          { return "g/L" }
func (MicromolesPerLiter) Unit() string     { return "µmol/L" }
func (MillimolesPerLiter) Unit() string     { return "mmol/L" }
func (MilligramsPerLiter) Unit() string     { return "mg/L" }
func (MilligramsPerDeciliter) Unit() string { return "mg/dL" }
func (Percent) Unit() string                { return "%" }
func (Femtoliters) Unit() string            { return "fL" }
func (UnitsPerLiter) Unit() string          { return "U/L" }
func (CellsE9PerLiter) Unit() string        { return "10^9/L" }
