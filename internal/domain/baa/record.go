// Package baa computes biological age acceleration (BAA): the difference
// between an elastic-net biomarker model and a sex+age-only reference model,
// mean-centred on the training cohort and scaled to years.
package baa

import (
	"fmt"
	"sort"
)

// SexFeature is the name of the binary sex indicator (1 = male).
const SexFeature = "sexM"

// Record holds one subject's blood-marker panel. All fields are required;
// values are taken as given and never range-checked.
type Record struct {
	Age                                      float64 `json:"age"`
	Albumin                                  float64 `json:"albumin"`
	AlkalinePhosphatase                      float64 `json:"alkaline_phosphatase"`
	Urea                                     float64 `json:"urea"`
	Cholesterol                              float64 `json:"cholesterol"`
	Creatinine                               float64 `json:"creatinine"`
	CystatinC                                float64 `json:"cystatin_c"`
	GlycatedHaemoglobin                      float64 `json:"glycated_haemoglobin"`
	LogCReactiveProtein                      float64 `json:"log_c_reactive_protein"`
	LogGammaGlutamyltransferase              float64 `json:"log_gamma_glutamyltransf"`
	RedBloodCellErythrocyteCount             float64 `json:"red_blood_cell_erythrocyte_count"`
	MeanCorpuscularVolume                    float64 `json:"mean_corpuscular_volume"`
	RedBloodCellErythrocyteDistributionWidth float64 `json:"red_blood_cell_erythrocyte_distribution_width"`
	MonocyteCount                            float64 `json:"monocyte_count"`
	NeutrophilCount                          float64 `json:"neutrophill_count"`
	LymphocytePercentage                     float64 `json:"lymphocyte_percentage"`
	MeanSpheredCellVolume                    float64 `json:"mean_sphered_cell_volume"`
	LogAlanineAminotransferase               float64 `json:"log_alanine_aminotransfe"`
	LogSHBG                                  float64 `json:"log_shbg"`
	LogVitaminD                              float64 `json:"log_vitamin_d"`
	HighLightScatterReticulocytePercentage   float64 `json:"high_light_scatter_reticulocyte_percentage"`
	Glucose                                  float64 `json:"glucose"`
	PlateletDistributionWidth                float64 `json:"platelet_distribution_width"`
	MeanCorpuscularHaemoglobin               float64 `json:"mean_corpuscular_haemoglobin"`
	PlateletCrit                             float64 `json:"platelet_crit"`
	ApolipoproteinA                          float64 `json:"apolipoprotein_a"`
	SexM                                     float64 `json:"sexM"`
}

// Feature is a single named value taken from a Record.
type Feature struct {
	Name  string
	Value float64
}

// featureAccessors fixes the iteration order and the name each field is
// joined on against the coefficient table.
var featureAccessors = []struct {
	name  string
	field func(*Record) *float64
}{
	{"age", func(r *Record) *float64 { return &r.Age }},
	{"albumin", func(r *Record) *float64 { return &r.Albumin }},
	{"alkaline_phosphatase", func(r *Record) *float64 { return &r.AlkalinePhosphatase }},
	{"urea", func(r *Record) *float64 { return &r.Urea }},
	{"cholesterol", func(r *Record) *float64 { return &r.Cholesterol }},
	{"creatinine", func(r *Record) *float64 { return &r.Creatinine }},
	{"cystatin_c", func(r *Record) *float64 { return &r.CystatinC }},
	{"glycated_haemoglobin", func(r *Record) *float64 { return &r.GlycatedHaemoglobin }},
	{"log_c_reactive_protein", func(r *Record) *float64 { return &r.LogCReactiveProtein }},
	{"log_gamma_glutamyltransf", func(r *Record) *float64 { return &r.LogGammaGlutamyltransferase }},
	{"red_blood_cell_erythrocyte_count", func(r *Record) *float64 { return &r.RedBloodCellErythrocyteCount }},
	{"mean_corpuscular_volume", func(r *Record) *float64 { return &r.MeanCorpuscularVolume }},
	{"red_blood_cell_erythrocyte_distribution_width", func(r *Record) *float64 { return &r.RedBloodCellErythrocyteDistributionWidth }},
	{"monocyte_count", func(r *Record) *float64 { return &r.MonocyteCount }},
	{"neutrophill_count", func(r *Record) *float64 { return &r.NeutrophilCount }},
	{"lymphocyte_percentage", func(r *Record) *float64 { return &r.LymphocytePercentage }},
	{"mean_sphered_cell_volume", func(r *Record) *float64 { return &r.MeanSpheredCellVolume }},
	{"log_alanine_aminotransfe", func(r *Record) *float64 { return &r.LogAlanineAminotransferase }},
	{"log_shbg", func(r *Record) *float64 { return &r.LogSHBG }},
	{"log_vitamin_d", func(r *Record) *float64 { return &r.LogVitaminD }},
	{"high_light_scatter_reticulocyte_percentage", func(r *Record) *float64 { return &r.HighLightScatterReticulocytePercentage }},
	{"glucose", func(r *Record) *float64 { return &r.Glucose }},
	{"platelet_distribution_width", func(r *Record) *float64 { return &r.PlateletDistributionWidth }},
	{"mean_corpuscular_haemoglobin", func(r *Record) *float64 { return &r.MeanCorpuscularHaemoglobin }},
	{"platelet_crit", func(r *Record) *float64 { return &r.PlateletCrit }},
	{"apolipoprotein_a", func(r *Record) *float64 { return &r.ApolipoproteinA }},
	{SexFeature, func(r *Record) *float64 { return &r.SexM }},
}

// Features returns the record's values in canonical order.
func (r Record) Features() []Feature {
	out := make([]Feature, len(featureAccessors))
	for i, a := range featureAccessors {
		out[i] = Feature{Name: a.name, Value: *a.field(&r)}
	}
	return out
}

// FeatureNames returns the canonical feature names, sex indicator last.
func FeatureNames() []string {
	names := make([]string, len(featureAccessors))
	for i, a := range featureAccessors {
		names[i] = a.name
	}
	return names
}

// RecordFromFeatures builds a Record from named values. Every feature must
// be present and no other names are accepted.
func RecordFromFeatures(values map[string]float64) (Record, error) {
	var r Record
	for _, a := range featureAccessors {
		v, ok := values[a.name]
		if !ok {
			return Record{}, fmt.Errorf("%w: missing %q", ErrInvalidRecord, a.name)
		}
		*a.field(&r) = v
	}
	if len(values) != len(featureAccessors) {
		known := make(map[string]struct{}, len(featureAccessors))
		for _, a := range featureAccessors {
			known[a.name] = struct{}{}
		}
		extra := make([]string, 0, len(values)-len(featureAccessors))
		for name := range values {
			if _, ok := known[name]; !ok {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		return Record{}, fmt.Errorf("%w: unexpected %q", ErrInvalidRecord, extra[0])
	}
	return r, nil
}
