package baa

import (
	"fmt"
	"sort"
)

// Coefficient is the per-feature model entry.
type Coefficient struct {
	// Baseline is the coefficient of the sex+age reference model.
	Baseline float64 `koanf:"baseline" json:"baseline"`
	// ENet is the coefficient of the full elastic-net model.
	ENet float64 `koanf:"enet" json:"enet"`
	// Mean is the training-cohort mean. Zero for the sex indicator,
	// which the source model does not centre.
	Mean float64 `koanf:"mean" json:"mean"`
}

// Delta returns the elastic-net coefficient net of the reference model.
func (c Coefficient) Delta() float64 {
	return c.ENet - c.Baseline
}

// Table maps feature names to their coefficients.
type Table map[string]Coefficient

// literalTable is never handed out directly; see DefaultTable.
var literalTable = Table{
	"age":                                           {0.100432393, 0.074763266, 56.0487752},
	"albumin":                                       {0.0, -0.011331946, 45.1238763},
	"alkaline_phosphatase":                          {0.0, 0.00164946, 82.6847975},
	"urea":                                          {0.0, -0.029554872, 5.3547152},
	"cholesterol":                                   {0.0, -0.0805656, 5.6177437},
	"creatinine":                                    {0.0, -0.01095746, 71.565605},
	"cystatin_c":                                    {0.0, 1.859556436, 0.900946},
	"glycated_haemoglobin":                          {0.0, 0.018116675, 35.4785711},
	"log_c_reactive_protein":                        {0.0, 0.079109916, 0.3003624},
	"log_gamma_glutamyltransf":                      {0.0, 0.265550311, 3.3795613},
	"red_blood_cell_erythrocyte_count":              {0.0, -0.204442153, 4.4994648},
	"mean_corpuscular_volume":                       {0.0, 0.017165356, 91.9251099},
	"red_blood_cell_erythrocyte_distribution_width": {0.0, 0.202009895, 13.4342296},
	"monocyte_count":                                {0.0, 0.36937314, 0.4746987},
	"neutrophill_count":                             {0.0, 0.06679092, 4.1849454},
	"lymphocyte_percentage":                         {0.0, -0.0108158, 28.5817604},
	"mean_sphered_cell_volume":                      {0.0, 0.006736204, 83.6363269},
	"log_alanine_aminotransfe":                      {0.0, -0.312442261, 3.077868},
	"log_shbg":                                      {0.0, 0.292323186, 3.8202787},
	"log_vitamin_d":                                 {0.0, -0.265467867, 3.6052878},
	"high_light_scatter_reticulocyte_percentage":    {0.0, 0.169234165, 0.3988152},
	"glucose":                                       {0.0, 0.032171478, 4.9563054},
	"platelet_distribution_width":                   {0.0, 0.071527711, 16.4543576},
	"mean_corpuscular_haemoglobin":                  {0.0, 0.02746487, 31.8396206},
	"platelet_crit":                                 {0.0, -1.329561046, 0.2385396},
	"apolipoprotein_a":                              {0.0, -0.185139395, 1.5238771},
	SexFeature:                                      {0.51779499, 0.557512185, 0.0},
}

// DefaultTable returns a copy of the published coefficient table.
func DefaultTable() Table {
	return literalTable.Clone()
}

// Clone returns an independent copy of t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Validate checks that t covers exactly the record's features and that the
// sex indicator is uncentred.
func (t Table) Validate() error {
	names := FeatureNames()
	known := make(map[string]struct{}, len(names))
	for _, name := range names {
		known[name] = struct{}{}
		if _, ok := t[name]; !ok {
			return fmt.Errorf("%w: %q has no coefficient entry", ErrUnknownFeature, name)
		}
	}

	var extra []string
	for name := range t {
		if _, ok := known[name]; !ok {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return fmt.Errorf("%w: %q is not a record feature", ErrUnknownFeature, extra[0])
	}

	if mean := t[SexFeature].Mean; mean != 0 {
		return fmt.Errorf("%w: %s training mean must be 0, got %v", ErrInvalidTable, SexFeature, mean)
	}
	return nil
}
