package loadcheck

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/bioage/internal/domain/baa"
	"github.com/okian/bioage/internal/domain/phenoage"
	"github.com/okian/bioage/pkg/logger"
)

// Ranges for synthetic subjects.
const (
	baaSpread       = 0.15 // relative spread around the cohort mean
	baaAgeMin       = 40.0
	baaAgeRange     = 30.0
	phenoSpreadMin  = 0.7
	phenoSpreadSpan = 0.6
)

// phenoAgeBaseline is a healthy adult panel that synthetic subjects scale.
var phenoAgeBaseline = map[string]float64{
	"age": 45, "albumin": 45, "creatinine": 80, "glucose": 5.2, "crp": 1.5,
	"lymphocyte_pct": 30, "mcv": 90, "rdw": 13, "alkaline_phosphatase": 70, "wbc": 6,
}

// generateSubjects creates NumSubjects subjects for each estimator. The
// same seed always yields the same values; IDs are always fresh.
func generateSubjects(ctx context.Context, config *Config, stats *Stats) []Subject {
	logger.Get().Info(ctx, "generating subjects",
		logger.Int("perEstimator", config.NumSubjects),
		logger.Any("seed", config.Seed))

	rng := rand.New(rand.NewPCG(config.Seed, config.Seed^0x9e3779b97f4a7c15))
	table := baa.DefaultTable()

	subjects := make([]Subject, 0, 2*config.NumSubjects)
	for i := 0; i < config.NumSubjects; i++ {
		subjects = append(subjects,
			Subject{ID: uuid.NewString(), Estimator: "baa", Values: baaValues(rng, table)},
			Subject{ID: uuid.NewString(), Estimator: "phenoage", Values: phenoAgeValues(rng)},
		)
	}

	stats.SubjectsGenerated = len(subjects)
	return subjects
}

func baaValues(rng *rand.Rand, table baa.Table) map[string]float64 {
	values := make(map[string]float64, len(table))
	for _, name := range baa.FeatureNames() {
		mean := table[name].Mean
		values[name] = mean * (1 + baaSpread*(2*rng.Float64()-1))
	}
	values["age"] = baaAgeMin + baaAgeRange*rng.Float64()
	values[baa.SexFeature] = float64(rng.IntN(2))
	return values
}

func phenoAgeValues(rng *rand.Rand) map[string]float64 {
	values := make(map[string]float64, len(phenoAgeBaseline))
	for _, name := range phenoage.FieldNames() {
		values[name] = phenoAgeBaseline[name] * (phenoSpreadMin + phenoSpreadSpan*rng.Float64())
	}
	return values
}
