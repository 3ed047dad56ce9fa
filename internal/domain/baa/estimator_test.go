package baa_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/bioage/internal/domain/baa"
	. "github.com/smartystreets/goconvey/convey"
)

// Golden values computed from the published scoring formula for sampleRecord.
const (
	goldenWithoutSex = 1.5316514019202296
	goldenWithSex    = 1.92882335192023
	goldenTolerance  = 1e-6
)

func sampleRecord() baa.Record {
	return baa.Record{
		Age:                                      68,
		SexM:                                     1,
		Albumin:                                  46.59,
		AlkalinePhosphatase:                      66.1,
		Urea:                                     8.77,
		Cholesterol:                              4.047,
		Creatinine:                               105.2,
		CystatinC:                                1.212,
		GlycatedHaemoglobin:                      41.2,
		LogCReactiveProtein:                      0.8754687,
		LogGammaGlutamyltransferase:              3.580737,
		RedBloodCellErythrocyteCount:             4.17,
		MeanCorpuscularVolume:                    89.2,
		RedBloodCellErythrocyteDistributionWidth: 14.8,
		MonocyteCount:                            0.5,
		NeutrophilCount:                          6.7,
		LymphocytePercentage:                     11.7,
		MeanSpheredCellVolume:                    80.6,
		LogAlanineAminotransferase:               2.98214,
		LogSHBG:                                  3.404525,
		LogVitaminD:                              4.592085,
		HighLightScatterReticulocytePercentage:   0.35,
		Glucose:                                  4.641,
		PlateletDistributionWidth:                15.7,
		MeanCorpuscularHaemoglobin:               30.3,
		PlateletCrit:                             0.298,
		ApolipoproteinA:                          1.647,
	}
}

func recordFrom(values map[string]float64) baa.Record {
	rec, err := baa.RecordFromFeatures(values)
	if err != nil {
		panic(err)
	}
	return rec
}

func meanValues() map[string]float64 {
	values := make(map[string]float64)
	for name, c := range baa.DefaultTable() {
		values[name] = c.Mean
	}
	return values
}

func TestEstimator_Golden(t *testing.T) {
	Convey("Given the sample subject", t, func() {
		rec := sampleRecord()

		Convey("When estimating with the default estimator", func() {
			got, err := baa.Estimate(rec)

			Convey("Then the sex term is excluded", func() {
				So(err, ShouldBeNil)
				So(got, ShouldAlmostEqual, goldenWithoutSex, goldenTolerance)
				So(baa.NewEstimator().IncludesSexTerm(), ShouldBeFalse)
			})
		})

		Convey("When estimating with the sex term enabled", func() {
			got, err := baa.NewEstimator(baa.WithSexTerm(true)).Estimate(rec)

			Convey("Then the full model result is returned", func() {
				So(err, ShouldBeNil)
				So(got, ShouldAlmostEqual, goldenWithSex, goldenTolerance)
			})
		})

		Convey("When comparing both policies", func() {
			without, err1 := baa.NewEstimator(baa.WithSexTerm(false)).Estimate(rec)
			with, err2 := baa.NewEstimator(baa.WithSexTerm(true)).Estimate(rec)

			Convey("Then they differ by exactly the scaled sex delta", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(with-without, ShouldAlmostEqual, (0.557512185-0.51779499)*10, 1e-9)
			})
		})
	})
}

func TestEstimator_Properties(t *testing.T) {
	Convey("Given a record at the training means", t, func() {
		rec := recordFrom(meanValues())

		Convey("Then the sex indicator is zero", func() {
			So(rec.SexM, ShouldEqual, 0.0)
		})

		Convey("Then both policies yield exactly zero", func() {
			got, err := baa.NewEstimator().Estimate(rec)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 0.0)

			got, err = baa.NewEstimator(baa.WithSexTerm(true)).Estimate(rec)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 0.0)
		})
	})

	Convey("Given a single feature moved away from its mean", t, func() {
		table := baa.DefaultTable()
		mean := table["cystatin_c"].Mean
		est := baa.NewEstimator()

		values := meanValues()
		values["cystatin_c"] = mean + 0.25
		once, err1 := est.Estimate(recordFrom(values))

		values["cystatin_c"] = mean + 0.5
		twice, err2 := est.Estimate(recordFrom(values))

		Convey("Then doubling the deviation doubles the contribution", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(once, ShouldNotEqual, 0.0)
			So(twice, ShouldAlmostEqual, 2*once, 1e-12)
		})
	})

	Convey("Given repeated evaluations of the same record", t, func() {
		rec := sampleRecord()
		est := baa.NewEstimator(baa.WithSexTerm(true))

		first, err1 := est.Estimate(rec)
		second, err2 := est.Estimate(rec)

		Convey("Then results are bit-identical", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(math.Float64bits(first), ShouldEqual, math.Float64bits(second))
		})
	})

	Convey("Given physiologically impossible values", t, func() {
		rec := sampleRecord()
		rec.Albumin = -1e6
		rec.Age = 1e4

		Convey("Then the estimate is still computed", func() {
			got, err := baa.Estimate(rec)
			So(err, ShouldBeNil)
			So(math.IsInf(got, 0), ShouldBeFalse)
		})
	})
}

func TestEstimator_NonFinite(t *testing.T) {
	Convey("Given a record containing NaN", t, func() {
		rec := sampleRecord()
		rec.Glucose = math.NaN()

		Convey("Then NaN propagates without error", func() {
			got, err := baa.Estimate(rec)
			So(err, ShouldBeNil)
			So(math.IsNaN(got), ShouldBeTrue)
		})
	})

	Convey("Given a record containing +Inf in a positive-delta feature", t, func() {
		rec := sampleRecord()
		rec.CystatinC = math.Inf(1)

		Convey("Then +Inf propagates without error", func() {
			got, err := baa.Estimate(rec)
			So(err, ShouldBeNil)
			So(math.IsInf(got, 1), ShouldBeTrue)
		})
	})

	Convey("Given a NaN sex indicator", t, func() {
		rec := sampleRecord()
		rec.SexM = math.NaN()

		Convey("Then it only surfaces when the sex term is applied", func() {
			without, err := baa.NewEstimator().Estimate(rec)
			So(err, ShouldBeNil)
			So(without, ShouldAlmostEqual, goldenWithoutSex, goldenTolerance)

			with, err := baa.NewEstimator(baa.WithSexTerm(true)).Estimate(rec)
			So(err, ShouldBeNil)
			So(math.IsNaN(with), ShouldBeTrue)
		})
	})
}

func TestEstimator_TableIntegrity(t *testing.T) {
	Convey("Given the published table", t, func() {
		table := baa.DefaultTable()

		Convey("Then it matches the record features one to one", func() {
			So(table.Validate(), ShouldBeNil)
			So(len(table), ShouldEqual, len(baa.FeatureNames()))
			for _, name := range baa.FeatureNames() {
				_, ok := table[name]
				So(ok, ShouldBeTrue)
			}
		})

		Convey("Then the sex indicator is uncentred", func() {
			So(table[baa.SexFeature].Mean, ShouldEqual, 0.0)
		})

		Convey("When the caller mutates the returned copy", func() {
			table["age"] = baa.Coefficient{}
			delete(table, "urea")

			Convey("Then the published table is unaffected", func() {
				got, err := baa.Estimate(sampleRecord())
				So(err, ShouldBeNil)
				So(got, ShouldAlmostEqual, goldenWithoutSex, goldenTolerance)
				So(baa.DefaultTable()["age"].Mean, ShouldEqual, 56.0487752)
			})
		})
	})

	Convey("Given a table missing a record feature", t, func() {
		table := baa.DefaultTable()
		delete(table, "urea")
		est := baa.NewEstimator(baa.WithTable(table))

		Convey("Then estimation is rejected as an unknown feature", func() {
			_, err := est.Estimate(sampleRecord())
			So(errors.Is(err, baa.ErrUnknownFeature), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "urea")
		})
	})

	Convey("Given a table missing only the sex entry", t, func() {
		table := baa.DefaultTable()
		delete(table, baa.SexFeature)

		Convey("Then it is rejected even when the sex term is excluded", func() {
			_, err := baa.NewEstimator(baa.WithTable(table)).Estimate(sampleRecord())
			So(errors.Is(err, baa.ErrUnknownFeature), ShouldBeTrue)
		})
	})

	Convey("Given a table with an entry the record does not carry", t, func() {
		table := baa.DefaultTable()
		table["ferritin"] = baa.Coefficient{ENet: 0.1, Mean: 100}

		Convey("Then estimation is rejected as an unknown feature", func() {
			_, err := baa.NewEstimator(baa.WithTable(table)).Estimate(sampleRecord())
			So(errors.Is(err, baa.ErrUnknownFeature), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "ferritin")
		})
	})

	Convey("Given a table that centres the sex indicator", t, func() {
		table := baa.DefaultTable()
		sex := table[baa.SexFeature]
		sex.Mean = 0.5
		table[baa.SexFeature] = sex

		Convey("Then it is reported as an invalid table", func() {
			err := table.Validate()
			So(errors.Is(err, baa.ErrInvalidTable), ShouldBeTrue)

			_, err = baa.NewEstimator(baa.WithTable(table)).Estimate(sampleRecord())
			So(errors.Is(err, baa.ErrInvalidTable), ShouldBeTrue)
		})
	})
}

func TestEstimator_Contributions(t *testing.T) {
	Convey("Given the sample subject", t, func() {
		rec := sampleRecord()

		Convey("When breaking down the default estimate", func() {
			est := baa.NewEstimator()
			parts, err := est.Contributions(rec)
			total, _ := est.Estimate(rec)

			Convey("Then every feature but sex is listed in order", func() {
				So(err, ShouldBeNil)
				So(len(parts), ShouldEqual, len(baa.FeatureNames())-1)
				So(parts[0].Feature, ShouldEqual, "age")
				for _, p := range parts {
					So(p.Feature, ShouldNotEqual, baa.SexFeature)
				}
			})

			Convey("Then the parts sum to the estimate", func() {
				var sum float64
				for _, p := range parts {
					sum += p.Years
				}
				So(sum, ShouldAlmostEqual, total, 1e-9)
			})
		})

		Convey("When breaking down with the sex term enabled", func() {
			parts, err := baa.NewEstimator(baa.WithSexTerm(true)).Contributions(rec)

			Convey("Then the sex contribution is last", func() {
				So(err, ShouldBeNil)
				last := parts[len(parts)-1]
				So(last.Feature, ShouldEqual, baa.SexFeature)
				So(last.Deviation, ShouldEqual, 1.0)
				So(last.Years, ShouldAlmostEqual, 0.39717195, 1e-9)
			})
		})
	})
}

func TestRecord_Features(t *testing.T) {
	Convey("Given the sample record", t, func() {
		features := sampleRecord().Features()

		Convey("Then all 27 features are exposed with the sex indicator last", func() {
			So(len(features), ShouldEqual, 27)
			So(features[0], ShouldResemble, baa.Feature{Name: "age", Value: 68})
			So(features[len(features)-1], ShouldResemble, baa.Feature{Name: baa.SexFeature, Value: 1})
		})
	})
}

func TestRecordFromFeatures(t *testing.T) {
	Convey("Given the features of the sample record", t, func() {
		values := make(map[string]float64)
		for _, f := range sampleRecord().Features() {
			values[f.Name] = f.Value
		}

		Convey("When rebuilding the record", func() {
			rec, err := baa.RecordFromFeatures(values)

			Convey("Then it equals the original", func() {
				So(err, ShouldBeNil)
				So(rec, ShouldResemble, sampleRecord())
			})
		})

		Convey("When a feature is missing", func() {
			delete(values, "cystatin_c")
			_, err := baa.RecordFromFeatures(values)

			Convey("Then the record is rejected", func() {
				So(errors.Is(err, baa.ErrInvalidRecord), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "cystatin_c")
			})
		})

		Convey("When an unexpected feature is present", func() {
			values["ferritin"] = 80
			_, err := baa.RecordFromFeatures(values)

			Convey("Then the record is rejected", func() {
				So(errors.Is(err, baa.ErrInvalidRecord), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "ferritin")
			})
		})

		Convey("When a value is NaN", func() {
			values["glucose"] = math.NaN()
			rec, err := baa.RecordFromFeatures(values)

			Convey("Then it is carried through unchanged", func() {
				So(err, ShouldBeNil)
				So(math.IsNaN(rec.Glucose), ShouldBeTrue)
			})
		})
	})
}
