// Command sample evaluates both estimators for the published sample
// subjects and prints the results.
package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/okian/bioage/internal/domain/baa"
	"github.com/okian/bioage/internal/domain/phenoage"
)

// sampleRecord is the published BAA example subject.
var sampleRecord = baa.Record{
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

// sampleInput is the published PhenoAge example subject.
var sampleInput = phenoage.Input{
	Age:                 24,
	Albumin:             49.5,
	Creatinine:          71.3,
	Glucose:             4.9,
	CRP:                 0.5,
	LymphocytePct:       49.2,
	MCV:                 91.6,
	RDW:                 12.2,
	AlkalinePhosphatase: 51,
	WBC:                 3.9,
}

func main() {
	cmd := &cli.Command{
		Name:  "sample",
		Usage: "Evaluate BAA and PhenoAge for the published sample subjects",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "sex-term",
				Usage: "Apply the sex indicator's coefficient delta in BAA",
			},
			&cli.BoolFlag{
				Name:  "explain",
				Usage: "Print per-feature BAA contributions",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return run(os.Stdout, cmd.Bool("sex-term"), cmd.Bool("explain"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "sample failed:", err)
		os.Exit(1)
	}
}

func run(w io.Writer, sexTerm, explain bool) error {
	est := baa.NewEstimator(baa.WithSexTerm(sexTerm))

	acceleration, err := est.Estimate(sampleRecord)
	if err != nil {
		return fmt.Errorf("baa: %w", err)
	}
	fmt.Fprintf(w, "Biological Age Acceleration = %.2f years\n", acceleration)

	if explain {
		parts, err := est.Contributions(sampleRecord)
		if err != nil {
			return fmt.Errorf("baa: %w", err)
		}
		writeContributions(w, parts)
	}

	age, err := phenoage.Estimate(sampleInput)
	if err != nil {
		return fmt.Errorf("phenoage: %w", err)
	}
	fmt.Fprintln(w, "PhenoAge =", math.Round(age*100)/100, "years")
	return nil
}

func writeContributions(w io.Writer, parts []baa.Contribution) {
	color.New(color.FgYellow).Fprintln(w, "\nBAA contributions")

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Feature", "Value", "Deviation", "Delta", "Years"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, c := range parts {
		table.Append([]string{
			c.Feature,
			strconv.FormatFloat(c.Value, 'g', 6, 64),
			strconv.FormatFloat(c.Deviation, 'f', 4, 64),
			strconv.FormatFloat(c.Delta, 'f', 6, 64),
			strconv.FormatFloat(c.Years, 'f', 4, 64),
		})
	}
	table.Render()
}
