// Command loadcheck verifies a running bioage server against the local
// estimators.
package main

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/okian/bioage/internal/loadcheck"
)

// Default configuration constants.
const (
	defaultSubjects = 1000
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultTimeout  = 10 * time.Second
	defaultRunLimit = 10 * time.Minute
)

func main() {
	cmd := &cli.Command{
		Name:  "loadcheck",
		Usage: "Post synthetic subjects to a bioage server and verify every estimate",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:9080", Usage: "Base URL of the service"},
			&cli.IntFlag{Name: "subjects", Value: defaultSubjects, Usage: "Subjects per estimator"},
			&cli.IntFlag{Name: "workers", Value: runtime.NumCPU() * defaultWorkers, Usage: "Number of concurrent workers"},
			&cli.DurationFlag{Name: "timeout", Value: defaultTimeout, Usage: "HTTP request timeout"},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "Generator seed"},
			&cli.BoolFlag{Name: "sex-term", Usage: "Expect the server to apply the BAA sex term"},
			&cli.StringFlag{Name: "output", Usage: "Write generated subjects to this file (.json, .yaml)"},
			&cli.StringFlag{Name: "log", Usage: "Mirror log output to this file"},
			&cli.BoolFlag{Name: "verbose", Usage: "Log progress while submitting"},
		},
		Description: "Estimates must agree bit for bit with the local estimators and PhenoAge\n" +
			"domain errors must coincide. The server must run the published BAA table.",
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		os.Stderr.WriteString("Verification failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if err := loadcheck.SetupLogging(cmd.String("log")); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultRunLimit)
	defer cancel()

	config := &loadcheck.Config{
		BaseURL:     cmd.String("url"),
		NumSubjects: cmd.Int("subjects"),
		Workers:     cmd.Int("workers"),
		Timeout:     cmd.Duration("timeout"),
		Seed:        cmd.Uint64("seed"),
		SexTerm:     cmd.Bool("sex-term"),
		OutputFile:  cmd.String("output"),
		Verbose:     cmd.Bool("verbose"),
	}

	_, err := loadcheck.Run(ctx, config)
	return err
}
