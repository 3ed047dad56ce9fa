package loadcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/okian/bioage/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrVerification reports a run in which some responses disagreed with the
// local estimators or could not be obtained.
var ErrVerification = errors.New("verification failed")

// Run executes a complete verification run and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting bioage verification run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("subjects", config.NumSubjects),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Bool("sexTerm", config.SexTerm))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate subjects
	subjects := generateSubjects(ctx, config, stats)

	// Step 3: Submit and verify concurrently
	submitSubjects(ctx, config, subjects, stats)

	// Step 4: Save subjects to file
	if config.OutputFile != "" {
		if err := saveSubjectsToFile(ctx, config.OutputFile, subjects); err != nil {
			logger.Get().Warn(ctx, "failed to save subjects to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.Mismatched > 0 || stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d mismatched, %d failed", ErrVerification, stats.Mismatched, stats.Failed)
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	logger.Get().Info(ctx, "verification completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// submitSubjects posts subjects through a bounded worker group and
// verifies each answer.
func submitSubjects(ctx context.Context, config *Config, subjects []Subject, stats *Stats) {
	client := newHTTPClient(config.Timeout)
	v := newVerifier(config.SexTerm)

	var submitted, matched, rejected, mismatched, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(config.Workers, 1))

	for _, s := range subjects {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			switch submitSingleSubject(gctx, client, v, config.BaseURL, s) {
			case outcomeMatch:
				matched.Add(1)
			case outcomeRejected:
				rejected.Add(1)
			case outcomeMismatch:
				mismatched.Add(1)
			default:
				failed.Add(1)
			}
			if n := submitted.Add(1); config.Verbose && n%ProgressEvery == 0 {
				logger.Get().Info(gctx, "progress",
					logger.Int("submitted", int(n)),
					logger.Int("total", len(subjects)),
					logger.Int("mismatched", int(mismatched.Load())))
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Matched = int(matched.Load())
	stats.Rejected = int(rejected.Load())
	stats.Mismatched = int(mismatched.Load())
	stats.Failed = int(failed.Load())
}

// submitSingleSubject submits one subject and returns the verification outcome.
func submitSingleSubject(ctx context.Context, client *HTTPClient, v *verifier, baseURL string, s Subject) string {
	resp, err := client.Post(ctx, baseURL+"/"+s.Estimator, s.Values)
	if err != nil {
		logger.Get().Warn(ctx, "request failed", logger.String("id", s.ID), logger.Error(err))
		return outcomeFailed
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return outcomeFailed
	}
	return v.check(ctx, s, resp.StatusCode, body)
}

// saveSubjectsToFile writes the generated subjects as YAML when filename
// ends in .yaml or .yml, and as a JSON array otherwise.
func saveSubjectsToFile(ctx context.Context, filename string, subjects []Subject) error {
	if len(subjects) == 0 {
		return errors.New("no subjects to save")
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(subjects)
	default:
		data, err = json.MarshalIndent(subjects, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to marshal subjects: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "subjects saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(stats *Stats) {
	var matchRate, subjectsPerSecond float64

	if stats.Submitted > 0 {
		matchRate = float64(stats.Matched+stats.Rejected) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		subjectsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("subjectsGenerated", stats.SubjectsGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("matched", stats.Matched),
		logger.Int("rejected", stats.Rejected),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("agreementRate", matchRate),
		logger.Float64("subjectsPerSecond", subjectsPerSecond))
}
