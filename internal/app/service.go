// Package service provides the application service that wires the
// estimators to logging and metrics and backs the HTTP API.
package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/bioage/internal/domain/baa"
	"github.com/okian/bioage/internal/domain/phenoage"
	"github.com/okian/bioage/pkg/logger"
	"github.com/okian/bioage/pkg/metrics"
)

// Estimator names used in evaluations, logs and metric labels.
const (
	EstimatorBAA      = "baa"
	EstimatorPhenoAge = "phenoage"
)

// Error kinds used in logs and metric labels.
const (
	KindConfiguration = "configuration_error"
	KindDomain        = "domain_error"
	KindUnknown       = "unknown_error"
)

const nanosecondsPerMillisecond = 1e6

// Recorder receives evaluation metrics.
type Recorder interface {
	RecordEvaluation(estimator string, value, latencyMs float64)
	RecordEvaluationError(estimator, kind string)
}

// Evaluation is the outcome of a single-subject estimate.
type Evaluation struct {
	ID         string
	Estimator  string
	Value      float64
	ComputedAt time.Time

	// SexTerm reports the BAA sex policy in effect; false for PhenoAge.
	SexTerm bool
	// Contributions is set for BAA evaluations.
	Contributions []baa.Contribution
	// PhenoAge is set for PhenoAge evaluations.
	PhenoAge *phenoage.Result
}

// Service evaluates biological-age estimators for one subject per call.
type Service struct {
	baa *baa.Estimator

	includeSex bool
	table      baa.Table

	logger   logger.Logger
	recorder Recorder
	tracer   trace.Tracer
	now      func() time.Time

	baaCount      atomic.Int64
	phenoAgeCount atomic.Int64
	errorCount    atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithTracer sets the tracer used for evaluation spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithSexTerm enables the BAA sex indicator term.
func WithSexTerm(include bool) Option {
	return func(s *Service) {
		s.includeSex = include
	}
}

// WithBAATable overrides the published BAA coefficients.
func WithBAATable(t baa.Table) Option {
	return func(s *Service) {
		if t != nil {
			s.table = t
		}
	}
}

// WithClock overrides the time source used to stamp evaluations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service. The logger defaults to the global one.
func New(opts ...Option) *Service {
	s := &Service{
		recorder: metrics.Default(),
		tracer:   otel.Tracer("bioage/service"),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	baaOpts := []baa.Option{baa.WithSexTerm(s.includeSex)}
	if s.table != nil {
		baaOpts = append(baaOpts, baa.WithTable(s.table))
	}
	s.baa = baa.NewEstimator(baaOpts...)

	return s
}

// EvaluateBAA estimates biological age acceleration for rec.
func (s *Service) EvaluateBAA(ctx context.Context, rec baa.Record) (Evaluation, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "EvaluateBAA",
		trace.WithAttributes(
			attribute.String("estimator", EstimatorBAA),
			attribute.Bool("sex_term", s.baa.IncludesSexTerm()),
		))
	defer span.End()

	value, err := s.baa.Estimate(rec)
	if err != nil {
		return Evaluation{}, s.reject(ctx, span, EstimatorBAA, err)
	}
	parts, err := s.baa.Contributions(rec)
	if err != nil {
		return Evaluation{}, s.reject(ctx, span, EstimatorBAA, err)
	}

	s.baaCount.Add(1)
	ev := s.accept(ctx, span, EstimatorBAA, value, start)
	ev.SexTerm = s.baa.IncludesSexTerm()
	ev.Contributions = parts
	return ev, nil
}

// EvaluatePhenoAge estimates phenotypic age for in.
func (s *Service) EvaluatePhenoAge(ctx context.Context, in phenoage.Input) (Evaluation, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "EvaluatePhenoAge",
		trace.WithAttributes(attribute.String("estimator", EstimatorPhenoAge)))
	defer span.End()

	res, err := phenoage.Evaluate(in)
	if err != nil {
		return Evaluation{}, s.reject(ctx, span, EstimatorPhenoAge, err)
	}

	s.phenoAgeCount.Add(1)
	ev := s.accept(ctx, span, EstimatorPhenoAge, res.Age, start)
	ev.PhenoAge = &res
	return ev, nil
}

func (s *Service) accept(ctx context.Context, span trace.Span, estimator string, value float64, start time.Time) Evaluation {
	ev := Evaluation{
		ID:         uuid.NewString(),
		Estimator:  estimator,
		Value:      value,
		ComputedAt: s.now().UTC(),
	}
	latencyMs := float64(time.Since(start).Nanoseconds()) / nanosecondsPerMillisecond
	s.recorder.RecordEvaluation(estimator, value, latencyMs)
	span.SetAttributes(
		attribute.String("evaluation.id", ev.ID),
		attribute.Float64("evaluation.value", value),
	)
	span.SetStatus(codes.Ok, "")
	s.logger.Debug(ctx, "evaluation computed",
		logger.String("id", ev.ID),
		logger.String("estimator", estimator),
		logger.Float64("value", value),
		logger.Float64("latency_ms", latencyMs),
	)
	return ev
}

func (s *Service) reject(ctx context.Context, span trace.Span, estimator string, err error) error {
	kind := ErrorKind(err)
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.kind", kind))
	span.SetStatus(codes.Error, kind)
	s.errorCount.Add(1)
	s.recorder.RecordEvaluationError(estimator, kind)
	s.logger.Warn(ctx, "evaluation rejected",
		logger.String("estimator", estimator),
		logger.String("kind", kind),
		logger.Error(err),
	)
	return err
}

// ErrorKind classifies an estimator error.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, baa.ErrUnknownFeature), errors.Is(err, baa.ErrInvalidTable):
		return KindConfiguration
	case errors.Is(err, phenoage.ErrDomain):
		return KindDomain
	default:
		return KindUnknown
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"baaEvaluations":      s.baaCount.Load(),
		"phenoAgeEvaluations": s.phenoAgeCount.Load(),
		"rejected":            s.errorCount.Load(),
		"baaSexTerm":          s.baa.IncludesSexTerm(),
	}
}
