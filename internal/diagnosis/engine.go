// Package diagnosis turns a batter's season log into a DiagnosticResult by
// comparing Early, Mid and Late windows of the season.
//
// The pipeline is Validate → Segment → Aggregate → Classify → Assemble. It is
// deterministic, holds no state between calls and is safe to call
// concurrently for independent logs.
package diagnosis

import (
	"context"
	"math"

	"github.com/pable/go-season-diag/internal/aggregator"
	"github.com/pable/go-season-diag/internal/metric"
	"github.com/pable/go-season-diag/internal/model"
	"github.com/pable/go-season-diag/pkg/logger"
)

// Engine runs diagnoses under a fixed policy and metric catalog.
type Engine struct {
	policy  Policy
	catalog metric.Catalog
	log     logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy overrides the default sampling policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithCatalog overrides the default metric catalog.
func WithCatalog(c metric.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithLogger sets the logger used for per-stage debug records.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New builds an Engine. It fails with a *PolicyError if the policy or
// catalog is unusable.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		policy:  DefaultPolicy(),
		catalog: metric.Default(),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.policy.Validate(); err != nil {
		return nil, err
	}
	if err := e.catalog.Validate(); err != nil {
		return nil, &PolicyError{Reason: err.Error()}
	}
	return e, nil
}

// Policy returns the engine's sampling policy.
func (e *Engine) Policy() Policy { return e.policy }

// Catalog returns the engine's metric catalog.
func (e *Engine) Catalog() metric.Catalog { return e.catalog }

// Diagnose runs the full pipeline. ctx is only used for logging; the engine
// has no suspension points.
func (e *Engine) Diagnose(ctx context.Context, log model.SeasonLog) (model.DiagnosticResult, error) {
	if err := ValidateSample(log, e.policy); err != nil {
		return model.DiagnosticResult{}, err
	}

	windows, err := Segment(log, e.policy)
	if err != nil {
		return model.DiagnosticResult{}, err
	}

	var (
		tables [3][]model.MetricValue
		bounds = make([]model.WindowBounds, 0, len(windows))
	)
	for i, w := range windows {
		b := aggregator.Bounds(w)
		e.log.Debug(ctx, "window",
			logger.String("window", b.Name),
			logger.Int("first_index", b.FirstIndex),
			logger.Int("last_index", b.LastIndex),
			logger.Int("plate_appearances", b.PlateAppearances))
		bounds = append(bounds, b)

		tables[i] = aggregator.Aggregate(w, e.catalog)
		for _, v := range tables[i] {
			if math.IsNaN(v.Value) {
				e.log.Debug(ctx, "metric undefined",
					logger.String("window", b.Name),
					logger.String("metric", string(v.Metric)))
			}
		}
	}

	trends, err := Classify(tables[model.WindowEarly], tables[model.WindowMid], tables[model.WindowLate], e.catalog)
	if err != nil {
		return model.DiagnosticResult{}, err
	}

	return Assemble(log, bounds, trends)
}
