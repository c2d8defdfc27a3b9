package season

import (
	"context"
	"time"

	"github.com/pable/go-season-diag/internal/diagnosis"
	"github.com/pable/go-season-diag/internal/model"
	"github.com/pable/go-season-diag/pkg/metrics"
)

// Service loads a season and diagnoses it, recording metrics for each run.
type Service struct {
	loader  *Loader
	engine  *diagnosis.Engine
	metrics *metrics.Manager
}

// NewService wires a loader to an engine. A nil manager uses the
// process-wide one.
func NewService(l *Loader, e *diagnosis.Engine, m *metrics.Manager) *Service {
	if m == nil {
		m = metrics.Default()
	}
	return &Service{loader: l, engine: e, metrics: m}
}

// Engine returns the diagnosis engine.
func (s *Service) Engine() *diagnosis.Engine { return s.engine }

// Loader returns the season loader.
func (s *Service) Loader() *Loader { return s.loader }

// Diagnose loads the requested season and runs the engine over it.
func (s *Service) Diagnose(ctx context.Context, req Request) (model.DiagnosticResult, error) {
	log, err := s.loader.Load(ctx, req)
	if err != nil {
		return model.DiagnosticResult{}, err
	}
	return s.DiagnoseLog(ctx, log)
}

// DiagnoseLog runs the engine over an already loaded log.
func (s *Service) DiagnoseLog(ctx context.Context, log model.SeasonLog) (model.DiagnosticResult, error) {
	began := time.Now()
	res, err := s.engine.Diagnose(ctx, log)
	if err != nil {
		s.metrics.RecordDiagnosis(string(diagnosis.KindOf(err)), time.Since(began))
		return res, err
	}
	s.metrics.RecordDiagnosis("", time.Since(began))
	for _, t := range res.Trends {
		if t.Insufficient() {
			s.metrics.RecordUndefinedTrend(string(t.Metric))
		}
	}
	return res, nil
}
