// Package analyzer resolves a component's identifier, routes it to the matching upstream and
// returns normalized findings. It never touches storage.
package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ortelius/component-monitor/internal/metrics"
	"github.com/ortelius/component-monitor/internal/sources"
	"github.com/ortelius/component-monitor/model"
	"github.com/ortelius/component-monitor/util"
)

// IdentifierResolver derives identifiers from descriptions.
type IdentifierResolver interface {
	Resolve(ctx context.Context, d model.Description) (string, error)
}

// Analyzer is the analysis orchestrator.
type Analyzer struct {
	resolver IdentifierResolver
	osv      sources.Adapter
	nvd      sources.Adapter
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// New returns an Analyzer. osv serves libraries and nvd serves products.
func New(resolver IdentifierResolver, osv, nvd sources.Adapter, m *metrics.Metrics, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{resolver: resolver, osv: osv, nvd: nvd, metrics: m, logger: logger}
}

// Analyze runs the identify, route and fetch pipeline for d.
// Every failure is returned as a *model.AnalysisError wrapping the cause.
func (a *Analyzer) Analyze(ctx context.Context, d model.Description) (*model.AnalysisResult, error) {
	identifier, err := a.resolver.Resolve(ctx, d)
	if err != nil {
		return nil, &model.AnalysisError{Err: err}
	}

	q := sources.Query{
		Identifier: identifier,
		Name:       d.ComponentName(),
		Version:    d.ComponentVersion(),
	}

	var adapter sources.Adapter
	switch v := d.(type) {
	case model.ProductDescription:
		adapter = a.nvd
	case model.LibraryDescription:
		adapter = a.osv
		q.Ecosystem = v.Ecosystem
	default:
		return nil, &model.AnalysisError{Err: model.Validationf("unknown component type")}
	}

	started := time.Now()
	findings, err := adapter.Fetch(ctx, q)
	a.metrics.ObserveUpstream(string(adapter.Source()), started, err)
	if err != nil {
		a.logger.Warn("Upstream lookup failed",
			zap.String("source", string(adapter.Source())),
			zap.String("name", q.Name),
			zap.String("version", q.Version),
			zap.Error(err))
		return nil, &model.AnalysisError{Err: err}
	}

	for i := range findings {
		if findings[i].OSV != nil && findings[i].Severity == "" {
			findings[i].Severity = util.OSVSeverity(findings[i].OSV.Severity, findings[i].OSV.DatabaseSeverity)
		}
		if findings[i].Severity == "" {
			findings[i].Severity = model.SeverityUnknown
		}
	}

	a.logger.Debug("Analysis complete",
		zap.String("identifier", identifier),
		zap.String("source", string(adapter.Source())),
		zap.Int("findings", len(findings)))

	return &model.AnalysisResult{Identifier: identifier, Source: adapter.Source(), Findings: findings}, nil
}
