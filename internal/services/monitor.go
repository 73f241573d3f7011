// Package services provides the component monitoring operations shared by the REST API,
// GraphQL, the scheduler, the event processor and the CLI.
package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	vulnevents "github.com/ortelius/component-monitor/events/modules/vulnerabilities"
	"github.com/ortelius/component-monitor/internal/metrics"
	"github.com/ortelius/component-monitor/internal/store"
	"github.com/ortelius/component-monitor/model"
)

// Analyzer runs the identify and fetch pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, d model.Description) (*model.AnalysisResult, error)
}

// Resolver derives identifiers without querying vulnerability databases.
type Resolver interface {
	Resolve(ctx context.Context, d model.Description) (string, error)
}

// RefreshFailure records a component that could not be refreshed.
type RefreshFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

// RefreshSummary is the result of refreshing every stored component.
type RefreshSummary struct {
	Count     int              `json:"count"`
	Refreshed []int64          `json:"refreshed"`
	Failed    []RefreshFailure `json:"failed"`
}

// MonitorService coordinates analysis and persistence.
type MonitorService struct {
	store     store.Store
	analyzer  Analyzer
	resolver  Resolver
	publisher vulnevents.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// Option customizes a MonitorService.
type Option func(*MonitorService)

// WithPublisher sets where discovery events go. The default discards them.
func WithPublisher(p vulnevents.Publisher) Option {
	return func(s *MonitorService) { s.publisher = p }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *MonitorService) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *MonitorService) { s.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *MonitorService) { s.now = now }
}

// NewMonitorService wires the service.
func NewMonitorService(st store.Store, analyzer Analyzer, resolver Resolver, opts ...Option) *MonitorService {
	s := &MonitorService{
		store:     st,
		analyzer:  analyzer,
		resolver:  resolver,
		publisher: vulnevents.Noop{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateIdentifier resolves the identifier of d.
func (s *MonitorService) GenerateIdentifier(ctx context.Context, d model.Description) (string, error) {
	return s.resolver.Resolve(ctx, d)
}

// Analyze looks up vulnerabilities for d without persisting anything.
func (s *MonitorService) Analyze(ctx context.Context, d model.Description) (*model.AnalysisResult, error) {
	return s.analyzer.Analyze(ctx, d)
}

// Add analyzes d and stores it with its findings, or returns the component already stored
// under the same natural key. created is false in the latter case.
func (s *MonitorService) Add(ctx context.Context, d model.Description) (*model.Component, bool, error) {
	if _, err := model.NewComponentFrom(d, ""); err != nil {
		return nil, false, err
	}

	result, err := s.analyzer.Analyze(ctx, d)
	if err != nil {
		return nil, false, err
	}

	nc, err := model.NewComponentFrom(d, result.Identifier)
	if err != nil {
		return nil, false, err
	}
	nc.LastUpdated = s.now().UTC()

	c, created, err := s.store.CreateOrFetch(ctx, nc, model.Staged(result.Findings))
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info("Component added",
			zap.Int64("id", c.ID),
			zap.String("component", nc.NaturalKey()),
			zap.Int("vulnerabilities", len(c.Vulnerabilities)))
		s.metrics.AddDiscovered(string(result.Source), len(c.Vulnerabilities))
		s.publish(ctx, *c, "create", c.Vulnerabilities)
	}
	return c, created, nil
}

// Get returns a component or model.ErrNotFound.
func (s *MonitorService) Get(ctx context.Context, id int64) (*model.Component, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("component %d: %w", id, model.ErrNotFound)
	}
	return c, nil
}

// List returns every component with its vulnerabilities.
func (s *MonitorService) List(ctx context.Context) ([]model.Component, error) {
	return s.store.List(ctx)
}

// Delete removes a component and its vulnerabilities, or returns model.ErrNotFound.
func (s *MonitorService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("component %d: %w", id, model.ErrNotFound)
	}
	s.logger.Info("Component deleted", zap.Int64("id", id))
	return nil
}

// SetFalsePositive flags or clears a vulnerability, or returns model.ErrNotFound.
func (s *MonitorService) SetFalsePositive(ctx context.Context, vulnID int64, update model.FalsePositiveUpdate) (*model.Vulnerability, error) {
	v, err := s.store.SetFalsePositive(ctx, vulnID, update.IsFalsePositive, update.NormalizedReason())
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("vulnerability %d: %w", vulnID, model.ErrNotFound)
	}
	return v, nil
}

// Refresh re-analyzes a stored component and records findings it does not have yet.
func (s *MonitorService) Refresh(ctx context.Context, id int64) (*model.RefreshOutcome, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.Analyze(ctx, c.Description())
	if err != nil {
		s.metrics.IncRefreshed("error")
		return nil, err
	}

	outcome, err := s.store.ApplyRefresh(ctx, id, result.Findings, s.now())
	if err != nil {
		s.metrics.IncRefreshed("error")
		return nil, err
	}
	if outcome == nil {
		return nil, fmt.Errorf("component %d: %w", id, model.ErrNotFound)
	}

	s.metrics.IncRefreshed("ok")
	s.metrics.AddDiscovered(string(result.Source), len(outcome.Added))
	if len(outcome.Added) > 0 {
		s.logger.Info("New vulnerabilities recorded", zap.Int64("id", id), zap.Int("added", len(outcome.Added)))
		s.publish(ctx, *outcome.Component, "refresh", outcome.Added)
	}
	return outcome, nil
}

// RefreshAll refreshes every component in turn. A failing component is recorded in the
// summary and the run continues with the next one.
func (s *MonitorService) RefreshAll(ctx context.Context, trigger string) (*RefreshSummary, error) {
	components, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.IncRefreshRun(trigger)

	summary := &RefreshSummary{Refreshed: []int64{}, Failed: []RefreshFailure{}}
	for _, c := range components {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if _, err := s.Refresh(ctx, c.ID); err != nil {
			s.logger.Warn("Refresh failed", zap.Int64("id", c.ID), zap.String("name", c.Name), zap.Error(err))
			summary.Failed = append(summary.Failed, RefreshFailure{ID: c.ID, Error: err.Error()})
			continue
		}
		summary.Refreshed = append(summary.Refreshed, c.ID)
	}
	summary.Count = len(summary.Refreshed)

	s.logger.Info("Refresh run complete",
		zap.String("trigger", trigger),
		zap.Int("refreshed", summary.Count),
		zap.Int("failed", len(summary.Failed)))
	return summary, nil
}

func (s *MonitorService) publish(ctx context.Context, c model.Component, trigger string, vulns []model.Vulnerability) {
	if len(vulns) == 0 {
		return
	}
	if err := s.publisher.PublishDiscovered(ctx, c, trigger, vulns); err != nil {
		s.logger.Warn("Publishing discovery event failed", zap.Int64("id", c.ID), zap.Error(err))
	}
}
