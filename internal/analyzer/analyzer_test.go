package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/osv-scanner/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ortelius/component-monitor/internal/identifier"
	"github.com/ortelius/component-monitor/internal/sources"
	"github.com/ortelius/component-monitor/model"
)

type mockAdapter struct {
	mock.Mock
	source model.Source
}

func (m *mockAdapter) Source() model.Source { return m.source }

func (m *mockAdapter) Fetch(ctx context.Context, q sources.Query) ([]model.Finding, error) {
	args := m.Called(ctx, q)
	findings, _ := args.Get(0).([]model.Finding)
	return findings, args.Error(1)
}

type staticCPEs []string

func (s staticCPEs) SearchCPE(context.Context, string) ([]string, error) { return s, nil }

func newAnalyzer(cpes staticCPEs) (*Analyzer, *mockAdapter, *mockAdapter) {
	osv := &mockAdapter{source: model.SourceOSV}
	nvd := &mockAdapter{source: model.SourceNVD}
	return New(identifier.NewResolver(cpes, nil), osv, nvd, nil, nil), osv, nvd
}

func TestAnalyzeLibraryRoutesToOSV(t *testing.T) {
	a, osv, nvd := newAnalyzer(nil)
	osv.On("Fetch", mock.Anything, sources.Query{
		Identifier: "pkg:npm/left-pad@1.3.0", Name: "left-pad", Version: "1.3.0", Ecosystem: model.EcosystemNpm,
	}).Return([]model.Finding{{
		ID:     "GHSA-1",
		Source: model.SourceOSV,
		OSV:    &model.OSVDetail{Severity: []models.Severity{{Type: "CVSS_V3", Score: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"}}},
	}, {
		ID:     "GHSA-2",
		Source: model.SourceOSV,
		OSV:    &model.OSVDetail{DatabaseSeverity: "MODERATE"},
	}}, nil)

	result, err := a.Analyze(context.Background(), model.LibraryDescription{Name: "left-pad", Version: "1.3.0", Ecosystem: model.EcosystemNpm})
	require.NoError(t, err)

	assert.Equal(t, "pkg:npm/left-pad@1.3.0", result.Identifier)
	assert.Equal(t, model.SourceOSV, result.Source)
	assert.Equal(t, []string{"GHSA-1", "GHSA-2"}, result.IDs())
	assert.Equal(t, model.SeverityCritical, result.Findings[0].Severity)
	assert.Equal(t, model.SeverityMedium, result.Findings[1].Severity)
	nvd.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestAnalyzeProductRoutesToNVD(t *testing.T) {
	cpe := "cpe:2.3:a:f5:nginx:1.20.0:*:*:*:*:*:*:*"
	a, osv, nvd := newAnalyzer(staticCPEs{cpe})
	nvd.On("Fetch", mock.Anything, sources.Query{Identifier: cpe, Name: "nginx", Version: "1.20.0"}).
		Return([]model.Finding{{ID: "CVE-2021-23017", Source: model.SourceNVD, Severity: model.SeverityHigh}}, nil)

	result, err := a.Analyze(context.Background(), model.ProductDescription{Name: "nginx", Version: "1.20.0"})
	require.NoError(t, err)

	assert.Equal(t, cpe, result.Identifier)
	assert.Equal(t, model.SeverityHigh, result.Findings[0].Severity)
	osv.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestAnalyzeWrapsResolverErrors(t *testing.T) {
	a, _, _ := newAnalyzer(nil)

	_, err := a.Analyze(context.Background(), model.LibraryDescription{Name: "x", Version: "1"})

	var analysisErr *model.AnalysisError
	require.True(t, errors.As(err, &analysisErr))
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestAnalyzeWrapsAdapterErrors(t *testing.T) {
	a, _, nvd := newAnalyzer(nil)
	nvd.On("Fetch", mock.Anything, mock.Anything).Return(nil, model.ErrIdentifierRequired)

	_, err := a.Analyze(context.Background(), model.ProductDescription{Name: "unknown", Version: "1"})

	var analysisErr *model.AnalysisError
	require.True(t, errors.As(err, &analysisErr))
	assert.ErrorIs(t, err, model.ErrIdentifierRequired)
}
