package graphql

import (
	"context"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortelius/component-monitor/model"
)

type fakeReader struct {
	components []model.Component
}

func (f fakeReader) List(context.Context) ([]model.Component, error) {
	return f.components, nil
}

func (f fakeReader) Get(_ context.Context, id int64) (*model.Component, error) {
	for _, c := range f.components {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func testReader() fakeReader {
	reason := "not reachable"
	return fakeReader{components: []model.Component{
		{
			ID: 2, Name: "left-pad", Version: "1.10.0", Type: model.ComponentTypeLibrary, Ecosystem: model.EcosystemNpm,
			LastUpdated: time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC),
			Vulnerabilities: []model.Vulnerability{
				{ID: 1, CveID: "GHSA-1", Source: model.SourceOSV, Severity: model.SeverityCritical},
				{ID: 2, CveID: "GHSA-2", Source: model.SourceOSV, Severity: model.SeverityHigh, IsFalsePositive: true, FalsePositiveReason: &reason},
			},
		},
		{
			ID: 1, Name: "left-pad", Version: "1.9.0", Type: model.ComponentTypeLibrary, Ecosystem: model.EcosystemNpm,
			LastUpdated: time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC),
		},
		{
			ID: 3, Name: "nginx", Version: "1.25.3", Type: model.ComponentTypeProduct,
			LastUpdated: time.Date(2026, 1, 3, 3, 0, 0, 0, time.UTC),
			Vulnerabilities: []model.Vulnerability{
				{ID: 3, CveID: "CVE-2024-1", Source: model.SourceNVD, Severity: model.SeverityMedium},
				{ID: 4, CveID: "CVE-2024-2", Source: model.SourceNVD, Severity: model.SeverityUnknown},
			},
		},
	}}
}

func run(t *testing.T, query string) map[string]interface{} {
	t.Helper()
	schema, err := CreateSchema(testReader())
	require.NoError(t, err)

	result := graphql.Do(graphql.Params{Schema: schema, RequestString: query, Context: context.Background()})
	require.Empty(t, result.Errors)
	return result.Data.(map[string]interface{})
}

func TestComponentsQuerySortsByVersion(t *testing.T) {
	data := run(t, `{ components(type: "library") { id version open_count } }`)

	list := data["components"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "1.9.0", list[0].(map[string]interface{})["version"])
	assert.Equal(t, "1.10.0", list[1].(map[string]interface{})["version"])
	assert.Equal(t, 1, list[1].(map[string]interface{})["open_count"])
}

func TestComponentQuery(t *testing.T) {
	data := run(t, `{ component(id: 2) { name vulnerabilities { cve_id severity false_positive_reason } } }`)

	c := data["component"].(map[string]interface{})
	assert.Equal(t, "left-pad", c["name"])
	vulns := c["vulnerabilities"].([]interface{})
	require.Len(t, vulns, 2)
	assert.Equal(t, "critical", vulns[0].(map[string]interface{})["severity"])
	assert.Equal(t, "not reachable", vulns[1].(map[string]interface{})["false_positive_reason"])

	data = run(t, `{ component(id: 99) { name } }`)
	assert.Nil(t, data["component"])
}

func TestDashboardSeverityExcludesFalsePositives(t *testing.T) {
	data := run(t, `{ dashboardSeverity { critical high medium low unknown } }`)

	assert.Equal(t, map[string]interface{}{
		"critical": 1, "high": 0, "medium": 1, "low": 0, "unknown": 1,
	}, data["dashboardSeverity"])
}

func TestDashboardOverview(t *testing.T) {
	data := run(t, `{ dashboardOverview { total_components total_libraries total_products total_vulnerabilities false_positives last_updated } }`)

	assert.Equal(t, map[string]interface{}{
		"total_components":      3,
		"total_libraries":       2,
		"total_products":        1,
		"total_vulnerabilities": 4,
		"false_positives":       1,
		"last_updated":          "2026-01-03T03:00:00Z",
	}, data["dashboardOverview"])
}

func TestDashboardTopRisks(t *testing.T) {
	data := run(t, `{ dashboardTopRisks(limit: 1) { id critical_count total_vulns } }`)

	risks := data["dashboardTopRisks"].([]interface{})
	require.Len(t, risks, 1)
	assert.Equal(t, map[string]interface{}{"id": 2, "critical_count": 1, "total_vulns": 1}, risks[0])
}
