package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortelius/component-monitor/model"
)

// runStoreSuite exercises the behaviour every backend must share.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateOrFetchIsIdempotent", func(t *testing.T) { testCreateOrFetch(t, newStore(t)) })
	t.Run("ProductsShareNaturalKeyWithEmptyEcosystem", func(t *testing.T) { testProductNaturalKey(t, newStore(t)) })
	t.Run("ConcurrentCreateReturnsOneComponent", func(t *testing.T) { testConcurrentCreate(t, newStore(t)) })
	t.Run("DeleteCascades", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("FalsePositiveToggle", func(t *testing.T) { testFalsePositive(t, newStore(t)) })
	t.Run("RefreshAddsOnlyNewFindings", func(t *testing.T) { testRefresh(t, newStore(t)) })
	t.Run("RefreshUnknownComponent", func(t *testing.T) { testRefreshUnknown(t, newStore(t)) })
	t.Run("ListOrdersByID", func(t *testing.T) { testList(t, newStore(t)) })
}

func leftPad() model.NewComponent {
	id := "pkg:npm/left-pad@1.3.0"
	return model.NewComponent{
		Name:        "left-pad",
		Version:     "1.3.0",
		Type:        model.ComponentTypeLibrary,
		Ecosystem:   model.EcosystemNpm,
		Identifier:  &id,
		LastUpdated: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func testCreateOrFetch(t *testing.T, s Store) {
	ctx := context.Background()
	vulns := []model.NewVulnerability{
		{CveID: "GHSA-1", Source: model.SourceOSV, Severity: model.SeverityHigh, Summary: "one"},
		{CveID: "GHSA-2", Source: model.SourceOSV},
	}

	first, created, err := s.CreateOrFetch(ctx, leftPad(), vulns)
	require.NoError(t, err)
	require.True(t, created)
	require.Len(t, first.Vulnerabilities, 2)
	assert.Equal(t, model.SeverityUnknown, first.Vulnerabilities[1].Severity)
	assert.Equal(t, first.ID, first.Vulnerabilities[0].ComponentID)
	assert.False(t, first.Vulnerabilities[0].IsFalsePositive)
	assert.Nil(t, first.Vulnerabilities[0].FalsePositiveReason)

	second, created, err := s.CreateOrFetch(ctx, leftPad(), []model.NewVulnerability{{CveID: "GHSA-3", Source: model.SourceOSV}})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Vulnerabilities, 2)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testProductNaturalKey(t *testing.T, s Store) {
	ctx := context.Background()
	nginx := model.NewComponent{Name: "nginx", Version: "1.20.0", Type: model.ComponentTypeProduct, LastUpdated: time.Now()}

	a, created, err := s.CreateOrFetch(ctx, nginx, nil)
	require.NoError(t, err)
	require.True(t, created)
	assert.Empty(t, a.Vulnerabilities)
	assert.Nil(t, a.Identifier)

	b, created, err := s.CreateOrFetch(ctx, nginx, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a.ID, b.ID)
}

func testConcurrentCreate(t *testing.T, s Store) {
	ctx := context.Background()
	const writers = 4

	ids := make([]int64, writers)
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, _, err := s.CreateOrFetch(ctx, leftPad(), []model.NewVulnerability{{CveID: "GHSA-1", Source: model.SourceOSV}})
			errs[i] = err
			if c != nil {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < writers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Vulnerabilities, 1)
}

func testDelete(t *testing.T, s Store) {
	ctx := context.Background()
	c, _, err := s.CreateOrFetch(ctx, leftPad(), []model.NewVulnerability{{CveID: "GHSA-1", Source: model.SourceOSV}})
	require.NoError(t, err)
	vulnID := c.Vulnerabilities[0].ID

	deleted, err := s.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	v, err := s.SetFalsePositive(ctx, vulnID, true, nil)
	require.NoError(t, err)
	assert.Nil(t, v, "vulnerabilities are removed with their component")

	deleted, err = s.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testFalsePositive(t *testing.T, s Store) {
	ctx := context.Background()
	c, _, err := s.CreateOrFetch(ctx, leftPad(), []model.NewVulnerability{{CveID: "GHSA-1", Source: model.SourceOSV, Severity: model.SeverityCritical}})
	require.NoError(t, err)
	vulnID := c.Vulnerabilities[0].ID

	reason := "not reachable"
	v, err := s.SetFalsePositive(ctx, vulnID, true, &reason)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, v.IsFalsePositive)
	require.NotNil(t, v.FalsePositiveReason)
	assert.Equal(t, reason, *v.FalsePositiveReason)
	assert.Equal(t, model.SeverityCritical, v.Severity)
	assert.Equal(t, model.SourceOSV, v.Source)

	v, err = s.SetFalsePositive(ctx, vulnID, false, &reason)
	require.NoError(t, err)
	assert.False(t, v.IsFalsePositive)
	assert.Nil(t, v.FalsePositiveReason)
	assert.Equal(t, model.SeverityCritical, v.Severity)

	v, err = s.SetFalsePositive(ctx, vulnID+1000, true, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func testRefresh(t *testing.T, s Store) {
	ctx := context.Background()
	c, _, err := s.CreateOrFetch(ctx, leftPad(), []model.NewVulnerability{{CveID: "GHSA-1", Source: model.SourceOSV, Severity: model.SeverityHigh}})
	require.NoError(t, err)

	reason := "dev dependency"
	_, err = s.SetFalsePositive(ctx, c.Vulnerabilities[0].ID, true, &reason)
	require.NoError(t, err)

	fetched := []model.Finding{
		{ID: "GHSA-1", Source: model.SourceOSV, Severity: model.SeverityLow},
		{ID: "GHSA-2", Source: model.SourceOSV, Severity: model.SeverityMedium},
	}
	now := c.LastUpdated.Add(time.Hour)

	outcome, err := s.ApplyRefresh(ctx, c.ID, fetched, now)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	require.Len(t, outcome.Added, 1)
	assert.Equal(t, "GHSA-2", outcome.Added[0].CveID)
	require.Len(t, outcome.Component.Vulnerabilities, 2)
	assert.True(t, outcome.Component.Vulnerabilities[0].IsFalsePositive)
	assert.Equal(t, model.SeverityHigh, outcome.Component.Vulnerabilities[0].Severity)
	assert.True(t, outcome.Component.LastUpdated.Equal(now))

	// an older clock never moves last_updated backwards
	outcome, err = s.ApplyRefresh(ctx, c.ID, fetched, c.LastUpdated)
	require.NoError(t, err)
	assert.Empty(t, outcome.Added)
	assert.Len(t, outcome.Component.Vulnerabilities, 2)
	assert.True(t, outcome.Component.LastUpdated.Equal(now))
}

func testRefreshUnknown(t *testing.T, s Store) {
	outcome, err := s.ApplyRefresh(context.Background(), 424242, nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, outcome)
}

func testList(t *testing.T, s Store) {
	ctx := context.Background()
	empty, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	a, _, err := s.CreateOrFetch(ctx, leftPad(), nil)
	require.NoError(t, err)
	other := leftPad()
	other.Version = "1.3.1"
	b, _, err := s.CreateOrFetch(ctx, other, nil)
	require.NoError(t, err)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)
}

func TestRetryOnConflictStopsAfterLimit(t *testing.T) {
	calls := 0
	_, err := retryOnConflict(func() (*model.RefreshOutcome, error) {
		calls++
		return nil, assert.AnError
	}, func(error) bool { return true })

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, maxRefreshAttempts, calls)
}
