// Package store persists components and their vulnerabilities.
package store

import (
	"context"
	"time"

	"github.com/ortelius/component-monitor/model"
)

// maxRefreshAttempts bounds retries of a refresh that lost a race on the vulnerability unique index.
const maxRefreshAttempts = 3

// Store is the component store. Lookups of unknown ids return nil without error.
type Store interface {
	// CreateOrFetch inserts the component and its vulnerabilities in one transaction, or returns
	// the existing component with the same natural key. created reports which happened.
	CreateOrFetch(ctx context.Context, nc model.NewComponent, vulns []model.NewVulnerability) (c *model.Component, created bool, err error)
	Get(ctx context.Context, id int64) (*model.Component, error)
	List(ctx context.Context) ([]model.Component, error)
	// Delete removes the component and its vulnerabilities. It reports false for unknown ids.
	Delete(ctx context.Context, id int64) (bool, error)
	// SetFalsePositive flags or clears a vulnerability. The reason is stored only when flagged.
	SetFalsePositive(ctx context.Context, vulnID int64, flag bool, reason *string) (*model.Vulnerability, error)
	// ApplyRefresh reconciles fetched findings against the stored ones, inserts the new ones and
	// bumps last_updated in one transaction.
	ApplyRefresh(ctx context.Context, id int64, fetched []model.Finding, now time.Time) (*model.RefreshOutcome, error)
	Close() error
}

// retryOnConflict runs fn until it succeeds, fails with an error conflict does not accept,
// or maxRefreshAttempts is reached.
func retryOnConflict(fn func() (*model.RefreshOutcome, error), conflict func(error) bool) (*model.RefreshOutcome, error) {
	var (
		outcome *model.RefreshOutcome
		err     error
	)
	for attempt := 0; attempt < maxRefreshAttempts; attempt++ {
		outcome, err = fn()
		if err == nil || !conflict(err) {
			return outcome, err
		}
	}
	return nil, err
}

func reasonFor(flag bool, reason *string) *string {
	if !flag {
		return nil
	}
	return reason
}
