package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortelius/component-monitor/internal/services"
)

type countingRefresher struct {
	calls atomic.Int32
	block chan struct{}
}

func (r *countingRefresher) RefreshAll(ctx context.Context, trigger string) (*services.RefreshSummary, error) {
	r.calls.Add(1)
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &services.RefreshSummary{}, nil
}

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New("not a schedule", &countingRefresher{}, nil)
	assert.Error(t, err)
}

func TestDefaultScheduleIsThreeAMUTC(t *testing.T) {
	s, err := New("", &countingRefresher{}, nil)
	require.NoError(t, err)
	s.Start()
	defer func() { _ = s.Stop(context.Background()) }()

	next := s.Next()
	assert.Equal(t, time.UTC, next.Location())
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 0, next.Minute())
}

func TestRunInvokesRefresher(t *testing.T) {
	r := &countingRefresher{}
	s, err := New(DefaultSchedule, r, nil)
	require.NoError(t, err)

	s.run()
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestStopCancelsRunningRefresh(t *testing.T) {
	r := &countingRefresher{block: make(chan struct{})}
	s, err := New("@every 1s", r, nil)
	require.NoError(t, err)
	s.Start()

	require.Eventually(t, func() bool { return r.calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
