package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shieldboard/internal/domain"
	"shieldboard/pkg/logger"
	"shieldboard/pkg/metrics"
)

func newTestPoller(d *DashboardService, interval time.Duration) *Poller {
	return NewPoller(d, interval, logger.Discard(), metrics.NewWithRegistry(prometheus.NewRegistry()))
}

func stopPoller(t *testing.T, p *Poller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))
}

func TestPoller_StartDispatchesInitialLoad(t *testing.T) {
	client := &stubClient{}
	client.push(snapshotWithTotal(42), nil, nil)
	d := newTestDashboard(client, true)
	p := newTestPoller(d, time.Hour)

	p.Start(context.Background())
	defer stopPoller(t, p)

	require.Eventually(t, func() bool {
		return d.State(context.Background()).Snapshot != nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 42, d.State(context.Background()).Snapshot.Summary.TotalUsers)

	entry := p.Entry()
	assert.True(t, entry.Valid())
	assert.Equal(t, time.Hour, entry.Schedule.(cron.ConstantDelaySchedule).Delay)
}

func TestPoller_TickUsesFiltersAppliedAtFetchTime(t *testing.T) {
	client := &stubClient{}
	client.push(snapshotWithTotal(1), nil, nil)
	client.push(snapshotWithTotal(2), nil, nil)
	client.push(snapshotWithTotal(3), nil, nil)
	d := newTestDashboard(client, true)
	p := newTestPoller(d, time.Hour)

	p.Start(context.Background())
	defer stopPoller(t, p)
	require.Eventually(t, func() bool { return len(client.calls()) == 1 }, time.Second, 5*time.Millisecond)

	before := p.Entry().ID

	draft := domain.DefaultFilters()
	draft.Provider = "google"
	require.NoError(t, d.SetDraft(draft))
	d.Apply(context.Background())

	require.Eventually(t, func() bool { return len(client.calls()) == 2 }, time.Second, 5*time.Millisecond)
	assert.NotEqual(t, before, p.Entry().ID, "apply re-registers the poll entry")

	p.tick()
	require.Eventually(t, func() bool { return len(client.calls()) == 3 }, time.Second, 5*time.Millisecond)

	calls := client.calls()
	assert.Equal(t, "", calls[0].QueryString())
	assert.Equal(t, "?provider=google", calls[1].QueryString())
	assert.Equal(t, "?provider=google", calls[2].QueryString())
}

func TestPoller_StopCancelsScheduleAndDetaches(t *testing.T) {
	client := &stubClient{}
	client.push(snapshotWithTotal(1), nil, nil)
	d := newTestDashboard(client, true)
	p := newTestPoller(d, time.Hour)

	p.Start(context.Background())
	require.Eventually(t, func() bool {
		return d.State(context.Background()).Snapshot != nil
	}, time.Second, 5*time.Millisecond)

	stopPoller(t, p)

	p.tick()
	d.Apply(context.Background())
	assert.Len(t, client.calls(), 1, "no loads after stop")
	assert.ErrorIs(t, d.Load(context.Background(), TriggerManual), ErrStopped)

	// Stopping twice is fine.
	stopPoller(t, p)
}

func TestPoller_StopWithoutStart(t *testing.T) {
	p := newTestPoller(newTestDashboard(&stubClient{}, true), time.Hour)
	assert.NoError(t, p.Stop(context.Background()))
}

func TestPoller_ScheduleFiresOnItsOwn(t *testing.T) {
	client := &stubClient{}
	client.push(snapshotWithTotal(1), nil, nil)
	client.push(snapshotWithTotal(2), nil, nil)
	d := newTestDashboard(client, true)
	p := newTestPoller(d, time.Second)

	p.Start(context.Background())
	defer stopPoller(t, p)

	require.Eventually(t, func() bool { return len(client.calls()) >= 2 }, 3*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		s := d.State(context.Background()).Snapshot
		return s != nil && s.Summary.TotalUsers == 2
	}, time.Second, 5*time.Millisecond)
}

func TestPoller_ApplyReportsLoadingBeforeReturning(t *testing.T) {
	client := &stubClient{}
	client.push(snapshotWithTotal(1), nil, nil)
	d := newTestDashboard(client, true)
	p := newTestPoller(d, time.Hour)
	ctx := context.Background()

	p.Start(ctx)
	defer stopPoller(t, p)
	require.Eventually(t, func() bool {
		s := d.State(ctx)
		return s.Snapshot != nil && !s.Loading
	}, time.Second, 5*time.Millisecond)

	gate := make(chan struct{})
	client.push(snapshotWithTotal(2), nil, gate)

	d.Apply(ctx)
	assert.True(t, d.State(ctx).Loading)

	close(gate)
	require.Eventually(t, func() bool { return !d.State(ctx).Loading }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, d.State(ctx).Snapshot.Summary.TotalUsers)
}
