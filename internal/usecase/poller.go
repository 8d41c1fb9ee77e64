package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc"

	"shieldboard/internal/domain"
	"shieldboard/pkg/logger"
	"shieldboard/pkg/metrics"
)

// Poller refreshes the dashboard on a fixed interval. It owns its cron
// handle; the single poll entry is removed and re-added whenever the applied
// filters change, which restarts the interval window.
type Poller struct {
	dashboard *DashboardService
	interval  time.Duration
	logger    *logger.Logger
	metrics   *metrics.Metrics

	cron  *cron.Cron
	loads conc.WaitGroup

	mutex   sync.Mutex
	ctx     context.Context
	entryID cron.EntryID
	started bool
	stopped bool
}

func NewPoller(dashboard *DashboardService, interval time.Duration, logger *logger.Logger, metrics *metrics.Metrics) *Poller {
	cronLog := cron.PrintfLogger(logger.Logger)
	return &Poller{
		dashboard: dashboard,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog)),
		),
	}
}

// Start registers the poll entry, starts the scheduler and dispatches the
// initial load. Loads outlive ctx cancellation; use Stop to end polling.
func (p *Poller) Start(ctx context.Context) {
	p.mutex.Lock()
	if p.started {
		p.mutex.Unlock()
		return
	}
	p.started = true
	p.ctx = context.WithoutCancel(ctx)
	p.registerLocked()
	p.mutex.Unlock()

	p.dashboard.OnApply(p.restart)
	p.cron.Start()

	p.logger.WithContext(ctx).WithField("interval", p.interval.String()).Info("Dashboard polling started")
	p.dispatch(TriggerInitial)
}

// Stop cancels the schedule, detaches the dashboard and waits for in-flight
// loads until ctx is done. In-flight requests are not aborted.
func (p *Poller) Stop(ctx context.Context) error {
	p.mutex.Lock()
	if !p.started || p.stopped {
		p.mutex.Unlock()
		return nil
	}
	p.stopped = true
	p.mutex.Unlock()

	cronDone := p.cron.Stop()
	p.dashboard.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		p.loads.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.WithContext(ctx).Info("Dashboard polling stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entry returns the current poll entry, zero if none is registered.
func (p *Poller) Entry() cron.Entry {
	p.mutex.Lock()
	id := p.entryID
	p.mutex.Unlock()
	return p.cron.Entry(id)
}

func (p *Poller) restart(filters domain.Filters) {
	p.mutex.Lock()
	if !p.started || p.stopped {
		p.mutex.Unlock()
		return
	}
	p.registerLocked()
	p.mutex.Unlock()

	p.logger.WithField("query", filters.QueryString()).Info("Dashboard polling re-registered")
	p.dispatch(TriggerInitial)
}

func (p *Poller) registerLocked() {
	if p.entryID != 0 {
		p.cron.Remove(p.entryID)
	}
	p.entryID = p.cron.Schedule(cron.Every(p.interval), cron.FuncJob(p.tick))
	p.metrics.RecordPollRegistration()
}

func (p *Poller) tick() {
	p.dispatch(TriggerScheduled)
}

// dispatch runs one load in the background. There is no in-flight guard:
// a slow load and the next tick proceed independently.
func (p *Poller) dispatch(trigger Trigger) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.started || p.stopped {
		return
	}
	ctx := p.ctx
	pending := trigger == TriggerInitial && p.dashboard.beginInitial()
	p.loads.Go(func() {
		_ = p.dashboard.load(ctx, trigger, pending)
	})
}
