package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"shieldboard/internal/domain"
	"shieldboard/pkg/logger"
	"shieldboard/pkg/metrics"
)

// Trigger says why a load was started.
type Trigger string

const (
	// TriggerInitial loads drive the full-page loading indicator.
	TriggerInitial   Trigger = "initial"
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// ErrStopped is returned by Load once the service has been stopped.
var ErrStopped = errors.New("dashboard stopped")

// DashboardState is what the view layer renders.
type DashboardState struct {
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
	Draft    domain.Filters   `json:"draft"`
	Applied  domain.Filters   `json:"applied"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
	Seq      uint64           `json:"seq"`
}

// DashboardService owns the draft and applied filters and turns fetch
// outcomes into dashboard state. A failed load never clears a snapshot that
// was already shown.
type DashboardService struct {
	client   domain.SnapshotClient
	store    domain.SnapshotRepository
	logger   *logger.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	seq      atomic.Uint64

	mutex           sync.Mutex
	draft           domain.Filters
	applied         domain.Filters
	initialInFlight int
	stopped         bool
	onApply         []func(domain.Filters)
}

func NewDashboardService(
	client domain.SnapshotClient,
	store domain.SnapshotRepository,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *DashboardService {
	return &DashboardService{
		client:   client,
		store:    store,
		logger:   logger,
		metrics:  metrics,
		validate: validator.New(),
		draft:    domain.DefaultFilters(),
		applied:  domain.DefaultFilters(),
	}
}

func (s *DashboardService) Draft() domain.Filters {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.draft
}

func (s *DashboardService) Applied() domain.Filters {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.applied
}

// SetDraft replaces the draft filters. Editing the draft never triggers a
// load.
func (s *DashboardService) SetDraft(filters domain.Filters) error {
	if err := s.validate.Struct(filters); err != nil {
		return fmt.Errorf("invalid filters: %w", err)
	}

	s.mutex.Lock()
	s.draft = filters
	s.mutex.Unlock()
	return nil
}

// OnApply registers fn to run after every Apply with the new applied filters.
func (s *DashboardService) OnApply(fn func(domain.Filters)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.onApply = append(s.onApply, fn)
}

// Apply copies the draft into the applied filters and notifies listeners.
func (s *DashboardService) Apply(ctx context.Context) domain.Filters {
	s.mutex.Lock()
	s.applied = s.draft
	applied := s.applied
	listeners := append([]func(domain.Filters){}, s.onApply...)
	s.mutex.Unlock()

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"query": applied.QueryString(),
	}).Info("Applied dashboard filters")

	for _, fn := range listeners {
		fn(applied)
	}
	return applied
}

// Load fetches a snapshot for the filters applied at call time and commits
// the outcome. The returned error is for callers that care; the state keeps
// its own copy for the banner.
func (s *DashboardService) Load(ctx context.Context, trigger Trigger) error {
	return s.load(ctx, trigger, false)
}

// beginInitial counts an initial load as in flight before it is dispatched,
// so state read right after Apply already reports loading. It reports false
// once the service is stopped.
func (s *DashboardService) beginInitial() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stopped {
		return false
	}
	s.initialInFlight++
	return true
}

// load runs one fetch. pending is set when beginInitial already counted it.
func (s *DashboardService) load(ctx context.Context, trigger Trigger, pending bool) error {
	s.mutex.Lock()
	if s.stopped {
		if pending {
			s.initialInFlight--
		}
		s.mutex.Unlock()
		return ErrStopped
	}
	// seq is taken with the filters: a higher seq never carries older filters.
	filters := s.applied
	seq := s.seq.Add(1)
	if trigger == TriggerInitial && !pending {
		s.initialInFlight++
	}
	s.mutex.Unlock()

	start := time.Now()
	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"trigger": trigger,
		"seq":     seq,
	})

	s.store.ClearError(ctx)
	s.metrics.IncLoadsInFlight()
	snapshot, err := s.client.FetchSnapshot(ctx, filters)
	s.metrics.DecLoadsInFlight()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if trigger == TriggerInitial {
		s.initialInFlight--
	}

	if s.stopped {
		s.metrics.RecordDashboardLoad(string(trigger), "dropped", time.Since(start))
		log.Debug("Dropped dashboard load after stop")
		return err
	}

	if !s.store.Commit(ctx, seq, snapshot, err) {
		s.metrics.RecordDashboardLoad(string(trigger), "discarded", time.Since(start))
		return err
	}

	if err != nil {
		s.metrics.RecordDashboardLoad(string(trigger), "failure", time.Since(start))
		entry := log.WithError(err)
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			entry = entry.WithField("cause", fetchErr.Detail())
		}
		entry.Error("Dashboard load failed")
		return err
	}

	s.metrics.RecordDashboardLoad(string(trigger), "success", time.Since(start))
	log.WithField("duration", time.Since(start)).Info("Dashboard load completed")
	return nil
}

// State returns the current dashboard state. Every load failure is reported
// with the same banner text.
func (s *DashboardService) State(ctx context.Context) DashboardState {
	current := s.store.Current(ctx)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	state := DashboardState{
		Loading:  s.initialInFlight > 0,
		Draft:    s.draft,
		Applied:  s.applied,
		Snapshot: current.Snapshot,
		Seq:      current.Seq,
	}
	if current.Err != nil {
		state.Error = domain.ErrFetchFailed.Error()
	}
	return state
}

// Stop detaches the service: loads still in flight finish but their
// outcomes are dropped, and new loads are refused.
func (s *DashboardService) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stopped = true
}
