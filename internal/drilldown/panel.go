// Package drilldown holds the visibility state of the metric detail panel.
package drilldown

import (
	"sync"
	"time"

	"shieldboard/internal/domain"
)

type Phase string

const (
	PhaseClosed  Phase = "closed"
	PhaseOpen    Phase = "open"
	PhaseClosing Phase = "closing"
)

// State is a point-in-time copy of the panel.
type State struct {
	Phase  Phase            `json:"phase"`
	Metric domain.MetricKey `json:"metric,omitempty"`
}

// Visible reports whether the panel content should be rendered. A closing
// panel is still visible while its exit transition plays.
func (s State) Visible() bool {
	return s.Phase != PhaseClosed
}

// ScrollLock suspends page scrolling while the panel is open.
type ScrollLock interface {
	Acquire()
	Release()
}

// Panel is the closed/open/closing state machine behind the detail overlay.
// The scroll lock is held from entering open until reaching closed.
type Panel struct {
	delay        time.Duration
	lock         ScrollLock
	onTransition func(State)

	mu         sync.Mutex
	state      State
	locked     bool
	timer      *time.Timer
	generation uint64
}

// Option configures a Panel.
type Option func(*Panel)

// WithTransitionHook registers fn to be called after every phase change.
// fn runs with the panel unlocked.
func WithTransitionHook(fn func(State)) Option {
	return func(p *Panel) { p.onTransition = fn }
}

func NewPanel(delay time.Duration, lock ScrollLock, opts ...Option) *Panel {
	if lock == nil {
		lock = &BodyScroll{}
	}
	p := &Panel{
		delay: delay,
		lock:  lock,
		state: State{Phase: PhaseClosed},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Select handles a metric card click. Selecting the open metric closes the
// panel; selecting any other metric opens it on that metric. Re-selecting the
// metric that is mid-close finishes the close at once.
func (p *Panel) Select(metric domain.MetricKey) State {
	p.mu.Lock()
	var next State
	switch {
	case p.state.Phase == PhaseOpen && p.state.Metric == metric:
		next = p.closeNowLocked()
	case p.state.Phase == PhaseClosing && p.state.Metric == metric:
		next = p.closeNowLocked()
	default:
		next = p.openLocked(metric)
	}
	p.mu.Unlock()

	p.notify(next)
	return next
}

// Close starts the exit transition. The panel reaches closed after the
// configured delay unless it is reopened first. Closing a panel that is not
// open is a no-op.
func (p *Panel) Close() State {
	p.mu.Lock()
	if p.state.Phase != PhaseOpen {
		s := p.state
		p.mu.Unlock()
		return s
	}

	if p.delay <= 0 {
		next := p.closeNowLocked()
		p.mu.Unlock()
		p.notify(next)
		return next
	}

	p.state.Phase = PhaseClosing
	p.generation++
	gen := p.generation
	p.timer = time.AfterFunc(p.delay, func() { p.finishClose(gen) })
	next := p.state
	p.mu.Unlock()

	p.notify(next)
	return next
}

// Shutdown drops the panel to closed and releases the scroll lock
// regardless of the current phase.
func (p *Panel) Shutdown() {
	p.mu.Lock()
	changed := p.state.Phase != PhaseClosed
	next := p.closeNowLocked()
	p.mu.Unlock()

	if changed {
		p.notify(next)
	}
}

func (p *Panel) finishClose(gen uint64) {
	p.mu.Lock()
	if gen != p.generation || p.state.Phase != PhaseClosing {
		p.mu.Unlock()
		return
	}
	next := p.closeNowLocked()
	p.mu.Unlock()

	p.notify(next)
}

func (p *Panel) openLocked(metric domain.MetricKey) State {
	p.stopTimerLocked()
	if !p.locked {
		p.lock.Acquire()
		p.locked = true
	}
	p.state = State{Phase: PhaseOpen, Metric: metric}
	return p.state
}

func (p *Panel) closeNowLocked() State {
	p.stopTimerLocked()
	if p.locked {
		p.lock.Release()
		p.locked = false
	}
	p.state = State{Phase: PhaseClosed}
	return p.state
}

func (p *Panel) stopTimerLocked() {
	p.generation++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Panel) notify(s State) {
	if p.onTransition != nil {
		p.onTransition(s)
	}
}
