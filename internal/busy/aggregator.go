// Package busy turns many independently started and finished requests into a
// single flicker-free busy flag: slow-ish to show, slower to hide, with a
// watchdog against stuck spinners.
package busy

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

const (
	DefaultShowDelay       = 50 * time.Millisecond
	DefaultHideDelay       = 200 * time.Millisecond
	DefaultWatchdogTimeout = 30 * time.Second
)

type phase int

const (
	phaseIdle phase = iota
	phasePendingShow
	phaseShown
	phasePendingHide
)

// Sink receives the published flag. Sinks run with the aggregator lock held
// so that emissions stay serialized; they must not call back into the
// aggregator.
type Sink func(visible bool)

type Options struct {
	ShowDelay       time.Duration
	HideDelay       time.Duration
	WatchdogTimeout time.Duration
	Clock           clock.Clock
	Logger          zerolog.Logger
}

// Aggregator counts in-flight requests and derives the published busy flag
// through asymmetric debounce. The show signal is delayed briefly so bursts
// that finish quickly never flash a spinner; the hide signal is delayed
// longer and re-checked against the live counter right before publishing.
type Aggregator struct {
	clk             clock.Clock
	log             zerolog.Logger
	showDelay       time.Duration
	hideDelay       time.Duration
	watchdogTimeout time.Duration

	mu        sync.Mutex
	active    int64
	state     phase
	showTimer *clock.Timer
	hideTimer *clock.Timer
	watchdog  *clock.Timer
	sinks     map[int]Sink
	nextSink  int
	visible   bool
}

func New(opts Options) *Aggregator {
	if opts.ShowDelay <= 0 {
		opts.ShowDelay = DefaultShowDelay
	}
	if opts.HideDelay <= 0 {
		opts.HideDelay = DefaultHideDelay
	}
	if opts.WatchdogTimeout <= 0 {
		opts.WatchdogTimeout = DefaultWatchdogTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	return &Aggregator{
		clk:             opts.Clock,
		log:             opts.Logger.With().Str("component", "busy").Logger(),
		showDelay:       opts.ShowDelay,
		hideDelay:       opts.HideDelay,
		watchdogTimeout: opts.WatchdogTimeout,
		sinks:           map[int]Sink{},
	}
}

// Subscribe registers a sink and returns its cancel function. The sink
// immediately receives the currently published value.
func (a *Aggregator) Subscribe(fn Sink) func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextSink
	a.nextSink++
	a.sinks[id] = fn
	fn(a.visible)

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.sinks, id)
	}
}

// Begin records a request start. The 0 to 1 transition arms the show delay;
// nothing is published until it elapses with the counter still positive.
func (a *Aggregator) Begin() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.active++
	switch a.state {
	case phaseIdle:
		a.state = phasePendingShow
		a.showTimer = a.clk.AfterFunc(a.showDelay, a.onShowDelay)
	case phasePendingHide:
		// New work arrived during the hide delay: stay visible.
		a.stopTimer(&a.hideTimer)
		a.state = phaseShown
	case phasePendingShow, phaseShown:
	}
}

// End records a request termination, success or failure alike. A decrement
// below zero is clamped and logged as an invariant violation, never
// propagated.
func (a *Aggregator) End() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active == 0 {
		a.log.Warn().Msg("request counter decremented below zero, clamped")
		return
	}
	a.active--
	if a.active > 0 {
		return
	}

	switch a.state {
	case phasePendingShow:
		// The whole burst finished inside the show delay: never show.
		a.stopTimer(&a.showTimer)
		a.state = phaseIdle
	case phaseShown:
		a.state = phasePendingHide
		a.hideTimer = a.clk.AfterFunc(a.hideDelay, a.onHideDelay)
	case phaseIdle, phasePendingHide:
	}
}

// ForceHide is the emergency reset: watchdog canceled, counter zeroed,
// hidden published immediately, debounce bypassed.
func (a *Aggregator) ForceHide() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

// Active returns the live in-flight counter.
func (a *Aggregator) Active() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Visible returns the currently published flag.
func (a *Aggregator) Visible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.visible
}

func (a *Aggregator) onShowDelay() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != phasePendingShow {
		return
	}
	if a.active == 0 {
		a.state = phaseIdle
		return
	}

	a.state = phaseShown
	a.publish(true)
	a.stopTimer(&a.watchdog)
	a.watchdog = a.clk.AfterFunc(a.watchdogTimeout, a.onWatchdog)
}

func (a *Aggregator) onHideDelay() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != phasePendingHide {
		return
	}
	if a.active > 0 {
		// Requests started during the delay; skip hiding.
		a.state = phaseShown
		return
	}

	a.state = phaseIdle
	a.stopTimer(&a.watchdog)
	a.publish(false)
}

func (a *Aggregator) onWatchdog() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.visible {
		return
	}
	if a.active > 0 {
		a.log.Error().Int64("active", a.active).Msg("busy watchdog fired with requests still in flight, forcing hidden")
	}
	a.reset()
}

// reset zeroes the counter and publishes hidden. Callers hold a.mu.
func (a *Aggregator) reset() {
	a.stopTimer(&a.showTimer)
	a.stopTimer(&a.hideTimer)
	a.stopTimer(&a.watchdog)
	a.active = 0
	a.state = phaseIdle
	a.publish(false)
}

// publish emits only on value changes so consecutive identical states are
// collapsed. The flag starts hidden. Callers hold a.mu.
func (a *Aggregator) publish(visible bool) {
	if a.visible == visible {
		return
	}
	a.visible = visible
	for _, fn := range a.sinks {
		fn(visible)
	}
}

func (a *Aggregator) stopTimer(t **clock.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
