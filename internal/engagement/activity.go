package engagement

import (
	"sync"
	"time"

	"smartlearn-monitor/internal/domain"
)

const (
	// DefaultInactivityThreshold is how long pointer silence counts as distraction.
	DefaultInactivityThreshold = 30 * time.Second
	// DefaultInactivityCheck is how often the threshold is evaluated.
	DefaultInactivityCheck = 10 * time.Second
)

// ActivityMonitor derives two local distraction signals with no network
// dependency: a visible-to-hidden transition while playback is active
// (tab switch), and pointer silence beyond a threshold (inactivity).
//
// The tab-switch signal is edge-triggered. The inactivity signal is
// level-triggered: it may re-fire on every check tick while the learner
// stays idle; deduplication is the Coordinator's job.
type ActivityMonitor struct {
	state        *State
	onDistracted func(domain.DistractionReason)
	threshold    time.Duration
	now          func() time.Time

	mu           sync.Mutex
	lastActivity time.Time
	hidden       bool

	done      chan struct{}
	closeOnce sync.Once
}

// NewActivityMonitor starts the inactivity check ticker; callers must Close it.
func NewActivityMonitor(state *State, onDistracted func(domain.DistractionReason)) *ActivityMonitor {
	m := newActivityMonitorWithClock(state, onDistracted, DefaultInactivityThreshold, time.Now)
	go m.run(DefaultInactivityCheck)
	return m
}

// newActivityMonitorWithClock allows deterministic time in tests; it does not
// start the ticker goroutine.
func newActivityMonitorWithClock(state *State, onDistracted func(domain.DistractionReason), threshold time.Duration, now func() time.Time) *ActivityMonitor {
	return &ActivityMonitor{
		state:        state,
		onDistracted: onDistracted,
		threshold:    threshold,
		now:          now,
		lastActivity: now(),
		done:         make(chan struct{}),
	}
}

func (m *ActivityMonitor) run(check time.Duration) {
	ticker := time.NewTicker(check)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.checkInactivity()
		case <-m.done:
			return
		}
	}
}

// Touch records pointer or input activity.
func (m *ActivityMonitor) Touch() {
	m.mu.Lock()
	m.lastActivity = m.now()
	m.mu.Unlock()
}

// SetHidden records a visibility transition. Becoming hidden while playback
// is active fires the tab-switch signal immediately.
func (m *ActivityMonitor) SetHidden(hidden bool) {
	m.mu.Lock()
	wasHidden := m.hidden
	m.hidden = hidden
	m.mu.Unlock()

	if hidden && !wasHidden && m.state.Playing() {
		m.onDistracted(domain.ReasonTabSwitch)
	}
}

func (m *ActivityMonitor) checkInactivity() {
	m.mu.Lock()
	idle := m.now().Sub(m.lastActivity)
	m.mu.Unlock()

	if idle > m.threshold && m.state.Playing() {
		m.onDistracted(domain.ReasonInactivity)
	}
}

// Close releases the check ticker. Safe to call more than once.
func (m *ActivityMonitor) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}
