package app

import (
	"sync"
	"time"

	"smartlearn-monitor/internal/domain"
)

// maxLogEntries bounds the engagement log for one monitoring run.
const maxLogEntries = 1000

// recentWindow is how many trailing log entries Status exposes.
const recentWindow = 10

// MonitorService owns the server side of a monitoring session: an idempotent
// active toggle and the engagement log fed by an external classifier process.
// Start while running and stop while stopped are both no-ops, so the client's
// start/stop calls behave as idempotent toggles.
type MonitorService struct {
	clock func() time.Time

	mu          sync.Mutex
	active      bool
	log         []domain.StatusSample
	subscribers map[chan domain.StatusSample]struct{}
}

func NewMonitorService() *MonitorService {
	return newMonitorServiceWithClock(time.Now)
}

func newMonitorServiceWithClock(clock func() time.Time) *MonitorService {
	return &MonitorService{
		clock:       clock,
		subscribers: make(map[chan domain.StatusSample]struct{}),
	}
}

// Start activates monitoring and resets the log. Returns false when a
// session was already running.
func (s *MonitorService) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return false
	}
	s.active = true
	s.log = nil
	return true
}

// Stop deactivates monitoring and returns the full log of the run. Stopping
// an inactive service returns the last run's log unchanged.
func (s *MonitorService) Stop() []domain.StatusSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	out := make([]domain.StatusSample, len(s.log))
	copy(out, s.log)
	return out
}

// Record appends one classifier sample. Samples arriving while monitoring is
// inactive are dropped.
func (s *MonitorService) Record(status domain.EngagementStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	sample := domain.StatusSample{
		Time:   s.clock().Format("2006-01-02 15:04:05"),
		Status: status,
	}
	s.log = append(s.log, sample)
	if len(s.log) > maxLogEntries {
		s.log = s.log[len(s.log)-maxLogEntries:]
	}
	for ch := range s.subscribers {
		select {
		case ch <- sample:
		default:
			// Drop for slow subscribers rather than blocking classifier ingest.
		}
	}
}

// Status returns the active flag and the most recent log entries.
func (s *MonitorService) Status() domain.StatusReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if len(s.log) > recentWindow {
		start = len(s.log) - recentWindow
	}
	recent := make([]domain.StatusSample, len(s.log)-start)
	copy(recent, s.log[start:])
	return domain.StatusReport{Monitoring: s.active, RecentLogs: recent}
}

// Subscribe returns a channel of live samples. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *MonitorService) Subscribe() (<-chan domain.StatusSample, func()) {
	ch := make(chan domain.StatusSample, 16)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}
