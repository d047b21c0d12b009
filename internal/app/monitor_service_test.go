package app

import (
	"testing"
	"time"

	"smartlearn-monitor/internal/domain"
)

func TestStartStopAreIdempotentToggles(t *testing.T) {
	s := NewMonitorService()

	if !s.Start() {
		t.Fatalf("expected first start to activate")
	}
	if s.Start() {
		t.Fatalf("expected second start to report already running")
	}

	s.Record(domain.StatusEngaged)
	logEntries := s.Stop()
	if len(logEntries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(logEntries))
	}

	// Stopping again is harmless and returns the same run's log.
	if got := s.Stop(); len(got) != 1 {
		t.Fatalf("expected unchanged log on repeated stop, got %d entries", len(got))
	}
}

func TestStartResetsLog(t *testing.T) {
	s := NewMonitorService()
	s.Start()
	s.Record(domain.StatusDistracted)
	s.Stop()

	s.Start()
	report := s.Status()
	if len(report.RecentLogs) != 0 {
		t.Fatalf("expected fresh log on restart, got %v", report.RecentLogs)
	}
}

func TestRecordDroppedWhileInactive(t *testing.T) {
	s := NewMonitorService()
	s.Record(domain.StatusDistracted)
	if report := s.Status(); len(report.RecentLogs) != 0 {
		t.Fatalf("expected sample dropped while inactive, got %v", report.RecentLogs)
	}
}

func TestStatusReturnsLastTenSamples(t *testing.T) {
	now := time.Unix(1000, 0)
	s := newMonitorServiceWithClock(func() time.Time { return now })
	s.Start()

	for i := 0; i < 12; i++ {
		status := domain.StatusEngaged
		if i == 11 {
			status = domain.StatusDistracted
		}
		s.Record(status)
		now = now.Add(2 * time.Second)
	}

	report := s.Status()
	if !report.Monitoring {
		t.Fatalf("expected monitoring active")
	}
	if len(report.RecentLogs) != 10 {
		t.Fatalf("expected 10 recent entries, got %d", len(report.RecentLogs))
	}
	last := report.RecentLogs[len(report.RecentLogs)-1]
	if last.Status != domain.StatusDistracted {
		t.Fatalf("expected most recent entry last, got %+v", last)
	}
}

func TestSubscribeReceivesLiveSamples(t *testing.T) {
	s := NewMonitorService()
	s.Start()

	ch, cancel := s.Subscribe()
	defer cancel()

	s.Record(domain.StatusDistracted)

	select {
	case sample := <-ch:
		if sample.Status != domain.StatusDistracted {
			t.Fatalf("expected DISTRACTED sample, got %+v", sample)
		}
	case <-time.After(time.Second):
		t.Fatalf("no sample received")
	}
}
