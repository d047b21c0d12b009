package engagement

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"smartlearn-monitor/internal/domain"
)

// DefaultPollInterval is how often the remote classifier status is read
// while a monitoring session is active.
const DefaultPollInterval = 2 * time.Second

// Poller bridges the remote engagement classifier into the local distraction
// vocabulary. While playback is active it holds one server-side monitoring
// session open and polls GET /status, projecting the most recent log entry
// into shared state. An ENGAGED-to-DISTRACTED transition fires the current
// distraction handler once per observation.
//
// Start/stop transitions are serialized: a start is never issued while a
// session is already open or a transition is in flight, and a stop is always
// attempted once a start has succeeded, even across rapid play/pause
// toggling or teardown. Network failures are logged and swallowed; a failed
// stop still clears the local flag so the next play event can start fresh.
type Poller struct {
	baseURL  string
	client   *http.Client
	state    *State
	interval time.Duration

	mu            sync.Mutex
	handler       func()
	want          bool
	monitoring    bool
	transitioning bool
	closed        bool
	lastStatus    domain.EngagementStatus
	cancelPoll    context.CancelFunc
}

func NewPoller(baseURL string, state *State) *Poller {
	return newPoller(baseURL, state, DefaultPollInterval)
}

func newPoller(baseURL string, state *State, interval time.Duration) *Poller {
	return &Poller{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		state:      state,
		interval:   interval,
		lastStatus: domain.StatusEngaged,
	}
}

// SetHandler replaces the distraction handler. The poll loop always invokes
// the handler registered most recently, never a stale one.
func (p *Poller) SetHandler(fn func()) {
	p.mu.Lock()
	p.handler = fn
	p.mu.Unlock()
}

// SetPlaying records the desired monitoring state and reconciles toward it.
// The network transition runs asynchronously; callers never block.
func (p *Poller) SetPlaying(playing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.want = playing
	p.reconcileLocked()
}

// reconcileLocked issues at most one start or stop transition at a time.
// Re-invoked when a transition completes, so a desire that changed mid-flight
// is honored next.
func (p *Poller) reconcileLocked() {
	if p.transitioning {
		return
	}
	switch {
	case p.want && !p.monitoring && !p.closed:
		p.transitioning = true
		go p.startSession()
	case !p.want && p.monitoring:
		p.transitioning = true
		go p.stopSession()
	}
}

func (p *Poller) startSession() {
	err := p.post("/start-monitoring")

	p.mu.Lock()
	defer p.mu.Unlock()
	p.transitioning = false
	if err != nil {
		// Leave monitoring unset; the next play event retries.
		log.Printf("engagement: start monitoring failed: %v", err)
		p.reconcileLocked()
		return
	}
	p.monitoring = true
	p.lastStatus = domain.StatusEngaged
	ctx, cancel := context.WithCancel(context.Background())
	p.cancelPoll = cancel
	go p.pollLoop(ctx)
	p.reconcileLocked()
}

func (p *Poller) stopSession() {
	err := p.post("/stop-monitoring")

	p.mu.Lock()
	defer p.mu.Unlock()
	p.transitioning = false
	// Clear the flag even when the stop call failed, otherwise a dead
	// server-side session would block every future start.
	p.monitoring = false
	if p.cancelPoll != nil {
		p.cancelPoll()
		p.cancelPoll = nil
	}
	if err != nil {
		log.Printf("engagement: stop monitoring failed: %v", err)
	}
	p.reconcileLocked()
}

func (p *Poller) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.pollOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/status", nil)
	if err != nil {
		log.Printf("engagement: status request: %v", err)
		return
	}
	resp, err := p.client.Do(req)
	if err != nil {
		// Skip this cycle; the loop stays alive.
		log.Printf("engagement: status poll failed: %v", err)
		return
	}
	defer resp.Body.Close()

	var report domain.StatusReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		log.Printf("engagement: decode status: %v", err)
		return
	}
	if len(report.RecentLogs) == 0 {
		return
	}
	latest := report.RecentLogs[len(report.RecentLogs)-1].Status

	p.mu.Lock()
	if p.closed || ctx.Err() != nil {
		// The owning view is gone; never touch shared state from here.
		p.mu.Unlock()
		return
	}
	fire := latest.Distracted() && !p.lastStatus.Distracted()
	p.lastStatus = latest
	handler := p.handler
	// Write shared state under the same lock as the closed check, so a Close
	// landing in between cannot be followed by a stale write.
	p.state.SetStatus(latest)
	p.mu.Unlock()

	if fire && handler != nil {
		handler()
	}
}

func (p *Poller) post(path string) error {
	resp, err := p.client.Post(p.baseURL+path, "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

// Close cancels polling and makes a best-effort attempt to stop an open
// monitoring session. Further SetPlaying calls are ignored.
func (p *Poller) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.want = false
	if p.cancelPoll != nil {
		p.cancelPoll()
		p.cancelPoll = nil
	}
	open := p.monitoring && !p.transitioning
	if open {
		p.transitioning = true
	}
	p.mu.Unlock()

	if open {
		p.stopSession()
	}
}
