package engagement

import (
	"sync"
	"time"

	"smartlearn-monitor/internal/domain"
)

// DefaultDedupWindow is the minimum gap between two accepted distraction
// episodes. Signals are also gated on the quiz being closed, so the window
// only matters for signals racing in before the quiz view registers as open.
const DefaultDedupWindow = 5 * time.Second

// Player is the playback controller the coordinator pauses on distraction.
type Player interface {
	Pause()
}

// Notifier surfaces a distraction episode to the learner.
type Notifier interface {
	Distracted(reason domain.DistractionReason, count int)
}

// MonitorControl mirrors playback state into the remote monitoring session.
// Satisfied by the Poller.
type MonitorControl interface {
	SetPlaying(playing bool)
}

// Coordinator is the single choke point between the distraction signal
// sources and the quiz flow. All gating happens synchronously inside
// OnDistracted before any asynchronous work is dispatched, closing the race
// where two near-simultaneous signals would both launch a quiz.
type Coordinator struct {
	state    *State
	player   Player
	notifier Notifier
	monitor  MonitorControl
	launch   func(reason domain.DistractionReason)
	quizDone func()
	window   time.Duration
	now      func() time.Time

	mu           sync.Mutex
	quizOpen     bool
	lastAccepted time.Time
}

// CoordinatorConfig wires the coordinator's collaborators. Launch opens the
// quiz view; it is called synchronously and should hand off to its own
// goroutine for network work. QuizDone, if set, runs when the quiz closes;
// resuming playback is the caller's decision, never automatic.
type CoordinatorConfig struct {
	State       *State
	Player      Player
	Notifier    Notifier
	Monitor     MonitorControl // optional; told to stop when playback is paused
	Launch      func(reason domain.DistractionReason)
	QuizDone    func()
	DedupWindow time.Duration
}

func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	window := cfg.DedupWindow
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Coordinator{
		state:    cfg.State,
		player:   cfg.Player,
		notifier: cfg.Notifier,
		monitor:  cfg.Monitor,
		launch:   cfg.Launch,
		quizDone: cfg.QuizDone,
		window:   window,
		now:      time.Now,
	}
}

// OnDistracted handles one distraction signal from either source. Signals
// are ignored while playback is inactive, while a quiz is already open, or
// within the dedup window of the last accepted episode.
func (c *Coordinator) OnDistracted(reason domain.DistractionReason) {
	c.mu.Lock()
	now := c.now()
	// Signal sources gate on playback themselves, but a pause for unrelated
	// reasons can race in; re-check here.
	if !c.state.Playing() || c.quizOpen || now.Sub(c.lastAccepted) < c.window {
		c.mu.Unlock()
		return
	}
	c.quizOpen = true
	c.lastAccepted = now
	c.mu.Unlock()

	c.state.SetPlaying(false)
	if c.monitor != nil {
		// Playback halting ends the remote monitoring session too.
		c.monitor.SetPlaying(false)
	}
	c.player.Pause()
	count := c.state.IncrementDistractions()
	if c.notifier != nil {
		c.notifier.Distracted(reason, count)
	}
	c.launch(reason)
}

// QuizClosed reopens the gate once the quiz view is gone, whether the
// session completed, failed to start, or was dismissed.
func (c *Coordinator) QuizClosed() {
	c.mu.Lock()
	wasOpen := c.quizOpen
	c.quizOpen = false
	c.mu.Unlock()

	if wasOpen && c.quizDone != nil {
		c.quizDone()
	}
}

// QuizOpen reports whether a quiz session currently holds the gate.
func (c *Coordinator) QuizOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quizOpen
}
