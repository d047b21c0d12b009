package engagement

import (
	"sync"

	"smartlearn-monitor/internal/domain"
)

// State is the shared session state for one watched video. Each field has a
// single writer: the Poller writes the engagement status, the Coordinator
// writes the distraction count and flips playing off on distraction, and the
// embedding caller owns the video fields and play/pause transitions.
type State struct {
	mu               sync.RWMutex
	videoURL         string
	transcript       string
	playing          bool
	distractionCount int
	status           domain.EngagementStatus
}

func NewState() *State {
	return &State{status: domain.StatusEngaged}
}

func (s *State) SetVideo(url, transcript string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoURL = url
	s.transcript = transcript
}

func (s *State) VideoURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.videoURL
}

func (s *State) Transcript() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript
}

func (s *State) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = playing
}

func (s *State) Playing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playing
}

// SetStatus is written only by the Poller.
func (s *State) SetStatus(status domain.EngagementStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *State) Status() domain.EngagementStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// IncrementDistractions is written only by the Coordinator and returns the new count.
func (s *State) IncrementDistractions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distractionCount++
	return s.distractionCount
}

func (s *State) Distractions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.distractionCount
}
