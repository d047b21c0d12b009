package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"smartlearn-monitor/internal/domain"
)

// defaultHint is returned on a wrong answer when the question carries no
// authored hint.
const defaultHint = "Review the material and try again."

// QuizBank loads pre-authored quiz content for a video (from cache/backing store).
type QuizBank interface {
	GetQuiz(ctx context.Context, videoID string) (domain.Quiz, error)
}

// SessionStore abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionStore interface {
	Save(ctx context.Context, session domain.QuizSession) error
	Get(ctx context.Context, id string) (domain.QuizSession, error)
	Delete(ctx context.Context, id string) error
}

// SessionService walks server-owned quiz sessions: create from the quiz
// bank, check one answer at a time, advance on demand. The service is the
// sole authority on correctness; clients only ever see the current question,
// a correct flag, and hints.
type SessionService struct {
	bank     QuizBank
	sessions SessionStore
	clock    func() time.Time
	rnd      *rand.Rand
}

func NewSessionService(bank QuizBank, sessions SessionStore) *SessionService {
	return &SessionService{
		bank:     bank,
		sessions: sessions,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start creates a session over the video's quiz and returns the first
// question. Unknown videos surface domain.ErrQuizNotFound.
func (s *SessionService) Start(ctx context.Context, videoID string) (domain.QuestionPayload, error) {
	quiz, err := s.bank.GetQuiz(ctx, videoID)
	if err != nil {
		return domain.QuestionPayload{}, err
	}
	if len(quiz.Questions) == 0 {
		return domain.QuestionPayload{}, domain.ErrEmptyQuiz
	}

	session := domain.QuizSession{
		ID:        fmt.Sprintf("%s_%d-%04x", videoID, s.clock().Unix(), s.rnd.Intn(1<<16)),
		VideoID:   videoID,
		Questions: quiz.Questions,
		Current:   0,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.QuestionPayload{}, fmt.Errorf("save session: %w", err)
	}

	first := session.Questions[0]
	return domain.QuestionPayload{
		SessionID:      session.ID,
		Question:       first.Prompt,
		Options:        first.Options,
		QuestionNumber: 1,
		TotalQuestions: len(session.Questions),
	}, nil
}

// Check compares the submitted answer against the current question. A wrong
// answer returns the question's hint and does not advance the cursor.
func (s *SessionService) Check(ctx context.Context, sessionID, answer string) (domain.CheckResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.CheckResult{}, err
	}
	if session.Current >= len(session.Questions) {
		return domain.CheckResult{}, domain.ErrSessionComplete
	}

	question := session.Questions[session.Current]
	if answer == question.Answer {
		return domain.CheckResult{Correct: true}, nil
	}
	hint := question.Hint
	if hint == "" {
		hint = defaultHint
	}
	return domain.CheckResult{Correct: false, Hint: hint}, nil
}

// Next advances the cursor. Past the last question it deletes the session
// and returns a completion marker; otherwise the next question payload.
func (s *SessionService) Next(ctx context.Context, sessionID string) (domain.QuestionPayload, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.QuestionPayload{}, err
	}

	session.Current++
	if session.Current >= len(session.Questions) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			return domain.QuestionPayload{}, fmt.Errorf("delete session: %w", err)
		}
		return domain.QuestionPayload{Completed: true}, nil
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.QuestionPayload{}, fmt.Errorf("save session: %w", err)
	}

	question := session.Questions[session.Current]
	return domain.QuestionPayload{
		Question:       question.Prompt,
		Options:        question.Options,
		QuestionNumber: session.Current + 1,
		TotalQuestions: len(session.Questions),
	}, nil
}
