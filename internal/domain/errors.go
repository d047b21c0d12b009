package domain

import "errors"

var (
	// ErrQuizNotFound indicates no quiz content exists for the requested video.
	ErrQuizNotFound = errors.New("quiz not found for video")
	// ErrSessionNotFound is returned when a session ID is unknown or expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionComplete is returned when answers arrive after the last question.
	ErrSessionComplete = errors.New("quiz session already complete")
	// ErrEmptyQuiz indicates quiz content with no questions; sessions cannot start from it.
	ErrEmptyQuiz = errors.New("quiz has no questions")
)
