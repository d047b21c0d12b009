// Package quizflow drives a server-owned quiz session to completion, one
// question at a time. The client never evaluates answers or fabricates
// content; everything it shows is a projection of server responses.
package quizflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"smartlearn-monitor/internal/domain"
)

// Client speaks the quiz session protocol against one base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Session is the client-side view of one server quiz session. Question
// fields always mirror the last server response.
type Session struct {
	client *Client

	ID             string
	Question       string
	Options        []string
	QuestionNumber int
	TotalQuestions int
	completed      bool
}

// Fetch requests a new quiz session for a video. A content-unavailable or
// server failure returns an error and no session; the caller surfaces it to
// the user without opening a quiz view.
func (c *Client) Fetch(ctx context.Context, videoID string) (*Session, error) {
	endpoint := c.baseURL + "/get-quiz?videoId=" + url.QueryEscape(videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quiz: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, remoteError("fetch quiz", resp)
	}
	var payload domain.QuestionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("fetch quiz: %w", err)
	}
	if payload.SessionID == "" || payload.Question == "" {
		return nil, fmt.Errorf("fetch quiz: %w", domain.ErrQuizNotFound)
	}
	return &Session{
		client:         c,
		ID:             payload.SessionID,
		Question:       payload.Question,
		Options:        payload.Options,
		QuestionNumber: payload.QuestionNumber,
		TotalQuestions: payload.TotalQuestions,
	}, nil
}

// Submit sends the selected option for the current question. On a wrong
// answer the returned hint is surfaced and the question stays open for
// another attempt; the driver never retries or skips on its own.
func (s *Session) Submit(ctx context.Context, answer string) (domain.CheckResult, error) {
	var result domain.CheckResult
	err := s.client.postJSON(ctx, "/check-answer", map[string]string{
		"sessionId": s.ID,
		"answer":    answer,
	}, &result)
	if err != nil {
		return domain.CheckResult{}, fmt.Errorf("check answer: %w", err)
	}
	return result, nil
}

// Advance requests the next question after a correct answer. It reports
// true when the server marks the session complete; totalQuestions is never
// used for termination.
func (s *Session) Advance(ctx context.Context) (bool, error) {
	var payload domain.QuestionPayload
	err := s.client.postJSON(ctx, "/next-question", map[string]string{
		"sessionId": s.ID,
	}, &payload)
	if err != nil {
		return false, fmt.Errorf("next question: %w", err)
	}
	if payload.Completed {
		s.completed = true
		return true, nil
	}
	s.Question = payload.Question
	s.Options = payload.Options
	s.QuestionNumber = payload.QuestionNumber
	s.TotalQuestions = payload.TotalQuestions
	return false, nil
}

// Completed reports whether the server has marked the session done.
func (s *Session) Completed() bool {
	return s.completed
}

// Prompt is what an Answerer sees for one attempt at a question.
type Prompt struct {
	Question       string
	Options        []string
	QuestionNumber int
	TotalQuestions int
}

// Answerer supplies answers for a session walk. Answer is called once per
// attempt; Hint is called with the server's hint after each wrong answer,
// before the question is asked again.
type Answerer interface {
	Answer(ctx context.Context, prompt Prompt) (string, error)
	Hint(hint string)
}

// Run walks the session to completion: ask, submit, re-ask on wrong with the
// hint revealed, advance on correct. Submit and Advance are strictly
// sequential; Advance is never issued before the correctness result is known.
func (s *Session) Run(ctx context.Context, answerer Answerer) error {
	for !s.completed {
		answer, err := answerer.Answer(ctx, Prompt{
			Question:       s.Question,
			Options:        s.Options,
			QuestionNumber: s.QuestionNumber,
			TotalQuestions: s.TotalQuestions,
		})
		if err != nil {
			return err
		}
		result, err := s.Submit(ctx, answer)
		if err != nil {
			return err
		}
		if !result.Correct {
			answerer.Hint(result.Hint)
			continue
		}
		if _, err := s.Advance(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return remoteError(path, resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// remoteError extracts the server's {"error": ...} message when present.
func remoteError(op string, resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%s: %s (status %d)", op, payload.Error, resp.StatusCode)
	}
	return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
}
