package domain

// EngagementStatus is the classifier's verdict for one observation window.
type EngagementStatus string

const (
	StatusEngaged    EngagementStatus = "ENGAGED"
	StatusDistracted EngagementStatus = "DISTRACTED"
)

// Distracted reports whether the status should interrupt the learner.
// Unknown classifier outputs are treated as non-distracted.
func (s EngagementStatus) Distracted() bool {
	return s == StatusDistracted
}

// DistractionReason identifies which signal source detected a distraction episode.
type DistractionReason string

const (
	ReasonTabSwitch        DistractionReason = "tab_switch"
	ReasonInactivity       DistractionReason = "inactivity"
	ReasonRemoteClassifier DistractionReason = "remote_classifier"
)

// StatusSample is one entry of the engagement log kept by the monitor server.
type StatusSample struct {
	Time   string           `json:"time"`
	Status EngagementStatus `json:"status"`
}

// StatusReport is the response of GET /status.
type StatusReport struct {
	Monitoring bool           `json:"monitoring"`
	RecentLogs []StatusSample `json:"recent_logs"`
}

// Question is one pre-authored quiz question. Answer must be one of Options.
type Question struct {
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
	Hint    string   `json:"hint,omitempty"`
}

// Quiz is the full question set authored for one video.
type Quiz struct {
	VideoID   string     `json:"videoId"`
	Questions []Question `json:"questions"`
}

// QuizSession is the server-side cursor over a quiz. QuestionNumber exposed
// to clients is Current+1; clients never see Answer or Hint ahead of time.
type QuizSession struct {
	ID        string     `json:"id"`
	VideoID   string     `json:"videoId"`
	Questions []Question `json:"questions"`
	Current   int        `json:"current"`
}

// QuestionPayload is the wire shape shared by GET /get-quiz and
// POST /next-question. SessionID is set only on the initial fetch, and
// Completed only on the terminal advance.
type QuestionPayload struct {
	SessionID      string   `json:"sessionId,omitempty"`
	Question       string   `json:"question,omitempty"`
	Options        []string `json:"options,omitempty"`
	QuestionNumber int      `json:"questionNumber,omitempty"`
	TotalQuestions int      `json:"totalQuestions,omitempty"`
	Completed      bool     `json:"completed,omitempty"`
}

// CheckResult is the response of POST /check-answer. The server is the sole
// authority on correctness; Hint is present only on a wrong answer.
type CheckResult struct {
	Correct bool   `json:"correct"`
	Hint    string `json:"hint,omitempty"`
}
