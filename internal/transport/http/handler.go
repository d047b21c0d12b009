package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"smartlearn-monitor/internal/app"
	"smartlearn-monitor/internal/domain"
)

// Handler exposes the monitoring and quiz session API consumed by the agent.
type Handler struct {
	monitor *app.MonitorService
	quizzes *app.SessionService
}

func NewHandler(monitor *app.MonitorService, quizzes *app.SessionService) *Handler {
	return &Handler{monitor: monitor, quizzes: quizzes}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/start-monitoring", h.startMonitoring)
	mux.HandleFunc("/stop-monitoring", h.stopMonitoring)
	mux.HandleFunc("/status", h.status)
	mux.HandleFunc("/report", h.report)
	mux.HandleFunc("/get-quiz", h.getQuiz)
	mux.HandleFunc("/check-answer", h.checkAnswer)
	mux.HandleFunc("/next-question", h.nextQuestion)
}

func (h *Handler) startMonitoring(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if h.monitor.Start() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "already running"})
}

func (h *Handler) stopMonitoring(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	logEntries := h.monitor.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"status": "stopped", "log": logEntries})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.monitor.Status())
}

// report ingests one classifier sample; the capture process itself lives
// outside this service.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Status domain.EngagementStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		writeError(w, http.StatusBadRequest, "missing or invalid status")
		return
	}
	h.monitor.Record(body.Status)
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	videoID := r.URL.Query().Get("videoId")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "Missing videoId parameter")
		return
	}
	payload, err := h.quizzes.Start(r.Context(), videoID)
	if errors.Is(err, domain.ErrQuizNotFound) || errors.Is(err, domain.ErrEmptyQuiz) {
		writeError(w, http.StatusNotFound, "No quiz available for this video")
		return
	}
	if err != nil {
		log.Printf("get-quiz %s: %v", videoID, err)
		writeError(w, http.StatusInternalServerError, "An internal error occurred while loading the quiz")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) checkAnswer(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		SessionID string `json:"sessionId"`
		Answer    string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SessionID == "" {
		writeError(w, http.StatusBadRequest, "Invalid session")
		return
	}
	result, err := h.quizzes.Check(r.Context(), body.SessionID, body.Answer)
	if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionComplete) {
		writeError(w, http.StatusBadRequest, "Invalid session")
		return
	}
	if err != nil {
		log.Printf("check-answer %s: %v", body.SessionID, err)
		writeError(w, http.StatusInternalServerError, "Failed to check answer")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SessionID == "" {
		writeError(w, http.StatusBadRequest, "Invalid session")
		return
	}
	payload, err := h.quizzes.Next(r.Context(), body.SessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusBadRequest, "Invalid session")
		return
	}
	if err != nil {
		log.Printf("next-question %s: %v", body.SessionID, err)
		writeError(w, http.StatusInternalServerError, "Failed to advance question")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
