package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"smartlearn-monitor/internal/app"
	"smartlearn-monitor/internal/domain"
)

// WSHandler streams live engagement samples to dashboard clients over a
// websocket, as a push alternative to polling GET /status.
type WSHandler struct {
	monitor  *app.MonitorService
	upgrader websocket.Upgrader
}

func NewWSHandler(monitor *app.MonitorService) *WSHandler {
	return &WSHandler{
		monitor: monitor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type wsEvent struct {
	Type    string              `json:"type"`
	Payload domain.StatusSample `json:"payload"`
}

// ServeWS upgrades the request and forwards every recorded sample until the
// client disconnects. A single writer goroutine owns the connection writes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	samples, cancel := h.monitor.Subscribe()
	defer cancel()

	readerGone := make(chan struct{})
	go func() {
		defer close(readerGone)
		for {
			// Clients send nothing meaningful; reads only surface disconnects.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case sample, ok := <-samples:
			if !ok {
				return
			}
			if err := conn.WriteJSON(wsEvent{Type: "engagement", Payload: sample}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-readerGone:
			return
		}
	}
}
