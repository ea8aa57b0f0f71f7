package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/haytac/message-formatter/internal/metrics"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// handleWebSocket upgrades the connection and answers every FormatRequest
// frame with a FormatResponse frame, in order.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	metrics.ActiveConnections.Inc()
	defer metrics.ActiveConnections.Dec()
	defer conn.Close()

	client := clientKey(r)
	l := s.logger.With().Str("client", client).Logger()
	l.Debug().Msg("WebSocket client connected")

	conn.SetReadLimit(s.cfg.MaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(conn, done)

	for {
		var req FormatRequest
		if err := conn.ReadJSON(&req); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || errors.Is(err, websocket.ErrCloseSent) {
				l.Debug().Msg("WebSocket client disconnected")
			} else {
				l.Debug().Err(err).Msg("WebSocket read ended")
			}
			return
		}

		var resp FormatResponse
		if !s.limiter.allow(client) {
			metrics.RateLimited.WithLabelValues("ws").Inc()
			resp.Error = "rate limit exceeded"
		} else if out, err := s.format("ws", req); err != nil {
			resp.Error = err.Error()
		} else {
			resp.HTML = out
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(resp); err != nil {
			l.Debug().Err(err).Msg("WebSocket write failed")
			return
		}
	}
}

// pingLoop keeps the connection alive until done is closed.
func (s *Server) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
