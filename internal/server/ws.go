package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raysh454/dccdev/internal/logging"
)

const wsWriteTimeout = 10 * time.Second

// handleLogWS godoc
// @Summary Follow a slot's server log
// @Description Upgrades to a WebSocket. The first frame carries the current tail; later frames are sent only when the tail changes.
// @Tags slots
// @Param id path int true "Slot ID"
// @Param lines query int false "Number of lines (default 500)"
// @Success 101 {object} LogMessage
// @Failure 404 {object} ErrorResponse
// @Router /ws/slots/{id}/log [get]
func (s *Server) handleLogWS(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.fail(w, "following slot log", err)
		return
	}
	lines := linesParam(r)
	ctx := r.Context()

	// Resolve the slot before upgrading so lookup errors get a real status code.
	last, err := s.orchestrator.Logs(ctx, id, lines)
	if err != nil {
		s.fail(w, "following slot log", err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Err(err))
		return
	}
	defer conn.Close()

	// The client never sends anything meaningful; reading only detects close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeFrame(conn, LogMessage{SlotID: id, Log: last}); err != nil {
		return
	}

	ticker := time.NewTicker(s.cfg.LogFollowInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		next, err := s.orchestrator.Logs(ctx, id, lines)
		if err != nil {
			s.logger.Warn("following slot log", logging.Field{Key: "slot_id", Value: id}, logging.Err(err))
			_ = writeFrame(conn, LogMessage{SlotID: id, Error: err.Error()})
			return
		}
		if next == last {
			continue
		}
		last = next
		if err := writeFrame(conn, LogMessage{SlotID: id, Log: next}); err != nil {
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, msg LogMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg)
}
