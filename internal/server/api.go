package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/raysh454/dccdev/internal/logging"
)

// handleAPIListSlots godoc
// @Summary List slots
// @Description Returns every slot in file order with its live process status.
// @Tags slots
// @Produce json
// @Success 200 {array} app.SlotView
// @Failure 500 {object} ErrorResponse
// @Router /api/slots [get]
func (s *Server) handleAPIListSlots(w http.ResponseWriter, r *http.Request) {
	views, err := s.orchestrator.Dashboard(r.Context())
	if err != nil {
		s.fail(w, "listing slots", err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// handleAPIGetSlot godoc
// @Summary Get a slot
// @Tags slots
// @Produce json
// @Param id path int true "Slot ID"
// @Success 200 {object} app.SlotView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/slots/{id} [get]
func (s *Server) handleAPIGetSlot(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.fail(w, "getting slot", err)
		return
	}
	v, err := s.orchestrator.View(r.Context(), id)
	if err != nil {
		s.fail(w, "getting slot", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleAPISaveSlot godoc
// @Summary Save a slot
// @Description Replaces the slot's configuration. A non-zero pr resolves that pull request's build, stores it and runs the installer.
// @Tags slots
// @Accept json
// @Produce json
// @Param id path int true "Slot ID"
// @Param request body SaveSlotRequest true "Slot configuration"
// @Success 200 {object} app.SaveResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/slots/{id} [put]
func (s *Server) handleAPISaveSlot(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.fail(w, "saving slot", err)
		return
	}
	var body SaveSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("decoding save slot body", logging.Err(err))
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.PR < 0 {
		writeError(w, http.StatusBadRequest, "pr must not be negative")
		return
	}
	res, err := s.orchestrator.Save(r.Context(), id, body.config(), body.PR)
	if err != nil {
		s.fail(w, "saving slot", err)
		return
	}
	s.logger.Info("saved slot", logging.Field{Key: "slot_id", Value: id}, logging.Field{Key: "deployed", Value: res.Deployed})
	writeJSON(w, http.StatusOK, res)
}

// handleAPIStart godoc
// @Summary Start a slot's server
// @Tags slots
// @Produce json
// @Param id path int true "Slot ID"
// @Success 200 {object} OutputResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/slots/{id}/start [post]
func (s *Server) handleAPIStart(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.fail(w, "starting slot", err)
		return
	}
	out, err := s.orchestrator.Start(r.Context(), id)
	if err != nil {
		s.fail(w, "starting slot", err)
		return
	}
	writeJSON(w, http.StatusOK, OutputResponse{SlotID: id, Output: out})
}

// handleAPIStop godoc
// @Summary Stop a slot's server
// @Tags slots
// @Produce json
// @Param id path int true "Slot ID"
// @Success 200 {object} OutputResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/slots/{id}/stop [post]
func (s *Server) handleAPIStop(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.fail(w, "stopping slot", err)
		return
	}
	out, err := s.orchestrator.Stop(r.Context(), id)
	if err != nil {
		s.fail(w, "stopping slot", err)
		return
	}
	writeJSON(w, http.StatusOK, OutputResponse{SlotID: id, Output: out})
}

// handleAPIStatus godoc
// @Summary Get a slot's process status
// @Description status is -1 (unknown), 0 (stopped) or 1 (running).
// @Tags slots
// @Produce json
// @Param id path int true "Slot ID"
// @Success 200 {object} StatusResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/slots/{id}/status [get]
func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.fail(w, "getting slot status", err)
		return
	}
	st, err := s.orchestrator.Status(r.Context(), id)
	if err != nil {
		s.fail(w, "getting slot status", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{SlotID: id, Status: st, State: st.String()})
}

// handleAPILog godoc
// @Summary Tail a slot's server log
// @Tags slots
// @Produce json
// @Param id path int true "Slot ID"
// @Param lines query int false "Number of lines (default 500)"
// @Success 200 {object} OutputResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/slots/{id}/log [get]
func (s *Server) handleAPILog(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.fail(w, "reading slot log", err)
		return
	}
	out, err := s.orchestrator.Logs(r.Context(), id, linesParam(r))
	if err != nil {
		s.fail(w, "reading slot log", err)
		return
	}
	writeJSON(w, http.StatusOK, OutputResponse{SlotID: id, Output: out})
}

// handleAPIHistory godoc
// @Summary List a slot's recorded actions
// @Tags slots
// @Produce json
// @Param id path int true "Slot ID"
// @Success 200 {array} history.Entry
// @Failure 404 {object} ErrorResponse
// @Router /api/slots/{id}/history [get]
func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.fail(w, "listing slot history", err)
		return
	}
	entries, err := s.orchestrator.History(r.Context(), id)
	if err != nil {
		s.fail(w, "listing slot history", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleAPIListPRs godoc
// @Summary List open pull requests
// @Tags pulls
// @Produce json
// @Success 200 {array} builds.PullRequest
// @Failure 502 {object} ErrorResponse
// @Router /api/prs [get]
func (s *Server) handleAPIListPRs(w http.ResponseWriter, r *http.Request) {
	prs, err := s.orchestrator.PullRequests(r.Context())
	if err != nil {
		s.fail(w, "listing pull requests", err)
		return
	}
	writeJSON(w, http.StatusOK, prs)
}

// linesParam parses ?lines=N; anything invalid means the default.
func linesParam(r *http.Request) int {
	if v, err := strconv.Atoi(r.URL.Query().Get("lines")); err == nil && v > 0 {
		return v
	}
	return 0
}
