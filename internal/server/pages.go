package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/raysh454/dccdev/internal/logging"
	"github.com/raysh454/dccdev/internal/slots"
)

// errBadForm is returned when a save form cannot be parsed.
var errBadForm = errors.New("invalid form")

func (s *Server) render(w http.ResponseWriter, status int, tpl string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, tpl, data); err != nil {
		s.logger.Error("template render failed", logging.Field{Key: "template", Value: tpl}, logging.Err(err))
	}
}

func (s *Server) renderError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	s.logger.Warn(op, logging.Field{Key: "status", Value: status}, logging.Err(err))
	s.render(w, status, "error.html", map[string]any{
		"Title":   http.StatusText(status),
		"Message": err.Error(),
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	views, err := s.orchestrator.Dashboard(r.Context())
	if err != nil {
		s.renderError(w, "listing slots", err)
		return
	}
	s.render(w, http.StatusOK, "home.html", map[string]any{
		"Title": "Slots",
		"Slots": views,
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.renderError(w, "viewing slot", err)
		return
	}
	v, err := s.orchestrator.View(r.Context(), id)
	if err != nil {
		s.renderError(w, "viewing slot", err)
		return
	}
	s.render(w, http.StatusOK, "view.html", map[string]any{
		"Title": "Slot " + strconv.Itoa(id) + ": " + v.Slot.Name,
		"View":  v,
	})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.renderError(w, "editing slot", err)
		return
	}
	form, err := s.orchestrator.Edit(r.Context(), id)
	if err != nil {
		s.renderError(w, "editing slot", err)
		return
	}
	s.render(w, http.StatusOK, "edit.html", map[string]any{
		"Title": "Edit slot " + strconv.Itoa(id),
		"Form":  form,
	})
}

// parseSaveForm reads the edit form. A missing prRadios means no new build.
func parseSaveForm(r *http.Request) (slots.Config, int, error) {
	if err := r.ParseForm(); err != nil {
		return slots.Config{}, 0, fmt.Errorf("%w: %v", errBadForm, err)
	}
	cfg := slots.Config{
		Name:        r.PostForm.Get("name"),
		Description: r.PostForm.Get("description"),
		Directory:   r.PostForm.Get("directory"),
		URL:         r.PostForm.Get("url"),
	}
	pr := slots.NoNewBuild
	if raw := strings.TrimSpace(r.PostForm.Get("prRadios")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return slots.Config{}, 0, fmt.Errorf("%w: prRadios must be a pull request number, got %q", errBadForm, raw)
		}
		pr = n
	}
	return cfg, pr, nil
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.renderError(w, "saving slot", err)
		return
	}
	cfg, pr, err := parseSaveForm(r)
	if err != nil {
		s.renderError(w, "saving slot", err)
		return
	}
	res, err := s.orchestrator.Save(r.Context(), id, cfg, pr)
	if err != nil {
		s.renderError(w, "saving slot", err)
		return
	}
	s.render(w, http.StatusOK, "output.html", map[string]any{
		"Title":  "Saved slot " + strconv.Itoa(id),
		"SlotID": id,
		"Output": res.Output,
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.handleControl(w, r, "Started", s.orchestrator.Start)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.handleControl(w, r, "Stopped", s.orchestrator.Stop)
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request, verb string,
	fn func(ctx context.Context, id int) (string, error)) {
	id, err := slotID(r)
	if err != nil {
		s.renderError(w, strings.ToLower(verb)+" slot", err)
		return
	}
	out, err := fn(r.Context(), id)
	if err != nil {
		s.renderError(w, strings.ToLower(verb)+" slot", err)
		return
	}
	s.render(w, http.StatusOK, "output.html", map[string]any{
		"Title":  verb + " slot " + strconv.Itoa(id),
		"SlotID": id,
		"Output": out,
	})
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.renderError(w, "reading slot log", err)
		return
	}
	out, err := s.orchestrator.Logs(r.Context(), id, 0)
	if err != nil {
		s.renderError(w, "reading slot log", err)
		return
	}
	s.render(w, http.StatusOK, "log.html", map[string]any{
		"Title":  "Log for slot " + strconv.Itoa(id),
		"SlotID": id,
		"Output": out,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := slotID(r)
	if err != nil {
		s.renderError(w, "listing slot history", err)
		return
	}
	entries, err := s.orchestrator.History(r.Context(), id)
	if err != nil {
		s.renderError(w, "listing slot history", err)
		return
	}
	s.render(w, http.StatusOK, "history.html", map[string]any{
		"Title":   "History for slot " + strconv.Itoa(id),
		"SlotID":  id,
		"Entries": entries,
	})
}
