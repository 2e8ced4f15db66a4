package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/raysh454/dccdev/internal/app"
	"github.com/raysh454/dccdev/internal/builds"
	"github.com/raysh454/dccdev/internal/logging"
	"github.com/raysh454/dccdev/internal/metrics"
	"github.com/raysh454/dccdev/internal/slots"
)

//go:embed templates/*.html
var templateFS embed.FS

// errBadSlotID is returned for ids that are not integers.
var errBadSlotID = errors.New("slot id must be an integer")

// Server is the HTML dashboard, the JSON API and the log WebSocket.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	metrics      *metrics.Metrics
	router       chi.Router
	templates    *template.Template
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer builds the router around orch. m may be nil to disable /metrics.
func NewServer(cfg Config, orch *app.Orchestrator, m *metrics.Metrics) (*Server, error) {
	if orch == nil {
		return nil, errors.New("orchestrator is required")
	}
	if cfg.LogFollowInterval <= 0 {
		cfg.LogFollowInterval = DefaultConfig().LogFollowInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	tmplFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	templates, err := template.New("base").ParseFS(tmplFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		metrics:      m,
		router:       chi.NewRouter(),
		templates:    templates,
		logger:       logger.With(logging.Field{Key: "component", Value: "server"}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict to the dashboard's own origin once it sits behind a fixed hostname
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// HTML dashboard
	r.Get("/", s.handleHome)
	r.Get("/view/{id}", s.handleView)
	r.Get("/edit/{id}", s.handleEdit)
	r.Post("/save/{id}", s.handleSave)
	r.Get("/start/{id}", s.handleStart)
	r.Get("/stop/{id}", s.handleStop)
	r.Get("/log/{id}", s.handleLog)
	r.Get("/history/{id}", s.handleHistory)
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Get("/slots", s.handleAPIListSlots)
		r.Get("/slots/{id}", s.handleAPIGetSlot)
		r.Put("/slots/{id}", s.handleAPISaveSlot)
		r.Post("/slots/{id}/start", s.handleAPIStart)
		r.Post("/slots/{id}/stop", s.handleAPIStop)
		r.Get("/slots/{id}/status", s.handleAPIStatus)
		r.Get("/slots/{id}/log", s.handleAPILog)
		r.Get("/slots/{id}/history", s.handleAPIHistory)
		r.Get("/prs", s.handleAPIListPRs)
	})

	// WebSocket log follow
	r.Get("/ws/slots/{id}/log", s.handleLogWS)

	s.mountSwagger(r)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", reqID)

	fields := []logging.Field{
		{Key: "request_id", Value: reqID},
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // installs and the log stream can run long
	}
}

// --- helpers ---

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadSlotID), errors.Is(err, errBadForm):
		return http.StatusBadRequest
	case errors.Is(err, slots.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, builds.ErrBuildStatusNotFound),
		errors.Is(err, builds.ErrMalformedBuildLink),
		errors.Is(err, builds.ErrAPIStatus):
		return http.StatusBadGateway
	default:
		// slots.ErrStorageUnavailable, process.ErrSpawn and anything unexpected.
		return http.StatusInternalServerError
	}
}

func slotID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadSlotID, raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// fail logs err and writes it as a JSON error.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	s.logger.Warn(op, logging.Field{Key: "status", Value: status}, logging.Err(err))
	writeError(w, status, err.Error())
}
