// Package http exposes the engine to a transport layer over REST. The
// telephony integration posts utterances (pre-tagged when possible) and
// receives rendered prompts back.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/framelab/scenic"
	"github.com/framelab/scenic/internal/logging"
	"github.com/framelab/scenic/pkg/domain"
)

// Server wires the engine into a chi router.
type Server struct {
	engine *scenic.Engine
	tagger scenic.Tagger
	logger *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler builds the HTTP handler. The tagger is the fallback for
// requests carrying raw text without tokens.
func NewHandler(engine *scenic.Engine, tagger scenic.Tagger, opts ...Option) http.Handler {
	s := &Server{
		engine: engine,
		tagger: tagger,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.startSession)
		r.Get("/{sessionID}", s.getSession)
		r.Delete("/{sessionID}", s.deleteSession)
		r.Post("/{sessionID}/utterances", s.submitUtterance)
	})
	return r
}

type startRequest struct {
	Scenario  string `json:"scenario"`
	SessionID string `json:"session_id,omitempty"`
}

type utteranceRequest struct {
	Text   string         `json:"text,omitempty"`
	Tokens []domain.Token `json:"tokens,omitempty"`
}

type turnResponse struct {
	SessionID string                 `json:"session_id"`
	Prompts   []string               `json:"prompts"`
	Status    domain.ExecutionStatus `json:"status"`
	Retries   int                    `json:"retries,omitempty"`
}

type errorResponse struct {
	Error          string `json:"error"`
	RetryExhausted bool   `json:"retry_exhausted,omitempty"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Scenario == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("scenario is required"))
		return
	}

	turn, err := s.engine.Start(r.Context(), req.SessionID, req.Scenario)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExists) {
			s.writeError(w, http.StatusConflict, err)
			return
		}
		var scriptErr *domain.ScriptError
		if errors.As(err, &scriptErr) {
			s.writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeTurn(w, http.StatusCreated, turn)
}

func (s *Server) submitUtterance(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req utteranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	tokens := req.Tokens
	if len(tokens) == 0 {
		if req.Text == "" {
			s.writeError(w, http.StatusBadRequest, errors.New("text or tokens required"))
			return
		}
		tokens = s.tagger(req.Text)
	}

	turn, err := s.engine.Submit(r.Context(), sessionID, tokens)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			s.writeError(w, http.StatusNotFound, err)
		case errors.Is(err, domain.ErrSessionTerminal):
			s.writeError(w, http.StatusConflict, err)
		default:
			var exhausted *domain.RetryExhaustedError
			if errors.As(err, &exhausted) {
				writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
					Error:          err.Error(),
					RetryExhausted: true,
				})
				return
			}
			var scriptErr *domain.ScriptError
			if errors.As(err, &scriptErr) {
				s.writeError(w, http.StatusUnprocessableEntity, err)
				return
			}
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	s.writeTurn(w, http.StatusOK, turn)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	state, err := s.engine.State(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.engine.Teardown(r.Context(), sessionID); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeTurn(w http.ResponseWriter, code int, turn *scenic.Turn) {
	writeJSON(w, code, turnResponse{
		SessionID: turn.SessionID,
		Prompts:   turn.Prompts,
		Status:    turn.Status,
		Retries:   turn.Retries,
	})
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
