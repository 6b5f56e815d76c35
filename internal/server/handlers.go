package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/session"
	"go.uber.org/zap"
)

type askRequest struct {
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

type contextChunk struct {
	Page    int    `json:"page"`
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
}

type askResponse struct {
	Answer  string         `json:"answer"`
	Context []contextChunk `json:"context"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": sess.ID(), "state": sess.State().String()})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(id); err != nil {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.logger.Debug("session deleted", zap.String("session", id))
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	body := r.Body
	if s.config.MaxUploadBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	}
	content, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "document exceeds upload limit")
			return
		}
		s.respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(content) == 0 {
		s.respondError(w, http.StatusBadRequest, "request body must contain a PDF document")
		return
	}
	res, err := sess.Ingest(r.Context(), content)
	if err != nil {
		s.respondFailure(w, "ingestion failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"state":       sess.State().String(),
		"document_id": res.DocumentID,
		"pages":       res.Pages,
		"empty_pages": res.EmptyPages,
		"chunks":      res.Chunks,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("ask request", zap.String("session", sess.ID()), zap.Int("question_len", len(req.Question)), zap.Int("k", req.K))
	res, err := sess.Ask(r.Context(), req.Question, req.K)
	if err != nil {
		s.respondFailure(w, "ask failed", err)
		return
	}
	out := askResponse{Answer: res.Text, Context: make([]contextChunk, len(res.UsedContext))}
	for i, c := range res.UsedContext {
		out.Context[i] = contextChunk{Page: c.SourcePageIndex, Ordinal: c.Ordinal, Text: c.Text}
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "sessions": s.sessions.Count()})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var (
		le *models.LoadError
		ce *models.ChunkError
		ia *models.InvalidArgumentError
		pe *models.ProviderError
		se *models.SynthesisError
	)
	switch {
	case errors.Is(err, models.ErrNotReady), errors.Is(err, models.ErrIngestionInProgress):
		return http.StatusConflict
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	case errors.As(err, &le), errors.As(err, &ce):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ia):
		return http.StatusBadRequest
	case models.IsRetryable(err):
		return http.StatusServiceUnavailable
	case errors.As(err, &pe), errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondFailure(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	body := map[string]interface{}{"error": err.Error()}
	if status == http.StatusServiceUnavailable {
		body["retryable"] = true
	}
	s.respondJSON(w, status, body)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
