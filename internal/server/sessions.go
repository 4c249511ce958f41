package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
)

type sessionResponse struct {
	SessionID string                     `json:"session_id"`
	Prompts   []prompts.ExtractionPrompt `json:"prompts"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	seed := s.deps.Seed
	if len(seed) == 0 {
		seed = prompts.Defaults()
	}
	sess, err := s.deps.Sessions.Create(r.Context(), seed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: sess.ID.String(), Prompts: seed})
}

func (s *Server) listPrompts(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "sessionID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ps, err := s.deps.Sessions.LoadPrompts(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id.String(), Prompts: ps})
}

func (s *Server) updatePrompt(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "sessionID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// chi routes on RawPath when the request carries one, leaving the param escaped
	title := chi.URLParam(r, "title")
	if r.URL.RawPath != "" {
		if title, err = url.PathUnescape(title); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: title: %v", common.ErrInvalidInput, err))
			return
		}
	}

	var patch prompts.Patch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: body: %v", common.ErrInvalidInput, err))
		return
	}

	mu := s.sessionLock(id)
	mu.Lock()
	defer mu.Unlock()

	list, err := s.deps.Sessions.LoadPrompts(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	reg := prompts.NewRegistry(list...)
	updated, err := reg.Update(title, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Sessions.SavePrompts(r.Context(), id, reg.List()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session.prompt.updated", "session_id", id, "title", title, "enabled", updated.Enabled)
	writeJSON(w, http.StatusOK, updated)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a UUID", common.ErrInvalidInput, name)
	}
	return id, nil
}
