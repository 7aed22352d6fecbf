package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (s *Server) handleListParameters(w http.ResponseWriter, r *http.Request) {
	var (
		params interface{}
		err    error
	)
	if r.URL.Query().Get("all") == "true" {
		params, err = s.db.AllParameters()
	} else {
		params, err = s.db.ActiveParameters()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, params)
}

func (s *Server) handleCreateParameter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	p, err := s.db.CreateParameter(req.Title)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, p)
}

func (s *Server) handleRenameParameter(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	p, err := s.db.RenameParameter(key, req.Title)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, p)
}

func (s *Server) handleArchiveParameter(w http.ResponseWriter, r *http.Request) {
	s.setParameterActive(w, r, false)
}

func (s *Server) handleRestoreParameter(w http.ResponseWriter, r *http.Request) {
	s.setParameterActive(w, r, true)
}

func (s *Server) setParameterActive(w http.ResponseWriter, r *http.Request, active bool) {
	key := r.PathValue("key")
	if err := s.db.SetParameterActive(key, active); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, map[string]interface{}{"key": key, "active": active})
}

func (s *Server) handleGetDescription(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	desc, err := s.db.Description(key)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, map[string]string{"key": key, "description": desc})
}

func (s *Server) handleSetDescription(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.db.SetDescription(key, req.Description); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, map[string]string{"key": key, "description": req.Description})
}

// handleParameterHistory serves one parameter's cached series for an as-of
// date: the repaired, ascending form, gaps as nulls.
func (s *Server) handleParameterHistory(w http.ResponseWriter, r *http.Request) {
	param := r.URL.Query().Get("param")
	date := r.URL.Query().Get("date")
	if param == "" || date == "" {
		writeError(w, http.StatusBadRequest, "param and date are required")
		return
	}

	points, ok := s.cache.Fetch(param, date)
	writeJSON(w, map[string]interface{}{
		"parameter": param,
		"date":      date,
		"available": ok && len(points) > 0,
		"series":    points,
	})
}
