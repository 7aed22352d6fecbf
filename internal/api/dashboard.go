package api

import (
	"encoding/json"
	"net/http"
	"regexp"

	"metric-diary/internal/analytics"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func requireDate(w http.ResponseWriter, raw string) (string, bool) {
	if !dateRe.MatchString(raw) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return "", false
	}
	return raw, true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	date, ok := requireDate(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}
	d, err := s.engine.BuildDashboard(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, d)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Parameter string `json:"parameter"`
		Value     *int   `json:"value"`
		Date      string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Parameter == "" {
		writeError(w, http.StatusBadRequest, "parameter is required")
		return
	}
	date, ok := requireDate(w, req.Date)
	if !ok {
		return
	}
	if req.Value != nil && (*req.Value < 0 || *req.Value > analytics.RatingMax) {
		writeError(w, http.StatusBadRequest, "value out of range")
		return
	}

	res, err := s.engine.Select(req.Parameter, req.Value, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleApplyDefaults(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	date, ok := requireDate(w, req.Date)
	if !ok {
		return
	}
	n, err := s.engine.ApplyDefaults(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]interface{}{"date": date, "filled": n})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.db.LoadSettings())
}

func (s *Server) handleSetSettings(w http.ResponseWriter, r *http.Request) {
	var settings analytics.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if settings.Sort.Key != analytics.SortNone && !analytics.ValidSortKey(string(settings.Sort.Key)) {
		writeError(w, http.StatusBadRequest, "unknown sort key")
		return
	}
	if err := s.db.SaveSettings(settings); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, settings)
}

func (s *Server) handleGetSort(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.db.LoadSettings().Sort)
}

func (s *Server) handleActivateSort(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !analytics.ValidSortKey(key) {
		writeError(w, http.StatusBadRequest, "unknown sort key")
		return
	}
	writeJSON(w, s.engine.ActivateSort(analytics.SortKey(key)))
}

func (s *Server) handleRetrain(w http.ResponseWriter, r *http.Request) {
	res, err := s.client.RetrainModels()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, res)
}
