package http

import (
	"net/http"
	"strings"
	"time"

	"tabungan/internal/calc"
	"tabungan/internal/core"
	"tabungan/internal/i18n"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	rng, err := core.ParseSummaryRange(r.URL.Query().Get("range"))
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	rep, err := s.svc.Reports.Summary(r.Context(), userID, rng, time.Time{})
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type preference struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	key := r.PathValue("key")
	v, err := s.svc.Prefs.Get(r.Context(), userID, key)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, preference{Key: key, Value: v})
}

func (s *Server) handleSetPreference(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	key := r.PathValue("key")
	var in preference
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	v, err := s.svc.Prefs.Set(r.Context(), userID, key, in.Value)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, preference{Key: key, Value: v})
}

type calculatorRequest struct {
	Display    string `json:"display"`
	Key        string `json:"key"`
	Expression string `json:"expression"`
}

type calculatorResponse struct {
	Display string   `json:"display"`
	Value   *float64 `json:"value,omitempty"`
}

// handleCalculator either applies one keypad key to the display or, when an
// expression is given, evaluates it.
func (s *Server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	var in calculatorRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}

	if strings.TrimSpace(in.Expression) != "" {
		v, err := calc.Evaluate(in.Expression)
		if err != nil {
			s.writeError(w, r, err, i18n.ErrServer)
			return
		}
		writeJSON(w, http.StatusOK, calculatorResponse{Display: calc.Format(v), Value: &v})
		return
	}
	writeJSON(w, http.StatusOK, calculatorResponse{Display: calc.Press(in.Display, in.Key)})
}
