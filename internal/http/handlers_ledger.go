package http

import (
	"net/http"

	"tabungan/internal/core"
	"tabungan/internal/i18n"
	"tabungan/internal/services"
)

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	entries, err := s.svc.Ledger.Entries(r.Context(), userID, r.URL.Query().Get("type"))
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	if entries == nil {
		entries = []core.MoneyEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	var in services.EntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	m, err := s.svc.Ledger.AddEntry(r.Context(), userID, in)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	var in services.EntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	m, err := s.svc.Ledger.UpdateEntry(r.Context(), userID, r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleDeleteEntry answers with the mutation, since removing an expense can
// push a balance goal over its target.
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	m, err := s.svc.Ledger.DeleteEntry(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	goals, err := s.svc.Ledger.Goals(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	if goals == nil {
		goals = []core.Goal{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	var in services.GoalInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	m, err := s.svc.Ledger.AddGoal(r.Context(), userID, in)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	var in services.GoalInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	m, err := s.svc.Ledger.UpdateGoal(r.Context(), userID, r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	m, err := s.svc.Ledger.DeleteGoal(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleHighlight hands out the pending goal highlight once. The goals
// screen calls it when it opens.
func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"highlight": s.svc.Ledger.TakeHighlight(userID)})
}
