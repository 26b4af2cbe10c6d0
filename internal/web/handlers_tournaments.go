package web

import (
	"net/http"
	"time"

	"fragportal/internal/export"
	"fragportal/internal/live"
	"fragportal/internal/model"
	"fragportal/internal/stats"
	"fragportal/internal/store"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleTournamentCreate(w http.ResponseWriter, r *http.Request) {
	var t model.Tournament
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateTournament(&t, time.Now()); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	t.ID, t.CreatedAt = "", time.Time{}
	created, err := s.store.CreateTournament(t)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.publish(live.EventCreated, "tournament", created.ID, created)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTournamentUpdate(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetTournament(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	var t model.Tournament
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateTournament(&t, time.Now()); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	t.ID, t.CreatedAt = existing.ID, existing.CreatedAt
	if err := s.store.UpdateTournament(t); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.publish(live.EventUpdated, "tournament", t.ID, t)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTournamentDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteTournament(id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.publish(live.EventDeleted, "tournament", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

type exportResult struct {
	Players int `json:"players"`
}

// handleTournamentExport writes the tournament leaderboard, best K/D first,
// to the configured spreadsheet tab.
func (s *Server) handleTournamentExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "sheets export is not configured")
		return
	}
	t, err := s.store.GetTournament(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	matches, err := s.store.ListMatches(store.MatchFilter{TournamentID: t.ID})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	careers := stats.SortCareers(stats.Leaderboard(matches), stats.SortKD, stats.Descending)
	if err := s.exporter.Upload(r.Context(), export.LeaderboardRows(careers)); err != nil {
		s.log.WithError(err).WithField("tournament", t.ID).Error("sheets export failed")
		writeError(w, http.StatusBadGateway, "sheets export failed")
		return
	}
	s.log.WithField("tournament", t.ID).WithField("players", len(careers)).Info("leaderboard exported")
	writeJSON(w, http.StatusOK, exportResult{Players: len(careers)})
}
