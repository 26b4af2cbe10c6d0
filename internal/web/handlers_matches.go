package web

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"fragportal/internal/demo"
	"fragportal/internal/live"
	"fragportal/internal/model"
	"fragportal/internal/stats"
	"fragportal/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func (s *Server) handleMatchCreate(w http.ResponseWriter, r *http.Request) {
	var m model.Match
	if err := decodeJSON(w, r, &m); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validateMatch(&m); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	m.ID, m.CreatedAt = "", time.Time{}
	created, err := s.store.CreateMatch(m)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.publish(live.EventCreated, "match", created.ID, created)
	if created.Status == model.MatchFinished {
		s.announceMatch(r, created)
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleMatchUpdate(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetMatch(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	var m model.Match
	if err := decodeJSON(w, r, &m); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validateMatch(&m); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	m.ID, m.CreatedAt = existing.ID, existing.CreatedAt
	if err := s.store.UpdateMatch(m); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.publish(live.EventUpdated, "match", m.ID, m)
	if m.Status == model.MatchFinished && existing.Status != model.MatchFinished {
		s.announceMatch(r, m)
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMatchDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteMatch(id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.publish(live.EventDeleted, "match", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) announceMatch(r *http.Request, m model.Match) {
	names := s.teamNames(m)
	s.notify(r, "match", func(ctx context.Context) error {
		return s.announcer.MatchFinished(ctx, m, names)
	})
}

// handleMatchDemo imports one map from an uploaded demo. The form carries
// the file as "demo", and optionally "round" (defaults to the next map) and
// "map" (defaults to the veto pick for that round).
func (s *Server) handleMatchDemo(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMatch(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDemoSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("demo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "demo file is required")
		return
	}
	defer file.Close()

	round := len(m.Result) + 1
	if raw := r.FormValue("round"); raw != "" {
		if round, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "round must be a number")
			return
		}
	}
	if round < 1 || round > len(m.Result)+1 || round > maxMaps(m.Format) {
		writeError(w, http.StatusBadRequest, "round is out of range for this match")
		return
	}
	mapName := r.FormValue("map")
	if mapName == "" {
		mapName = pickedMap(m.Veto, round)
	}

	var firstRoster []string
	team, err := s.store.GetTeam(m.Teams[0])
	if err == nil {
		var players []model.Player
		players, err = s.roster(team)
		for _, p := range players {
			firstRoster = append(firstRoster, p.Nickname)
		}
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.writeStoreError(w, r, err)
		return
	}

	res, err := demo.Parse(file, demo.Options{
		HalfLength:  s.opts.DemoHalfLength,
		Round:       round,
		Map:         mapName,
		FirstTeam:   m.Teams[0],
		SecondTeam:  m.Teams[1],
		FirstRoster: firstRoster,
	})
	if err != nil {
		s.log.WithError(err).WithField("match", m.ID).Warn("demo import failed")
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, demo.ErrNoRounds) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	applyMapImport(&m, round, res)
	if err := s.store.UpdateMatch(m); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.log.WithFields(logrus.Fields{"match": m.ID, "round": round, "rounds_played": res.Rounds}).Info("demo imported")
	s.publish(live.EventUpdated, "match", m.ID, m)
	writeJSON(w, http.StatusOK, stats.BuildMatchView(m, stats.MatchViewOptions{Round: round}))
}

// applyMapImport stores an imported map as map number round, replacing any
// earlier result and stat lines for it.
func applyMapImport(m *model.Match, round int, res demo.Result) {
	if round <= len(m.Result) {
		m.Result[round-1] = res.Map
	} else {
		m.Result = append(m.Result, res.Map)
	}
	m.Stats = slices.DeleteFunc(m.Stats, func(s model.PlayerRoundStat) bool { return s.RoundOfMatch == round })
	m.Stats = append(m.Stats, res.Stats...)
}

// pickedMap returns the map played as the given round: picks in veto order,
// then the decider.
func pickedMap(veto []model.Veto, round int) string {
	var played []string
	for _, v := range veto {
		if v.Action == model.VetoPick {
			played = append(played, v.Map)
		}
	}
	for _, v := range veto {
		if v.Action == model.VetoDecider {
			played = append(played, v.Map)
		}
	}
	if round < 1 || round > len(played) {
		return ""
	}
	return played[round-1]
}
