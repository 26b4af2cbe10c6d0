package web

import (
	"errors"
	"net/http"
	"strings"

	"fragportal/internal/model"
	"fragportal/internal/stats"
	"fragportal/internal/store"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleNewsList(w http.ResponseWriter, r *http.Request) {
	news, err := s.store.ListNews()
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writePage(s, w, r, news)
}

func (s *Server) handleNewsShow(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.GetNews(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func parseMatchStatus(raw string) (model.MatchStatus, bool) {
	switch status := model.MatchStatus(strings.ToLower(strings.TrimSpace(raw))); status {
	case "", model.MatchUpcoming, model.MatchLive, model.MatchFinished:
		return status, true
	}
	return "", false
}

func (s *Server) handleMatchesList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, ok := parseMatchStatus(q.Get("status"))
	if !ok {
		writeError(w, http.StatusBadRequest, "status must be upcoming, live or finished")
		return
	}
	matches, err := s.store.ListMatches(store.MatchFilter{
		TeamID:       q.Get("team"),
		TournamentID: q.Get("tournament"),
		Status:       status,
	})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writePage(s, w, r, matches)
}

func (s *Server) handleMatchShow(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMatch(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	round, err := intParam(r, "round", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sortState, err := sortParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats.BuildMatchView(m, stats.MatchViewOptions{Round: round, Sort: sortState}))
}

// roster resolves a team's players. Ids that no longer resolve are skipped.
func (s *Server) roster(team model.Team) ([]model.Player, error) {
	players := make([]model.Player, 0, len(team.PlayerIDs))
	for _, id := range team.PlayerIDs {
		p, err := s.store.GetPlayer(id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *Server) handleTeamsList(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.ListPlayers()
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	players := map[string]model.Player{}
	for _, p := range all {
		players[p.ID] = p
	}
	teams, err := s.store.ListTeams()
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	for i, t := range teams {
		roster := make([]model.Player, 0, len(t.PlayerIDs))
		for _, id := range t.PlayerIDs {
			if p, ok := players[id]; ok {
				roster = append(roster, p)
			}
		}
		teams[i].AverageFaceitElo = stats.AverageElo(roster)
	}
	writePage(s, w, r, teams)
}

func (s *Server) handleTeamShow(w http.ResponseWriter, r *http.Request) {
	team, err := s.store.GetTeam(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	roster, err := s.roster(team)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	matches, err := s.store.ListMatches(store.MatchFilter{TeamID: team.ID})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.BuildTeamView(team, roster, matches))
}

func (s *Server) handlePlayersList(w http.ResponseWriter, r *http.Request) {
	players, err := s.store.ListPlayers()
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if teamID := r.URL.Query().Get("team"); teamID != "" {
		filtered := players[:0]
		for _, p := range players {
			if p.TeamID == teamID {
				filtered = append(filtered, p)
			}
		}
		players = filtered
	}
	writePage(s, w, r, players)
}

func (s *Server) handlePlayerShow(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPlayer(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	matches, err := s.store.ListMatches(store.MatchFilter{})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.BuildPlayerView(p, matches))
}

// handleLeaderboard ranks every player with stat lines. Without a sort
// parameter it ranks by K/D, best first.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	sortState, err := sortParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if sortState.Key == "" {
		sortState.Key = stats.SortKD
		if r.URL.Query().Get("dir") == "" {
			sortState.Direction = stats.Descending
		}
	}
	q := r.URL.Query()
	filter := store.MatchFilter{TournamentID: q.Get("tournament"), TeamID: q.Get("team")}
	matches, err := s.store.ListMatches(filter)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	careers := stats.SortCareers(stats.Leaderboard(matches), sortState.Key, sortState.Direction)
	writePage(s, w, r, careers)
}

func (s *Server) handleTournamentsList(w http.ResponseWriter, r *http.Request) {
	tournaments, err := s.store.ListTournaments()
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writePage(s, w, r, tournaments)
}

func (s *Server) handleTournamentShow(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, stats.BuildTournamentView(t, matches))
}
