package web

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fragportal/internal/model"
	"fragportal/internal/store"
)

// Validators normalise the input in place and report the first problem as
// an inputError. Any other error is a store failure.

type inputError struct{ msg string }

func (e inputError) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return inputError{msg: fmt.Sprintf(format, args...)}
}

// unknown turns a lookup miss into an inputError and passes store failures on.
func unknown(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return invalid(format, args...)
	}
	return err
}

func validateNews(n *model.News) error {
	n.Title = strings.TrimSpace(n.Title)
	n.Body = strings.TrimSpace(n.Body)
	if n.Title == "" {
		return invalid("title is required")
	}
	return nil
}

func (s *Server) validateTeam(t *model.Team) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return invalid("name is required")
	}
	seen := map[string]bool{}
	for _, id := range t.PlayerIDs {
		if seen[id] {
			return invalid("player %s listed twice", id)
		}
		seen[id] = true
		if _, err := s.store.GetPlayer(id); err != nil {
			return unknown(err, "unknown player %s", id)
		}
	}
	if t.PlayerIDs == nil {
		t.PlayerIDs = []string{}
	}
	return nil
}

func (s *Server) validatePlayer(p *model.Player) error {
	p.Nickname = strings.TrimSpace(p.Nickname)
	if p.Nickname == "" {
		return invalid("nickname is required")
	}
	if p.FaceitElo < 0 {
		return invalid("faceit_elo cannot be negative")
	}
	if p.TeamID != "" {
		if _, err := s.store.GetTeam(p.TeamID); err != nil {
			return unknown(err, "unknown team %s", p.TeamID)
		}
	}
	return nil
}

func maxMaps(f model.MatchFormat) int {
	switch f {
	case model.FormatBO1:
		return 1
	case model.FormatBO5:
		return 5
	default:
		return 3
	}
}

func (s *Server) validateMatch(m *model.Match) error {
	m.Teams[0], m.Teams[1] = strings.TrimSpace(m.Teams[0]), strings.TrimSpace(m.Teams[1])
	switch {
	case m.Teams[0] == "" || m.Teams[1] == "":
		return invalid("a match needs two teams")
	case m.Teams[0] == m.Teams[1]:
		return invalid("a match needs two distinct teams")
	}
	for _, id := range m.Teams {
		if _, err := s.store.GetTeam(id); err != nil {
			return unknown(err, "unknown team %s", id)
		}
	}
	if m.TournamentID != "" {
		if _, err := s.store.GetTournament(m.TournamentID); err != nil {
			return unknown(err, "unknown tournament %s", m.TournamentID)
		}
	}

	if m.Format == "" {
		m.Format = model.FormatBO3
	}
	if m.Format != model.FormatBO1 && m.Format != model.FormatBO3 && m.Format != model.FormatBO5 {
		return invalid("format must be bo1, bo3 or bo5")
	}
	if m.Status == "" {
		m.Status = model.MatchUpcoming
	}
	if _, ok := parseMatchStatus(string(m.Status)); !ok {
		return invalid("status must be upcoming, live or finished")
	}
	if m.Date.IsZero() {
		return invalid("date is required")
	}

	for _, v := range m.Veto {
		if v.Action != model.VetoPick && v.Action != model.VetoBan && v.Action != model.VetoDecider {
			return invalid("unknown veto action %q", v.Action)
		}
	}
	if len(m.Result) > maxMaps(m.Format) {
		return invalid("%s has at most %d maps", m.Format, maxMaps(m.Format))
	}
	for i := range m.Result {
		fillMapTotals(&m.Result[i])
	}
	for _, st := range m.Stats {
		if strings.TrimSpace(st.Nickname) == "" {
			return invalid("stat line without nickname")
		}
		if st.RoundOfMatch < 1 || st.RoundOfMatch > maxMaps(m.Format) {
			return invalid("stat line for %s has round_of_match %d", st.Nickname, st.RoundOfMatch)
		}
		if st.Result != 0 && st.Result != 1 {
			return invalid("stat line for %s has Result %d, want 0 or 1", st.Nickname, st.Result)
		}
		if st.Kills < 0 || st.Assists < 0 || st.Deaths < 0 {
			return invalid("stat line for %s has negative counts", st.Nickname)
		}
	}
	if m.Veto == nil {
		m.Veto = []model.Veto{}
	}
	if m.Result == nil {
		m.Result = []model.MapResult{}
	}
	if m.Stats == nil {
		m.Stats = []model.PlayerRoundStat{}
	}
	return nil
}

// fillMapTotals derives totals from the halves when only halves were sent.
func fillMapTotals(r *model.MapResult) {
	if r.TotalScoreFirstTeam == 0 {
		r.TotalScoreFirstTeam = r.FirstHalfScoreFirstTeam + r.SecondHalfScoreFirstTeam + r.OvertimeScoreFirstTeam
	}
	if r.TotalScoreSecondTeam == 0 {
		r.TotalScoreSecondTeam = r.FirstHalfScoreSecondTeam + r.SecondHalfScoreSecondTeam + r.OvertimeScoreSecondTeam
	}
}

func validateTournament(t *model.Tournament, now time.Time) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return invalid("name is required")
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
		return invalid("end_date must not be before start_date")
	}
	for _, res := range t.Results {
		if res.Place < 1 {
			return invalid("result for %s has place %d", res.Team, res.Place)
		}
	}
	switch t.Status {
	case "":
		t.Status = model.TournamentStatusForDates(t.StartDate, t.EndDate, now)
	case model.TournamentUpcoming, model.TournamentOngoing, model.TournamentFinished:
	default:
		return invalid("status must be upcoming, ongoing or finished")
	}
	if t.TeamIDs == nil {
		t.TeamIDs = []string{}
	}
	if t.Results == nil {
		t.Results = []model.TournamentResult{}
	}
	return nil
}
