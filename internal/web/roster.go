package web

import (
	"errors"
	"slices"

	"fragportal/internal/model"
	"fragportal/internal/store"
)

// Team rosters and Player.TeamID are kept in step from both sides. Failures
// are logged; the primary write has already succeeded.

// syncRoster moves p from previousTeam's roster onto its current team's.
func (s *Server) syncRoster(p model.Player, previousTeam string) {
	if previousTeam != "" && previousTeam != p.TeamID {
		s.editRoster(previousTeam, func(ids []string) []string {
			return slices.DeleteFunc(ids, func(id string) bool { return id == p.ID })
		})
	}
	if p.TeamID != "" {
		s.editRoster(p.TeamID, func(ids []string) []string {
			if slices.Contains(ids, p.ID) {
				return ids
			}
			return append(ids, p.ID)
		})
	}
}

// claimPlayers points every listed player at t and drops players that left
// the roster.
func (s *Server) claimPlayers(t model.Team) {
	players, err := s.store.ListPlayers()
	if err != nil {
		s.log.WithError(err).WithField("team", t.ID).Warn("list players to claim")
		return
	}
	for _, p := range players {
		listed := slices.Contains(t.PlayerIDs, p.ID)
		switch {
		case listed && p.TeamID != t.ID:
			previous := p.TeamID
			p.TeamID = t.ID
			if err := s.store.UpdatePlayer(p); err != nil {
				s.log.WithError(err).WithField("player", p.ID).Warn("move player to team")
				continue
			}
			if previous != "" {
				s.editRoster(previous, func(ids []string) []string {
					return slices.DeleteFunc(ids, func(id string) bool { return id == p.ID })
				})
			}
		case !listed && p.TeamID == t.ID:
			p.TeamID = ""
			if err := s.store.UpdatePlayer(p); err != nil {
				s.log.WithError(err).WithField("player", p.ID).Warn("release player from team")
			}
		}
	}
}

func (s *Server) editRoster(teamID string, edit func([]string) []string) {
	team, err := s.store.GetTeam(teamID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.WithError(err).WithField("team", teamID).Warn("load roster")
		}
		return
	}
	before := len(team.PlayerIDs)
	team.PlayerIDs = edit(team.PlayerIDs)
	if len(team.PlayerIDs) == before {
		return
	}
	if err := s.store.UpdateTeam(team); err != nil {
		s.log.WithError(err).WithField("team", teamID).Warn("update roster")
	}
}
