package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"fragportal/internal/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Store persists portal data. Lookups of a missing id return an error
// wrapping ErrNotFound.
type Store interface {
	ListUsers() ([]model.User, error)
	GetUser(id string) (model.User, error)
	GetUserByUsername(username string) (model.User, error)
	CreateUser(user model.User) (model.User, error)

	ListNews() ([]model.News, error)
	GetNews(id string) (model.News, error)
	CreateNews(news model.News) (model.News, error)
	UpdateNews(news model.News) error
	DeleteNews(id string) error

	ListTeams() ([]model.Team, error)
	GetTeam(id string) (model.Team, error)
	CreateTeam(team model.Team) (model.Team, error)
	UpdateTeam(team model.Team) error
	DeleteTeam(id string) error

	ListPlayers() ([]model.Player, error)
	GetPlayer(id string) (model.Player, error)
	CreatePlayer(player model.Player) (model.Player, error)
	UpdatePlayer(player model.Player) error
	DeletePlayer(id string) error

	ListMatches(filter MatchFilter) ([]model.Match, error)
	GetMatch(id string) (model.Match, error)
	CreateMatch(match model.Match) (model.Match, error)
	UpdateMatch(match model.Match) error
	DeleteMatch(id string) error

	ListTournaments() ([]model.Tournament, error)
	GetTournament(id string) (model.Tournament, error)
	CreateTournament(tournament model.Tournament) (model.Tournament, error)
	UpdateTournament(tournament model.Tournament) error
	DeleteTournament(id string) error

	Close() error
}

// MatchFilter narrows ListMatches. Empty fields match everything.
type MatchFilter struct {
	TeamID       string
	TournamentID string
	Status       model.MatchStatus
}

func (f MatchFilter) Accepts(m model.Match) bool {
	if f.TeamID != "" && !m.HasTeam(f.TeamID) {
		return false
	}
	if f.TournamentID != "" && m.TournamentID != f.TournamentID {
		return false
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	return true
}

func sortUsers(users []model.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
}

func sortNews(news []model.News) {
	sort.Slice(news, func(i, j int) bool { return news[i].CreatedAt.After(news[j].CreatedAt) })
}

func sortTeams(teams []model.Team) {
	sort.Slice(teams, func(i, j int) bool { return strings.ToLower(teams[i].Name) < strings.ToLower(teams[j].Name) })
}

func sortPlayers(players []model.Player) {
	sort.Slice(players, func(i, j int) bool {
		return strings.ToLower(players[i].Nickname) < strings.ToLower(players[j].Nickname)
	})
}

func sortMatches(matches []model.Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Date.Equal(matches[j].Date) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].Date.After(matches[j].Date)
	})
}

func sortTournaments(tournaments []model.Tournament) {
	sort.Slice(tournaments, func(i, j int) bool { return tournaments[i].StartDate.After(tournaments[j].StartDate) })
}
