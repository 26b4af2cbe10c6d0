package model

import (
	"strings"
	"time"
)

type UserRole string
type MatchStatus string
type MatchFormat string
type TournamentStatus string
type VetoAction string

const (
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"

	MatchUpcoming MatchStatus = "upcoming"
	MatchLive     MatchStatus = "live"
	MatchFinished MatchStatus = "finished"

	FormatBO1 MatchFormat = "bo1"
	FormatBO3 MatchFormat = "bo3"
	FormatBO5 MatchFormat = "bo5"

	TournamentUpcoming TournamentStatus = "upcoming"
	TournamentOngoing  TournamentStatus = "ongoing"
	TournamentFinished TournamentStatus = "finished"

	VetoPick    VetoAction = "pick"
	VetoBan     VetoAction = "ban"
	VetoDecider VetoAction = "decider"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

type News struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	LogoURL   string    `json:"logo_url,omitempty"`
	PlayerIDs []string  `json:"players"`
	CreatedAt time.Time `json:"created_at"`

	// Filled from the roster on read, never stored.
	AverageFaceitElo float64 `json:"average_faceit_elo"`
}

type Player struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Country   string    `json:"country"`
	TeamID    string    `json:"team_id,omitempty"`
	FaceitElo int       `json:"faceit_elo"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (p Player) FullName() string {
	first := strings.TrimSpace(p.FirstName)
	last := strings.TrimSpace(p.LastName)
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return first + " " + last
}

// MapResult is one completed map of a series. Totals are expected to equal
// first half + second half + overtime for each side.
type MapResult struct {
	Map                       string `json:"map"`
	FirstTeam                 string `json:"firstTeam"`
	SecondTeam                string `json:"secondTeam"`
	FirstHalfScoreFirstTeam   int    `json:"first_half_score_first_team"`
	SecondHalfScoreFirstTeam  int    `json:"second_half_score_first_team"`
	OvertimeScoreFirstTeam    int    `json:"overtime_score_first_team"`
	TotalScoreFirstTeam       int    `json:"total_score_first_team"`
	FirstHalfScoreSecondTeam  int    `json:"first_half_score_second_team"`
	SecondHalfScoreSecondTeam int    `json:"second_half_score_second_team"`
	OvertimeScoreSecondTeam   int    `json:"overtime_score_second_team"`
	TotalScoreSecondTeam      int    `json:"total_score_second_team"`
}

// PlayerRoundStat is one player's line on one map of a series.
// RoundOfMatch is the 1-based map index, Result is 1 for a win and 0 for a loss.
type PlayerRoundStat struct {
	Nickname     string  `json:"nickname"`
	RoundOfMatch int     `json:"round_of_match"`
	Result       int     `json:"Result"`
	Kills        int     `json:"Kills"`
	Assists      int     `json:"Assists"`
	Deaths       int     `json:"Deaths"`
	ADR          float64 `json:"ADR"`
	Headshots    float64 `json:"Headshots %"`
}

type Veto struct {
	Team   string     `json:"team"`
	Action VetoAction `json:"action"`
	Map    string     `json:"map"`
}

type Match struct {
	ID           string            `json:"id"`
	Teams        [2]string         `json:"teams"`
	TournamentID string            `json:"tournament_id,omitempty"`
	Format       MatchFormat       `json:"format"`
	Status       MatchStatus       `json:"status"`
	Date         time.Time         `json:"date"`
	Veto         []Veto            `json:"veto"`
	Result       []MapResult       `json:"result"`
	Stats        []PlayerRoundStat `json:"stats"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (m Match) HasTeam(teamID string) bool {
	return teamID != "" && (m.Teams[0] == teamID || m.Teams[1] == teamID)
}

type TournamentResult struct {
	Place int    `json:"place"`
	Team  string `json:"team"`
	Prize string `json:"prize"`
}

type Tournament struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Location  string             `json:"location"`
	PrizePool string             `json:"prize_pool"`
	TeamIDs   []string           `json:"teams"`
	Results   []TournamentResult `json:"results"`
	StartDate time.Time          `json:"start_date"`
	EndDate   time.Time          `json:"end_date"`
	Status    TournamentStatus   `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

func TournamentStatusForDates(start, end, now time.Time) TournamentStatus {
	if !start.IsZero() && now.Before(start) {
		return TournamentUpcoming
	}
	if !end.IsZero() && now.After(end) {
		return TournamentFinished
	}
	return TournamentOngoing
}
