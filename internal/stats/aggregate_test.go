package stats_test

import (
	"math"
	"strings"
	"testing"

	"fragportal/internal/model"
	"fragportal/internal/stats"
)

func TestTeamRecord(t *testing.T) {
	won := sampleMatch()

	lost := sampleMatch()
	lost.ID = "m2"
	lost.Teams = [2]string{"g2", "faze"}
	lost.Result = []model.MapResult{{TotalScoreFirstTeam: 13, TotalScoreSecondTeam: 7}}

	drawn := sampleMatch()
	drawn.ID = "m3"
	drawn.Result = drawn.Result[:2]

	upcoming := sampleMatch()
	upcoming.ID = "m4"
	upcoming.Status = model.MatchUpcoming

	other := sampleMatch()
	other.ID = "m5"
	other.Teams = [2]string{"mouz", "spirit"}

	rec := stats.TeamRecord("faze", []model.Match{won, lost, drawn, upcoming, other})
	want := stats.Record{Played: 3, Wins: 1, Losses: 1, Draws: 1, MapsWon: 3, MapsLost: 3}
	if rec != want {
		t.Errorf("Expected %+v, got %+v", want, rec)
	}
}

func TestAverageElo(t *testing.T) {
	if got := stats.AverageElo(nil); got != 0 {
		t.Errorf("Expected 0 for empty roster, got %f", got)
	}
	players := []model.Player{{FaceitElo: 3000}, {FaceitElo: 2500}, {FaceitElo: 2800}, {FaceitElo: 3100}, {FaceitElo: 2600}}
	if got := stats.AverageElo(players); got != 2800 {
		t.Errorf("Expected 2800, got %f", got)
	}
}

func TestLeaderboard(t *testing.T) {
	m := sampleMatch()
	board := stats.Leaderboard([]model.Match{m})
	if len(board) != 5 {
		t.Fatalf("Expected 5 players, got %d", len(board))
	}
	if board[0].Nickname != "broken" || board[len(board)-1].Nickname != "ropz" {
		t.Errorf("Expected nickname order, got %s..%s", board[0].Nickname, board[len(board)-1].Nickname)
	}

	ropz := stats.Career("ropz", []model.Match{m})
	if ropz.Maps != 2 || ropz.MapsWon != 1 || ropz.Kills != 34 || ropz.Deaths != 31 {
		t.Errorf("Unexpected ropz career %+v", ropz)
	}
	if math.Abs(ropz.KD-34.0/31.0) > 1e-9 {
		t.Errorf("Expected K/D from totals, got %f", ropz.KD)
	}

	monesy := stats.Career("m0NESY", []model.Match{m})
	if monesy.KD != 8 {
		t.Errorf("Expected deathless career K/D to equal kills, got %f", monesy.KD)
	}

	nobody := stats.Career("ghost", []model.Match{m})
	if nobody.Maps != 0 || nobody.Nickname != "ghost" {
		t.Errorf("Expected empty career, got %+v", nobody)
	}
}

func TestSortCareers(t *testing.T) {
	board := stats.Leaderboard([]model.Match{sampleMatch()})
	sorted := stats.SortCareers(board, stats.SortKills, stats.Descending)
	if sorted[0].Nickname != "niko" || sorted[0].Kills != 43 {
		t.Errorf("Expected niko on top with 43 kills, got %+v", sorted[0])
	}
	if board[0].Nickname != "broken" {
		t.Error("Expected SortCareers to leave its input alone")
	}
}

func TestStandings(t *testing.T) {
	in := []model.TournamentResult{{Place: 3, Team: "c"}, {Place: 0, Team: "x"}, {Place: 1, Team: "a"}, {Place: 2, Team: "b"}}
	got := stats.Standings(in)
	order := []string{}
	for _, r := range got {
		order = append(order, r.Team)
	}
	if want := "a,b,c,x"; strings.Join(order, ",") != want {
		t.Errorf("Expected %s, got %s", want, strings.Join(order, ","))
	}
}
