package stats_test

import (
	"math"
	"reflect"
	"testing"
	"time"

	"fragportal/internal/model"
	"fragportal/internal/stats"
)

func sampleMatch() model.Match {
	return model.Match{
		ID:     "m1",
		Teams:  [2]string{"faze", "g2"},
		Status: model.MatchFinished,
		Format: model.FormatBO3,
		Result: []model.MapResult{
			{Map: "de_mirage", FirstTeam: "faze", SecondTeam: "g2", TotalScoreFirstTeam: 16, TotalScoreSecondTeam: 10},
			{Map: "de_inferno", FirstTeam: "faze", SecondTeam: "g2", TotalScoreFirstTeam: 9, TotalScoreSecondTeam: 13},
			{Map: "de_nuke", FirstTeam: "faze", SecondTeam: "g2", TotalScoreFirstTeam: 16, TotalScoreSecondTeam: 5},
		},
		Stats: []model.PlayerRoundStat{
			{Nickname: "ropz", RoundOfMatch: 1, Result: 1, Kills: 22, Deaths: 14},
			{Nickname: "niko", RoundOfMatch: 1, Result: 0, Kills: 19, Deaths: 18},
			{Nickname: "rain", RoundOfMatch: 1, Result: 1, Kills: 25, Deaths: 11},
			{Nickname: "ropz", RoundOfMatch: 2, Result: 0, Kills: 12, Deaths: 17},
			{Nickname: "niko", RoundOfMatch: 2, Result: 1, Kills: 24, Deaths: 10},
			{Nickname: "m0NESY", RoundOfMatch: 3, Result: 0, Kills: 8, Deaths: 0},
			{Nickname: "broken", RoundOfMatch: 3, Result: 2, Kills: 1, Deaths: 1},
		},
		Date: time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC),
	}
}

func TestPartitionByRound(t *testing.T) {
	m := sampleMatch()
	p := stats.PartitionByRound(m.Stats, 1)
	if got := nicknames(p.Winners); !reflect.DeepEqual(got, []string{"ropz", "rain"}) {
		t.Errorf("Expected winners [ropz rain], got %v", got)
	}
	if got := nicknames(p.Losers); !reflect.DeepEqual(got, []string{"niko"}) {
		t.Errorf("Expected losers [niko], got %v", got)
	}
}

func TestPartitionByRound_DisjointUnion(t *testing.T) {
	m := sampleMatch()
	for _, round := range []int{1, 2, 3} {
		p := stats.PartitionByRound(m.Stats, round)
		seen := map[model.PlayerRoundStat]int{}
		for _, s := range p.Winners {
			seen[s]++
		}
		for _, s := range p.Losers {
			seen[s]++
		}
		for s, n := range seen {
			if n != 1 {
				t.Errorf("round %d: %s appears %d times", round, s.Nickname, n)
			}
		}
		for _, s := range m.Stats {
			if s.RoundOfMatch == round && (s.Result == 0 || s.Result == 1) && seen[s] != 1 {
				t.Errorf("round %d: %s missing from partition", round, s.Nickname)
			}
		}
	}
}

func TestPartitionByRound_EmptyRound(t *testing.T) {
	p := stats.PartitionByRound(sampleMatch().Stats, 9)
	if p.Winners == nil || p.Losers == nil || len(p.Winners)+len(p.Losers) != 0 {
		t.Errorf("Expected empty non-nil sets, got %+v", p)
	}
}

func TestRounds(t *testing.T) {
	got := stats.Rounds([]model.PlayerRoundStat{{RoundOfMatch: 3}, {RoundOfMatch: 1}, {RoundOfMatch: 3}, {RoundOfMatch: 0}, {RoundOfMatch: 2}})
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Expected [1 2 3], got %v", got)
	}
}

func TestBuildMatchView(t *testing.T) {
	m := sampleMatch()
	view := stats.BuildMatchView(m, stats.MatchViewOptions{
		Round: 1,
		Sort:  stats.SortState{Key: stats.SortKills, Direction: stats.Descending},
	})

	if view.Score != (stats.SeriesScore{WinsFirstTeam: 2, WinsSecondTeam: 1}) {
		t.Errorf("Expected 2-1, got %+v", view.Score)
	}
	if !view.Decided || view.Winner != "faze" {
		t.Errorf("Expected faze to win, got %q (decided=%v)", view.Winner, view.Decided)
	}
	if view.Map == nil || view.Map.Map != "de_mirage" {
		t.Errorf("Expected mirage as map 1, got %+v", view.Map)
	}
	if len(view.Winners) != 2 || view.Winners[0].Nickname != "rain" || view.Winners[1].Nickname != "ropz" {
		t.Errorf("Expected winners sorted by kills desc, got %+v", view.Winners)
	}
	if math.Abs(view.Winners[0].KD-25.0/11.0) > 1e-9 {
		t.Errorf("Expected derived K/D on line, got %f", view.Winners[0].KD)
	}
	if !reflect.DeepEqual(view.Rounds, []int{1, 2, 3}) {
		t.Errorf("Expected rounds [1 2 3], got %v", view.Rounds)
	}
}

func TestBuildMatchView_DefaultsToFirstRoundWithStats(t *testing.T) {
	m := sampleMatch()
	m.Stats = m.Stats[3:]
	view := stats.BuildMatchView(m, stats.MatchViewOptions{})
	if view.Round != 2 {
		t.Errorf("Expected round 2, got %d", view.Round)
	}
	if view.Map == nil || view.Map.Map != "de_inferno" {
		t.Errorf("Expected inferno, got %+v", view.Map)
	}
}

func TestBuildMatchView_LevelSeriesUndecided(t *testing.T) {
	m := sampleMatch()
	m.Result = m.Result[:2]
	view := stats.BuildMatchView(m, stats.MatchViewOptions{Round: 5})
	if view.Decided || view.Winner != "" {
		t.Errorf("Expected 1-1 series to be undecided, got %q", view.Winner)
	}
	if view.Map != nil {
		t.Errorf("Expected no map for round 5, got %+v", view.Map)
	}
	if len(view.Winners) != 0 || len(view.Losers) != 0 {
		t.Error("Expected empty tables for a round without stats")
	}
}

func TestBuildTeamView(t *testing.T) {
	m := sampleMatch()
	other := model.Match{ID: "m2", Teams: [2]string{"navi", "spirit"}, Status: model.MatchFinished}
	roster := []model.Player{{Nickname: "ropz", FaceitElo: 3000}, {Nickname: "rain", FaceitElo: 2000}}

	view := stats.BuildTeamView(model.Team{ID: "faze", Name: "FaZe Clan"}, roster, []model.Match{m, other})
	if view.Team.AverageFaceitElo != 2500 {
		t.Errorf("Expected average elo 2500, got %v", view.Team.AverageFaceitElo)
	}
	if !reflect.DeepEqual(view.Matches, []string{"m1"}) {
		t.Errorf("Expected matches [m1], got %v", view.Matches)
	}
	if view.Record.Wins != 1 || view.Record.MapsWon != 2 || view.Record.MapsLost != 1 {
		t.Errorf("Unexpected record %+v", view.Record)
	}

	empty := stats.BuildTeamView(model.Team{ID: "x"}, nil, nil)
	if empty.Roster == nil || empty.Matches == nil {
		t.Error("Expected empty slices, got nil")
	}
}

func TestBuildTournamentView(t *testing.T) {
	m := sampleMatch()
	m.TournamentID = "t1"
	stray := model.Match{ID: "m2", TournamentID: "t2"}
	tour := model.Tournament{ID: "t1", Results: []model.TournamentResult{{Place: 2, Team: "g2"}, {Place: 1, Team: "faze"}}}

	view := stats.BuildTournamentView(tour, []model.Match{m, stray})
	if !reflect.DeepEqual(view.Matches, []string{"m1"}) {
		t.Errorf("Expected matches [m1], got %v", view.Matches)
	}
	if view.Standings[0].Team != "faze" {
		t.Errorf("Expected faze first, got %+v", view.Standings)
	}
}
