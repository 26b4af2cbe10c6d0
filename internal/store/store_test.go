package store_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fragportal/internal/model"
	"fragportal/internal/store"
)

func backends(t *testing.T) map[string]store.Store {
	t.Helper()
	sqliteStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "portal.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })
	return map[string]store.Store{
		"memory": store.NewMemoryStore(false),
		"sqlite": sqliteStore,
	}
}

func TestStore_Users(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			created, err := s.CreateUser(model.User{Username: "Editor", PasswordHash: "hash"})
			if err != nil {
				t.Fatalf("CreateUser failed: %v", err)
			}
			if created.ID == "" || created.Role != model.RoleAdmin {
				t.Errorf("Expected id and default admin role, got %+v", created)
			}
			if _, err := s.CreateUser(model.User{Username: "editor"}); !errors.Is(err, store.ErrDuplicate) {
				t.Errorf("Expected ErrDuplicate for same username, got %v", err)
			}
			if _, err := s.CreateUser(model.User{Username: "  "}); err == nil {
				t.Error("Expected error for blank username")
			}
			got, err := s.GetUserByUsername("EDITOR")
			if err != nil || got.ID != created.ID || got.PasswordHash != "hash" {
				t.Errorf("Expected case-insensitive lookup, got %+v (%v)", got, err)
			}
			if _, err := s.GetUser(created.ID); err != nil {
				t.Errorf("Expected GetUser to find the user, got %v", err)
			}
			if _, err := s.GetUser("missing"); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("Expected ErrNotFound for unknown id, got %v", err)
			}
			if users, err := s.ListUsers(); err != nil || len(users) != 1 {
				t.Errorf("Expected 1 user, got %d (%v)", len(users), err)
			}
		})
	}
}

func TestStore_NewsCRUD(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			older, _ := s.CreateNews(model.News{Title: "older", CreatedAt: time.Now().Add(-time.Hour)})
			newer, _ := s.CreateNews(model.News{Title: "newer"})

			list, err := s.ListNews()
			if err != nil {
				t.Fatalf("ListNews failed: %v", err)
			}
			if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
				t.Fatalf("Expected newest first, got %+v", list)
			}

			older.Title = "edited"
			if err := s.UpdateNews(older); err != nil {
				t.Fatalf("UpdateNews failed: %v", err)
			}
			if got, _ := s.GetNews(older.ID); got.Title != "edited" {
				t.Errorf("Expected edited title, got %q", got.Title)
			}

			if err := s.DeleteNews(older.ID); err != nil {
				t.Fatalf("DeleteNews failed: %v", err)
			}
			if _, err := s.GetNews(older.ID); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("Expected news to be gone, got %v", err)
			}
			if err := s.DeleteNews(older.ID); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("Expected ErrNotFound on second delete, got %v", err)
			}
			if err := s.UpdateNews(model.News{ID: "missing"}); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("Expected ErrNotFound on update, got %v", err)
			}
		})
	}
}

func TestStore_TeamsAndPlayers(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			p1, _ := s.CreatePlayer(model.Player{Nickname: "zywoo", FaceitElo: 3500})
			p2, _ := s.CreatePlayer(model.Player{Nickname: "Apex", FaceitElo: 2900})

			team, err := s.CreateTeam(model.Team{Name: "Vitality", Country: "FR", PlayerIDs: []string{p1.ID, p2.ID}})
			if err != nil {
				t.Fatalf("CreateTeam failed: %v", err)
			}
			_, _ = s.CreateTeam(model.Team{Name: "astralis"})

			got, err := s.GetTeam(team.ID)
			if err != nil || len(got.PlayerIDs) != 2 || got.PlayerIDs[0] != p1.ID {
				t.Fatalf("Expected roster round trip, got %+v", got)
			}
			got.PlayerIDs[0] = "mutated"
			if again, _ := s.GetTeam(team.ID); again.PlayerIDs[0] != p1.ID {
				t.Error("Expected stored roster to be independent of returned slice")
			}

			teams, _ := s.ListTeams()
			if len(teams) != 2 || teams[0].Name != "astralis" {
				t.Errorf("Expected case-insensitive name order, got %+v", teams)
			}
			players, _ := s.ListPlayers()
			if len(players) != 2 || players[0].Nickname != "Apex" {
				t.Errorf("Expected nickname order, got %+v", players)
			}

			p2.TeamID = team.ID
			if err := s.UpdatePlayer(p2); err != nil {
				t.Fatalf("UpdatePlayer failed: %v", err)
			}
			if got, _ := s.GetPlayer(p2.ID); got.TeamID != team.ID {
				t.Errorf("Expected team id to persist, got %q", got.TeamID)
			}
			if err := s.DeleteTeam(team.ID); err != nil {
				t.Fatalf("DeleteTeam failed: %v", err)
			}
			if err := s.DeletePlayer("missing"); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_MatchesFilterAndRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			day := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
			finished, err := s.CreateMatch(model.Match{
				Teams:        [2]string{"a", "b"},
				TournamentID: "cup",
				Format:       model.FormatBO3,
				Status:       model.MatchFinished,
				Date:         day,
				Veto:         []model.Veto{{Team: "a", Action: model.VetoBan, Map: "de_nuke"}},
				Result:       []model.MapResult{{Map: "de_mirage", FirstTeam: "a", SecondTeam: "b", TotalScoreFirstTeam: 13, TotalScoreSecondTeam: 9}},
				Stats:        []model.PlayerRoundStat{{Nickname: "x", RoundOfMatch: 1, Result: 1, Kills: 20, ADR: 88.5, Headshots: 45}},
			})
			if err != nil {
				t.Fatalf("CreateMatch failed: %v", err)
			}
			_, _ = s.CreateMatch(model.Match{Teams: [2]string{"b", "c"}, Status: model.MatchUpcoming, Date: day.Add(48 * time.Hour)})
			_, _ = s.CreateMatch(model.Match{Teams: [2]string{"c", "d"}, TournamentID: "cup", Status: model.MatchUpcoming, Date: day.Add(24 * time.Hour)})

			all, err := s.ListMatches(store.MatchFilter{})
			if err != nil {
				t.Fatalf("ListMatches failed: %v", err)
			}
			if len(all) != 3 || !all[0].Date.After(all[1].Date) {
				t.Fatalf("Expected 3 matches newest first, got %d", len(all))
			}
			if byTeam, _ := s.ListMatches(store.MatchFilter{TeamID: "b"}); len(byTeam) != 2 {
				t.Errorf("Expected 2 matches for team b, got %d", len(byTeam))
			}
			if upcoming, _ := s.ListMatches(store.MatchFilter{TournamentID: "cup", Status: model.MatchUpcoming}); len(upcoming) != 1 {
				t.Errorf("Expected 1 upcoming cup match, got %d", len(upcoming))
			}

			got, err := s.GetMatch(finished.ID)
			if err != nil {
				t.Fatalf("Expected match to be found, got %v", err)
			}
			if got.Teams != finished.Teams || !got.Date.Equal(day) || len(got.Veto) != 1 {
				t.Errorf("Unexpected match round trip %+v", got)
			}
			if len(got.Result) != 1 || got.Result[0].TotalScoreFirstTeam != 13 {
				t.Errorf("Expected map result round trip, got %+v", got.Result)
			}
			if len(got.Stats) != 1 || got.Stats[0].Headshots != 45 || got.Stats[0].ADR != 88.5 {
				t.Errorf("Expected stat line round trip, got %+v", got.Stats)
			}

			got.Status = model.MatchLive
			if err := s.UpdateMatch(got); err != nil {
				t.Fatalf("UpdateMatch failed: %v", err)
			}
			if live, _ := s.ListMatches(store.MatchFilter{Status: model.MatchLive}); len(live) != 1 {
				t.Errorf("Expected 1 live match, got %d", len(live))
			}
			if err := s.DeleteMatch(got.ID); err != nil {
				t.Fatalf("DeleteMatch failed: %v", err)
			}
		})
	}
}

func TestStore_Tournaments(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
			early, _ := s.CreateTournament(model.Tournament{Name: "Winter", StartDate: start, EndDate: start.AddDate(0, 0, 5)})
			late, _ := s.CreateTournament(model.Tournament{
				Name:      "Spring",
				StartDate: start.AddDate(0, 1, 0),
				TeamIDs:   []string{"a", "b"},
				Results:   []model.TournamentResult{{Place: 1, Team: "a", Prize: "$10,000"}},
				Status:    model.TournamentFinished,
			})

			list, err := s.ListTournaments()
			if err != nil {
				t.Fatalf("ListTournaments failed: %v", err)
			}
			if len(list) != 2 || list[0].ID != late.ID || list[1].ID != early.ID {
				t.Fatalf("Expected latest start first, got %+v", list)
			}
			got, _ := s.GetTournament(late.ID)
			if len(got.Results) != 1 || got.Results[0].Prize != "$10,000" || len(got.TeamIDs) != 2 {
				t.Errorf("Unexpected tournament round trip %+v", got)
			}
			if !got.EndDate.IsZero() {
				t.Errorf("Expected unset end date to stay zero, got %s", got.EndDate)
			}

			got.Name = "Spring Finals"
			if err := s.UpdateTournament(got); err != nil {
				t.Fatalf("UpdateTournament failed: %v", err)
			}
			if err := s.DeleteTournament(early.ID); err != nil {
				t.Fatalf("DeleteTournament failed: %v", err)
			}
			if err := s.UpdateTournament(early); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("Expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	s := store.NewMemoryStore(false)

	created, err := store.EnsureAdmin(s, "root", "s3cret")
	if err != nil || !created {
		t.Fatalf("Expected admin to be created, got created=%v err=%v", created, err)
	}
	again, err := store.EnsureAdmin(s, "root", "other")
	if err != nil || again {
		t.Errorf("Expected existing admin to be left alone, got created=%v err=%v", again, err)
	}
	u, _ := s.GetUserByUsername("root")
	if u.Role != model.RoleSuperAdmin || u.PasswordHash == "" || u.PasswordHash == "s3cret" {
		t.Errorf("Expected hashed super admin, got %+v", u)
	}
	if created, _ := store.EnsureAdmin(s, "", ""); created {
		t.Error("Expected blank credentials to be ignored")
	}
}

func TestEnsureAdmin_PasswordTooLong(t *testing.T) {
	s := store.NewMemoryStore(false)

	created, err := store.EnsureAdmin(s, "root", strings.Repeat("p", 80))
	if err == nil || created {
		t.Fatalf("Expected an error for an 80 byte password, got created=%v err=%v", created, err)
	}
	if _, err := s.GetUserByUsername("root"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected no admin account without a usable hash, got %v", err)
	}
}

func TestMemoryStore_Seed(t *testing.T) {
	s := store.NewMemoryStore(true)

	if teams, _ := s.ListTeams(); len(teams) != 6 {
		t.Errorf("Expected 6 seeded teams, got %d", len(teams))
	}
	if players, _ := s.ListPlayers(); len(players) != 30 {
		t.Errorf("Expected 30 seeded players, got %d", len(players))
	}
	if _, err := s.GetUserByUsername("admin"); err != nil {
		t.Errorf("Expected seeded admin user, got %v", err)
	}
	finished, _ := s.ListMatches(store.MatchFilter{Status: model.MatchFinished})
	if len(finished) == 0 {
		t.Fatal("Expected finished seeded matches")
	}
	for _, m := range finished {
		for _, r := range m.Result {
			if r.TotalScoreFirstTeam != r.FirstHalfScoreFirstTeam+r.SecondHalfScoreFirstTeam+r.OvertimeScoreFirstTeam {
				t.Errorf("match %s: first team total does not add up: %+v", m.ID, r)
			}
			if r.TotalScoreFirstTeam == r.TotalScoreSecondTeam {
				t.Errorf("match %s: seeded map without a winner: %+v", m.ID, r)
			}
		}
		if len(m.Stats) != 10*len(m.Result) {
			t.Errorf("match %s: expected 10 stat lines per map, got %d", m.ID, len(m.Stats))
		}
	}
}

func TestSQLiteStore_SurfacesFailures(t *testing.T) {
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "portal.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	n, err := s.CreateNews(model.News{Title: "kept"})
	if err != nil {
		t.Fatalf("CreateNews failed: %v", err)
	}
	_ = s.Close()

	if _, err := s.GetNews(n.ID); err == nil || errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected a store failure rather than not found, got %v", err)
	}
	if _, err := s.ListNews(); err == nil {
		t.Error("Expected ListNews to fail on a closed database")
	}
}

func TestSQLiteStore_CorruptJSONColumn(t *testing.T) {
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "portal.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	m, err := s.CreateMatch(model.Match{Teams: [2]string{"a", "b"}, Status: model.MatchFinished})
	if err != nil {
		t.Fatalf("CreateMatch failed: %v", err)
	}
	if _, err := s.DB().Exec(`UPDATE matches SET stats_json = '{broken' WHERE id = ?`, m.ID); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	if _, err := s.GetMatch(m.ID); err == nil || !strings.Contains(err.Error(), "stats_json") {
		t.Errorf("Expected a decode error naming stats_json, got %v", err)
	}
	if _, err := s.ListMatches(store.MatchFilter{}); err == nil {
		t.Error("Expected ListMatches to fail on a corrupt row")
	}
}
