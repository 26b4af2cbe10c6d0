package store

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"fragportal/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var mapPool = []string{"de_mirage", "de_inferno", "de_nuke", "de_ancient", "de_anubis", "de_dust2", "de_vertigo"}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// EnsureAdmin creates a super admin with the given credentials unless a user
// with that username already exists.
func EnsureAdmin(s Store, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	switch _, err := s.GetUserByUsername(username); {
	case err == nil:
		return false, nil
	case !errors.Is(err, ErrNotFound):
		return false, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	_, err = s.CreateUser(model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func seedData(s *MemoryStore) {
	rng := rand.New(rand.NewSource(42))
	now := time.Now().UTC().Truncate(time.Hour)

	hash, err := hashPassword("password123")
	if err != nil {
		panic(err)
	}
	admin := model.User{ID: uuid.NewString(), Username: "admin", PasswordHash: hash, Role: model.RoleSuperAdmin, CreatedAt: now}
	s.users[admin.ID] = admin

	rosters := []struct {
		name    string
		country string
		players []string
	}{
		{"Natus Vincere", "UA", []string{"b1t", "jL", "iM", "w0nderful", "Aleksib"}},
		{"Team Vitality", "FR", []string{"apEX", "ZywOo", "flameZ", "mezii", "ropz"}},
		{"FaZe Clan", "EU", []string{"karrigan", "rain", "frozen", "broky", "EliGE"}},
		{"G2 Esports", "EU", []string{"huNter-", "m0NESY", "Snax", "malbsMd", "MATYS"}},
		{"Team Spirit", "RU", []string{"chopper", "donk", "sh1ro", "zont1x", "magixx"}},
		{"MOUZ", "EU", []string{"Brollan", "torzsi", "xertioN", "Jimpphat", "siuhy"}},
	}

	teams := make([]model.Team, 0, len(rosters))
	for i, roster := range rosters {
		team := model.Team{
			ID:        uuid.NewString(),
			Name:      roster.name,
			Country:   roster.country,
			LogoURL:   "https://img.fragportal.gg/teams/" + slug(roster.name) + ".png",
			CreatedAt: now.Add(-time.Duration(len(rosters)-i) * 24 * time.Hour),
		}
		for _, nick := range roster.players {
			player := model.Player{
				ID:        uuid.NewString(),
				Nickname:  nick,
				Country:   roster.country,
				TeamID:    team.ID,
				FaceitElo: 2400 + rng.Intn(1400),
				PhotoURL:  "https://img.fragportal.gg/players/" + slug(nick) + ".png",
				CreatedAt: team.CreatedAt,
			}
			s.players[player.ID] = player
			team.PlayerIDs = append(team.PlayerIDs, player.ID)
		}
		s.teams[team.ID] = team
		teams = append(teams, team)
	}

	finished := model.Tournament{
		ID:        uuid.NewString(),
		Name:      "Spring Masters",
		Location:  "Katowice",
		PrizePool: "$250,000",
		StartDate: now.AddDate(0, -2, 0),
		EndDate:   now.AddDate(0, -2, 10),
		Status:    model.TournamentFinished,
		CreatedAt: now.AddDate(0, -3, 0),
	}
	ongoing := model.Tournament{
		ID:        uuid.NewString(),
		Name:      "Summer Cup",
		Location:  "Cologne",
		PrizePool: "$100,000",
		StartDate: now.AddDate(0, 0, -3),
		EndDate:   now.AddDate(0, 0, 7),
		Status:    model.TournamentOngoing,
		CreatedAt: now.AddDate(0, -1, 0),
	}
	for _, t := range teams {
		finished.TeamIDs = append(finished.TeamIDs, t.ID)
		ongoing.TeamIDs = append(ongoing.TeamIDs, t.ID)
	}
	prizes := []string{"$125,000", "$60,000", "$35,000", "$15,000"}
	for i, prize := range prizes {
		finished.Results = append(finished.Results, model.TournamentResult{Place: i + 1, Team: teams[i].ID, Prize: prize})
	}
	s.tournaments[finished.ID] = finished
	s.tournaments[ongoing.ID] = ongoing

	for i := 0; i < 8; i++ {
		a := rng.Intn(len(teams))
		b := (a + 1 + rng.Intn(len(teams)-1)) % len(teams)
		match := model.Match{
			ID:           uuid.NewString(),
			Teams:        [2]string{teams[a].ID, teams[b].ID},
			TournamentID: finished.ID,
			Format:       model.FormatBO3,
			Status:       model.MatchFinished,
			Date:         finished.StartDate.Add(time.Duration(i) * 30 * time.Hour),
			CreatedAt:    finished.CreatedAt,
		}
		if i >= 5 {
			match.TournamentID = ongoing.ID
			match.Date = ongoing.StartDate.Add(time.Duration(i-5) * 20 * time.Hour)
		}
		if i == 7 {
			match.Status = model.MatchUpcoming
			match.Date = ongoing.EndDate.Add(-24 * time.Hour)
		}
		match.Veto = seedVeto(rng, match.Teams)
		if match.Status == model.MatchFinished {
			seedSeries(rng, &match, teams[a], teams[b], s.players)
		}
		s.matches[match.ID] = match
	}

	headlines := []struct{ title, body string }{
		{"Spring Masters wraps up in Katowice", "Twelve days of Counter-Strike ended with a packed arena and a new champion."},
		{"Summer Cup groups drawn", "Six teams, two groups, one trophy. The full schedule is now live."},
		{"Roster watch: who moves before the break", "Transfer rumours are heating up ahead of the summer player break."},
	}
	for i, h := range headlines {
		n := model.News{
			ID:        uuid.NewString(),
			Title:     h.title,
			Body:      h.body,
			Author:    admin.Username,
			CreatedAt: now.Add(-time.Duration(i) * 36 * time.Hour),
		}
		s.news[n.ID] = n
	}
}

func seedVeto(rng *rand.Rand, teams [2]string) []model.Veto {
	maps := append([]string(nil), mapPool...)
	rng.Shuffle(len(maps), func(i, j int) { maps[i], maps[j] = maps[j], maps[i] })
	actions := []model.VetoAction{model.VetoBan, model.VetoBan, model.VetoPick, model.VetoPick, model.VetoBan, model.VetoBan}
	veto := make([]model.Veto, 0, len(maps))
	for i, action := range actions {
		veto = append(veto, model.Veto{Team: teams[i%2], Action: action, Map: maps[i]})
	}
	return append(veto, model.Veto{Action: model.VetoDecider, Map: maps[len(actions)]})
}

func seedSeries(rng *rand.Rand, match *model.Match, first, second model.Team, players map[string]model.Player) {
	winsFirst, winsSecond := 0, 0
	picks := []string{}
	for _, v := range match.Veto {
		if v.Action != model.VetoBan {
			picks = append(picks, v.Map)
		}
	}
	for round := 1; winsFirst < 2 && winsSecond < 2; round++ {
		firstWins := rng.Intn(2) == 0
		r := seedMapResult(rng, picks[round-1], first.ID, second.ID, firstWins)
		match.Result = append(match.Result, r)
		if firstWins {
			winsFirst++
		} else {
			winsSecond++
		}
		for _, side := range []struct {
			team model.Team
			won  bool
		}{{first, firstWins}, {second, !firstWins}} {
			for _, id := range side.team.PlayerIDs {
				line := model.PlayerRoundStat{
					Nickname:     players[id].Nickname,
					RoundOfMatch: round,
					Kills:        5 + rng.Intn(26),
					Assists:      rng.Intn(11),
					Deaths:       8 + rng.Intn(18),
					ADR:          round1(50 + rng.Float64()*70),
					Headshots:    round1(20 + rng.Float64()*50),
				}
				if side.won {
					line.Result = 1
				}
				match.Stats = append(match.Stats, line)
			}
		}
	}
}

func seedMapResult(rng *rand.Rand, mapName, firstID, secondID string, firstWins bool) model.MapResult {
	win, lose := 13, rng.Intn(12)
	var otWin, otLose int
	if rng.Intn(6) == 0 {
		win, lose = 12, 12
		otWin, otLose = 4, rng.Intn(3)
	}
	// Split regulation rounds over two halves of 12.
	lo := 12 - lose
	if lo < 0 {
		lo = 0
	}
	hi := win
	if hi > 12 {
		hi = 12
	}
	winFirstHalf := lo + rng.Intn(hi-lo+1)
	loseFirstHalf := 12 - winFirstHalf

	r := model.MapResult{Map: mapName, FirstTeam: firstID, SecondTeam: secondID}
	if firstWins {
		r.FirstHalfScoreFirstTeam, r.SecondHalfScoreFirstTeam, r.OvertimeScoreFirstTeam = winFirstHalf, win-winFirstHalf, otWin
		r.FirstHalfScoreSecondTeam, r.SecondHalfScoreSecondTeam, r.OvertimeScoreSecondTeam = loseFirstHalf, lose-loseFirstHalf, otLose
	} else {
		r.FirstHalfScoreSecondTeam, r.SecondHalfScoreSecondTeam, r.OvertimeScoreSecondTeam = winFirstHalf, win-winFirstHalf, otWin
		r.FirstHalfScoreFirstTeam, r.SecondHalfScoreFirstTeam, r.OvertimeScoreFirstTeam = loseFirstHalf, lose-loseFirstHalf, otLose
	}
	r.TotalScoreFirstTeam = r.FirstHalfScoreFirstTeam + r.SecondHalfScoreFirstTeam + r.OvertimeScoreFirstTeam
	r.TotalScoreSecondTeam = r.FirstHalfScoreSecondTeam + r.SecondHalfScoreSecondTeam + r.OvertimeScoreSecondTeam
	return r
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		case r == ' ' || r == '-':
			out = append(out, '-')
		}
	}
	return string(out)
}
