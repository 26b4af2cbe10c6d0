package stats

import (
	"cmp"
	"slices"
	"sort"

	"fragportal/internal/model"
)

type Record struct {
	Played   int `json:"played"`
	Wins     int `json:"wins"`
	Losses   int `json:"losses"`
	Draws    int `json:"draws"`
	MapsWon  int `json:"maps_won"`
	MapsLost int `json:"maps_lost"`
}

func mapSides(m model.Match, r model.MapResult) (string, string) {
	first, second := r.FirstTeam, r.SecondTeam
	if first == "" {
		first = m.Teams[0]
	}
	if second == "" {
		second = m.Teams[1]
	}
	return first, second
}

// TeamRecord aggregates the finished series a team took part in.
func TeamRecord(teamID string, matches []model.Match) Record {
	var rec Record
	for _, m := range matches {
		if m.Status != model.MatchFinished || !m.HasTeam(teamID) {
			continue
		}
		rec.Played++
		winner, ok := SeriesWinner(m.Teams, ComputeSeriesScore(m.Result))
		switch {
		case !ok:
			rec.Draws++
		case winner == teamID:
			rec.Wins++
		default:
			rec.Losses++
		}
		for _, r := range m.Result {
			first, second := mapSides(m, r)
			switch {
			case r.TotalScoreFirstTeam > r.TotalScoreSecondTeam && first == teamID,
				r.TotalScoreSecondTeam > r.TotalScoreFirstTeam && second == teamID:
				rec.MapsWon++
			case r.TotalScoreFirstTeam > r.TotalScoreSecondTeam && second == teamID,
				r.TotalScoreSecondTeam > r.TotalScoreFirstTeam && first == teamID:
				rec.MapsLost++
			}
		}
	}
	return rec
}

func AverageElo(players []model.Player) float64 {
	if len(players) == 0 {
		return 0
	}
	total := 0
	for _, p := range players {
		total += p.FaceitElo
	}
	return float64(total) / float64(len(players))
}

type PlayerCareer struct {
	Nickname  string  `json:"nickname"`
	Maps      int     `json:"maps"`
	MapsWon   int     `json:"maps_won"`
	Kills     int     `json:"Kills"`
	Assists   int     `json:"Assists"`
	Deaths    int     `json:"Deaths"`
	KD        float64 `json:"K/D"`
	ADR       float64 `json:"ADR"`
	Headshots float64 `json:"Headshots %"`
}

func (c PlayerCareer) line() model.PlayerRoundStat {
	return model.PlayerRoundStat{
		Nickname:  c.Nickname,
		Kills:     c.Kills,
		Assists:   c.Assists,
		Deaths:    c.Deaths,
		ADR:       c.ADR,
		Headshots: c.Headshots,
	}
}

// Leaderboard folds every stat line of the given matches into one career
// row per nickname, ordered by nickname. ADR and HS% are per-map means.
func Leaderboard(matches []model.Match) []PlayerCareer {
	type acc struct {
		career PlayerCareer
		adrSum float64
		hsSum  float64
	}
	index := map[string]*acc{}
	for _, m := range matches {
		for _, s := range m.Stats {
			a := index[s.Nickname]
			if a == nil {
				a = &acc{career: PlayerCareer{Nickname: s.Nickname}}
				index[s.Nickname] = a
			}
			a.career.Maps++
			if s.Result == 1 {
				a.career.MapsWon++
			}
			a.career.Kills += s.Kills
			a.career.Assists += s.Assists
			a.career.Deaths += s.Deaths
			a.adrSum += s.ADR
			a.hsSum += s.Headshots
		}
	}

	careers := make([]PlayerCareer, 0, len(index))
	for _, a := range index {
		c := a.career
		c.ADR = a.adrSum / float64(c.Maps)
		c.Headshots = a.hsSum / float64(c.Maps)
		c.KD = KD(c.line())
		careers = append(careers, c)
	}
	sort.Slice(careers, func(i, j int) bool { return careers[i].Nickname < careers[j].Nickname })
	return careers
}

// Career returns the leaderboard row of one player, or a zero row with the
// nickname set when the player has no stat lines.
func Career(nickname string, matches []model.Match) PlayerCareer {
	for _, c := range Leaderboard(matches) {
		if c.Nickname == nickname {
			return c
		}
	}
	return PlayerCareer{Nickname: nickname}
}

func SortCareers(careers []PlayerCareer, key SortKey, dir Direction) []PlayerCareer {
	compare := lineComparator(key, dir)
	out := slices.Clone(careers)
	slices.SortStableFunc(out, func(a, b PlayerCareer) int {
		return compare(a.line(), b.line())
	})
	return out
}

// Standings orders tournament results by place. Unplaced entries go last.
func Standings(results []model.TournamentResult) []model.TournamentResult {
	out := slices.Clone(results)
	slices.SortStableFunc(out, func(a, b model.TournamentResult) int {
		switch {
		case a.Place < 1 && b.Place < 1:
			return 0
		case a.Place < 1:
			return 1
		case b.Place < 1:
			return -1
		}
		return cmp.Compare(a.Place, b.Place)
	})
	return out
}
