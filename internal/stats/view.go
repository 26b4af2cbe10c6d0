package stats

import "fragportal/internal/model"

// StatLine is a PlayerRoundStat with its derived K/D attached for display.
type StatLine struct {
	model.PlayerRoundStat
	KD float64 `json:"K/D"`
}

func withKD(lines []model.PlayerRoundStat) []StatLine {
	out := make([]StatLine, 0, len(lines))
	for _, s := range lines {
		out = append(out, StatLine{PlayerRoundStat: s, KD: KD(s)})
	}
	return out
}

type MatchViewOptions struct {
	// Round selects the map tab; values below 1 pick the first map with stats.
	Round int
	Sort  SortState
}

type MatchView struct {
	Match   model.Match      `json:"match"`
	Score   SeriesScore      `json:"series_score"`
	Winner  string           `json:"winner,omitempty"`
	Decided bool             `json:"decided"`
	Rounds  []int            `json:"rounds"`
	Round   int              `json:"round"`
	Map     *model.MapResult `json:"map,omitempty"`
	Winners []StatLine       `json:"winners"`
	Losers  []StatLine       `json:"losers"`
	Sort    SortState        `json:"sort"`
}

// BuildMatchView derives everything a match page shows from the match
// snapshot and the caller's tab and sort state.
func BuildMatchView(m model.Match, opts MatchViewOptions) MatchView {
	score := ComputeSeriesScore(m.Result)
	winner, decided := SeriesWinner(m.Teams, score)

	rounds := Rounds(m.Stats)
	round := opts.Round
	if round < 1 {
		round = 1
		if len(rounds) > 0 {
			round = rounds[0]
		}
	}

	view := MatchView{
		Match:   m,
		Score:   score,
		Winner:  winner,
		Decided: decided,
		Rounds:  rounds,
		Round:   round,
		Sort:    opts.Sort,
	}
	if round <= len(m.Result) {
		mapResult := m.Result[round-1]
		view.Map = &mapResult
	}

	part := PartitionByRound(m.Stats, round)
	view.Winners = withKD(opts.Sort.Apply(part.Winners))
	view.Losers = withKD(opts.Sort.Apply(part.Losers))
	return view
}

const recentMatches = 10

type TeamView struct {
	Team    model.Team     `json:"team"`
	Roster  []model.Player `json:"roster"`
	Record  Record         `json:"record"`
	Matches []string       `json:"matches"`
}

// BuildTeamView expects matches newest first; it keeps the most recent ids
// the team played in.
func BuildTeamView(team model.Team, roster []model.Player, matches []model.Match) TeamView {
	team.AverageFaceitElo = AverageElo(roster)
	view := TeamView{
		Team:    team,
		Roster:  roster,
		Record:  TeamRecord(team.ID, matches),
		Matches: []string{},
	}
	if view.Roster == nil {
		view.Roster = []model.Player{}
	}
	for _, m := range matches {
		if len(view.Matches) == recentMatches {
			break
		}
		if m.HasTeam(team.ID) {
			view.Matches = append(view.Matches, m.ID)
		}
	}
	return view
}

type PlayerView struct {
	Player model.Player `json:"player"`
	Career PlayerCareer `json:"career"`
}

func BuildPlayerView(p model.Player, matches []model.Match) PlayerView {
	return PlayerView{Player: p, Career: Career(p.Nickname, matches)}
}

type TournamentView struct {
	Tournament model.Tournament         `json:"tournament"`
	Standings  []model.TournamentResult `json:"standings"`
	Matches    []string                 `json:"matches"`
}

func BuildTournamentView(t model.Tournament, matches []model.Match) TournamentView {
	view := TournamentView{
		Tournament: t,
		Standings:  Standings(t.Results),
		Matches:    []string{},
	}
	for _, m := range matches {
		if m.TournamentID == t.ID {
			view.Matches = append(view.Matches, m.ID)
		}
	}
	return view
}
