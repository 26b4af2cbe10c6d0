// Package stats derives scoreboard figures from already-fetched match data:
// series scores, K/D, per-map partitions, stat table orderings and pages.
// Every function here is pure and safe to call from any goroutine.
package stats

import "fragportal/internal/model"

type SeriesScore struct {
	WinsFirstTeam  int `json:"winsFirstTeam"`
	WinsSecondTeam int `json:"winsSecondTeam"`
}

// ComputeSeriesScore tallies map wins per side. A map counts only for the
// side with the strictly greater total; level maps count for nobody.
func ComputeSeriesScore(results []model.MapResult) SeriesScore {
	var score SeriesScore
	for _, r := range results {
		switch {
		case r.TotalScoreFirstTeam > r.TotalScoreSecondTeam:
			score.WinsFirstTeam++
		case r.TotalScoreSecondTeam > r.TotalScoreFirstTeam:
			score.WinsSecondTeam++
		}
	}
	return score
}

// SeriesWinner returns the team with strictly more map wins. A level series
// has no winner.
func SeriesWinner(teams [2]string, score SeriesScore) (string, bool) {
	switch {
	case score.WinsFirstTeam > score.WinsSecondTeam:
		return teams[0], true
	case score.WinsSecondTeam > score.WinsFirstTeam:
		return teams[1], true
	default:
		return "", false
	}
}

// MapWinner reports the winning team of a single map, or "" on a level total.
func MapWinner(r model.MapResult) string {
	switch {
	case r.TotalScoreFirstTeam > r.TotalScoreSecondTeam:
		return r.FirstTeam
	case r.TotalScoreSecondTeam > r.TotalScoreFirstTeam:
		return r.SecondTeam
	default:
		return ""
	}
}
