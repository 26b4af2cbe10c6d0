package stats

import (
	"sort"
	"strconv"

	"fragportal/internal/model"
)

// KD is kills per death, with a deathless line counting as its kills.
func KD(s model.PlayerRoundStat) float64 {
	if s.Deaths == 0 {
		return float64(s.Kills)
	}
	return float64(s.Kills) / float64(s.Deaths)
}

func FormatKD(kd float64) string {
	return strconv.FormatFloat(kd, 'f', 2, 64)
}

type RoundPartition struct {
	Winners []model.PlayerRoundStat `json:"winners"`
	Losers  []model.PlayerRoundStat `json:"losers"`
}

// PartitionByRound keeps the lines of one map and splits them by Result,
// preserving input order. Lines with any other Result value are dropped.
func PartitionByRound(lines []model.PlayerRoundStat, round int) RoundPartition {
	p := RoundPartition{
		Winners: []model.PlayerRoundStat{},
		Losers:  []model.PlayerRoundStat{},
	}
	for _, s := range lines {
		if s.RoundOfMatch != round {
			continue
		}
		switch s.Result {
		case 1:
			p.Winners = append(p.Winners, s)
		case 0:
			p.Losers = append(p.Losers, s)
		}
	}
	return p
}

// Rounds lists the distinct map numbers present, ascending.
func Rounds(lines []model.PlayerRoundStat) []int {
	seen := map[int]bool{}
	rounds := []int{}
	for _, s := range lines {
		if s.RoundOfMatch < 1 || seen[s.RoundOfMatch] {
			continue
		}
		seen[s.RoundOfMatch] = true
		rounds = append(rounds, s.RoundOfMatch)
	}
	sort.Ints(rounds)
	return rounds
}
