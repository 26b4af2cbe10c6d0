package stats

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"fragportal/internal/model"
)

// SortKey names a sortable stat column. K/D is derived at sort time.
type SortKey string

const (
	SortKills     SortKey = "Kills"
	SortAssists   SortKey = "Assists"
	SortDeaths    SortKey = "Deaths"
	SortKD        SortKey = "K/D"
	SortADR       SortKey = "ADR"
	SortHeadshots SortKey = "Headshots %"
)

var SortKeys = []SortKey{SortKills, SortAssists, SortDeaths, SortKD, SortADR, SortHeadshots}

func (k SortKey) Valid() bool {
	return slices.Contains(SortKeys, k)
}

type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

var sortKeyAliases = map[string]SortKey{
	"kills":       SortKills,
	"assists":     SortAssists,
	"deaths":      SortDeaths,
	"k/d":         SortKD,
	"kd":          SortKD,
	"adr":         SortADR,
	"headshots %": SortHeadshots,
	"headshots":   SortHeadshots,
	"hs":          SortHeadshots,
}

// ParseSortKey maps a column name from a query string onto a SortKey.
func ParseSortKey(raw string) (SortKey, error) {
	key, ok := sortKeyAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown sort key %q", raw)
	}
	return key, nil
}

// ParseDirection accepts asc/desc in short or long form. Empty means ascending.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", raw)
	}
}

func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

func sortValue(s model.PlayerRoundStat, key SortKey) float64 {
	switch key {
	case SortKills:
		return float64(s.Kills)
	case SortAssists:
		return float64(s.Assists)
	case SortDeaths:
		return float64(s.Deaths)
	case SortKD:
		return KD(s)
	case SortADR:
		return s.ADR
	case SortHeadshots:
		return s.Headshots
	}
	panic(fmt.Sprintf("stats: unknown sort key %q", key))
}

// SortStats returns a stably sorted copy of lines. Equal values keep their
// input order in both directions. It panics on a key outside SortKeys.
func SortStats(lines []model.PlayerRoundStat, key SortKey, dir Direction) []model.PlayerRoundStat {
	out := slices.Clone(lines)
	slices.SortStableFunc(out, lineComparator(key, dir))
	return out
}

func lineComparator(key SortKey, dir Direction) func(a, b model.PlayerRoundStat) int {
	if !key.Valid() {
		panic(fmt.Sprintf("stats: unknown sort key %q", key))
	}
	return func(a, b model.PlayerRoundStat) int {
		c := cmp.Compare(sortValue(a, key), sortValue(b, key))
		if dir == Descending {
			return -c
		}
		return c
	}
}

// SortState is the column toggle a table keeps between renders: picking the
// current column again flips the direction, a new column starts ascending.
type SortState struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

func (s *SortState) Toggle(key SortKey) {
	if s.Key == key {
		s.Direction = s.Direction.Flip()
		return
	}
	s.Key = key
	s.Direction = Ascending
}

// Apply sorts lines by the current state; an unset state leaves order alone.
func (s SortState) Apply(lines []model.PlayerRoundStat) []model.PlayerRoundStat {
	if s.Key == "" {
		return slices.Clone(lines)
	}
	return SortStats(lines, s.Key, s.Direction)
}
