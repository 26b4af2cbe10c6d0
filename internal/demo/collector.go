package demo

import (
	"cmp"
	"math"
	"slices"

	"fragportal/internal/model"
)

type playerTally struct {
	id      uint64
	name    string
	group   int
	kills   int
	assists int
	deaths  int
	hsKills int
	damage  int
}

// collector folds normalised demo events into per-player and per-round
// totals. Group 0 is the side that started as CT.
type collector struct {
	players map[uint64]*playerTally
	order   []uint64
	winners []int
}

func newCollector() *collector {
	c := &collector{}
	c.reset()
	return c
}

func (c *collector) reset() {
	c.players = make(map[uint64]*playerTally)
	c.order = nil
	c.winners = nil
}

// see registers a player on first sighting. startedCT is only used the first
// time, so later side swaps keep the player in their group.
func (c *collector) see(id uint64, name string, startedCT bool) *playerTally {
	if id == 0 {
		return nil
	}
	p, ok := c.players[id]
	if !ok {
		group := 1
		if startedCT {
			group = 0
		}
		p = &playerTally{id: id, name: name, group: group}
		c.players[id] = p
		c.order = append(c.order, id)
	}
	if name != "" {
		p.name = name
	}
	return p
}

func (c *collector) kill(killer, victim, assister *playerTally, headshot bool) {
	if victim != nil {
		victim.deaths++
	}
	if killer != nil && killer != victim && (victim == nil || killer.group != victim.group) {
		killer.kills++
		if headshot {
			killer.hsKills++
		}
	}
	if assister != nil && (victim == nil || assister.group != victim.group) {
		assister.assists++
	}
}

func (c *collector) hurt(attacker, victim *playerTally, damage int) {
	if attacker == nil || victim == nil || attacker.group == victim.group || damage <= 0 {
		return
	}
	attacker.damage += damage
}

// roundEnd credits the round to the group most of winners belong to.
func (c *collector) roundEnd(winners []uint64) {
	votes := [2]int{}
	for _, id := range winners {
		if p, ok := c.players[id]; ok {
			votes[p.group]++
		}
	}
	if votes[0] == votes[1] {
		return
	}
	group := 0
	if votes[1] > votes[0] {
		group = 1
	}
	c.winners = append(c.winners, group)
}

// swapGroups flips which group counts as first team.
func (c *collector) swapGroups() {
	for _, p := range c.players {
		p.group = 1 - p.group
	}
	for i, g := range c.winners {
		c.winners[i] = 1 - g
	}
}

// groupOverlap counts how many nicknames of each group appear in roster.
func (c *collector) groupOverlap(roster []string) [2]int {
	var n [2]int
	for _, p := range c.players {
		if slices.Contains(roster, p.name) {
			n[p.group]++
		}
	}
	return n
}

func (c *collector) result(opts Options) Result {
	half := opts.HalfLength
	if half < 1 {
		half = DefaultHalfLength
	}

	r := model.MapResult{Map: opts.Map, FirstTeam: opts.FirstTeam, SecondTeam: opts.SecondTeam}
	for i, g := range c.winners {
		round := i + 1
		switch {
		case round <= half && g == 0:
			r.FirstHalfScoreFirstTeam++
		case round <= half:
			r.FirstHalfScoreSecondTeam++
		case round <= 2*half && g == 0:
			r.SecondHalfScoreFirstTeam++
		case round <= 2*half:
			r.SecondHalfScoreSecondTeam++
		case g == 0:
			r.OvertimeScoreFirstTeam++
		default:
			r.OvertimeScoreSecondTeam++
		}
	}
	r.TotalScoreFirstTeam = r.FirstHalfScoreFirstTeam + r.SecondHalfScoreFirstTeam + r.OvertimeScoreFirstTeam
	r.TotalScoreSecondTeam = r.FirstHalfScoreSecondTeam + r.SecondHalfScoreSecondTeam + r.OvertimeScoreSecondTeam

	mapWinner := -1
	switch {
	case r.TotalScoreFirstTeam > r.TotalScoreSecondTeam:
		mapWinner = 0
	case r.TotalScoreSecondTeam > r.TotalScoreFirstTeam:
		mapWinner = 1
	}

	players := make([]*playerTally, 0, len(c.order))
	for _, id := range c.order {
		players = append(players, c.players[id])
	}
	slices.SortStableFunc(players, func(a, b *playerTally) int {
		if a.group != b.group {
			return cmp.Compare(a.group, b.group)
		}
		return cmp.Compare(a.name, b.name)
	})

	rounds := len(c.winners)
	lines := make([]model.PlayerRoundStat, 0, len(players))
	for _, p := range players {
		line := model.PlayerRoundStat{
			Nickname:     p.name,
			RoundOfMatch: opts.Round,
			Kills:        p.kills,
			Assists:      p.assists,
			Deaths:       p.deaths,
		}
		if p.group == mapWinner {
			line.Result = 1
		}
		if rounds > 0 {
			line.ADR = round1(float64(p.damage) / float64(rounds))
		}
		if p.kills > 0 {
			line.Headshots = round1(float64(p.hsKills) * 100 / float64(p.kills))
		}
		lines = append(lines, line)
	}
	return Result{Map: r, Stats: lines, Rounds: rounds}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
