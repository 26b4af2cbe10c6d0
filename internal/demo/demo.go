// Package demo turns a CS2 demo file into the map score and per-player stat
// lines the portal stores on a match.
package demo

import (
	"errors"
	"fmt"
	"io"

	"fragportal/internal/model"

	demoinfocs "github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs"
	"github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs/common"
	"github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs/events"
)

const DefaultHalfLength = 12

var ErrNoRounds = errors.New("demo contains no finished rounds")

type Options struct {
	// HalfLength is the number of regulation rounds per half.
	HalfLength int
	// Round is the map number inside the series.
	Round      int
	Map        string
	FirstTeam  string
	SecondTeam string
	// FirstRoster optionally lists FirstTeam's nicknames. When given, the
	// side group sharing more names with it becomes FirstTeam; otherwise
	// FirstTeam is the side that started as CT.
	FirstRoster []string
}

type Result struct {
	Map    model.MapResult
	Stats  []model.PlayerRoundStat
	Rounds int
}

func Parse(r io.Reader, opts Options) (Result, error) {
	p := demoinfocs.NewParser(r)
	defer p.Close()

	c := newCollector()
	live := func() bool {
		gs := p.GameState()
		return gs.IsMatchStarted() && !gs.IsWarmupPeriod()
	}
	track := func(pl *common.Player) *playerTally {
		if pl == nil || pl.IsBot {
			return nil
		}
		return c.see(pl.SteamID64, pl.Name, pl.Team == common.TeamCounterTerrorists)
	}

	p.RegisterEventHandler(func(events.MatchStart) {
		c.reset()
	})
	p.RegisterEventHandler(func(e events.Kill) {
		if !live() {
			return
		}
		c.kill(track(e.Killer), track(e.Victim), track(e.Assister), e.IsHeadshot)
	})
	p.RegisterEventHandler(func(e events.PlayerHurt) {
		if !live() {
			return
		}
		c.hurt(track(e.Attacker), track(e.Player), e.HealthDamageTaken)
	})
	p.RegisterEventHandler(func(e events.RoundEnd) {
		if !live() || e.WinnerState == nil {
			return
		}
		if e.Winner != common.TeamCounterTerrorists && e.Winner != common.TeamTerrorists {
			return
		}
		var ids []uint64
		for _, pl := range e.WinnerState.Members() {
			if t := track(pl); t != nil {
				ids = append(ids, t.id)
			}
		}
		c.roundEnd(ids)
	})

	err := p.ParseToEnd()
	if err != nil && !errors.Is(err, demoinfocs.ErrUnexpectedEndOfDemo) {
		return Result{}, fmt.Errorf("parse demo: %w", err)
	}
	if len(c.winners) == 0 {
		return Result{}, ErrNoRounds
	}

	if len(opts.FirstRoster) > 0 {
		if n := c.groupOverlap(opts.FirstRoster); n[1] > n[0] {
			c.swapGroups()
		}
	}
	return c.result(opts), nil
}
