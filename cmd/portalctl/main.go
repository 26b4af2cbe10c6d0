// Command portalctl reads the portal API from a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"fragportal/internal/client"
	"fragportal/internal/model"
	"fragportal/internal/stats"

	log "github.com/sirupsen/logrus"
)

const usage = `usage: portalctl [-url URL] <command> [flags]

commands:
  matches      list matches (-team, -tournament, -status, -page, -size)
  match ID     show one match (-round, -sort, -dir)
  team ID      show a team with its recent series
  tournaments ID...  show several tournaments
  leaderboard  player leaderboard (-sort, -dir, -page, -size)
  login        check credentials (-user, -pass)
`

func main() {
	base := flag.String("url", envOr("PORTAL_URL", "http://localhost:8080"), "portal base url")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(*base, client.NewSession(), client.WithLogger(log.StandardLogger()))
	if err := run(ctx, c, os.Stdout, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.WithError(err).Error("portalctl failed")
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func run(ctx context.Context, c *client.Client, out io.Writer, cmd string, args []string) error {
	switch cmd {
	case "matches":
		return listMatches(ctx, c, out, args)
	case "match":
		return showMatch(ctx, c, out, args)
	case "team":
		return showTeam(ctx, c, out, args)
	case "tournaments":
		return showTournaments(ctx, c, out, args)
	case "leaderboard":
		return showLeaderboard(ctx, c, out, args)
	case "login":
		return login(ctx, c, out, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func listMatches(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("matches", flag.ContinueOnError)
	var q client.MatchQuery
	var status string
	fs.StringVar(&q.Team, "team", "", "team id")
	fs.StringVar(&q.Tournament, "tournament", "", "tournament id")
	fs.StringVar(&status, "status", "", "upcoming, live or finished")
	fs.IntVar(&q.Page, "page", 1, "page")
	fs.IntVar(&q.PageSize, "size", 10, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q.Status = model.MatchStatus(status)

	page, err := c.ListMatches(ctx, q)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTATUS\tFORMAT\tSCORE")
	for _, m := range page.Items {
		score := stats.ComputeSeriesScore(m.Result)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d:%d\n", m.ID, m.Date.Format(time.DateTime), m.Status, m.Format, score.WinsFirstTeam, score.WinsSecondTeam)
	}
	fmt.Fprintf(w, "\npage %d/%d (%d total)\n", page.Page, page.TotalPages, page.Total)
	return w.Flush()
}

func showMatch(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	round := fs.Int("round", 0, "map number, 0 for the first played")
	sortBy := fs.String("sort", "", "Kills, Assists, Deaths, K/D, ADR or Headshots %")
	dir := fs.String("dir", "desc", "asc or desc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("match needs exactly one id")
	}

	var state stats.SortState
	if *sortBy != "" {
		key, err := stats.ParseSortKey(*sortBy)
		if err != nil {
			return err
		}
		d, err := stats.ParseDirection(*dir)
		if err != nil {
			return err
		}
		state = stats.SortState{Key: key, Direction: d}
	}

	view, err := c.GetMatch(ctx, fs.Arg(0), client.ViewQuery{Round: *round})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s vs %s  %d:%d", view.Match.Teams[0], view.Match.Teams[1], view.Score.WinsFirstTeam, view.Score.WinsSecondTeam)
	if view.Decided {
		fmt.Fprintf(out, "  winner %s", view.Winner)
	}
	fmt.Fprintln(out)
	if view.Map != nil {
		fmt.Fprintf(out, "map %d %s  %d:%d\n", view.Round, view.Map.Map, view.Map.TotalScoreFirstTeam, view.Map.TotalScoreSecondTeam)
	}
	// Sorted client side.
	printLines(out, "winners", state.Apply(rawLines(view.Winners)))
	printLines(out, "losers", state.Apply(rawLines(view.Losers)))
	return nil
}

func rawLines(lines []stats.StatLine) []model.PlayerRoundStat {
	out := make([]model.PlayerRoundStat, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.PlayerRoundStat)
	}
	return out
}

func printLines(out io.Writer, title string, lines []model.PlayerRoundStat) {
	fmt.Fprintf(out, "\n%s\n", title)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYER\tK\tA\tD\tK/D\tADR\tHS%")
	for _, s := range lines {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%.1f\t%.1f\n", s.Nickname, s.Kills, s.Assists, s.Deaths, stats.FormatKD(stats.KD(s)), s.ADR, s.Headshots)
	}
	_ = w.Flush()
}

func showTeam(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.New("team needs exactly one id")
	}
	view, err := c.GetTeam(ctx, args[0])
	if err != nil {
		return err
	}
	r := view.Record
	fmt.Fprintf(out, "%s (%s)  elo %.0f\n", view.Team.Name, view.Team.Country, view.Team.AverageFaceitElo)
	fmt.Fprintf(out, "series %d-%d-%d  maps %d-%d\n\n", r.Wins, r.Draws, r.Losses, r.MapsWon, r.MapsLost)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYER\tNAME\tELO")
	for _, p := range view.Roster {
		fmt.Fprintf(w, "%s\t%s\t%d\n", p.Nickname, p.FullName(), p.FaceitElo)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "MATCH\tDATE\tSCORE\tRESULT")
	for _, m := range c.MatchesByID(ctx, view.Matches) {
		score := stats.ComputeSeriesScore(m.Result)
		result := "-"
		if winner, ok := stats.SeriesWinner(m.Teams, score); ok {
			result = "L"
			if winner == view.Team.ID {
				result = "W"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d:%d\t%s\n", m.ID, m.Date.Format(time.DateOnly), score.WinsFirstTeam, score.WinsSecondTeam, result)
	}
	return w.Flush()
}

func showTournaments(ctx context.Context, c *client.Client, out io.Writer, ids []string) error {
	if len(ids) == 0 {
		return errors.New("tournaments needs at least one id")
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLOCATION\tSTATUS\tDATES")
	for _, t := range c.TournamentsByID(ctx, ids) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s - %s\n", t.ID, t.Name, t.Location, t.Status, t.StartDate.Format(time.DateOnly), t.EndDate.Format(time.DateOnly))
	}
	return w.Flush()
}

func showLeaderboard(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("leaderboard", flag.ContinueOnError)
	sortBy := fs.String("sort", string(stats.SortKD), "sort column")
	dir := fs.String("dir", "desc", "asc or desc")
	page := fs.Int("page", 1, "page")
	size := fs.Int("size", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	key, err := stats.ParseSortKey(*sortBy)
	if err != nil {
		return err
	}
	d, err := stats.ParseDirection(*dir)
	if err != nil {
		return err
	}

	board, err := c.Leaderboard(ctx, key, d, *page, *size)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPLAYER\tMAPS\tK\tA\tD\tK/D\tADR\tHS%")
	for i, p := range board.Items {
		rank := (board.Page-1)*board.PageSize + i + 1
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%s\t%.1f\t%.1f\n", rank, p.Nickname, p.Maps, p.Kills, p.Assists, p.Deaths, stats.FormatKD(p.KD), p.ADR, p.Headshots)
	}
	fmt.Fprintf(w, "\npage %d/%d\n", board.Page, board.TotalPages)
	return w.Flush()
}

func login(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	user := fs.String("user", os.Getenv("PORTAL_USER"), "username")
	pass := fs.String("pass", os.Getenv("PORTAL_PASSWORD"), "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := c.Login(ctx, *user, *pass)
	if err != nil {
		return err
	}
	defer func() { _ = c.Logout(ctx) }()
	fmt.Fprintf(out, "signed in as %s (%s)\n", u.Username, u.Role)
	return nil
}
