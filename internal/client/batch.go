package client

import (
	"context"

	"fragportal/internal/model"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// MatchesByID fetches every id concurrently. Lookups that fail are logged and
// left out; the rest keep the order of ids.
func (c *Client) MatchesByID(ctx context.Context, ids []string) []model.Match {
	return fetchAll(ctx, c, "match", ids, func(ctx context.Context, id string) (model.Match, error) {
		view, err := c.GetMatch(ctx, id, ViewQuery{})
		return view.Match, err
	})
}

func (c *Client) TournamentsByID(ctx context.Context, ids []string) []model.Tournament {
	return fetchAll(ctx, c, "tournament", ids, func(ctx context.Context, id string) (model.Tournament, error) {
		view, err := c.GetTournament(ctx, id)
		return view.Tournament, err
	})
}

func fetchAll[T any](ctx context.Context, c *Client, kind string, ids []string, fetch func(context.Context, string) (T, error)) []T {
	results := make([]T, len(ids))
	ok := make([]bool, len(ids))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			v, err := fetch(ctx, id)
			if err != nil {
				c.log.WithError(err).WithFields(logrus.Fields{"kind": kind, "id": id}).Warn("lookup failed")
				return nil
			}
			results[i], ok[i] = v, true
			return nil
		})
	}
	_ = g.Wait()

	out := make([]T, 0, len(ids))
	for i, v := range results {
		if ok[i] {
			out = append(out, v)
		}
	}
	return out
}
