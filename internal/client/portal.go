package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"fragportal/internal/model"
	"fragportal/internal/stats"
)

type MatchQuery struct {
	Team       string
	Tournament string
	Status     model.MatchStatus
	Page       int
	PageSize   int
}

func (q MatchQuery) values() url.Values {
	v := url.Values{}
	setNonEmpty(v, "team", q.Team)
	setNonEmpty(v, "tournament", q.Tournament)
	setNonEmpty(v, "status", string(q.Status))
	setPage(v, q.Page, q.PageSize)
	return v
}

// ViewQuery selects the map tab and sort column of a match page.
type ViewQuery struct {
	Round int
	Sort  stats.SortKey
	Dir   stats.Direction
}

func (q ViewQuery) values() url.Values {
	v := url.Values{}
	if q.Round > 0 {
		v.Set("round", strconv.Itoa(q.Round))
	}
	setNonEmpty(v, "sort", string(q.Sort))
	setNonEmpty(v, "dir", string(q.Dir))
	return v
}

func setNonEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setPage(v url.Values, page, size int) {
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		v.Set("page_size", strconv.Itoa(size))
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, username, password string) (model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodPost, loginPath, nil, credentials{username, password}, &user); err != nil {
		return model.User{}, err
	}
	c.session.setUser(user)
	return user, nil
}

// Logout ends the session on both sides. The local session is cleared even
// when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.Clear()
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, nil, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Load populates the session from the cookies already in the jar. An
// unauthenticated jar is not an error; the session just stays empty.
func (c *Client) Load(ctx context.Context) error {
	user, err := c.Me(ctx)
	switch {
	case errors.Is(err, ErrUnauthorized):
		c.session.Clear()
		return nil
	case err != nil:
		return err
	}
	c.session.setUser(user)
	return nil
}

func (c *Client) ListMatches(ctx context.Context, q MatchQuery) (stats.Page[model.Match], error) {
	var page stats.Page[model.Match]
	err := c.doJSON(ctx, http.MethodGet, "/api/matches", q.values(), nil, &page)
	return page, err
}

func (c *Client) GetMatch(ctx context.Context, id string, q ViewQuery) (stats.MatchView, error) {
	var view stats.MatchView
	err := c.doJSON(ctx, http.MethodGet, "/api/matches/"+url.PathEscape(id), q.values(), nil, &view)
	return view, err
}

func (c *Client) ListTeams(ctx context.Context, page, size int) (stats.Page[model.Team], error) {
	v := url.Values{}
	setPage(v, page, size)
	var out stats.Page[model.Team]
	err := c.doJSON(ctx, http.MethodGet, "/api/teams", v, nil, &out)
	return out, err
}

func (c *Client) GetTeam(ctx context.Context, id string) (stats.TeamView, error) {
	var view stats.TeamView
	err := c.doJSON(ctx, http.MethodGet, "/api/teams/"+url.PathEscape(id), nil, nil, &view)
	return view, err
}

func (c *Client) GetTournament(ctx context.Context, id string) (stats.TournamentView, error) {
	var view stats.TournamentView
	err := c.doJSON(ctx, http.MethodGet, "/api/tournaments/"+url.PathEscape(id), nil, nil, &view)
	return view, err
}

func (c *Client) Leaderboard(ctx context.Context, key stats.SortKey, dir stats.Direction, page, size int) (stats.Page[stats.PlayerCareer], error) {
	v := url.Values{}
	setNonEmpty(v, "sort", string(key))
	setNonEmpty(v, "dir", string(dir))
	setPage(v, page, size)
	var out stats.Page[stats.PlayerCareer]
	err := c.doJSON(ctx, http.MethodGet, "/api/players/leaderboard", v, nil, &out)
	return out, err
}
