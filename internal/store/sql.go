package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fragportal/internal/model"

	"github.com/google/uuid"
)

// SQLStore backs Store with database/sql. SQLite and Postgres share the
// statements; queries are written with ? and rebound for Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(query string, args ...any) (sql.Result, error) {
	return s.db.Exec(s.rebind(query), args...)
}

func (s *SQLStore) query(query string, args ...any) (*sql.Rows, error) {
	return s.db.Query(s.rebind(query), args...)
}

func (s *SQLStore) queryRow(query string, args ...any) *sql.Row {
	return s.db.QueryRow(s.rebind(query), args...)
}

func (s *SQLStore) execAffecting(entity, query string, args ...any) error {
	res, err := s.exec(query, args...)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return notFound(entity)
	}
	return nil
}

// listRows runs a multi-row query and scans every row. Any failure, a bad
// row included, fails the whole read.
func listRows[T any](s *SQLStore, entity string, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := s.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", entity, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}
	return out, nil
}

func getRow[T any](s *SQLStore, entity string, scan func(scanner) (T, error), query string, args ...any) (T, error) {
	var zero T
	v, err := scan(s.queryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, notFound(entity)
	}
	if err != nil {
		return zero, fmt.Errorf("get %s: %w", entity, err)
	}
	return v, nil
}

const userColumns = `id, username, password_hash, role, created_at`

func (s *SQLStore) ListUsers() ([]model.User, error) {
	users, err := listRows(s, "user", scanUserRow, `SELECT `+userColumns+` FROM users`)
	if err != nil {
		return nil, err
	}
	sortUsers(users)
	return users, nil
}

func (s *SQLStore) GetUser(id string) (model.User, error) {
	return getRow(s, "user", scanUserRow, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (s *SQLStore) GetUserByUsername(username string) (model.User, error) {
	return getRow(s, "user", scanUserRow, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower(?) LIMIT 1`, username)
}

func (s *SQLStore) CreateUser(user model.User) (model.User, error) {
	if strings.TrimSpace(user.Username) == "" {
		return model.User{}, errors.New("username is required")
	}
	switch _, err := s.GetUserByUsername(user.Username); {
	case err == nil:
		return model.User{}, ErrDuplicate
	case !errors.Is(err, ErrNotFound):
		return model.User{}, err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = model.RoleAdmin
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, err := s.exec(`INSERT INTO users (id, username, password_hash, role, created_at) VALUES (?,?,?,?,?)`,
		user.ID, user.Username, user.PasswordHash, string(user.Role), timeValueString(user.CreatedAt),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return model.User{}, ErrDuplicate
		}
		return model.User{}, err
	}
	return user, nil
}

const newsColumns = `id, title, body, author, image_url, created_at`

func (s *SQLStore) ListNews() ([]model.News, error) {
	news, err := listRows(s, "news", scanNewsRow, `SELECT `+newsColumns+` FROM news`)
	if err != nil {
		return nil, err
	}
	sortNews(news)
	return news, nil
}

func (s *SQLStore) GetNews(id string) (model.News, error) {
	return getRow(s, "news", scanNewsRow, `SELECT `+newsColumns+` FROM news WHERE id = ?`, id)
}

func (s *SQLStore) CreateNews(news model.News) (model.News, error) {
	if news.ID == "" {
		news.ID = uuid.NewString()
	}
	if news.CreatedAt.IsZero() {
		news.CreatedAt = time.Now()
	}
	_, err := s.exec(`INSERT INTO news (id, title, body, author, image_url, created_at) VALUES (?,?,?,?,?,?)`,
		news.ID, news.Title, news.Body, news.Author, news.ImageURL, timeValueString(news.CreatedAt),
	)
	if err != nil {
		return model.News{}, err
	}
	return news, nil
}

func (s *SQLStore) UpdateNews(news model.News) error {
	return s.execAffecting("news", `UPDATE news SET title = ?, body = ?, author = ?, image_url = ?, created_at = ? WHERE id = ?`,
		news.Title, news.Body, news.Author, news.ImageURL, timeValueString(news.CreatedAt), news.ID,
	)
}

func (s *SQLStore) DeleteNews(id string) error {
	return s.execAffecting("news", `DELETE FROM news WHERE id = ?`, id)
}

const teamColumns = `id, name, country, logo_url, player_ids, created_at`

func (s *SQLStore) ListTeams() ([]model.Team, error) {
	teams, err := listRows(s, "team", scanTeamRow, `SELECT `+teamColumns+` FROM teams`)
	if err != nil {
		return nil, err
	}
	sortTeams(teams)
	return teams, nil
}

func (s *SQLStore) GetTeam(id string) (model.Team, error) {
	return getRow(s, "team", scanTeamRow, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id)
}

func (s *SQLStore) CreateTeam(team model.Team) (model.Team, error) {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now()
	}
	team.AverageFaceitElo = 0
	_, err := s.exec(`INSERT INTO teams (id, name, country, logo_url, player_ids, created_at) VALUES (?,?,?,?,?,?)`,
		team.ID, team.Name, team.Country, team.LogoURL, string(toJSON(team.PlayerIDs)), timeValueString(team.CreatedAt),
	)
	if err != nil {
		return model.Team{}, err
	}
	return team, nil
}

func (s *SQLStore) UpdateTeam(team model.Team) error {
	return s.execAffecting("team", `UPDATE teams SET name = ?, country = ?, logo_url = ?, player_ids = ?, created_at = ? WHERE id = ?`,
		team.Name, team.Country, team.LogoURL, string(toJSON(team.PlayerIDs)), timeValueString(team.CreatedAt), team.ID,
	)
}

func (s *SQLStore) DeleteTeam(id string) error {
	return s.execAffecting("team", `DELETE FROM teams WHERE id = ?`, id)
}

const playerColumns = `id, nickname, first_name, last_name, country, team_id, faceit_elo, photo_url, created_at`

func (s *SQLStore) ListPlayers() ([]model.Player, error) {
	players, err := listRows(s, "player", scanPlayerRow, `SELECT `+playerColumns+` FROM players`)
	if err != nil {
		return nil, err
	}
	sortPlayers(players)
	return players, nil
}

func (s *SQLStore) GetPlayer(id string) (model.Player, error) {
	return getRow(s, "player", scanPlayerRow, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
}

func (s *SQLStore) CreatePlayer(player model.Player) (model.Player, error) {
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now()
	}
	_, err := s.exec(`INSERT INTO players (id, nickname, first_name, last_name, country, team_id, faceit_elo, photo_url, created_at) VALUES (?,?,?,?,?,?,?,?,?)`,
		player.ID, player.Nickname, player.FirstName, player.LastName, player.Country, player.TeamID, player.FaceitElo, player.PhotoURL, timeValueString(player.CreatedAt),
	)
	if err != nil {
		return model.Player{}, err
	}
	return player, nil
}

func (s *SQLStore) UpdatePlayer(player model.Player) error {
	return s.execAffecting("player", `UPDATE players SET nickname = ?, first_name = ?, last_name = ?, country = ?, team_id = ?, faceit_elo = ?, photo_url = ?, created_at = ? WHERE id = ?`,
		player.Nickname, player.FirstName, player.LastName, player.Country, player.TeamID, player.FaceitElo, player.PhotoURL, timeValueString(player.CreatedAt), player.ID,
	)
}

func (s *SQLStore) DeletePlayer(id string) error {
	return s.execAffecting("player", `DELETE FROM players WHERE id = ?`, id)
}

const matchColumns = `id, team_a_id, team_b_id, tournament_id, format, status, date, veto_json, result_json, stats_json, created_at`

func (s *SQLStore) ListMatches(filter MatchFilter) ([]model.Match, error) {
	where := []string{}
	args := []any{}
	if filter.TeamID != "" {
		where = append(where, `(team_a_id = ? OR team_b_id = ?)`)
		args = append(args, filter.TeamID, filter.TeamID)
	}
	if filter.TournamentID != "" {
		where = append(where, `tournament_id = ?`)
		args = append(args, filter.TournamentID)
	}
	if filter.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, string(filter.Status))
	}
	q := `SELECT ` + matchColumns + ` FROM matches`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	matches, err := listRows(s, "match", scanMatchRow, q, args...)
	if err != nil {
		return nil, err
	}
	sortMatches(matches)
	return matches, nil
}

func (s *SQLStore) GetMatch(id string) (model.Match, error) {
	return getRow(s, "match", scanMatchRow, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
}

func (s *SQLStore) CreateMatch(match model.Match) (model.Match, error) {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now()
	}
	_, err := s.exec(`INSERT INTO matches (id, team_a_id, team_b_id, tournament_id, format, status, date, veto_json, result_json, stats_json, created_at) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		match.ID, match.Teams[0], match.Teams[1], match.TournamentID, string(match.Format), string(match.Status), timeValueString(match.Date),
		string(toJSON(match.Veto)), string(toJSON(match.Result)), string(toJSON(match.Stats)), timeValueString(match.CreatedAt),
	)
	if err != nil {
		return model.Match{}, err
	}
	return match, nil
}

func (s *SQLStore) UpdateMatch(match model.Match) error {
	return s.execAffecting("match", `UPDATE matches SET team_a_id = ?, team_b_id = ?, tournament_id = ?, format = ?, status = ?, date = ?, veto_json = ?, result_json = ?, stats_json = ?, created_at = ? WHERE id = ?`,
		match.Teams[0], match.Teams[1], match.TournamentID, string(match.Format), string(match.Status), timeValueString(match.Date),
		string(toJSON(match.Veto)), string(toJSON(match.Result)), string(toJSON(match.Stats)), timeValueString(match.CreatedAt), match.ID,
	)
}

func (s *SQLStore) DeleteMatch(id string) error {
	return s.execAffecting("match", `DELETE FROM matches WHERE id = ?`, id)
}

const tournamentColumns = `id, name, location, prize_pool, team_ids, results_json, start_date, end_date, status, created_at`

func (s *SQLStore) ListTournaments() ([]model.Tournament, error) {
	tournaments, err := listRows(s, "tournament", scanTournamentRow, `SELECT `+tournamentColumns+` FROM tournaments`)
	if err != nil {
		return nil, err
	}
	sortTournaments(tournaments)
	return tournaments, nil
}

func (s *SQLStore) GetTournament(id string) (model.Tournament, error) {
	return getRow(s, "tournament", scanTournamentRow, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = ?`, id)
}

func (s *SQLStore) CreateTournament(tournament model.Tournament) (model.Tournament, error) {
	if tournament.ID == "" {
		tournament.ID = uuid.NewString()
	}
	if tournament.CreatedAt.IsZero() {
		tournament.CreatedAt = time.Now()
	}
	_, err := s.exec(`INSERT INTO tournaments (id, name, location, prize_pool, team_ids, results_json, start_date, end_date, status, created_at) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		tournament.ID, tournament.Name, tournament.Location, tournament.PrizePool, string(toJSON(tournament.TeamIDs)), string(toJSON(tournament.Results)),
		timeValueString(tournament.StartDate), timeValueString(tournament.EndDate), string(tournament.Status), timeValueString(tournament.CreatedAt),
	)
	if err != nil {
		return model.Tournament{}, err
	}
	return tournament, nil
}

func (s *SQLStore) UpdateTournament(tournament model.Tournament) error {
	return s.execAffecting("tournament", `UPDATE tournaments SET name = ?, location = ?, prize_pool = ?, team_ids = ?, results_json = ?, start_date = ?, end_date = ?, status = ?, created_at = ? WHERE id = ?`,
		tournament.Name, tournament.Location, tournament.PrizePool, string(toJSON(tournament.TeamIDs)), string(toJSON(tournament.Results)),
		timeValueString(tournament.StartDate), timeValueString(tournament.EndDate), string(tournament.Status), timeValueString(tournament.CreatedAt), tournament.ID,
	)
}

func (s *SQLStore) DeleteTournament(id string) error {
	return s.execAffecting("tournament", `DELETE FROM tournaments WHERE id = ?`, id)
}

type scanner interface{ Scan(dest ...any) error }

func scanUserRow(row scanner) (model.User, error) {
	var u model.User
	var role string
	var createdAt sql.NullString
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &createdAt); err != nil {
		return model.User{}, err
	}
	u.Role = model.UserRole(role)
	u.CreatedAt = nullTime(createdAt)
	return u, nil
}

func scanNewsRow(row scanner) (model.News, error) {
	var n model.News
	var createdAt sql.NullString
	if err := row.Scan(&n.ID, &n.Title, &n.Body, &n.Author, &n.ImageURL, &createdAt); err != nil {
		return model.News{}, err
	}
	n.CreatedAt = nullTime(createdAt)
	return n, nil
}

func scanTeamRow(row scanner) (model.Team, error) {
	var t model.Team
	var playerJSON, createdAt sql.NullString
	if err := row.Scan(&t.ID, &t.Name, &t.Country, &t.LogoURL, &playerJSON, &createdAt); err != nil {
		return model.Team{}, err
	}
	if err := fromJSON("player_ids", playerJSON, &t.PlayerIDs); err != nil {
		return model.Team{}, err
	}
	t.CreatedAt = nullTime(createdAt)
	return t, nil
}

func scanPlayerRow(row scanner) (model.Player, error) {
	var p model.Player
	var createdAt sql.NullString
	if err := row.Scan(&p.ID, &p.Nickname, &p.FirstName, &p.LastName, &p.Country, &p.TeamID, &p.FaceitElo, &p.PhotoURL, &createdAt); err != nil {
		return model.Player{}, err
	}
	p.CreatedAt = nullTime(createdAt)
	return p, nil
}

func scanMatchRow(row scanner) (model.Match, error) {
	var m model.Match
	var format, status string
	var date, vetoJSON, resultJSON, statsJSON, createdAt sql.NullString
	if err := row.Scan(
		&m.ID,
		&m.Teams[0],
		&m.Teams[1],
		&m.TournamentID,
		&format,
		&status,
		&date,
		&vetoJSON,
		&resultJSON,
		&statsJSON,
		&createdAt,
	); err != nil {
		return model.Match{}, err
	}
	m.Format = model.MatchFormat(format)
	m.Status = model.MatchStatus(status)
	m.Date = nullTime(date)
	m.CreatedAt = nullTime(createdAt)
	for _, col := range []struct {
		name string
		raw  sql.NullString
		dest any
	}{
		{"veto_json", vetoJSON, &m.Veto},
		{"result_json", resultJSON, &m.Result},
		{"stats_json", statsJSON, &m.Stats},
	} {
		if err := fromJSON(col.name, col.raw, col.dest); err != nil {
			return model.Match{}, err
		}
	}
	return m, nil
}

func scanTournamentRow(row scanner) (model.Tournament, error) {
	var t model.Tournament
	var status string
	var teamJSON, resultsJSON, startDate, endDate, createdAt sql.NullString
	if err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Location,
		&t.PrizePool,
		&teamJSON,
		&resultsJSON,
		&startDate,
		&endDate,
		&status,
		&createdAt,
	); err != nil {
		return model.Tournament{}, err
	}
	t.Status = model.TournamentStatus(status)
	t.StartDate = nullTime(startDate)
	t.EndDate = nullTime(endDate)
	t.CreatedAt = nullTime(createdAt)
	if err := fromJSON("team_ids", teamJSON, &t.TeamIDs); err != nil {
		return model.Tournament{}, err
	}
	if err := fromJSON("results_json", resultsJSON, &t.Results); err != nil {
		return model.Tournament{}, err
	}
	return t, nil
}

func toJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return data
}

func fromJSON(column string, raw sql.NullString, dest any) error {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw.String), dest); err != nil {
		return fmt.Errorf("decode %s: %w", column, err)
	}
	return nil
}

func nullTime(raw sql.NullString) time.Time {
	if !raw.Valid {
		return time.Time{}
	}
	parsed, _ := parseTimeString(raw.String)
	return parsed
}

func timeValueString(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}
