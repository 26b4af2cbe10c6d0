package store

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"fragportal/internal/model"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]model.User
	news        map[string]model.News
	teams       map[string]model.Team
	players     map[string]model.Player
	matches     map[string]model.Match
	tournaments map[string]model.Tournament
}

// NewMemoryStore returns an empty store, or one filled with demo data when
// seed is set.
func NewMemoryStore(seed bool) *MemoryStore {
	s := &MemoryStore{
		users:       make(map[string]model.User),
		news:        make(map[string]model.News),
		teams:       make(map[string]model.Team),
		players:     make(map[string]model.Player),
		matches:     make(map[string]model.Match),
		tournaments: make(map[string]model.Tournament),
	}
	if seed {
		seedData(s)
	}
	return s
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) ListUsers() ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sortUsers(users)
	return users, nil
}

func (s *MemoryStore) GetUser(id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, notFound("user")
	}
	return u, nil
}

func (s *MemoryStore) GetUserByUsername(username string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return model.User{}, notFound("user")
}

func (s *MemoryStore) CreateUser(user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(user.Username) == "" {
		return model.User{}, errors.New("username is required")
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return model.User{}, ErrDuplicate
		}
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
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryStore) ListNews() ([]model.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	news := make([]model.News, 0, len(s.news))
	for _, n := range s.news {
		news = append(news, n)
	}
	sortNews(news)
	return news, nil
}

func (s *MemoryStore) GetNews(id string) (model.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.news[id]
	if !ok {
		return model.News{}, notFound("news")
	}
	return n, nil
}

func (s *MemoryStore) CreateNews(news model.News) (model.News, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if news.ID == "" {
		news.ID = uuid.NewString()
	}
	if news.CreatedAt.IsZero() {
		news.CreatedAt = time.Now()
	}
	s.news[news.ID] = news
	return news, nil
}

func (s *MemoryStore) UpdateNews(news model.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.news[news.ID]; !ok {
		return notFound("news")
	}
	s.news[news.ID] = news
	return nil
}

func (s *MemoryStore) DeleteNews(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.news[id]; !ok {
		return notFound("news")
	}
	delete(s.news, id)
	return nil
}

func (s *MemoryStore) ListTeams() ([]model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := make([]model.Team, 0, len(s.teams))
	for _, t := range s.teams {
		teams = append(teams, cloneTeam(t))
	}
	sortTeams(teams)
	return teams, nil
}

func (s *MemoryStore) GetTeam(id string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[id]
	if !ok {
		return model.Team{}, notFound("team")
	}
	return cloneTeam(t), nil
}

func (s *MemoryStore) CreateTeam(team model.Team) (model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now()
	}
	team.AverageFaceitElo = 0
	s.teams[team.ID] = cloneTeam(team)
	return team, nil
}

func (s *MemoryStore) UpdateTeam(team model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[team.ID]; !ok {
		return notFound("team")
	}
	team.AverageFaceitElo = 0
	s.teams[team.ID] = cloneTeam(team)
	return nil
}

func (s *MemoryStore) DeleteTeam(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[id]; !ok {
		return notFound("team")
	}
	delete(s.teams, id)
	return nil
}

func (s *MemoryStore) ListPlayers() ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	sortPlayers(players)
	return players, nil
}

func (s *MemoryStore) GetPlayer(id string) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return model.Player{}, notFound("player")
	}
	return p, nil
}

func (s *MemoryStore) CreatePlayer(player model.Player) (model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now()
	}
	s.players[player.ID] = player
	return player, nil
}

func (s *MemoryStore) UpdatePlayer(player model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[player.ID]; !ok {
		return notFound("player")
	}
	s.players[player.ID] = player
	return nil
}

func (s *MemoryStore) DeletePlayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; !ok {
		return notFound("player")
	}
	delete(s.players, id)
	return nil
}

func (s *MemoryStore) ListMatches(filter MatchFilter) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]model.Match, 0)
	for _, m := range s.matches {
		if filter.Accepts(m) {
			matches = append(matches, cloneMatch(m))
		}
	}
	sortMatches(matches)
	return matches, nil
}

func (s *MemoryStore) GetMatch(id string) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return model.Match{}, notFound("match")
	}
	return cloneMatch(m), nil
}

func (s *MemoryStore) CreateMatch(match model.Match) (model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now()
	}
	s.matches[match.ID] = cloneMatch(match)
	return match, nil
}

func (s *MemoryStore) UpdateMatch(match model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[match.ID]; !ok {
		return notFound("match")
	}
	s.matches[match.ID] = cloneMatch(match)
	return nil
}

func (s *MemoryStore) DeleteMatch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[id]; !ok {
		return notFound("match")
	}
	delete(s.matches, id)
	return nil
}

func (s *MemoryStore) ListTournaments() ([]model.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tournaments := make([]model.Tournament, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		tournaments = append(tournaments, cloneTournament(t))
	}
	sortTournaments(tournaments)
	return tournaments, nil
}

func (s *MemoryStore) GetTournament(id string) (model.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tournaments[id]
	if !ok {
		return model.Tournament{}, notFound("tournament")
	}
	return cloneTournament(t), nil
}

func (s *MemoryStore) CreateTournament(tournament model.Tournament) (model.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tournament.ID == "" {
		tournament.ID = uuid.NewString()
	}
	if tournament.CreatedAt.IsZero() {
		tournament.CreatedAt = time.Now()
	}
	s.tournaments[tournament.ID] = cloneTournament(tournament)
	return tournament, nil
}

func (s *MemoryStore) UpdateTournament(tournament model.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tournaments[tournament.ID]; !ok {
		return notFound("tournament")
	}
	s.tournaments[tournament.ID] = cloneTournament(tournament)
	return nil
}

func (s *MemoryStore) DeleteTournament(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tournaments[id]; !ok {
		return notFound("tournament")
	}
	delete(s.tournaments, id)
	return nil
}

// Stored values never share slice backing arrays with callers.

func cloneTeam(t model.Team) model.Team {
	t.PlayerIDs = slices.Clone(t.PlayerIDs)
	return t
}

func cloneMatch(m model.Match) model.Match {
	m.Veto = slices.Clone(m.Veto)
	m.Result = slices.Clone(m.Result)
	m.Stats = slices.Clone(m.Stats)
	return m
}

func cloneTournament(t model.Tournament) model.Tournament {
	t.TeamIDs = slices.Clone(t.TeamIDs)
	t.Results = slices.Clone(t.Results)
	return t
}
