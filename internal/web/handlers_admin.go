package web

import (
	"context"
	"net/http"
	"time"

	"fragportal/internal/live"
	"fragportal/internal/model"

	"github.com/go-chi/chi/v5"
)

const announceTimeout = 10 * time.Second

func (s *Server) publish(t live.EventType, entity, id string, payload any) {
	if s.live == nil {
		return
	}
	s.live.Publish(live.Event{Type: t, Entity: entity, ID: id, Payload: payload})
}

// notify runs fn detached from the request so a slow webhook never holds
// up the response, unless SyncAnnouncements is set.
func (s *Server) notify(r *http.Request, what string, fn func(context.Context) error) {
	ctx := context.WithoutCancel(r.Context())
	send := func() {
		ctx, cancel := context.WithTimeout(ctx, announceTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.WithError(err).WithField("announcement", what).Warn("announcement failed")
		}
	}
	if s.opts.SyncAnnouncements {
		send()
		return
	}
	go send()
}

// teamNames falls back to the bare id when a team cannot be read.
func (s *Server) teamNames(m model.Match) map[string]string {
	names := map[string]string{}
	for _, id := range m.Teams {
		t, err := s.store.GetTeam(id)
		if err != nil {
			s.log.WithError(err).WithField("team", id).Warn("resolve team name")
			continue
		}
		names[id] = t.Name
	}
	return names
}

func (s *Server) handleNewsCreate(w http.ResponseWriter, r *http.Request) {
	var n model.News
	if err := decodeJSON(w, r, &n); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateNews(&n); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	if n.Author == "" {
		u, _ := currentUser(r)
		n.Author = u.Username
	}
	n.ID, n.CreatedAt = "", time.Time{}
	created, err := s.store.CreateNews(n)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.publish(live.EventCreated, "news", created.ID, created)
	s.notify(r, "news", func(ctx context.Context) error { return s.announcer.NewsPublished(ctx, created) })
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleNewsUpdate(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetNews(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	var n model.News
	if err := decodeJSON(w, r, &n); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateNews(&n); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	n.ID, n.CreatedAt = existing.ID, existing.CreatedAt
	if n.Author == "" {
		n.Author = existing.Author
	}
	if err := s.store.UpdateNews(n); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.publish(live.EventUpdated, "news", n.ID, n)
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleNewsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteNews(id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.publish(live.EventDeleted, "news", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTeamCreate(w http.ResponseWriter, r *http.Request) {
	var t model.Team
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validateTeam(&t); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	t.ID, t.CreatedAt = "", time.Time{}
	created, err := s.store.CreateTeam(t)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.claimPlayers(created)
	s.publish(live.EventCreated, "team", created.ID, created)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTeamUpdate(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetTeam(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	var t model.Team
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validateTeam(&t); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	t.ID, t.CreatedAt = existing.ID, existing.CreatedAt
	if err := s.store.UpdateTeam(t); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.claimPlayers(t)
	s.publish(live.EventUpdated, "team", t.ID, t)
	writeJSON(w, http.StatusOK, t)
}

// handleTeamDelete also unlinks the roster so no player points at a team
// that no longer exists.
func (s *Server) handleTeamDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteTeam(id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	players, err := s.store.ListPlayers()
	if err != nil {
		s.log.WithError(err).WithField("team", id).Warn("list players to unlink")
	}
	for _, p := range players {
		if p.TeamID != id {
			continue
		}
		p.TeamID = ""
		if err := s.store.UpdatePlayer(p); err != nil {
			s.log.WithError(err).WithField("player", p.ID).Warn("unlink player from deleted team")
		}
	}
	s.publish(live.EventDeleted, "team", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlayerCreate(w http.ResponseWriter, r *http.Request) {
	var p model.Player
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validatePlayer(&p); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	p.ID, p.CreatedAt = "", time.Time{}
	created, err := s.store.CreatePlayer(p)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.syncRoster(created, "")
	s.publish(live.EventCreated, "player", created.ID, created)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePlayerUpdate(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetPlayer(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	var p model.Player
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validatePlayer(&p); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	p.ID, p.CreatedAt = existing.ID, existing.CreatedAt
	if err := s.store.UpdatePlayer(p); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.syncRoster(p, existing.TeamID)
	s.publish(live.EventUpdated, "player", p.ID, p)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePlayerDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := s.store.GetPlayer(id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if err := s.store.DeletePlayer(id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	previousTeam := existing.TeamID
	existing.TeamID = ""
	s.syncRoster(existing, previousTeam)
	s.publish(live.EventDeleted, "player", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
