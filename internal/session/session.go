// Package session issues and rotates the access/refresh token pairs behind
// the admin console cookies.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const (
	accessPrefix  = "session:access:"
	refreshPrefix = "session:refresh:"
)

type Tokens struct {
	Access         string
	Refresh        string
	AccessExpires  time.Time
	RefreshExpires time.Time
}

type record struct {
	UserID string `json:"user_id"`
	Pair   string `json:"pair"`
}

type Manager struct {
	kv         KV
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(kv KV, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{kv: kv, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

func (m *Manager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *Manager) Issue(ctx context.Context, userID string) (Tokens, error) {
	now := m.now()
	t := Tokens{
		Access:         uuid.NewString(),
		Refresh:        uuid.NewString(),
		AccessExpires:  now.Add(m.accessTTL),
		RefreshExpires: now.Add(m.refreshTTL),
	}
	if err := m.put(ctx, accessPrefix+t.Access, record{UserID: userID, Pair: t.Refresh}, m.accessTTL); err != nil {
		return Tokens{}, err
	}
	if err := m.put(ctx, refreshPrefix+t.Refresh, record{UserID: userID, Pair: t.Access}, m.refreshTTL); err != nil {
		return Tokens{}, err
	}
	return t, nil
}

// Resolve returns the user behind an access token.
func (m *Manager) Resolve(ctx context.Context, access string) (string, error) {
	rec, err := m.get(ctx, accessPrefix+access)
	if err != nil {
		return "", err
	}
	return rec.UserID, nil
}

// Refresh trades a refresh token for a new pair. The old pair stops working.
func (m *Manager) Refresh(ctx context.Context, refresh string) (Tokens, error) {
	rec, err := m.get(ctx, refreshPrefix+refresh)
	if err != nil {
		return Tokens{}, err
	}
	if err := m.kv.Del(ctx, refreshPrefix+refresh, accessPrefix+rec.Pair); err != nil {
		return Tokens{}, fmt.Errorf("drop old session: %w", err)
	}
	return m.Issue(ctx, rec.UserID)
}

// Revoke ends the session behind either token. Unknown tokens are ignored.
func (m *Manager) Revoke(ctx context.Context, access, refresh string) error {
	keys := []string{}
	if access != "" {
		keys = append(keys, accessPrefix+access)
		if rec, err := m.get(ctx, accessPrefix+access); err == nil {
			keys = append(keys, refreshPrefix+rec.Pair)
		}
	}
	if refresh != "" {
		keys = append(keys, refreshPrefix+refresh)
		if rec, err := m.get(ctx, refreshPrefix+refresh); err == nil {
			keys = append(keys, accessPrefix+rec.Pair)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return m.kv.Del(ctx, keys...)
}

// Close releases the backing store.
func (m *Manager) Close() error {
	return m.kv.Close()
}

func (m *Manager) put(ctx context.Context, key string, rec record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := m.kv.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (m *Manager) get(ctx context.Context, key string) (record, error) {
	if key == accessPrefix || key == refreshPrefix {
		return record{}, ErrInvalidToken
	}
	data, err := m.kv.Get(ctx, key)
	if errors.Is(err, errMissing) {
		return record{}, ErrInvalidToken
	}
	if err != nil {
		return record{}, fmt.Errorf("load session: %w", err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil || rec.UserID == "" {
		return record{}, ErrInvalidToken
	}
	return rec, nil
}
