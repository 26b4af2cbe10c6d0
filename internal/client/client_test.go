package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fragportal/internal/client"
	"fragportal/internal/model"
	"fragportal/internal/stats"

	"github.com/sirupsen/logrus/hooks/test"
)

// fakePortal mimics the auth cookie flow: "fresh" access cookies are
// accepted, "stale" ones are rejected until refreshed.
type fakePortal struct {
	refreshes   atomic.Int32
	refreshOK   bool
	protected   bool
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakePortal) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "fp_access", Value: "fresh", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "fp_refresh", Value: "r1", Path: "/api/auth"})
		writeJSON(w, model.User{ID: "u1", Username: body.Username, Role: model.RoleAdmin})
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshes.Add(1)
		if !f.refreshOK {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "fp_access", Value: "fresh", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("fp_access")
		if err != nil || c.Value != "fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, model.User{ID: "u1", Username: "admin", Role: model.RoleAdmin})
	})
	mux.HandleFunc("GET /api/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
		n := f.inFlight.Add(1)
		defer f.inFlight.Add(-1)
		for {
			m := f.maxInFlight.Load()
			if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)

		if c, err := r.Cookie("fp_access"); f.protected && (err != nil || c.Value != "fresh") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := r.PathValue("id")
		switch {
		case id == "missing":
			http.Error(w, `{"error":"match not found"}`, http.StatusNotFound)
		case id == "boom":
			http.Error(w, `{"error":"store down"}`, http.StatusInternalServerError)
		default:
			writeJSON(w, stats.MatchView{Match: model.Match{ID: id}, Round: 1})
		}
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, f *fakePortal, opts ...client.Option) (*client.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	logger, _ := test.NewNullLogger()
	opts = append([]client.Option{client.WithLogger(logger)}, opts...)
	return client.New(srv.URL, client.NewSession(), opts...), srv
}

func TestClient_LoginPopulatesSession(t *testing.T) {
	c, _ := newClient(t, &fakePortal{})
	ctx := context.Background()

	if _, err := c.Login(ctx, "admin", "wrong"); !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized for bad password, got %v", err)
	}
	if c.Session().IsAuthenticated() {
		t.Fatal("Expected no user after failed login")
	}

	user, err := c.Login(ctx, "admin", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if cached, ok := c.Session().User(); !ok || cached.ID != user.ID {
		t.Errorf("Expected cached user %s, got %+v", user.ID, cached)
	}
	if _, err := c.Me(ctx); err != nil {
		t.Errorf("Expected cookie to authenticate Me, got %v", err)
	}
}

func TestClient_RefreshesOnceOn401(t *testing.T) {
	f := &fakePortal{refreshOK: true}
	c, srv := newClient(t, f)
	ctx := context.Background()

	// Start with a stale access cookie.
	u, _ := url.Parse(srv.URL)
	c.Session().SetCookies(u, []*http.Cookie{{Name: "fp_access", Value: "stale", Path: "/"}})

	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f.refreshes.Load() != 1 {
		t.Errorf("Expected 1 refresh, got %d", f.refreshes.Load())
	}
	if !c.Session().IsAuthenticated() {
		t.Error("Expected session to be populated after refresh")
	}
}

func TestClient_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	f := &fakePortal{refreshOK: true, protected: true}
	c, srv := newClient(t, f, client.WithConcurrency(4))
	ctx := context.Background()

	u, _ := url.Parse(srv.URL)
	c.Session().SetCookies(u, []*http.Cookie{{Name: "fp_access", Value: "stale", Path: "/"}})

	ids := []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8"}
	got := c.MatchesByID(ctx, ids)
	if len(got) != len(ids) {
		t.Errorf("Expected %d matches, got %d", len(ids), len(got))
	}
	if f.refreshes.Load() != 1 {
		t.Errorf("Expected 1 refresh, got %d", f.refreshes.Load())
	}
}

func TestClient_FailedRefreshClearsSession(t *testing.T) {
	f := &fakePortal{refreshOK: false}
	c, _ := newClient(t, f)
	ctx := context.Background()

	if _, err := c.Me(ctx); !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
	if f.refreshes.Load() != 1 {
		t.Errorf("Expected exactly one refresh attempt, got %d", f.refreshes.Load())
	}
	if err := c.Load(ctx); err != nil {
		t.Errorf("Expected Load to swallow unauthenticated state, got %v", err)
	}
	if c.Session().IsAuthenticated() {
		t.Error("Expected empty session")
	}
}

func TestClient_LogoutClearsSession(t *testing.T) {
	c, _ := newClient(t, &fakePortal{})
	ctx := context.Background()
	if _, err := c.Login(ctx, "admin", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if c.Session().IsAuthenticated() {
		t.Error("Expected session to be cleared")
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	c, _ := newClient(t, &fakePortal{})
	ctx := context.Background()

	if _, err := c.GetMatch(ctx, "missing", client.ViewQuery{}); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	_, err := c.GetMatch(ctx, "boom", client.ViewQuery{})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("Expected APIError 500, got %v", err)
	}
	if !strings.Contains(apiErr.Body, "store down") {
		t.Errorf("Expected body to be kept, got %q", apiErr.Body)
	}
}

func TestClient_HonoursRetryAfter(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		if got := r.URL.Query().Get("sort"); got != "K/D" {
			t.Errorf("Expected sort=K/D, got %q", got)
		}
		writeJSON(w, stats.Page[stats.PlayerCareer]{Items: []stats.PlayerCareer{{Nickname: "ropz"}}, Page: 1, Total: 1})
	}))
	defer srv.Close()

	c := client.New(srv.URL, nil)
	page, err := c.Leaderboard(context.Background(), stats.SortKD, stats.Descending, 1, 10)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if calls != 2 || len(page.Items) != 1 {
		t.Errorf("Expected one retry and one item, got %d calls and %+v", calls, page)
	}
}

func TestClient_MatchesByIDIsolatesFailures(t *testing.T) {
	f := &fakePortal{}
	c, _ := newClient(t, f, client.WithConcurrency(2))

	ids := []string{"a", "missing", "b", "boom", "c", "d"}
	got := c.MatchesByID(context.Background(), ids)

	var order []string
	for _, m := range got {
		order = append(order, m.ID)
	}
	if strings.Join(order, ",") != "a,b,c,d" {
		t.Errorf("Expected a,b,c,d in request order, got %v", order)
	}
	if peak := f.maxInFlight.Load(); peak > 2 {
		t.Errorf("Expected at most 2 requests in flight, got %d", peak)
	}
}

func TestClient_MatchesByIDEmpty(t *testing.T) {
	c, _ := newClient(t, &fakePortal{})
	if got := c.MatchesByID(context.Background(), nil); len(got) != 0 {
		t.Errorf("Expected no matches, got %v", got)
	}
}
