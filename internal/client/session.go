package client

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"fragportal/internal/model"
)

// Session holds the auth cookies and the signed-in user for one Client. It
// is created by the caller and handed to New, so tests and tools can share
// or inspect it.
type Session struct {
	mu   sync.RWMutex
	jar  http.CookieJar
	user *model.User
}

func NewSession() *Session {
	return &Session{jar: newJar()}
}

func newJar() http.CookieJar {
	// cookiejar.New only fails on a bad PublicSuffixList, and none is passed.
	jar, _ := cookiejar.New(nil)
	return jar
}

func (s *Session) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	jar.SetCookies(u, cookies)
}

func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	return jar.Cookies(u)
}

// User returns the cached signed-in user.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}

func (s *Session) setUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

// Clear forgets the user and drops every cookie.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.jar = newJar()
}
