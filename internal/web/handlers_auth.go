package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"fragportal/internal/model"
	"fragportal/internal/session"
	"fragportal/internal/store"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer input.
	maxPasswordLength = 72
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := s.store.GetUserByUsername(strings.TrimSpace(in.Username))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.writeStoreError(w, r, err)
		return
	}
	if err != nil || !checkPassword(user.PasswordHash, in.Password) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	tokens, err := s.sessions.Issue(r.Context(), user.ID)
	if err != nil {
		s.log.WithError(err).Error("issue session")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.setAuthCookies(w, tokens)
	s.log.WithField("user", user.Username).Info("admin signed in")
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}
	tokens, err := s.sessions.Refresh(r.Context(), cookie.Value)
	if errors.Is(err, session.ErrInvalidToken) {
		s.clearAuthCookies(w)
		writeError(w, http.StatusUnauthorized, "session expired")
		return
	}
	if err != nil {
		s.log.WithError(err).Error("refresh session")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.setAuthCookies(w, tokens)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var access, refresh string
	if c, err := r.Cookie(accessCookieName); err == nil {
		access = c.Value
	}
	if c, err := r.Cookie(refreshCookieName); err == nil {
		refresh = c.Value
	}
	if err := s.sessions.Revoke(r.Context(), access, refresh); err != nil {
		s.log.WithError(err).Warn("revoke session")
	}
	s.clearAuthCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUsersList(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers()
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writePage(s, w, r, users)
}

type userInput struct {
	Username string         `json:"username"`
	Password string         `json:"password"`
	Role     model.UserRole `json:"role"`
}

func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	var in userInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	switch {
	case in.Username == "":
		writeError(w, http.StatusBadRequest, "username is required")
		return
	case len(in.Password) < minPasswordLength:
		writeError(w, http.StatusBadRequest, "password must have at least 8 characters")
		return
	case len(in.Password) > maxPasswordLength:
		writeError(w, http.StatusBadRequest, "password must have at most 72 bytes")
		return
	case in.Role != "" && in.Role != model.RoleAdmin && in.Role != model.RoleSuperAdmin:
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		s.log.WithError(err).Error("hash password")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	created, err := s.store.CreateUser(model.User{Username: in.Username, PasswordHash: hash, Role: in.Role})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) setAuthCookies(w http.ResponseWriter, t session.Tokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    t.Access,
		Path:     "/",
		Expires:  t.AccessExpires,
		MaxAge:   int(s.sessions.AccessTTL() / time.Second),
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    t.Refresh,
		Path:     "/api/auth",
		Expires:  t.RefreshExpires,
		MaxAge:   int(s.sessions.RefreshTTL() / time.Second),
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	for _, c := range []struct{ name, path string }{{accessCookieName, "/"}, {refreshCookieName, "/api/auth"}} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.opts.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash string, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
