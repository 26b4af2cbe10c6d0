package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fragportal/internal/model"
	"fragportal/internal/store"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const (
	accessCookieName  = "fp_access"
	refreshCookieName = "fp_refresh"
)

type ctxKey int

const userKey ctxKey = iota

func currentUser(r *http.Request) (model.User, bool) {
	u, ok := r.Context().Value(userKey).(model.User)
	return u, ok
}

// withUser attaches the user behind a valid access cookie. Anonymous
// requests pass through untouched.
func (s *Server) withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(accessCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := s.sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.store.GetUser(userID)
		switch {
		case err == nil:
			r = r.WithContext(context.WithValue(r.Context(), userKey, user))
		case !errors.Is(err, store.ErrNotFound):
			s.log.WithError(err).Warn("load session user")
		}
		next.ServeHTTP(w, r)
	})
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentUser(r); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, _ := currentUser(r); !u.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func requireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, _ := currentUser(r); u.Role != model.RoleSuperAdmin {
			writeError(w, http.StatusForbidden, "super admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		entry := s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		})
		switch {
		case ww.Status() >= 500:
			entry.Error("request failed")
		case ww.Status() >= 400:
			entry.Info("request rejected")
		default:
			entry.Debug("request served")
		}
	})
}
