package web

import (
	"net/http"
	"time"

	"fragportal/internal/announce"
	"fragportal/internal/export"
	"fragportal/internal/live"
	"fragportal/internal/session"
	"fragportal/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

const (
	maxPageSize    = 100
	maxDemoSize    = 512 << 20
	requestTimeout = 30 * time.Second
)

// LiveFeed receives change events and serves the WebSocket endpoint.
type LiveFeed interface {
	Publish(live.Event)
	http.Handler
}

type Options struct {
	CORSOrigins    []string
	CookieSecure   bool
	PageSize       int
	DemoHalfLength int
	// SyncAnnouncements sends webhooks before responding. Lambda freezes
	// the process once the response is written.
	SyncAnnouncements bool
}

type Server struct {
	store     store.Store
	sessions  *session.Manager
	live      LiveFeed
	announcer announce.Announcer
	exporter  export.Exporter
	opts      Options
	log       logrus.FieldLogger
}

type Deps struct {
	Store     store.Store
	Sessions  *session.Manager
	Live      LiveFeed
	Announcer announce.Announcer
	// Exporter is nil when Sheets export is not configured.
	Exporter export.Exporter
	Logger   logrus.FieldLogger
}

func NewServer(deps Deps, opts Options) *Server {
	if opts.PageSize < 1 {
		opts.PageSize = 10
	}
	if opts.DemoHalfLength < 1 {
		opts.DemoHalfLength = 12
	}
	s := &Server{
		store:     deps.Store,
		sessions:  deps.Sessions,
		announcer: deps.Announcer,
		exporter:  deps.Exporter,
		opts:      opts,
		live:      deps.Live,
		log:       deps.Logger,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.announcer == nil {
		s.announcer = announce.Nop{}
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.withUser)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	if s.live != nil {
		r.Get("/api/live", s.live.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		// Demo parsing can outlast the request timeout.
		r.With(requireAdmin).Post("/admin/matches/{id}/demo", s.handleMatchDemo)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/news", s.handleNewsList)
			r.Get("/news/{id}", s.handleNewsShow)
			r.Get("/matches", s.handleMatchesList)
			r.Get("/matches/{id}", s.handleMatchShow)
			r.Get("/teams", s.handleTeamsList)
			r.Get("/teams/{id}", s.handleTeamShow)
			r.Get("/players", s.handlePlayersList)
			r.Get("/players/leaderboard", s.handleLeaderboard)
			r.Get("/players/{id}", s.handlePlayerShow)
			r.Get("/tournaments", s.handleTournamentsList)
			r.Get("/tournaments/{id}", s.handleTournamentShow)

			r.Post("/auth/login", s.handleLogin)
			r.Post("/auth/refresh", s.handleRefresh)
			r.Post("/auth/logout", s.handleLogout)
			r.With(requireUser).Get("/auth/me", s.handleMe)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)

				r.Get("/admin/users", s.handleUsersList)
				r.With(requireSuperAdmin).Post("/admin/users", s.handleUserCreate)

				r.Post("/admin/news", s.handleNewsCreate)
				r.Put("/admin/news/{id}", s.handleNewsUpdate)
				r.Delete("/admin/news/{id}", s.handleNewsDelete)

				r.Post("/admin/teams", s.handleTeamCreate)
				r.Put("/admin/teams/{id}", s.handleTeamUpdate)
				r.Delete("/admin/teams/{id}", s.handleTeamDelete)

				r.Post("/admin/players", s.handlePlayerCreate)
				r.Put("/admin/players/{id}", s.handlePlayerUpdate)
				r.Delete("/admin/players/{id}", s.handlePlayerDelete)

				r.Post("/admin/matches", s.handleMatchCreate)
				r.Put("/admin/matches/{id}", s.handleMatchUpdate)
				r.Delete("/admin/matches/{id}", s.handleMatchDelete)

				r.Post("/admin/tournaments", s.handleTournamentCreate)
				r.Put("/admin/tournaments/{id}", s.handleTournamentUpdate)
				r.Delete("/admin/tournaments/{id}", s.handleTournamentDelete)
				r.Post("/admin/tournaments/{id}/export", s.handleTournamentExport)
			})
		})
	})

	return r
}
