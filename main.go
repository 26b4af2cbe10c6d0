package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fragportal/internal/announce"
	"fragportal/internal/config"
	"fragportal/internal/export"
	"fragportal/internal/live"
	"fragportal/internal/session"
	"fragportal/internal/store"
	"fragportal/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := config.ConfigureLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appStore, err := openStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer appStore.Close()

	if created, err := store.EnsureAdmin(appStore, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.WithError(err).Fatal("ensure admin")
	} else if created {
		log.WithField("username", cfg.AdminUsername).Info("admin account created")
	}

	kv, err := openKV(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("open session store")
	}

	sessions := session.NewManager(kv, cfg.AccessTTL, cfg.RefreshTTL)
	defer func() {
		if err := sessions.Close(); err != nil {
			log.WithError(err).Warn("close session store")
		}
	}()

	hub := live.NewHub(logger, cfg.CORSOrigins)
	go hub.Run(ctx)

	deps := web.Deps{
		Store:     appStore,
		Sessions:  sessions,
		Live:      hub,
		Announcer: announce.Nop{},
		Logger:    logger,
	}
	if cfg.DiscordWebhookURL != "" {
		discord, err := announce.NewDiscord(cfg.DiscordWebhookURL, logger)
		if err != nil {
			log.WithError(err).Fatal("discord webhook")
		}
		deps.Announcer = discord
	}
	if cfg.SheetsCredentialsFile != "" && cfg.SheetsURL != "" {
		exporter, err := export.NewSheetsExporter(ctx, cfg.SheetsCredentialsFile, cfg.SheetsURL, cfg.SheetsTab)
		if err != nil {
			log.WithError(err).Fatal("sheets exporter")
		}
		deps.Exporter = exporter
	}

	handler := web.NewServer(deps, web.Options{
		CORSOrigins:    cfg.CORSOrigins,
		CookieSecure:   cfg.CookieSecure,
		PageSize:       cfg.PageSize,
		DemoHalfLength: cfg.DemoHalfLength,
		// The runtime freezes between invocations, so webhooks finish first.
		SyncAnnouncements: config.InLambda(),
	}).Routes()

	if config.InLambda() {
		log.Info("starting in lambda mode")
		lambda.Start(httpadapter.New(handler).ProxyWithContext)
		return
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithField("addr", cfg.HTTPAddr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("http server")
	}
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch {
	case cfg.PostgresDSN != "":
		log.Info("using postgres store")
		return store.NewPostgresStore(ctx, cfg.PostgresDSN)
	case cfg.DBPath != "":
		log.WithField("path", cfg.DBPath).Info("using sqlite store")
		return store.NewSQLiteStore(cfg.DBPath)
	default:
		log.WithField("seeded", !cfg.IsProd()).Info("using in-memory store")
		return store.NewMemoryStore(!cfg.IsProd()), nil
	}
}

func openKV(ctx context.Context, cfg config.Config) (session.KV, error) {
	if cfg.RedisURL == "" {
		return session.NewMemoryKV(), nil
	}
	return session.NewRedisKV(ctx, cfg.RedisURL)
}
