package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Niklauzi/lyte/internal/auth"
	"github.com/Niklauzi/lyte/internal/config"
	"github.com/Niklauzi/lyte/internal/database"
	"github.com/Niklauzi/lyte/internal/handlers"
	"github.com/Niklauzi/lyte/internal/images"
	"github.com/Niklauzi/lyte/internal/logging"
	"github.com/Niklauzi/lyte/internal/reaction"
)

const sessionPurgeInterval = time.Hour

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger := logging.Logger()
		logger.Fatal().Err(err).Msg("load config")
	}
	logging.Init(cfg.Log.Level, cfg.Log.Format)
	log := logging.With("main")

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := database.NewStore(db)
	for _, admin := range cfg.Admins {
		hash, err := auth.HashPassword(admin.Password)
		if err != nil {
			log.Fatal().Err(err).Str("username", admin.Username).Msg("hash admin password")
		}
		if err := store.SeedAdmin(ctx, admin.Username, hash); err != nil {
			log.Fatal().Err(err).Str("username", admin.Username).Msg("seed admin")
		}
	}

	imgStore, err := images.NewStore(cfg.Uploads.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("init uploads")
	}

	sessions := auth.NewSessions(db, cfg.Session.TTL)
	go purgeSessions(ctx, sessions)

	handler := handlers.New(store, sessions, reaction.New(db), imgStore, cfg.Server)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

// purgeSessions deletes expired session rows on a fixed interval until ctx
// is cancelled.
func purgeSessions(ctx context.Context, sessions *auth.Sessions) {
	log := logging.With("sessions")
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("purge expired sessions")
				continue
			}
			if n > 0 {
				log.Info().Int64("deleted", n).Msg("purged expired sessions")
			}
		}
	}
}
