package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/melodiia/voicerelay/internal/adapters/http"
	signaladapter "github.com/melodiia/voicerelay/internal/adapters/signal"
	"github.com/melodiia/voicerelay/internal/auth"
	"github.com/melodiia/voicerelay/internal/config"
	"github.com/melodiia/voicerelay/internal/relay"
	"github.com/melodiia/voicerelay/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open store")
		}
		st = pg
	} else {
		log.Warn().Msg("no database_url, using in-memory store")
		st = store.NewMemory()
	}
	defer st.Close()

	ids, err := auth.NewSource(auth.Mode(cfg.AuthMode), cfg.Secret)
	if err != nil {
		log.Fatal().Err(err).Str("auth_mode", cfg.AuthMode).Msg("failed to build identity source")
	}

	// Guest identities have no membership records, so the gate admits
	// everyone; authenticated mode asks the store.
	var gate relay.Authorizer = st
	if auth.Mode(cfg.AuthMode) == auth.ModeGuest {
		gate = relay.AllowAll{}
	}

	reg := relay.NewRegistry()
	rt := relay.NewRouter(reg)
	limiter := relay.NewJoinLimiter(cfg.JoinLimit, cfg.JoinWindow)
	ctl := signaladapter.NewController(cfg, reg, rt, gate, ids, limiter)

	r := router.SetupRouter(ctx, cfg, ctl, st, ids)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("voicerelay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
