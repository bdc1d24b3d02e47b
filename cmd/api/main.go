package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adminboard/internal/activity"
	"adminboard/internal/auth"
	"adminboard/internal/config"
	"adminboard/internal/httpapi"
	"adminboard/internal/kvstore"
	"adminboard/internal/session"
	"adminboard/pkg/logger"
	"adminboard/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// One postgres pool is shared by the kv store and the activity repository.
	var db *sql.DB
	if cfg.NeedsPostgres() {
		db, err = utils.OpenPostgres(rootCtx, cfg.PostgresDSN(), utils.PoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	store, err := kvstore.Open(rootCtx, cfg, db)
	if err != nil {
		log.Error("store init failed", "driver", cfg.Store.Driver, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	repo, err := activityRepo(rootCtx, cfg, db)
	if err != nil {
		log.Error("activity init failed", "source", cfg.Activity.Source, "err", err)
		os.Exit(1)
	}
	activitySvc := activity.NewService(repo)

	var tokens session.TokenIssuer = session.OpaqueTokens{}
	if cfg.Session.Secret != "" {
		tokens, err = auth.NewManager(cfg.Session)
		if err != nil {
			log.Error("auth init failed", "err", err)
			os.Exit(1)
		}
	}

	sessions := session.NewManager(store.Store,
		session.WithTokens(tokens),
		session.WithEvents(activitySvc),
		session.WithLogger(log.With("component", "session")),
		session.WithAvatarBaseURL(cfg.Session.AvatarBaseURL),
	)
	sessions.Subscribe(func(st session.State) {
		log.Debug("session changed", "authenticated", st.IsAuthenticated, "loading", st.IsLoading)
	})
	sessions.Restore(rootCtx)
	log.Info("session restored", "status", sessions.Status())

	h := httpapi.Handlers{
		Session:  sessions,
		Activity: activitySvc,
		Filters:  activity.NewSavedFilters(store.Store),
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireSession(sessions), db)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

func activityRepo(ctx context.Context, cfg config.Config, db *sql.DB) (activity.Repository, error) {
	if cfg.Activity.Source == config.StorePostgres {
		repo := activity.NewPostgresRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}

	var seed []activity.Record
	if cfg.Activity.Seed > 0 {
		seed = activity.Seed(time.Now(), cfg.Activity.Seed, rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	return activity.NewMemoryRepo(seed...), nil
}
