// Package app wires the Drishya server runtime: config, logging, database,
// object storage, metrics, and HTTP routes.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anujp125/Drishya/cmd/identity"
	authapi "github.com/anujp125/Drishya/cmd/internal/auth/api"
	"github.com/anujp125/Drishya/cmd/internal/auth/session"
	"github.com/anujp125/Drishya/cmd/internal/category"
	"github.com/anujp125/Drishya/cmd/internal/engagement"
	"github.com/anujp125/Drishya/cmd/internal/media"
	"github.com/anujp125/Drishya/cmd/internal/playlist"
	"github.com/anujp125/Drishya/cmd/internal/video"
	"github.com/anujp125/Drishya/cmd/security/password"
)

// App is the Drishya server runtime. It owns the connection pool and the
// fully wired HTTP handlers.
type App struct {
	cfg Config
	log *slog.Logger

	pool     *pgxpool.Pool
	metrics  *Metrics
	handlers handlers
}

// New constructs a fully wired App from config.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	digester, err := newTokenDigester(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.MigrateOnStart {
		if err := RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		log.Info("db.migrations.applied")
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sessCfg := session.DefaultConfig()
	sessCfg.AccessSecret = cfg.AccessTokenSecret
	sessCfg.RefreshSecret = cfg.RefreshTokenSecret
	if cfg.AccessTokenTTL > 0 {
		sessCfg.AccessTTL = cfg.AccessTokenTTL
	}
	if cfg.RefreshTokenTTL > 0 {
		sessCfg.RefreshTTL = cfg.RefreshTokenTTL
	}

	tokens, err := session.NewJWTManager(sessCfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	accounts, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	pw := password.DefaultConfig()
	sessions := session.NewManager(tokens, accounts, pw, digester)

	mediaStore, err := media.NewObjectStore(ctx, media.Config{
		Endpoint:      cfg.MinioEndpoint,
		AccessKey:     cfg.MinioAccessKey,
		SecretKey:     cfg.MinioSecretKey,
		Bucket:        cfg.MinioBucket,
		UseSSL:        cfg.MinioUseSSL,
		PublicBaseURL: cfg.MediaPublicBaseURL,
	})
	if err != nil {
		pool.Close()
		return nil, err
	}

	authCfg := authapi.DefaultConfig()
	authCfg.CookieDomain = cfg.CookieDomain
	authCfg.CookieSecure = cfg.CookieSecure
	authCfg.RequireAvatar = cfg.RequireAvatar

	videoStore, err := video.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	engagementStore, err := engagement.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	playlistStore, err := playlist.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	categoryStore, err := category.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	auth := authapi.NewHandler(log, authCfg, sessions, accounts, mediaStore, pw)

	h := handlers{
		auth:       auth,
		videos:     video.NewHandler(log, video.NewService(videoStore), mediaStore, engagementStore, 0),
		engagement: engagement.NewHandler(log, engagementStore),
		playlists:  playlist.NewHandler(log, playlist.NewService(playlistStore), authCfg.MaxBodyBytes),
		categories: category.NewHandler(log, categoryStore, authCfg.MaxBodyBytes),
	}

	return &App{
		cfg:      cfg,
		log:      log,
		pool:     pool,
		metrics:  NewMetrics(),
		handlers: h,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or a
// fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerRoutes(mux, a.pool, a.metrics, a.handlers)

	var handler http.Handler = mux
	handler = WithSecurityHeaders(handler)
	handler = WithCORS(handler, a.cfg, a.log)
	handler = a.metrics.WithInstrumentation(handler)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.ReadTimeout,
		WriteTimeout:      a.cfg.WriteTimeout,
		IdleTimeout:       a.cfg.IdleTimeout,
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.pool.Close()
	a.log.Info("server.stopped")
	return nil
}
