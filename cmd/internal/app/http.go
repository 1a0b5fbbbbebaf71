package app

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	authapi "github.com/anujp125/Drishya/cmd/internal/auth/api"
	"github.com/anujp125/Drishya/cmd/internal/category"
	"github.com/anujp125/Drishya/cmd/internal/engagement"
	"github.com/anujp125/Drishya/cmd/internal/playlist"
	"github.com/anujp125/Drishya/cmd/internal/video"
)

type handlers struct {
	auth       *authapi.Handler
	videos     *video.Handler
	engagement *engagement.Handler
	playlists  *playlist.Handler
	categories *category.Handler
}

func registerRoutes(mux *http.ServeMux, pool *pgxpool.Pool, metrics *Metrics, h handlers) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := PingDB(r.Context(), pool, 2*time.Second); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	mux.Handle("GET /metrics", metrics.Handler())

	h.auth.Register(mux)
	h.videos.Register(mux, h.auth.RequireAccount, h.auth.OptionalAccount)
	h.engagement.Register(mux, h.auth.RequireAccount)
	h.playlists.Register(mux, h.auth.RequireAccount)
	h.categories.Register(mux, h.auth.RequireAccount)
}
