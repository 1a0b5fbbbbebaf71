package engagement

import (
	"log/slog"
	"net/http"

	authapi "github.com/anujp125/Drishya/cmd/internal/auth/api"
	"github.com/anujp125/Drishya/cmd/internal/web"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

// Handler exposes the like and watch-history endpoints.
type Handler struct {
	log   *slog.Logger
	store Store
}

func NewHandler(log *slog.Logger, store Store) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, store: store}
}

// Register wires the routes. All of them need an authenticated account.
func (h *Handler) Register(mux *http.ServeMux, require func(http.Handler) http.Handler) {
	mux.Handle("POST /api/v1/likes/videos/{id}/toggle", require(http.HandlerFunc(h.handleToggleVideoLike)))
	mux.Handle("POST /api/v1/likes/playlists/{id}/toggle", require(http.HandlerFunc(h.handleTogglePlaylistLike)))
	mux.Handle("GET /api/v1/likes/videos", require(http.HandlerFunc(h.handleLikedVideos)))
	mux.Handle("GET /api/v1/users/history", require(http.HandlerFunc(h.handleHistory)))
}

func (h *Handler) handleToggleVideoLike(w http.ResponseWriter, r *http.Request) {
	accountID, _ := authapi.AccountID(r.Context())
	liked, err := h.store.ToggleVideoLike(r.Context(), accountID, r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.log, "likes.toggle_video", err)
		return
	}
	msg := "video unliked"
	if liked {
		msg = "video liked"
	}
	web.WriteData(w, http.StatusOK, msg, map[string]bool{"liked": liked})
}

func (h *Handler) handleTogglePlaylistLike(w http.ResponseWriter, r *http.Request) {
	accountID, _ := authapi.AccountID(r.Context())
	liked, err := h.store.TogglePlaylistLike(r.Context(), accountID, r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.log, "likes.toggle_playlist", err)
		return
	}
	msg := "playlist unliked"
	if liked {
		msg = "playlist liked"
	}
	web.WriteData(w, http.StatusOK, msg, map[string]bool{"liked": liked})
}

func (h *Handler) handleLikedVideos(w http.ResponseWriter, r *http.Request) {
	accountID, _ := authapi.AccountID(r.Context())
	page, limit := web.PageParams(r, defaultPageLimit, maxPageLimit)

	result, err := h.store.LikedVideos(r.Context(), accountID, page, limit)
	if err != nil {
		web.WriteDomainError(w, h.log, "likes.videos", err)
		return
	}
	web.WriteData(w, http.StatusOK, "liked videos fetched", result)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	accountID, _ := authapi.AccountID(r.Context())
	page, limit := web.PageParams(r, defaultPageLimit, maxPageLimit)

	result, err := h.store.History(r.Context(), accountID, page, limit)
	if err != nil {
		web.WriteDomainError(w, h.log, "users.history", err)
		return
	}
	web.WriteData(w, http.StatusOK, "watch history fetched", result)
}
