package playlist

import (
	"log/slog"
	"net/http"
	"time"

	authapi "github.com/anujp125/Drishya/cmd/internal/auth/api"
	"github.com/anujp125/Drishya/cmd/internal/web"
)

// Handler exposes the /api/v1/playlists endpoints.
type Handler struct {
	log          *slog.Logger
	svc          *Service
	maxBodyBytes int64
}

func NewHandler(log *slog.Logger, svc *Service, maxBodyBytes int64) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &Handler{log: log, svc: svc, maxBodyBytes: maxBodyBytes}
}

type playlistRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CategoryID  *string `json:"categoryId"`
}

// Register wires the playlist routes. Reads are public; writes need an
// authenticated owner.
func (h *Handler) Register(mux *http.ServeMux, require func(http.Handler) http.Handler) {
	mux.Handle("POST /api/v1/playlists", require(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /api/v1/playlists", require(http.HandlerFunc(h.handleListMine)))
	mux.HandleFunc("GET /api/v1/playlists/{id}", h.handleGet)
	mux.Handle("PATCH /api/v1/playlists/{id}", require(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /api/v1/playlists/{id}", require(http.HandlerFunc(h.handleDelete)))
	mux.Handle("POST /api/v1/playlists/{id}/videos/{videoId}", require(http.HandlerFunc(h.handleAddVideo)))
	mux.Handle("DELETE /api/v1/playlists/{id}/videos/{videoId}", require(http.HandlerFunc(h.handleRemoveVideo)))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := web.DecodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		web.WriteFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ownerID, _ := authapi.AccountID(r.Context())
	p, err := h.svc.Create(r.Context(), CreateInput{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Now:         time.Now().UTC(),
	})
	if err != nil {
		web.WriteDomainError(w, h.log, "playlists.create", err)
		return
	}
	web.WriteData(w, http.StatusCreated, "playlist created successfully", p)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := authapi.AccountID(r.Context())
	list, err := h.svc.ListMine(r.Context(), ownerID)
	if err != nil {
		web.WriteDomainError(w, h.log, "playlists.list", err)
		return
	}
	web.WriteData(w, http.StatusOK, "playlists fetched", list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.log, "playlists.get", err)
		return
	}
	web.WriteData(w, http.StatusOK, "playlist fetched", p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := web.DecodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		web.WriteFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	callerID, _ := authapi.AccountID(r.Context())
	p, err := h.svc.Update(r.Context(), callerID, UpdateInput{
		ID:          r.PathValue("id"),
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Now:         time.Now().UTC(),
	})
	if err != nil {
		web.WriteDomainError(w, h.log, "playlists.update", err)
		return
	}
	web.WriteData(w, http.StatusOK, "playlist updated successfully", p)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := authapi.AccountID(r.Context())
	if err := h.svc.Delete(r.Context(), callerID, r.PathValue("id")); err != nil {
		web.WriteDomainError(w, h.log, "playlists.delete", err)
		return
	}
	web.WriteData(w, http.StatusOK, "playlist deleted successfully", nil)
}

func (h *Handler) handleAddVideo(w http.ResponseWriter, r *http.Request) {
	callerID, _ := authapi.AccountID(r.Context())
	p, err := h.svc.AddVideo(r.Context(), callerID, r.PathValue("id"), r.PathValue("videoId"))
	if err != nil {
		web.WriteDomainError(w, h.log, "playlists.add_video", err)
		return
	}
	web.WriteData(w, http.StatusOK, "video added to playlist", p)
}

func (h *Handler) handleRemoveVideo(w http.ResponseWriter, r *http.Request) {
	callerID, _ := authapi.AccountID(r.Context())
	p, err := h.svc.RemoveVideo(r.Context(), callerID, r.PathValue("id"), r.PathValue("videoId"))
	if err != nil {
		web.WriteDomainError(w, h.log, "playlists.remove_video", err)
		return
	}
	web.WriteData(w, http.StatusOK, "video removed from playlist", p)
}
