package video

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	authapi "github.com/anujp125/Drishya/cmd/internal/auth/api"
	"github.com/anujp125/Drishya/cmd/internal/media"
	"github.com/anujp125/Drishya/cmd/internal/web"
)

// HistoryRecorder notes that an account watched a video. Optional; a nil
// recorder disables watch history.
type HistoryRecorder interface {
	RecordWatch(ctx context.Context, accountID, videoID string) error
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

// Handler exposes the /api/v1/videos endpoints.
type Handler struct {
	log            *slog.Logger
	svc            *Service
	media          media.Store
	history        HistoryRecorder
	maxUploadBytes int64
}

func NewHandler(log *slog.Logger, svc *Service, mediaStore media.Store, history HistoryRecorder, maxUploadBytes int64) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 2 << 30
	}
	return &Handler{
		log:            log,
		svc:            svc,
		media:          mediaStore,
		history:        history,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register wires the video routes. require gates authenticated routes;
// optional only decorates the context with the viewer when a token is
// present.
func (h *Handler) Register(mux *http.ServeMux, require, optional func(http.Handler) http.Handler) {
	mux.Handle("POST /api/v1/videos", require(http.HandlerFunc(h.handlePublish)))
	mux.Handle("GET /api/v1/videos", optional(http.HandlerFunc(h.handleList)))
	mux.Handle("GET /api/v1/videos/{id}", optional(http.HandlerFunc(h.handleGet)))
	mux.Handle("PATCH /api/v1/videos/{id}", require(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /api/v1/videos/{id}", require(http.HandlerFunc(h.handleDelete)))
	mux.Handle("PATCH /api/v1/videos/{id}/toggle-publish", require(http.HandlerFunc(h.handleTogglePublish)))
	mux.Handle("POST /api/v1/videos/{id}/view", optional(http.HandlerFunc(h.handleView)))
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		web.WriteFailure(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	ctx := r.Context()
	ownerID, _ := authapi.AccountID(ctx)

	videoURL, ok := h.uploadFormFile(w, r, "videoFile", media.CategoryVideo, true)
	if !ok {
		return
	}
	thumbURL, ok := h.uploadFormFile(w, r, "thumbnail", media.CategoryThumbnail, false)
	if !ok {
		h.removeObject(ctx, videoURL)
		return
	}

	var categoryID *string
	if v := r.FormValue("categoryId"); v != "" {
		categoryID = &v
	}
	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)

	v, err := h.svc.Publish(ctx, PublishInput{
		OwnerID:         ownerID,
		Title:           r.FormValue("title"),
		Description:     r.FormValue("description"),
		CategoryID:      categoryID,
		VideoURL:        videoURL,
		ThumbnailURL:    thumbURL,
		DurationSeconds: duration,
		Now:             time.Now().UTC(),
	})
	if err != nil {
		h.removeObject(ctx, videoURL)
		h.removeObject(ctx, thumbURL)
		web.WriteDomainError(w, h.log, "videos.publish", err)
		return
	}
	web.WriteData(w, http.StatusCreated, "video published successfully", v)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := authapi.AccountID(r.Context())
	page, limit := web.PageParams(r, defaultPageLimit, maxPageLimit)

	q := r.URL.Query()
	result, err := h.svc.List(r.Context(), ListInput{
		OwnerID:    q.Get("owner"),
		CategoryID: q.Get("category"),
		Search:     q.Get("q"),
		ViewerID:   viewerID,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		web.WriteDomainError(w, h.log, "videos.list", err)
		return
	}
	web.WriteData(w, http.StatusOK, "videos fetched", result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := authapi.AccountID(r.Context())
	v, err := h.svc.Get(r.Context(), r.PathValue("id"), viewerID)
	if err != nil {
		web.WriteDomainError(w, h.log, "videos.get", err)
		return
	}
	web.WriteData(w, http.StatusOK, "video fetched", v)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		web.WriteFailure(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	ctx := r.Context()
	callerID, _ := authapi.AccountID(ctx)

	thumbURL, ok := h.uploadFormFile(w, r, "thumbnail", media.CategoryThumbnail, false)
	if !ok {
		return
	}

	// A replacement thumbnail orphans the previous object, so remember it
	// for cleanup once the update lands.
	var previousThumb string
	if thumbURL != "" {
		prev, err := h.svc.Get(ctx, r.PathValue("id"), callerID)
		if err != nil {
			h.removeObject(ctx, thumbURL)
			web.WriteDomainError(w, h.log, "videos.update", err)
			return
		}
		previousThumb = prev.ThumbnailURL
	}

	var categoryID *string
	if v := r.FormValue("categoryId"); v != "" {
		categoryID = &v
	}
	var isPublished *bool
	if v := r.FormValue("isPublished"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			web.WriteFailure(w, http.StatusBadRequest, "validation failed", "isPublished")
			return
		}
		isPublished = &b
	}

	v, err := h.svc.Update(ctx, callerID, UpdateInput{
		ID:           r.PathValue("id"),
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		CategoryID:   categoryID,
		ThumbnailURL: thumbURL,
		IsPublished:  isPublished,
		Now:          time.Now().UTC(),
	})
	if err != nil {
		h.removeObject(ctx, thumbURL)
		web.WriteDomainError(w, h.log, "videos.update", err)
		return
	}

	if previousThumb != "" && previousThumb != thumbURL {
		h.removeObject(ctx, previousThumb)
	}
	web.WriteData(w, http.StatusOK, "video updated successfully", v)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, _ := authapi.AccountID(ctx)

	v, err := h.svc.Delete(ctx, callerID, r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.log, "videos.delete", err)
		return
	}

	h.removeObject(ctx, v.VideoURL)
	h.removeObject(ctx, v.ThumbnailURL)
	web.WriteData(w, http.StatusOK, "video deleted successfully", nil)
}

func (h *Handler) handleTogglePublish(w http.ResponseWriter, r *http.Request) {
	callerID, _ := authapi.AccountID(r.Context())
	v, err := h.svc.TogglePublish(r.Context(), callerID, r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.log, "videos.toggle_publish", err)
		return
	}
	web.WriteData(w, http.StatusOK, "publish status toggled", v)
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := r.PathValue("id")

	views, err := h.svc.RecordView(ctx, videoID)
	if err != nil {
		web.WriteDomainError(w, h.log, "videos.view", err)
		return
	}

	// Watch history is best-effort; a failure must not break playback.
	if viewerID, ok := authapi.AccountID(ctx); ok && h.history != nil {
		if err := h.history.RecordWatch(ctx, viewerID, videoID); err != nil {
			h.log.Warn("videos.view.history", "video_id", videoID, "err", err)
		}
	}

	web.WriteData(w, http.StatusOK, "view recorded", map[string]int64{"views": views})
}

func (h *Handler) uploadFormFile(w http.ResponseWriter, r *http.Request, field string, category media.Category, required bool) (string, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) && !required {
			return "", true
		}
		web.WriteFailure(w, http.StatusBadRequest, field+" file is required")
		return "", false
	}
	defer func() { _ = file.Close() }()

	obj, err := h.media.Upload(r.Context(), media.UploadInput{
		Category:    category,
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		switch {
		case errors.Is(err, media.ErrContentTypeBlocked),
			errors.Is(err, media.ErrTooLarge),
			errors.Is(err, media.ErrEmptyFile):
			web.WriteFailure(w, http.StatusBadRequest, field+": "+err.Error())
		default:
			h.log.Error("videos.upload", "field", field, "err", err)
			web.WriteFailure(w, http.StatusInternalServerError, "file upload failed")
		}
		return "", false
	}
	return obj.URL, true
}

func (h *Handler) removeObject(ctx context.Context, url string) {
	if url == "" {
		return
	}
	key := h.media.KeyFromURL(url)
	if key == "" {
		return
	}
	if err := h.media.Remove(ctx, key); err != nil {
		h.log.Warn("videos.media_cleanup", "key", key, "err", err)
	}
}
