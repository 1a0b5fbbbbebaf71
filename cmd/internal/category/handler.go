package category

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anujp125/Drishya/cmd/internal/ids"
	"github.com/anujp125/Drishya/cmd/internal/web"
)

// Handler exposes the /api/v1/categories endpoints.
type Handler struct {
	log          *slog.Logger
	store        Store
	maxBodyBytes int64
}

func NewHandler(log *slog.Logger, store Store, maxBodyBytes int64) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &Handler{log: log, store: store, maxBodyBytes: maxBodyBytes}
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"icon"`
}

// Register wires the category routes. Listing is public; creation needs an
// authenticated account.
func (h *Handler) Register(mux *http.ServeMux, require func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/v1/categories", h.handleList)
	mux.HandleFunc("GET /api/v1/categories/{id}", h.handleGet)
	mux.Handle("POST /api/v1/categories", require(http.HandlerFunc(h.handleCreate)))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		web.WriteDomainError(w, h.log, "categories.list", err)
		return
	}
	web.WriteData(w, http.StatusOK, "categories fetched", list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.log, "categories.get", err)
		return
	}
	web.WriteData(w, http.StatusOK, "category fetched", c)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := web.DecodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		web.WriteFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		web.WriteFailure(w, http.StatusBadRequest, "validation failed", "name is required")
		return
	}

	now := time.Now().UTC()
	id, err := ids.New(now)
	if err != nil {
		h.log.Error("categories.create.id", "err", err)
		web.WriteFailure(w, http.StatusInternalServerError, "internal error")
		return
	}

	c := Category{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		IconURL:     strings.TrimSpace(req.IconURL),
		CreatedAt:   now,
	}
	if err := h.store.Create(r.Context(), c); err != nil {
		web.WriteDomainError(w, h.log, "categories.create", err)
		return
	}
	web.WriteData(w, http.StatusCreated, "category created successfully", c)
}
