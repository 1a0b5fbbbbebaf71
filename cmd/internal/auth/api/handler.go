// Package authapi exposes the user-facing account and session endpoints
// under /api/v1/users.
package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anujp125/Drishya/cmd/identity"
	"github.com/anujp125/Drishya/cmd/internal/auth/session"
	"github.com/anujp125/Drishya/cmd/internal/media"
	"github.com/anujp125/Drishya/cmd/internal/web"
	"github.com/anujp125/Drishya/cmd/security/password"
)

// Handler wires HTTP endpoints to the identity store and session manager.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	sessions *session.Manager
	accounts identity.Store
	media    media.Store
	pw       password.Config
}

func NewHandler(log *slog.Logger, cfg Config, sessions *session.Manager, accounts identity.Store, mediaStore media.Store, pw password.Config) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:      log,
		cfg:      cfg,
		sessions: sessions,
		accounts: accounts,
		media:    mediaStore,
		pw:       pw,
	}
}

// Register wires the user routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/users/register", h.handleRegister)
	mux.HandleFunc("POST /api/v1/users/login", h.handleLogin)
	mux.HandleFunc("POST /api/v1/users/refresh-token", h.handleRefresh)

	mux.Handle("POST /api/v1/users/logout", h.RequireAccount(http.HandlerFunc(h.handleLogout)))
	mux.Handle("GET /api/v1/users/current-user", h.RequireAccount(http.HandlerFunc(h.handleCurrentUser)))
	mux.Handle("POST /api/v1/users/change-password", h.RequireAccount(http.HandlerFunc(h.handleChangePassword)))
	mux.Handle("PATCH /api/v1/users/update-account", h.RequireAccount(http.HandlerFunc(h.handleUpdateAccount)))
	mux.Handle("PATCH /api/v1/users/avatar", h.RequireAccount(http.HandlerFunc(h.handleUpdateAvatar)))
	mux.Handle("PATCH /api/v1/users/cover-image", h.RequireAccount(http.HandlerFunc(h.handleUpdateCoverImage)))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		web.WriteFailure(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	ctx := r.Context()

	plaintext := r.FormValue("password")
	hash, err := h.pw.Hash(plaintext)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			web.WriteFailure(w, http.StatusBadRequest, "validation failed", "password")
			return
		}
		h.log.Error("users.register.hash", "err", err)
		web.WriteFailure(w, http.StatusInternalServerError, "internal error")
		return
	}

	avatarURL, ok := h.uploadFormImage(w, r, "avatar", media.CategoryAvatar, h.cfg.RequireAvatar)
	if !ok {
		return
	}
	coverURL, ok := h.uploadFormImage(w, r, "coverImage", media.CategoryCover, false)
	if !ok {
		h.removeObject(ctx, avatarURL)
		return
	}

	account, err := h.accounts.CreateAccount(ctx, identity.CreateAccountInput{
		Username:      r.FormValue("username"),
		Email:         r.FormValue("email"),
		FullName:      r.FormValue("fullName"),
		PasswordHash:  hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		Now:           time.Now().UTC(),
	})
	if err != nil {
		h.removeObject(ctx, avatarURL)
		h.removeObject(ctx, coverURL)
		web.WriteDomainError(w, h.log, "users.register", err)
		return
	}

	web.WriteData(w, http.StatusCreated, "user registered successfully", account.Public())
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}

	profile, pair, err := h.sessions.Authenticate(r.Context(), identifier, req.Password)
	if err != nil {
		web.WriteDomainError(w, h.log, "users.login", err)
		return
	}

	h.setSessionCookies(w, pair)
	web.WriteData(w, http.StatusOK, "user logged in successfully", loginData{
		User:      profile,
		tokenData: toTokenData(pair),
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.ContentLength != 0 {
		if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
			web.WriteFailure(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	token := refreshTokenFromRequest(r, req.RefreshToken)
	if token == "" {
		web.WriteFailure(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	pair, err := h.sessions.Refresh(r.Context(), token)
	if err != nil {
		// Only a rejected token evicts the cookies; a store outage must
		// leave the session intact so the client can retry.
		if identity.IsUnauthorized(err) || identity.IsInvalidInput(err) {
			h.clearSessionCookies(w)
		}
		web.WriteDomainError(w, h.log, "users.refresh", err)
		return
	}

	h.setSessionCookies(w, pair)
	web.WriteData(w, http.StatusOK, "access token refreshed", toTokenData(pair))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	accountID, _ := AccountID(r.Context())
	if err := h.sessions.Revoke(r.Context(), accountID); err != nil && !identity.IsNotFound(err) {
		web.WriteDomainError(w, h.log, "users.logout", err)
		return
	}
	h.clearSessionCookies(w)
	web.WriteData(w, http.StatusOK, "user logged out", nil)
}

func (h *Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	accountID, _ := AccountID(r.Context())
	account, err := h.accounts.AccountByID(r.Context(), accountID)
	if err != nil {
		web.WriteDomainError(w, h.log, "users.current", err)
		return
	}
	web.WriteData(w, http.StatusOK, "current user fetched", account.Public())
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	accountID, _ := AccountID(ctx)
	account, err := h.accounts.AccountByID(ctx, accountID)
	if err != nil {
		web.WriteDomainError(w, h.log, "users.change_password", err)
		return
	}

	ok, err := h.pw.Verify(account.PasswordHash, req.OldPassword)
	if err != nil || !ok {
		web.WriteFailure(w, http.StatusBadRequest, "invalid old password")
		return
	}

	hash, err := h.pw.Hash(req.NewPassword)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			web.WriteFailure(w, http.StatusBadRequest, "validation failed", "newPassword")
			return
		}
		h.log.Error("users.change_password.hash", "err", err)
		web.WriteFailure(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.accounts.UpdatePassword(ctx, accountID, hash); err != nil {
		web.WriteDomainError(w, h.log, "users.change_password", err)
		return
	}
	web.WriteData(w, http.StatusOK, "password changed successfully", nil)
}

func (h *Handler) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.FullName) == "" && strings.TrimSpace(req.Email) == "" {
		web.WriteFailure(w, http.StatusBadRequest, "validation failed", "fullName", "email")
		return
	}

	accountID, _ := AccountID(r.Context())
	account, err := h.accounts.UpdateProfile(r.Context(), identity.UpdateProfileInput{
		AccountID: accountID,
		FullName:  req.FullName,
		Email:     req.Email,
		Now:       time.Now().UTC(),
	})
	if err != nil {
		web.WriteDomainError(w, h.log, "users.update_account", err)
		return
	}
	web.WriteData(w, http.StatusOK, "account updated successfully", account.Public())
}

func (h *Handler) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.handleImageUpdate(w, r, "avatar", media.CategoryAvatar,
		func(ctx context.Context, accountID, url string) (identity.Account, error) {
			return h.accounts.UpdateAvatar(ctx, accountID, url)
		},
		func(a identity.Account) string { return a.AvatarURL },
		"avatar updated successfully")
}

func (h *Handler) handleUpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.handleImageUpdate(w, r, "coverImage", media.CategoryCover,
		func(ctx context.Context, accountID, url string) (identity.Account, error) {
			return h.accounts.UpdateCoverImage(ctx, accountID, url)
		},
		func(a identity.Account) string { return a.CoverImageURL },
		"cover image updated successfully")
}

func (h *Handler) handleImageUpdate(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	category media.Category,
	update func(ctx context.Context, accountID, url string) (identity.Account, error),
	current func(identity.Account) string,
	message string,
) {
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		web.WriteFailure(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	ctx := r.Context()
	accountID, _ := AccountID(ctx)

	previous, err := h.accounts.AccountByID(ctx, accountID)
	if err != nil {
		web.WriteDomainError(w, h.log, "users."+field, err)
		return
	}

	url, ok := h.uploadFormImage(w, r, field, category, true)
	if !ok {
		return
	}

	account, err := update(ctx, accountID, url)
	if err != nil {
		h.removeObject(ctx, url)
		web.WriteDomainError(w, h.log, "users."+field, err)
		return
	}

	h.removeObject(ctx, current(previous))
	web.WriteData(w, http.StatusOK, message, account.Public())
}

// uploadFormImage pulls one file out of the multipart form and stores it.
// On failure it writes the error response and returns ok=false.
func (h *Handler) uploadFormImage(w http.ResponseWriter, r *http.Request, field string, category media.Category, required bool) (string, bool) {
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
			h.log.Error("users.upload", "field", field, "err", err)
			web.WriteFailure(w, http.StatusInternalServerError, "file upload failed")
		}
		return "", false
	}
	return obj.URL, true
}

// removeObject best-effort deletes a stored file by its public URL.
func (h *Handler) removeObject(ctx context.Context, url string) {
	if url == "" {
		return
	}
	key := h.media.KeyFromURL(url)
	if key == "" {
		return
	}
	if err := h.media.Remove(ctx, key); err != nil {
		h.log.Warn("users.media_cleanup", "key", key, "err", err)
	}
}

func toTokenData(pair session.TokenPair) tokenData {
	return tokenData{
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}
