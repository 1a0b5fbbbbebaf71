// Package media stores uploaded files (avatars, cover images, videos,
// thumbnails) in an S3-compatible object store and hands back public URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Category decides the key prefix, the size cap and the accepted
// content types for an upload.
type Category string

const (
	CategoryAvatar    Category = "avatars"
	CategoryCover     Category = "covers"
	CategoryVideo     Category = "videos"
	CategoryThumbnail Category = "thumbnails"
)

var (
	ErrInvalidCategory    = errors.New("media: unknown category")
	ErrContentTypeBlocked = errors.New("media: content type not allowed")
	ErrTooLarge           = errors.New("media: file exceeds size limit")
	ErrEmptyFile          = errors.New("media: empty file")
	ErrNotFound           = errors.New("media: object not found")
)

const (
	maxAvatarBytes    = 16 << 20
	maxCoverBytes     = 40 << 20
	maxVideoBytes     = 2 << 30
	maxThumbnailBytes = 16 << 20
)

var imageContentTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

var videoContentTypes = []string{"video/mp4", "video/webm", "video/quicktime", "video/x-matroska"}

type limits struct {
	maxBytes int64
	allowed  []string
}

func limitsFor(c Category) (limits, error) {
	switch c {
	case CategoryAvatar:
		return limits{maxBytes: maxAvatarBytes, allowed: imageContentTypes}, nil
	case CategoryCover:
		return limits{maxBytes: maxCoverBytes, allowed: imageContentTypes}, nil
	case CategoryVideo:
		return limits{maxBytes: maxVideoBytes, allowed: videoContentTypes}, nil
	case CategoryThumbnail:
		return limits{maxBytes: maxThumbnailBytes, allowed: imageContentTypes}, nil
	default:
		return limits{}, fmt.Errorf("%w: %q", ErrInvalidCategory, c)
	}
}

// UploadInput describes one file to store.
type UploadInput struct {
	Category    Category
	Reader      io.Reader
	Size        int64
	ContentType string
}

// Object is a stored file.
type Object struct {
	Key         string
	URL         string
	Size        int64
	ContentType string
}

// Store abstracts the object store for handlers and services.
type Store interface {
	Upload(ctx context.Context, in UploadInput) (Object, error)
	Remove(ctx context.Context, key string) error

	// KeyFromURL maps a URL this store produced back to its object key,
	// or "" for foreign URLs.
	KeyFromURL(rawURL string) string
}

func validateUpload(in UploadInput) error {
	lim, err := limitsFor(in.Category)
	if err != nil {
		return err
	}
	if in.Size <= 0 {
		return ErrEmptyFile
	}
	if in.Size > lim.maxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, in.Size, lim.maxBytes)
	}
	if !allowedContentType(lim.allowed, in.ContentType) {
		return fmt.Errorf("%w: %q", ErrContentTypeBlocked, in.ContentType)
	}
	return nil
}

func allowedContentType(allow []string, contentType string) bool {
	for _, a := range allow {
		if a == contentType {
			return true
		}
	}
	return false
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	case "video/x-matroska":
		return ".mkv"
	default:
		return ""
	}
}
