// Package video implements publishing, browsing and maintenance of videos:
// upload, paginated listing with filters, detail fetch, edits, deletion and
// view counting.
package video

import (
	"context"
	"time"
)

// Video is one published or draft video record.
type Video struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"ownerId"`
	CategoryID      *string   `json:"categoryId,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	VideoURL        string    `json:"videoUrl"`
	ThumbnailURL    string    `json:"thumbnail"`
	DurationSeconds float64   `json:"duration"`
	Views           int64     `json:"views"`
	IsPublished     bool      `json:"isPublished"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ListInput filters and paginates a listing. ViewerID widens visibility:
// unpublished videos show up only for their owner.
type ListInput struct {
	OwnerID    string
	CategoryID string
	Search     string
	ViewerID   string
	Page       int
	Limit      int
}

// Page is one page of a listing.
type Page struct {
	Items []Video `json:"items"`
	Total int64   `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

// UpdateInput mutates video details. Empty strings leave fields unchanged;
// nil pointers leave the nullable fields unchanged.
type UpdateInput struct {
	ID           string
	Title        string
	Description  string
	CategoryID   *string
	ThumbnailURL string
	IsPublished  *bool
	Now          time.Time
}

// Store is the video persistence boundary.
type Store interface {
	Create(ctx context.Context, v Video) error
	ByID(ctx context.Context, id string) (Video, error)
	List(ctx context.Context, in ListInput) (Page, error)
	Update(ctx context.Context, in UpdateInput) (Video, error)
	Delete(ctx context.Context, id string) error

	// IncrementViews bumps the counter and returns the new value.
	IncrementViews(ctx context.Context, id string) (int64, error)
}
