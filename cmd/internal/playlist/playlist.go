// Package playlist implements user-curated video collections.
package playlist

import (
	"context"
	"time"
)

// Playlist is an ordered collection of videos owned by one account.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UpdateInput mutates playlist details. Empty strings leave fields
// unchanged.
type UpdateInput struct {
	ID          string
	Title       string
	Description string
	CategoryID  *string
	Now         time.Time
}

// Store is the playlist persistence boundary. VideoIDs are kept in
// insertion order via an explicit position column.
type Store interface {
	Create(ctx context.Context, p Playlist) error
	ByID(ctx context.Context, id string) (Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Playlist, error)
	Update(ctx context.Context, in UpdateInput) (Playlist, error)
	Delete(ctx context.Context, id string) error

	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}
