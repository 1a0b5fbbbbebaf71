// Package category keeps the flat list of video categories.
package category

import (
	"context"
	"time"
)

// Category labels videos and playlists. Names are unique.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IconURL     string    `json:"icon,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store is the category persistence boundary.
type Store interface {
	// Create inserts a category; duplicate names are a Conflict.
	Create(ctx context.Context, c Category) error
	List(ctx context.Context) ([]Category, error)
	ByID(ctx context.Context, id string) (Category, error)
}
