// Package engagement covers likes (videos and playlists) and per-account
// watch history.
package engagement

import (
	"context"
	"time"

	"github.com/anujp125/Drishya/cmd/internal/video"
)

// WatchEntry is one watch-history row joined with its video.
type WatchEntry struct {
	Video     video.Video `json:"video"`
	WatchedAt time.Time   `json:"watchedAt"`
}

// HistoryPage is one page of watch history, newest first.
type HistoryPage struct {
	Items []WatchEntry `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// Store is the persistence boundary for likes and history.
//
// Toggle operations return the resulting state: true when the like now
// exists, false when it was removed.
type Store interface {
	ToggleVideoLike(ctx context.Context, accountID, videoID string) (bool, error)
	TogglePlaylistLike(ctx context.Context, accountID, playlistID string) (bool, error)

	// LikedVideos lists the published videos the account has liked,
	// most recently liked first.
	LikedVideos(ctx context.Context, accountID string, page, limit int) (video.Page, error)

	// RecordWatch upserts a history row; re-watching refreshes WatchedAt.
	RecordWatch(ctx context.Context, accountID, videoID string) error
	History(ctx context.Context, accountID string, page, limit int) (HistoryPage, error)
}
