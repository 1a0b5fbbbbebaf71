package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anujp125/Drishya/cmd/identity"
	"github.com/anujp125/Drishya/cmd/internal/ids"
	"github.com/anujp125/Drishya/cmd/internal/video"
)

// PostgresStore implements Store over PostgreSQL. The pool is owned by the
// caller.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("engagement: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

// ToggleVideoLike removes an existing like or inserts one. The DELETE-then-
// INSERT pair keeps each call a single observable state flip.
func (s *PostgresStore) ToggleVideoLike(ctx context.Context, accountID, videoID string) (bool, error) {
	return s.toggleLike(ctx, "engagement.ToggleVideoLike", "video_id", accountID, videoID, "video")
}

func (s *PostgresStore) TogglePlaylistLike(ctx context.Context, accountID, playlistID string) (bool, error) {
	return s.toggleLike(ctx, "engagement.TogglePlaylistLike", "playlist_id", accountID, playlistID, "playlist")
}

func (s *PostgresStore) toggleLike(ctx context.Context, op, column, accountID, targetID, resource string) (bool, error) {
	// column is one of two compile-time constants, never user input.
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM likes WHERE account_id = $1 AND `+column+` = $2`,
		accountID, targetID,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	id, err := ids.New(now)
	if err != nil {
		return false, err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO likes (id, account_id, `+column+`, created_at) VALUES ($1, $2, $3, $4)`,
		id, accountID, targetID, now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, identity.NotFoundError{Op: op, Resource: resource}
		}
		return false, err
	}
	return true, nil
}

const likedVideoColumns = `v.id, v.owner_id, v.category_id, v.title, v.description,
	v.video_url, v.thumbnail_url, v.duration_seconds, v.views, v.is_published,
	v.created_at, v.updated_at`

func (s *PostgresStore) LikedVideos(ctx context.Context, accountID string, page, limit int) (video.Page, error) {
	result := video.Page{Items: []video.Video{}, Page: page, Limit: limit}

	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM likes l
		   JOIN videos v ON v.id = l.video_id
		  WHERE l.account_id = $1 AND v.is_published`,
		accountID,
	).Scan(&result.Total)
	if err != nil {
		return video.Page{}, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+likedVideoColumns+` FROM likes l
		   JOIN videos v ON v.id = l.video_id
		  WHERE l.account_id = $1 AND v.is_published
		  ORDER BY l.created_at DESC
		  LIMIT $2 OFFSET $3`,
		accountID, limit, (page-1)*limit,
	)
	if err != nil {
		return video.Page{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var v video.Video
		err := rows.Scan(
			&v.ID, &v.OwnerID, &v.CategoryID, &v.Title, &v.Description,
			&v.VideoURL, &v.ThumbnailURL, &v.DurationSeconds, &v.Views,
			&v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
		)
		if err != nil {
			return video.Page{}, err
		}
		result.Items = append(result.Items, v)
	}
	return result, rows.Err()
}

// RecordWatch upserts the history row so a re-watch floats the video back
// to the top of the history.
func (s *PostgresStore) RecordWatch(ctx context.Context, accountID, videoID string) error {
	const op = "engagement.RecordWatch"

	_, err := s.pool.Exec(ctx,
		`INSERT INTO watch_history (account_id, video_id, watched_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (account_id, video_id) DO UPDATE SET watched_at = now()`,
		accountID, videoID,
	)
	if err != nil && isForeignKeyViolation(err) {
		return identity.NotFoundError{Op: op, Resource: "video"}
	}
	return err
}

func (s *PostgresStore) History(ctx context.Context, accountID string, page, limit int) (HistoryPage, error) {
	result := HistoryPage{Items: []WatchEntry{}, Page: page, Limit: limit}

	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM watch_history WHERE account_id = $1`,
		accountID,
	).Scan(&result.Total)
	if err != nil {
		return HistoryPage{}, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+likedVideoColumns+`, h.watched_at FROM watch_history h
		   JOIN videos v ON v.id = h.video_id
		  WHERE h.account_id = $1
		  ORDER BY h.watched_at DESC
		  LIMIT $2 OFFSET $3`,
		accountID, limit, (page-1)*limit,
	)
	if err != nil {
		return HistoryPage{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var e WatchEntry
		v := &e.Video
		err := rows.Scan(
			&v.ID, &v.OwnerID, &v.CategoryID, &v.Title, &v.Description,
			&v.VideoURL, &v.ThumbnailURL, &v.DurationSeconds, &v.Views,
			&v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
			&e.WatchedAt,
		)
		if err != nil {
			return HistoryPage{}, err
		}
		result.Items = append(result.Items, e)
	}
	return result, rows.Err()
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
