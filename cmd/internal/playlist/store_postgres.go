package playlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anujp125/Drishya/cmd/identity"
)

// PostgresStore implements Store over PostgreSQL. The pool is owned by the
// caller.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("playlist: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const playlistColumns = `id, owner_id, category_id, title, description, created_at, updated_at`

func scanPlaylist(row pgx.Row) (Playlist, error) {
	var p Playlist
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.CategoryID,
		&p.Title,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (s *PostgresStore) Create(ctx context.Context, p Playlist) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO playlists (id, owner_id, category_id, title, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		p.ID, p.OwnerID, p.CategoryID, p.Title, p.Description, p.CreatedAt,
	)
	return err
}

func (s *PostgresStore) ByID(ctx context.Context, id string) (Playlist, error) {
	const op = "playlist.ByID"

	p, err := scanPlaylist(s.pool.QueryRow(ctx,
		`SELECT `+playlistColumns+` FROM playlists WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Playlist{}, identity.NotFoundError{Op: op, Resource: "playlist"}
		}
		return Playlist{}, err
	}
	if p.VideoIDs, err = s.videoIDs(ctx, id); err != nil {
		return Playlist{}, err
	}
	return p, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]Playlist, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+playlistColumns+` FROM playlists
		  WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range list {
		if list[i].VideoIDs, err = s.videoIDs(ctx, list[i].ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (s *PostgresStore) Update(ctx context.Context, in UpdateInput) (Playlist, error) {
	const op = "playlist.Update"

	p, err := scanPlaylist(s.pool.QueryRow(ctx,
		`UPDATE playlists SET
		     title       = COALESCE(NULLIF($2, ''), title),
		     description = COALESCE(NULLIF($3, ''), description),
		     category_id = COALESCE($4, category_id),
		     updated_at  = $5
		  WHERE id = $1
		  RETURNING `+playlistColumns,
		in.ID, strings.TrimSpace(in.Title), strings.TrimSpace(in.Description),
		in.CategoryID, in.Now,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Playlist{}, identity.NotFoundError{Op: op, Resource: "playlist"}
		}
		return Playlist{}, err
	}
	if p.VideoIDs, err = s.videoIDs(ctx, in.ID); err != nil {
		return Playlist{}, err
	}
	return p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	const op = "playlist.Delete"

	tag, err := s.pool.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return identity.NotFoundError{Op: op, Resource: "playlist"}
	}
	return nil
}

// AddVideo appends the video at the next free position.
func (s *PostgresStore) AddVideo(ctx context.Context, playlistID, videoID string) error {
	const op = "playlist.AddVideo"

	_, err := s.pool.Exec(ctx,
		`INSERT INTO playlist_videos (playlist_id, video_id, position)
		 SELECT $1, $2, COALESCE(max(position), 0) + 1
		   FROM playlist_videos WHERE playlist_id = $1`,
		playlistID, videoID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return identity.ConflictError{Op: op, Field: "video"}
			case "23503":
				return identity.NotFoundError{Op: op, Resource: "video"}
			}
		}
		return err
	}
	return nil
}

func (s *PostgresStore) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	const op = "playlist.RemoveVideo"

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`,
		playlistID, videoID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return identity.NotFoundError{Op: op, Resource: "video"}
	}
	return nil
}

func (s *PostgresStore) videoIDs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT video_id FROM playlist_videos
		  WHERE playlist_id = $1 ORDER BY position`,
		playlistID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
