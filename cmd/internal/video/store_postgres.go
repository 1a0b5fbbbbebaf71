package video

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anujp125/Drishya/cmd/identity"
)

// PostgresStore implements Store over PostgreSQL. The pool is owned by the
// caller.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("video: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const videoColumns = `id, owner_id, category_id, title, description, video_url,
	thumbnail_url, duration_seconds, views, is_published, created_at, updated_at`

func scanVideo(row pgx.Row) (Video, error) {
	var v Video
	err := row.Scan(
		&v.ID,
		&v.OwnerID,
		&v.CategoryID,
		&v.Title,
		&v.Description,
		&v.VideoURL,
		&v.ThumbnailURL,
		&v.DurationSeconds,
		&v.Views,
		&v.IsPublished,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	return v, err
}

func (s *PostgresStore) Create(ctx context.Context, v Video) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO videos (
		     id, owner_id, category_id, title, description, video_url,
		     thumbnail_url, duration_seconds, views, is_published, created_at, updated_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		v.ID, v.OwnerID, v.CategoryID, v.Title, v.Description, v.VideoURL,
		v.ThumbnailURL, v.DurationSeconds, v.Views, v.IsPublished, v.CreatedAt,
	)
	return err
}

func (s *PostgresStore) ByID(ctx context.Context, id string) (Video, error) {
	const op = "video.ByID"

	v, err := scanVideo(s.pool.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Video{}, identity.NotFoundError{Op: op, Resource: "video"}
		}
		return Video{}, err
	}
	return v, nil
}

// List builds the WHERE clause from the populated filters. Anonymous
// viewers see published videos only.
func (s *PostgresStore) List(ctx context.Context, in ListInput) (Page, error) {
	where := []string{"(is_published OR owner_id = $1)"}
	args := []any{in.ViewerID}

	if in.OwnerID != "" {
		args = append(args, in.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if in.CategoryID != "" {
		args = append(args, in.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(in.Search); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	cond := strings.Join(where, " AND ")

	page := Page{Page: in.Page, Limit: in.Limit}
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM videos WHERE `+cond, args...,
	).Scan(&page.Total); err != nil {
		return Page{}, err
	}

	offset := (in.Page - 1) * in.Limit
	args = append(args, in.Limit, offset)
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM videos WHERE %s
		  ORDER BY created_at DESC, id DESC
		  LIMIT $%d OFFSET $%d`, videoColumns, cond, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return Page{}, err
		}
		page.Items = append(page.Items, v)
	}
	return page, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, in UpdateInput) (Video, error) {
	const op = "video.Update"

	v, err := scanVideo(s.pool.QueryRow(ctx,
		`UPDATE videos SET
		     title         = COALESCE(NULLIF($2, ''), title),
		     description   = COALESCE(NULLIF($3, ''), description),
		     category_id   = COALESCE($4, category_id),
		     thumbnail_url = COALESCE(NULLIF($5, ''), thumbnail_url),
		     is_published  = COALESCE($6, is_published),
		     updated_at    = $7
		  WHERE id = $1
		  RETURNING `+videoColumns,
		in.ID, in.Title, in.Description, in.CategoryID, in.ThumbnailURL,
		in.IsPublished, in.Now,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Video{}, identity.NotFoundError{Op: op, Resource: "video"}
		}
		return Video{}, err
	}
	return v, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	const op = "video.Delete"

	tag, err := s.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return identity.NotFoundError{Op: op, Resource: "video"}
	}
	return nil
}

func (s *PostgresStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	const op = "video.IncrementViews"

	var views int64
	err := s.pool.QueryRow(ctx,
		`UPDATE videos SET views = views + 1 WHERE id = $1 RETURNING views`, id,
	).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, identity.NotFoundError{Op: op, Resource: "video"}
		}
		return 0, err
	}
	return views, nil
}
