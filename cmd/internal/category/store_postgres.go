package category

import (
	"context"
	"errors"
	"fmt"

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
		return nil, fmt.Errorf("category: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Create(ctx context.Context, c Category) error {
	const op = "category.Create"

	_, err := s.pool.Exec(ctx,
		`INSERT INTO categories (id, name, description, icon_url, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Description, c.IconURL, c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return identity.ConflictError{Op: op, Field: "name"}
		}
		return err
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, icon_url, created_at FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IconURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (s *PostgresStore) ByID(ctx context.Context, id string) (Category, error) {
	const op = "category.ByID"

	var c Category
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, icon_url, created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.IconURL, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, identity.NotFoundError{Op: op, Resource: "category"}
		}
		return Category{}, err
	}
	return c, nil
}
