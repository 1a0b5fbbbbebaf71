package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anujp125/Drishya/cmd/internal/ids"
)

// PostgresStore implements Store over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must not close it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const accountColumns = `id, username, username_norm, email, email_norm, full_name,
	avatar_url, cover_image_url, password_hash, refresh_token_digest, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.UsernameNorm,
		&a.Email,
		&a.EmailNorm,
		&a.FullName,
		&a.AvatarURL,
		&a.CoverImageURL,
		&a.PasswordHash,
		&a.RefreshTokenDigest,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

// CreateAccount inserts a new account row.
func (s *PostgresStore) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	const op = "identity.CreateAccount"

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	var missing []string
	if username == "" {
		missing = append(missing, "username is required")
	} else if ValidateUsername(username) != nil {
		missing = append(missing, "username must not contain '@'")
	}
	if email == "" {
		missing = append(missing, "email is required")
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		missing = append(missing, "password is required")
	}
	if len(missing) > 0 {
		return Account{}, ValidationError{Op: op, Fields: missing}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ids.New(now)
	if err != nil {
		return Account{}, err
	}

	a := Account{
		ID:            id,
		Username:      username,
		UsernameNorm:  NormalizeUsername(username),
		Email:         email,
		EmailNorm:     NormalizeEmail(email),
		FullName:      strings.TrimSpace(in.FullName),
		AvatarURL:     in.AvatarURL,
		CoverImageURL: in.CoverImageURL,
		PasswordHash:  in.PasswordHash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO accounts (
		     id, username, username_norm, email, email_norm, full_name,
		     avatar_url, cover_image_url, password_hash, created_at, updated_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		a.ID, a.Username, a.UsernameNorm, a.Email, a.EmailNorm, a.FullName,
		a.AvatarURL, a.CoverImageURL, a.PasswordHash, now,
	)
	if err != nil {
		if field, ok := classifyUniqueViolation(err); ok {
			return Account{}, ConflictError{Op: op, Field: field}
		}
		return Account{}, err
	}

	return a, nil
}

// AccountByIdentifier resolves an account by username or email, case-insensitively.
func (s *PostgresStore) AccountByIdentifier(ctx context.Context, identifier string) (Account, error) {
	const op = "identity.AccountByIdentifier"

	norm := NormalizeUsername(identifier)
	if norm == "" {
		return Account{}, ValidationError{Op: op, Fields: []string{"identifier is required"}}
	}

	a, err := scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts
		  WHERE username_norm = $1 OR email_norm = $1`,
		norm,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, NotFoundError{Op: op, Resource: "account"}
		}
		return Account{}, err
	}
	return a, nil
}

// AccountByID loads an account by primary key.
func (s *PostgresStore) AccountByID(ctx context.Context, id string) (Account, error) {
	const op = "identity.AccountByID"

	a, err := scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, NotFoundError{Op: op, Resource: "account"}
		}
		return Account{}, err
	}
	return a, nil
}

// SetRefreshTokenDigest overwrites the stored digest unconditionally.
func (s *PostgresStore) SetRefreshTokenDigest(ctx context.Context, accountID, digest string) error {
	const op = "identity.SetRefreshTokenDigest"

	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET refresh_token_digest = $2, updated_at = now() WHERE id = $1`,
		accountID, digest,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "account"}
	}
	return nil
}

// SwapRefreshTokenDigest is the rotation compare-and-set. The single-row
// UPDATE relies on Postgres per-row atomicity: of two refreshes racing on the
// same stale digest, exactly one matches and wins.
func (s *PostgresStore) SwapRefreshTokenDigest(ctx context.Context, accountID, oldDigest, newDigest string) error {
	const op = "identity.SwapRefreshTokenDigest"

	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET refresh_token_digest = $3, updated_at = now()
		  WHERE id = $1 AND refresh_token_digest = $2`,
		accountID, oldDigest, newDigest,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Missing account, revoked session, or a concurrent rotation won.
		return OpError{Op: op, Kind: ErrUnauthorized, Msg: "session not active or token superseded"}
	}
	return nil
}

// ClearRefreshTokenDigest revokes the current session. Clearing an
// already-clear digest succeeds silently.
func (s *PostgresStore) ClearRefreshTokenDigest(ctx context.Context, accountID string) error {
	const op = "identity.ClearRefreshTokenDigest"

	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET refresh_token_digest = NULL, updated_at = now() WHERE id = $1`,
		accountID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "account"}
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *PostgresStore) UpdatePassword(ctx context.Context, accountID, passwordHash string) error {
	const op = "identity.UpdatePassword"

	if strings.TrimSpace(passwordHash) == "" {
		return ValidationError{Op: op, Fields: []string{"password is required"}}
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`,
		accountID, passwordHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "account"}
	}
	return nil
}

// UpdateProfile mutates full name and/or email; empty fields are left as-is.
func (s *PostgresStore) UpdateProfile(ctx context.Context, in UpdateProfileInput) (Account, error) {
	const op = "identity.UpdateProfile"

	fullName := strings.TrimSpace(in.FullName)
	email := strings.TrimSpace(in.Email)
	if fullName == "" && email == "" {
		return Account{}, ValidationError{Op: op, Fields: []string{"fullName or email is required"}}
	}

	var emailNorm string
	if email != "" {
		emailNorm = NormalizeEmail(email)
	}

	a, err := scanAccount(s.pool.QueryRow(ctx,
		`UPDATE accounts SET
		     full_name  = COALESCE(NULLIF($2, ''), full_name),
		     email      = COALESCE(NULLIF($3, ''), email),
		     email_norm = COALESCE(NULLIF($4, ''), email_norm),
		     updated_at = now()
		  WHERE id = $1
		  RETURNING `+accountColumns,
		in.AccountID, fullName, email, emailNorm,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, NotFoundError{Op: op, Resource: "account"}
		}
		if field, ok := classifyUniqueViolation(err); ok {
			return Account{}, ConflictError{Op: op, Field: field}
		}
		return Account{}, err
	}
	return a, nil
}

// UpdateAvatar replaces the avatar media reference.
func (s *PostgresStore) UpdateAvatar(ctx context.Context, accountID, url string) (Account, error) {
	return s.updateMediaRef(ctx, "identity.UpdateAvatar", "avatar_url", accountID, url)
}

// UpdateCoverImage replaces the cover-image media reference.
func (s *PostgresStore) UpdateCoverImage(ctx context.Context, accountID, url string) (Account, error) {
	return s.updateMediaRef(ctx, "identity.UpdateCoverImage", "cover_image_url", accountID, url)
}

func (s *PostgresStore) updateMediaRef(ctx context.Context, op, column, accountID, url string) (Account, error) {
	if strings.TrimSpace(url) == "" {
		return Account{}, ValidationError{Op: op, Fields: []string{"media url is required"}}
	}

	// column is one of two compile-time constants, never user input.
	a, err := scanAccount(s.pool.QueryRow(ctx,
		`UPDATE accounts SET `+column+` = $2, updated_at = now()
		  WHERE id = $1
		  RETURNING `+accountColumns,
		accountID, url,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, NotFoundError{Op: op, Resource: "account"}
		}
		return Account{}, err
	}
	return a, nil
}

// classifyUniqueViolation maps a unique-constraint violation to a logical
// field name.
func classifyUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return "", false
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return "username", true
	case strings.Contains(pgErr.ConstraintName, "email"):
		return "email", true
	default:
		return "", true
	}
}
