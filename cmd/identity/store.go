package identity

import (
	"context"
	"time"
)

// CreateAccountInput describes a registration request.
// PasswordHash is the already-derived Argon2id hash; plaintext passwords
// never reach the store.
type CreateAccountInput struct {
	Username      string
	Email         string
	FullName      string
	PasswordHash  string
	AvatarURL     string
	CoverImageURL string
	Now           time.Time
}

// UpdateProfileInput mutates display fields of an account. Empty fields are
// left unchanged.
type UpdateProfileInput struct {
	AccountID string
	FullName  string
	Email     string
	Now       time.Time
}

// Store is the account persistence boundary.
//
// Refresh-token digest methods must be atomic single-row updates:
// SwapRefreshTokenDigest is a compare-and-set, so of two refreshes racing on
// the same stale digest exactly one observes a match and wins.
type Store interface {
	CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error)

	// AccountByIdentifier resolves a username OR email, case-insensitively.
	// Usernames never contain "@" (enforced at registration), so the two
	// namespaces cannot collide.
	AccountByIdentifier(ctx context.Context, identifier string) (Account, error)
	AccountByID(ctx context.Context, id string) (Account, error)

	// SetRefreshTokenDigest overwrites the stored digest unconditionally
	// (login: any prior session is implicitly invalidated).
	SetRefreshTokenDigest(ctx context.Context, accountID, digest string) error

	// SwapRefreshTokenDigest replaces oldDigest with newDigest only if the
	// stored value still equals oldDigest; returns ErrUnauthorized otherwise.
	SwapRefreshTokenDigest(ctx context.Context, accountID, oldDigest, newDigest string) error

	// ClearRefreshTokenDigest revokes the current session. Idempotent.
	ClearRefreshTokenDigest(ctx context.Context, accountID string) error

	UpdatePassword(ctx context.Context, accountID, passwordHash string) error
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (Account, error)
	UpdateAvatar(ctx context.Context, accountID, url string) (Account, error)
	UpdateCoverImage(ctx context.Context, accountID, url string) (Account, error)
}
