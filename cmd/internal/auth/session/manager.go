package session

import (
	"context"
	"strings"
	"time"

	"github.com/anujp125/Drishya/cmd/identity"
	"github.com/anujp125/Drishya/cmd/security/password"
	sectoken "github.com/anujp125/Drishya/cmd/security/token"
)

// AccountStore is the slice of identity persistence the manager consumes.
// Digest updates must be atomic single-row writes; SwapRefreshTokenDigest is
// a compare-and-set so concurrent refreshes on the same stale token cannot
// both succeed.
type AccountStore interface {
	AccountByIdentifier(ctx context.Context, identifier string) (identity.Account, error)
	AccountByID(ctx context.Context, id string) (identity.Account, error)
	SetRefreshTokenDigest(ctx context.Context, accountID, digest string) error
	SwapRefreshTokenDigest(ctx context.Context, accountID, oldDigest, newDigest string) error
	ClearRefreshTokenDigest(ctx context.Context, accountID string) error
}

// TokenPair is the result of authentication or rotation.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Manager implements the session lifecycle: authenticate, refresh, revoke,
// verify.
type Manager struct {
	tokens   TokenManager
	store    AccountStore
	pw       password.Config
	digester sectoken.Digester
}

// NewManager wires the manager from its collaborators.
func NewManager(tokens TokenManager, store AccountStore, pw password.Config, digester sectoken.Digester) *Manager {
	return &Manager{tokens: tokens, store: store, pw: pw, digester: digester}
}

// Authenticate verifies credentials and starts a session.
//
// The identifier may be a username or an email (case-insensitive). A missing
// account fails with NotFound; a wrong password with Unauthorized. On success
// the freshly minted refresh-token digest overwrites any previously stored
// one, which is the rotation/invalidation point for earlier sessions.
func (m *Manager) Authenticate(ctx context.Context, identifier, plaintext string) (identity.Profile, TokenPair, error) {
	const op = "session.Authenticate"

	identifier = strings.TrimSpace(identifier)
	var missing []string
	if identifier == "" {
		missing = append(missing, "identifier is required")
	}
	if plaintext == "" {
		missing = append(missing, "password is required")
	}
	if len(missing) > 0 {
		return identity.Profile{}, TokenPair{}, identity.ValidationError{Op: op, Fields: missing}
	}

	acct, err := m.store.AccountByIdentifier(ctx, identifier)
	if err != nil {
		return identity.Profile{}, TokenPair{}, err
	}

	ok, err := m.pw.Verify(acct.PasswordHash, plaintext)
	if err != nil {
		return identity.Profile{}, TokenPair{}, err
	}
	if !ok {
		return identity.Profile{}, TokenPair{}, unauthorized(op)
	}

	now := time.Now().UTC()
	pair, digest, err := m.mintPair(acct.ID, now)
	if err != nil {
		return identity.Profile{}, TokenPair{}, err
	}

	if err := m.store.SetRefreshTokenDigest(ctx, acct.ID, digest); err != nil {
		return identity.Profile{}, TokenPair{}, err
	}

	return acct.Public(), pair, nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating the
// stored digest. Every verification failure collapses to Unauthorized:
// expired, forged, account gone, and superseded tokens are indistinguishable
// to the caller. Store failures pass through untouched.
func (m *Manager) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	const op = "session.Refresh"

	presented = strings.TrimSpace(presented)
	if presented == "" {
		return TokenPair{}, identity.ValidationError{Op: op, Fields: []string{"refreshToken is required"}}
	}

	now := time.Now().UTC()

	accountID, err := m.tokens.VerifyRefresh(presented, now)
	if err != nil {
		return TokenPair{}, unauthorized(op)
	}

	acct, err := m.store.AccountByID(ctx, accountID)
	if err != nil {
		// A missing account collapses to Unauthorized like any other bad
		// token; store outages pass through so callers surface a 500.
		if identity.IsNotFound(err) || identity.IsUnauthorized(err) {
			return TokenPair{}, unauthorized(op)
		}
		return TokenPair{}, err
	}

	presentedDigest := m.digester.Digest(presented)
	if acct.RefreshTokenDigest == nil || !sectoken.Equal(*acct.RefreshTokenDigest, presentedDigest) {
		// Revoked, or invalidated by a later rotation (e.g. a login elsewhere).
		return TokenPair{}, unauthorized(op)
	}

	pair, newDigest, err := m.mintPair(acct.ID, now)
	if err != nil {
		return TokenPair{}, err
	}

	// CAS rotation: of two refreshes racing on the same stale token, the
	// loser sees the winner's digest here and fails.
	if err := m.store.SwapRefreshTokenDigest(ctx, acct.ID, presentedDigest, newDigest); err != nil {
		if identity.IsNotFound(err) || identity.IsUnauthorized(err) {
			return TokenPair{}, unauthorized(op)
		}
		return TokenPair{}, err
	}

	return pair, nil
}

// Revoke ends the account's session by clearing the stored digest.
// Revoking an already-revoked session succeeds silently.
func (m *Manager) Revoke(ctx context.Context, accountID string) error {
	return m.store.ClearRefreshTokenDigest(ctx, accountID)
}

// Verify checks an access token and returns the embedded account identifier.
// Purely stateless: it never touches the account store, which is why access
// tokens carry a short expiry.
func (m *Manager) Verify(accessToken string) (string, error) {
	const op = "session.Verify"

	accountID, err := m.tokens.VerifyAccess(strings.TrimSpace(accessToken), time.Now().UTC())
	if err != nil {
		return "", unauthorized(op)
	}
	return accountID, nil
}

func (m *Manager) mintPair(accountID string, now time.Time) (TokenPair, string, error) {
	access, accessExp, err := m.tokens.MintAccess(accountID, now)
	if err != nil {
		return TokenPair{}, "", err
	}
	refresh, refreshExp, err := m.tokens.MintRefresh(accountID, now)
	if err != nil {
		return TokenPair{}, "", err
	}
	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, m.digester.Digest(refresh), nil
}
