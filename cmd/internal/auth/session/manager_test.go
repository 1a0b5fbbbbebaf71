package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anujp125/Drishya/cmd/identity"
	"github.com/anujp125/Drishya/cmd/security/password"
	sectoken "github.com/anujp125/Drishya/cmd/security/token"
)

// fakeAccounts is an in-memory AccountStore with the same compare-and-set
// semantics the Postgres store provides.
type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]*identity.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[string]*identity.Account)}
}

func (f *fakeAccounts) add(a identity.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := a
	f.accounts[a.ID] = &cp
}

func (f *fakeAccounts) AccountByIdentifier(_ context.Context, identifier string) (identity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	norm := identity.NormalizeUsername(identifier)
	for _, a := range f.accounts {
		if a.UsernameNorm == norm || a.EmailNorm == norm {
			return *a, nil
		}
	}
	return identity.Account{}, identity.NotFoundError{Op: "fake.AccountByIdentifier", Resource: "account"}
}

func (f *fakeAccounts) AccountByID(_ context.Context, id string) (identity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.accounts[id]; ok {
		return *a, nil
	}
	return identity.Account{}, identity.NotFoundError{Op: "fake.AccountByID", Resource: "account"}
}

func (f *fakeAccounts) SetRefreshTokenDigest(_ context.Context, accountID, digest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[accountID]
	if !ok {
		return identity.NotFoundError{Op: "fake.SetRefreshTokenDigest", Resource: "account"}
	}
	a.RefreshTokenDigest = &digest
	return nil
}

func (f *fakeAccounts) SwapRefreshTokenDigest(_ context.Context, accountID, oldDigest, newDigest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[accountID]
	if !ok || a.RefreshTokenDigest == nil || *a.RefreshTokenDigest != oldDigest {
		return identity.OpError{Op: "fake.SwapRefreshTokenDigest", Kind: identity.ErrUnauthorized}
	}
	a.RefreshTokenDigest = &newDigest
	return nil
}

func (f *fakeAccounts) ClearRefreshTokenDigest(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[accountID]
	if !ok {
		return identity.NotFoundError{Op: "fake.ClearRefreshTokenDigest", Resource: "account"}
	}
	a.RefreshTokenDigest = nil
	return nil
}

func fastPasswordConfig() password.Config {
	cfg := password.DefaultConfig()
	cfg.Params.MemoryKiB = 16 * 1024
	cfg.Params.Iterations = 1
	return cfg
}

func newTestManager(t *testing.T) (*Manager, *fakeAccounts) {
	t.Helper()

	tokens, err := NewJWTManager(testTokenConfig())
	require.NoError(t, err)

	digester, err := sectoken.NewDigester(nil)
	require.NoError(t, err)

	store := newFakeAccounts()
	return NewManager(tokens, store, fastPasswordConfig(), digester), store
}

func registerAlice(t *testing.T, store *fakeAccounts) identity.Account {
	t.Helper()

	hash, err := fastPasswordConfig().Hash("pw123-secret")
	require.NoError(t, err)

	a := identity.Account{
		ID:           "01ALICE0000000000000000000",
		Username:     "alice",
		UsernameNorm: "alice",
		Email:        "alice@x.com",
		EmailNorm:    "alice@x.com",
		FullName:     "Alice Example",
		PasswordHash: hash,
	}
	store.add(a)
	return a
}

func TestAuthenticateThenVerify(t *testing.T) {
	m, store := newTestManager(t)
	alice := registerAlice(t, store)
	ctx := context.Background()

	profile, pair, err := m.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, profile.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	got, err := m.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got)
}

func TestAuthenticateByEmailCaseInsensitive(t *testing.T) {
	m, store := newTestManager(t)
	alice := registerAlice(t, store)

	profile, _, err := m.Authenticate(context.Background(), "  ALICE@X.COM ", "pw123-secret")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, profile.ID)
}

func TestAuthenticateFailures(t *testing.T) {
	m, store := newTestManager(t)
	registerAlice(t, store)
	ctx := context.Background()

	_, _, err := m.Authenticate(ctx, "nobody", "pw123-secret")
	assert.True(t, identity.IsNotFound(err), "unknown identifier must be NotFound, got %v", err)

	_, _, err = m.Authenticate(ctx, "alice", "wrong-password")
	assert.True(t, identity.IsUnauthorized(err), "wrong password must be Unauthorized, got %v", err)

	_, _, err = m.Authenticate(ctx, "", "")
	assert.True(t, identity.IsInvalidInput(err), "empty credentials must be invalid input, got %v", err)
}

// Full lifecycle: login, two rotations, revoke; superseded and revoked
// tokens must be rejected without distinction.
func TestRefreshRotationLifecycle(t *testing.T) {
	m, store := newTestManager(t)
	alice := registerAlice(t, store)
	ctx := context.Background()

	_, t1, err := m.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	t2, err := m.Refresh(ctx, t1.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, t1.RefreshToken, t2.RefreshToken)

	// The superseded token is dead.
	_, err = m.Refresh(ctx, t1.RefreshToken)
	assert.True(t, identity.IsUnauthorized(err), "superseded token must be Unauthorized, got %v", err)

	t3, err := m.Refresh(ctx, t2.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, t2.RefreshToken, t3.RefreshToken)

	require.NoError(t, m.Revoke(ctx, alice.ID))

	_, err = m.Refresh(ctx, t3.RefreshToken)
	assert.True(t, identity.IsUnauthorized(err), "revoked token must be Unauthorized, got %v", err)
}

func TestLoginElsewhereInvalidatesEarlierRefreshToken(t *testing.T) {
	m, store := newTestManager(t)
	registerAlice(t, store)
	ctx := context.Background()

	_, first, err := m.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	// A second login rotates the stored digest.
	_, second, err := m.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	_, err = m.Refresh(ctx, first.RefreshToken)
	assert.True(t, identity.IsUnauthorized(err))

	_, err = m.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsForgedAndMissingTokens(t *testing.T) {
	m, store := newTestManager(t)
	registerAlice(t, store)
	ctx := context.Background()

	_, err := m.Refresh(ctx, "not-a-token")
	assert.True(t, identity.IsUnauthorized(err))

	_, err = m.Refresh(ctx, "")
	assert.True(t, identity.IsInvalidInput(err))
}

func TestRefreshRejectsDeletedAccount(t *testing.T) {
	m, store := newTestManager(t)
	alice := registerAlice(t, store)
	ctx := context.Background()

	_, pair, err := m.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	store.mu.Lock()
	delete(store.accounts, alice.ID)
	store.mu.Unlock()

	_, err = m.Refresh(ctx, pair.RefreshToken)
	assert.True(t, identity.IsUnauthorized(err))
}

func TestRevokeIsIdempotent(t *testing.T) {
	m, store := newTestManager(t)
	alice := registerAlice(t, store)
	ctx := context.Background()

	_, _, err := m.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, alice.ID))
	require.NoError(t, m.Revoke(ctx, alice.ID))
}

func TestVerifyRejectsRefreshTokenAsAccess(t *testing.T) {
	m, store := newTestManager(t)
	registerAlice(t, store)

	_, pair, err := m.Authenticate(context.Background(), "alice", "pw123-secret")
	require.NoError(t, err)

	_, err = m.Verify(pair.RefreshToken)
	assert.True(t, identity.IsUnauthorized(err))
}

// Two refreshes racing on the same token: exactly one may win.
func TestConcurrentRefreshSingleWinner(t *testing.T) {
	m, store := newTestManager(t)
	registerAlice(t, store)
	ctx := context.Background()

	_, pair, err := m.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	const racers = 8
	errs := make(chan error, racers)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < racers; i++ {
		go func() {
			start.Wait()
			_, err := m.Refresh(ctx, pair.RefreshToken)
			errs <- err
		}()
	}
	start.Done()

	var wins int
	for i := 0; i < racers; i++ {
		if err := <-errs; err == nil {
			wins++
		} else {
			assert.True(t, identity.IsUnauthorized(err))
		}
	}
	assert.Equal(t, 1, wins)
}

// failingAccounts wraps fakeAccounts to inject a transport-level store error.
type failingAccounts struct {
	*fakeAccounts
	byIDErr error
	swapErr error
}

func (f *failingAccounts) AccountByID(ctx context.Context, id string) (identity.Account, error) {
	if f.byIDErr != nil {
		return identity.Account{}, f.byIDErr
	}
	return f.fakeAccounts.AccountByID(ctx, id)
}

func (f *failingAccounts) SwapRefreshTokenDigest(ctx context.Context, accountID, oldDigest, newDigest string) error {
	if f.swapErr != nil {
		return f.swapErr
	}
	return f.fakeAccounts.SwapRefreshTokenDigest(ctx, accountID, oldDigest, newDigest)
}

func TestRefreshPassesStoreOutageThrough(t *testing.T) {
	tokens, err := NewJWTManager(testTokenConfig())
	require.NoError(t, err)

	digester, err := sectoken.NewDigester(nil)
	require.NoError(t, err)

	store := newFakeAccounts()
	failing := &failingAccounts{fakeAccounts: store}
	m := NewManager(tokens, failing, fastPasswordConfig(), digester)

	registerAlice(t, store)
	ctx := context.Background()

	_, pair, err := m.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	errDown := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

	failing.byIDErr = errDown
	_, err = m.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, errDown)
	assert.False(t, identity.IsUnauthorized(err))

	failing.byIDErr = nil
	failing.swapErr = errDown
	_, err = m.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, errDown)
	assert.False(t, identity.IsUnauthorized(err))

	// Once the store recovers the token is still the valid one.
	failing.swapErr = nil
	_, err = m.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
}
