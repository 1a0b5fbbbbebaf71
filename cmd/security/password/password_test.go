package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	// Keep tests fast; production costs are exercised implicitly by format tests.
	cfg.Params.MemoryKiB = 16 * 1024
	cfg.Params.Iterations = 1
	return cfg
}

func TestHashAndVerify(t *testing.T) {
	cfg := testConfig()

	enc, err := cfg.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "$argon2id$v=19$"))

	ok, err := cfg.Verify(enc, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cfg.Verify(enc, "wrong password entirely")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashRejectsShortPassword(t *testing.T) {
	cfg := testConfig()

	_, err := cfg.Hash("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	cfg := testConfig()
	cfg.Policy.MaxLength = 16

	_, err := cfg.Hash(strings.Repeat("a", 17))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	cfg := testConfig()

	cases := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not phc", "plainly-not-a-hash"},
		{"wrong algorithm", "$bcrypt$v=19$m=16,t=1,p=1$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=18$m=16,t=1,p=1$c2FsdA$aGFzaA"},
		{"bad params", "$argon2id$v=19$m=zero,t=1,p=1$c2FsdA$aGFzaA"},
		{"bad base64", "$argon2id$v=19$m=16,t=1,p=1$!!$aGFzaA"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := cfg.Verify(tc.encoded, "whatever password")
			assert.ErrorIs(t, err, ErrInvalidHash)
			assert.False(t, ok)
		})
	}
}

func TestVerifyRefusesPathologicalParams(t *testing.T) {
	cfg := testConfig()

	// Parameters far above the configured ceiling must be refused before
	// key derivation runs.
	hostile := "$argon2id$v=19$m=4194304,t=64,p=64$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"
	ok, err := cfg.Verify(hostile, "whatever password")
	assert.ErrorIs(t, err, ErrInvalidHash)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	cfg := testConfig()

	a, err := cfg.Hash("same password twice")
	require.NoError(t, err)
	b, err := cfg.Hash("same password twice")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
