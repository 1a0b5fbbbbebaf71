package app

import (
	"errors"

	"github.com/anujp125/Drishya/cmd/security/token"
)

// newTokenDigester enforces the refresh-token digest policy at startup.
// Fail-fast: silently falling back to unkeyed hashing when the deployment
// demands HMAC is unacceptable.
func newTokenDigester(cfg Config) (token.Digester, error) {
	key := []byte(cfg.TokenHMACKey)

	if cfg.RequireTokenHMAC && len(key) == 0 {
		return token.Digester{}, errors.New("security policy: DRISHYA_REQUIRE_TOKEN_HMAC=true but DRISHYA_TOKEN_HMAC_KEY is missing")
	}

	d, err := token.NewDigester(key)
	if err != nil {
		if errors.Is(err, token.ErrKeyTooShort) {
			return token.Digester{}, errors.New("security policy: DRISHYA_TOKEN_HMAC_KEY is too short (min 32 bytes)")
		}
		return token.Digester{}, err
	}
	return d, nil
}
