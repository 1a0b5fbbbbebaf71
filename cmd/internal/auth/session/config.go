package session

import (
	"errors"
	"time"
)

// ErrConfig is returned for invalid session configuration.
var ErrConfig = errors.New("invalid session config")

// Config is the explicit runtime configuration for the session manager,
// injected at construction.
type Config struct {
	// Issuer is set as the "iss" claim on every minted token.
	Issuer string

	// AccessSecret signs access tokens; RefreshSecret signs refresh tokens.
	// They must differ so one token class can never stand in for the other.
	AccessSecret  string
	RefreshSecret string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// ClockSkew is the leeway applied to expiry checks during verification.
	ClockSkew time.Duration
}

// DefaultConfig returns development-friendly TTLs. Secrets have no defaults.
func DefaultConfig() Config {
	return Config{
		Issuer:     "drishya",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		ClockSkew:  30 * time.Second,
	}
}

// Validate enforces the invariants the manager relies on.
func (c Config) Validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return ErrConfig
	}
	if c.AccessSecret == c.RefreshSecret {
		return ErrConfig
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 || c.RefreshTTL < c.AccessTTL {
		return ErrConfig
	}
	if c.ClockSkew < 0 {
		return ErrConfig
	}
	return nil
}
