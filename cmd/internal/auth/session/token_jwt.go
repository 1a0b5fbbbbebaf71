package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Claims is the minimal claim set carried by both token classes.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// TokenManager mints and verifies the two token classes.
type TokenManager interface {
	MintAccess(accountID string, now time.Time) (token string, exp time.Time, err error)
	MintRefresh(accountID string, now time.Time) (token string, exp time.Time, err error)
	VerifyAccess(token string, now time.Time) (accountID string, err error)
	VerifyRefresh(token string, now time.Time) (accountID string, err error)
}

// jwtManager signs HS256 JWTs with per-class secrets.
type jwtManager struct {
	issuer     string
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clockSkew  time.Duration
}

// NewJWTManager builds the TokenManager used in production.
func NewJWTManager(cfg Config) (TokenManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &jwtManager{
		issuer:     cfg.Issuer,
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		clockSkew:  cfg.ClockSkew,
	}, nil
}

func (m *jwtManager) MintAccess(accountID string, now time.Time) (string, time.Time, error) {
	return m.mint(accountID, now, typeAccess, m.accessTTL, m.accessKey)
}

func (m *jwtManager) MintRefresh(accountID string, now time.Time) (string, time.Time, error) {
	return m.mint(accountID, now, typeRefresh, m.refreshTTL, m.refreshKey)
}

func (m *jwtManager) VerifyAccess(token string, now time.Time) (string, error) {
	return m.verify(token, now, typeAccess, m.accessKey)
}

func (m *jwtManager) VerifyRefresh(token string, now time.Time) (string, error) {
	return m.verify(token, now, typeRefresh, m.refreshKey)
}

func (m *jwtManager) mint(accountID string, now time.Time, typ string, ttl time.Duration, key []byte) (string, time.Time, error) {
	exp := now.Add(ttl)

	// The random jti keeps two tokens minted within the same second from
	// being byte-identical, which rotation depends on.
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		TokenType: typ,
	})

	signed, err := tok.SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, exp, nil
}

func (m *jwtManager) verify(tokenString string, now time.Time, typ string, key []byte) (string, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	tok, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrTokenInvalid
	}
	// A refresh token must never pass as an access token, nor the reverse.
	if claims.TokenType != typ {
		return "", ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
