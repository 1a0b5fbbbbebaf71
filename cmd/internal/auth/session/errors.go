package session

import (
	"errors"

	"github.com/anujp125/Drishya/cmd/identity"
)

// ErrTokenInvalid is the internal verdict for any token verification failure
// (bad signature, expired, malformed, wrong class). It is never surfaced
// directly; the manager maps it to identity.ErrUnauthorized.
var ErrTokenInvalid = errors.New("token invalid")

// unauthorized wraps op into the shared error taxonomy. The refresh path
// deliberately funnels every failure mode through this one shape so callers
// cannot probe which check rejected a token.
func unauthorized(op string) error {
	return identity.OpError{Op: op, Kind: identity.ErrUnauthorized, Msg: "invalid credentials or token"}
}
