// Package identity owns Drishya's account records.
//
// It defines the Account model, canonicalization rules for usernames and
// emails, the persistence boundary used by the HTTP layer and the session
// manager, and a stable typed-error contract callers can map to API status
// codes.
package identity
