// Package session implements Drishya's session and credential lifecycle.
//
// It owns password verification, dual-token issuance (short-lived access JWT,
// longer-lived refresh JWT signed with a distinct secret), refresh rotation,
// and revocation. The account record mirrors a digest of the single currently
// valid refresh token, so issuing a new one implicitly invalidates all
// earlier ones; every refresh-path failure collapses to Unauthorized so
// callers cannot distinguish expired, forged, and superseded tokens.
package session
