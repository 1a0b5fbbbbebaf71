package identity

import "time"

// Account is Drishya's canonical security principal.
// PasswordHash and RefreshTokenDigest are server-side only and must never
// leave the process; use Public() for anything client-facing.
type Account struct {
	ID           string
	Username     string
	UsernameNorm string
	Email        string
	EmailNorm    string

	FullName      string
	AvatarURL     string
	CoverImageURL string

	PasswordHash string

	// RefreshTokenDigest mirrors the single currently valid refresh token
	// (nil when the session is revoked). Overwriting it invalidates every
	// previously issued refresh token.
	RefreshTokenDigest *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the client-facing projection of an Account with credential
// material stripped.
type Profile struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Public strips password and refresh-token fields from the account.
func (a Account) Public() Profile {
	return Profile{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		FullName:      a.FullName,
		AvatarURL:     a.AvatarURL,
		CoverImageURL: a.CoverImageURL,
		CreatedAt:     a.CreatedAt,
	}
}
