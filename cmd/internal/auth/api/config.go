package authapi

import "net/http"

// Cookie names the browser client relies on.
const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// Config controls transport behavior of the user-facing auth endpoints.
type Config struct {
	MaxBodyBytes   int64
	MaxUploadBytes int64
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite
	RequireAvatar  bool
}

// DefaultConfig returns production-safe transport defaults.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:   1 << 20,  // 1 MiB for JSON bodies
		MaxUploadBytes: 64 << 20, // multipart forms with images
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: http.SameSiteLaxMode,
		RequireAvatar:  true,
	}
}
