package app

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains all runtime configuration, loaded from environment
// variables with DRISHYA_-prefixed names.
type Config struct {
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	MaxHeaderBytes    int           `env:"HTTP_MAX_HEADER_BYTES" envDefault:"1048576"`

	DatabaseURL    string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns     int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns     int32  `env:"DB_MIN_CONNS" envDefault:"0"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	// TokenHMACKey keys refresh-token digests. Empty selects plain SHA-256;
	// RequireTokenHMAC makes startup fail in that case.
	TokenHMACKey     string `env:"TOKEN_HMAC_KEY"`
	RequireTokenHMAC bool   `env:"REQUIRE_TOKEN_HMAC" envDefault:"false"`

	CookieDomain string `env:"COOKIE_DOMAIN"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"true"`

	RequireAvatar bool `env:"REQUIRE_AVATAR" envDefault:"true"`

	MinioEndpoint      string `env:"MINIO_ENDPOINT,required,notEmpty"`
	MinioAccessKey     string `env:"MINIO_ACCESS_KEY,required,notEmpty"`
	MinioSecretKey     string `env:"MINIO_SECRET_KEY,required,notEmpty"`
	MinioBucket        string `env:"MINIO_BUCKET" envDefault:"drishya"`
	MinioUseSSL        bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MediaPublicBaseURL string `env:"MEDIA_PUBLIC_BASE_URL"`

	CORSAllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	CORSAllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	CORSMaxAgeSeconds    int      `env:"CORS_MAX_AGE_SECONDS" envDefault:"600"`
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "DRISHYA_"}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
