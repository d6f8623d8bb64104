package session

import "time"

// Config holds session settings loaded from the environment.
type Config struct {
	Secret          string        `env:"SESSION_SECRET,required"`
	Issuer          string        `env:"SESSION_ISSUER" envDefault:"tenantcore"`
	AccessTTL       time.Duration `env:"SESSION_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL      time.Duration `env:"SESSION_REFRESH_TTL" envDefault:"168h"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`
	CleanupAfter    time.Duration `env:"SESSION_CLEANUP_AFTER" envDefault:"720h"`
}
