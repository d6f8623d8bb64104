// Package config loads typed configuration structs from environment
// variables, optionally seeded from .env files.
//
// Configuration structs declare their variables with `env` tags:
//
//	type SessionConfig struct {
//		AccessTTL  time.Duration `env:"SESSION_ACCESS_TTL" envDefault:"15m"`
//		RefreshTTL time.Duration `env:"SESSION_REFRESH_TTL" envDefault:"168h"`
//	}
//
//	var cfg SessionConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// The first Load call in a process loads the default .env file if one
// exists. LoadEnv can be used to load alternative files before any
// configuration is parsed.
package config
