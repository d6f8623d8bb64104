package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/perimetra/tenantcore/pkg/accesstoken"
	userauth "github.com/perimetra/tenantcore/pkg/auth"
	"github.com/perimetra/tenantcore/pkg/config"
	"github.com/perimetra/tenantcore/pkg/httpserver"
	"github.com/perimetra/tenantcore/pkg/logger"
	"github.com/perimetra/tenantcore/pkg/pg"
	"github.com/perimetra/tenantcore/pkg/rbac"
	"github.com/perimetra/tenantcore/pkg/redis"
	"github.com/perimetra/tenantcore/pkg/requestid"
	"github.com/perimetra/tenantcore/pkg/session"
	"github.com/perimetra/tenantcore/pkg/tenant"
	authsvc "github.com/perimetra/tenantcore/svc/auth"
)

type appConfig struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Addr string `env:"SERVER_ADDR" envDefault:":8080"`

	PG      pg.Config
	Redis   redis.Config
	Session session.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	logOpts := []logger.Option{
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	}
	if cfg.Env == "production" {
		logOpts = append(logOpts, logger.WithProduction("tenantcore"))
	} else {
		logOpts = append(logOpts, logger.WithDevelopment("tenantcore"))
	}
	log := logger.New(logOpts...)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(cfg appConfig, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close() //nolint:errcheck

	tokens, err := accesstoken.New([]byte(cfg.Session.Secret), cfg.Session.Issuer, cfg.Session.AccessTTL)
	if err != nil {
		return err
	}

	directory := tenant.NewPostgresDirectory(pool)
	cache := tenant.NewRedisCache(rdb, "")
	users := userauth.NewService(userauth.NewPostgresStorage(pool), userauth.WithLogger(log))
	perms := rbac.NewService(rbac.NewPostgresStore(pool), rbac.WithLogger(log))

	sessionStore := session.NewPostgresStore(pool)
	sessions := session.NewManager(sessionStore, tokens, cfg.Session.RefreshTTL,
		session.WithLogger(log))
	go sessions.RunCleanup(ctx, cfg.Session.CleanupInterval, cfg.Session.CleanupAfter)

	handler := authsvc.NewHandler(users, sessions, tokens, perms, cfg.Session.RefreshTTL,
		authsvc.WithLogger(log))
	admin := authsvc.NewAdminHandler(directory, perms, tokens, sessionStore,
		authsvc.WithAdminLogger(log),
		authsvc.WithAdminCache(cache))

	router := authsvc.Router(handler, admin, directory,
		tenant.WithCache(cache),
		tenant.WithLogger(log))
	router.Get("/health", httpserver.HealthCheckHandler(log,
		pg.Healthcheck(pool),
		redis.Healthcheck(rdb),
	))

	srv := httpserver.New(
		httpserver.WithAddr(cfg.Addr),
		httpserver.WithLogger(log),
	)

	log.Info("server starting", slog.String("addr", cfg.Addr))
	return srv.Run(ctx, router)
}
