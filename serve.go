package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"laludev-backend/internal/api"
	"laludev-backend/internal/auth"
	"laludev-backend/internal/certs"
	"laludev-backend/internal/config"
	"laludev-backend/internal/database"
	"laludev-backend/internal/logging"
	"laludev-backend/internal/metrics"
	"laludev-backend/internal/portfolio"
	"laludev-backend/internal/session"
	"laludev-backend/internal/upload"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server until SIGINT or SIGTERM.

On startup the database schema is migrated and the configured administrator
(ADMIN_USERNAME / ADMIN_PASSWORD) is created or has its password updated.

Examples:
  # Local development with images kept on disk
  UPLOAD_SINK=local SESSION_SECRET=dev ADMIN_PASSWORD=dev laludev serve

  # Layer the environment over a config file
  laludev serve --config /etc/laludev.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync(logger) }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cmd, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	creds := auth.NewCredentials(database.NewAdminRepo(store))
	adminID, err := creds.Upsert(ctx, cfg.Admin.Username, cfg.Admin.Password.Value())
	if err != nil {
		return fmt.Errorf("failed to provision administrator: %w", err)
	}
	logger.Info("administrator ready", zap.String("usuario", cfg.Admin.Username), zap.Int64("id", adminID))

	sessions, err := newSessionStore(ctx, cfg.Session, logger)
	if err != nil {
		return err
	}
	gate := session.NewGate(sessions, cfg.Session.TTL, logger)

	sink, err := newSink(cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	svc := portfolio.NewService(portfolio.Deps{
		Credentials: creds,
		Gate:        gate,
		Projects:    database.NewProjectRepo(store),
		Uploads:     upload.NewHandler(cfg.Upload.StagingDir, cfg.Upload.Folder, sink, logger),
		Metrics:     m,
		Logger:      logger,
	})

	var limiter *auth.RateLimiter
	if cfg.Admin.MaxAttempts > 0 {
		limiter = auth.NewRateLimiter(cfg.Admin.MaxAttempts, cfg.Admin.Lockout, cfg.Admin.Lockout)
		logger.Info("login throttling enabled",
			zap.Int("max_attempts", cfg.Admin.MaxAttempts),
			zap.Duration("lockout", cfg.Admin.Lockout),
		)
	}

	srv := api.NewServer(
		api.Options{PublicDir: cfg.Server.PublicDir, UploadDir: cfg.Upload.Dir, Limiter: limiter},
		svc,
		gate,
		auth.NewCookieCodec(cfg.Session.Secret.Value(), cfg.Session.CookieSecure, cfg.Session.TTL),
		m,
		store,
		logger,
	)

	go sweep(ctx, gate, limiter, cfg.Session.SweepInterval, logger)

	start := func() error { return srv.Start(cfg.Server.Addr()) }
	if cfg.Server.TLSDir != "" {
		certPath, keyPath, err := certs.Ensure(cfg.Server.TLSDir, []string{cfg.Server.Host})
		if err != nil {
			return err
		}
		start = func() error { return srv.StartTLS(cfg.Server.Addr(), certPath, keyPath) }
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newSessionStore(ctx context.Context, cfg config.SessionConfig, logger *zap.Logger) (session.Store, error) {
	if cfg.Store != config.StoreRedis {
		return session.NewMemoryStore(), nil
	}
	client, err := session.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword.Value())
	if err != nil {
		return nil, err
	}
	logger.Info("using redis session store", zap.String("addr", cfg.RedisAddr))
	return session.NewRedisStore(client), nil
}

func newSink(cfg *config.Config) (upload.Sink, error) {
	if cfg.Upload.Sink == config.SinkLocal {
		return upload.NewLocalSink(cfg.Upload.Dir, "/uploads"), nil
	}
	c := cfg.Cloudinary
	sink, err := upload.NewCloudinarySink(c.CloudName, c.APIKey, c.APISecret.Value(), c.UploadPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	return sink, nil
}

// sweep drops expired sessions and stale login counters until ctx is done.
func sweep(ctx context.Context, gate *session.Gate, limiter *auth.RateLimiter, every time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if limiter != nil {
				limiter.Sweep()
			}
			n, err := gate.Sweep(ctx)
			if err != nil {
				logger.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}
