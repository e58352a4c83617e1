package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"inhouse52/internal/config"
	"inhouse52/internal/db"
	"inhouse52/internal/http/router"
	"inhouse52/internal/logging"
	"inhouse52/internal/security"
	"inhouse52/internal/service"
	"inhouse52/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config/app.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// .env is optional
	_ = godotenv.Load()

	cfg, defaulted, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if defaulted {
		slog.Warn("config file not found, using defaults", "path", configPath)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return err
	}
	if cfg.Secret == config.DefaultSecret {
		logger.Warn("using the default signing secret; set SECRET_KEY in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer st.Close()

	tokens, err := security.NewTokenService(cfg.Secret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	sessions := security.NewSessionStore(cfg.Secret, cfg.TokenTTL, cfg.SecureCookies)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	svc := service.New(st, tokens, cfg.UploadDir, service.WithLogger(logger))

	handler, err := router.Setup(router.Deps{
		Service:        svc,
		Sessions:       sessions,
		Logger:         logger,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigins:    cfg.CORSOrigins,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "json":
		return store.NewJSONFile(cfg.DataFile)
	case "sqlite3", "postgres":
		return db.Init(cfg.StoreDriver, cfg.DBDSN)
	case "redis":
		return store.NewRedis(ctx, store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Key:      cfg.RedisKey,
		})
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
