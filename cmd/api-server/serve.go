package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tendercrm/db"
	"tendercrm/db/migrations"
	"tendercrm/internal/auth"
	"tendercrm/internal/handlers"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func serveCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireServe(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conn, err := connectDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			if !skipMigrations {
				if err := migrations.Up(ctx, conn.DB); err != nil {
					return err
				}
			}

			var revoker auth.Revoker
			if cfg.RedisAddr != "" {
				rc, err := auth.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
				if err != nil {
					return fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
				}
				defer rc.Close()
				revoker = auth.NewRedisRevoker(rc)
				log.WithField("addr", cfg.RedisAddr).Info("token revocations stored in redis")
			}

			tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, revoker)
			if err != nil {
				return err
			}

			h := handlers.NewHandler(db.NewStorage(conn), tokens,
				handlers.WithTaxRate(cfg.TaxRate),
				handlers.WithBcryptCost(cfg.BcryptCost),
			)
			router := handlers.NewRouter(h, handlers.RouterConfig{
				CORSOrigins: cfg.CORSOrigins,
				Logger:      log.StandardLogger(),
				Timeout:     requestTimeout,
			})

			srv := &http.Server{
				Addr:         cfg.ServerAddress,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: requestTimeout + 5*time.Second,
				IdleTimeout:  time.Minute,
			}
			return run(ctx, srv)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "не накатывать миграции при старте")
	return cmd
}

// run слушает адрес до отмены ctx и затем дожидается завершения запросов.
func run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"addr": srv.Addr}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
