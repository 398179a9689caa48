package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bulletin/app/auth"
	"bulletin/app/lock"
	"bulletin/app/repositories"
	"bulletin/app/routes"
	"bulletin/config"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bulletin HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			listener, err := net.Listen("tcp", cfg().HTTP.Addr)
			if err != nil {
				return errors.Wrapf(err, "failed to listen on %s", cfg().HTTP.Addr)
			}
			return RunAppServer(ctx, cfg(), listener)
		},
	}
}

// openStore opens the badger store described by cfg.
func openStore(cfg config.Storage) (*repositories.BadgerStore, error) {
	return repositories.NewBadgerStore(repositories.Options{
		Path:            cfg.Path,
		InMemory:        cfg.InMemory,
		SyncWrites:      cfg.SyncWrites,
		ConflictRetries: cfg.ConflictRetries,
	})
}

// newLocker picks the like-toggle lock backend.
func newLocker(ctx context.Context, cfg config.Lock) (lock.Locker, func() error, error) {
	if cfg.Backend != "redis" {
		return lock.NewLocalLocker(), func() error { return nil }, nil
	}
	locker, err := lock.NewRedisLocker(ctx, lock.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		Expiry:   cfg.Expiry,
	})
	if err != nil {
		return nil, nil, err
	}
	return locker, locker.Close, nil
}

func jwtSecret(configured string) string {
	if configured != "" {
		return configured
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	logrus.Warn("auth.jwt_secret is not set; tokens will not survive a restart")
	return hex.EncodeToString(buf)
}

// RunAppServer serves the API on listener until ctx is cancelled, then drains
// in-flight requests within the shutdown timeout.
func RunAppServer(ctx context.Context, cfg *config.Config, listener net.Listener) error {
	store, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	locker, closeLocker, err := newLocker(ctx, cfg.Lock)
	if err != nil {
		return err
	}
	defer closeLocker()

	router := routes.SetupRoutes(routes.Dependencies{
		Store:      store,
		Locker:     locker,
		Issuer:     auth.NewTokenIssuer(jwtSecret(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL),
		AdminToken: cfg.Auth.AdminToken,
	})

	server := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr": listener.Addr().String(),
			"lock": cfg.Lock.Backend,
		}).Info("Starting bulletin service")
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server error")
	case <-ctx.Done():
	}

	logrus.Info("Shutting down bulletin service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}
