package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"medicare-pms/internal/handlers"
	"medicare-pms/internal/middleware"
	"medicare-pms/internal/routes"
	"medicare-pms/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	credential, err := utils.NewCredential(a.cfg.AuthUsername, a.cfg.AuthPassword)
	if err != nil {
		return err
	}

	h := handlers.New(handlers.Deps{
		Store:      a.store,
		Notifier:   a.notifier,
		Credential: credential,
		JWTSecret:  []byte(a.cfg.JWTSecret),
		TokenTTL:   a.cfg.TokenTTL,
		Location:   a.loc,
		Logger:     a.logger,
	})

	if !a.cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Init Router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(a.logger))
	routes.SetupRoutes(r, h, routes.Options{
		JWTSecret:   []byte(a.cfg.JWTSecret),
		CORSOrigins: a.cfg.CORSOrigins,
		RateLimiter: middleware.NewIPRateLimiter(ctx, rate.Limit(a.cfg.RateLimitRPS), a.cfg.RateLimitBurst),
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("port", a.cfg.Port).Msg("Server berjalan")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
