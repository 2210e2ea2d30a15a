package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/staffdesk/staffdesk/internal/auth"
	"github.com/staffdesk/staffdesk/internal/config"
	"github.com/staffdesk/staffdesk/internal/httpapi"
	"github.com/staffdesk/staffdesk/internal/notify"
	"github.com/staffdesk/staffdesk/internal/obs"
	"github.com/staffdesk/staffdesk/internal/roles"
	"github.com/staffdesk/staffdesk/internal/store/pg"
	"github.com/staffdesk/staffdesk/internal/users"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.LogFormat)

	obs.Init()
	obs.InitBuildInfo(version, commit)

	db, err := pg.Open(cfg.PGDSN)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	codec, err := auth.NewCodec([]byte(cfg.JWTSecret), cfg.JWTIssuer)
	if err != nil {
		logger.Error("configure token codec", "error", err)
		os.Exit(1)
	}

	notifier := notify.New(logger, cfg.NotifyBuffer, cfg.NotifyDelay)
	defer notifier.Close()

	userRepo := users.NewRepository(db)
	roleRepo := roles.NewRepository(db)

	api := httpapi.New(httpapi.Params{
		Logger:             logger,
		Auth:               auth.NewService(userRepo, roleRepo, codec, cfg.JWTTTL),
		Evaluator:          auth.NewEvaluator(codec),
		Policy:             auth.DefaultPolicy(),
		Users:              users.NewService(userRepo, notifier, logger),
		Roles:              roles.NewService(roleRepo),
		DB:                 db,
		Version:            version,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
		MaxBodyBytes:       cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	logger.Info("starting staffdesk-api", "version", version, "addr", srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info("stopped")
}
