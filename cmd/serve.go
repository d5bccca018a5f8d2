package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	_ "microwave/docs"
	"microwave/internal/config"
	"microwave/internal/eventloop"
	"microwave/internal/handlers"
	"microwave/internal/logger"
	"microwave/internal/server"
	"microwave/internal/service"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the oven controller and its HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *configPath)
		},
	}
}

func loggerOptions(c config.LogConfig) logger.Options {
	return logger.Options{
		Level:      c.Level,
		File:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// serve runs until ctx is cancelled, then shuts the server down before
// stopping the oven loop.
func serve(ctx context.Context, configPath string) error {
	cfg, conn, repos, err := openStore(configPath)
	if err != nil {
		return err
	}
	log := logger.Get(loggerOptions(cfg.Log))
	defer func() { _ = log.Sync() }()
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("sqlite_close_failed", "err", cerr)
		}
	}()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loop := eventloop.New(eventloop.SystemClock)
	go loop.Run(loopCtx)

	controller := service.NewOvenService(loop, repos.StateRepo, repos.EventRepo, service.NewLogNotifier(log), log, service.OvenSettings{
		TickInterval:     cfg.Oven.TickInterval,
		RotationInterval: cfg.Oven.RotationInterval,
		RotationStep:     cfg.Oven.RotationStep,
		Foods:            cfg.Oven.Foods,
	})
	if err := controller.PowerOn(ctx); err != nil {
		return err
	}

	services := service.NewService(repos, controller, service.AuthSettings{
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
	})
	apiHandler := handlers.NewHandler(services, log)

	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	errc := make(chan error, 1)
	go func() { errc <- srv.Run() }()
	log.Infow("server_started", "addr", srv.Addr(), "db", cfg.DB.Path)

	select {
	case err := <-errc:
		if err != nil {
			log.Errorw("server_failed", "err", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server_forced_shutdown", "err", err)
		return err
	}
	stopLoop()
	<-loop.Done()
	return nil
}
