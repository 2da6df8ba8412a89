package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/installment-plan/internal/catalog"
	"github.com/iwvelando/installment-plan/internal/checkout"
	"github.com/iwvelando/installment-plan/internal/config"
	"github.com/iwvelando/installment-plan/internal/server"
	"github.com/iwvelando/installment-plan/internal/session"
	"github.com/iwvelando/installment-plan/pkg/constants"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file (products, session)")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	addressFlag := flag.String("address", "", "listen address override, e.g. :8080")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	serverConf, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
		os.Exit(1)
	}

	conf, err := config.LoadConfigurationOrDefault(*configLocation, constants.DefaultConfigFile)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := config.BuildLogger(serverConf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := session.Open(ctx, conf.Session.Backend, session.RedisOptions{
		Address:  conf.Session.Redis.Address,
		Password: conf.Session.Redis.Password,
		DB:       conf.Session.Redis.DB,
		TTL:      conf.Session.TTL,
	})
	if err != nil {
		logger.Fatal("failed to open session store",
			zap.String("op", "main"),
			zap.String("backend", conf.Session.Backend),
			zap.Error(err),
		)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close session store",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	if memStore, ok := store.(*session.MemoryStore); ok {
		go sweepSessions(ctx, logger, memStore, time.Minute)
	}

	svc := checkout.NewService(logger, catalog.Default(), store, nil)
	handler := server.NewHandler(logger, svc, conf.ProductList(), serverConf.UploadSizeBytes(), version)

	address := serverConf.Address
	if *addressFlag != "" {
		address = *addressFlag
	}

	httpServer := &http.Server{
		Addr:         address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("installment plan server listening",
			zap.String("op", "main"),
			zap.String("address", address),
			zap.String("sessionBackend", conf.Session.Backend),
			zap.String("version", version),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Error("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return
	case <-ctx.Done():
		logger.Info("shutting down server",
			zap.String("op", "main"),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConf.ShutdownTimeoutDuration())
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	logger.Info("server exited",
		zap.String("op", "main"),
	)
}

// sweepSessions drops expired plans from an in-memory store until ctx ends.
func sweepSessions(ctx context.Context, logger *zap.Logger, store *session.MemoryStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := store.Sweep(); removed > 0 {
				logger.Debug("expired sessions removed",
					zap.String("op", "main.sweepSessions"),
					zap.Int("removed", removed),
				)
			}
		}
	}
}
