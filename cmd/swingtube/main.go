package main

import (
	"context"
	"os"
	"time"

	"swingtube/internal/cli"
	"swingtube/internal/gallery"
	apphttp "swingtube/internal/http"
	"swingtube/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(log.ParseLevel(os.Getenv("LOG_LEVEL")))

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		bootLogger.Error("Configuration validation failed", log.FieldError, err.Error(), log.FieldOperation, log.OpValidate)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.Level())

	ctx, stop := cli.SignalContext()
	defer stop()

	initCtx, cancelInit := context.WithTimeout(ctx, 30*time.Second)
	reader, err := cli.NewRecordReader(initCtx, cfg, logger)
	cancelInit()
	if err != nil {
		logger.Error("Failed to initialize data backend", log.FieldError, err.Error(), log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	store := gallery.NewStore(reader, gallery.StoreConfig{
		MaxSessions: cfg.SessionMax,
		TTL:         cfg.SessionTTL,
	}, logger)
	defer store.Close()

	srv, err := apphttp.NewServer(":"+cfg.Port, store, apphttp.Options{
		Location:          cfg.Location(),
		WaitTimeout:       cfg.GalleryWaitTimeout,
		RequestsPerMinute: cfg.RateLimitRPM,
		TrustedProxies:    cfg.TrustedProxies,
		Logger:            logger,
	})
	if err != nil {
		logger.Error("Failed to initialize HTTP server", log.FieldError, err.Error())
		os.Exit(1)
	}

	// Configure server timeouts and limits. WriteTimeout covers the
	// gallery partial waiting for a load.
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.GalleryWaitTimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	logger.Info("Starting swingtube server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"timezone", cfg.Timezone,
		log.FieldOperation, log.OpStartup)

	if err := cli.Serve(ctx, srv, 30*time.Second, logger); err != nil {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		store.Close()
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
