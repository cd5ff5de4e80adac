package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prappser/csvdrop/internal"
	"github.com/prappser/csvdrop/internal/health"
	"github.com/prappser/csvdrop/internal/pages"
	"github.com/prappser/csvdrop/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/valyala/fasthttp"
)

const version = "1.0.0"

func main() {
	configPath := pflag.StringP("config", "c", internal.DefaultConfigPath, "path to the YAML config file")
	pflag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	config, err := internal.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
		return
	}
	internal.ConfigureLogging(config.Log)

	backend, err := storage.NewBackend(&config.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing storage backend")
		return
	}
	backendType := config.Storage.Type
	if backendType == "" {
		backendType = storage.BackendTypeLocal
	}

	pageEndpoints, err := pages.NewEndpoints()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading page templates")
		return
	}
	storageEndpoints := storage.NewEndpoints(storage.NewService(backend))
	healthEndpoints := health.NewEndpoints(version, string(backendType))

	server := &fasthttp.Server{
		Handler:            internal.NewRequestHandler(config, storageEndpoints, healthEndpoints, pageEndpoints),
		Name:               "csvdrop",
		MaxRequestBodySize: config.Server.MaxUploadSize,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().
			Str("addr", config.Server.Addr()).
			Str("storage", string(backendType)).
			Str("version", version).
			Msg("Server started")
		if err := server.ListenAndServe(config.Server.Addr()); err != nil {
			log.Fatal().Err(err).Msg("Error starting server")
		}
	}()

	<-stop
	log.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
