package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/discoverygarden/islandora-solr-metadata/internal/api"
	"github.com/discoverygarden/islandora-solr-metadata/pkg/solrmetadata/config"
)

// EnvConfig holds the process environment settings for the server executable.
type EnvConfig struct {
	Port               string `env:"PORT" env-default:"8080"`
	Environment        string `env:"ENVIRONMENT" env-default:"development"`
	DatabaseURL        string `env:"DATABASE_URL" env-default:""`
	DBSchema           string `env:"DB_SCHEMA" env-default:"islandora"`
	EnableEventLogging bool   `env:"ENABLE_EVENT_LOGGING" env-default:"true"`
}

func (e EnvConfig) serverConfig() (*config.ServerConfig, error) {
	return config.Load(func(c *config.ServerConfig) error {
		c.Port = e.Port
		c.Environment = e.Environment
		c.DBSchema = e.DBSchema
		c.EnableEventLogging = e.EnableEventLogging
		if e.DatabaseURL != "" && e.DatabaseURL != "memory" {
			c.DatabaseType = "postgres"
			c.DatabaseURL = e.DatabaseURL
		}
		return nil
	})
}

func main() {
	var env EnvConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	serverConfig, err := env.serverConfig()
	if err != nil {
		slog.Error("Failed to load server configuration", "err", err)
		os.Exit(1)
	}

	if serverConfig.DatabaseType == "postgres" {
		if err := config.PingPostgres(serverConfig.DatabaseURL, serverConfig.DBSchema); err != nil {
			slog.Error("Failed to reach database", "err", err)
			os.Exit(1)
		}
	}

	svc, err := serverConfig.BuildService()
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Mount("/", api.NewMetadataHandler(svc).Routes())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: r,
	}

	go func() {
		slog.Info("Solr metadata configuration server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}
