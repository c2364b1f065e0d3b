package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/discoverygarden/islandora-solr-metadata/pkg/solrmetadata"
	"github.com/discoverygarden/islandora-solr-metadata/pkg/solrmetadata/fieldconfig"
	"github.com/discoverygarden/islandora-solr-metadata/pkg/solrmetadata/repo/memory"
	repopg "github.com/discoverygarden/islandora-solr-metadata/pkg/solrmetadata/repo/postgres"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		DatabaseType:       "memory",
		DBSchema:           "islandora",
		EnableEventLogging: true,
	}
}

// ServerConfig represents server configuration for the solr-metadata service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: islandora)

	// Server options
	EnableEventLogging bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (solrmetadata.Service, error) {
	configStore, associationStore, err := c.buildStores()
	if err != nil {
		return nil, fmt.Errorf("failed to build stores: %w", err)
	}

	options := []solrmetadata.Option{
		solrmetadata.WithConfigStore(configStore),
		solrmetadata.WithAssociationStore(associationStore),
		solrmetadata.WithFieldService(fieldconfig.New(configStore)),
	}

	if c.EnableEventLogging {
		options = append(options, solrmetadata.WithEventSink(solrmetadata.NewLoggingEventSink(nil)))
	} else {
		options = append(options, solrmetadata.WithEventSink(solrmetadata.NewNoopEventSink()))
	}

	return solrmetadata.New(options...)
}

// buildStores creates the config and association stores based on the configuration
func (c *ServerConfig) buildStores() (solrmetadata.ConfigStore, solrmetadata.AssociationStore, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.NewConfigStore(), memory.NewAssociationStore(), nil
	case "postgres":
		pool, err := c.newPool()
		if err != nil {
			return nil, nil, err
		}
		return repopg.NewConfigStore(pool), repopg.NewAssociationStoreWithPool(pool), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *ServerConfig) newPool() (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	// Optionally set search_path for the connection
	schema := c.DBSchema
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if schema == "" {
			return nil
		}
		// set search_path for this session
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
		return err
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}

// PingPostgres verifies connectivity to Postgres and optionally sets search_path for the session.
// It fails if the schema (when provided) does not exist.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
