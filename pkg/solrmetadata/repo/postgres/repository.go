// Package postgres provides pgx-backed implementations of the solrmetadata
// stores. The config store keeps one row per dotted path with a jsonb value;
// the association store maps directly onto the
// islandora_solr_metadata_cmodels table.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/discoverygarden/islandora-solr-metadata/pkg/solrmetadata"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Error handling helper shared by both stores.
func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry in %s", operation)
		case "23502": // not_null_violation
			return fmt.Errorf("required column %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// ConfigStore implements solrmetadata.ConfigStore over the
// islandora_solr_metadata_config table. Set and Clear stage mutations in
// memory; Save flushes them inside a single transaction, so a failed save
// leaves the committed rows untouched.
type ConfigStore struct {
	pool *pgxpool.Pool

	mu      sync.Mutex
	staged  map[string]any
	cleared []string
}

// NewConfigStore creates a new Postgres config store with a connection pool
func NewConfigStore(pool *pgxpool.Pool) *ConfigStore {
	return &ConfigStore{
		pool:   pool,
		staged: make(map[string]any),
	}
}

func (s *ConfigStore) stagedLookup(path string) (any, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.staged[path]; ok {
		return value, true, false
	}
	for _, prefix := range s.cleared {
		if path == prefix || strings.HasPrefix(path, prefix+".") {
			return nil, false, true
		}
	}
	return nil, false, false
}

func (s *ConfigStore) Get(ctx context.Context, path string) (any, bool, error) {
	if value, ok, cleared := s.stagedLookup(path); ok || cleared {
		return value, ok, nil
	}

	query := `SELECT value FROM islandora_solr_metadata_config WHERE path = $1`

	var raw []byte
	err := s.pool.QueryRow(ctx, query, path).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, handlePostgresError("get config value", err)
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false, fmt.Errorf("decode config value at %s: %w", path, err)
	}
	return value, true, nil
}

func (s *ConfigStore) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	for staged := range s.staged {
		if staged == path || strings.HasPrefix(staged, path+".") {
			s.mu.Unlock()
			return true, nil
		}
	}
	s.mu.Unlock()

	query := `
        SELECT EXISTS (
            SELECT 1 FROM islandora_solr_metadata_config
            WHERE path = $1 OR path LIKE $1 || '.%'
        )`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, path).Scan(&exists); err != nil {
		return false, handlePostgresError("config exists", err)
	}
	return exists, nil
}

func (s *ConfigStore) Children(ctx context.Context, path string) ([]string, error) {
	query := `
        SELECT DISTINCT split_part(substr(path, length($1) + 2), '.', 1) AS child
        FROM islandora_solr_metadata_config
        WHERE path LIKE $1 || '.%'
        ORDER BY child`

	rows, err := s.pool.Query(ctx, query, path)
	if err != nil {
		return nil, handlePostgresError("list config children", err)
	}
	defer rows.Close()

	var children []string
	for rows.Next() {
		var child string
		if err := rows.Scan(&child); err != nil {
			return nil, handlePostgresError("list config children", err)
		}
		children = append(children, child)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list config children", err)
	}
	return children, nil
}

func (s *ConfigStore) Set(ctx context.Context, path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.staged[path] = value
	return nil
}

func (s *ConfigStore) Clear(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for staged := range s.staged {
		if staged == path || strings.HasPrefix(staged, path+".") {
			delete(s.staged, staged)
		}
	}
	s.cleared = append(s.cleared, path)
	return nil
}

func (s *ConfigStore) Save(ctx context.Context) error {
	s.mu.Lock()
	staged := s.staged
	cleared := s.cleared
	s.staged = make(map[string]any)
	s.cleared = nil
	s.mu.Unlock()

	if len(staged) == 0 && len(cleared) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return handlePostgresError("save config", err)
	}
	defer tx.Rollback(ctx)

	deleteQuery := `
        DELETE FROM islandora_solr_metadata_config
        WHERE path = $1 OR path LIKE $1 || '.%'`
	for _, prefix := range cleared {
		if _, err := tx.Exec(ctx, deleteQuery, prefix); err != nil {
			return handlePostgresError("save config (clear)", err)
		}
	}

	upsertQuery := `
        INSERT INTO islandora_solr_metadata_config (path, value)
        VALUES ($1, $2)
        ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value`
	for path, value := range staged {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode config value at %s: %w", path, err)
		}
		if _, err := tx.Exec(ctx, upsertQuery, path, raw); err != nil {
			return handlePostgresError("save config (set)", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return handlePostgresError("save config", err)
	}
	return nil
}

// AssociationStore implements solrmetadata.AssociationStore over the
// islandora_solr_metadata_cmodels table.
type AssociationStore struct {
	db DBTX
}

// NewAssociationStore creates a new Postgres association store
func NewAssociationStore(db DBTX) *AssociationStore {
	return &AssociationStore{db: db}
}

// NewAssociationStoreWithPool creates a new Postgres association store with a connection pool
func NewAssociationStoreWithPool(pool *pgxpool.Pool) *AssociationStore {
	return &AssociationStore{db: pool}
}

func (s *AssociationStore) GetByCmodels(ctx context.Context, cmodels []string) (map[string]solrmetadata.Association, error) {
	// One row per distinct configuration, keeping the lowest matching cmodel
	// for determinism.
	query := `
        SELECT DISTINCT ON (configuration_name) cmodel, configuration_name
        FROM islandora_solr_metadata_cmodels
        WHERE cmodel = ANY($1)
        ORDER BY configuration_name, cmodel`

	rows, err := s.db.Query(ctx, query, cmodels)
	if err != nil {
		return nil, handlePostgresError("get associations by cmodels", err)
	}
	defer rows.Close()

	result := make(map[string]solrmetadata.Association)
	for rows.Next() {
		var assoc solrmetadata.Association
		if err := rows.Scan(&assoc.Cmodel, &assoc.ConfigurationName); err != nil {
			return nil, handlePostgresError("get associations by cmodels", err)
		}
		result[assoc.ConfigurationName] = assoc
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("get associations by cmodels", err)
	}
	return result, nil
}

func (s *AssociationStore) ListForConfiguration(ctx context.Context, configurationName string) ([]solrmetadata.Association, error) {
	query := `
        SELECT cmodel, configuration_name
        FROM islandora_solr_metadata_cmodels
        WHERE configuration_name = $1
        ORDER BY cmodel`

	rows, err := s.db.Query(ctx, query, configurationName)
	if err != nil {
		return nil, handlePostgresError("list associations", err)
	}
	defer rows.Close()

	var result []solrmetadata.Association
	for rows.Next() {
		var assoc solrmetadata.Association
		if err := rows.Scan(&assoc.Cmodel, &assoc.ConfigurationName); err != nil {
			return nil, handlePostgresError("list associations", err)
		}
		result = append(result, assoc)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list associations", err)
	}
	return result, nil
}

func (s *AssociationStore) Set(ctx context.Context, cmodel, configurationName string) error {
	query := `
        INSERT INTO islandora_solr_metadata_cmodels (cmodel, configuration_name)
        VALUES ($1, $2)
        ON CONFLICT (cmodel) DO UPDATE SET configuration_name = EXCLUDED.configuration_name`

	if _, err := s.db.Exec(ctx, query, cmodel, configurationName); err != nil {
		return handlePostgresError("set association", err)
	}
	return nil
}

func (s *AssociationStore) Remove(ctx context.Context, cmodel string) error {
	query := `DELETE FROM islandora_solr_metadata_cmodels WHERE cmodel = $1`

	if _, err := s.db.Exec(ctx, query, cmodel); err != nil {
		return handlePostgresError("remove association", err)
	}
	return nil
}

func (s *AssociationStore) RemoveForConfiguration(ctx context.Context, configurationName string) error {
	query := `DELETE FROM islandora_solr_metadata_cmodels WHERE configuration_name = $1`

	if _, err := s.db.Exec(ctx, query, configurationName); err != nil {
		return handlePostgresError("remove associations for configuration", err)
	}
	return nil
}
