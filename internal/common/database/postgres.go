// Package database opens the backends a partner catalog can be read from.
package database

import (
	"database/sql"
	"fmt"
	"time"

	"entity-mcp/internal/common/config"

	"github.com/lib/pq"
)

// The catalog is read once per process, so a small pool is enough.
const (
	defaultPostgresConns    = 2
	postgresConnMaxLifetime = 5 * time.Minute
)

// OpenPostgres returns a pool for cfg. The connection is established lazily.
func OpenPostgres(cfg config.PostgresConfig) (*sql.DB, error) {
	connector, err := pq.NewConnector(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("postgres dsn: %w", err)
	}

	db := sql.OpenDB(connector)

	maxOpen := cfg.MaxConnections
	if maxOpen <= 0 {
		maxOpen = defaultPostgresConns
	}
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(postgresConnMaxLifetime)

	return db, nil
}
