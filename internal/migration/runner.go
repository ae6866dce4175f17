package migration

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Runner applies and reverts migrations
type Runner struct {
	db     *sql.DB
	config *MigrationConfig
}

// NewRunner creates a runner; a nil config means DefaultConfig("")
func NewRunner(db *sql.DB, config *MigrationConfig) (*Runner, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if !tableNamePattern.MatchString(config.TableName) {
		return nil, fmt.Errorf("invalid migration table name %q", config.TableName)
	}
	return &Runner{db: db, config: config}, nil
}

// Initialize creates the tracking table
func (r *Runner) Initialize(ctx context.Context) error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version BIGINT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			up_checksum VARCHAR(64) NOT NULL,
			down_checksum VARCHAR(64),
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			execution_time_ms INTEGER NOT NULL DEFAULT 0,
			created_by VARCHAR(100) NOT NULL DEFAULT 'system'
		)
	`, r.config.TableName)

	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	log.Debug().
		Str("table", r.config.TableName).
		Str("path", r.config.MigrationsPath).
		Msg("migration table ready")

	return nil
}
