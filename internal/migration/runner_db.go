package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// undefinedTable is the SQLSTATE of a missing relation
const undefinedTable = pq.ErrorCode("42P01")

// AppliedMigration is one row of the tracking table
type AppliedMigration struct {
	Version      int64
	Name         string
	UpChecksum   string
	DownChecksum *string
	AppliedAt    time.Time
}

// LoadAppliedMigrations reads the tracking table; a missing table means
// nothing was applied yet
func (r *Runner) LoadAppliedMigrations(ctx context.Context) (map[int64]AppliedMigration, error) {
	query := fmt.Sprintf(`
		SELECT version, name, up_checksum, down_checksum, applied_at
		FROM %s
		ORDER BY version ASC
	`, r.config.TableName)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		if isTableNotExistError(err) {
			return map[int64]AppliedMigration{}, nil
		}
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]AppliedMigration)
	for rows.Next() {
		var a AppliedMigration
		if err := rows.Scan(&a.Version, &a.Name, &a.UpChecksum, &a.DownChecksum, &a.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[a.Version] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}

	return applied, nil
}

// LoadMigrationsWithStatus merges files with the tracking table. A changed
// file fails the load unless AllowDirtyMigrate is set.
func (r *Runner) LoadMigrationsWithStatus(ctx context.Context) ([]Migration, error) {
	migrations, err := r.LoadMigrationsFromDisk()
	if err != nil {
		return nil, err
	}

	applied, err := r.LoadAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	for i := range migrations {
		a, ok := applied[migrations[i].Version]
		if !ok {
			continue
		}
		appliedAt := a.AppliedAt
		migrations[i].Applied = true
		migrations[i].AppliedAt = &appliedAt

		if !r.config.ValidateChecksums {
			continue
		}
		if err := validateChecksums(migrations[i], a); err != nil {
			migrations[i].Dirty = true
			if !r.config.AllowDirtyMigrate {
				return nil, fmt.Errorf("migration %d: %w", migrations[i].Version, err)
			}
			log.Warn().Err(err).Int64("version", migrations[i].Version).Msg("applied migration file changed")
		}
	}

	return migrations, nil
}

func validateChecksums(file Migration, db AppliedMigration) error {
	if file.UpChecksum != db.UpChecksum {
		return fmt.Errorf("up file changed since it was applied (file %s, db %s)", short(file.UpChecksum), short(db.UpChecksum))
	}
	if file.HasDownFile && db.DownChecksum != nil && file.DownChecksum != *db.DownChecksum {
		return fmt.Errorf("down file changed since it was applied (file %s, db %s)", short(file.DownChecksum), short(*db.DownChecksum))
	}
	return nil
}

func short(sum string) string {
	if len(sum) > 8 {
		return sum[:8]
	}
	return sum
}

// GetStatus summarizes files and tracking table
func (r *Runner) GetStatus(ctx context.Context) (*MigrationStatus, error) {
	migrations, err := r.LoadMigrationsWithStatus(ctx)
	if err != nil {
		return nil, err
	}

	status := &MigrationStatus{
		Migrations:   migrations,
		TotalCount:   len(migrations),
		SystemHealth: StatusHealthy,
	}

	for _, m := range migrations {
		if !m.Applied {
			status.PendingCount++
			continue
		}
		status.AppliedCount++
		if m.Version > status.CurrentVersion {
			status.CurrentVersion = m.Version
		}
		if m.Dirty {
			status.DirtyCount++
		}
		if m.AppliedAt != nil && (status.LastAppliedAt == nil || m.AppliedAt.After(*status.LastAppliedAt)) {
			status.LastAppliedAt = m.AppliedAt
		}
	}

	switch {
	case status.DirtyCount > 0:
		status.SystemHealth = StatusError
	case status.PendingCount > 0:
		status.SystemHealth = StatusWarning
	}

	return status, nil
}

func (r *Runner) recordMigrationInTx(ctx context.Context, tx *sql.Tx, m Migration, executionTime time.Duration) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (version, name, up_checksum, down_checksum, execution_time_ms, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.config.TableName)

	downChecksum := sql.NullString{String: m.DownChecksum, Valid: m.HasDownFile}

	if _, err := tx.ExecContext(ctx, query,
		m.Version, m.Name, m.UpChecksum, downChecksum, executionTime.Milliseconds(), r.config.CreatedBy,
	); err != nil {
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}
	return nil
}

func (r *Runner) deleteMigrationRecordInTx(ctx context.Context, tx *sql.Tx, version int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE version = $1`, r.config.TableName)

	result, err := tx.ExecContext(ctx, query, version)
	if err != nil {
		return fmt.Errorf("delete migration record %d: %w", version, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete migration record %d: %w", version, err)
	}
	if n == 0 {
		return fmt.Errorf("migration record %d not found", version)
	}
	return nil
}

func isTableNotExistError(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == undefinedTable
}
