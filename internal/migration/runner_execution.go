package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/resource-booking-api/internal/db"
)

// RunUp applies pending migrations in version order up to targetVersion
// (0 means all). It stops at the first failure.
func (r *Runner) RunUp(ctx context.Context, targetVersion int64) ([]MigrationResult, error) {
	if err := r.Initialize(ctx); err != nil {
		return nil, err
	}

	migrations, err := r.LoadMigrationsWithStatus(ctx)
	if err != nil {
		return nil, err
	}

	var results []MigrationResult
	for _, m := range migrations {
		if m.Applied {
			continue
		}
		if targetVersion > 0 && m.Version > targetVersion {
			break
		}

		result := r.executeMigration(ctx, m, DirectionUp)
		results = append(results, result)
		if !result.Success {
			return results, fmt.Errorf("migration %d (%s) failed: %s", m.Version, m.Name, result.Error)
		}

		if r.config.Verbose {
			log.Info().
				Int64("version", m.Version).
				Str("name", m.Name).
				Dur("duration", result.ExecutionTime).
				Msg("migration applied")
		}
	}

	return results, nil
}

// RunDown reverts applied migrations newest first while their version is
// above targetVersion
func (r *Runner) RunDown(ctx context.Context, targetVersion int64) ([]MigrationResult, error) {
	migrations, err := r.LoadMigrationsWithStatus(ctx)
	if err != nil {
		return nil, err
	}

	var results []MigrationResult
	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		if !m.Applied {
			continue
		}
		if m.Version <= targetVersion {
			break
		}
		if !m.HasDownFile {
			return results, fmt.Errorf("migration %d (%s) has no down file", m.Version, m.Name)
		}

		result := r.executeMigration(ctx, m, DirectionDown)
		results = append(results, result)
		if !result.Success {
			return results, fmt.Errorf("rollback of %d (%s) failed: %s", m.Version, m.Name, result.Error)
		}

		if r.config.Verbose {
			log.Info().
				Int64("version", m.Version).
				Str("name", m.Name).
				Dur("duration", result.ExecutionTime).
				Msg("migration rolled back")
		}
	}

	return results, nil
}

// RunDownSteps reverts the newest steps applied migrations
func (r *Runner) RunDownSteps(ctx context.Context, steps int) ([]MigrationResult, error) {
	if steps < 1 {
		return nil, fmt.Errorf("steps must be positive, got %d", steps)
	}

	migrations, err := r.LoadMigrationsWithStatus(ctx)
	if err != nil {
		return nil, err
	}

	var applied []int64
	for _, m := range migrations {
		if m.Applied {
			applied = append(applied, m.Version)
		}
	}
	if len(applied) == 0 {
		return nil, nil
	}

	var target int64
	if idx := len(applied) - 1 - steps; idx >= 0 {
		target = applied[idx]
	}
	return r.RunDown(ctx, target)
}

// executeMigration runs one migration and its bookkeeping in a single transaction
func (r *Runner) executeMigration(ctx context.Context, m Migration, direction Direction) MigrationResult {
	start := time.Now()
	result := MigrationResult{
		Version:   m.Version,
		Name:      m.Name,
		Direction: direction,
		StartedAt: start,
	}

	sqlText := m.UpSQL
	if direction == DirectionDown {
		sqlText = m.DownSQL
	}
	if strings.TrimSpace(sqlText) == "" {
		result.Error = fmt.Sprintf("%s sql is empty", direction)
		return result
	}

	if r.config.DryRun {
		log.Info().Int64("version", m.Version).Str("direction", string(direction)).Msg("dry run, migration not applied")
		result.Success = true
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.TransactionTimeout)
	defer cancel()

	err := db.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		// lib/pq runs a parameterless multi statement string in one round trip
		if _, err := tx.ExecContext(ctx, sqlText); err != nil {
			return fmt.Errorf("execute %s sql: %w", direction, err)
		}
		if direction == DirectionUp {
			return r.recordMigrationInTx(ctx, tx, m, time.Since(start))
		}
		return r.deleteMigrationRecordInTx(ctx, tx, m.Version)
	})
	result.ExecutionTime = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	return result
}
