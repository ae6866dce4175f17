package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// TransactionFunc is the unit of work run inside WithTransaction
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction runs fn in a transaction. It rolls back on error or panic
// and commits otherwise. A panic is re-raised after the rollback.
func WithTransaction(ctx context.Context, db *sql.DB, fn TransactionFunc) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Error().Err(rollbackErr).Msg("Rollback failed after panic")
			}
			log.Error().Interface("panic", r).Msg("Transaction rolled back after panic")
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error().Err(rollbackErr).Msg("Rollback failed")
			return fmt.Errorf("%w (rollback: %v)", err, rollbackErr)
		}
		log.Warn().Err(err).Msg("Transaction rolled back")
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	log.Debug().Msg("Transaction committed")
	return nil
}
