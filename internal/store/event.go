package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// The sequence table holds one row whose next_val is the sequence the next
// scoring event receives. Event ids are per-table and may skip on rollback;
// sequences are claimed in the same transaction as the insert and never do.

// seedSequence inserts the counter row if it is missing.
func seedSequence(ctx context.Context, db *sql.DB, dialectName string) error {
	query, args := entsql.Dialect(dialectName).
		Insert(sequenceTable).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}

// claimSequence increments the counter inside tx and returns the value it
// held. The row lock taken by the UPDATE serializes concurrent claims until
// tx ends.
func claimSequence(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("claim sequence: %w", err)
	}
	return seq, nil
}
