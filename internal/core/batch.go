package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// RunBatch inserts rows in order inside one transaction.
//
// The first failing insert stops the loop, rolls the transaction back and is
// returned as a *BatchInsertError carrying that row's index. On success the
// transaction is committed and len(rows) is returned. Every path that began a
// transaction ends it with exactly one commit or rollback. An empty batch
// commits an empty transaction.
//
// The transaction is used by one goroutine only; rows are never inserted
// concurrently.
func RunBatch[P any](ctx context.Context, sess TxStarter, rows []P, insert InsertFunc[P]) (int, error) {
	tx, err := sess.Begin(ctx)
	if err != nil {
		return 0, &ConnectionError{Op: "begin transaction", Err: err}
	}

	done := false
	defer func() {
		// Reached only if insert panicked.
		if !done {
			rollback(ctx, tx)
		}
	}()

	for i, params := range rows {
		if err := insert(ctx, tx, params); err != nil {
			done = true
			rollback(ctx, tx)
			return 0, &BatchInsertError{Index: i, Err: err}
		}
	}

	done = true
	if err := tx.Commit(ctx); err != nil {
		return 0, &BatchInsertError{Index: -1, Err: fmt.Errorf("commit: %w", err)}
	}
	return len(rows), nil
}

// rollback ends tx even when ctx has already been cancelled.
func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("transaction rollback failed", "error", err)
	}
}
