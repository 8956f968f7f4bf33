package core

import (
	"context"
	"errors"
	"testing"

	"github.com/JonMunkholm/quizbank/internal/database"
	"github.com/JonMunkholm/quizbank/internal/testutil"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

func scoreRows(scores ...string) []database.InsertScoreParams {
	rows := make([]database.InsertScoreParams, len(scores))
	for i, s := range scores {
		rows[i] = database.InsertScoreParams{
			StudentID:  pgtype.Text{String: "S" + string(rune('0'+i)), Valid: true},
			CourseCode: pgtype.Text{String: "MTH101", Valid: true},
			Score:      pgtype.Text{String: s, Valid: true},
			Semester:   pgtype.Text{String: "2024A", Valid: true},
		}
	}
	return rows
}

func insertScore(ctx context.Context, tx database.DBTX, p database.InsertScoreParams) error {
	return database.New(tx).InsertScore(ctx, p)
}

func TestRunBatch_CommitsAllRows(t *testing.T) {
	db := testutil.NewDB()

	n, err := RunBatch(context.Background(), db, scoreRows("85.00", "90.00", "72.50"), insertScore)
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if n != 3 {
		t.Errorf("RunBatch() = %d, want 3", n)
	}
	if got := db.Count("score"); got != 3 {
		t.Errorf("score rows = %d, want 3", got)
	}
	if db.Commits != 1 || db.Rollbacks != 0 {
		t.Errorf("commits=%d rollbacks=%d, want 1/0", db.Commits, db.Rollbacks)
	}
}

func TestRunBatch_PreservesOrder(t *testing.T) {
	db := testutil.NewDB()

	if _, err := RunBatch(context.Background(), db, scoreRows("1.00", "2.00", "3.00", "4.00"), insertScore); err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}

	rows := db.Rows("score")
	for i := 1; i < len(rows); i++ {
		if rows[i].ID <= rows[i-1].ID {
			t.Fatalf("ids not increasing: %d then %d", rows[i-1].ID, rows[i].ID)
		}
		prev := rows[i-1].Args[2].(pgtype.Text).String
		cur := rows[i].Args[2].(pgtype.Text).String
		if prev >= cur {
			t.Errorf("row %d inserted out of order: %s after %s", i, cur, prev)
		}
	}
}

func TestRunBatch_RollsBackAtFailingRow(t *testing.T) {
	for k := 0; k < 4; k++ {
		db := testutil.NewDB()
		scores := []string{"10.00", "20.00", "30.00", "40.00"}
		scores[k] = "abc"

		n, err := RunBatch(context.Background(), db, scoreRows(scores...), insertScore)
		if n != 0 {
			t.Errorf("k=%d: RunBatch() = %d, want 0", k, n)
		}

		var batchErr *BatchInsertError
		if !errors.As(err, &batchErr) {
			t.Fatalf("k=%d: error = %v, want *BatchInsertError", k, err)
		}
		if batchErr.Index != k {
			t.Errorf("k=%d: Index = %d", k, batchErr.Index)
		}
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != "22P02" {
			t.Errorf("k=%d: underlying error = %v, want SQLSTATE 22P02", k, err)
		}

		if got := db.Count("score"); got != 0 {
			t.Errorf("k=%d: score rows = %d, want 0 after rollback", k, got)
		}
		if db.Commits != 0 || db.Rollbacks != 1 {
			t.Errorf("k=%d: commits=%d rollbacks=%d, want 0/1", k, db.Commits, db.Rollbacks)
		}
		// Rows after the failing one are never attempted.
		if db.Calls != k+1 {
			t.Errorf("k=%d: statements executed = %d, want %d", k, db.Calls, k+1)
		}
	}
}

func TestRunBatch_BeginFailure(t *testing.T) {
	db := testutil.NewDB()
	db.BeginErr = errors.New("connection refused")

	_, err := RunBatch(context.Background(), db, scoreRows("1.00"), insertScore)
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("error = %v, want *ConnectionError", err)
	}
	if db.Rollbacks != 0 || db.Commits != 0 {
		t.Errorf("no transaction should have been ended: commits=%d rollbacks=%d", db.Commits, db.Rollbacks)
	}
}

func TestRunBatch_CommitFailure(t *testing.T) {
	db := testutil.NewDB()
	db.CommitErr = errors.New("serialization failure")

	_, err := RunBatch(context.Background(), db, scoreRows("1.00", "2.00"), insertScore)
	var batchErr *BatchInsertError
	if !errors.As(err, &batchErr) || batchErr.Index != -1 {
		t.Fatalf("error = %v, want *BatchInsertError with Index -1", err)
	}
	if db.Count("score") != 0 {
		t.Error("rows visible after failed commit")
	}
	if db.OpenTx() != 0 {
		t.Errorf("open transactions = %d, want 0", db.OpenTx())
	}
}

func TestRunBatch_Empty(t *testing.T) {
	db := testutil.NewDB()

	n, err := RunBatch(context.Background(), db, []database.InsertScoreParams{}, insertScore)
	if err != nil || n != 0 {
		t.Fatalf("RunBatch(empty) = %d, %v", n, err)
	}
	if db.Commits != 1 {
		t.Errorf("commits = %d, want 1", db.Commits)
	}
}

func TestRunBatch_CancelledContextStillRollsBack(t *testing.T) {
	db := testutil.NewDB()
	ctx, cancel := context.WithCancel(context.Background())

	insert := func(ctx context.Context, tx database.DBTX, p database.InsertScoreParams) error {
		cancel()
		return ctx.Err()
	}

	_, err := RunBatch(ctx, db, scoreRows("1.00", "2.00"), insert)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if db.Rollbacks != 1 || db.OpenTx() != 0 {
		t.Errorf("rollbacks=%d open=%d, want 1/0", db.Rollbacks, db.OpenTx())
	}
}

func TestRunBatch_PanicRollsBack(t *testing.T) {
	db := testutil.NewDB()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic to propagate")
		}
		if db.Rollbacks != 1 || db.OpenTx() != 0 {
			t.Errorf("rollbacks=%d open=%d, want 1/0", db.Rollbacks, db.OpenTx())
		}
	}()

	_, _ = RunBatch(context.Background(), db, scoreRows("1.00"), func(context.Context, database.DBTX, database.InsertScoreParams) error {
		panic("boom")
	})
}
