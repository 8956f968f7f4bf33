// Package testutil provides in-memory stand-ins for the database layer so
// services and handlers can be tested without PostgreSQL.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/JonMunkholm/quizbank/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

var tableRegex = regexp.MustCompile(`(?i)(?:INTO|FROM)\s+"?(\w+)"?`)

// Row is one stored row: its generated id and the statement arguments.
type Row struct {
	ID   int32
	Args []any
}

// DB is an in-memory database. Inserts done inside a transaction become
// visible only on commit.
//
// Score inserts reject non-numeric or out-of-range scores with SQLSTATE
// 22P02 / 22003, mirroring the NUMERIC(5,2) cast.
type DB struct {
	mu     sync.Mutex
	tables map[string][]Row
	nextID int32

	Begins    int
	Commits   int
	Rollbacks int
	Calls     int // statements executed, inside or outside transactions

	// BeginErr and CommitErr make Begin / Commit fail when set.
	BeginErr  error
	CommitErr error

	// FailOn, when set, is consulted before every insert.
	FailOn func(table string, args []any) error

	// Students seeds the student table.
	Students []database.Student
}

// NewDB returns an empty database.
func NewDB() *DB {
	return &DB{tables: make(map[string][]Row)}
}

// Rows returns a copy of the committed rows of table.
func (db *DB) Rows(table string) []Row {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]Row, len(db.tables[table]))
	copy(out, db.tables[table])
	return out
}

// Count returns the number of committed rows in table.
func (db *DB) Count(table string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.tables[table])
}

// OpenTx reports transactions begun but not yet committed or rolled back.
func (db *DB) OpenTx() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.Begins - db.Commits - db.Rollbacks
}

// TotalCalls returns how many statements reached the database.
func (db *DB) TotalCalls() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.Calls + db.Begins
}

func (db *DB) check(table string, args []any) error {
	db.Calls++
	if db.FailOn != nil {
		if err := db.FailOn(table, args); err != nil {
			return err
		}
	}
	if table == "score" && len(args) > 2 {
		return checkScore(args[2])
	}
	return nil
}

func checkScore(v any) error {
	t, ok := v.(pgtype.Text)
	if !ok || !t.Valid {
		return nil
	}
	f, err := strconv.ParseFloat(t.String, 64)
	if err != nil {
		return &pgconn.PgError{
			Code:    "22P02",
			Message: fmt.Sprintf("invalid input syntax for type numeric: %q", t.String),
		}
	}
	if f <= -1000 || f >= 1000 {
		return &pgconn.PgError{Code: "22003", Message: "numeric field overflow"}
	}
	return nil
}

func (db *DB) nextRowID() int32 {
	db.nextID++
	return db.nextID
}

func tableOf(sql string) string {
	m := tableRegex.FindStringSubmatch(sql)
	if m == nil {
		return ""
	}
	return m[1]
}

func isInsert(sql string) bool {
	return strings.HasPrefix(strings.TrimSpace(strings.ToUpper(sql)), "INSERT")
}

// Exec runs an autocommit statement.
func (db *DB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	table := tableOf(sql)
	if isInsert(sql) {
		if err := db.check(table, args); err != nil {
			return pgconn.CommandTag{}, err
		}
		db.tables[table] = append(db.tables[table], Row{ID: db.nextRowID(), Args: args})
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}

	db.Calls++
	if strings.HasPrefix(strings.TrimSpace(strings.ToUpper(sql)), "DELETE") && len(args) == 1 {
		id, _ := args[0].(int32)
		rows := db.tables[table]
		for i, r := range rows {
			if r.ID == id {
				db.tables[table] = append(rows[:i:i], rows[i+1:]...)
				return pgconn.NewCommandTag("DELETE 1"), nil
			}
		}
		return pgconn.NewCommandTag("DELETE 0"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("fake db: unsupported statement: %s", sql)
}

// QueryRow supports INSERT ... RETURNING id and the student lookup.
func (db *DB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.mu.Lock()
	defer db.mu.Unlock()

	table := tableOf(sql)
	if isInsert(sql) {
		if err := db.check(table, args); err != nil {
			return valuesRow{err: err}
		}
		id := db.nextRowID()
		db.tables[table] = append(db.tables[table], Row{ID: id, Args: args})
		return valuesRow{values: []any{id}}
	}

	db.Calls++
	if table == "student" && len(args) == 1 {
		for _, st := range db.Students {
			if st.StudentID == args[0] {
				return valuesRow{values: []any{st.StudentID, st.FullName, st.ClassName}}
			}
		}
		return valuesRow{err: pgx.ErrNoRows}
	}
	return valuesRow{err: fmt.Errorf("fake db: unsupported query: %s", sql)}
}

// Query supports listing questions, scores and students.
func (db *DB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.Calls++

	table := tableOf(sql)
	var values [][]any
	switch {
	case table == "student":
		for _, st := range db.Students {
			values = append(values, []any{st.StudentID, st.FullName, st.ClassName})
		}
	case table == "score":
		for _, r := range db.tables[table] {
			if !matchesScoreFilter(r.Args, args) {
				continue
			}
			var n pgtype.Numeric
			if t, ok := r.Args[2].(pgtype.Text); ok && t.Valid {
				_ = n.Scan(t.String)
			}
			values = append(values, []any{r.ID, r.Args[0], r.Args[1], n, r.Args[3]})
		}
	case database.Collection(table).Valid():
		for _, r := range db.tables[table] {
			image := []byte(nil)
			if len(r.Args) > 7 {
				image, _ = r.Args[7].([]byte)
			}
			explanation := r.Args[6]
			if s, ok := explanation.(string); ok {
				explanation = pgtype.Text{String: s, Valid: true}
			}
			values = append(values, []any{
				r.ID, r.Args[0], r.Args[1], r.Args[2], r.Args[3], r.Args[4], r.Args[5],
				explanation, image, pgtype.Timestamptz{},
			})
		}
	default:
		return nil, fmt.Errorf("fake db: unsupported query: %s", sql)
	}
	return &valuesRows{values: values, pos: -1}, nil
}

// score args: student_id, course_code, score, semester
// filter args: student_id, semester, course_code
func matchesScoreFilter(row, filter []any) bool {
	pairs := [][2]int{{0, 0}, {3, 1}, {1, 2}}
	for _, p := range pairs {
		if p[1] >= len(filter) {
			continue
		}
		f, _ := filter[p[1]].(pgtype.Text)
		if !f.Valid {
			continue
		}
		v, _ := row[p[0]].(pgtype.Text)
		if !v.Valid || v.String != f.String {
			return false
		}
	}
	return true
}

// Begin starts a transaction.
func (db *DB) Begin(context.Context) (pgx.Tx, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.BeginErr != nil {
		return nil, db.BeginErr
	}
	db.Begins++
	return &Tx{db: db}, nil
}

// Tx is a transaction on DB. Only the methods used by the application are
// implemented; calling any other pgx.Tx method panics.
type Tx struct {
	pgx.Tx

	db      *DB
	pending []pendingRow
	done    bool
}

type pendingRow struct {
	table string
	row   Row
}

func (tx *Tx) insert(sql string, args []any) (int32, error) {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	if tx.done {
		return 0, pgx.ErrTxClosed
	}
	table := tableOf(sql)
	if err := tx.db.check(table, args); err != nil {
		return 0, err
	}
	id := tx.db.nextRowID()
	tx.pending = append(tx.pending, pendingRow{table: table, row: Row{ID: id, Args: args}})
	return id, nil
}

func (tx *Tx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if !isInsert(sql) {
		return pgconn.CommandTag{}, fmt.Errorf("fake tx: unsupported statement: %s", sql)
	}
	if _, err := tx.insert(sql, args); err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (tx *Tx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if !isInsert(sql) {
		return valuesRow{err: fmt.Errorf("fake tx: unsupported query: %s", sql)}
	}
	id, err := tx.insert(sql, args)
	if err != nil {
		return valuesRow{err: err}
	}
	return valuesRow{values: []any{id}}
}

func (tx *Tx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("fake tx: Query not supported")
}

func (tx *Tx) Commit(context.Context) error {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.Commits++
	if tx.db.CommitErr != nil {
		return tx.db.CommitErr
	}
	for _, p := range tx.pending {
		tx.db.tables[p.table] = append(tx.db.tables[p.table], p.row)
	}
	return nil
}

func (tx *Tx) Rollback(context.Context) error {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.Rollbacks++
	tx.pending = nil
	return nil
}

// Provider is a SessionProvider backed by DB.
type Provider struct {
	DB *DB

	// Err makes Acquire fail when set.
	Err      error
	Acquires int
	Stale    int
}

// NewProvider returns a Provider over a fresh DB.
func NewProvider() *Provider {
	return &Provider{DB: NewDB()}
}

func (p *Provider) Acquire(context.Context) (database.Session, error) {
	p.Acquires++
	if p.Err != nil {
		return nil, p.Err
	}
	return p.DB, nil
}

func (p *Provider) HealthCheck(context.Context) error {
	return p.Err
}

func (p *Provider) MarkStale() {
	p.Stale++
}

type valuesRow struct {
	values []any
	err    error
}

func (r valuesRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type valuesRows struct {
	pgx.Rows

	values [][]any
	pos    int
	err    error
}

func (r *valuesRows) Next() bool {
	r.pos++
	return r.pos < len(r.values)
}

func (r *valuesRows) Scan(dest ...any) error {
	return assign(r.values[r.pos], dest)
}

func (r *valuesRows) Close()     {}
func (r *valuesRows) Err() error { return r.err }

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("fake db: scan %d values into %d targets", len(values), len(dest))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Pointer || dv.IsNil() {
			return fmt.Errorf("fake db: scan target %d is not a pointer", i)
		}
		if values[i] == nil {
			dv.Elem().Set(reflect.Zero(dv.Elem().Type()))
			continue
		}
		v := reflect.ValueOf(values[i])
		if !v.Type().AssignableTo(dv.Elem().Type()) {
			return fmt.Errorf("fake db: cannot scan %T into %T", values[i], d)
		}
		dv.Elem().Set(v)
	}
	return nil
}
