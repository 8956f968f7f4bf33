package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/quizbank/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Record is one decoded spreadsheet row keyed by column header.
// Empty cells are absent rather than mapped to "".
type Record map[string]string

// TxStarter opens a transaction. Satisfied by database.Session.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InsertFunc executes one insert for a mapped row inside a transaction.
type InsertFunc[P any] func(ctx context.Context, tx database.DBTX, params P) error

// RowMapper builds insert parameters from a decoded record.
// index is the record's 0-based position in the file.
type RowMapper[P any] func(rec Record, index int, policy ColumnPolicy) (P, error)

// ImportKind names what an import batch contains.
type ImportKind string

const (
	KindQuestions ImportKind = "questions"
	KindScores    ImportKind = "scores"
)

// ImportResult summarises a committed import batch.
type ImportResult struct {
	BatchID  string        `json:"batchId"`
	Kind     ImportKind    `json:"kind"`
	Target   string        `json:"target"`
	FileName string        `json:"fileName"`
	Count    int           `json:"count"`
	Duration time.Duration `json:"-"`
}

// Message is the human readable outcome, e.g. "3 scores imported successfully".
func (r ImportResult) Message() string {
	return fmt.Sprintf("%d %s imported successfully", r.Count, r.Kind)
}

// NewQuestion is a single question submitted through the add form.
// Invalid (absent) text fields are stored as NULL.
type NewQuestion struct {
	Question      pgtype.Text
	OptionA       pgtype.Text
	OptionB       pgtype.Text
	OptionC       pgtype.Text
	OptionD       pgtype.Text
	CorrectAnswer pgtype.Text
	Explanation   pgtype.Text
	Image         []byte
}

func (q NewQuestion) params() database.InsertQuestionParams {
	return database.InsertQuestionParams{
		Question:      q.Question,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		QuestionImage: q.Image,
	}
}

// ScoreFilter narrows a score listing. Empty fields match everything.
type ScoreFilter struct {
	StudentID  string
	Semester   string
	CourseCode string
}

func (f ScoreFilter) params() database.ListScoresParams {
	return database.ListScoresParams{
		StudentID:  ToPgText(f.StudentID),
		Semester:   ToPgText(f.Semester),
		CourseCode: ToPgText(f.CourseCode),
	}
}
