package core

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/quizbank/internal/database"
)

// ColumnPolicy decides what happens when a record lacks an expected column.
type ColumnPolicy string

const (
	// ColumnPolicyLenient passes absent columns through as NULL and lets the
	// database decide.
	ColumnPolicyLenient ColumnPolicy = "lenient"
	// ColumnPolicyStrict rejects the whole import before any insert when a
	// record lacks a required column.
	ColumnPolicyStrict ColumnPolicy = "strict"
)

// ParseColumnPolicy parses "lenient" or "strict" (case-insensitive).
// An empty string yields the lenient default.
func ParseColumnPolicy(s string) (ColumnPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ColumnPolicyLenient):
		return ColumnPolicyLenient, nil
	case string(ColumnPolicyStrict):
		return ColumnPolicyStrict, nil
	default:
		return "", fmt.Errorf("invalid column policy %q: must be lenient or strict", s)
	}
}

// Spreadsheet column headers.
const (
	ColQuestionText  = "QuestionText"
	ColOptionA       = "OptionA"
	ColOptionB       = "OptionB"
	ColOptionC       = "OptionC"
	ColOptionD       = "OptionD"
	ColCorrectAnswer = "CorrectAnswer"
	ColExplanation   = "Explanation"

	ColStudentID  = "StudentId"
	ColCourseCode = "CourseCode"
	ColScore      = "Score"
	ColSemester   = "Semester"
)

// Explanation is optional, so it is not listed.
var requiredQuestionColumns = []string{
	ColQuestionText, ColOptionA, ColOptionB, ColOptionC, ColOptionD, ColCorrectAnswer,
}

var requiredScoreColumns = []string{
	ColStudentID, ColCourseCode, ColScore, ColSemester,
}

func checkColumns(rec Record, index int, policy ColumnPolicy, required []string) error {
	if policy != ColumnPolicyStrict {
		return nil
	}
	for _, col := range required {
		if _, ok := rec[col]; !ok {
			return &MissingColumnError{Row: index, Column: col}
		}
	}
	return nil
}

// MapQuestionRow builds insert parameters for one imported question.
func MapQuestionRow(rec Record, index int, policy ColumnPolicy) (database.InsertImportedQuestionParams, error) {
	if err := checkColumns(rec, index, policy, requiredQuestionColumns); err != nil {
		return database.InsertImportedQuestionParams{}, err
	}
	return database.InsertImportedQuestionParams{
		Question:      cellText(rec, ColQuestionText),
		OptionA:       cellText(rec, ColOptionA),
		OptionB:       cellText(rec, ColOptionB),
		OptionC:       cellText(rec, ColOptionC),
		OptionD:       cellText(rec, ColOptionD),
		CorrectAnswer: cellText(rec, ColCorrectAnswer),
		Explanation:   rec[ColExplanation],
	}, nil
}

// MapScoreRow builds insert parameters for one imported score.
func MapScoreRow(rec Record, index int, policy ColumnPolicy) (database.InsertScoreParams, error) {
	if err := checkColumns(rec, index, policy, requiredScoreColumns); err != nil {
		return database.InsertScoreParams{}, err
	}
	return database.InsertScoreParams{
		StudentID:  cellText(rec, ColStudentID),
		CourseCode: cellText(rec, ColCourseCode),
		Score:      scoreText(rec, ColScore),
		Semester:   cellText(rec, ColSemester),
	}, nil
}

// MapRows applies mapRow to every record in order and stops at the first
// error.
func MapRows[P any](recs []Record, policy ColumnPolicy, mapRow RowMapper[P]) ([]P, error) {
	out := make([]P, 0, len(recs))
	for i, rec := range recs {
		p, err := mapRow(rec, i, policy)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
