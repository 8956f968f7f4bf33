package core

import (
	"errors"
	"testing"
)

func TestParseColumnPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ColumnPolicy
		wantErr bool
	}{
		{"", ColumnPolicyLenient, false},
		{"lenient", ColumnPolicyLenient, false},
		{"STRICT", ColumnPolicyStrict, false},
		{" strict ", ColumnPolicyStrict, false},
		{"loose", "", true},
	}

	for _, tt := range tests {
		got, err := ParseColumnPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColumnPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColumnPolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMapQuestionRow_Lenient(t *testing.T) {
	rec := Record{
		ColQuestionText:  "What is 2+2?",
		ColOptionA:       "3",
		ColOptionB:       "4",
		ColCorrectAnswer: "B",
	}

	p, err := MapQuestionRow(rec, 0, ColumnPolicyLenient)
	if err != nil {
		t.Fatalf("MapQuestionRow() error = %v", err)
	}
	if !p.Question.Valid || p.Question.String != "What is 2+2?" {
		t.Errorf("Question = %+v", p.Question)
	}
	if !p.OptionB.Valid || p.OptionB.String != "4" {
		t.Errorf("OptionB = %+v", p.OptionB)
	}
	if p.OptionC.Valid || p.OptionD.Valid {
		t.Errorf("absent options should be NULL: C=%+v D=%+v", p.OptionC, p.OptionD)
	}
	if p.Explanation != "" {
		t.Errorf("Explanation = %q, want empty default", p.Explanation)
	}
}

func TestMapQuestionRow_KeepsExplanation(t *testing.T) {
	rec := Record{ColExplanation: "Because."}
	p, err := MapQuestionRow(rec, 3, ColumnPolicyLenient)
	if err != nil {
		t.Fatalf("MapQuestionRow() error = %v", err)
	}
	if p.Explanation != "Because." {
		t.Errorf("Explanation = %q", p.Explanation)
	}
}

func TestMapQuestionRow_Strict(t *testing.T) {
	complete := Record{
		ColQuestionText:  "Q",
		ColOptionA:       "a",
		ColOptionB:       "b",
		ColOptionC:       "c",
		ColOptionD:       "d",
		ColCorrectAnswer: "A",
	}
	if _, err := MapQuestionRow(complete, 0, ColumnPolicyStrict); err != nil {
		t.Errorf("complete record without Explanation rejected: %v", err)
	}

	delete(complete, ColOptionD)
	_, err := MapQuestionRow(complete, 4, ColumnPolicyStrict)
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingColumnError", err)
	}
	if missing.Row != 4 || missing.Column != ColOptionD {
		t.Errorf("MissingColumnError = %+v, want row 4 column OptionD", missing)
	}
}

func TestMapScoreRow(t *testing.T) {
	tests := []struct {
		name      string
		rec       Record
		wantScore string
		wantValid bool
	}{
		{"integer", Record{ColScore: "85"}, "85.00", true},
		{"rounded", Record{ColScore: "66.666"}, "66.67", true},
		{"tie rounds away from zero", Record{ColScore: "0.125"}, "0.13", true},
		{"non numeric passes through", Record{ColScore: "abc"}, "abc", true},
		{"absent", Record{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := MapScoreRow(tt.rec, 0, ColumnPolicyLenient)
			if err != nil {
				t.Fatalf("MapScoreRow() error = %v", err)
			}
			if p.Score.Valid != tt.wantValid || p.Score.String != tt.wantScore {
				t.Errorf("Score = %+v, want {%q %v}", p.Score, tt.wantScore, tt.wantValid)
			}
		})
	}
}

func TestMapScoreRow_Strict(t *testing.T) {
	rec := Record{ColStudentID: "S1", ColCourseCode: "C1", ColSemester: "2024A"}
	_, err := MapScoreRow(rec, 2, ColumnPolicyStrict)
	var missing *MissingColumnError
	if !errors.As(err, &missing) || missing.Column != ColScore || missing.Row != 2 {
		t.Errorf("error = %v, want missing Score at row 2", err)
	}
}

func TestMapRows_PreservesOrderAndStops(t *testing.T) {
	recs := []Record{
		{ColStudentID: "S1", ColCourseCode: "C", ColScore: "1", ColSemester: "X"},
		{ColStudentID: "S2", ColCourseCode: "C", ColScore: "2", ColSemester: "X"},
		{ColStudentID: "S3", ColCourseCode: "C", ColScore: "3", ColSemester: "X"},
	}

	rows, err := MapRows(recs, ColumnPolicyStrict, MapScoreRow)
	if err != nil {
		t.Fatalf("MapRows() error = %v", err)
	}
	for i, r := range rows {
		if want := recs[i][ColStudentID]; r.StudentID.String != want {
			t.Errorf("rows[%d].StudentID = %q, want %q", i, r.StudentID.String, want)
		}
	}

	delete(recs[1], ColSemester)
	if _, err := MapRows(recs, ColumnPolicyStrict, MapScoreRow); err == nil {
		t.Error("MapRows() expected error for incomplete record under strict policy")
	}
	if _, err := MapRows(recs, ColumnPolicyLenient, MapScoreRow); err != nil {
		t.Errorf("MapRows() lenient error = %v", err)
	}
}
