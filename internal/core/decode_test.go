package core

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestFileFormat(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"scores.csv", "csv", true},
		{"Questions.XLSX", "xlsx", true},
		{"old.xls", "xls", true},
		{"archive.tar.csv", "csv", true},
		{"notes.txt", "txt", false},
		{"noext", "", false},
		{"csv", "", false},
	}

	for _, tt := range tests {
		got, ok := FileFormat(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("FileFormat(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDecodeTable_CSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBFStudentId,CourseCode,Score,Semester\n" +
		"S001,MTH101,85,2024A\n" +
		"S002,MTH101,,2024A\n" +
		",,,\n" +
		"S003,PHY102,72.5,2024B\n")

	got, err := DecodeTable(data, "csv")
	if err != nil {
		t.Fatalf("DecodeTable() error = %v", err)
	}

	want := []Record{
		{"StudentId": "S001", "CourseCode": "MTH101", "Score": "85", "Semester": "2024A"},
		{"StudentId": "S002", "CourseCode": "MTH101", "Semester": "2024A"},
		{"StudentId": "S003", "CourseCode": "PHY102", "Score": "72.5", "Semester": "2024B"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodeTable() =\n%v\nwant\n%v", got, want)
	}
}

func TestDecodeTable_CSVInvalidUTF8(t *testing.T) {
	data := []byte("QuestionText\nCaf\xe9\n")

	got, err := DecodeTable(data, "CSV")
	if err != nil {
		t.Fatalf("DecodeTable() error = %v", err)
	}
	if len(got) != 1 || got[0]["QuestionText"] != "Caf\uFFFD" {
		t.Errorf("DecodeTable() = %v, want sanitized value", got)
	}
}

func TestDecodeTable_CSVRaggedRows(t *testing.T) {
	data := []byte("A,B\n1\n2,3,4\n")

	got, err := DecodeTable(data, "csv")
	if err != nil {
		t.Fatalf("DecodeTable() error = %v", err)
	}
	want := []Record{
		{"A": "1"},
		{"A": "2", "B": "3", "__EMPTY": "4"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodeTable() = %v, want %v", got, want)
	}
}

func TestDecodeTable_EmptyInput(t *testing.T) {
	got, err := DecodeTable(nil, "csv")
	if err != nil {
		t.Fatalf("DecodeTable() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("DecodeTable(empty) = %v, want no records", got)
	}

	got, err = DecodeTable([]byte("StudentId,Score\n"), "csv")
	if err != nil {
		t.Fatalf("DecodeTable() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("DecodeTable(header only) = %v, want no records", got)
	}
}

func TestDecodeTable_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"QuestionText", "OptionA", "OptionB", "OptionC", "OptionD", "CorrectAnswer", "Explanation"},
		{"2+2?", "3", "4", "5", "6", "B", "Basic sum"},
		{"Capital of France?", "Paris", "Rome", "Madrid", "Berlin", "A"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	got, err := DecodeTable(buf.Bytes(), "xlsx")
	if err != nil {
		t.Fatalf("DecodeTable() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0]["OptionB"] != "4" || got[0]["Explanation"] != "Basic sum" {
		t.Errorf("first record = %v", got[0])
	}
	if _, ok := got[1]["Explanation"]; ok {
		t.Errorf("second record should have no Explanation: %v", got[1])
	}
	if got[1]["QuestionText"] != "Capital of France?" {
		t.Errorf("row order not preserved: %v", got)
	}
}

func TestDecodeTable_XLSXStyledNumbers(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	header := []any{"StudentId", "CourseCode", "Score", "Semester"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	values := map[string]any{
		"A2": "S001", "B2": "MTH101", "C2": 85.5, "D2": "2024A",
		"A3": "S002", "B3": "PHY102", "C3": 0.856, "D3": "2024A",
	}
	for cell, v := range values {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatalf("SetCellValue(%s): %v", cell, err)
		}
	}

	// "0" displays 85.5 as 86; "0%" displays 0.856 as 86%.
	whole, err := f.NewStyle(&excelize.Style{NumFmt: 1})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	if err := f.SetCellStyle("Sheet1", "C2", "C2", whole); err != nil {
		t.Fatalf("SetCellStyle: %v", err)
	}
	if err := f.SetCellStyle("Sheet1", "C3", "C3", percent); err != nil {
		t.Fatalf("SetCellStyle: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	got, err := DecodeTable(buf.Bytes(), "xlsx")
	if err != nil {
		t.Fatalf("DecodeTable() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0][ColScore] != "85.5" {
		t.Errorf("Score = %q, want raw value 85.5", got[0][ColScore])
	}
	if got[1][ColScore] != "0.856" {
		t.Errorf("Score = %q, want raw value 0.856", got[1][ColScore])
	}

	p, err := MapScoreRow(got[0], 0, ColumnPolicyStrict)
	if err != nil {
		t.Fatalf("MapScoreRow() error = %v", err)
	}
	if p.Score.String != "85.50" {
		t.Errorf("mapped Score = %q, want 85.50", p.Score.String)
	}
}

func TestDecodeTable_XLS(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "scores.xls"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	got, err := DecodeTable(data, "xls")
	if err != nil {
		t.Fatalf("DecodeTable() error = %v", err)
	}

	// Row 4 of the sheet is missing entirely and is skipped like a blank row.
	want := []Record{
		{"StudentId": "S001", "CourseCode": "MTH101", "Score": "85.5", "Semester": "2024A"},
		{"StudentId": "S002", "CourseCode": "PHY102", "Score": "72", "Semester": "2024A"},
		{"StudentId": "S003", "CourseCode": "CHM103", "Semester": "2024B"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodeTable() =\n%v\nwant\n%v", got, want)
	}
}

func TestDecodeTable_Malformed(t *testing.T) {
	for _, format := range []string{"xlsx", "xls"} {
		_, err := DecodeTable([]byte("definitely not a workbook"), format)
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("DecodeTable(%s) error = %v, want *DecodeError", format, err)
			continue
		}
		if decodeErr.Format != format {
			t.Errorf("DecodeError.Format = %q, want %q", decodeErr.Format, format)
		}
	}
}

func TestDecodeTable_UnsupportedFormat(t *testing.T) {
	_, err := DecodeTable([]byte("a,b"), "txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestHeaderNames(t *testing.T) {
	tests := []struct {
		name  string
		row   []string
		width int
		want  []string
	}{
		{
			name:  "unique headers unchanged",
			row:   []string{"A", "B"},
			width: 2,
			want:  []string{"A", "B"},
		},
		{
			name:  "duplicates get suffixes",
			row:   []string{"Score", "Score", "Score"},
			width: 3,
			want:  []string{"Score", "Score_1", "Score_2"},
		},
		{
			name:  "empty headers",
			row:   []string{"", "A", ""},
			width: 4,
			want:  []string{"__EMPTY", "A", "__EMPTY_1", "__EMPTY_2"},
		},
		{
			name:  "suffix collides with real header",
			row:   []string{"A_1", "A", "A"},
			width: 3,
			want:  []string{"A_1", "A", "A_2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := headerNames(tt.row, tt.width); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("headerNames() = %v, want %v", got, tt.want)
			}
		})
	}
}
