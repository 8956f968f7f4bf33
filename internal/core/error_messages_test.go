package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/quizbank/internal/database"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "invalid numeric cast inside batch error",
			err:         &BatchInsertError{Index: 1, Err: &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type numeric: "abc"`}},
			wantCode:    "DB009",
			wantMessage: "Invalid number format detected",
		},
		{
			name:        "numeric overflow",
			err:         &pgconn.PgError{Code: "22003"},
			wantCode:    "DB008",
			wantMessage: "A number is too large for its column",
		},
		{
			name:        "foreign key by sqlstate",
			err:         fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}),
			wantCode:    "DB003",
			wantMessage: "Referenced student or course does not exist",
		},
		{
			name:        "duplicate key by pattern",
			err:         errors.New("ERROR: duplicate key value violates unique constraint"),
			wantCode:    "DB001",
			wantMessage: "A record with this ID already exists",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DUPLICATE KEY value violates"),
			wantCode:    "DB001",
			wantMessage: "A record with this ID already exists",
		},
		{
			name:        "connection refused",
			err:         &ConnectionError{Op: "acquire", Err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")},
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "connection error without known cause",
			err:         &ConnectionError{Op: "begin transaction", Err: errors.New("closed pool")},
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "decode error",
			err:         &DecodeError{Format: "xlsx", Err: errors.New("zip: not a valid zip file")},
			wantCode:    "FILE002",
			wantMessage: "Failed to parse spreadsheet",
		},
		{
			name:        "unsupported format",
			err:         fmt.Errorf("%w: %q", ErrUnsupportedFormat, "txt"),
			wantCode:    "FILE003",
			wantMessage: "Invalid file type",
		},
		{
			name:        "missing column",
			err:         &MissingColumnError{Row: 0, Column: ColScore},
			wantCode:    "VAL001",
			wantMessage: "Required column is missing from the file",
		},
		{
			name:        "invalid collection",
			err:         fmt.Errorf("%w: %q", database.ErrInvalidCollection, "domain9"),
			wantCode:    "VAL002",
			wantMessage: "Invalid quiz domain type",
		},
		{
			name:        "limiter busy",
			err:         ErrTooManyImports,
			wantCode:    "IMP001",
			wantMessage: "Too many imports in progress",
		},
		{
			name:        "deadline exceeded",
			err:         fmt.Errorf("insert row 4: %w", context.DeadlineExceeded),
			wantCode:    "IMP003",
			wantMessage: "Request timed out",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(errors.New("duplicate key value violates"))
	want := "A record with this ID already exists (Code: DB001). Remove duplicate rows and import the file again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}

	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", errors.New("duplicate key"), true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
