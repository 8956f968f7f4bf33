package core

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for uploads that are not xlsx, xls or csv.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrStudentNotFound is returned when a student lookup matches no row.
var ErrStudentNotFound = errors.New("student not found")

// DecodeError reports a spreadsheet that could not be parsed in its
// declared format.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("parse spreadsheet (%s): %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MissingColumnError is returned under the strict column policy when a
// record lacks a required column.
type MissingColumnError struct {
	Row    int // 0-based record index
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q in row %d", e.Column, e.Row)
}

// BatchInsertError reports the row that made a batch fail. The whole batch
// has been rolled back by the time the caller sees it.
//
// Index is the 0-based position of the failing row, or -1 when every insert
// succeeded but the commit itself failed.
type BatchInsertError struct {
	Index int
	Err   error
}

func (e *BatchInsertError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("batch commit failed: %v", e.Err)
	}
	return fmt.Sprintf("insert row %d: %v", e.Index, e.Err)
}

func (e *BatchInsertError) Unwrap() error {
	return e.Err
}

// ConnectionError reports that no database session could be obtained or a
// transaction could not be started.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database unavailable (%s): %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
