package core

// error_messages.go maps technical errors to user-friendly messages with
// codes for support reference. Users can quote the code to support staff for
// faster diagnosis.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key (SQLSTATE 23505)
//	DB003 - Foreign key: referenced student or course does not exist (23503)
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//	DB007 - Deadlock (40P01)
//	DB008 - Numeric overflow: score has more than 3 integer digits (22003)
//	DB009 - Invalid number: a numeric column received text (22P02)
//	DB010 - Value too long for its column (22001)
//	DB011 - Required value missing (23502)
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing column (strict column policy)
//	VAL002 - Unknown quiz domain type
//	VAL003 - Student not found
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Spreadsheet could not be parsed
//	FILE003 - Unsupported file type
//	FILE004 - No file uploaded
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: too many concurrent imports
//	IMP002 - Request cancelled
//	IMP003 - Request timed out
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the application logs for the original
// technical error.
//
// Typed errors and PostgreSQL error codes are checked first. Remaining errors
// are matched case-insensitively against message patterns; the first match
// wins, so specific patterns come before general ones.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/quizbank/internal/database"
	"github.com/jackc/pgx/v5/pgconn"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgDuplicate = UserMessage{
		Message: "A record with this ID already exists",
		Action:  "Remove duplicate rows and import the file again",
		Code:    "DB001",
	}
	msgForeignKey = UserMessage{
		Message: "Referenced student or course does not exist",
		Action:  "Check the student IDs and course codes in your file",
		Code:    "DB003",
	}
	msgConnRefused = UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}
	msgConnReset = UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}
	msgTimeout = UserMessage{
		Message: "Operation timed out",
		Action:  "Try importing a smaller file or try again later",
		Code:    "DB006",
	}
	msgDeadlock = UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}
	msgOverflow = UserMessage{
		Message: "A number is too large for its column",
		Action:  "Scores must be below 1000 with at most 2 decimals",
		Code:    "DB008",
	}
	msgInvalidNumber = UserMessage{
		Message: "Invalid number format detected",
		Action:  "Make sure every score is a plain number",
		Code:    "DB009",
	}
	msgTooLong = UserMessage{
		Message: "A value is too long for its column",
		Action:  "Shorten the value; correct answers are a single character",
		Code:    "DB010",
	}
	msgNotNull = UserMessage{
		Message: "A required value is missing",
		Action:  "Fill in every required column",
		Code:    "DB011",
	}
	msgMissingColumn = UserMessage{
		Message: "Required column is missing from the file",
		Action:  "Check that all required columns are present in your file",
		Code:    "VAL001",
	}
	msgInvalidCollection = UserMessage{
		Message: "Invalid quiz domain type",
		Action:  "Use one of domain1-domain8, cbt or test",
		Code:    "VAL002",
	}
	msgStudentNotFound = UserMessage{
		Message: "Student not found",
		Action:  "Verify the student ID",
		Code:    "VAL003",
	}
	msgFileTooLarge = UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}
	msgParse = UserMessage{
		Message: "Failed to parse spreadsheet",
		Action:  "Check that the file is a valid xlsx, xls or csv file",
		Code:    "FILE002",
	}
	msgUnsupported = UserMessage{
		Message: "Invalid file type",
		Action:  "Upload an xlsx, xls or csv file",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file uploaded",
		Action:  "Please select a file to upload",
		Code:    "FILE004",
	}
	msgBusy = UserMessage{
		Message: "Too many imports in progress",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "IMP002",
	}
	msgDeadline = UserMessage{
		Message: "Request timed out",
		Action:  "Try importing a smaller file or check your connection",
		Code:    "IMP003",
	}

	defaultMessage = UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
)

// pgCodeMessages maps PostgreSQL SQLSTATE codes to user messages.
var pgCodeMessages = map[string]UserMessage{
	"23505": msgDuplicate,
	"23503": msgForeignKey,
	"23502": msgNotNull,
	"22003": msgOverflow,
	"22P02": msgInvalidNumber,
	"22001": msgTooLong,
	"40P01": msgDeadlock,
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is checked in order after typed errors.
var errorPatterns = []errorPattern{
	{"duplicate key", msgDuplicate},
	{"foreign key", msgForeignKey},
	{"connection refused", msgConnRefused},
	{"connection reset", msgConnReset},
	{"deadlock", msgDeadlock},
	{"numeric field overflow", msgOverflow},
	{"invalid input syntax", msgInvalidNumber},
	{"value too long", msgTooLong},
	{"missing required column", msgMissingColumn},
	{"file too large", msgFileTooLarge},
	{"request body too large", msgFileTooLarge},
	{"no file uploaded", msgNoFile},
	{"timeout", msgTimeout},
}

// MapError converts a technical error to a user-friendly message.
// Returns the zero UserMessage for a nil error and code ERR000 when nothing
// matches.
//
// Example:
//
//	msg := MapError(&BatchInsertError{Index: 1, Err: pgErr})
//	// msg.Code == "DB009" for an invalid numeric cast
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := pgCodeMessages[pgErr.Code]; ok {
			return msg
		}
	}

	var (
		decodeErr  *DecodeError
		missingErr *MissingColumnError
	)
	switch {
	case errors.As(err, &missingErr):
		return msgMissingColumn
	case errors.As(err, &decodeErr):
		return msgParse
	case errors.Is(err, ErrUnsupportedFormat):
		return msgUnsupported
	case errors.Is(err, database.ErrInvalidCollection):
		return msgInvalidCollection
	case errors.Is(err, ErrStudentNotFound):
		return msgStudentNotFound
	case errors.Is(err, ErrTooManyImports):
		return msgBusy
	case errors.Is(err, context.DeadlineExceeded):
		return msgDeadline
	case errors.Is(err, context.Canceled):
		return msgCancelled
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return msgConnRefused
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
