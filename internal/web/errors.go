package web

// errors.go turns service errors into JSON responses.
//
// Every error response has the same shape. The technical error is logged
// with the request ID; clients only see the user message and code, plus the
// raw database error in development.

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/quizbank/internal/core"
	"github.com/JonMunkholm/quizbank/internal/database"
	"github.com/JonMunkholm/quizbank/internal/logging"
)

// ErrorResponse is the JSON body of every failed API request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Action  string `json:"action,omitempty"`
	Row     *int   `json:"row,omitempty"`
	Details string `json:"details,omitempty"`
}

// respondError logs err and writes message with the mapped error code.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", userMsg.Code,
	}
	if err != nil {
		args = append(args, "error", err.Error())
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", args...)
	} else {
		logger.Warn("request rejected", args...)
	}

	resp := ErrorResponse{
		Error:  message,
		Code:   userMsg.Code,
		Action: userMsg.Action,
		Row:    failedRow(err),
	}
	if err != nil && s.cfg.App.IsDevelopment() {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// respondImportError picks the status and message for a failed import.
// failMessage is used when the batch itself was rolled back.
func (s *Server) respondImportError(w http.ResponseWriter, r *http.Request, err error, failMessage string) {
	var (
		decodeErr  *core.DecodeError
		missingErr *core.MissingColumnError
		batchErr   *core.BatchInsertError
		connErr    *core.ConnectionError
	)
	switch {
	case errors.Is(err, core.ErrUnsupportedFormat):
		s.respondError(w, r, http.StatusBadRequest, "Invalid file type", err)
	case errors.Is(err, database.ErrInvalidCollection):
		s.respondError(w, r, http.StatusBadRequest, "Invalid quiz domain type", err)
	case errors.As(err, &decodeErr):
		s.respondError(w, r, http.StatusBadRequest, "Failed to parse spreadsheet", err)
	case errors.As(err, &missingErr):
		s.respondError(w, r, http.StatusBadRequest, "Missing required column: "+missingErr.Column, err)
	case errors.Is(err, core.ErrTooManyImports):
		w.Header().Set("Retry-After", retryAfter(s.service.ImportStatus().MaxWait))
		s.respondError(w, r, http.StatusServiceUnavailable, "Server is busy, please try again later", err)
	case errors.As(err, &connErr):
		s.respondError(w, r, http.StatusInternalServerError, "Database unavailable", err)
	case errors.As(err, &batchErr):
		s.respondError(w, r, http.StatusInternalServerError, failMessage, err)
	default:
		s.respondError(w, r, http.StatusInternalServerError, "Import failed", err)
	}
}

// respondQueryError handles errors from lookups, adds and deletes.
func (s *Server) respondQueryError(w http.ResponseWriter, r *http.Request, err error, failMessage string) {
	var connErr *core.ConnectionError
	switch {
	case errors.Is(err, database.ErrInvalidCollection):
		s.respondError(w, r, http.StatusBadRequest, "Invalid quiz domain type", err)
	case errors.Is(err, core.ErrStudentNotFound):
		s.respondError(w, r, http.StatusNotFound, "Student not found", err)
	case errors.As(err, &connErr):
		s.respondError(w, r, http.StatusInternalServerError, "Database unavailable", err)
	default:
		s.respondError(w, r, http.StatusInternalServerError, failMessage, err)
	}
}

// failedRow returns the 0-based row an import failed on, if known.
func failedRow(err error) *int {
	var batchErr *core.BatchInsertError
	if errors.As(err, &batchErr) && batchErr.Index >= 0 {
		row := batchErr.Index
		return &row
	}
	var missingErr *core.MissingColumnError
	if errors.As(err, &missingErr) {
		row := missingErr.Row
		return &row
	}
	return nil
}
