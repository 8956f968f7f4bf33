package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/JonMunkholm/quizbank/internal/core"
	"github.com/JonMunkholm/quizbank/internal/database"
)

var errNoFile = errors.New("no file uploaded")

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// ImportResponse is returned by a successful import.
type ImportResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
	BatchID string `json:"batchId"`
}

func importResponse(res core.ImportResult) ImportResponse {
	return ImportResponse{
		Success: true,
		Message: res.Message(),
		Count:   res.Count,
		BatchID: res.BatchID,
	}
}

// spreadsheet is an uploaded file read into memory.
type spreadsheet struct {
	name string
	data []byte
}

// readSpreadsheet reads the file in field and checks its extension. It
// writes the error response itself and returns false on failure.
func (s *Server) readSpreadsheet(w http.ResponseWriter, r *http.Request, field string) (spreadsheet, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, http.StatusRequestEntityTooLarge, "File too large", err)
			return spreadsheet{}, false
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			s.respondError(w, r, http.StatusBadRequest, "Invalid form data", err)
			return spreadsheet{}, false
		}
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "No file uploaded", errNoFile)
		return spreadsheet{}, false
	}
	defer file.Close()

	if _, ok := core.FileFormat(header.Filename); !ok {
		s.respondError(w, r, http.StatusBadRequest, "Invalid file type", core.ErrUnsupportedFormat)
		return spreadsheet{}, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "Failed to read file", err)
		return spreadsheet{}, false
	}
	return spreadsheet{name: header.Filename, data: data}, true
}

// handleImportQuestions imports a question spreadsheet into the collection
// named by the type form field.
func (s *Server) handleImportQuestions(w http.ResponseWriter, r *http.Request) {
	sheet, ok := s.readSpreadsheet(w, r, "excelFile")
	if !ok {
		return
	}

	c, err := database.ParseCollection(r.FormValue("type"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Invalid quiz domain type", err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.ImportQuestions(ctx, c, sheet.name, sheet.data)
	if err != nil {
		s.respondImportError(w, r, err, "Import failed during transaction")
		return
	}

	writeJSON(w, http.StatusOK, importResponse(res))
}

// handleImportScores imports a score spreadsheet.
func (s *Server) handleImportScores(w http.ResponseWriter, r *http.Request) {
	sheet, ok := s.readSpreadsheet(w, r, "scoreFile")
	if !ok {
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.ImportScores(ctx, sheet.name, sheet.data)
	if err != nil {
		s.respondImportError(w, r, err, "Failed to import scores")
		return
	}

	writeJSON(w, http.StatusOK, importResponse(res))
}
