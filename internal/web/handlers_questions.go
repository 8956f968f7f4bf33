package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/quizbank/internal/core"
	"github.com/JonMunkholm/quizbank/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// handleAddQuestion stores one question posted as a form, with an optional
// image file.
func (s *Server) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.respondError(w, r, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	c, err := database.ParseCollection(r.FormValue("type"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Invalid quiz domain type", err)
		return
	}

	image, err := formImage(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Invalid image upload", err)
		return
	}

	q := core.NewQuestion{
		Question:      formText(r, "question"),
		OptionA:       formText(r, "optionA"),
		OptionB:       formText(r, "optionB"),
		OptionC:       formText(r, "optionC"),
		OptionD:       formText(r, "optionD"),
		CorrectAnswer: formText(r, "correctAnswer"),
		Explanation:   formText(r, "explanation"),
		Image:         image,
	}

	id, err := s.service.AddQuestion(WithRequestMetadata(r.Context(), r), c, q)
	if err != nil {
		s.respondQueryError(w, r, err, "Failed to add question")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Question added!",
		"id":      id,
	})
}

// handleListQuestions returns every question in ?type=.
func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	c, err := database.ParseCollection(r.URL.Query().Get("type"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Invalid quiz domain type", err)
		return
	}

	questions, err := s.service.ListQuestions(r.Context(), c)
	if err != nil {
		s.respondQueryError(w, r, err, "Server Error")
		return
	}

	writeJSON(w, http.StatusOK, questions)
}

// handleDeleteQuestion removes one question by id.
func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	c, err := database.ParseCollection(chi.URLParam(r, "type"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Invalid quiz domain type", err)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid question id")
		return
	}

	deleted, err := s.service.DeleteQuestion(WithRequestMetadata(r.Context(), r), c, int32(id))
	if err != nil {
		s.respondQueryError(w, r, err, "Failed to delete question")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Question not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Question deleted",
	})
}

// formText returns a form field verbatim, or NULL if it was not sent.
func formText(r *http.Request, key string) pgtype.Text {
	if _, ok := r.Form[key]; !ok {
		return pgtype.Text{}
	}
	return pgtype.Text{String: r.FormValue(key), Valid: true}
}

// formImage returns the optional image upload, or nil when none was sent.
func formImage(r *http.Request) ([]byte, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
