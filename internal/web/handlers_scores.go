package web

import (
	"net/http"

	"github.com/JonMunkholm/quizbank/internal/core"
	"github.com/go-chi/chi/v5"
)

// handleListScores returns scores filtered by studentId, semester and
// courseCode query parameters. Empty parameters match everything.
func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scores, err := s.service.ListScores(r.Context(), core.ScoreFilter{
		StudentID:  q.Get("studentId"),
		Semester:   q.Get("semester"),
		CourseCode: q.Get("courseCode"),
	})
	if err != nil {
		s.respondQueryError(w, r, err, "Failed to load scores")
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.service.ListStudents(r.Context())
	if err != nil {
		s.respondQueryError(w, r, err, "Failed to load students")
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := s.service.GetStudent(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		s.respondQueryError(w, r, err, "Failed to load student")
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (s *Server) handleStudentScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.service.StudentScores(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		s.respondQueryError(w, r, err, "Failed to load scores")
		return
	}
	writeJSON(w, http.StatusOK, scores)
}
