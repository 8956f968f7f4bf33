package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/quizbank/internal/database"
	"github.com/jackc/pgx/v5"
)

// ListScores returns scores matching every non-empty field of f.
func (s *Service) ListScores(ctx context.Context, f ScoreFilter) ([]database.Score, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return database.New(sess).ListScores(ctx, f.params())
}

// ListStudents returns all students ordered by id.
func (s *Service) ListStudents(ctx context.Context) ([]database.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return database.New(sess).ListStudents(ctx)
}

// GetStudent looks up one student. Returns ErrStudentNotFound if there is
// no such student.
func (s *Service) GetStudent(ctx context.Context, studentID string) (database.Student, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return database.Student{}, ErrStudentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	sess, err := s.session(ctx)
	if err != nil {
		return database.Student{}, err
	}
	st, err := database.New(sess).GetStudent(ctx, studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return database.Student{}, fmt.Errorf("%w: %q", ErrStudentNotFound, studentID)
	}
	return st, err
}

// StudentScores returns all scores of an existing student.
func (s *Service) StudentScores(ctx context.Context, studentID string) ([]database.Score, error) {
	if _, err := s.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.ListScores(ctx, ScoreFilter{StudentID: studentID})
}
