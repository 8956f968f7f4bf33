package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/quizbank/internal/database"
	"github.com/JonMunkholm/quizbank/internal/logging"
)

// AddQuestion stores one question in c and returns its id.
//
// With MirrorToCBT enabled, a question added to a domain table is also copied
// into cbt without its image. Both inserts share one transaction.
func (s *Service) AddQuestion(ctx context.Context, c database.Collection, q NewQuestion) (int32, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %q", database.ErrInvalidCollection, string(c))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	sess, err := s.session(ctx)
	if err != nil {
		return 0, err
	}

	if !s.cfg.MirrorToCBT || !c.IsDomain() {
		id, err := database.New(sess).InsertQuestion(ctx, c, q.params())
		if err != nil {
			return 0, fmt.Errorf("add question to %s: %w", c, err)
		}
		return id, nil
	}

	var id int32
	_, err = RunBatch(ctx, sess, []NewQuestion{q}, func(ctx context.Context, tx database.DBTX, q NewQuestion) error {
		queries := database.New(tx)
		var err error
		if id, err = queries.InsertQuestion(ctx, c, q.params()); err != nil {
			return err
		}
		_, err = queries.InsertQuestionWithoutImage(ctx, database.CBT, q.params())
		return err
	})
	if err != nil {
		s.connectionLost(err)
		return 0, fmt.Errorf("add question to %s: %w", c, err)
	}

	logging.FromContext(ctx).Debug("question added", "collection", c, "id", id, "mirrored", true)
	return id, nil
}

// ListQuestions returns every question in c ordered by id.
func (s *Service) ListQuestions(ctx context.Context, c database.Collection) ([]database.Question, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", database.ErrInvalidCollection, string(c))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return database.New(sess).ListQuestions(ctx, c)
}

// DeleteQuestion removes question id from c and reports whether it existed.
func (s *Service) DeleteQuestion(ctx context.Context, c database.Collection, id int32) (bool, error) {
	if !c.Valid() {
		return false, fmt.Errorf("%w: %q", database.ErrInvalidCollection, string(c))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	sess, err := s.session(ctx)
	if err != nil {
		return false, err
	}
	n, err := database.New(sess).DeleteQuestion(ctx, c, id)
	if err != nil {
		return false, fmt.Errorf("delete question %d from %s: %w", id, c, err)
	}
	return n > 0, nil
}
