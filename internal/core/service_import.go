package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/quizbank/internal/database"
	"github.com/JonMunkholm/quizbank/internal/logging"
	"github.com/google/uuid"
)

// importJob describes one import batch of parameter type P.
type importJob[P any] struct {
	kind     ImportKind
	target   string
	fileName string
	format   string
	data     []byte
	mapRow   RowMapper[P]
	insert   InsertFunc[P]
}

// ImportQuestions imports every row of a question spreadsheet into c.
// Either all rows are inserted or none are.
func (s *Service) ImportQuestions(ctx context.Context, c database.Collection, fileName string, data []byte) (ImportResult, error) {
	format, err := importFormat(fileName)
	if err != nil {
		return ImportResult{}, err
	}
	if !c.Valid() {
		return ImportResult{}, fmt.Errorf("%w: %q", database.ErrInvalidCollection, string(c))
	}

	return runImport(ctx, s, importJob[database.InsertImportedQuestionParams]{
		kind:     KindQuestions,
		target:   c.String(),
		fileName: fileName,
		format:   format,
		data:     data,
		mapRow:   MapQuestionRow,
		insert: func(ctx context.Context, tx database.DBTX, p database.InsertImportedQuestionParams) error {
			return database.New(tx).InsertImportedQuestion(ctx, c, p)
		},
	})
}

// ImportScores imports every row of a score spreadsheet.
// Either all rows are inserted or none are.
func (s *Service) ImportScores(ctx context.Context, fileName string, data []byte) (ImportResult, error) {
	format, err := importFormat(fileName)
	if err != nil {
		return ImportResult{}, err
	}

	return runImport(ctx, s, importJob[database.InsertScoreParams]{
		kind:     KindScores,
		target:   "score",
		fileName: fileName,
		format:   format,
		data:     data,
		mapRow:   MapScoreRow,
		insert: func(ctx context.Context, tx database.DBTX, p database.InsertScoreParams) error {
			return database.New(tx).InsertScore(ctx, p)
		},
	})
}

func importFormat(fileName string) (string, error) {
	format, ok := FileFormat(fileName)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, fileName)
	}
	return format, nil
}

// runImport takes an import slot and runs the job on a context that ignores
// client cancellation, so a dropped connection cannot abort a transaction
// halfway. The context is bounded by the import timeout instead.
func runImport[P any](ctx context.Context, s *Service, job importJob[P]) (ImportResult, error) {
	result := ImportResult{
		BatchID:  uuid.NewString(),
		Kind:     job.kind,
		Target:   job.target,
		FileName: job.fileName,
	}
	log := logging.WithFields(ctx,
		"batch_id", result.BatchID,
		"kind", job.kind,
		"target", job.target,
		"file", job.fileName,
		"client_ip", ClientIPFromContext(ctx),
		"user_agent", UserAgentFromContext(ctx),
	)

	if err := s.limiter.Acquire(ctx); err != nil {
		s.metrics.importRejected(job.kind, job.target)
		log.Warn("import slot unavailable", "error", err)
		return ImportResult{}, err
	}
	defer s.limiter.Release()
	s.metrics.importStarted()

	importCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ImportTimeout)
	defer cancel()

	start := time.Now()
	n, outcome, err := executeImport(importCtx, s, job)
	result.Count = n
	result.Duration = time.Since(start)
	s.metrics.importFinished(job.kind, job.target, outcome, n, result.Duration)

	if err != nil {
		var batchErr *BatchInsertError
		if errors.As(err, &batchErr) {
			log.Error("import rolled back", "row", batchErr.Index, "error", batchErr.Err, "duration", result.Duration)
		} else if outcome == OutcomeFailed {
			log.Error("import failed", "error", err, "duration", result.Duration)
		} else {
			log.Warn("import rejected", "error", err)
		}
		return ImportResult{}, err
	}

	log.Info("import committed", "rows", n, "duration", result.Duration)
	return result, nil
}

func executeImport[P any](ctx context.Context, s *Service, job importJob[P]) (int, string, error) {
	records, err := DecodeTable(job.data, job.format)
	if err != nil {
		return 0, OutcomeRejected, err
	}

	rows, err := MapRows(records, s.cfg.ColumnPolicy, job.mapRow)
	if err != nil {
		return 0, OutcomeRejected, err
	}

	sess, err := s.session(ctx)
	if err != nil {
		s.metrics.connectionFailed()
		return 0, OutcomeFailed, err
	}

	n, err := RunBatch(ctx, sess, rows, job.insert)
	if err != nil {
		if s.connectionLost(err) {
			s.metrics.connectionFailed()
		}
		return 0, OutcomeFailed, err
	}
	return n, OutcomeSuccess, nil
}
