package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type InsertImportedQuestionParams struct {
	Question      pgtype.Text
	OptionA       pgtype.Text
	OptionB       pgtype.Text
	OptionC       pgtype.Text
	OptionD       pgtype.Text
	CorrectAnswer pgtype.Text
	Explanation   string
}

func (q *Queries) InsertImportedQuestion(ctx context.Context, c Collection, arg InsertImportedQuestionParams) error {
	s, err := c.stmts()
	if err != nil {
		return err
	}
	_, err = q.db.Exec(ctx, s.insertImported,
		arg.Question,
		arg.OptionA,
		arg.OptionB,
		arg.OptionC,
		arg.OptionD,
		arg.CorrectAnswer,
		arg.Explanation,
	)
	return err
}

type InsertQuestionParams struct {
	Question      pgtype.Text
	OptionA       pgtype.Text
	OptionB       pgtype.Text
	OptionC       pgtype.Text
	OptionD       pgtype.Text
	CorrectAnswer pgtype.Text
	Explanation   pgtype.Text
	QuestionImage []byte
}

func (q *Queries) InsertQuestion(ctx context.Context, c Collection, arg InsertQuestionParams) (int32, error) {
	s, err := c.stmts()
	if err != nil {
		return 0, err
	}
	row := q.db.QueryRow(ctx, s.insert,
		arg.Question,
		arg.OptionA,
		arg.OptionB,
		arg.OptionC,
		arg.OptionD,
		arg.CorrectAnswer,
		arg.Explanation,
		arg.QuestionImage,
	)
	var id int32
	err = row.Scan(&id)
	return id, err
}

func (q *Queries) InsertQuestionWithoutImage(ctx context.Context, c Collection, arg InsertQuestionParams) (int32, error) {
	s, err := c.stmts()
	if err != nil {
		return 0, err
	}
	row := q.db.QueryRow(ctx, s.insertWithoutImage,
		arg.Question,
		arg.OptionA,
		arg.OptionB,
		arg.OptionC,
		arg.OptionD,
		arg.CorrectAnswer,
		arg.Explanation,
	)
	var id int32
	err = row.Scan(&id)
	return id, err
}

func (q *Queries) ListQuestions(ctx context.Context, c Collection) ([]Question, error) {
	s, err := c.stmts()
	if err != nil {
		return nil, err
	}
	rows, err := q.db.Query(ctx, s.list)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Question{}
	for rows.Next() {
		var i Question
		if err := rows.Scan(
			&i.ID,
			&i.Question,
			&i.OptionA,
			&i.OptionB,
			&i.OptionC,
			&i.OptionD,
			&i.CorrectAnswer,
			&i.Explanation,
			&i.QuestionImage,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) DeleteQuestion(ctx context.Context, c Collection, id int32) (int64, error) {
	s, err := c.stmts()
	if err != nil {
		return 0, err
	}
	result, err := q.db.Exec(ctx, s.deleteByID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
