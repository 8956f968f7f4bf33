package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// The score travels as text and is cast server side, so malformed or
// out-of-range values are rejected by the database rather than coerced.
const insertScore = `INSERT INTO score (student_id, course_code, score, semester)
VALUES ($1, $2, CAST($3::text AS NUMERIC(5,2)), $4)
`

type InsertScoreParams struct {
	StudentID  pgtype.Text
	CourseCode pgtype.Text
	Score      pgtype.Text
	Semester   pgtype.Text
}

func (q *Queries) InsertScore(ctx context.Context, arg InsertScoreParams) error {
	_, err := q.db.Exec(ctx, insertScore,
		arg.StudentID,
		arg.CourseCode,
		arg.Score,
		arg.Semester,
	)
	return err
}

const listScores = `SELECT id, student_id, course_code, score, semester
FROM score
WHERE ($1::text IS NULL OR student_id = $1)
  AND ($2::text IS NULL OR semester = $2)
  AND ($3::text IS NULL OR course_code = $3)
ORDER BY student_id, semester, course_code, id
`

type ListScoresParams struct {
	StudentID  pgtype.Text
	Semester   pgtype.Text
	CourseCode pgtype.Text
}

func (q *Queries) ListScores(ctx context.Context, arg ListScoresParams) ([]Score, error) {
	rows, err := q.db.Query(ctx, listScores, arg.StudentID, arg.Semester, arg.CourseCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Score{}
	for rows.Next() {
		var i Score
		if err := rows.Scan(
			&i.ID,
			&i.StudentID,
			&i.CourseCode,
			&i.Score,
			&i.Semester,
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
