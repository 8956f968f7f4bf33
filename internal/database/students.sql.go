package database

import (
	"context"
)

const listStudents = `SELECT student_id, full_name, class_name
FROM student
ORDER BY student_id
`

func (q *Queries) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := q.db.Query(ctx, listStudents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Student{}
	for rows.Next() {
		var i Student
		if err := rows.Scan(&i.StudentID, &i.FullName, &i.ClassName); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getStudent = `SELECT student_id, full_name, class_name
FROM student
WHERE student_id = $1
`

func (q *Queries) GetStudent(ctx context.Context, studentID string) (Student, error) {
	row := q.db.QueryRow(ctx, getStudent, studentID)
	var i Student
	err := row.Scan(&i.StudentID, &i.FullName, &i.ClassName)
	return i, err
}
