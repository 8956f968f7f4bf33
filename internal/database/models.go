package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Question struct {
	ID            int32              `json:"id"`
	Question      pgtype.Text        `json:"question"`
	OptionA       pgtype.Text        `json:"optionA"`
	OptionB       pgtype.Text        `json:"optionB"`
	OptionC       pgtype.Text        `json:"optionC"`
	OptionD       pgtype.Text        `json:"optionD"`
	CorrectAnswer pgtype.Text        `json:"correctAnswer"`
	Explanation   pgtype.Text        `json:"explanation"`
	QuestionImage []byte             `json:"questionImage"`
	CreatedAt     pgtype.Timestamptz `json:"createdAt"`
}

type Score struct {
	ID         int32          `json:"id"`
	StudentID  pgtype.Text    `json:"studentId"`
	CourseCode pgtype.Text    `json:"courseCode"`
	Score      pgtype.Numeric `json:"score"`
	Semester   pgtype.Text    `json:"semester"`
}

type Student struct {
	StudentID string      `json:"studentId"`
	FullName  pgtype.Text `json:"fullName"`
	ClassName pgtype.Text `json:"className"`
}
