package models

import (
	"time"

	"gorm.io/datatypes"
)

// AttemptState holds the per-student state of one essay question: the last
// submitted text, the last computed score and the number of scoring attempts
// used. A row is created on the first submission and mutated only by a
// successful scoring call; it is never deleted.
type AttemptState struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	QuestionID   uint              `gorm:"not null;uniqueIndex:idx_attempt_question_student" json:"question_id"`
	StudentID    uint              `gorm:"not null;uniqueIndex:idx_attempt_question_student" json:"student_id"`
	EssayText    string            `gorm:"type:text" json:"essay_text"`
	Score        float64           `gorm:"not null" json:"score"`
	AttemptCount int               `gorm:"not null" json:"attempt_count"`
	LastResult   datatypes.JSONMap `json:"last_result"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Question     EssayQuestion     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student      Student           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// HasResult reports whether a previous scoring result is stored.
func (s AttemptState) HasResult() bool {
	return len(s.LastResult) > 0
}
