package models

import "time"

// GradeEntry records one grade published to the gradebook. Every successful
// scoring call appends an entry, so the table doubles as an audit trail of
// grade events.
type GradeEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	StudentID  uint      `gorm:"not null;index" json:"student_id"`
	Value      float64   `gorm:"not null" json:"value"`
	MaxValue   float64   `gorm:"not null" json:"max_value"`
	CreatedAt  time.Time `json:"created_at"`
}
