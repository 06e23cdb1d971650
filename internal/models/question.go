package models

import "time"

// Question modes. Practice allows repeated feedback rounds, exam is the
// restricted variant the front-end renders with minimal feedback.
const (
	ModePractice = "practice"
	ModeExam     = "exam"
)

// EssayQuestion is the author-set configuration of one essay question
// instance. It is shared across all students of the instance and is
// read-only during a student session.
type EssayQuestion struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CourseID        string    `gorm:"size:255;not null;index" json:"course_id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	PromptHTML      string    `gorm:"type:text" json:"prompt_html"`
	AIInstructions  string    `gorm:"type:text" json:"ai_instructions"`
	Language        string    `gorm:"size:16;not null" json:"language"`
	MinWords        int       `gorm:"not null" json:"min_words"`
	MaxWords        int       `gorm:"not null" json:"max_words"`
	MaxChars        int       `gorm:"not null" json:"max_chars"`
	MaxAttempts     int       `gorm:"not null" json:"max_attempts"`
	Mode            string    `gorm:"size:16;not null" json:"mode"`
	BackendURL      string    `gorm:"size:512" json:"backend_url"`
	ScaleMin        float64   `gorm:"not null" json:"scale_min"`
	ScaleMax        float64   `gorm:"not null" json:"scale_max"`
	Weight          float64   `gorm:"not null" json:"weight"`
	ShowScoreInExam bool      `gorm:"not null" json:"show_score_in_exam"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsExam reports whether the question runs in exam mode.
func (q EssayQuestion) IsExam() bool {
	return q.Mode == ModeExam
}
