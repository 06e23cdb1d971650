package dto

import (
	"time"

	"github.com/noah-isme/essayq-go-api/internal/models"
)

// QuestionCreateRequest describes the author payload for a new essay question.
type QuestionCreateRequest struct {
	CourseID        string   `json:"course_id" validate:"required"`
	Title           string   `json:"title" validate:"required,min=3"`
	PromptHTML      string   `json:"prompt_html"`
	AIInstructions  string   `json:"ai_instructions"`
	Language        string   `json:"language" validate:"omitempty,min=2,max=16"`
	MinWords        *int     `json:"min_words" validate:"omitempty,gte=0"`
	MaxWords        *int     `json:"max_words" validate:"omitempty,gte=0"`
	MaxChars        *int     `json:"max_chars" validate:"omitempty,gte=0"`
	MaxAttempts     *int     `json:"max_attempts" validate:"omitempty,gte=1"`
	Mode            string   `json:"mode" validate:"omitempty,oneof=practice exam"`
	BackendURL      string   `json:"backend_url" validate:"omitempty,url"`
	ScaleMin        *float64 `json:"scale_min"`
	ScaleMax        *float64 `json:"scale_max"`
	Weight          *float64 `json:"weight" validate:"omitempty,gt=0"`
	ShowScoreInExam *bool    `json:"show_score_in_exam"`
}

// QuestionUpdateRequest updates author-editable fields; absent fields are
// left untouched.
type QuestionUpdateRequest struct {
	Title           *string  `json:"title" validate:"omitempty,min=3"`
	PromptHTML      *string  `json:"prompt_html"`
	AIInstructions  *string  `json:"ai_instructions"`
	Language        *string  `json:"language" validate:"omitempty,min=2,max=16"`
	MinWords        *int     `json:"min_words" validate:"omitempty,gte=0"`
	MaxWords        *int     `json:"max_words" validate:"omitempty,gte=0"`
	MaxChars        *int     `json:"max_chars" validate:"omitempty,gte=0"`
	MaxAttempts     *int     `json:"max_attempts" validate:"omitempty,gte=1"`
	Mode            *string  `json:"mode" validate:"omitempty,oneof=practice exam"`
	BackendURL      *string  `json:"backend_url" validate:"omitempty,url"`
	ScaleMin        *float64 `json:"scale_min"`
	ScaleMax        *float64 `json:"scale_max"`
	Weight          *float64 `json:"weight" validate:"omitempty,gt=0"`
	ShowScoreInExam *bool    `json:"show_score_in_exam"`
}

// QuestionFilter describes query string filters for listing questions.
type QuestionFilter struct {
	CourseID *string `query:"course_id"`
	Mode     *string `query:"mode" validate:"omitempty,oneof=practice exam"`
}

// QuestionResponse is returned to authors when viewing questions.
type QuestionResponse struct {
	ID              uint      `json:"id"`
	CourseID        string    `json:"course_id"`
	Title           string    `json:"title"`
	PromptHTML      string    `json:"prompt_html"`
	AIInstructions  string    `json:"ai_instructions"`
	Language        string    `json:"language"`
	MinWords        int       `json:"min_words"`
	MaxWords        int       `json:"max_words"`
	MaxChars        int       `json:"max_chars"`
	MaxAttempts     int       `json:"max_attempts"`
	Mode            string    `json:"mode"`
	BackendURL      string    `json:"backend_url"`
	ScaleMin        float64   `json:"scale_min"`
	ScaleMax        float64   `json:"scale_max"`
	Weight          float64   `json:"weight"`
	ShowScoreInExam bool      `json:"show_score_in_exam"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewQuestionResponse maps a model to its API representation.
func NewQuestionResponse(question models.EssayQuestion) QuestionResponse {
	return QuestionResponse{
		ID:              question.ID,
		CourseID:        question.CourseID,
		Title:           question.Title,
		PromptHTML:      question.PromptHTML,
		AIInstructions:  question.AIInstructions,
		Language:        question.Language,
		MinWords:        question.MinWords,
		MaxWords:        question.MaxWords,
		MaxChars:        question.MaxChars,
		MaxAttempts:     question.MaxAttempts,
		Mode:            question.Mode,
		BackendURL:      question.BackendURL,
		ScaleMin:        question.ScaleMin,
		ScaleMax:        question.ScaleMax,
		Weight:          question.Weight,
		ShowScoreInExam: question.ShowScoreInExam,
		CreatedAt:       question.CreatedAt,
		UpdatedAt:       question.UpdatedAt,
	}
}

// NewQuestionResponseSlice maps a slice of models.
func NewQuestionResponseSlice(questions []models.EssayQuestion) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuestionResponse(question))
	}
	return responses
}
