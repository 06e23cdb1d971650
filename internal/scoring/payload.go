package scoring

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/noah-isme/essayq-go-api/internal/models"
)

const apiVersion = "1.0"

// Placeholders used when the runtime cannot resolve real identifiers.
// Building a payload never fails on missing context.
const (
	placeholderQuestionID = "essayq-unknown"
	placeholderCourseID   = "course-v1:WORKBENCH+DEMO+2025"
	placeholderUserID     = "anon-student"
)

// Identity carries the caller context forwarded to the scoring backend.
// Empty fields are replaced with fixed placeholders.
type Identity struct {
	QuestionID string
	CourseID   string
	UserID     string
}

// Payload is the request document sent to the scoring backend. It is built
// fresh per submission and never persisted.
type Payload struct {
	Meta   Meta         `json:"meta"`
	Config EssayConfig  `json:"config"`
	Prompt PromptConfig `json:"prompt"`
	Essay  Essay        `json:"essay"`
}

// Meta identifies one scoring request.
type Meta struct {
	APIVersion string `json:"api_version"`
	RequestID  string `json:"request_id"`
	QuestionID string `json:"question_id"`
	CourseID   string `json:"course_id"`
	UserID     string `json:"user_id"`
	Mode       string `json:"mode"`
}

// EssayConfig describes limits and the scoring rubric.
type EssayConfig struct {
	Language string       `json:"language"`
	Limits   Limits       `json:"limits"`
	Scoring  RubricConfig `json:"scoring"`
}

// Limits are the author-set word and character bounds.
type Limits struct {
	MinWords int `json:"min_words"`
	MaxWords int `json:"max_words"`
	MaxChars int `json:"max_chars"`
}

// RubricConfig instructs the backend how to scale and break down the score.
type RubricConfig struct {
	ScaleMin   float64    `json:"scale_min"`
	ScaleMax   float64    `json:"scale_max"`
	Normalize  bool       `json:"normalize"`
	Categories []Category `json:"categories"`
}

// Category is one rubric dimension.
type Category struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// PromptConfig carries the hidden grading instructions.
type PromptConfig struct {
	Instructions string `json:"instructions"`
	TaskType     string `json:"task_type"`
	TopicID      string `json:"topic_id"`
}

// Essay is the submitted text with its computed counts and attempt budget.
type Essay struct {
	Text         string `json:"text"`
	WordCount    int    `json:"word_count"`
	CharCount    int    `json:"char_count"`
	AttemptIndex int    `json:"attempt_index"`
	MaxAttempts  int    `json:"max_attempts"`
}

// Categories returns the fixed four-dimension rubric: grammar, vocabulary,
// coherence & cohesion and task response, weighted equally.
func Categories() []Category {
	return []Category{
		{ID: "grammar", Label: "Grammar", Weight: 0.25},
		{ID: "vocabulary", Label: "Vocabulary", Weight: 0.25},
		{ID: "coherence", Label: "Coherence & Cohesion", Weight: 0.25},
		{ID: "task_response", Label: "Task Response", Weight: 0.25},
	}
}

// BuildPayload assembles the request document for one submission. It is a
// pure transformation: a fresh request id is drawn, counts are computed from
// the raw text and missing identifiers fall back to placeholders.
func BuildPayload(question models.EssayQuestion, identity Identity, essayText string, attemptIndex int) Payload {
	questionID := identity.QuestionID
	if questionID == "" {
		questionID = placeholderQuestionID
	}
	courseID := identity.CourseID
	if courseID == "" {
		courseID = placeholderCourseID
	}
	userID := identity.UserID
	if userID == "" {
		userID = placeholderUserID
	}

	return Payload{
		Meta: Meta{
			APIVersion: apiVersion,
			RequestID:  uuid.NewString(),
			QuestionID: questionID,
			CourseID:   courseID,
			UserID:     userID,
			Mode:       question.Mode,
		},
		Config: EssayConfig{
			Language: question.Language,
			Limits: Limits{
				MinWords: question.MinWords,
				MaxWords: question.MaxWords,
				MaxChars: question.MaxChars,
			},
			Scoring: RubricConfig{
				ScaleMin:   question.ScaleMin,
				ScaleMax:   question.ScaleMax,
				Normalize:  true,
				Categories: Categories(),
			},
		},
		Prompt: PromptConfig{
			Instructions: question.AIInstructions,
			TaskType:     "argumentative",
			TopicID:      "pte_essay_01",
		},
		Essay: Essay{
			Text:         essayText,
			WordCount:    WordCount(essayText),
			CharCount:    utf8.RuneCountInString(essayText),
			AttemptIndex: attemptIndex,
			MaxAttempts:  question.MaxAttempts,
		},
	}
}

// WordCount splits on whitespace; empty or whitespace-only text counts zero.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
