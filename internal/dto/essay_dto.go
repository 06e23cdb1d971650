package dto

// EssaySubmissionRequest is the student submit payload.
type EssaySubmissionRequest struct {
	EssayText string `json:"essay_text"`
}

// QuestionStateResponse is the init payload the front-end needs to render a
// question for one student: the author limits plus this student's attempt
// budget and, when allowed by the mode, the previous scoring result.
type QuestionStateResponse struct {
	Mode              string         `json:"mode"`
	PromptHTML        string         `json:"prompt_html"`
	MinWords          int            `json:"min_words"`
	MaxWords          int            `json:"max_words"`
	MaxChars          int            `json:"max_chars"`
	MaxAttempts       int            `json:"max_attempts"`
	AttemptsUsed      int            `json:"attempts_used"`
	ShowScoreInExam   bool           `json:"show_score_in_exam"`
	HasPreviousResult bool           `json:"has_previous_result"`
	Score             *float64       `json:"score,omitempty"`
	LastResult        map[string]any `json:"last_result,omitempty"`
}
