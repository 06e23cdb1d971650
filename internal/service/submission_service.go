package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/essayq-go-api/internal/dto"
	"github.com/noah-isme/essayq-go-api/internal/models"
	"github.com/noah-isme/essayq-go-api/internal/observability"
	"github.com/noah-isme/essayq-go-api/internal/repository"
	"github.com/noah-isme/essayq-go-api/internal/scoring"
)

// QuestionProvider resolves question configurations for the submission flow.
// QuestionService satisfies it, cache included.
type QuestionProvider interface {
	Get(ctx context.Context, id uint) (models.EssayQuestion, error)
}

// SubmissionService runs the essay submission workflow: guards, one scoring
// round-trip, state commit and grade publication.
type SubmissionService interface {
	Submit(ctx context.Context, questionID, studentID uint, payload dto.EssaySubmissionRequest) (scoring.Result, error)
	State(ctx context.Context, questionID, studentID uint) (dto.QuestionStateResponse, error)
}

type submissionService struct {
	questions  QuestionProvider
	attempts   repository.AttemptRepository
	students   repository.StudentRepository
	client     scoring.Client
	publisher  GradePublisher
	defaultURL string
	logger     zerolog.Logger
}

// NewSubmissionService constructs a SubmissionService instance. defaultURL is
// used for questions whose author did not pin a backend URL.
func NewSubmissionService(questions QuestionProvider, attempts repository.AttemptRepository, students repository.StudentRepository, client scoring.Client, publisher GradePublisher, defaultURL string, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		questions:  questions,
		attempts:   attempts,
		students:   students,
		client:     client,
		publisher:  publisher,
		defaultURL: defaultURL,
		logger:     logger.With().Str("component", "submission_service").Logger(),
	}
}

// Submit scores one essay. The returned Result is always a complete scoring
// document, ok or error; the Go error is reserved for storage failures.
//
// Attempt state mutates only on an ok result: exactly one attempt is
// consumed per successful scoring call, never on any error path.
func (s *submissionService) Submit(ctx context.Context, questionID, studentID uint, payload dto.EssaySubmissionRequest) (scoring.Result, error) {
	question, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}

	state, err := s.loadState(ctx, questionID, studentID)
	if err != nil {
		return nil, err
	}

	if state.AttemptCount >= question.MaxAttempts {
		result := scoring.ErrorResult(
			scoring.CodeMaxAttemptsReached,
			"You have already used all available attempts for this question.",
			fiber.StatusForbidden,
			"",
			map[string]any{
				"attempts_used": state.AttemptCount,
				"max_attempts":  question.MaxAttempts,
			},
		)
		return s.finishError(question, state, result), nil
	}

	essayText := payload.EssayText
	if strings.TrimSpace(essayText) == "" {
		result := scoring.ErrorResult(
			scoring.CodeEmptyEssay,
			"Please type your essay before submitting.",
			fiber.StatusUnprocessableEntity,
			"",
			nil,
		)
		return s.finishError(question, state, result), nil
	}

	attemptIndex := state.AttemptCount + 1
	request := scoring.BuildPayload(question, s.identity(ctx, question, studentID), essayText, attemptIndex)

	url := strings.TrimSpace(question.BackendURL)
	if url == "" {
		url = s.defaultURL
	}

	result := s.client.Score(ctx, url, request)
	if !result.IsOK() {
		return s.finishError(question, state, result), nil
	}

	state.AttemptCount = attemptIndex
	state.EssayText = essayText
	if err := s.applyGrading(ctx, question, &state, result); err != nil {
		return nil, err
	}

	result["mode"] = question.Mode
	result["attempts_used"] = state.AttemptCount
	result["max_attempts"] = question.MaxAttempts
	result["show_score_in_exam"] = question.ShowScoreInExam

	observability.Submissions().WithLabelValues("ok").Inc()

	s.logger.Info().
		Uint("question_id", questionID).
		Uint("student_id", studentID).
		Str("request_id", result.RequestID()).
		Int("attempts_used", state.AttemptCount).
		Float64("score", state.Score).
		Msg("essay scored")

	return result, nil
}

// State returns the init payload for rendering a question to one student.
// Exam mode withholds the stored result document; the numeric score is
// exposed there only when the author allowed it.
func (s *submissionService) State(ctx context.Context, questionID, studentID uint) (dto.QuestionStateResponse, error) {
	question, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return dto.QuestionStateResponse{}, err
	}

	state, err := s.loadState(ctx, questionID, studentID)
	if err != nil {
		return dto.QuestionStateResponse{}, err
	}

	response := dto.QuestionStateResponse{
		Mode:              question.Mode,
		PromptHTML:        question.PromptHTML,
		MinWords:          question.MinWords,
		MaxWords:          question.MaxWords,
		MaxChars:          question.MaxChars,
		MaxAttempts:       question.MaxAttempts,
		AttemptsUsed:      state.AttemptCount,
		ShowScoreInExam:   question.ShowScoreInExam,
		HasPreviousResult: state.HasResult(),
	}

	if !state.HasResult() {
		return response, nil
	}

	if !question.IsExam() {
		score := state.Score
		response.Score = &score
		response.LastResult = map[string]any(state.LastResult)
	} else if question.ShowScoreInExam {
		score := state.Score
		response.Score = &score
	}

	return response, nil
}

func (s *submissionService) loadState(ctx context.Context, questionID, studentID uint) (models.AttemptState, error) {
	state, err := s.attempts.GetByQuestionAndStudent(ctx, questionID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AttemptState{QuestionID: questionID, StudentID: studentID}, nil
		}
		return models.AttemptState{}, err
	}

	return state, nil
}

func (s *submissionService) identity(ctx context.Context, question models.EssayQuestion, studentID uint) scoring.Identity {
	identity := scoring.Identity{
		QuestionID: fmt.Sprintf("essayq-%d", question.ID),
		CourseID:   question.CourseID,
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("student lookup failed, using placeholder identity")
		return identity
	}
	identity.UserID = student.AnonymousID

	return identity
}

// applyGrading persists the final score with the full raw response and emits
// the grade event. Score computation cannot fail: malformed score fields
// resolve to zero.
func (s *submissionService) applyGrading(ctx context.Context, question models.EssayQuestion, state *models.AttemptState, result scoring.Result) error {
	state.Score = scoring.FinalScore(result, question.Weight)
	state.LastResult = result.JSONMap()

	if err := s.attempts.Save(ctx, state); err != nil {
		return err
	}

	event := GradeEvent{
		QuestionID: question.ID,
		StudentID:  state.StudentID,
		Value:      state.Score,
		MaxValue:   question.Weight,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("question_id", question.ID).Msg("failed to publish grade event")
	}

	return nil
}

// finishError augments an error document with submission context. State is
// deliberately untouched: no attempt or grade mutation happens on any
// error path.
func (s *submissionService) finishError(question models.EssayQuestion, state models.AttemptState, result scoring.Result) scoring.Result {
	result.SetDefault("mode", question.Mode)
	result.SetDefault("attempts_used", state.AttemptCount)
	result.SetDefault("max_attempts", question.MaxAttempts)

	outcome := result.ErrorCode()
	if outcome == "" {
		outcome = "backend_error"
	}
	observability.Submissions().WithLabelValues(outcome).Inc()

	s.logger.Warn().
		Uint("question_id", question.ID).
		Str("error_code", result.ErrorCode()).
		Int("attempts_used", state.AttemptCount).
		Msg("essay submission rejected")

	return result
}
