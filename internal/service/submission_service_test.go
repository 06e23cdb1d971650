package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/essayq-go-api/internal/dto"
	"github.com/noah-isme/essayq-go-api/internal/models"
	"github.com/noah-isme/essayq-go-api/internal/scoring"
)

type stubQuestionProvider struct {
	question models.EssayQuestion
	err      error
}

func (s stubQuestionProvider) Get(ctx context.Context, id uint) (models.EssayQuestion, error) {
	if s.err != nil {
		return models.EssayQuestion{}, s.err
	}
	return s.question, nil
}

type stubAttemptRepo struct {
	stored *models.AttemptState
	saves  int
	err    error
}

func (s *stubAttemptRepo) GetByQuestionAndStudent(ctx context.Context, questionID, studentID uint) (models.AttemptState, error) {
	if s.err != nil {
		return models.AttemptState{}, s.err
	}
	if s.stored == nil {
		return models.AttemptState{}, gorm.ErrRecordNotFound
	}
	return *s.stored, nil
}

func (s *stubAttemptRepo) Save(ctx context.Context, state *models.AttemptState) error {
	s.saves++
	clone := *state
	s.stored = &clone
	return nil
}

type stubStudentRepo struct {
	student models.Student
	err     error
}

func (s stubStudentRepo) GetByID(ctx context.Context, id uint) (models.Student, error) {
	if s.err != nil {
		return models.Student{}, s.err
	}
	return s.student, nil
}

func (s stubStudentRepo) Create(ctx context.Context, student *models.Student) error {
	return nil
}

type stubScoringClient struct {
	result      scoring.Result
	calls       int
	lastPayload scoring.Payload
	lastURL     string
}

func (s *stubScoringClient) Score(ctx context.Context, url string, payload scoring.Payload) scoring.Result {
	s.calls++
	s.lastPayload = payload
	s.lastURL = url
	// callers may mutate the result, hand out a fresh copy per call
	clone := scoring.Result{}
	for k, v := range s.result {
		clone[k] = v
	}
	return clone
}

type stubPublisher struct {
	events []GradeEvent
	err    error
}

func (s *stubPublisher) Publish(ctx context.Context, event GradeEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func practiceQuestion() models.EssayQuestion {
	return models.EssayQuestion{
		ID:          1,
		CourseID:    "course-v1:ESSAYQ+101+2026",
		Language:    "en",
		MinWords:    10,
		MaxWords:    250,
		MaxChars:    1500,
		MaxAttempts: 3,
		Mode:        models.ModePractice,
		BackendURL:  "http://scoring.test/api/essay-score",
		ScaleMin:    0,
		ScaleMax:    100,
		Weight:      1.0,
	}
}

func okScore(raw float64) scoring.Result {
	return scoring.Result{
		"status": "ok",
		"score": map[string]any{
			"raw":       raw,
			"scale_min": 0.0,
			"scale_max": 100.0,
		},
	}
}

func newSubmissionFixture(question models.EssayQuestion, client *stubScoringClient) (SubmissionService, *stubAttemptRepo, *stubPublisher) {
	attempts := &stubAttemptRepo{}
	publisher := &stubPublisher{}
	svc := NewSubmissionService(
		stubQuestionProvider{question: question},
		attempts,
		stubStudentRepo{student: models.Student{ID: 9, AnonymousID: "anon-9"}},
		client,
		publisher,
		"http://default.test/api/essay-score",
		zerolog.Nop(),
	)
	return svc, attempts, publisher
}

func TestSubmitSuccessConsumesOneAttempt(t *testing.T) {
	client := &stubScoringClient{result: okScore(80)}
	svc, attempts, publisher := newSubmissionFixture(practiceQuestion(), client)

	result, err := svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: "a fine essay"})
	require.NoError(t, err)

	require.True(t, result.IsOK())
	require.Equal(t, 1, client.calls)
	require.Equal(t, 1, attempts.stored.AttemptCount)
	require.Equal(t, "a fine essay", attempts.stored.EssayText)
	require.InDelta(t, 0.8, attempts.stored.Score, 1e-9)
	require.NotEmpty(t, attempts.stored.LastResult)

	// augmented context for the front-end
	require.Equal(t, models.ModePractice, result["mode"])
	require.Equal(t, 1, result["attempts_used"])
	require.Equal(t, 3, result["max_attempts"])
	require.Equal(t, false, result["show_score_in_exam"])

	require.Len(t, publisher.events, 1)
	require.InDelta(t, 0.8, publisher.events[0].Value, 1e-9)
	require.InDelta(t, 1.0, publisher.events[0].MaxValue, 1e-9)
}

func TestSubmitPayloadUsesNextAttemptIndex(t *testing.T) {
	client := &stubScoringClient{result: okScore(70)}
	svc, attempts, _ := newSubmissionFixture(practiceQuestion(), client)
	attempts.stored = &models.AttemptState{QuestionID: 1, StudentID: 9, AttemptCount: 1}

	_, err := svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: "second try"})
	require.NoError(t, err)

	require.Equal(t, 2, client.lastPayload.Essay.AttemptIndex)
	require.Equal(t, "http://scoring.test/api/essay-score", client.lastURL)
	require.Equal(t, "essayq-1", client.lastPayload.Meta.QuestionID)
	require.Equal(t, "anon-9", client.lastPayload.Meta.UserID)
	require.Equal(t, 2, attempts.stored.AttemptCount)
}

func TestSubmitMaxAttemptsGuardSkipsBackend(t *testing.T) {
	client := &stubScoringClient{result: okScore(80)}
	svc, attempts, publisher := newSubmissionFixture(practiceQuestion(), client)
	attempts.stored = &models.AttemptState{QuestionID: 1, StudentID: 9, AttemptCount: 3}

	result, err := svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: "one more"})
	require.NoError(t, err)

	require.Equal(t, scoring.StatusError, result.Status())
	require.Equal(t, scoring.CodeMaxAttemptsReached, result.ErrorCode())
	require.Equal(t, 403, result.StatusCode())
	require.Equal(t, 3, result["attempts_used"])
	require.Equal(t, 3, result["max_attempts"])

	require.Zero(t, client.calls)
	require.Zero(t, attempts.saves)
	require.Empty(t, publisher.events)
}

func TestSubmitEmptyEssayGuardSkipsBackend(t *testing.T) {
	client := &stubScoringClient{result: okScore(80)}
	svc, attempts, publisher := newSubmissionFixture(practiceQuestion(), client)

	for _, text := range []string{"", "   ", "\n\t "} {
		result, err := svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: text})
		require.NoError(t, err)

		require.Equal(t, scoring.CodeEmptyEssay, result.ErrorCode())
		require.Equal(t, 422, result.StatusCode())
	}

	require.Zero(t, client.calls)
	require.Zero(t, attempts.saves)
	require.Empty(t, publisher.events)
}

func TestSubmitBackendErrorDoesNotConsumeAttempt(t *testing.T) {
	client := &stubScoringClient{result: scoring.Result{
		"status":      "error",
		"status_code": 503.0,
		"error": map[string]any{
			"code":    scoring.CodeBackendUnavailable,
			"message": "down",
		},
	}}
	svc, attempts, publisher := newSubmissionFixture(practiceQuestion(), client)
	attempts.stored = &models.AttemptState{QuestionID: 1, StudentID: 9, AttemptCount: 1}

	result, err := svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: "try again"})
	require.NoError(t, err)

	require.Equal(t, scoring.CodeBackendUnavailable, result.ErrorCode())
	// error passes through with context, state untouched
	require.Equal(t, models.ModePractice, result["mode"])
	require.Equal(t, 1, result["attempts_used"])
	require.Equal(t, 3, result["max_attempts"])
	require.Equal(t, 1, attempts.stored.AttemptCount)
	require.Zero(t, attempts.saves)
	require.Empty(t, publisher.events)
}

func TestSubmitAttemptCountEqualsSuccessfulCalls(t *testing.T) {
	client := &stubScoringClient{result: okScore(60)}
	svc, attempts, _ := newSubmissionFixture(practiceQuestion(), client)

	// two successes
	for i := 0; i < 2; i++ {
		_, err := svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: "essay text"})
		require.NoError(t, err)
	}

	// a few failures of both kinds
	client.result = scoring.Result{"status": "error", "error": map[string]any{"code": "X"}}
	_, err := svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: "essay text"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: "  "})
	require.NoError(t, err)

	// one more success fills the budget
	client.result = okScore(90)
	_, err = svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: "essay text"})
	require.NoError(t, err)

	require.Equal(t, 3, attempts.stored.AttemptCount)

	// budget exhausted now
	result, err := svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: "essay text"})
	require.NoError(t, err)
	require.Equal(t, scoring.CodeMaxAttemptsReached, result.ErrorCode())
	require.Equal(t, 3, attempts.stored.AttemptCount)
}

func TestSubmitPublisherFailureDoesNotFailSubmission(t *testing.T) {
	client := &stubScoringClient{result: okScore(50)}
	question := practiceQuestion()
	attempts := &stubAttemptRepo{}
	publisher := &stubPublisher{err: context.DeadlineExceeded}
	svc := NewSubmissionService(stubQuestionProvider{question: question}, attempts, stubStudentRepo{}, client, publisher, "", zerolog.Nop())

	result, err := svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: "essay"})
	require.NoError(t, err)
	require.True(t, result.IsOK())
	require.Equal(t, 1, attempts.stored.AttemptCount)
}

func TestSubmitFallsBackToDefaultBackendURL(t *testing.T) {
	client := &stubScoringClient{result: okScore(50)}
	question := practiceQuestion()
	question.BackendURL = "  "
	svc, _, _ := newSubmissionFixture(question, client)

	_, err := svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: "essay"})
	require.NoError(t, err)
	require.Equal(t, "http://default.test/api/essay-score", client.lastURL)
}

func TestSubmitStudentLookupFailureUsesPlaceholder(t *testing.T) {
	client := &stubScoringClient{result: okScore(50)}
	attempts := &stubAttemptRepo{}
	svc := NewSubmissionService(
		stubQuestionProvider{question: practiceQuestion()},
		attempts,
		stubStudentRepo{err: gorm.ErrRecordNotFound},
		client,
		&stubPublisher{},
		"",
		zerolog.Nop(),
	)

	_, err := svc.Submit(context.Background(), 1, 9, dto.EssaySubmissionRequest{EssayText: "essay"})
	require.NoError(t, err)
	require.Equal(t, "anon-student", client.lastPayload.Meta.UserID)
}

func TestStateFiltersResultInExamMode(t *testing.T) {
	question := practiceQuestion()
	question.Mode = models.ModeExam
	question.ShowScoreInExam = false

	attempts := &stubAttemptRepo{stored: &models.AttemptState{
		QuestionID:   1,
		StudentID:    9,
		AttemptCount: 1,
		Score:        0.8,
		LastResult:   datatypes.JSONMap{"status": "ok", "feedback": "detailed feedback"},
	}}
	svc := NewSubmissionService(stubQuestionProvider{question: question}, attempts, stubStudentRepo{}, &stubScoringClient{}, &stubPublisher{}, "", zerolog.Nop())

	state, err := svc.State(context.Background(), 1, 9)
	require.NoError(t, err)

	require.Equal(t, models.ModeExam, state.Mode)
	require.Equal(t, 1, state.AttemptsUsed)
	require.True(t, state.HasPreviousResult)
	require.Nil(t, state.Score)
	require.Nil(t, state.LastResult)
}

func TestStateShowsScoreInExamWhenAllowed(t *testing.T) {
	question := practiceQuestion()
	question.Mode = models.ModeExam
	question.ShowScoreInExam = true

	attempts := &stubAttemptRepo{stored: &models.AttemptState{
		AttemptCount: 1,
		Score:        0.8,
		LastResult:   datatypes.JSONMap{"status": "ok"},
	}}
	svc := NewSubmissionService(stubQuestionProvider{question: question}, attempts, stubStudentRepo{}, &stubScoringClient{}, &stubPublisher{}, "", zerolog.Nop())

	state, err := svc.State(context.Background(), 1, 9)
	require.NoError(t, err)

	require.NotNil(t, state.Score)
	require.InDelta(t, 0.8, *state.Score, 1e-9)
	require.Nil(t, state.LastResult)
}

func TestStatePracticeModeIncludesResult(t *testing.T) {
	attempts := &stubAttemptRepo{stored: &models.AttemptState{
		AttemptCount: 2,
		Score:        0.5,
		LastResult:   datatypes.JSONMap{"status": "ok", "feedback": "good"},
	}}
	svc := NewSubmissionService(stubQuestionProvider{question: practiceQuestion()}, attempts, stubStudentRepo{}, &stubScoringClient{}, &stubPublisher{}, "", zerolog.Nop())

	state, err := svc.State(context.Background(), 1, 9)
	require.NoError(t, err)

	require.NotNil(t, state.Score)
	require.Equal(t, "good", state.LastResult["feedback"])
}

func TestStateForFreshStudent(t *testing.T) {
	svc := NewSubmissionService(stubQuestionProvider{question: practiceQuestion()}, &stubAttemptRepo{}, stubStudentRepo{}, &stubScoringClient{}, &stubPublisher{}, "", zerolog.Nop())

	state, err := svc.State(context.Background(), 1, 9)
	require.NoError(t, err)

	require.Zero(t, state.AttemptsUsed)
	require.False(t, state.HasPreviousResult)
	require.Nil(t, state.Score)
	require.Equal(t, 3, state.MaxAttempts)
}
