package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/essayq-go-api/internal/dto"
	"github.com/noah-isme/essayq-go-api/internal/models"
	"github.com/noah-isme/essayq-go-api/internal/repository"
)

// ErrQuestionNotFound indicates an essay question could not be found.
var ErrQuestionNotFound = errors.New("question not found")

// Defaults applied to author-omitted question fields.
const (
	defaultLanguage    = "en"
	defaultMinWords    = 150
	defaultMaxWords    = 250
	defaultMaxChars    = 1500
	defaultMaxAttempts = 3
	defaultScaleMax    = 100
	defaultWeight      = 1.0
)

// QuestionService manages the author-facing question configuration.
type QuestionService interface {
	List(ctx context.Context, filter dto.QuestionFilter) ([]dto.QuestionResponse, error)
	Get(ctx context.Context, id uint) (models.EssayQuestion, error)
	Create(ctx context.Context, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	Update(ctx context.Context, id uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error)
	Delete(ctx context.Context, id uint) error
}

type questionService struct {
	questions repository.QuestionRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewQuestionService constructs a QuestionService instance.
func NewQuestionService(questions repository.QuestionRepository, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) QuestionService {
	return &questionService{
		questions: questions,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) List(ctx context.Context, filter dto.QuestionFilter) ([]dto.QuestionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	questions, err := s.questions.List(ctx, repository.QuestionFilter{
		CourseID: filter.CourseID,
		Mode:     filter.Mode,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewQuestionResponseSlice(questions), nil
}

// Get resolves a question configuration, serving from the Redis cache when
// possible. Configurations only change between sessions, so a short TTL is
// enough to keep submissions off the database hot path.
func (s *questionService) Get(ctx context.Context, id uint) (models.EssayQuestion, error) {
	cacheKey := questionCacheKey(id)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var question models.EssayQuestion
			if unmarshalErr := json.Unmarshal([]byte(cached), &question); unmarshalErr == nil {
				s.logger.Debug().Uint("question_id", id).Msg("question cache hit")
				return question, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read question cache")
		}
	}

	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.EssayQuestion{}, ErrQuestionNotFound
		}
		return models.EssayQuestion{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(question); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store question cache")
			}
		}
	}

	return question, nil
}

func (s *questionService) Create(ctx context.Context, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	question := models.EssayQuestion{
		CourseID:        payload.CourseID,
		Title:           payload.Title,
		PromptHTML:      s.sanitizer.Sanitize(payload.PromptHTML),
		AIInstructions:  payload.AIInstructions,
		Language:        defaultLanguage,
		MinWords:        defaultMinWords,
		MaxWords:        defaultMaxWords,
		MaxChars:        defaultMaxChars,
		MaxAttempts:     defaultMaxAttempts,
		Mode:            models.ModePractice,
		BackendURL:      payload.BackendURL,
		ScaleMin:        0,
		ScaleMax:        defaultScaleMax,
		Weight:          defaultWeight,
		ShowScoreInExam: true,
	}

	if payload.Language != "" {
		question.Language = payload.Language
	}
	if payload.Mode != "" {
		question.Mode = payload.Mode
	}
	if payload.MinWords != nil {
		question.MinWords = *payload.MinWords
	}
	if payload.MaxWords != nil {
		question.MaxWords = *payload.MaxWords
	}
	if payload.MaxChars != nil {
		question.MaxChars = *payload.MaxChars
	}
	if payload.MaxAttempts != nil {
		question.MaxAttempts = *payload.MaxAttempts
	}
	if payload.ScaleMin != nil {
		question.ScaleMin = *payload.ScaleMin
	}
	if payload.ScaleMax != nil {
		question.ScaleMax = *payload.ScaleMax
	}
	if payload.Weight != nil {
		question.Weight = *payload.Weight
	}
	if payload.ShowScoreInExam != nil {
		question.ShowScoreInExam = *payload.ShowScoreInExam
	}

	if err := s.questions.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.logger.Info().Uint("question_id", question.ID).Str("course_id", question.CourseID).Msg("question created")

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) Update(ctx context.Context, id uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	if payload.Title != nil {
		question.Title = *payload.Title
	}
	if payload.PromptHTML != nil {
		question.PromptHTML = s.sanitizer.Sanitize(*payload.PromptHTML)
	}
	if payload.AIInstructions != nil {
		question.AIInstructions = *payload.AIInstructions
	}
	if payload.Language != nil {
		question.Language = *payload.Language
	}
	if payload.MinWords != nil {
		question.MinWords = *payload.MinWords
	}
	if payload.MaxWords != nil {
		question.MaxWords = *payload.MaxWords
	}
	if payload.MaxChars != nil {
		question.MaxChars = *payload.MaxChars
	}
	if payload.MaxAttempts != nil {
		question.MaxAttempts = *payload.MaxAttempts
	}
	if payload.Mode != nil {
		question.Mode = *payload.Mode
	}
	if payload.BackendURL != nil {
		question.BackendURL = *payload.BackendURL
	}
	if payload.ScaleMin != nil {
		question.ScaleMin = *payload.ScaleMin
	}
	if payload.ScaleMax != nil {
		question.ScaleMax = *payload.ScaleMax
	}
	if payload.Weight != nil {
		question.Weight = *payload.Weight
	}
	if payload.ShowScoreInExam != nil {
		question.ShowScoreInExam = *payload.ShowScoreInExam
	}

	if err := s.questions.Update(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.invalidate(ctx, id)
	s.logger.Info().Uint("question_id", question.ID).Msg("question updated")

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.questions.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	if err := s.questions.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.logger.Info().Uint("question_id", id).Msg("question deleted")

	return nil
}

func (s *questionService) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, questionCacheKey(id)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate question cache")
	}
}

func questionCacheKey(id uint) string {
	return fmt.Sprintf("question:config:%d", id)
}
