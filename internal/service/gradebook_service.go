package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/essayq-go-api/internal/models"
	"github.com/noah-isme/essayq-go-api/internal/observability"
	"github.com/noah-isme/essayq-go-api/internal/repository"
)

// GradeEvent is published to the gradebook for every successful scoring call.
type GradeEvent struct {
	QuestionID uint      `json:"question_id"`
	StudentID  uint      `json:"student_id"`
	Value      float64   `json:"value"`
	MaxValue   float64   `json:"max_value"`
	SentAt     time.Time `json:"sent_at"`
}

// GradePublisher is the gradebook sink: it accepts a grade value together
// with the maximum possible score.
type GradePublisher interface {
	Publish(ctx context.Context, event GradeEvent) error
}

type gradebookService struct {
	grades       repository.GradeRepository
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	now          func() time.Time
}

// NewGradebookService builds the gradebook sink. The Redis and NATS
// connections are optional; persistence to the grade table always happens.
func NewGradebookService(grades repository.GradeRepository, redisClient *redis.Client, channel string, natsConn *nats.Conn, logger zerolog.Logger) GradePublisher {
	subject := ""
	if channel != "" {
		subject = strings.ReplaceAll(channel, ":", ".")
	}

	return &gradebookService{
		grades:       grades,
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "gradebook_service").Logger(),
		now:          time.Now,
	}
}

func (s *gradebookService) Publish(ctx context.Context, event GradeEvent) error {
	entry := models.GradeEntry{
		QuestionID: event.QuestionID,
		StudentID:  event.StudentID,
		Value:      event.Value,
		MaxValue:   event.MaxValue,
	}

	if err := s.grades.Create(ctx, &entry); err != nil {
		return err
	}

	event.SentAt = s.now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish grade event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish grade event to nats")
		}
	}

	observability.GradesPublished().Inc()

	s.logger.Info().
		Uint("question_id", event.QuestionID).
		Uint("student_id", event.StudentID).
		Float64("value", event.Value).
		Float64("max_value", event.MaxValue).
		Msg("grade published")

	return nil
}
