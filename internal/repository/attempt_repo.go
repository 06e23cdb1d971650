package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/essayq-go-api/internal/models"
)

// AttemptRepository defines data operations for per-student attempt state.
type AttemptRepository interface {
	GetByQuestionAndStudent(ctx context.Context, questionID, studentID uint) (models.AttemptState, error)
	Save(ctx context.Context, state *models.AttemptState) error
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates the repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) GetByQuestionAndStudent(ctx context.Context, questionID, studentID uint) (models.AttemptState, error) {
	var state models.AttemptState
	if err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Where("student_id = ?", studentID).
		First(&state).Error; err != nil {
		return models.AttemptState{}, err
	}

	return state, nil
}

func (r *attemptRepository) Save(ctx context.Context, state *models.AttemptState) error {
	return r.db.WithContext(ctx).Save(state).Error
}
