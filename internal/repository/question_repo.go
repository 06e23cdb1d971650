package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/essayq-go-api/internal/models"
)

// QuestionFilter allows narrowing question queries.
type QuestionFilter struct {
	CourseID *string
	Mode     *string
}

// QuestionRepository defines data operations for essay questions.
type QuestionRepository interface {
	List(ctx context.Context, filter QuestionFilter) ([]models.EssayQuestion, error)
	GetByID(ctx context.Context, id uint) (models.EssayQuestion, error)
	Create(ctx context.Context, question *models.EssayQuestion) error
	Update(ctx context.Context, question *models.EssayQuestion) error
	Delete(ctx context.Context, id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates the repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) List(ctx context.Context, filter QuestionFilter) ([]models.EssayQuestion, error) {
	query := r.db.WithContext(ctx).Model(&models.EssayQuestion{})

	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}

	if filter.Mode != nil {
		query = query.Where("mode = ?", *filter.Mode)
	}

	var questions []models.EssayQuestion
	if err := query.Order("created_at DESC").Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.EssayQuestion, error) {
	var question models.EssayQuestion
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return models.EssayQuestion{}, err
	}

	return question, nil
}

func (r *questionRepository) Create(ctx context.Context, question *models.EssayQuestion) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) Update(ctx context.Context, question *models.EssayQuestion) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.EssayQuestion{}, id).Error
}
