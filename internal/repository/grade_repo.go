package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/essayq-go-api/internal/models"
)

// GradeRepository defines data operations for gradebook entries.
type GradeRepository interface {
	Create(ctx context.Context, entry *models.GradeEntry) error
	ListByStudent(ctx context.Context, studentID uint) ([]models.GradeEntry, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository instantiates the repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) Create(ctx context.Context, entry *models.GradeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gradeRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.GradeEntry, error) {
	var entries []models.GradeEntry
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
