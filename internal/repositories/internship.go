package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/internmatch/matcher/internal/models"
)

type InternshipRepository interface {
	Create(ctx context.Context, internship *models.Internship) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Internship, error)
	FindActive(ctx context.Context) ([]models.Internship, error)
}

type internshipRepository struct {
	db *gorm.DB
}

func NewInternshipRepository(db *gorm.DB) InternshipRepository {
	return &internshipRepository{db: db}
}

func (r *internshipRepository) Create(ctx context.Context, internship *models.Internship) error {
	if err := r.db.WithContext(ctx).Create(internship).Error; err != nil {
		return fmt.Errorf("failed to create internship: %w", err)
	}
	return nil
}

func (r *internshipRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Internship, error) {
	var internship models.Internship
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&internship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("internship %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find internship: %w", err)
	}
	return &internship, nil
}

// FindActive returns active postings in insertion order. The order is the
// tie-break for equal scores when ranking matches.
func (r *internshipRepository) FindActive(ctx context.Context) ([]models.Internship, error) {
	var internships []models.Internship
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&internships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active internships: %w", err)
	}
	return internships, nil
}
