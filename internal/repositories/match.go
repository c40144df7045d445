package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/internmatch/matcher/internal/models"
)

type MatchRepository interface {
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Match, error)
	MatchedInternshipIDs(ctx context.Context, studentID uuid.UUID) (map[uuid.UUID]struct{}, error)
	CreateBatch(ctx context.Context, matches []models.Match) ([]models.Match, error)
	DeleteByStudent(ctx context.Context, studentID uuid.UUID) (int64, error)
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("overall_score DESC, created_at ASC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find matches: %w", err)
	}
	return matches, nil
}

func (r *matchRepository) MatchedInternshipIDs(ctx context.Context, studentID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("student_id = ?", studentID).
		Pluck("internship_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load matched internships: %w", err)
	}

	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// CreateBatch inserts all matches in one transaction and returns the rows
// that were actually written. Rows rejected by the (student_id,
// internship_id) unique index are skipped; any other failure rolls back the
// whole batch.
func (r *matchRepository) CreateBatch(ctx context.Context, matches []models.Match) ([]models.Match, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	created := make([]models.Match, 0, len(matches))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range matches {
			m := matches[i]
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "student_id"}, {Name: "internship_id"}},
				DoNothing: true,
			}).Create(&m)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 1 {
				created = append(created, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}

	return created, nil
}

func (r *matchRepository) DeleteByStudent(ctx context.Context, studentID uuid.UUID) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("student_id = ?", studentID).Delete(&models.Match{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches: %w", err)
	}
	return deleted, nil
}
