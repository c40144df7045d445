package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Match is a scored pairing between one student and one internship. At most
// one row exists per (student_id, internship_id).
type Match struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_matches_student_internship,priority:1" json:"student_id"`
	InternshipID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_matches_student_internship,priority:2" json:"internship_id"`
	OverallScore           float64   `gorm:"not null" json:"overall_score"`
	SkillsScore            float64   `gorm:"not null" json:"skills_score"`
	LocationScore          float64   `gorm:"not null" json:"location_score"`
	AcademicScore          float64   `gorm:"not null" json:"academic_score"`
	AffirmativeActionScore float64   `gorm:"not null" json:"affirmative_action_score"`
	SectorScore            float64   `gorm:"not null" json:"sector_score"`
	CreatedAt              time.Time `json:"created_at"`
}

func (Match) TableName() string {
	return "matches"
}

func (m *Match) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
