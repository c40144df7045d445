package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Student is read-only input for the matching engine. Zero values of CGPA
// and YearOfStudy mean "not provided".
type Student struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string    `gorm:"type:text" json:"name"`
	TechnicalSkills     string    `gorm:"type:text" json:"technical_skills"`
	SoftSkills          string    `gorm:"type:text" json:"soft_skills"`
	PreferredLocations  string    `gorm:"type:text" json:"preferred_locations"`
	CurrentLocation     string    `gorm:"type:text" json:"current_location"`
	CGPA                float64   `gorm:"column:cgpa" json:"cgpa"`
	Course              string    `gorm:"type:text" json:"course"`
	YearOfStudy         int       `json:"year_of_study"`
	SocialCategory      string    `gorm:"type:text;default:'General'" json:"social_category"`
	DistrictType        string    `gorm:"type:text" json:"district_type"`
	PMSchemeParticipant bool      `gorm:"column:pm_scheme_participant;not null;default:false" json:"pm_scheme_participant"`
	PreviousInternships int       `gorm:"not null;default:0" json:"previous_internships"`
	SectorInterests     string    `gorm:"type:text" json:"sector_interests"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Student) TableName() string {
	return "students"
}

func (s *Student) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Skills joins technical and soft skills into one comma separated list.
func (s *Student) Skills() string {
	switch {
	case s.TechnicalSkills == "":
		return s.SoftSkills
	case s.SoftSkills == "":
		return s.TechnicalSkills
	}
	return s.TechnicalSkills + ", " + s.SoftSkills
}
