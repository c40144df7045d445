package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Internship struct {
	ID                     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID              uuid.UUID      `gorm:"type:uuid;index" json:"company_id"`
	Title                  string         `gorm:"type:text" json:"title"`
	RequiredSkills         string         `gorm:"type:text" json:"required_skills"`
	Location               string         `gorm:"type:text" json:"location"`
	MinCGPA                float64        `gorm:"column:min_cgpa" json:"min_cgpa"`
	PreferredCourse        string         `gorm:"type:text" json:"preferred_course"`
	YearOfStudyRequirement string         `gorm:"type:text" json:"year_of_study_requirement"`
	TotalPositions         int            `gorm:"not null" json:"total_positions"`
	FilledPositions        int            `gorm:"not null;default:0" json:"filled_positions"`
	IsActive               bool           `gorm:"not null;index" json:"is_active"`
	RuralQuota             int            `gorm:"not null;default:0" json:"rural_quota"`
	SCQuota                int            `gorm:"column:sc_quota;not null;default:0" json:"sc_quota"`
	STQuota                int            `gorm:"column:st_quota;not null;default:0" json:"st_quota"`
	OBCQuota               int            `gorm:"column:obc_quota;not null;default:0" json:"obc_quota"`
	CategoryQuotas         map[string]int `gorm:"type:text;serializer:json" json:"category_quotas,omitempty"`
	Sector                 string         `gorm:"type:text" json:"sector"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

func (Internship) TableName() string {
	return "internships"
}

func (i *Internship) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// HasCapacity reports whether at least one position is still open.
func (i *Internship) HasCapacity() bool {
	return i.FilledPositions < i.TotalPositions
}

// QuotaFor returns the reserved positions for a social category. Categories
// without a dedicated column are looked up in CategoryQuotas.
func (i *Internship) QuotaFor(category string) int {
	key := strings.ToLower(strings.TrimSpace(category))
	switch key {
	case "":
		return 0
	case "sc":
		return i.SCQuota
	case "st":
		return i.STQuota
	case "obc":
		return i.OBCQuota
	case "rural":
		return i.RuralQuota
	}
	for k, v := range i.CategoryQuotas {
		if strings.ToLower(k) == key {
			return v
		}
	}
	return 0
}
