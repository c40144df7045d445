package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/internmatch/matcher/internal/models"
)

// Sub-score weights. They sum to 1.0.
const (
	WeightSkills      = 0.35
	WeightAcademic    = 0.25
	WeightLocation    = 0.20
	WeightSector      = 0.15
	WeightAffirmative = 0.05
)

const (
	defaultLocationScore = 0.5
	defaultSectorScore   = 0.5
	defaultCategory      = "general"
)

// ScoreBreakdown holds the five sub-scores and their weighted combination.
// Every value lies in [0, 1].
type ScoreBreakdown struct {
	Skills      float64 `json:"skills"`
	Location    float64 `json:"location"`
	Academic    float64 `json:"academic"`
	Affirmative float64 `json:"affirmative"`
	Sector      float64 `json:"sector"`
	Overall     float64 `json:"overall"`
}

type sectorGroup struct {
	category string
	keywords []string
}

var relatedSectors = []sectorGroup{
	{category: "technology", keywords: []string{"software", "it", "tech"}},
	{category: "finance", keywords: []string{"banking", "fintech"}},
	{category: "healthcare", keywords: []string{"medical", "pharma"}},
}

type Scorer interface {
	Score(student *models.Student, internship *models.Internship) ScoreBreakdown
}

// scorer is stateless; one instance is safe for concurrent use.
type scorer struct {
	similarity TextSimilarity
}

func NewScorer(similarity TextSimilarity) Scorer {
	return &scorer{similarity: similarity}
}

func (s *scorer) Score(student *models.Student, internship *models.Internship) ScoreBreakdown {
	b := ScoreBreakdown{
		Skills:      clamp01(s.similarity.Similarity(student.Skills(), internship.RequiredSkills)),
		Location:    LocationScore(student.PreferredLocations, student.CurrentLocation, internship.Location),
		Academic:    AcademicScore(student, internship),
		Affirmative: AffirmativeActionScore(student, internship),
		Sector:      SectorInterestScore(student.SectorInterests, internship.Sector),
	}
	b.Overall = Combine(b)
	return b
}

// Combine applies the fixed weights to the sub-scores.
func Combine(b ScoreBreakdown) float64 {
	overall := WeightSkills*b.Skills +
		WeightAcademic*b.Academic +
		WeightLocation*b.Location +
		WeightSector*b.Sector +
		WeightAffirmative*b.Affirmative
	return clamp01(overall)
}

// LocationScore adds independent bonuses for preferred location, current
// location and remote work, capped at 1.0.
func LocationScore(preferred, current, location string) float64 {
	location = strings.ToLower(strings.TrimSpace(location))
	if location == "" {
		return defaultLocationScore
	}

	score := 0.0

	for _, p := range splitTerms(preferred) {
		if strings.Contains(location, p) {
			score += 0.8
			break
		}
	}

	if c := strings.ToLower(strings.TrimSpace(current)); c != "" && strings.Contains(location, c) {
		score += 0.6
	}

	if strings.Contains(location, "remote") || strings.Contains(location, "work from home") {
		score += 0.7
	}

	return math.Min(score, 1.0)
}

// AcademicScore rates CGPA, course and year of study fit. A CGPA below the
// posting minimum costs 0.3; the result never drops below zero.
func AcademicScore(student *models.Student, internship *models.Internship) float64 {
	score := 0.0

	switch {
	case student.CGPA > 0 && internship.MinCGPA > 0:
		if student.CGPA >= internship.MinCGPA {
			score += math.Min(student.CGPA/internship.MinCGPA*0.4, 0.5)
		} else {
			score -= 0.3
		}
	case student.CGPA > 0:
		score += math.Min(student.CGPA/10*0.4, 0.4)
	}

	course := strings.ToLower(strings.TrimSpace(student.Course))
	preferred := strings.ToLower(internship.PreferredCourse)
	if course != "" && preferred != "" && strings.Contains(preferred, course) {
		score += 0.3
	}

	if yearMatches(student.YearOfStudy, internship.YearOfStudyRequirement) {
		score += 0.2
	}

	return clamp01(score)
}

func yearMatches(year int, requirement string) bool {
	req := strings.ToLower(strings.TrimSpace(requirement))
	if year <= 0 || req == "" {
		return false
	}

	switch {
	case strings.Contains(req, "any"), strings.Contains(req, strconv.Itoa(year)):
		return true
	case strings.Contains(req, "final"):
		return year >= 3
	case strings.Contains(req, "junior"):
		return year <= 2
	}
	return false
}

// AffirmativeActionScore rewards category quotas, rural or aspirational
// districts, non-participation in the government scheme and limited prior
// internship experience.
func AffirmativeActionScore(student *models.Student, internship *models.Internship) float64 {
	score := 0.0

	category := strings.ToLower(strings.TrimSpace(student.SocialCategory))
	if category != "" && category != defaultCategory && internship.QuotaFor(category) > 0 {
		score += 0.3
	}

	switch strings.ToLower(strings.TrimSpace(student.DistrictType)) {
	case "rural", "aspirational":
		if internship.RuralQuota > 0 {
			score += 0.25
		} else {
			score += 0.15
		}
	}

	if !student.PMSchemeParticipant {
		score += 0.1
	}

	if student.PreviousInternships <= 1 {
		score += 0.1
	}

	return math.Min(score, 1.0)
}

// SectorInterestScore compares the posting sector with the student's
// comma separated interests.
func SectorInterestScore(interests, sector string) float64 {
	terms := splitTerms(interests)
	sector = strings.ToLower(strings.TrimSpace(sector))
	if len(terms) == 0 || sector == "" {
		return defaultSectorScore
	}

	if containsTerm(terms, sector) {
		return 1.0
	}

	for _, group := range relatedSectors {
		if !containsTerm(terms, group.category) {
			continue
		}
		for _, kw := range group.keywords {
			if strings.Contains(sector, kw) {
				return 0.8
			}
		}
	}

	return 0.3
}

func splitTerms(text string) []string {
	var terms []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			terms = append(terms, part)
		}
	}
	return terms
}

func containsTerm(terms []string, term string) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
