package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/internmatch/matcher/internal/models"
	"github.com/internmatch/matcher/internal/repositories"
)

var errStorage = errors.New("storage unavailable")

// memoryStore implements the three repositories over slices. Matches are
// unique per (student, internship) like the real index.
type memoryStore struct {
	mu          sync.Mutex
	students    []models.Student
	internships []models.Internship
	matches     []models.Match

	failListStudents bool
	failBatchFor     map[uuid.UUID]bool
	failDelete       bool
	batchCalls       int

	// beforeMatchedIDs runs at the start of MatchedInternshipIDs, outside mu.
	beforeMatchedIDs func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{failBatchFor: map[uuid.UUID]bool{}}
}

func (m *memoryStore) addStudent(s models.Student) models.Student {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.students = append(m.students, s)
	return s
}

func (m *memoryStore) addInternship(i models.Internship) models.Internship {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.TotalPositions == 0 {
		i.TotalPositions = 1
	}
	m.internships = append(m.internships, i)
	return i
}

func (m *memoryStore) countFor(studentID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, match := range m.matches {
		if match.StudentID == studentID {
			n++
		}
	}
	return n
}

// StudentRepository

func (m *memoryStore) Create(_ context.Context, s *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	*s = m.addStudent(*s)
	return nil
}

func (m *memoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.students {
		if m.students[i].ID == id {
			s := m.students[i]
			return &s, nil
		}
	}
	return nil, fmt.Errorf("student %s: %w", id, repositories.ErrNotFound)
}

func (m *memoryStore) FindAll(context.Context) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failListStudents {
		return nil, errStorage
	}
	return append([]models.Student(nil), m.students...), nil
}

// InternshipRepository, exposed through internshipView to avoid method clashes.

type internshipView struct{ *memoryStore }

func (v internshipView) Create(_ context.Context, i *models.Internship) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	*i = v.addInternship(*i)
	return nil
}

func (v internshipView) FindByID(_ context.Context, id uuid.UUID) (*models.Internship, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.internships {
		if v.internships[i].ID == id {
			in := v.internships[i]
			return &in, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (v internshipView) FindActive(context.Context) ([]models.Internship, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var active []models.Internship
	for _, in := range v.internships {
		if in.IsActive {
			active = append(active, in)
		}
	}
	return active, nil
}

// MatchRepository

func (m *memoryStore) FindByStudent(_ context.Context, studentID uuid.UUID) ([]models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Match
	for _, match := range m.matches {
		if match.StudentID == studentID {
			out = append(out, match)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OverallScore > out[j].OverallScore })
	return out, nil
}

func (m *memoryStore) existsLocked(studentID, internshipID uuid.UUID) bool {
	for _, match := range m.matches {
		if match.StudentID == studentID && match.InternshipID == internshipID {
			return true
		}
	}
	return false
}

func (m *memoryStore) MatchedInternshipIDs(_ context.Context, studentID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	if m.beforeMatchedIDs != nil {
		m.beforeMatchedIDs()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set := map[uuid.UUID]struct{}{}
	for _, match := range m.matches {
		if match.StudentID == studentID {
			set[match.InternshipID] = struct{}{}
		}
	}
	return set, nil
}

func (m *memoryStore) CreateBatch(ctx context.Context, batch []models.Match) ([]models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	for _, match := range batch {
		if m.failBatchFor[match.StudentID] {
			return nil, errStorage
		}
	}

	var created []models.Match
	for _, match := range batch {
		if m.existsLocked(match.StudentID, match.InternshipID) {
			continue
		}
		match.ID = uuid.New()
		m.matches = append(m.matches, match)
		created = append(created, match)
	}
	return created, nil
}

func (m *memoryStore) DeleteByStudent(_ context.Context, studentID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return 0, errStorage
	}
	kept := m.matches[:0]
	var deleted int64
	for _, match := range m.matches {
		if match.StudentID == studentID {
			deleted++
			continue
		}
		kept = append(kept, match)
	}
	m.matches = kept
	return deleted, nil
}

// fixedScorer returns a preset overall score per internship.
type fixedScorer struct {
	overall map[uuid.UUID]float64
}

func (f fixedScorer) Score(_ *models.Student, internship *models.Internship) ScoreBreakdown {
	v := f.overall[internship.ID]
	return ScoreBreakdown{Skills: v, Location: v, Academic: v, Affirmative: v, Sector: v, Overall: v}
}

// recordingCache is an in-memory MatchCache.
type recordingCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID][]models.Match
	invalidated int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[uuid.UUID][]models.Match{}}
}

func (c *recordingCache) Get(_ context.Context, id uuid.UUID) ([]models.Match, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[id]
	return m, ok
}

func (c *recordingCache) Set(_ context.Context, id uuid.UUID, matches []models.Match) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = matches
}

func (c *recordingCache) Invalidate(_ context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.invalidated++
}
