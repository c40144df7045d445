package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/internmatch/matcher/internal/models"
	"github.com/internmatch/matcher/internal/repositories"
)

// DefaultThreshold is the minimum overall score a pair needs to be matched.
const DefaultThreshold = 0.3

var ErrStudentNotFound = errors.New("student not found")

// GenerationReport describes one generation run for a single student.
type GenerationReport struct {
	StudentID       uuid.UUID      `json:"student_id"`
	Considered      int            `json:"considered"`
	SkippedFull     int            `json:"skipped_full"`
	SkippedExisting int            `json:"skipped_existing"`
	BelowThreshold  int            `json:"below_threshold"`
	Duplicates      int            `json:"duplicates"`
	Created         int            `json:"created"`
	Matches         []models.Match `json:"matches"`
}

// BulkReport describes a generation sweep over every student.
type BulkReport struct {
	Students int         `json:"students"`
	Matches  int         `json:"matches"`
	Failed   []uuid.UUID `json:"failed"`
}

// MatchingService generates, lists and clears matches.
//
// The error returning methods (Generate, GenerateAll, Clear) report failures
// to operators. GenerateMatchesForStudent, GenerateAllMatches and
// ClearMatchesForStudent never fail: they log and return an empty result.
type MatchingService interface {
	Generate(ctx context.Context, studentID uuid.UUID) (*GenerationReport, error)
	GenerateAll(ctx context.Context) (*BulkReport, error)
	Clear(ctx context.Context, studentID uuid.UUID) (int64, error)
	Regenerate(ctx context.Context, studentID uuid.UUID) (*GenerationReport, error)
	ListMatches(ctx context.Context, studentID uuid.UUID) ([]models.Match, error)

	GenerateMatchesForStudent(ctx context.Context, studentID uuid.UUID) []models.Match
	GenerateAllMatches(ctx context.Context) int
	ClearMatchesForStudent(ctx context.Context, studentID uuid.UUID)
}

type matchingService struct {
	studentRepo    repositories.StudentRepository
	internshipRepo repositories.InternshipRepository
	matchRepo      repositories.MatchRepository
	scorer         Scorer
	cache          MatchCache
	threshold      float64
	log            *zap.Logger

	// runs collapses concurrent Generate calls for the same student into one.
	runs singleflight.Group
	// locks serializes every operation that reads or writes one student's
	// matches.
	locks studentLocks
}

func NewMatchingService(
	studentRepo repositories.StudentRepository,
	internshipRepo repositories.InternshipRepository,
	matchRepo repositories.MatchRepository,
	scorer Scorer,
	cache MatchCache,
	threshold float64,
	log *zap.Logger,
) MatchingService {
	if cache == nil {
		cache = NoopMatchCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &matchingService{
		studentRepo:    studentRepo,
		internshipRepo: internshipRepo,
		matchRepo:      matchRepo,
		scorer:         scorer,
		cache:          cache,
		threshold:      threshold,
		log:            log,
	}
}

// Generate scores every open, not yet matched posting for the student and
// persists the pairs reaching the threshold in one batch. Existing matches
// are never rescored or overwritten.
//
// Concurrent callers share one run, which ignores caller cancellation. A
// cancelled caller stops waiting and the run still completes.
func (s *matchingService) Generate(ctx context.Context, studentID uuid.UUID) (*GenerationReport, error) {
	runCtx := context.WithoutCancel(ctx)
	ch := s.runs.DoChan("generate:"+studentID.String(), func() (interface{}, error) {
		unlock, err := s.locks.acquire(runCtx, studentID)
		if err != nil {
			return nil, err
		}
		defer unlock()
		return s.generate(runCtx, studentID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*GenerationReport), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *matchingService) generate(ctx context.Context, studentID uuid.UUID) (report *GenerationReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			report, err = nil, fmt.Errorf("match generation panicked: %v", r)
		}
	}()

	student, err := s.studentRepo.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
		}
		return nil, err
	}

	internships, err := s.internshipRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.matchRepo.MatchedInternshipIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}

	report = &GenerationReport{StudentID: studentID, Matches: []models.Match{}}
	var candidates []models.Match

	for i := range internships {
		internship := &internships[i]
		report.Considered++

		if !internship.HasCapacity() {
			report.SkippedFull++
			continue
		}
		if _, ok := existing[internship.ID]; ok {
			report.SkippedExisting++
			continue
		}

		scores := s.scorer.Score(student, internship)
		if !s.passes(scores.Overall) {
			report.BelowThreshold++
			continue
		}

		candidates = append(candidates, models.Match{
			StudentID:              studentID,
			InternshipID:           internship.ID,
			OverallScore:           scores.Overall,
			SkillsScore:            scores.Skills,
			LocationScore:          scores.Location,
			AcademicScore:          scores.Academic,
			AffirmativeActionScore: scores.Affirmative,
			SectorScore:            scores.Sector,
		})
	}

	created, err := s.matchRepo.CreateBatch(ctx, candidates)
	if err != nil {
		return nil, err
	}

	report.Duplicates = len(candidates) - len(created)
	report.Created = len(created)
	report.Matches = RankMatches(created)

	if report.Created > 0 {
		s.cache.Invalidate(ctx, studentID)
	}

	s.log.Info("generated matches",
		zap.Stringer("student_id", studentID),
		zap.Int("considered", report.Considered),
		zap.Int("created", report.Created),
		zap.Int("skipped_full", report.SkippedFull),
		zap.Int("skipped_existing", report.SkippedExisting),
		zap.Int("below_threshold", report.BelowThreshold),
		zap.Int("duplicates", report.Duplicates),
	)

	return report, nil
}

func (s *matchingService) passes(overall float64) bool {
	return overall >= s.threshold
}

// RankMatches sorts by overall score, highest first. Equal scores keep
// their input order.
func RankMatches(matches []models.Match) []models.Match {
	ranked := make([]models.Match, len(matches))
	copy(ranked, matches)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OverallScore > ranked[j].OverallScore
	})
	return ranked
}

// GenerateAll runs Generate for every student in turn. A failing student is
// recorded in the report and does not stop the sweep.
func (s *matchingService) GenerateAll(ctx context.Context) (*BulkReport, error) {
	students, err := s.studentRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}

	report := &BulkReport{Failed: []uuid.UUID{}}
	for _, student := range students {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Students++
		run, err := s.Generate(ctx, student.ID)
		if err != nil {
			s.log.Error("match generation failed",
				zap.Stringer("student_id", student.ID),
				zap.Error(err),
			)
			report.Failed = append(report.Failed, student.ID)
			continue
		}
		report.Matches += run.Created
	}

	s.log.Info("bulk match generation finished",
		zap.Int("students", report.Students),
		zap.Int("matches", report.Matches),
		zap.Int("failed", len(report.Failed)),
	)

	return report, nil
}

func (s *matchingService) Clear(ctx context.Context, studentID uuid.UUID) (int64, error) {
	unlock, err := s.locks.acquire(ctx, studentID)
	if err != nil {
		return 0, err
	}
	defer unlock()
	return s.clear(ctx, studentID)
}

func (s *matchingService) clear(ctx context.Context, studentID uuid.UUID) (int64, error) {
	deleted, err := s.matchRepo.DeleteByStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}

	s.cache.Invalidate(ctx, studentID)
	s.log.Info("cleared matches", zap.Stringer("student_id", studentID), zap.Int64("count", deleted))
	return deleted, nil
}

// Regenerate clears the student's matches and generates them again, for
// use after a material profile change. Both steps run under the student's
// lock, so no generation started before the clear can answer for it.
func (s *matchingService) Regenerate(ctx context.Context, studentID uuid.UUID) (*GenerationReport, error) {
	unlock, err := s.locks.acquire(ctx, studentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	runCtx := context.WithoutCancel(ctx)
	if _, err := s.clear(runCtx, studentID); err != nil {
		return nil, err
	}
	return s.generate(runCtx, studentID)
}

func (s *matchingService) ListMatches(ctx context.Context, studentID uuid.UUID) ([]models.Match, error) {
	if matches, ok := s.cache.Get(ctx, studentID); ok {
		return matches, nil
	}

	matches, err := s.matchRepo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, studentID, matches)
	return matches, nil
}

func (s *matchingService) GenerateMatchesForStudent(ctx context.Context, studentID uuid.UUID) []models.Match {
	report, err := s.Generate(ctx, studentID)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			s.log.Warn("student not found", zap.Stringer("student_id", studentID))
		} else {
			s.log.Error("match generation failed", zap.Stringer("student_id", studentID), zap.Error(err))
		}
		return []models.Match{}
	}
	return report.Matches
}

func (s *matchingService) GenerateAllMatches(ctx context.Context) int {
	report, err := s.GenerateAll(ctx)
	if err != nil {
		s.log.Error("bulk match generation failed", zap.Error(err))
		return 0
	}
	return report.Matches
}

func (s *matchingService) ClearMatchesForStudent(ctx context.Context, studentID uuid.UUID) {
	if _, err := s.Clear(ctx, studentID); err != nil {
		s.log.Error("failed to clear matches", zap.Stringer("student_id", studentID), zap.Error(err))
	}
}
