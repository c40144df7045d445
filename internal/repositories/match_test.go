package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/internmatch/matcher/internal/models"
	"github.com/internmatch/matcher/internal/testutil"
)

func TestMatchRepositoryCreateBatchSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewMatchRepository(testutil.NewDB(t))

	studentID := uuid.New()
	first, second := uuid.New(), uuid.New()

	created, err := repo.CreateBatch(ctx, []models.Match{
		{StudentID: studentID, InternshipID: first, OverallScore: 0.5},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.NotEqual(t, uuid.Nil, created[0].ID)

	created, err = repo.CreateBatch(ctx, []models.Match{
		{StudentID: studentID, InternshipID: first, OverallScore: 0.9},
		{StudentID: studentID, InternshipID: second, OverallScore: 0.4},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, second, created[0].InternshipID)

	stored, err := repo.FindByStudent(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 0.5, stored[0].OverallScore, "existing match must not be overwritten")
	assert.Equal(t, 0.4, stored[1].OverallScore)
}

func TestMatchRepositoryCreateBatchRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewMatchRepository(db)

	calls := 0
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_second_insert", func(tx *gorm.DB) {
		if tx.Statement.Table != "matches" {
			return
		}
		calls++
		if calls == 2 {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	studentID := uuid.New()
	created, err := repo.CreateBatch(ctx, []models.Match{
		{StudentID: studentID, InternshipID: uuid.New(), OverallScore: 0.6},
		{StudentID: studentID, InternshipID: uuid.New(), OverallScore: 0.5},
		{StudentID: studentID, InternshipID: uuid.New(), OverallScore: 0.4},
	})
	require.Error(t, err)
	assert.Nil(t, created)

	var count int64
	require.NoError(t, db.Model(&models.Match{}).Count(&count).Error)
	assert.Zero(t, count, "no partial writes after rollback")
}

func TestMatchRepositoryDeleteByStudent(t *testing.T) {
	ctx := context.Background()
	repo := NewMatchRepository(testutil.NewDB(t))

	target, other := uuid.New(), uuid.New()
	var batch []models.Match
	for i := 0; i < 3; i++ {
		batch = append(batch, models.Match{StudentID: target, InternshipID: uuid.New(), OverallScore: 0.5})
	}
	batch = append(batch, models.Match{StudentID: other, InternshipID: uuid.New(), OverallScore: 0.5})
	_, err := repo.CreateBatch(ctx, batch)
	require.NoError(t, err)

	deleted, err := repo.DeleteByStudent(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	remaining, err := repo.FindByStudent(ctx, other)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	ids, err := repo.MatchedInternshipIDs(ctx, other)
	require.NoError(t, err)
	assert.Contains(t, ids, remaining[0].InternshipID)
}

func TestMatchRepositoryMatchedInternshipIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMatchRepository(testutil.NewDB(t))

	studentID, internshipID := uuid.New(), uuid.New()
	_, err := repo.CreateBatch(ctx, []models.Match{{StudentID: studentID, InternshipID: internshipID, OverallScore: 0.3}})
	require.NoError(t, err)

	ids, err := repo.MatchedInternshipIDs(ctx, studentID)
	require.NoError(t, err)
	assert.Contains(t, ids, internshipID)
	assert.Len(t, ids, 1)

	ids, err = repo.MatchedInternshipIDs(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
