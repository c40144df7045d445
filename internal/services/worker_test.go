package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/internmatch/matcher/internal/models"
)

func TestWorkerRegeneratesQueuedStudents(t *testing.T) {
	store := newMemoryStore()
	student := store.addStudent(models.Student{})
	a := store.addInternship(models.Internship{IsActive: true})
	svc := newTestService(store, fixedScorer{overall: map[uuid.UUID]float64{a.ID: 0.8}}, nil)

	w := NewWorker(svc, 2, 10, 0, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	require.True(t, w.EnqueueRegeneration(student.ID))

	assert.Eventually(t, func() bool {
		return store.countFor(student.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerRejectsAfterStop(t *testing.T) {
	svc := newTestService(newMemoryStore(), fixedScorer{}, nil)

	w := NewWorker(svc, 1, 1, 0, zap.NewNop())
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	assert.False(t, w.EnqueueRegeneration(uuid.New()))
}

func TestWorkerPeriodicRefresh(t *testing.T) {
	store := newMemoryStore()
	student := store.addStudent(models.Student{})
	a := store.addInternship(models.Internship{IsActive: true})
	svc := newTestService(store, fixedScorer{overall: map[uuid.UUID]float64{a.ID: 0.8}}, nil)

	w := NewWorker(svc, 1, 1, 20*time.Millisecond, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	assert.Eventually(t, func() bool {
		return store.countFor(student.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
