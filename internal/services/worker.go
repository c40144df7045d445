package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueRegeneration(studentID uuid.UUID) bool
}

type worker struct {
	matching        MatchingService
	jobQueue        chan uuid.UUID
	concurrency     int
	refreshInterval time.Duration
	log             *zap.Logger
	wg              sync.WaitGroup
	stopChan        chan struct{}
	stopOnce        sync.Once
}

// NewWorker builds a pool that regenerates matches for queued students. A
// positive refreshInterval also runs a periodic GenerateAll sweep so newly
// posted internships reach existing students.
func NewWorker(
	matching MatchingService,
	concurrency int,
	queueSize int,
	refreshInterval time.Duration,
	log *zap.Logger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 100
	}
	return &worker{
		matching:        matching,
		jobQueue:        make(chan uuid.UUID, queueSize),
		concurrency:     concurrency,
		refreshInterval: refreshInterval,
		log:             log,
		stopChan:        make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting regeneration worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	if w.refreshInterval > 0 {
		w.wg.Add(1)
		go w.refreshLoop(ctx)
	}
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping regeneration worker")
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("regeneration worker stopped")
	})
}

// EnqueueRegeneration implements Worker. It reports false when the worker is
// stopped or the queue is full.
func (w *worker) EnqueueRegeneration(studentID uuid.UUID) bool {
	select {
	case <-w.stopChan:
		w.log.Warn("worker stopped, cannot enqueue regeneration", zap.Stringer("student_id", studentID))
		return false
	default:
	}

	select {
	case w.jobQueue <- studentID:
		w.log.Debug("regeneration enqueued", zap.Stringer("student_id", studentID))
		return true
	default:
		w.log.Warn("regeneration queue full", zap.Stringer("student_id", studentID))
		return false
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case studentID := <-w.jobQueue:
			report, err := w.matching.Regenerate(ctx, studentID)
			if err != nil {
				w.log.Error("regeneration failed",
					zap.Int("worker", workerID),
					zap.Stringer("student_id", studentID),
					zap.Error(err),
				)
				continue
			}
			w.log.Info("regeneration completed",
				zap.Int("worker", workerID),
				zap.Stringer("student_id", studentID),
				zap.Int("created", report.Created),
			)
		}
	}
}

func (w *worker) refreshLoop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.matching.GenerateAll(ctx); err != nil {
				w.log.Warn("periodic match refresh failed", zap.Error(err))
			}
		}
	}
}
