package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// studentLocks hands out one mutual exclusion slot per student. An entry is
// dropped once nobody holds or waits on it.
type studentLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*studentLock
}

type studentLock struct {
	slot chan struct{}
	refs int
}

// acquire blocks until the student's slot is free or ctx is done. The
// returned func releases the slot.
func (l *studentLocks) acquire(ctx context.Context, studentID uuid.UUID) (func(), error) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*studentLock)
	}
	lock, ok := l.locks[studentID]
	if !ok {
		lock = &studentLock{slot: make(chan struct{}, 1)}
		l.locks[studentID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.slot <- struct{}{}:
	case <-ctx.Done():
		l.forget(studentID, lock)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lock.slot
			l.forget(studentID, lock)
		})
	}, nil
}

func (l *studentLocks) forget(studentID uuid.UUID, lock *studentLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, studentID)
	}
}
