package booking

import (
	"context"
	"sync"
)

// Locker serializes the number-assign-and-insert critical section for one
// (department, date) partition. Without it two concurrent bookings for the
// same partition can be handed the same token number.
type Locker interface {
	WithPartition(ctx context.Context, dept Department, date Date, fn func(ctx context.Context) error) error
}

// mutexLocker is the in-process default: one lazily created mutex per
// partition. Sufficient for the single-instance deployment this core
// targets; multi-instance setups swap in the Redis locker.
type mutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMutexLocker() Locker {
	return &mutexLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *mutexLocker) WithPartition(ctx context.Context, dept Department, date Date, fn func(ctx context.Context) error) error {
	key := PartitionKey(dept, date)

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

// PartitionKey identifies a (department, date) numbering partition.
func PartitionKey(dept Department, date Date) string {
	return string(dept) + ":" + date.String()
}
