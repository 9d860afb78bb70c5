package memory

import (
	"context"
	"sync"
)

// AttemptLocks is an in-memory implementation of app.AttemptLocks.
type AttemptLocks struct {
	mu     sync.Mutex
	owners map[string]string
}

func NewAttemptLocks() *AttemptLocks {
	return &AttemptLocks{owners: make(map[string]string)}
}

func (l *AttemptLocks) Acquire(_ context.Context, userID, jobID, owner string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := userID + "|" + jobID
	if current, ok := l.owners[key]; ok && current != owner {
		return false, nil
	}
	l.owners[key] = owner
	return true, nil
}

// Release only drops a lock still held by owner.
func (l *AttemptLocks) Release(_ context.Context, userID, jobID, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := userID + "|" + jobID
	if l.owners[key] == owner {
		delete(l.owners, key)
	}
	return nil
}
