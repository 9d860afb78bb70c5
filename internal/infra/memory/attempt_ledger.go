package memory

import (
	"context"
	"sync"

	"alumni-quiz-proctor/internal/domain"
)

// AttemptLedger is an in-memory implementation of app.AttemptLedger.
type AttemptLedger struct {
	mu       sync.RWMutex
	attempts map[string]domain.Attempt
}

func NewAttemptLedger() *AttemptLedger {
	return &AttemptLedger{attempts: make(map[string]domain.Attempt)}
}

// Record keeps the first attempt per learner and job.
func (l *AttemptLedger) Record(_ context.Context, attempt domain.Attempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := attempt.UserID + "|" + attempt.JobID
	if _, ok := l.attempts[key]; !ok {
		l.attempts[key] = attempt
	}
	return nil
}

func (l *AttemptLedger) Find(_ context.Context, userID, jobID string) (domain.Attempt, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	attempt, ok := l.attempts[userID+"|"+jobID]
	return attempt, ok, nil
}
