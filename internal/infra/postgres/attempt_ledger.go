package postgres

import (
	"context"
	"errors"
	"fmt"

	"alumni-quiz-proctor/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AttemptLedger persists one quiz attempt per learner and job.
type AttemptLedger struct {
	pool *pgxpool.Pool
}

func NewAttemptLedger(pool *pgxpool.Pool) *AttemptLedger {
	return &AttemptLedger{pool: pool}
}

// Record stores the attempt; a second attempt for the same learner and job is ignored.
func (l *AttemptLedger) Record(ctx context.Context, attempt domain.Attempt) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (user_id, job_id, status, score, passed, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, job_id) DO NOTHING`,
		attempt.UserID, attempt.JobID, string(attempt.Status), attempt.Score, attempt.Passed, attempt.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

func (l *AttemptLedger) Find(ctx context.Context, userID, jobID string) (domain.Attempt, bool, error) {
	attempt := domain.Attempt{UserID: userID, JobID: jobID}
	var status string
	err := l.pool.QueryRow(ctx, `
		SELECT status, score, passed, submitted_at
		FROM quiz_attempts WHERE user_id=$1 AND job_id=$2`,
		userID, jobID,
	).Scan(&status, &attempt.Score, &attempt.Passed, &attempt.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, false, nil
	}
	if err != nil {
		return domain.Attempt{}, false, fmt.Errorf("find attempt: %w", err)
	}
	attempt.Status = domain.Status(status)
	return attempt, true, nil
}
