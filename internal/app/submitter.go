package app

import (
	"context"
	"fmt"
	"time"

	"alumni-quiz-proctor/internal/domain"
	"alumni-quiz-proctor/internal/metrics"
	"github.com/rs/zerolog"
)

// Submitter posts a session's outcome and tears the tab's session down whether
// or not the post succeeds. It never retries.
type Submitter struct {
	sink    ResultSink
	guard   *Guard
	ledger  AttemptLedger
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

func NewSubmitter(sink ResultSink, guard *Guard, ledger AttemptLedger, timeout time.Duration, log zerolog.Logger) *Submitter {
	return &Submitter{
		sink:    sink,
		guard:   guard,
		ledger:  ledger,
		timeout: timeout,
		now:     time.Now,
		log:     log.With().Str("component", "result_submitter").Logger(),
	}
}

// Submit runs detached from ctx's cancellation so a dropped connection cannot
// abort a submission that is already under way.
func (s *Submitter) Submit(ctx context.Context, learner domain.Learner, tabID string, payload domain.SubmissionPayload) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	err := s.sink.SubmitResult(ctx, learner.Token, payload)
	metrics.Submission(string(payload.Status), err)

	if rerr := s.guard.Release(ctx, tabID); rerr != nil {
		s.log.Warn().Err(rerr).Str("tab_id", tabID).Msg("Failed to clear session token")
	}

	if err != nil {
		s.log.Error().Err(err).
			Str("user_id", payload.UserID).
			Str("job_id", payload.JobID).
			Str("status", string(payload.Status)).
			Msg("Result submission failed")
		return fmt.Errorf("submit quiz result: %w", err)
	}

	attempt := domain.Attempt{
		UserID:      payload.UserID,
		JobID:       payload.JobID,
		Status:      payload.Status,
		Score:       payload.Score,
		Passed:      payload.Passed,
		SubmittedAt: s.now().UTC(),
	}
	if lerr := s.ledger.Record(ctx, attempt); lerr != nil {
		s.log.Warn().Err(lerr).Str("user_id", payload.UserID).Msg("Failed to record attempt")
	}

	s.log.Info().
		Str("user_id", payload.UserID).
		Str("job_id", payload.JobID).
		Str("status", string(payload.Status)).
		Int("score", payload.Score).
		Bool("passed", payload.Passed).
		Msg("Result submitted")
	return nil
}
