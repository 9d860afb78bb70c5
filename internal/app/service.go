package app

import (
	"context"
	"fmt"
	"time"

	"alumni-quiz-proctor/internal/domain"
	"github.com/rs/zerolog"
)

// OpenRequest identifies the view being mounted: /quiz/{JobID} or, once a
// session exists, /quiz/{JobID}/{SessionID}.
type OpenRequest struct {
	Learner   domain.Learner
	TabID     string
	JobID     string
	SessionID string
}

// ProctorService opens quiz sessions and owns their shared collaborators.
type ProctorService struct {
	loader       *QuizLoader
	guard        *Guard
	submitter    *Submitter
	registry     SessionRegistry
	ledger       AttemptLedger
	locks        AttemptLocks
	tickInterval time.Duration
	log          zerolog.Logger
}

// Options tunes timing; zero values fall back to production defaults.
type Options struct {
	TickInterval  time.Duration
	SubmitTimeout time.Duration
}

// Dependencies groups the ports a ProctorService needs.
type Dependencies struct {
	Jobs     JobSource
	Bank     QuestionBank
	Results  ResultSink
	Tokens   TokenStore
	Registry SessionRegistry
	Ledger   AttemptLedger
	Locks    AttemptLocks
}

func NewProctorService(deps Dependencies, opts Options, log zerolog.Logger) *ProctorService {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = 15 * time.Second
	}
	guard := NewGuard(deps.Tokens)
	return &ProctorService{
		loader:       NewQuizLoader(deps.Jobs, deps.Bank),
		guard:        guard,
		submitter:    NewSubmitter(deps.Results, guard, deps.Ledger, opts.SubmitTimeout, log),
		registry:     deps.Registry,
		ledger:       deps.Ledger,
		locks:        deps.Locks,
		tickInterval: opts.TickInterval,
		log:          log.With().Str("component", "proctor").Logger(),
	}
}

// Open mounts a quiz view. A session id that does not match the tab's token,
// or that belongs to an attempt already running elsewhere, redirects the view
// to the referrals listing before anything is loaded. The returned session is
// in the Loading phase; call Load next.
func (s *ProctorService) Open(ctx context.Context, req OpenRequest, view View) (*Session, error) {
	if req.SessionID != "" {
		err := s.guard.Validate(ctx, req.TabID, req.SessionID)
		if err == nil {
			if _, live := s.registry.Get(req.SessionID); live {
				err = domain.ErrInvalidSession
			}
		}
		if err != nil {
			s.log.Warn().Err(err).Str("job_id", req.JobID).Str("tab_id", req.TabID).Msg("Rejected quiz session")
			view.Navigate(ReferralsPath, true)
			view.Toast(toastInvalidSession)
			return nil, err
		}
	}

	if req.Learner.Token == "" || req.Learner.ID == "" {
		return nil, domain.ErrUnauthenticated
	}

	if _, found, err := s.ledger.Find(ctx, req.Learner.ID, req.JobID); err != nil {
		return nil, fmt.Errorf("check previous attempts: %w", err)
	} else if found {
		view.Navigate(ReferralsPath, true)
		view.Toast(toastAlreadyAttempted)
		return nil, domain.ErrAlreadyAttempted
	}

	return newSession(s, req, view), nil
}

// Shutdown releases every live session without submitting it.
func (s *ProctorService) Shutdown() {
	for _, session := range s.registry.List() {
		session.Close()
	}
}
