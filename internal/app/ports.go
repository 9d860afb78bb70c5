package app

import (
	"context"

	"alumni-quiz-proctor/internal/domain"
)

// JobSource loads job posts (the backend, usually behind a cache).
type JobSource interface {
	GetJob(ctx context.Context, token, jobID string) (domain.Job, error)
}

// QuestionBank samples questions tagged with skill categories.
type QuestionBank interface {
	SampleQuestions(ctx context.Context, token string, categories []string, limit int) ([]domain.Question, error)
}

// ResultSink persists the outcome of a session.
type ResultSink interface {
	SubmitResult(ctx context.Context, token string, payload domain.SubmissionPayload) error
}

// TokenStore is the per-tab session token storage (in-memory, Redis, etc).
type TokenStore interface {
	Get(ctx context.Context, tabID string) (string, bool, error)
	Set(ctx context.Context, tabID, token string) error
	Clear(ctx context.Context, tabID string) error
}

// SessionRegistry tracks sessions that are currently active, keyed by session token.
type SessionRegistry interface {
	Register(token string, session *Session)
	Get(token string) (*Session, bool)
	Delete(token string)
	List() []*Session
}

// AttemptLedger remembers successful submissions to enforce a single attempt per job.
type AttemptLedger interface {
	Record(ctx context.Context, attempt domain.Attempt) error
	Find(ctx context.Context, userID, jobID string) (domain.Attempt, bool, error)
}

// AttemptLocks reserves a learner's attempt at a job from start until it ends,
// so a second view cannot run a parallel attempt.
type AttemptLocks interface {
	Acquire(ctx context.Context, userID, jobID, owner string) (bool, error)
	Release(ctx context.Context, userID, jobID, owner string) error
}

// Toast is a transient notice shown by the browser.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

// View is the browser-side presentation a session drives. Implementations must
// not call back into the session.
type View interface {
	Render(Snapshot)
	Countdown(secondsLeft int)
	RequestFullscreen()
	ExitFullscreen()
	Navigate(path string, replace bool)
	Toast(Toast)
	ShowResults(domain.Results)
}

const (
	// ReferralsPath is where learners land after leaving a quiz.
	ReferralsPath = "/referrals"
)

// QuizPath is the pre-consent route, or the session route when sessionID is set.
func QuizPath(jobID, sessionID string) string {
	if sessionID == "" {
		return "/quiz/" + jobID
	}
	return "/quiz/" + jobID + "/" + sessionID
}

var (
	toastInvalidSession = Toast{
		Title:       "Invalid Quiz Session",
		Description: "You cannot access this quiz without a valid session token.",
		Variant:     "destructive",
	}
	toastDisqualified = Toast{
		Title:       "Quiz Disqualified",
		Description: "You were disqualified for leaving the fullscreen quiz window or reloading the page.",
		Variant:     "destructive",
	}
	toastAlreadyAttempted = Toast{
		Title:       "Quiz Already Taken",
		Description: "You have already completed the assessment for this job.",
		Variant:     "destructive",
	}
	toastAttemptInProgress = Toast{
		Title:       "Quiz In Progress",
		Description: "This assessment is already open in another window.",
		Variant:     "destructive",
	}
)

func toastSubmissionFailed(err error) Toast {
	return Toast{
		Title:       "Quiz Submission Failed",
		Description: err.Error(),
		Variant:     "destructive",
	}
}
