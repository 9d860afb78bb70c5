package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"alumni-quiz-proctor/internal/domain"
	"alumni-quiz-proctor/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Snapshot is everything the page needs to render the current phase.
type Snapshot struct {
	Phase        domain.Phase  `json:"phase"`
	JobID        string        `json:"jobId"`
	SessionID    string        `json:"sessionId,omitempty"`
	Quiz         *QuizSummary  `json:"quiz,omitempty"`
	Question     *QuestionView `json:"question,omitempty"`
	CurrentIndex int           `json:"currentIndex"`
	Total        int           `json:"total"`
	Progress     float64       `json:"progress"`
	Answered     int           `json:"answered"`
	TimeLeft     int           `json:"timeLeft"`
	Submitting   bool          `json:"submitting"`
	Error        *LoadError    `json:"error,omitempty"`
}

// QuizSummary is the header and rules-review information of a quiz.
type QuizSummary struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	JobTitle         string   `json:"jobTitle,omitempty"`
	JobSkills        []string `json:"jobSkills,omitempty"`
	QuestionCount    int      `json:"questionCount"`
	TimeLimitMinutes int      `json:"timeLimit"`
	PassingScore     int      `json:"passingScore"`
}

// QuestionView is a question as shown to the learner; it never carries the answer.
type QuestionView struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty,omitempty"`
	Category   string   `json:"category,omitempty"`
	Selected   *int     `json:"selected,omitempty"`
}

// LoadError is the blocking panel shown when no quiz could be prepared.
type LoadError struct {
	Kind    string `json:"kind"` // "error" offers retry/back, "empty" offers the listings
	Message string `json:"message"`
}

const (
	LoadErrorKindError = "error"
	LoadErrorKindEmpty = "empty"
)

// Session is one proctored attempt. Every mutation happens under mu; timer
// ticks, integrity signals and manual submission all end in terminate, which
// lets exactly one caller leave the active phase.
type Session struct {
	jobID   string
	tabID   string
	learner domain.Learner

	loader       *QuizLoader
	guard        *Guard
	submitter    *Submitter
	registry     SessionRegistry
	ledger       AttemptLedger
	locks        AttemptLocks
	owner        string
	tickInterval time.Duration
	log          zerolog.Logger
	monitor      *Monitor

	mu         sync.Mutex
	view       View
	phase      domain.Phase
	loading    bool
	starting   bool
	locked     bool
	loadErr    *LoadError
	quiz       domain.Quiz
	answers    domain.AnswerMap
	cursor     int
	timeLeft   int
	token      string
	fullscreen bool
	submitting bool
	closed     bool
	timer      *countdown
	baseCtx    context.Context
}

func newSession(svc *ProctorService, req OpenRequest, view View) *Session {
	s := &Session{
		jobID:        req.JobID,
		tabID:        req.TabID,
		learner:      req.Learner,
		loader:       svc.loader,
		guard:        svc.guard,
		submitter:    svc.submitter,
		registry:     svc.registry,
		ledger:       svc.ledger,
		locks:        svc.locks,
		owner:        uuid.NewString(),
		tickInterval: svc.tickInterval,
		log: svc.log.With().
			Str("job_id", req.JobID).
			Str("tab_id", req.TabID).
			Str("user_id", req.Learner.ID).
			Logger(),
		view:    view,
		phase:   domain.PhaseLoading,
		answers: domain.AnswerMap{},
		baseCtx: context.Background(),
	}
	s.monitor = NewMonitor(s.disqualify)
	return s
}

// Load fetches the quiz and moves the session to rules review. After a failed
// load the session stays in Loading so the page can retry.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != domain.PhaseLoading || s.loading || s.closed {
		s.mu.Unlock()
		return fmt.Errorf("%w: load in %s", domain.ErrInvalidTransition, s.phase)
	}
	s.loading = true
	s.loadErr = nil
	s.mu.Unlock()

	quiz, err := s.loader.Load(ctx, s.learner, s.jobID)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		kind := LoadErrorKindError
		if errors.Is(err, domain.ErrNoQuiz) {
			kind = LoadErrorKindEmpty
		}
		s.loadErr = &LoadError{Kind: kind, Message: err.Error()}
		s.mu.Unlock()
		metrics.LoadFailed(kind)
		s.log.Warn().Err(err).Str("kind", kind).Msg("Quiz load failed")
		s.render()
		return err
	}
	next, terr := s.phase.Apply(domain.TransitionLoaded)
	if terr != nil {
		s.mu.Unlock()
		return terr
	}
	s.phase = next
	s.quiz = quiz
	s.timeLeft = quiz.TimeLimitMinutes * 60
	s.mu.Unlock()

	s.log.Info().Int("questions", len(quiz.Questions)).Int("time_limit_min", quiz.TimeLimitMinutes).Msg("Quiz loaded")
	s.render()
	return nil
}

// Start is the only way into the active phase and requires the learner's
// consent to the rules. The learner must have no recorded attempt and no
// attempt running in another view. It returns the minted session token.
func (s *Session) Start(ctx context.Context, agreed bool) (string, error) {
	if !agreed {
		return "", domain.ErrConsentRequired
	}

	s.mu.Lock()
	if err := s.startableLocked(); err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.starting = true
	view := s.view
	s.mu.Unlock()

	token, err := s.reserve(ctx, view)

	s.mu.Lock()
	s.starting = false
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	// Close may have run while the token was being minted.
	if err := s.startableLocked(); err != nil {
		s.mu.Unlock()
		s.unreserve(token)
		return "", err
	}
	next, _ := s.phase.Apply(domain.TransitionStart)
	s.phase = next
	s.token = token
	s.locked = true
	s.fullscreen = true
	s.baseCtx = context.WithoutCancel(ctx)
	s.monitor.Arm()
	s.timer = startCountdown(s.tickInterval, s.Tick)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.registry.Register(token, s)
	metrics.SessionStarted()
	s.log.Info().Str("session_id", token).Msg("Quiz started")

	view.RequestFullscreen()
	view.Navigate(QuizPath(s.jobID, token), true)
	view.Render(snap)
	return token, nil
}

func (s *Session) startableLocked() error {
	if s.closed {
		return fmt.Errorf("%w: session closed", domain.ErrInvalidTransition)
	}
	if s.starting {
		return fmt.Errorf("%w: start already in progress", domain.ErrInvalidTransition)
	}
	_, err := s.phase.Apply(domain.TransitionStart)
	return err
}

// reserve takes the attempt lock, checks the ledger and mints the tab token.
// It runs without mu held. The ledger is read under the lock because a
// finished attempt is recorded before its lock is released.
func (s *Session) reserve(ctx context.Context, view View) (string, error) {
	acquired, err := s.locks.Acquire(ctx, s.learner.ID, s.jobID, s.owner)
	if err != nil {
		return "", fmt.Errorf("reserve attempt: %w", err)
	}
	if !acquired {
		view.Toast(toastAttemptInProgress)
		return "", domain.ErrAttemptInProgress
	}

	if _, found, err := s.ledger.Find(ctx, s.learner.ID, s.jobID); err != nil {
		s.releaseLock()
		return "", fmt.Errorf("check previous attempts: %w", err)
	} else if found {
		s.releaseLock()
		view.Navigate(ReferralsPath, true)
		view.Toast(toastAlreadyAttempted)
		return "", domain.ErrAlreadyAttempted
	}

	token, err := s.guard.Mint(ctx, s.tabID)
	if err != nil {
		s.releaseLock()
		return "", err
	}
	return token, nil
}

// unreserve undoes reserve when the session changed while it ran.
func (s *Session) unreserve(token string) {
	if err := s.guard.Release(context.Background(), s.tabID); err != nil {
		s.log.Warn().Err(err).Str("session_id", token).Msg("Failed to clear session token")
	}
	s.releaseLock()
}

func (s *Session) releaseLock() {
	if err := s.locks.Release(context.Background(), s.learner.ID, s.jobID, s.owner); err != nil {
		s.log.Warn().Err(err).Msg("Failed to release attempt lock")
	}
}

// SelectAnswer overwrites the learner's choice for a question.
func (s *Session) SelectAnswer(questionID string, option int) error {
	if option < 0 || option > 3 {
		return domain.ErrOptionOutOfRange
	}
	s.mu.Lock()
	if s.phase != domain.PhaseActive {
		s.mu.Unlock()
		return fmt.Errorf("%w: answer in %s", domain.ErrInvalidTransition, s.phase)
	}
	if s.questionIndexLocked(questionID) < 0 {
		s.mu.Unlock()
		return domain.ErrQuestionNotFound
	}
	s.answers[questionID] = option
	s.mu.Unlock()

	s.render()
	return nil
}

// Next moves the cursor forward, clamped to the last question.
func (s *Session) Next() error {
	return s.move(1)
}

// Previous moves the cursor back, clamped to the first question.
func (s *Session) Previous() error {
	return s.move(-1)
}

func (s *Session) move(delta int) error {
	s.mu.Lock()
	if s.phase != domain.PhaseActive {
		s.mu.Unlock()
		return fmt.Errorf("%w: navigate in %s", domain.ErrInvalidTransition, s.phase)
	}
	s.cursor += delta
	if last := len(s.quiz.Questions) - 1; s.cursor > last {
		s.cursor = last
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	s.mu.Unlock()

	s.render()
	return nil
}

// Progress is (cursor+1)/count.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

// Submit ends the attempt on the learner's request.
func (s *Session) Submit(ctx context.Context) error {
	if !s.terminate(ctx, domain.StatusSubmitted, "manual") {
		return fmt.Errorf("%w: submit in %s", domain.ErrInvalidTransition, s.Phase())
	}
	return nil
}

// Tick advances the countdown by one second and auto-submits at zero.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.phase != domain.PhaseActive || s.closed {
		s.mu.Unlock()
		return
	}
	if s.timeLeft > 0 {
		s.timeLeft--
	}
	left := s.timeLeft
	view := s.view
	ctx := s.baseCtx
	s.mu.Unlock()

	if left > 0 {
		view.Countdown(left)
		return
	}
	s.log.Info().Msg("Time is up, submitting")
	s.terminate(ctx, domain.StatusSubmitted, "timeout")
}

// Observe feeds a browser event to the integrity monitor.
func (s *Session) Observe(ev BrowserEvent) bool {
	return s.monitor.Observe(ev)
}

func (s *Session) disqualify(signal Signal) {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()
	s.log.Warn().Str("signal", string(signal)).Msg("Integrity violation")
	s.terminate(ctx, domain.StatusDisqualified, string(signal))
}

// terminate is the single exit from the active phase. The phase check-and-set
// under mu is the latch: only the first caller proceeds to submission.
func (s *Session) terminate(ctx context.Context, status domain.Status, reason string) bool {
	transition := domain.TransitionComplete
	if status == domain.StatusDisqualified {
		transition = domain.TransitionDisqualify
	}

	s.mu.Lock()
	next, err := s.phase.Apply(transition)
	if err != nil || s.closed {
		s.mu.Unlock()
		return false
	}
	s.phase = next
	s.submitting = true
	timer := s.timer
	s.timer = nil
	quiz := s.quiz
	answers := s.answers.Clone()
	token := s.token
	view := s.view
	s.mu.Unlock()

	timer.Stop()
	s.monitor.Disarm()
	metrics.SessionTerminated(string(status), reason)

	if status == domain.StatusDisqualified {
		s.exitFullscreen(view)
		view.Toast(toastDisqualified)
	}
	s.render()

	payload := domain.NewSubmissionPayload(s.learner.ID, quiz, answers, status)
	submitErr := s.submitter.Submit(ctx, s.learner, s.tabID, payload)
	s.registry.Delete(token)

	s.mu.Lock()
	s.submitting = false
	s.token = ""
	s.locked = false
	s.mu.Unlock()
	s.releaseLock()
	s.exitFullscreen(view)

	switch {
	case submitErr != nil:
		view.Toast(toastSubmissionFailed(submitErr))
		view.Navigate(ReferralsPath, true)
	case status == domain.StatusSubmitted:
		view.ShowResults(domain.NewResults(quiz, answers))
	default:
		view.Navigate(ReferralsPath, true)
	}

	s.log.Info().Str("status", string(status)).Str("reason", reason).Msg("Quiz session ended")
	return true
}

// exitFullscreen asks the page to leave fullscreen once.
func (s *Session) exitFullscreen(view View) {
	s.mu.Lock()
	was := s.fullscreen
	s.fullscreen = false
	s.mu.Unlock()
	if was {
		view.ExitFullscreen()
	}
}

// Close releases the timer and monitor without submitting. Used when the page
// goes away outside the active phase or the server shuts down. An abandoned
// attempt also loses its tab token, so its session URL cannot be replayed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	timer := s.timer
	s.timer = nil
	active := s.phase == domain.PhaseActive
	locked := s.locked
	s.locked = false
	token := s.token
	s.mu.Unlock()

	timer.Stop()
	s.monitor.Disarm()
	if !active {
		return
	}
	s.registry.Delete(token)
	metrics.SessionAbandoned()
	if err := s.guard.Release(context.Background(), s.tabID); err != nil {
		s.log.Warn().Err(err).Str("session_id", token).Msg("Failed to clear session token")
	}
	if locked {
		s.releaseLock()
	}
	s.log.Info().Str("session_id", token).Msg("Active quiz session abandoned")
}

// Phase returns the current phase.
func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Token returns the session token while the attempt is in progress.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Snapshot returns the current render state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) render() {
	s.mu.Lock()
	view := s.view
	snap := s.snapshotLocked()
	s.mu.Unlock()
	view.Render(snap)
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:      s.phase,
		JobID:      s.jobID,
		SessionID:  s.token,
		TimeLeft:   s.timeLeft,
		Submitting: s.submitting,
		Error:      s.loadErr,
	}
	if s.phase == domain.PhaseLoading {
		return snap
	}

	snap.Quiz = &QuizSummary{
		Title:            s.quiz.Title,
		Description:      s.quiz.Description,
		Category:         s.quiz.Category,
		JobTitle:         s.quiz.JobTitle,
		JobSkills:        s.quiz.JobSkills,
		QuestionCount:    len(s.quiz.Questions),
		TimeLimitMinutes: s.quiz.TimeLimitMinutes,
		PassingScore:     s.quiz.PassingScorePercent,
	}
	snap.Total = len(s.quiz.Questions)
	snap.CurrentIndex = s.cursor
	snap.Progress = s.progressLocked()
	snap.Answered = len(s.answers)

	if s.phase == domain.PhaseActive && s.cursor < len(s.quiz.Questions) {
		q := s.quiz.Questions[s.cursor]
		qv := &QuestionView{
			ID:         q.ID,
			Text:       q.Text,
			Options:    append([]string(nil), q.Options...),
			Difficulty: q.Difficulty,
			Category:   q.Category,
		}
		if selected, ok := s.answers[q.ID]; ok {
			qv.Selected = &selected
		}
		snap.Question = qv
	}
	return snap
}

func (s *Session) progressLocked() float64 {
	if len(s.quiz.Questions) == 0 {
		return 0
	}
	return float64(s.cursor+1) / float64(len(s.quiz.Questions))
}

func (s *Session) questionIndexLocked(questionID string) int {
	for i := range s.quiz.Questions {
		if s.quiz.Questions[i].ID == questionID {
			return i
		}
	}
	return -1
}
