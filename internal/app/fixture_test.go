package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"alumni-quiz-proctor/internal/app"
	"alumni-quiz-proctor/internal/domain"
	"alumni-quiz-proctor/internal/infra/memory"
	"github.com/rs/zerolog"
)

type navigation struct {
	Path    string
	Replace bool
}

// recordingView captures everything a session asks the page to do.
type recordingView struct {
	mu            sync.Mutex
	renders       []app.Snapshot
	countdowns    []int
	fullscreenOn  int
	fullscreenOff int
	navigations   []navigation
	toasts        []app.Toast
	results       []domain.Results
}

func (v *recordingView) Render(s app.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renders = append(v.renders, s)
}

func (v *recordingView) Countdown(left int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.countdowns = append(v.countdowns, left)
}

func (v *recordingView) RequestFullscreen() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fullscreenOn++
}

func (v *recordingView) ExitFullscreen() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fullscreenOff++
}

func (v *recordingView) Navigate(path string, replace bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.navigations = append(v.navigations, navigation{Path: path, Replace: replace})
}

func (v *recordingView) Toast(t app.Toast) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.toasts = append(v.toasts, t)
}

func (v *recordingView) ShowResults(r domain.Results) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.results = append(v.results, r)
}

func (v *recordingView) lastNavigation() (navigation, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.navigations) == 0 {
		return navigation{}, false
	}
	return v.navigations[len(v.navigations)-1], true
}

func (v *recordingView) toastTitles() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	titles := make([]string, 0, len(v.toasts))
	for _, t := range v.toasts {
		titles = append(titles, t.Title)
	}
	return titles
}

func (v *recordingView) renderCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.renders)
}

func (v *recordingView) fullscreenExits() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fullscreenOff
}

func (v *recordingView) shownResults() []domain.Results {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]domain.Results(nil), v.results...)
}

type failingSink struct{}

func (failingSink) SubmitResult(context.Context, string, domain.SubmissionPayload) error {
	return errors.New("backend unavailable")
}

type fixture struct {
	service *app.ProctorService
	catalog *memory.Catalog
	tokens  *memory.TokenStore
	ledger  *memory.AttemptLedger
	locks   *memory.AttemptLocks
	learner domain.Learner
}

type fixtureOption func(*app.Dependencies, *app.Options)

func withSink(sink app.ResultSink) fixtureOption {
	return func(d *app.Dependencies, _ *app.Options) { d.Results = sink }
}

func withTokens(tokens app.TokenStore) fixtureOption {
	return func(d *app.Dependencies, _ *app.Options) { d.Tokens = tokens }
}

func withTickInterval(interval time.Duration) fixtureOption {
	return func(_ *app.Dependencies, o *app.Options) { o.TickInterval = interval }
}

func newFixture(jobs map[string]domain.Job, bank map[string][]domain.Question, opts ...fixtureOption) *fixture {
	catalog := memory.NewCatalog(jobs, bank)
	f := &fixture{
		catalog: catalog,
		tokens:  memory.NewTokenStore(),
		ledger:  memory.NewAttemptLedger(),
		locks:   memory.NewAttemptLocks(),
		learner: domain.Learner{ID: "user-1", Token: "bearer-token"},
	}
	deps := app.Dependencies{
		Jobs:     catalog,
		Bank:     catalog,
		Results:  catalog,
		Tokens:   f.tokens,
		Registry: memory.NewSessionStore(),
		Ledger:   f.ledger,
		Locks:    f.locks,
	}
	// Ticks are driven by hand unless a test opts into a real interval.
	options := app.Options{TickInterval: time.Hour, SubmitTimeout: time.Second}
	for _, opt := range opts {
		opt(&deps, &options)
	}
	f.service = app.NewProctorService(deps, options, zerolog.Nop())
	return f
}

func (f *fixture) open(jobID, tabID, sessionID string, view app.View) (*app.Session, error) {
	return f.service.Open(context.Background(), app.OpenRequest{
		Learner:   f.learner,
		TabID:     tabID,
		JobID:     jobID,
		SessionID: sessionID,
	}, view)
}

// startedSession opens, loads and starts a session for jobID on tab-1.
func (f *fixture) startedSession(jobID string) (*app.Session, *recordingView, error) {
	session, view, err := f.loadedSession(jobID, "tab-1")
	if err != nil {
		return nil, nil, err
	}
	if _, err := session.Start(context.Background(), true); err != nil {
		return nil, nil, err
	}
	return session, view, nil
}

// loadedSession opens and loads a session, leaving it in rules review.
func (f *fixture) loadedSession(jobID, tabID string) (*app.Session, *recordingView, error) {
	view := &recordingView{}
	session, err := f.open(jobID, tabID, "", view)
	if err != nil {
		return nil, nil, err
	}
	if err := session.Load(context.Background()); err != nil {
		return nil, nil, err
	}
	return session, view, nil
}

// gatedTokens blocks Set until release is closed.
type gatedTokens struct {
	app.TokenStore
	entered chan struct{}
	release chan struct{}
}

func (g *gatedTokens) Set(ctx context.Context, tabID, token string) error {
	close(g.entered)
	<-g.release
	return g.TokenStore.Set(ctx, tabID, token)
}

func fixedQuestions(n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 1; i <= n; i++ {
		questions = append(questions, domain.Question{
			ID:                 fmt.Sprintf("q%d", i),
			Text:               fmt.Sprintf("Question %d?", i),
			Options:            []string{"a", "b", "c", "d"},
			CorrectOptionIndex: 1,
			Difficulty:         "Easy",
		})
	}
	return questions
}

func fixedJob(id string, n int) domain.Job {
	return domain.Job{
		ID:            id,
		Title:         "Backend Engineer",
		Skills:        []string{"Go"},
		QuizEnabled:   true,
		QuizQuestions: fixedQuestions(n),
	}
}
