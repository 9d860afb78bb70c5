package memory

import (
	"context"
	"sync"

	"alumni-quiz-proctor/internal/domain"
)

// Catalog is an in-process stand-in for the platform backend: job posts, a
// question bank indexed by category, and a record of submitted results. Useful
// for tests and demos.
type Catalog struct {
	jobs map[string]domain.Job
	bank map[string][]domain.Question

	mu      sync.Mutex
	results []domain.SubmissionPayload
}

func NewCatalog(jobs map[string]domain.Job, bank map[string][]domain.Question) *Catalog {
	return &Catalog{jobs: jobs, bank: bank}
}

func (c *Catalog) GetJob(_ context.Context, token, jobID string) (domain.Job, error) {
	if token == "" {
		return domain.Job{}, domain.ErrUnauthenticated
	}
	if job, ok := c.jobs[jobID]; ok {
		return job, nil
	}
	return domain.Job{}, domain.ErrJobNotFound
}

// SampleQuestions returns up to limit questions across categories, in category order.
func (c *Catalog) SampleQuestions(_ context.Context, token string, categories []string, limit int) ([]domain.Question, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	var out []domain.Question
	for _, category := range categories {
		for _, q := range c.bank[category] {
			if len(out) == limit {
				return out, nil
			}
			out = append(out, q)
		}
	}
	return out, nil
}

func (c *Catalog) SubmitResult(_ context.Context, token string, payload domain.SubmissionPayload) error {
	if token == "" {
		return domain.ErrUnauthenticated
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, payload)
	return nil
}

// Results returns the payloads submitted so far.
func (c *Catalog) Results() []domain.SubmissionPayload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.SubmissionPayload(nil), c.results...)
}
