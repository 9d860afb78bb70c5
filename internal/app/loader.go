package app

import (
	"context"
	"fmt"
	"strings"

	"alumni-quiz-proctor/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// QuizLoader resolves a job into a quiz: the author's fixed questions when the
// job enables its own quiz, otherwise a bank sample for the job's skills.
type QuizLoader struct {
	jobs     JobSource
	bank     QuestionBank
	validate *validator.Validate
	newID    func() string
}

func NewQuizLoader(jobs JobSource, bank QuestionBank) *QuizLoader {
	return &QuizLoader{
		jobs:     jobs,
		bank:     bank,
		validate: validator.New(),
		newID:    uuid.NewString,
	}
}

// Load performs one job read, plus one bank read when sampling applies.
func (l *QuizLoader) Load(ctx context.Context, learner domain.Learner, jobID string) (domain.Quiz, error) {
	if learner.Token == "" || jobID == "" {
		return domain.Quiz{}, domain.ErrUnauthenticated
	}

	job, err := l.jobs.GetJob(ctx, learner.Token, jobID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load job %s: %w", jobID, err)
	}

	var questions []domain.Question
	switch {
	case job.QuizEnabled && len(job.QuizQuestions) > 0:
		questions = append(questions, job.QuizQuestions...)
	case len(job.Skills) > 0:
		categories := make([]string, 0, len(job.Skills))
		for _, skill := range job.Skills {
			categories = append(categories, strings.ToLower(skill))
		}
		sampled, err := l.bank.SampleQuestions(ctx, learner.Token, categories, domain.BankSampleLimit)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("sample questions for job %s: %w", jobID, err)
		}
		if len(sampled) > domain.BankSampleLimit {
			sampled = sampled[:domain.BankSampleLimit]
		}
		if len(sampled) == 0 {
			return domain.Quiz{}, fmt.Errorf("%w: no questions for skills %s", domain.ErrNoQuiz, strings.Join(job.Skills, ", "))
		}
		questions = sampled
	default:
		return domain.Quiz{}, domain.ErrNoQuiz
	}

	if err := l.normalize(questions); err != nil {
		return domain.Quiz{}, err
	}

	return domain.Quiz{
		ID:                  jobID,
		Title:               "Assessment for " + job.Title,
		Description:         "Test your skills for this job.",
		Questions:           questions,
		TimeLimitMinutes:    domain.TimeLimitMinutes(len(questions)),
		PassingScorePercent: domain.PassingScorePercent,
		Category:            domain.JobSpecificCategory,
		JobTitle:            job.Title,
		JobSkills:           job.Skills,
	}, nil
}

// normalize gives every question a unique id and checks its shape.
func (l *QuizLoader) normalize(questions []domain.Question) error {
	seen := make(map[string]struct{}, len(questions))
	for i := range questions {
		q := &questions[i]
		if _, dup := seen[q.ID]; q.ID == "" || dup {
			q.ID = l.newID()
		}
		seen[q.ID] = struct{}{}

		if err := l.validate.Struct(q); err != nil {
			return fmt.Errorf("%w: question %d: %v", domain.ErrMalformedQuestion, i+1, err)
		}
	}
	return nil
}
