package redis

import (
	"context"
	"testing"
	"time"

	"alumni-quiz-proctor/internal/app"
	"alumni-quiz-proctor/internal/domain"
	"alumni-quiz-proctor/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestJobCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	source := &countingSource{
		JobSource: memory.NewCatalog(map[string]domain.Job{
			"job-1": sampleJob(),
		}, nil),
	}
	cache := NewJobCache(client, source, time.Minute)

	job, err := cache.GetJob(context.Background(), "tok", "job-1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected source called once, got %d", source.calls)
	}
	if !mr.Exists("quiz:job:job-1") {
		t.Fatalf("expected job cached in redis")
	}

	// Second call should hit cache, source not incremented.
	cachedJob, _ := cache.GetJob(context.Background(), "tok", "job-1")
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls=%d", source.calls)
	}
	if len(cachedJob.QuizQuestions) != len(job.QuizQuestions) || cachedJob.QuizQuestions[0].CorrectOptionIndex != 1 {
		t.Fatalf("cached job lost question data: %+v", cachedJob)
	}
}

func TestJobCacheRefetchesAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := &countingSource{
		JobSource: memory.NewCatalog(map[string]domain.Job{"job-1": sampleJob()}, nil),
	}
	cache := NewJobCache(newClient(mr), source, time.Minute)

	_, _ = cache.GetJob(context.Background(), "tok", "job-1")
	mr.FastForward(2 * time.Minute)
	_, _ = cache.GetJob(context.Background(), "tok", "job-1")
	if source.calls != 2 {
		t.Fatalf("expected refetch after expiry, got %d calls", source.calls)
	}
}

type countingSource struct {
	app.JobSource
	calls int
}

func (s *countingSource) GetJob(ctx context.Context, token, jobID string) (domain.Job, error) {
	s.calls++
	return s.JobSource.GetJob(ctx, token, jobID)
}

func sampleJob() domain.Job {
	return domain.Job{
		ID:          "job-1",
		Title:       "Data Analyst",
		QuizEnabled: true,
		QuizQuestions: []domain.Question{
			{
				ID:                 "q1",
				Text:               "What is 2 + 2?",
				Options:            []string{"3", "4", "5", "22"},
				CorrectOptionIndex: 1,
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
