package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"alumni-quiz-proctor/internal/app"
	"alumni-quiz-proctor/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// JobCache caches job posts in Redis and falls back to the source on cache miss.
// Jobs are stored as JSON under: quiz:job:{jobID}
type JobCache struct {
	client *redis.Client
	source app.JobSource
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewJobCache(client *redis.Client, source app.JobSource, ttl time.Duration) *JobCache {
	return &JobCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *JobCache) GetJob(ctx context.Context, token, jobID string) (domain.Job, error) {
	if job, ok := c.cached(ctx, jobID); ok {
		return job, nil
	}

	result, err, _ := c.sf.Do(jobID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if job, ok := c.cached(ctx, jobID); ok {
			return job, nil
		}

		job, err := c.source.GetJob(ctx, token, jobID)
		if err != nil {
			return domain.Job{}, err
		}

		if raw, err := json.Marshal(job); err == nil {
			_ = c.client.Set(ctx, c.key(jobID), raw, c.ttlWithJitter()).Err()
		}
		return job, nil
	})
	if err != nil {
		return domain.Job{}, err
	}
	return result.(domain.Job), nil
}

func (c *JobCache) cached(ctx context.Context, jobID string) (domain.Job, bool) {
	raw, err := c.client.Get(ctx, c.key(jobID)).Bytes()
	if err != nil {
		return domain.Job{}, false
	}
	var job domain.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return domain.Job{}, false
	}
	return job, true
}

func (c *JobCache) key(jobID string) string {
	return "quiz:job:" + jobID
}

func (c *JobCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
