package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"alumni-quiz-proctor/internal/app"
	"alumni-quiz-proctor/internal/domain"
	"golang.org/x/sync/singleflight"
)

// JobCache caches job posts with TTL to avoid repeated backend reads when many
// learners open the same job's quiz.
type JobCache struct {
	source app.JobSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedJob
}

type cachedJob struct {
	job       domain.Job
	expiresAt time.Time
}

func NewJobCache(source app.JobSource, ttl time.Duration) *JobCache {
	return &JobCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedJob),
	}
}

func (c *JobCache) GetJob(ctx context.Context, token, jobID string) (domain.Job, error) {
	if c.ttl <= 0 {
		return c.source.GetJob(ctx, token, jobID)
	}
	if job, ok := c.lookup(jobID); ok {
		return job, nil
	}

	result, err, _ := c.sf.Do(jobID, func() (interface{}, error) {
		if job, ok := c.lookup(jobID); ok {
			return job, nil
		}

		job, err := c.source.GetJob(ctx, token, jobID)
		if err != nil {
			return domain.Job{}, err
		}

		c.mu.Lock()
		c.cache[jobID] = cachedJob{
			job:       job,
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return job, nil
	})
	if err != nil {
		return domain.Job{}, err
	}
	return result.(domain.Job), nil
}

func (c *JobCache) lookup(jobID string) (domain.Job, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[jobID]; ok && entry.expiresAt.After(now) {
		return entry.job, true
	}
	return domain.Job{}, false
}

func (c *JobCache) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
