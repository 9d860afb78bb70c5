package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var releaseIfOwner = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AttemptLocks reserves attempts across instances with SET NX.
// Keys: quiz:attempt:{userID}:{jobID} -> owner
type AttemptLocks struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAttemptLocks(client *redis.Client, ttl time.Duration) *AttemptLocks {
	return &AttemptLocks{client: client, ttl: ttl}
}

func (l *AttemptLocks) Acquire(ctx context.Context, userID, jobID, owner string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(userID, jobID), owner, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	current, err := l.client.Get(ctx, l.key(userID, jobID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return current == owner, nil
}

func (l *AttemptLocks) Release(ctx context.Context, userID, jobID, owner string) error {
	return releaseIfOwner.Run(ctx, l.client, []string{l.key(userID, jobID)}, owner).Err()
}

func (l *AttemptLocks) key(userID, jobID string) string {
	return "quiz:attempt:" + userID + ":" + jobID
}
