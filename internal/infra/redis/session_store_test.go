package redis

import (
	"testing"
	"time"

	"alumni-quiz-proctor/internal/app"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	store.Register("tok-1", &app.Session{})
	if !mr.Exists("quiz:session:tok-1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("quiz:session:tok-1"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %s", ttl)
	}

	store.Delete("tok-1")
	if mr.Exists("quiz:session:tok-1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestSessionStoreSeesOtherInstances(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	first := NewSessionStore(client, time.Minute)
	second := NewSessionStore(client, time.Minute)

	first.Register("tok-1", &app.Session{})
	session, ok := second.Get("tok-1")
	if !ok || session != nil {
		t.Fatalf("expected remote live marker without local session, got ok=%v session=%v", ok, session)
	}
	if len(second.List()) != 0 {
		t.Fatalf("remote sessions are not listed locally")
	}
}
