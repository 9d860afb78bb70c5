package memory

import (
	"testing"

	"alumni-quiz-proctor/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	session := &app.Session{}

	store.Register("tok-1", session)
	if got, ok := store.Get("tok-1"); !ok || got != session {
		t.Fatalf("expected session present")
	}
	if len(store.List()) != 1 {
		t.Fatalf("expected one live session")
	}

	store.Delete("tok-1")
	if _, ok := store.Get("tok-1"); ok {
		t.Fatalf("expected session removed")
	}
	store.Delete("tok-1")
}
