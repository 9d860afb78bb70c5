package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewTokenStore(newClient(mr), time.Hour)

	if _, ok, err := store.Get(ctx, "tab-1"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "tab-1", "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := mr.Get("quiz:tab:tab-1:token"); got != "tok-1" {
		t.Fatalf("unexpected stored value %q", got)
	}
	token, ok, err := store.Get(ctx, "tab-1")
	if err != nil || !ok || token != "tok-1" {
		t.Fatalf("expected tok-1, got %q ok=%v err=%v", token, ok, err)
	}
	if err := store.Clear(ctx, "tab-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("quiz:tab:tab-1:token") {
		t.Fatalf("expected key removed")
	}
}

func TestTokenStoreExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewTokenStore(newClient(mr), time.Minute)
	_ = store.Set(ctx, "tab-1", "tok-1")

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "tab-1"); ok {
		t.Fatalf("expected token to expire")
	}
}
