package app

import (
	"context"
	"fmt"

	"alumni-quiz-proctor/internal/domain"
	"github.com/google/uuid"
)

// Guard binds one browser tab to one in-progress attempt through an opaque token.
type Guard struct {
	tokens   TokenStore
	newToken func() string
}

func NewGuard(tokens TokenStore) *Guard {
	return &Guard{tokens: tokens, newToken: uuid.NewString}
}

// Mint stores a fresh token for the tab, replacing any previous one.
func (g *Guard) Mint(ctx context.Context, tabID string) (string, error) {
	token := g.newToken()
	if err := g.tokens.Set(ctx, tabID, token); err != nil {
		return "", fmt.Errorf("store session token: %w", err)
	}
	return token, nil
}

// Validate accepts an empty session id (pre-consent route). Any other id must
// equal the token stored for the tab; a missing token is a mismatch.
func (g *Guard) Validate(ctx context.Context, tabID, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if tabID == "" {
		return domain.ErrInvalidSession
	}
	stored, ok, err := g.tokens.Get(ctx, tabID)
	if err != nil {
		return fmt.Errorf("read session token: %w", err)
	}
	if !ok || stored != sessionID {
		return domain.ErrInvalidSession
	}
	return nil
}

// Release deletes the tab's token.
func (g *Guard) Release(ctx context.Context, tabID string) error {
	return g.tokens.Clear(ctx, tabID)
}
