// Package token issues and validates opaque bearer tokens. A token value
// carries no claims; it is a random string whose only meaning is the
// user binding persisted alongside it.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"go-account-service/internal/core/cache"
	"go-account-service/internal/domain"
)

// ErrInvalid covers every validation failure: unknown value, store
// error or an inactive owner. Callers get no further detail.
var ErrInvalid = errors.New("invalid token")

const DefaultTokenBytes = 32

type Issuer struct {
	tokens domain.TokenRepository
	users  domain.UserRepository
	cache  *cache.Cache // optional; nil disables caching
	size   int
	ttl    time.Duration
}

func NewIssuer(tokens domain.TokenRepository, users domain.UserRepository, c *cache.Cache, tokenBytes int, cacheTTL time.Duration) *Issuer {
	if tokenBytes < 16 { // keep at least 128 bits of entropy
		tokenBytes = DefaultTokenBytes
	}
	return &Issuer{tokens: tokens, users: users, cache: c, size: tokenBytes, ttl: cacheTTL}
}

// Issue mints and persists a fresh token for the user. Prior tokens for
// the same user stay valid; each login is its own session.
func (i *Issuer) Issue(ctx context.Context, userID string) (*domain.Token, error) {
	value, err := randomHex(i.size)
	if err != nil {
		return nil, err
	}
	t := &domain.Token{Value: value, UserID: userID}
	if err := i.tokens.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate resolves a token value to its owner. It fails with ErrInvalid
// when the value is unknown or the owner has been deactivated. The
// value→owner binding is immutable, so it may be served from cache; the
// owner's active flag is always read from the store.
func (i *Issuer) Validate(ctx context.Context, value string) (*domain.User, error) {
	if value == "" {
		return nil, ErrInvalid
	}

	userID, err := i.lookupUserID(ctx, value)
	if err != nil {
		return nil, ErrInvalid
	}

	u, err := i.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalid
	}
	if !u.IsActive {
		return nil, ErrInvalid
	}
	return u, nil
}

// RevokeAll deletes every token bound to the user.
func (i *Issuer) RevokeAll(ctx context.Context, userID string) error {
	return i.tokens.DeleteByUserID(ctx, userID)
}

func (i *Issuer) lookupUserID(ctx context.Context, value string) (string, error) {
	load := func(ctx context.Context) (string, error) {
		t, err := i.tokens.FindByValue(ctx, value)
		if err != nil {
			return "", err
		}
		return t.UserID, nil
	}
	if i.cache == nil {
		return load(ctx)
	}
	return cache.GetOrLoadString(i.cache, ctx, "token:"+value, i.ttl, load)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
