package cache

import (
	"context"
	"time"
)

// GetOrLoadString is a convenience wrapper for string values.
func GetOrLoadString(
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (string, error),
) (string, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		s, e := load(ctx)
		if e != nil {
			return nil, e
		}
		return []byte(s), nil
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
