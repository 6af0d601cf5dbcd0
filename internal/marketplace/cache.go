package marketplace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
)

// ResultCache stores ranked match results. Entries are keyed on the request
// and a snapshot of the candidate pool, so any sitter update produces a new key.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]matching.MatchResult, bool, error)
	Set(ctx context.Context, key string, results []matching.MatchResult, ttl time.Duration) error
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) ResultCache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]matching.MatchResult, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var results []matching.MatchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false, err
	}
	return results, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, results []matching.MatchResult, ttl time.Duration) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

type nopCache struct{}

// NopCache never stores anything.
func NopCache() ResultCache { return nopCache{} }

func (nopCache) Get(context.Context, string) ([]matching.MatchResult, bool, error) {
	return nil, false, nil
}

func (nopCache) Set(context.Context, string, []matching.MatchResult, time.Duration) error {
	return nil
}

// MatchCacheKey hashes the criteria, the limit and each candidate's id, last
// update and availability slots. Slots live in their own table and do not
// bump the profile's updated_at.
func MatchCacheKey(req *matching.MatchRequest, limit int, pool []*matching.Candidate) (string, error) {
	criteria, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode criteria: %w", err)
	}

	h := sha256.New()
	h.Write(criteria)
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(limit)))
	for _, c := range pool {
		if c == nil {
			continue
		}
		fmt.Fprintf(h, "|%d:%d", c.ID, c.UpdatedAt.UnixNano())
		for _, slot := range c.Availability {
			fmt.Fprintf(h, ";%d-%d", slot.Start.UnixNano(), slot.End.UnixNano())
		}
	}
	return "match:" + hex.EncodeToString(h.Sum(nil)), nil
}
