// Package cache holds the Redis-backed study group list cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/studygroups-backend/internal/config"
	"github.com/stemsi/studygroups-backend/internal/model"
)

// errStale aborts a guarded write whose generation moved on.
var errStale = errors.New("study group list generation changed")

// StudyGroupCache stores the full group list as one JSON value with a TTL.
// A generation counter next to it is bumped by every Invalidate; SetList only
// writes when the caller's generation is still current, so a list read before
// a write can never overwrite the invalidation that write caused.
type StudyGroupCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	key    string
	genKey string
}

// NewStudyGroupCache creates a cache using the shared key layout.
func NewStudyGroupCache(rdb *redis.Client, ttl time.Duration) *StudyGroupCache {
	return &StudyGroupCache{
		rdb:    rdb,
		ttl:    ttl,
		key:    config.CacheKey.StudyGroupListKey(),
		genKey: config.CacheKey.StudyGroupGenerationKey(),
	}
}

type cachedMember struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type cachedGroup struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Subject   model.Subject  `json:"subject"`
	CreatedAt time.Time      `json:"created_at"`
	Members   []cachedMember `json:"members"`
}

// GetList returns the cached list. ok is false on a miss.
func (c *StudyGroupCache) GetList(ctx context.Context) ([]model.StudyGroup, bool, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get study group list: %w", err)
	}

	var cached []cachedGroup
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("unmarshal study group list: %w", err)
	}
	return fromCached(cached), true, nil
}

// Generation returns the current invalidation counter. A missing key is generation 0.
func (c *StudyGroupCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get study group list generation: %w", err)
	}
	return gen, nil
}

// SetList replaces the cached list if gen is still the current generation.
// stored is false when an invalidation happened since gen was read.
func (c *StudyGroupCache) SetList(ctx context.Context, gen int64, groups []model.StudyGroup) (bool, error) {
	data, err := json.Marshal(toCached(groups))
	if err != nil {
		return false, fmt.Errorf("marshal study group list: %w", err)
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, c.genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, data, c.ttl)
			return nil
		})
		return err
	}, c.genKey)

	switch {
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("set study group list: %w", err)
	}
	return true, nil
}

// Invalidate bumps the generation and drops the cached list in one transaction.
func (c *StudyGroupCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate study group list: %w", err)
	}
	return nil
}

func toCached(groups []model.StudyGroup) []cachedGroup {
	out := make([]cachedGroup, len(groups))
	for i, g := range groups {
		members := make([]cachedMember, len(g.Members))
		for j, m := range g.Members {
			members[j] = cachedMember{ID: m.ID, Email: m.Email, FirstName: m.FirstName, LastName: m.LastName}
		}
		out[i] = cachedGroup{
			ID:        g.ID,
			Name:      g.Name,
			Subject:   g.Subject,
			CreatedAt: g.CreatedAt,
			Members:   members,
		}
	}
	return out
}

func fromCached(cached []cachedGroup) []model.StudyGroup {
	out := make([]model.StudyGroup, len(cached))
	for i, g := range cached {
		members := make([]model.User, len(g.Members))
		for j, m := range g.Members {
			members[j] = model.User{ID: m.ID, Email: m.Email, FirstName: m.FirstName, LastName: m.LastName}
		}
		out[i] = model.StudyGroup{
			ID:        g.ID,
			Name:      g.Name,
			Subject:   g.Subject,
			CreatedAt: g.CreatedAt.UTC(),
			Members:   members,
		}
	}
	return out
}
