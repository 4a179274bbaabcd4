package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const versionKey = "board:version"

// BoardCache stores rendered boards per user. Entries are keyed by a global
// version counter, so a single INCR invalidates every user's board at once;
// superseded entries age out through their TTL.
type BoardCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewBoardCache returns a cache backed by client. A nil client or a zero TTL
// turns every operation into a no-op.
func NewBoardCache(client *redis.Client, ttl time.Duration) *BoardCache {
	if ttl < 0 {
		ttl = 0
	}
	return &BoardCache{redis: client, ttl: ttl}
}

func (c *BoardCache) enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

// Get decodes the cached board for userID into dst and reports whether it was found.
func (c *BoardCache) Get(ctx context.Context, userID uint, dst any) bool {
	if !c.enabled() {
		return false
	}
	key, err := c.key(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("board cache: version lookup failed")
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).WithField("key", key).Warn("board cache: get failed")
		}
		return false
	}
	if err := sonic.Unmarshal(data, dst); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

// Set stores v as userID's board under the current version.
func (c *BoardCache) Set(ctx context.Context, userID uint, v any) {
	if !c.enabled() {
		return
	}
	key, err := c.key(ctx, userID)
	if err != nil {
		return
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Warn("board cache: set failed")
	}
}

// Invalidate drops every cached board by moving to a new version.
func (c *BoardCache) Invalidate(ctx context.Context) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Incr(ctx, versionKey).Err(); err != nil {
		log.WithError(err).Warn("board cache: invalidate failed")
	}
}

func (c *BoardCache) key(ctx context.Context, userID uint) (string, error) {
	version, err := c.redis.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return "board:v" + strconv.FormatInt(version, 10) + ":" + strconv.FormatUint(uint64(userID), 10), nil
}
