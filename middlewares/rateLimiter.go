package middlewares

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/utils"
	"github.com/redis/go-redis/v9"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

// SlidingWindow admits at most Max requests per key within any Window-long interval.
// Counts live in a Redis sorted set when Redis is connected and in process memory otherwise.
type SlidingWindow struct {
	Name   string
	Max    int
	Window time.Duration

	redis func() *redis.Client
	now   func() time.Time

	mu        sync.Mutex
	hits      map[string][]time.Time
	nextSweep time.Time
}

func NewSlidingWindow(name string, limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		Name:   name,
		Max:    limit,
		Window: window,
		redis:  config.GetRedisDB,
		now:    time.Now,
		hits:   map[string][]time.Time{},
	}
}

// Allow records one request for key and reports whether it is within the limit,
// together with the number of requests left in the current window.
func (l *SlidingWindow) Allow(ctx context.Context, key string) (bool, int) {
	if rdb := l.redis(); rdb != nil {
		count, err := l.allowRedis(ctx, rdb, key)
		if err == nil {
			return count <= int64(l.Max), max(l.Max-int(count), 0)
		}
		config.LogErrorCtx(ctx, "middlewares", "SlidingWindow.Allow", "redis window", key, err)
	}
	count := l.allowMemory(key)
	return count <= l.Max, max(l.Max-count, 0)
}

func (l *SlidingWindow) redisKey(key string) string {
	return "RateLimit:" + l.Name + ":" + key
}

func (l *SlidingWindow) allowRedis(ctx context.Context, rdb *redis.Client, key string) (int64, error) {
	now := l.now()
	rkey := l.redisKey(key)
	floor := strconv.FormatInt(now.Add(-l.Window).UnixMicro(), 10)

	var card *redis.IntCmd
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, rkey, "-inf", "("+floor)
		pipe.ZAdd(ctx, rkey, redis.Z{Score: float64(now.UnixMicro()), Member: uuid.NewString()})
		card = pipe.ZCard(ctx, rkey)
		pipe.Expire(ctx, rkey, l.Window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return card.Val(), nil
}

func (l *SlidingWindow) allowMemory(key string) int {
	now := l.now()
	floor := now.Add(-l.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	if !now.Before(l.nextSweep) {
		for k, hits := range l.hits {
			if kept := pruneHits(hits, floor); len(kept) == 0 {
				delete(l.hits, k)
			} else {
				l.hits[k] = kept
			}
		}
		l.nextSweep = now.Add(l.Window)
	}

	kept := pruneHits(l.hits[key], floor)
	if len(kept) >= l.Max {
		// over the limit: nothing more is recorded until the window slides
		l.hits[key] = kept
		return len(kept) + 1
	}
	l.hits[key] = append(kept, now)
	return len(kept) + 1
}

func pruneHits(hits []time.Time, floor time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if !t.Before(floor) {
			kept = append(kept, t)
		}
	}
	return kept
}

// RateLimit rejects callers over the window with 429 before any handler runs.
func RateLimit(l *SlidingWindow) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining := l.Allow(c.Request.Context(), c.ClientIP())
		c.Header("RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(l.Window.Seconds())))
			RespondError(c, utils.NewRateLimited(rateLimitMessage))
			return
		}
		c.Next()
	}
}

func passthrough(c *gin.Context) { c.Next() }

// GlobalRateLimit covers all /api traffic.
func GlobalRateLimit() gin.HandlerFunc {
	if !config.BoolFromEnv("RATE_LIMIT_ENABLED", true) {
		return passthrough
	}
	return RateLimit(NewSlidingWindow("api",
		config.IntFromEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		config.DurationFromEnv("RATE_LIMIT_WINDOW_SECONDS", 15*time.Minute)))
}

// AuthRateLimit is the stricter window in front of credential checks.
func AuthRateLimit() gin.HandlerFunc {
	if !config.BoolFromEnv("RATE_LIMIT_ENABLED", true) {
		return passthrough
	}
	return RateLimit(NewSlidingWindow("auth",
		config.IntFromEnv("AUTH_RATE_LIMIT_MAX_REQUESTS", 20),
		config.DurationFromEnv("AUTH_RATE_LIMIT_WINDOW_SECONDS", 15*time.Minute)))
}
