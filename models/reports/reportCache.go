package reports

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
	"github.com/sirupsen/logrus"
)

func reportCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("ENABLE_REPORT_CACHE"))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"report":         name,
		"ms":             d.Milliseconds(),
		"correlation_id": cid,
		"extra":          extra,
	}).Warn("slow_report")
}

// cacheKey folds the report generation counter in, so any report write invalidates every entry.
func cacheKey(name string, actor models.ReportActor, extra string) string {
	generation, _, _ := config.GetRedisValue(models.ReportGenerationKey)
	scope := "all"
	if !actor.IsAdmin() {
		scope = fmt.Sprintf("user:%d", actor.UserID)
	}
	return fmt.Sprintf("Dashboard:%s:%s:%s:g%s", name, scope, extra, generation)
}

// cached runs load through the Redis cache when ENABLE_REPORT_CACHE is on.
func cached[T any](ctx context.Context, key string, load func() (*T, error)) (*T, error) {
	if !reportCacheEnabled() {
		return load()
	}
	var hit T
	if ok, err := config.GetRedisObject(key, &hit); err == nil && ok {
		return &hit, nil
	}
	result, err := load()
	if err != nil {
		return nil, err
	}
	if err := config.SetRedisObject(key, result, reportCacheTTL()); err != nil {
		config.LogError(config.GetLogger(), "reports", "cached", "redis set", key, err)
	}
	return result, nil
}
