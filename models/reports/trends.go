package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmdatafocus/kvk_backend/models"
)

type TrendBucket struct {
	Year      int   `json:"year"`
	Month     int   `json:"month"`
	Count     int64 `json:"count"`
	Submitted int64 `json:"submitted"`
	Approved  int64 `json:"approved"`
}

type TrendsResponse struct {
	Months int           `json:"months"`
	Trends []TrendBucket `json:"trends"`
}

type trendRow struct {
	CreatedAt time.Time
	Status    models.ReportStatus
}

func clampMonths(months int) int {
	if months < 1 {
		return 12
	}
	if months > 60 {
		return 60
	}
	return months
}

// Trends buckets reports created in the trailing window by calendar month, ascending.
// The "submitted" and "approved" counts use each report's current status.
func Trends(ctx context.Context, actor models.ReportActor, months int, now time.Time) (*TrendsResponse, error) {
	months = clampMonths(months)
	start := now.UTC().AddDate(0, -months, 0)
	return cached(ctx, cacheKey("trends", actor, fmt.Sprintf("%d", months)), func() (*TrendsResponse, error) {
		var rows []trendRow
		if err := scoped(ctx, actor).
			Select("created_at", "status").
			Where("created_at >= ?", start).
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		return &TrendsResponse{Months: months, Trends: bucketTrends(rows)}, nil
	})
}

func bucketTrends(rows []trendRow) []TrendBucket {
	byMonth := map[[2]int]*TrendBucket{}
	for _, r := range rows {
		t := r.CreatedAt.UTC()
		key := [2]int{t.Year(), int(t.Month())}
		b, ok := byMonth[key]
		if !ok {
			b = &TrendBucket{Year: key[0], Month: key[1]}
			byMonth[key] = b
		}
		b.Count++
		switch r.Status {
		case models.ReportStatusSubmitted:
			b.Submitted++
		case models.ReportStatusApproved:
			b.Approved++
		}
	}
	out := make([]TrendBucket, 0, len(byMonth))
	for _, b := range byMonth {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}
