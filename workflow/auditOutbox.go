package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxBackoff = 10 * time.Minute

// PublishFunc delivers one audit event and returns the broker message id.
type PublishFunc func(ctx context.Context, msg config.AuditEventMessage) (string, error)

// AuditDispatcher drains PENDING audit rows to Pub/Sub.
type AuditDispatcher struct {
	DB           *gorm.DB
	Logger       *logrus.Logger
	DispatcherID string
	Publish      PublishFunc

	BatchSize      int
	PollInterval   time.Duration
	LockTimeout    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration

	now func() time.Time
}

func NewAuditDispatcher(db *gorm.DB, logger *logrus.Logger) *AuditDispatcher {
	return &AuditDispatcher{
		DB:             db,
		Logger:         logger,
		DispatcherID:   uuid.NewString(),
		Publish:        config.PublishAuditEvent,
		BatchSize:      config.IntFromEnv("AUDIT_OUTBOX_BATCH_SIZE", 50),
		PollInterval:   500 * time.Millisecond,
		LockTimeout:    30 * time.Second,
		MaxAttempts:    config.IntFromEnv("AUDIT_OUTBOX_MAX_ATTEMPTS", 20),
		InitialBackoff: config.DurationFromEnv("AUDIT_OUTBOX_BASE_BACKOFF_SECONDS", 5*time.Second),
		now:            time.Now,
	}
}

// Run polls until ctx is cancelled.
func (d *AuditDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.DispatchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

func (d *AuditDispatcher) clock() time.Time {
	if d.now != nil {
		return d.now().UTC()
	}
	return time.Now().UTC()
}

// claim marks a batch PROCESSING under this dispatcher's id. Rows over MaxAttempts go DEAD instead.
func (d *AuditDispatcher) claim(ctx context.Context, now time.Time) ([]models.AuditLog, error) {
	staleBefore := now.Add(-d.LockTimeout)
	var claimed []models.AuditLog
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.
			Where(`
				(
					publish_status IN ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
				)
				OR
				(
					publish_status = ? AND locked_at IS NOT NULL AND locked_at <= ?
				)
			`, []string{models.OutboxPublishStatusPending, models.OutboxPublishStatusFailed}, now, models.OutboxPublishStatusProcessing, staleBefore).
			Order("id ASC").
			Limit(d.BatchSize)
		// sqlite serialises writers and has no row locks
		if tx.Dialector.Name() == "mysql" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}
		for i := range claimed {
			if d.MaxAttempts > 0 && claimed[i].PublishAttempts >= d.MaxAttempts {
				msg := fmt.Sprintf("max publish attempts exceeded (%d)", d.MaxAttempts)
				claimed[i].PublishStatus = models.OutboxPublishStatusDead
				if err := tx.Model(&models.AuditLog{}).Where("id = ?", claimed[i].ID).Updates(map[string]interface{}{
					"publish_status":     models.OutboxPublishStatusDead,
					"last_publish_error": &msg,
					"next_attempt_at":    nil,
					"locked_at":          nil,
					"locked_by":          nil,
				}).Error; err != nil {
					return err
				}
				continue
			}

			claimed[i].PublishStatus = models.OutboxPublishStatusProcessing
			claimed[i].PublishAttempts++
			if err := tx.Model(&models.AuditLog{}).Where("id = ?", claimed[i].ID).Updates(map[string]interface{}{
				"publish_status":     models.OutboxPublishStatusProcessing,
				"locked_at":          &now,
				"locked_by":          d.DispatcherID,
				"publish_attempts":   gorm.Expr("publish_attempts + 1"),
				"last_publish_error": nil,
				"next_attempt_at":    nil,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}

// DispatchOnce claims and publishes a single batch, returning how many rows were sent.
func (d *AuditDispatcher) DispatchOnce(ctx context.Context) int {
	if d.DB == nil || d.Publish == nil {
		return 0
	}
	now := d.clock()
	claimed, err := d.claim(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			config.LogError(d.Logger, "workflow", "AuditDispatcher.claim", d.DispatcherID, nil, err)
		}
		return 0
	}

	sent := 0
	for i := range claimed {
		rec := &claimed[i]
		if rec.PublishStatus == models.OutboxPublishStatusDead {
			continue
		}
		pubID, pubErr := d.Publish(ctx, rec.Event())
		if pubErr != nil {
			d.markFailed(ctx, rec.ID, pubErr, rec.PublishAttempts)
			continue
		}
		d.markSent(ctx, rec.ID, pubID, now)
		sent++
	}
	return sent
}

func (d *AuditDispatcher) markSent(ctx context.Context, id int, messageID string, now time.Time) {
	err := d.DB.WithContext(ctx).Model(&models.AuditLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"publish_status":     models.OutboxPublishStatusSent,
			"published_at":       &now,
			"pub_sub_message_id": &messageID,
			"locked_at":          nil,
			"locked_by":          nil,
			"next_attempt_at":    nil,
		}).Error
	if err != nil {
		config.LogError(d.Logger, "workflow", "AuditDispatcher.markSent", d.DispatcherID, id, err)
	}
}

// backoff doubles per attempt from InitialBackoff, capped at ten minutes.
func (d *AuditDispatcher) backoff(attempt int) time.Duration {
	b := d.InitialBackoff
	for i := 1; i < attempt; i++ {
		b *= 2
		if b > maxBackoff {
			return maxBackoff
		}
	}
	return b
}

func (d *AuditDispatcher) markFailed(ctx context.Context, id int, cause error, attempt int) {
	db := d.DB.WithContext(ctx)
	msg := cause.Error()

	if d.MaxAttempts > 0 && attempt >= d.MaxAttempts {
		_ = db.Model(&models.AuditLog{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"publish_status":     models.OutboxPublishStatusDead,
				"last_publish_error": &msg,
				"next_attempt_at":    nil,
				"locked_at":          nil,
				"locked_by":          nil,
			}).Error
		if d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{
				"field":     "AuditDispatcher",
				"record_id": id,
				"attempt":   attempt,
			}).Error("audit publish moved to DEAD after max attempts: " + msg)
		}
		return
	}

	next := d.clock().Add(d.backoff(attempt))
	_ = db.Model(&models.AuditLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"publish_status":     models.OutboxPublishStatusFailed,
			"last_publish_error": &msg,
			"next_attempt_at":    &next,
			"locked_at":          nil,
			"locked_by":          nil,
		}).Error
	if d.Logger != nil {
		d.Logger.WithFields(logrus.Fields{
			"field":           "AuditDispatcher",
			"record_id":       id,
			"attempt":         attempt,
			"next_attempt_at": next.Format(time.RFC3339Nano),
		}).Warn("audit publish failed: " + msg)
	}
}

// RequeueDead moves DEAD rows back to PENDING with a fresh attempt budget.
func RequeueDead(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Model(&models.AuditLog{}).
		Where("publish_status = ?", models.OutboxPublishStatusDead).
		Updates(map[string]interface{}{
			"publish_status":     models.OutboxPublishStatusPending,
			"publish_attempts":   0,
			"last_publish_error": nil,
			"next_attempt_at":    nil,
		})
	return res.RowsAffected, res.Error
}

// OutboxCounts groups audit rows by publish status.
func OutboxCounts(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		PublishStatus string
		Count         int64
	}
	err := db.WithContext(ctx).Model(&models.AuditLog{}).
		Select("publish_status, COUNT(*) AS count").
		Group("publish_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.PublishStatus] = r.Count
	}
	return counts, nil
}
