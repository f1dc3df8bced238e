package models

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
	AuditActionView   AuditAction = "VIEW"
	AuditActionLogin  AuditAction = "LOGIN"
	AuditActionLogout AuditAction = "LOGOUT"
)

type AuditResourceType string

const (
	AuditResourceUser   AuditResourceType = "USER"
	AuditResourceReport AuditResourceType = "REPORT"
	AuditResourceSystem AuditResourceType = "SYSTEM"
)

// Outbox publish statuses for AuditLog.PublishStatus.
const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
	// no topic configured when the entry was written
	OutboxPublishStatusSkipped = "SKIPPED"
)

// AuditLog rows are append-only; only the outbox columns change after insert.
type AuditLog struct {
	ID            int               `gorm:"primary_key;index:idx_audit_outbox,priority:3" json:"id"`
	Action        AuditAction       `gorm:"size:10;not null;index" json:"action"`
	ResourceType  AuditResourceType `gorm:"size:10;not null;index:idx_audit_resource,priority:1" json:"resourceType"`
	ResourceId    *int              `gorm:"index:idx_audit_resource,priority:2" json:"resourceId"`
	UserId        *int              `gorm:"index" json:"userId"`
	UserEmail     string            `gorm:"size:100" json:"userEmail"`
	IpAddress     string            `gorm:"size:64" json:"ipAddress"`
	UserAgent     string            `gorm:"size:255" json:"userAgent"`
	Changes       datatypes.JSON    `json:"changes"`
	Metadata      datatypes.JSON    `json:"metadata"`
	CorrelationId string            `gorm:"size:64;index" json:"correlationId"`

	PublishStatus    string     `gorm:"size:20;not null;default:'PENDING';index:idx_audit_outbox,priority:1" json:"publishStatus"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publishAttempts"`
	NextAttemptAt    *time.Time `gorm:"index:idx_audit_outbox,priority:2" json:"nextAttemptAt"`
	LockedAt         *time.Time `json:"-"`
	LockedBy         *string    `gorm:"size:100" json:"-"`
	PublishedAt      *time.Time `json:"publishedAt"`
	PubSubMessageId  *string    `gorm:"size:255" json:"-"`
	LastPublishError *string    `gorm:"type:text" json:"lastPublishError,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

type auditEntry struct {
	Action       AuditAction
	ResourceType AuditResourceType
	ResourceId   *int
	UserId       *int
	UserEmail    string
	Changes      any
	Metadata     any
}

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func newAuditLog(ctx context.Context, entry auditEntry) *AuditLog {
	ip, _ := utils.GetClientIPFromContext(ctx)
	agent, _ := utils.GetUserAgentFromContext(ctx)
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	agent = truncateUTF8(agent, 255)
	status := OutboxPublishStatusPending
	if config.AuditTopic() == "" {
		status = OutboxPublishStatusSkipped
	}
	if entry.UserId == nil {
		if id, ok := utils.GetUserIdFromContext(ctx); ok {
			entry.UserId = &id
		}
	}
	if entry.UserEmail == "" {
		entry.UserEmail, _ = utils.GetUserEmailFromContext(ctx)
	}
	return &AuditLog{
		Action:        entry.Action,
		ResourceType:  entry.ResourceType,
		ResourceId:    entry.ResourceId,
		UserId:        entry.UserId,
		UserEmail:     entry.UserEmail,
		IpAddress:     ip,
		UserAgent:     agent,
		Changes:       toJSON(entry.Changes),
		Metadata:      toJSON(entry.Metadata),
		CorrelationId: correlationId,
		PublishStatus: status,
	}
}

// writeAudit inserts inside the caller's transaction, so a failed audit rolls back the write.
func writeAudit(tx *gorm.DB, entry auditEntry) error {
	return tx.Create(newAuditLog(tx.Statement.Context, entry)).Error
}

// RecordAudit is the best-effort variant for actions with no primary write (VIEW, LOGIN, LOGOUT).
func RecordAudit(ctx context.Context, entry auditEntry) {
	db := config.GetDB()
	if db == nil {
		return
	}
	if err := db.WithContext(ctx).Create(newAuditLog(ctx, entry)).Error; err != nil {
		config.LogErrorCtx(ctx, "models", "RecordAudit", string(entry.Action), entry.ResourceId, err)
	}
}

// RecordSystemEvent logs an actor's action that has no report or user row of its own (uploads, imports).
func RecordSystemEvent(ctx context.Context, actor ReportActor, metadata map[string]any) {
	RecordAudit(ctx, auditEntry{
		Action:       AuditActionCreate,
		ResourceType: AuditResourceSystem,
		UserId:       &actor.UserID,
		UserEmail:    actor.Email,
		Metadata:     metadata,
	})
}

type AuditFilter struct {
	AfterId      int
	Limit        int
	Query        string
	Action       AuditAction
	ResourceType AuditResourceType
	ResourceId   int
}

type AuditLogPage struct {
	Logs        []*AuditLog `json:"logs"`
	NextAfterId *int        `json:"nextAfterId"`
}

// ListAuditLogs pages newest-first using an id cursor.
func ListAuditLogs(ctx context.Context, filter AuditFilter) (*AuditLogPage, error) {
	db := config.GetDB()
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := db.WithContext(ctx).Model(&AuditLog{})
	if filter.AfterId > 0 {
		q = q.Where("id < ?", filter.AfterId)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		q = q.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ResourceId > 0 {
		q = q.Where("resource_id = ?", filter.ResourceId)
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(user_email) LIKE ? OR LOWER(ip_address) LIKE ?", like, like)
	}

	logs := []*AuditLog{}
	if err := q.Order("id DESC").Limit(limit + 1).Find(&logs).Error; err != nil {
		return nil, err
	}
	page := &AuditLogPage{Logs: logs}
	if len(logs) > limit {
		page.Logs = logs[:limit]
		next := page.Logs[limit-1].ID
		page.NextAfterId = &next
	}
	return page, nil
}

// Event is the Pub/Sub payload for an audit row.
func (a *AuditLog) Event() config.AuditEventMessage {
	return config.AuditEventMessage{
		ID:            a.ID,
		Action:        string(a.Action),
		ResourceType:  string(a.ResourceType),
		ResourceId:    a.ResourceId,
		UserId:        a.UserId,
		UserEmail:     a.UserEmail,
		IpAddress:     a.IpAddress,
		Changes:       json.RawMessage(a.Changes),
		Metadata:      json.RawMessage(a.Metadata),
		CreatedAt:     a.CreatedAt,
		CorrelationId: a.CorrelationId,
	}
}
