package models

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mmdatafocus/kvk_backend/utils"
)

func TestListAuditLogsEmptyPage(t *testing.T) {
	setupDB(t)

	page, err := ListAuditLogs(context.Background(), AuditFilter{Action: AuditActionDelete})
	if err != nil {
		t.Fatalf("ListAuditLogs: %v", err)
	}
	body, err := json.Marshal(page)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"logs":[]`) {
		t.Fatalf("empty page should carry an empty array: %s", body)
	}
}

func TestAuditUserAgentKeepsWholeRunes(t *testing.T) {
	db := setupDB(t)
	owner := seedUser(t, db, "owner", UserRoleUser)

	// 2 + 127*2 = 256 bytes, so byte 255 falls inside the last rune
	agent := "ab" + strings.Repeat("é", 127)
	ctx := utils.SetClientInContext(context.Background(), "10.0.0.1", agent)
	RecordAudit(ctx, auditEntry{Action: AuditActionView, ResourceType: AuditResourceReport, UserId: &owner.UserID})

	var stored AuditLog
	if err := db.Where("action = ?", AuditActionView).Take(&stored).Error; err != nil {
		t.Fatalf("load audit: %v", err)
	}
	if !utf8.ValidString(stored.UserAgent) || len(stored.UserAgent) != 254 {
		t.Fatalf("user agent %d bytes, valid=%v", len(stored.UserAgent), utf8.ValidString(stored.UserAgent))
	}
	if got := truncateUTF8("short", 255); got != "short" {
		t.Fatalf("short agent changed: %q", got)
	}
}
