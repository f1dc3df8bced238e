package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/internal/testdb"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	// the Cloud client libraries start this worker from an init
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func newDispatcher(db *gorm.DB, publish PublishFunc) *AuditDispatcher {
	d := NewAuditDispatcher(db, nil)
	d.Publish = publish
	d.MaxAttempts = 3
	d.InitialBackoff = time.Second
	d.PollInterval = 5 * time.Millisecond
	return d
}

func insertAudit(t *testing.T, db *gorm.DB, status string) *models.AuditLog {
	t.Helper()
	row := &models.AuditLog{
		Action:        models.AuditActionCreate,
		ResourceType:  models.AuditResourceReport,
		UserEmail:     "alice@example.org",
		PublishStatus: status,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func reload(t *testing.T, db *gorm.DB, id int) models.AuditLog {
	t.Helper()
	var row models.AuditLog
	require.NoError(t, db.First(&row, id).Error)
	return row
}

func TestDispatchOncePublishesPending(t *testing.T) {
	db := testdb.Open(t, &models.AuditLog{})
	pending := insertAudit(t, db, models.OutboxPublishStatusPending)
	skipped := insertAudit(t, db, models.OutboxPublishStatusSkipped)

	var got []config.AuditEventMessage
	d := newDispatcher(db, func(_ context.Context, msg config.AuditEventMessage) (string, error) {
		got = append(got, msg)
		return "msg-1", nil
	})

	require.Equal(t, 1, d.DispatchOnce(context.Background()))
	require.Len(t, got, 1)
	require.Equal(t, pending.ID, got[0].ID)
	require.Equal(t, "CREATE", got[0].Action)
	require.Equal(t, "alice@example.org", got[0].UserEmail)

	row := reload(t, db, pending.ID)
	require.Equal(t, models.OutboxPublishStatusSent, row.PublishStatus)
	require.Equal(t, 1, row.PublishAttempts)
	require.NotNil(t, row.PublishedAt)
	require.Equal(t, "msg-1", *row.PubSubMessageId)
	require.Nil(t, row.LockedBy)

	require.Equal(t, models.OutboxPublishStatusSkipped, reload(t, db, skipped.ID).PublishStatus)
	require.Equal(t, 0, d.DispatchOnce(context.Background()))
}

func TestDispatchOnceBacksOffThenDies(t *testing.T) {
	db := testdb.Open(t, &models.AuditLog{})
	row := insertAudit(t, db, models.OutboxPublishStatusPending)

	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	d := newDispatcher(db, func(context.Context, config.AuditEventMessage) (string, error) {
		return "", errors.New("broker down")
	})
	d.now = func() time.Time { return now }

	d.DispatchOnce(context.Background())
	got := reload(t, db, row.ID)
	require.Equal(t, models.OutboxPublishStatusFailed, got.PublishStatus)
	require.Equal(t, "broker down", *got.LastPublishError)
	require.True(t, got.NextAttemptAt.Equal(now.Add(time.Second)), got.NextAttemptAt)

	// not yet due
	require.Equal(t, 0, d.DispatchOnce(context.Background()))
	require.Equal(t, 1, reload(t, db, row.ID).PublishAttempts)

	now = now.Add(time.Second)
	d.DispatchOnce(context.Background())
	got = reload(t, db, row.ID)
	require.Equal(t, 2, got.PublishAttempts)
	require.True(t, got.NextAttemptAt.Equal(now.Add(2*time.Second)), got.NextAttemptAt)

	now = now.Add(2 * time.Second)
	d.DispatchOnce(context.Background())
	got = reload(t, db, row.ID)
	require.Equal(t, models.OutboxPublishStatusDead, got.PublishStatus)
	require.Equal(t, 3, got.PublishAttempts)
	require.Nil(t, got.NextAttemptAt)

	n, err := RequeueDead(context.Background(), db)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	got = reload(t, db, row.ID)
	require.Equal(t, models.OutboxPublishStatusPending, got.PublishStatus)
	require.Equal(t, 0, got.PublishAttempts)
}

func TestDispatchOnceReclaimsStaleLocks(t *testing.T) {
	db := testdb.Open(t, &models.AuditLog{})
	row := insertAudit(t, db, models.OutboxPublishStatusProcessing)
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	fresh := now.Add(-time.Second)
	owner := "crashed"
	require.NoError(t, db.Model(row).Updates(map[string]interface{}{"locked_at": &fresh, "locked_by": &owner}).Error)

	calls := 0
	d := newDispatcher(db, func(context.Context, config.AuditEventMessage) (string, error) {
		calls++
		return "id", nil
	})
	d.now = func() time.Time { return now }

	d.DispatchOnce(context.Background())
	require.Equal(t, 0, calls)

	now = now.Add(d.LockTimeout)
	d.DispatchOnce(context.Background())
	require.Equal(t, 1, calls)
	require.Equal(t, models.OutboxPublishStatusSent, reload(t, db, row.ID).PublishStatus)
}

func TestBackoffCap(t *testing.T) {
	d := &AuditDispatcher{InitialBackoff: 5 * time.Second}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{4, 40 * time.Second},
		{12, maxBackoff},
	}
	for _, tc := range cases {
		if got := d.backoff(tc.attempt); got != tc.want {
			t.Fatalf("backoff(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	db := testdb.Open(t, &models.AuditLog{})
	insertAudit(t, db, models.OutboxPublishStatusPending)

	published := make(chan struct{}, 1)
	d := newDispatcher(db, func(context.Context, config.AuditEventMessage) (string, error) {
		select {
		case published <- struct{}{}:
		default:
		}
		return "id", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	select {
	case <-published:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher never published")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
