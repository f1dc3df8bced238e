package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/kvk_backend/internal/testdb"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func seed(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.org", Password: "x", Role: role, IsActive: utils.NewTrue()}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestTokenFromRequest(t *testing.T) {
	cases := []struct {
		name   string
		header map[string]string
		cookie string
		want   string
	}{
		{"bearer", map[string]string{"Authorization": "Bearer abc"}, "", "abc"},
		{"bearer wins", map[string]string{"Authorization": "Bearer abc", "x-auth-token": "def"}, "ghi", "abc"},
		{"x-auth-token", map[string]string{"x-auth-token": "def"}, "ghi", "def"},
		{"cookie", nil, "ghi", "ghi"},
		{"basic ignored", map[string]string{"Authorization": "Basic abc"}, "", ""},
		{"none", nil, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.header {
				c.Request.Header.Set(k, v)
			}
			if tc.cookie != "" {
				c.Request.AddCookie(&http.Cookie{Name: "token", Value: tc.cookie})
			}
			if got := tokenFromRequest(c); got != tc.want {
				t.Fatalf("token = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSlidingWindowMemory(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewSlidingWindow("test", 3, time.Minute)
	l.redis = func() *redis.Client { return nil }
	l.now = func() time.Time { return now }

	for i := 1; i <= 3; i++ {
		if ok, _ := l.Allow(context.Background(), "1.2.3.4"); !ok {
			t.Fatalf("request %d rejected", i)
		}
	}
	if ok, remaining := l.Allow(context.Background(), "1.2.3.4"); ok || remaining != 0 {
		t.Fatalf("4th request: ok=%v remaining=%d", ok, remaining)
	}
	if ok, _ := l.Allow(context.Background(), "5.6.7.8"); !ok {
		t.Fatalf("other client rejected")
	}

	now = now.Add(2 * time.Minute)
	if ok, remaining := l.Allow(context.Background(), "1.2.3.4"); !ok || remaining != 2 {
		t.Fatalf("after window: ok=%v remaining=%d", ok, remaining)
	}
}

func TestSlidingWindowMemoryStaysBounded(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewSlidingWindow("test", 3, time.Minute)
	l.redis = func() *redis.Client { return nil }
	l.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		l.Allow(context.Background(), "1.2.3.4")
		now = now.Add(time.Millisecond)
	}
	require.Len(t, l.hits["1.2.3.4"], 3)
	l.Allow(context.Background(), "5.6.7.8")

	now = now.Add(2 * time.Minute)
	ok, remaining := l.Allow(context.Background(), "9.9.9.9")
	require.True(t, ok)
	require.Equal(t, 2, remaining)
	require.NotContains(t, l.hits, "1.2.3.4")
	require.NotContains(t, l.hits, "5.6.7.8")
	require.Len(t, l.hits, 1)
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	l := NewSlidingWindow("test", 2, time.Minute)
	l.redis = func() *redis.Client { return nil }

	r := gin.New()
	r.GET("/ping", RateLimit(l), func(c *gin.Context) { RespondOK(c, http.StatusOK, "pong", nil) })

	var w *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	}
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	env := decode(t, w)
	require.False(t, env.Success)
	require.Equal(t, rateLimitMessage, env.Message)
	require.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("AUDIT_PUBSUB_TOPIC", "")
	db := testdb.Open(t, &models.User{})
	user := seed(t, db, "alice", models.UserRoleUser)
	admin := seed(t, db, "root", models.UserRoleAdmin)
	inactive := seed(t, db, "bob", models.UserRoleUser)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	token := func(u *models.User) string {
		tok, err := utils.JwtGenerate(u.ID, string(u.Role))
		require.NoError(t, err)
		return tok
	}

	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		actor, _ := Actor(c.Request.Context())
		RespondOK(c, http.StatusOK, "", actor.UserID)
	})
	r.GET("/admin", AuthMiddleware(), Authorize(models.UserRoleAdmin), func(c *gin.Context) {
		RespondOK(c, http.StatusOK, "ok", nil)
	})
	r.GET("/optional", OptionalAuth(), func(c *gin.Context) {
		RespondOK(c, http.StatusOK, "", CtxValue(c.Request.Context()) != nil)
	})

	cases := []struct {
		name    string
		path    string
		token   string
		status  int
		message string
	}{
		{"missing token", "/me", "", http.StatusUnauthorized, "No token, authorization denied"},
		{"garbage token", "/me", "not-a-jwt", http.StatusUnauthorized, "Token is not valid"},
		{"inactive user", "/me", token(inactive), http.StatusUnauthorized, "User not found or inactive"},
		{"valid", "/me", token(user), http.StatusOK, ""},
		{"not admin", "/admin", token(user), http.StatusForbidden, "Insufficient permissions"},
		{"admin", "/admin", token(admin), http.StatusOK, "ok"},
		{"optional swallows errors", "/optional", "not-a-jwt", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tc.status, w.Code, w.Body.String())
			require.Equal(t, tc.message, decode(t, w).Message)
		})
	}
}

func TestAttachReportUsers(t *testing.T) {
	db := testdb.Open(t, &models.User{})
	owner := seed(t, db, "alice", models.UserRoleUser)
	admin := seed(t, db, "root", models.UserRoleAdmin)

	reports := []*models.Report{
		{ID: 1, SubmittedBy: owner.ID},
		{ID: 2, SubmittedBy: owner.ID, ReviewedBy: &admin.ID},
		{ID: 3, SubmittedBy: 999},
	}
	ctx := context.WithValue(context.Background(), loadersKey, NewLoaders(db))
	require.NoError(t, AttachReportUsers(ctx, reports...))

	require.Equal(t, "alice", reports[0].SubmittedByUser.Username)
	require.Nil(t, reports[0].ReviewedByUser)
	require.Equal(t, "root", reports[1].ReviewedByUser.Username)
	require.Empty(t, reports[1].ReviewedByUser.Role)
	require.Nil(t, reports[2].SubmittedByUser)
}

func TestRequestContextCorrelationId(t *testing.T) {
	r := gin.New()
	r.GET("/", RequestContext(), func(c *gin.Context) {
		id, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		RespondOK(c, http.StatusOK, id, nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "abc-123", w.Header().Get(CorrelationHeader))
	require.Equal(t, "abc-123", decode(t, w).Message)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, w.Header().Get(CorrelationHeader), 36)
}
