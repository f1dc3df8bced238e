package middlewares

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
)

type authString string

const userKey = authString("auth")

// tokenFromRequest checks the Authorization bearer, then x-auth-token, then the token cookie.
func tokenFromRequest(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")); token != "" {
			return token
		}
	}
	if token := strings.TrimSpace(c.GetHeader("x-auth-token")); token != "" {
		return token
	}
	if token, err := c.Cookie("token"); err == nil {
		return strings.TrimSpace(token)
	}
	return ""
}

// ResolveToken verifies a bearer token and re-reads the user so deactivation takes effect immediately.
func ResolveToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := utils.JwtValidate(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, utils.NewUnauthenticated("Token expired", err)
		}
		return nil, utils.NewUnauthenticated("Token is not valid", err)
	}
	user, err := models.GetActiveUser(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, utils.ErrUserInactive) {
			return nil, utils.NewUnauthenticated("User not found or inactive", err)
		}
		return nil, err
	}
	return user, nil
}

func withUser(c *gin.Context, user *models.User) {
	ctx := context.WithValue(c.Request.Context(), userKey, user)
	ctx = utils.SetUserIdInContext(ctx, user.ID)
	ctx = utils.SetUserEmailInContext(ctx, user.Email)
	c.Request = c.Request.WithContext(ctx)
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			RespondError(c, utils.NewUnauthenticated("No token, authorization denied", nil))
			return
		}
		user, err := ResolveToken(c.Request.Context(), token)
		if err != nil {
			RespondError(c, err)
			return
		}
		withUser(c, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and ignores every failure.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFromRequest(c); token != "" {
			if user, err := ResolveToken(c.Request.Context(), token); err == nil {
				withUser(c, user)
			}
		}
		c.Next()
	}
}

// Authorize must run after AuthMiddleware.
func Authorize(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CtxValue(c.Request.Context())
		if user == nil {
			RespondError(c, utils.NewUnauthenticated("Authentication required", nil))
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		RespondError(c, utils.NewForbidden("Insufficient permissions"))
	}
}

func CtxValue(ctx context.Context) *models.User {
	raw, _ := ctx.Value(userKey).(*models.User)
	return raw
}

// Actor returns the caller of a report operation; ok is false for anonymous requests.
func Actor(ctx context.Context) (models.ReportActor, bool) {
	user := CtxValue(ctx)
	if user == nil {
		return models.ReportActor{}, false
	}
	return models.ReportActor{UserID: user.ID, Role: user.Role, Email: user.Email}, true
}
