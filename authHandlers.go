package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/middlewares"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
)

const tokenCookie = "token"

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middlewares.RespondError(c, utils.NewValidationError("Invalid request body", utils.FieldError{Field: "body", Message: err.Error()}))
		return false
	}
	return true
}

// requestActor is only called behind AuthMiddleware.
func requestActor(c *gin.Context) models.ReportActor {
	actor, _ := middlewares.Actor(c.Request.Context())
	return actor
}

func setTokenCookie(c *gin.Context, token string) {
	maxAge := int(config.JwtTTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, token, maxAge, "/", "", config.IsProduction(), true)
}

func registerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if !bindJSON(c, &input) {
			return
		}
		info, err := models.Register(c.Request.Context(), &input)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		middlewares.RespondOK(c, http.StatusCreated, "User registered successfully", info)
	}
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input loginRequest
		if !bindJSON(c, &input) {
			return
		}
		if err := utils.ValidateStruct(&input); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		info, err := models.Login(c.Request.Context(), input.Username, input.Password)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		setTokenCookie(c, info.Token)
		middlewares.RespondOK(c, http.StatusOK, "Login successful", info)
	}
}

func profileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := models.GetUser(c.Request.Context(), requestActor(c).UserID)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "", gin.H{"user": user})
	}
}

func updateProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.UpdateProfile
		if !bindJSON(c, &input) {
			return
		}
		user, err := models.UpdateUserProfile(c.Request.Context(), requestActor(c).UserID, &input)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
	}
}

func changePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.ChangePasswordInput
		if !bindJSON(c, &input) {
			return
		}
		if err := models.ChangePassword(c.Request.Context(), requestActor(c).UserID, &input); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "Password changed successfully", nil)
	}
}

func refreshHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := models.RefreshToken(c.Request.Context(), requestActor(c).UserID)
		if err != nil {
			middlewares.RespondError(c, utils.NewUnauthenticated("User not found or inactive", err))
			return
		}
		setTokenCookie(c, info.Token)
		middlewares.RespondOK(c, http.StatusOK, "", info)
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		models.Logout(c.Request.Context(), requestActor(c))
		c.SetCookie(tokenCookie, "", -1, "/", "", config.IsProduction(), true)
		middlewares.RespondOK(c, http.StatusOK, "Logged out successfully", nil)
	}
}

func listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.Query("page"))
		limit, _ := strconv.Atoi(c.Query("limit"))
		role := models.UserRole(strings.TrimSpace(c.Query("role")))
		if role != "" && !role.IsValid() {
			middlewares.RespondError(c, utils.NewValidationError("", utils.FieldError{Field: "role", Message: "Invalid role"}))
			return
		}
		list, err := models.ListUsers(c.Request.Context(), models.UserFilter{
			Page:   page,
			Limit:  limit,
			Search: c.Query("search"),
			Role:   role,
		})
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "", list)
	}
}

func userStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input userStatusRequest
		if !bindJSON(c, &input) {
			return
		}
		if err := utils.ValidateStruct(&input); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		user, err := models.SetUserStatus(c.Request.Context(), requestActor(c), id, *input.IsActive)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		message := "User deactivated successfully"
		if *input.IsActive {
			message = "User activated successfully"
		}
		middlewares.RespondOK(c, http.StatusOK, message, gin.H{"user": user})
	}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		middlewares.RespondError(c, utils.NewValidationError("Invalid ID format"))
		return 0, false
	}
	return id, true
}
