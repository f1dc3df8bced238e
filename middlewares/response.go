package middlewares

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/utils"
	"github.com/sirupsen/logrus"
)

// Envelope is the body shape of every /api response.
type Envelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Data    any                `json:"data,omitempty"`
	Errors  []utils.FieldError `json:"errors,omitempty"`
}

func RespondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// RespondError renders err through the envelope. Unknown errors become 500 and are logged;
// their detail is hidden in production.
func RespondError(c *gin.Context, err error) {
	appErr := utils.AsAppError(err)
	status := appErr.Status()
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		logServerError(c.Request.Context(), c.FullPath(), err)
		if !config.IsProduction() && appErr.Err != nil {
			message = appErr.Err.Error()
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message, Errors: appErr.Errors})
}

func logServerError(ctx context.Context, route string, err error) {
	fields := logrus.Fields{"route": route}
	if id, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		fields["correlationId"] = id
	}
	if !config.IsProduction() {
		fields["stack"] = string(debug.Stack())
	}
	config.GetLogger().WithFields(fields).WithError(err).Error("[api] request failed")
}
