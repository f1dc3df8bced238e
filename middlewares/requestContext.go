package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/kvk_backend/utils"
)

const CorrelationHeader = "X-Correlation-Id"

// RequestContext stamps every request with a correlation id and the client address used in audit rows.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(CorrelationHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(CorrelationHeader, id)

		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), id)
		ctx = utils.SetClientInContext(ctx, c.ClientIP(), c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
