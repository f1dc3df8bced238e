package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/kvk_backend/middlewares"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
)

// auditLogsHandler pages the trail newest first; after_id is the last id of the previous page.
func auditLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		afterID, _ := strconv.Atoi(c.Query("after_id"))
		limit, _ := strconv.Atoi(c.Query("limit"))
		resourceID, _ := strconv.Atoi(c.Query("resourceId"))
		filter := models.AuditFilter{
			AfterId:      afterID,
			Limit:        limit,
			Query:        c.Query("q"),
			Action:       models.AuditAction(strings.ToUpper(strings.TrimSpace(c.Query("action")))),
			ResourceType: models.AuditResourceType(strings.ToUpper(strings.TrimSpace(c.Query("resourceType")))),
			ResourceId:   resourceID,
		}
		page, err := models.ListAuditLogs(c.Request.Context(), filter)
		if err != nil {
			middlewares.RespondError(c, utils.NewUpstream("Failed to fetch audit logs", err))
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "", page)
	}
}
