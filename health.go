package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/middlewares"
)

var startedAt = time.Now()

type healthStatus struct {
	Uptime      float64 `json:"uptime"`
	Message     string  `json:"message"`
	Timestamp   string  `json:"timestamp"`
	Environment string  `json:"environment"`
	Version     string  `json:"version"`
	Database    string  `json:"database"`
	Redis       string  `json:"redis"`
}

func connectionState(ok bool) string {
	if ok {
		return "connected"
	}
	return "disconnected"
}

// healthHandler answers 503 while the database is unreachable; Redis is optional.
func healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		dbUp := config.DatabaseConnected()
		status := healthStatus{
			Uptime:      time.Since(startedAt).Seconds(),
			Message:     "OK",
			Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
			Environment: config.Environment(),
			Version:     config.AppVersion(),
			Database:    connectionState(dbUp),
			Redis:       connectionState(config.RedisConnected()),
		}
		if !dbUp {
			status.Message = "Database unavailable"
			c.JSON(http.StatusServiceUnavailable, middlewares.Envelope{Success: false, Data: status})
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "", status)
	}
}

var apiEndpoints = gin.H{
	"authentication": gin.H{
		"POST /api/auth/register":        "Register new user",
		"POST /api/auth/login":           "User login",
		"GET /api/auth/profile":          "Get user profile",
		"PUT /api/auth/profile":          "Update user profile",
		"PUT /api/auth/change-password":  "Change password",
		"POST /api/auth/refresh":         "Refresh token",
		"POST /api/auth/logout":          "Logout user",
		"GET /api/auth/users":            "List users (Admin only)",
		"PUT /api/auth/users/:id/status": "Activate or deactivate a user (Admin only)",
	},
	"reports": gin.H{
		"GET /api/reports":               "List reports with pagination and filtering",
		"POST /api/reports":              "Create new report",
		"GET /api/reports/:id":           "Get specific report",
		"PUT /api/reports/:id":           "Update report",
		"DELETE /api/reports/:id":        "Delete report",
		"POST /api/reports/:id/submit":   "Submit draft report",
		"POST /api/reports/:id/review":   "Review report (Admin only)",
		"GET /api/reports/export/excel":  "Export reports to Excel",
		"GET /api/reports/stats/summary": "Report counts for the caller",
	},
	"uploads": gin.H{
		"POST /api/upload/excel":       "Upload Excel for auto-fill",
		"POST /api/upload/attachments": "Upload file attachments",
		"GET /api/upload/template":     "Download Excel template",
		"GET /api/upload/files/*key":   "Download a stored attachment",
	},
	"dashboard": gin.H{
		"GET /api/dashboard/stats":  "Get dashboard statistics",
		"GET /api/dashboard/trends": "Get report trends",
		"GET /api/dashboard/system": "System overview (Admin only)",
	},
	"audit": gin.H{
		"GET /api/audit-logs": "Audit trail (Admin only)",
	},
	"system": gin.H{
		"GET /api/health": "Health check endpoint",
		"GET /api/docs":   "API documentation",
	},
}

func docsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "KVK Annual Report Management System API",
			"version":   config.AppVersion(),
			"endpoints": apiEndpoints,
		})
	}
}
