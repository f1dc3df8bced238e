package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/middlewares"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
	"github.com/mmdatafocus/kvk_backend/workflow"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

const defaultPort = "8080"

var tracer = otel.Tracer("kvk-backend")

func customNotFoundHandler(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.URL.Path == "/api" {
		c.JSON(http.StatusNotFound, gin.H{
			"success":            false,
			"message":            fmt.Sprintf("API endpoint not found: %s %s", c.Request.Method, c.Request.URL.Path),
			"availableEndpoints": "/api/docs",
		})
		return
	}
	c.JSON(http.StatusNotFound, middlewares.Envelope{Success: false, Message: "Not found"})
}

func recoverPanic(c *gin.Context, recovered any) {
	middlewares.RespondError(c, utils.NewUpstream("Internal server error", fmt.Errorf("panic: %v", recovered)))
}

// readinessGate answers 503 until the database connection exists.
func readinessGate(c *gin.Context) {
	switch c.Request.URL.Path {
	case "/healthz":
		c.Status(http.StatusNoContent)
		c.Abort()
		return
	case "/api/health", "/api/docs":
		c.Next()
		return
	}
	if config.GetDB() == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, middlewares.Envelope{Success: false, Message: "Service is starting, please retry"})
		return
	}
	c.Next()
}

// corsConfig reflects any origin outside production. Production only admits CORS_ALLOWED_ORIGINS.
func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	allowedOrigins := utils.SplitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS"))
	switch {
	case !config.IsProduction():
		cfg.AllowOriginFunc = func(string) bool { return true }
	case len(allowedOrigins) > 0:
		cfg.AllowOrigins = allowedOrigins
	default:
		cfg.AllowOriginFunc = func(string) bool { return false }
	}
	cfg.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	cfg.AddAllowHeaders("Origin", "Content-Type", "Authorization", "x-auth-token", "If-Match", middlewares.CorrelationHeader)
	cfg.AddExposeHeaders("Content-Length", "Content-Disposition", "ETag", "RateLimit-Limit", "RateLimit-Remaining", "Retry-After", middlewares.CorrelationHeader)
	cfg.AllowCredentials = true
	return cfg
}

// newRouter wires the middleware chain and the /api route table.
func newRouter(logger *logrus.Logger, store utils.ObjectStore) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(middlewares.RequestContext())
	r.Use(readinessGate)
	r.Use(cors.New(corsConfig()))
	r.Use(middlewares.LoaderMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.CustomRecovery(recoverPanic))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api", middlewares.GlobalRateLimit())
	api.GET("/health", healthHandler())
	api.GET("/docs", docsHandler())

	authLimit := middlewares.AuthRateLimit()
	requireAuth := middlewares.AuthMiddleware()
	adminOnly := middlewares.Authorize(models.UserRoleAdmin)

	auth := api.Group("/auth")
	auth.POST("/register", authLimit, registerHandler())
	auth.POST("/login", authLimit, loginHandler())
	auth.GET("/profile", requireAuth, profileHandler())
	auth.PUT("/profile", requireAuth, updateProfileHandler())
	auth.PUT("/change-password", requireAuth, changePasswordHandler())
	auth.POST("/refresh", requireAuth, refreshHandler())
	auth.POST("/logout", requireAuth, logoutHandler())
	auth.GET("/users", requireAuth, adminOnly, listUsersHandler())
	auth.PUT("/users/:id/status", requireAuth, adminOnly, userStatusHandler())

	reports := api.Group("/reports", requireAuth)
	reports.POST("", createReportHandler())
	reports.GET("", listReportsHandler())
	reports.GET("/export/excel", exportReportsHandler())
	reports.GET("/stats/summary", reportSummaryHandler())
	reports.GET("/:id", getReportHandler())
	reports.PUT("/:id", updateReportHandler())
	reports.DELETE("/:id", deleteReportHandler())
	reports.POST("/:id/submit", submitReportHandler())
	reports.POST("/:id/review", adminOnly, reviewReportHandler())

	upload := api.Group("/upload", requireAuth)
	upload.POST("/excel", uploadExcelHandler())
	upload.POST("/attachments", uploadAttachmentsHandler(store))
	upload.GET("/template", templateHandler())
	upload.GET("/files/*key", fileDownloadHandler(store))

	dashboard := api.Group("/dashboard", requireAuth)
	dashboard.GET("/stats", dashboardStatsHandler())
	dashboard.GET("/trends", dashboardTrendsHandler())
	dashboard.GET("/system", adminOnly, systemOverviewHandler())

	api.GET("/audit-logs", requireAuth, adminOnly, auditLogsHandler())

	r.NoRoute(customNotFoundHandler)
	return r
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := config.GetLogger()
	if err := utils.CheckJwtSecret(); err != nil {
		logger.Fatal(err)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Listen before dependencies are up; the readiness gate answers 503 meanwhile.
	r := newRouter(logger, utils.NewObjectStore(config.UploadDir()))
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	if os.Getenv("REDIS_ADDRESS") != "" {
		config.ConnectRedisWithRetry()
	} else {
		logger.WithFields(logrus.Fields{"field": "redis"}).Warn("REDIS_ADDRESS not set; running without cache, locks and shared rate limits")
	}

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	if !config.BoolFromEnv("SKIP_MIGRATIONS", false) {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	// Audit rows are published after commit by the outbox dispatcher.
	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())
	defer cancelDispatcher()
	dispatcherDone := make(chan struct{})
	if config.AuditTopic() != "" {
		go func() {
			defer close(dispatcherDone)
			workflow.NewAuditDispatcher(db, logger).Run(dispatcherCtx)
		}()
	} else {
		close(dispatcherDone)
	}

	logger.WithFields(logrus.Fields{
		"port":        port,
		"environment": config.Environment(),
		"version":     config.AppVersion(),
	}).Info("server ready")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	cancelDispatcher()
	<-dispatcherDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger logs the errors handlers attached to the gin context.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.WithFields(logrus.Fields{
				"method": c.Request.Method,
				"path":   c.FullPath(),
				"status": c.Writer.Status(),
			}).Warn(c.Errors.String())
		}
	}
}
