package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/kvk_backend/middlewares"
	"github.com/mmdatafocus/kvk_backend/models/reports"
	"github.com/mmdatafocus/kvk_backend/utils"
)

func dashboardStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := reports.DashboardStats(c.Request.Context(), requestActor(c))
		if err != nil {
			middlewares.RespondError(c, utils.NewUpstream("Failed to fetch dashboard statistics", err))
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "", stats)
	}
}

func dashboardTrendsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		months, _ := strconv.Atoi(c.DefaultQuery("months", "12"))
		trends, err := reports.Trends(c.Request.Context(), requestActor(c), months, time.Now())
		if err != nil {
			middlewares.RespondError(c, utils.NewUpstream("Failed to fetch trends data", err))
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "", trends)
	}
}

func systemOverviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		overview, err := reports.SystemOverview(c.Request.Context())
		if err != nil {
			middlewares.RespondError(c, utils.NewUpstream("Failed to fetch system overview", err))
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "", overview)
	}
}
