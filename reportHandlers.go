package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/middlewares"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/sheets"
	"github.com/mmdatafocus/kvk_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// reportFilterFromQuery reads the list/export query string shared by both endpoints.
func reportFilterFromQuery(c *gin.Context) (models.ReportFilter, error) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	filter := models.ReportFilter{
		Page:      page,
		Limit:     limit,
		Search:    c.Query("search"),
		KvkName:   c.Query("kvkName"),
		Status:    models.ReportStatus(strings.TrimSpace(c.Query("status"))),
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}
	var fields []utils.FieldError
	if filter.Status != "" && !filter.Status.IsValid() {
		fields = append(fields, utils.FieldError{Field: "status", Message: "Invalid status"})
	}
	from, ok := models.ParseDateBound(c.Query("dateFrom"), false)
	if !ok {
		fields = append(fields, utils.FieldError{Field: "dateFrom", Message: "Invalid date"})
	}
	to, ok := models.ParseDateBound(c.Query("dateTo"), true)
	if !ok {
		fields = append(fields, utils.FieldError{Field: "dateTo", Message: "Invalid date"})
	}
	if len(fields) > 0 {
		return filter, utils.NewValidationError("", fields...)
	}
	filter.DateFrom, filter.DateTo = from, to
	return filter, nil
}

// expectedVersion prefers the body version, then an If-Match header (quotes and W/ stripped).
func expectedVersion(c *gin.Context, input *models.NewReport) (*int, error) {
	if input.Version != nil {
		return input.Version, nil
	}
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" || raw == "*" {
		return nil, nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, utils.NewValidationError("", utils.FieldError{Field: "If-Match", Message: "Version must be an integer"})
	}
	return &v, nil
}

func createReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewReport
		if !bindJSON(c, &input) {
			return
		}
		report, err := models.CreateReport(c.Request.Context(), requestActor(c), &input)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		middlewares.RespondOK(c, http.StatusCreated, "Report created successfully", gin.H{"report": report})
	}
}

func listReportsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := reportFilterFromQuery(c)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		ctx := c.Request.Context()
		list, err := models.ListReports(ctx, requestActor(c), filter)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		if err := middlewares.AttachReportUsers(ctx, list.Reports...); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "", list)
	}
}

func getReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		report, err := models.GetReport(ctx, requestActor(c), id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		if err := middlewares.AttachReportUsers(ctx, report); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "", gin.H{"report": report})
	}
}

func updateReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input models.NewReport
		if !bindJSON(c, &input) {
			return
		}
		version, err := expectedVersion(c, &input)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		report, err := models.UpdateReport(c.Request.Context(), requestActor(c), id, &input, version)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.Header("ETag", strconv.Quote(strconv.Itoa(report.Version)))
		middlewares.RespondOK(c, http.StatusOK, "Report updated successfully", gin.H{"report": report})
	}
}

func deleteReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if _, err := models.DeleteReport(c.Request.Context(), requestActor(c), id); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "Report deleted successfully", nil)
	}
}

func submitReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		report, err := models.SubmitReport(c.Request.Context(), requestActor(c), id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "Report submitted successfully", gin.H{"report": report})
	}
}

func reviewReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input models.ReviewInput
		if !bindJSON(c, &input) {
			return
		}
		report, err := models.ReviewReport(c.Request.Context(), requestActor(c), id, &input)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "Report "+string(report.Status)+" successfully", gin.H{"report": report})
	}
}

func exportReportsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "reports.export", trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		filter, err := reportFilterFromQuery(c)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		actor := requestActor(c)
		reports, err := models.ReportsForExport(ctx, actor, filter)
		if err != nil {
			middlewares.RespondError(c, utils.NewUpstream("Failed to export reports", err))
			return
		}
		if err := middlewares.AttachReportUsers(ctx, reports...); err != nil {
			middlewares.RespondError(c, utils.NewUpstream("Failed to export reports", err))
			return
		}
		buf, err := sheets.ExportReports(reports)
		if err != nil {
			middlewares.RespondError(c, utils.NewUpstream("Failed to export reports", err))
			return
		}
		span.SetAttributes(attribute.Int("report.count", len(reports)))
		config.GetLogger().WithFields(logrus.Fields{
			"user_id": actor.UserID,
			"count":   len(reports),
			"bytes":   buf.Len(),
		}).Info("[reports.export]")

		c.Header("Content-Disposition", "attachment; filename="+sheets.ExportFilename(time.Now()))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

func reportSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := models.SummaryStats(c.Request.Context(), requestActor(c))
		if err != nil {
			middlewares.RespondError(c, utils.NewUpstream("Failed to fetch report statistics", err))
			return
		}
		middlewares.RespondOK(c, http.StatusOK, "", summary)
	}
}
