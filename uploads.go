package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/middlewares"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/sheets"
	"github.com/mmdatafocus/kvk_backend/utils"
	"github.com/sirupsen/logrus"
)

const (
	maxUploadSizeBytes int64 = 10 * 1024 * 1024
	maxAttachmentFiles       = 5
	thumbnailWidth           = 200
)

var attachmentMimeTypes = map[string]bool{
	"application/vnd.ms-excel": true,
	"application/pdf":          true,
	"image/jpeg":               true,
	"image/png":                true,
	"image/gif":                true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

var (
	errFileTooLarge    = utils.NewValidationError("File too large. Maximum size is 10MB.")
	errInvalidFileType = utils.NewValidationError("Invalid file type. Only Excel, PDF, and image files are allowed.")
)

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxUploadSizeBytes {
		return nil, errFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadSizeBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxUploadSizeBytes {
		return nil, errFileTooLarge
	}
	return data, nil
}

// uploadMimeType trusts the part header and sniffs only when it is missing or generic.
func uploadMimeType(fh *multipart.FileHeader, data []byte) string {
	mimeType := strings.TrimSpace(strings.Split(fh.Header.Get("Content-Type"), ";")[0])
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = strings.Split(http.DetectContentType(data), ";")[0]
	}
	return strings.ToLower(mimeType)
}

func uploadExcelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		fh, err := c.FormFile("excel")
		if err != nil {
			middlewares.RespondError(c, utils.NewValidationError("No Excel file uploaded"))
			return
		}
		data, err := readUpload(fh)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}

		mode := c.DefaultQuery("mode", "template")
		var result *sheets.Result
		if mode == "workbook" {
			result, err = sheets.ParseWorkbook(bytes.NewReader(data))
		} else {
			result, err = sheets.ParseSingleRow(bytes.NewReader(data))
		}
		if err != nil {
			if errors.Is(err, sheets.ErrEmptyWorkbook) {
				middlewares.RespondError(c, utils.NewValidationError(err.Error()))
				return
			}
			middlewares.RespondError(c, utils.NewUpstream("Failed to process Excel file", err))
			return
		}

		actor := requestActor(c)
		models.RecordSystemEvent(c.Request.Context(), actor, map[string]any{
			"action":   "excel_upload",
			"filename": fh.Filename,
			"size":     fh.Size,
			"mode":     mode,
			"warnings": len(result.Warnings),
		})
		logger.WithFields(logrus.Fields{
			"user_id":  actor.UserID,
			"filename": fh.Filename,
			"mode":     mode,
			"warnings": len(result.Warnings),
		}).Info("[upload.excel]")

		middlewares.RespondOK(c, http.StatusOK, "Excel data processed successfully", result)
	}
}

type storedUpload struct {
	keys  []string
	store utils.ObjectStore
}

func (s *storedUpload) put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := s.store.Put(ctx, key, data, contentType); err != nil {
		return err
	}
	s.keys = append(s.keys, key)
	return nil
}

// rollback removes every object written so far.
func (s *storedUpload) rollback(ctx context.Context) {
	for _, key := range s.keys {
		if err := s.store.Delete(ctx, key); err != nil {
			config.LogError(config.GetLogger(), "main", "storedUpload.rollback", key, nil, err)
		}
	}
	s.keys = nil
}

func attachmentObjectKey(now time.Time, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return path.Join("attachments", now.Format("2006/01"), "files-"+uuid.NewString()+ext)
}

func thumbnailObjectKey(objectKey string) string {
	dir := path.Dir(objectKey)
	filename := strings.TrimSuffix(path.Base(objectKey), path.Ext(objectKey)) + ".jpg"
	return path.Join(dir, "thumbnails", filename)
}

func createThumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	thumbnail := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func uploadAttachmentsHandler(store utils.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()

		form, err := c.MultipartForm()
		if err != nil || len(form.File["files"]) == 0 {
			middlewares.RespondError(c, utils.NewValidationError("No files uploaded"))
			return
		}
		headers := form.File["files"]
		if len(headers) > maxAttachmentFiles {
			middlewares.RespondError(c, utils.NewValidationError(fmt.Sprintf("Too many files. Maximum is %d.", maxAttachmentFiles)))
			return
		}

		var reportID int
		if raw := strings.TrimSpace(c.PostForm("reportId")); raw != "" {
			reportID, err = strconv.Atoi(raw)
			if err != nil || reportID <= 0 {
				middlewares.RespondError(c, utils.NewValidationError("", utils.FieldError{Field: "reportId", Message: "Invalid report id"}))
				return
			}
		}

		type pendingFile struct {
			header   *multipart.FileHeader
			data     []byte
			mimeType string
		}
		pending := make([]pendingFile, 0, len(headers))
		for _, fh := range headers {
			data, err := readUpload(fh)
			if err != nil {
				middlewares.RespondError(c, err)
				return
			}
			mimeType := uploadMimeType(fh, data)
			if !attachmentMimeTypes[mimeType] {
				middlewares.RespondError(c, errInvalidFileType)
				return
			}
			pending = append(pending, pendingFile{header: fh, data: data, mimeType: mimeType})
		}

		now := time.Now().UTC()
		stored := &storedUpload{store: store}
		attachments := make([]models.Attachment, 0, len(pending))
		var totalSize int64
		for _, p := range pending {
			key := attachmentObjectKey(now, p.header.Filename)
			if err := stored.put(ctx, key, p.data, p.mimeType); err != nil {
				stored.rollback(ctx)
				middlewares.RespondError(c, utils.NewUpstream("Failed to upload files", err))
				return
			}
			att := models.Attachment{
				Filename:     path.Base(key),
				OriginalName: p.header.Filename,
				Path:         key,
				URL:          utils.BuildObjectAccessURL(key),
				Mimetype:     p.mimeType,
				Size:         int64(len(p.data)),
				UploadedAt:   now,
			}
			if imageMimeTypes[p.mimeType] {
				thumbKey := thumbnailObjectKey(key)
				thumb, err := createThumbnail(p.data)
				if err == nil {
					err = stored.put(ctx, thumbKey, thumb, "image/jpeg")
				}
				if err != nil {
					logger.WithFields(logrus.Fields{"object_key": key}).Warn("[upload.thumbnail] " + err.Error())
				} else {
					att.ThumbnailPath = thumbKey
				}
			}
			totalSize += att.Size
			attachments = append(attachments, att)
		}

		actor := requestActor(c)
		data := gin.H{"attachments": attachments}
		if reportID > 0 {
			report, err := models.AttachFiles(ctx, actor, reportID, attachments)
			if err != nil {
				stored.rollback(ctx)
				middlewares.RespondError(c, err)
				return
			}
			data["report"] = report
		}

		models.RecordSystemEvent(ctx, actor, map[string]any{
			"action":    "file_upload",
			"fileCount": len(attachments),
			"totalSize": totalSize,
		})
		logger.WithFields(logrus.Fields{
			"user_id":    actor.UserID,
			"file_count": len(attachments),
			"total_size": totalSize,
			"provider":   utils.GetStorageProvider(),
			"report_id":  reportID,
		}).Info("[upload.attachments]")

		middlewares.RespondOK(c, http.StatusOK, "Files uploaded successfully", data)
	}
}

func templateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		buf, err := sheets.GenerateTemplate()
		if err != nil {
			middlewares.RespondError(c, utils.NewUpstream("Failed to generate template", err))
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+sheets.TemplateFilename)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

// fileDownloadHandler serves objects kept by the local store; GCS objects are fetched from the bucket URL.
func fileDownloadHandler(store utils.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		local, ok := store.(*utils.LocalStore)
		if !ok {
			middlewares.RespondError(c, utils.NewNotFound("File not found"))
			return
		}
		p, err := local.Path(strings.TrimPrefix(c.Param("key"), "/"))
		if err != nil {
			middlewares.RespondError(c, utils.NewValidationError("Invalid file key"))
			return
		}
		if info, err := os.Stat(p); err != nil || info.IsDir() {
			middlewares.RespondError(c, utils.NewNotFound("File not found"))
			return
		}
		c.File(p)
	}
}
