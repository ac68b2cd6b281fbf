package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"video_transcode_service/internal/videos/app"
	"video_transcode_service/internal/videos/domain"
	errprocess "video_transcode_service/pkg/err"
	"video_transcode_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// VideoHandler 定義影片上傳處理器, the HTTP boundary of the pipeline.
type VideoHandler struct {
	Usecase app.VideoUseCase
	// directory where multipart uploads are staged before ingestion
	UploadTmpDir string
}

// statusFromErr maps the error taxonomy onto HTTP status codes. InvalidInput
// and EncoderFailure never reach this mapping directly, they are captured on
// the record during transcode.
func statusFromErr(err error) int {
	switch errprocess.KindOf(err) {
	case errprocess.NotFound:
		return http.StatusNotFound
	case errprocess.InvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// List returns a page of records, most recently created first
func (h *VideoHandler) List(c *fiber.Ctx) error {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.Query("pageSize", "10"))
	if err != nil {
		pageSize = 10
	}

	result, err := h.Usecase.List(c.Context(), page, pageSize)
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

// GetOne get a single record with fresh signed URLs
func (h *VideoHandler) GetOne(c *fiber.Ctx) error {
	rec, err := h.Usecase.GetOne(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rec)
}

// Upload receives a multipart upload, stages it locally and hands it to the
// ingestion service. MIME class is checked here, before the service runs.
func (h *VideoHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "video/") {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("invalid file type [%s], send a video", mimeType),
		})
	}

	tmpDir := h.UploadTmpDir
	if tmpDir == "" {
		tmpDir = filepath.Join("tmp", "uploads")
	}
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "create staging directory failed"})
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	tempPath := filepath.Join(tmpDir, uuid.New().String()+ext)
	if err := c.SaveFile(fileHeader, tempPath); err != nil {
		logger.Log.Errorf(fmt.Sprintf("fileName[%s] stage upload failed :", fileHeader.Filename), err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "stage upload failed"})
	}

	rec, err := h.Usecase.ProcessUpload(c.Context(), domain.UploadVideoReq{
		OriginalFilename: fileHeader.Filename,
		MimeType:         mimeType,
		Size:             fileHeader.Size,
		LocalPath:        tempPath,
	})
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rec)
}

type presignReq struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// Presign hands out a write signed URL for a direct-to-storage upload
func (h *VideoHandler) Presign(c *fiber.Ctx) error {
	var req presignReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Filename == "" || req.ContentType == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "filename and contentType are required"})
	}

	res, err := h.Usecase.Presign(c.Context(), req.Filename, req.ContentType)
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

type completeReq struct {
	ID   string `json:"id"`
	Size int64  `json:"size"`
}

// CompleteUpload confirms a direct upload and transcodes inline; the response
// carries the terminal record
func (h *VideoHandler) CompleteUpload(c *fiber.Ctx) error {
	var req completeReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "id is required"})
	}

	rec, err := h.Usecase.CompleteUpload(c.Context(), req.ID, req.Size)
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rec)
}

// Download streams a variant back as an attachment. Once the stream has
// started fasthttp terminates the connection on read errors, headers are
// never rewritten.
func (h *VideoHandler) Download(c *fiber.Ctx) error {
	variant, ok := domain.ParseVariant(c.Params("variant"))
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "variant must be original or low"})
	}

	res, err := h.Usecase.Download(c.Context(), c.Params("id"), variant)
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, res.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.Filename))
	c.Set(fiber.HeaderCacheControl, "no-store")

	size := -1
	if res.Size > 0 {
		size = int(res.Size)
	}
	return c.SendStream(res.Stream, size)
}
