package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/internal/service"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
	"github.com/noah-isme/starcoin-api/pkg/response"
)

type attachmentService interface {
	Attach(ctx context.Context, lessonID string, upload service.AttachmentUpload) (*models.LessonFile, error)
	Detach(ctx context.Context, lessonID, fileID string) error
	Link(ctx context.Context, lessonID, fileID string) (*dto.FileLink, error)
	Open(ctx context.Context, token string) (*service.AttachmentDownload, error)
}

// AttachmentHandler exposes lesson file upload and download endpoints.
type AttachmentHandler struct {
	attachments attachmentService
}

// NewAttachmentHandler constructs AttachmentHandler.
func NewAttachmentHandler(attachments attachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Upload godoc
// @Summary Attach a file to a lesson plan
// @Tags Lessons
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Lesson ID"
// @Param file formData file true "File"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /lessons/{id}/files [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	content, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read upload"))
		return
	}
	defer content.Close()

	file, err := h.attachments.Attach(c.Request.Context(), c.Param("id"), service.AttachmentUpload{
		Filename: header.Filename,
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
		Content:  content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, file)
}

// Detach godoc
// @Summary Remove a file from a lesson plan
// @Tags Lessons
// @Param id path string true "Lesson ID"
// @Param fileId path string true "File ID"
// @Success 204
// @Router /lessons/{id}/files/{fileId} [delete]
func (h *AttachmentHandler) Detach(c *gin.Context) {
	if err := h.attachments.Detach(c.Request.Context(), c.Param("id"), c.Param("fileId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Link godoc
// @Summary Issue a signed download link for a lesson file
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Param fileId path string true "File ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/files/{fileId}/link [get]
func (h *AttachmentHandler) Link(c *gin.Context) {
	link, err := h.attachments.Link(c.Request.Context(), c.Param("id"), c.Param("fileId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Download godoc
// @Summary Download a lesson file through a signed link
// @Tags Lessons
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /files/{token} [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	download, err := h.attachments.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.Content.Close()

	mimeType := download.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, download.Size, mimeType, download.Content, map[string]string{
		"Content-Disposition": fmt.Sprintf(`inline; filename="%s"`, download.Filename),
		"Cache-Control":       "private, max-age=60",
	})
}
