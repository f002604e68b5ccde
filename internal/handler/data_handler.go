package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
	"github.com/noah-isme/starcoin-api/pkg/response"
)

// maxImportBytes bounds snapshot uploads.
const maxImportBytes = 32 << 20

type dataService interface {
	Export(ctx context.Context) (*models.Snapshot, error)
	ImportJSON(ctx context.Context, raw []byte) (*dto.ImportResult, error)
	Restore(ctx context.Context) error
	BackupInfo(ctx context.Context) (*models.BackupInfo, error)
	Clear(ctx context.Context, req dto.ClearDataRequest) error
	Stats(ctx context.Context) (*models.StorageStats, error)
}

// DataHandler exposes export, import and maintenance of the whole data set.
type DataHandler struct {
	data dataService
}

// NewDataHandler constructs DataHandler.
func NewDataHandler(data dataService) *DataHandler {
	return &DataHandler{data: data}
}

// Export godoc
// @Summary Download every collection as a JSON snapshot
// @Tags Data
// @Produce json
// @Success 200 {object} models.Snapshot
// @Router /data/export [get]
func (h *DataHandler) Export(c *gin.Context) {
	snapshot, err := h.data.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode snapshot"))
		return
	}
	day := snapshot.ExportDate
	if len(day) >= 10 {
		day = day[:10]
	}
	response.Attachment(c, fmt.Sprintf("starcoin-backup-%s.json", day), "application/json", payload)
}

// Import godoc
// @Summary Replace the collections present in a snapshot
// @Tags Data
// @Accept json
// @Produce json
// @Param payload body models.Snapshot true "Snapshot"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /data/import [post]
func (h *DataHandler) Import(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status, "snapshot too large"))
		return
	}
	result, err := h.data.ImportJSON(c.Request.Context(), raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Restore godoc
// @Summary Restore the automatic snapshot
// @Tags Data
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /data/restore [post]
func (h *DataHandler) Restore(c *gin.Context) {
	if err := h.data.Restore(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BackupInfo godoc
// @Summary Describe the automatic snapshot
// @Tags Data
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /data/backup [get]
func (h *DataHandler) BackupInfo(c *gin.Context) {
	info, err := h.data.BackupInfo(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// Clear godoc
// @Summary Delete every collection
// @Tags Data
// @Accept json
// @Param payload body dto.ClearDataRequest true "Confirmation"
// @Success 204
// @Router /data/clear [post]
func (h *DataHandler) Clear(c *gin.Context) {
	var req dto.ClearDataRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.data.Clear(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Storage usage under the application key prefix
// @Tags Data
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /data/stats [get]
func (h *DataHandler) Stats(c *gin.Context) {
	stats, err := h.data.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
