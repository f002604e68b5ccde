package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/internal/service"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
	"github.com/noah-isme/starcoin-api/pkg/response"
)

type coinService interface {
	Denominations() []int
	Print(ctx context.Context, req dto.PrintCoinsRequest) (*service.CoinPrintResult, error)
	History(ctx context.Context) ([]models.PrintRecord, error)
	DeleteRecord(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) error
	NextBatchNumber(ctx context.Context, denomination int) (int, error)
}

// CoinHandler exposes printable coin sheets and their history.
type CoinHandler struct {
	coins coinService
}

// NewCoinHandler constructs CoinHandler.
func NewCoinHandler(coins coinService) *CoinHandler {
	return &CoinHandler{coins: coins}
}

// Denominations godoc
// @Summary List printable coin denominations
// @Tags Coins
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /coins/denominations [get]
func (h *CoinHandler) Denominations(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.coins.Denominations(), nil)
}

// Print godoc
// @Summary Print a numbered batch of coins
// @Tags Coins
// @Accept json
// @Produce application/pdf
// @Param payload body dto.PrintCoinsRequest true "Print payload"
// @Success 200 {file} file
// @Router /coins/print [post]
func (h *CoinHandler) Print(c *gin.Context) {
	var req dto.PrintCoinsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.coins.Print(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Sheet.Filename, result.Sheet.ContentType, result.Sheet.Payload)
}

// History godoc
// @Summary List printed batches, newest first
// @Tags Coins
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /coins/history [get]
func (h *CoinHandler) History(c *gin.Context) {
	history, err := h.coins.History(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	page, pagination := paginate(c, history)
	response.JSON(c, http.StatusOK, page, pagination)
}

// DeleteRecord godoc
// @Summary Delete one print record
// @Tags Coins
// @Param id path string true "Record ID"
// @Success 204
// @Router /coins/history/{id} [delete]
func (h *CoinHandler) DeleteRecord(c *gin.Context) {
	if err := h.coins.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClearHistory godoc
// @Summary Delete the whole print history
// @Tags Coins
// @Success 204
// @Router /coins/history [delete]
func (h *CoinHandler) ClearHistory(c *gin.Context) {
	if err := h.coins.ClearHistory(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// NextBatch godoc
// @Summary Suggest the next batch number
// @Tags Coins
// @Produce json
// @Param denomination query int false "Restrict to one denomination"
// @Success 200 {object} response.Envelope
// @Router /coins/next-batch [get]
func (h *CoinHandler) NextBatch(c *gin.Context) {
	var denomination int
	if raw := c.Query("denomination"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "denomination must be a number"))
			return
		}
		denomination = value
	}
	next, err := h.coins.NextBatchNumber(c.Request.Context(), denomination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"batchNumber": next}, nil)
}
