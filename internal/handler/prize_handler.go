package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/pkg/response"
)

type prizeService interface {
	List(ctx context.Context, archived bool) ([]models.Prize, error)
	Get(ctx context.Context, id string) (*models.Prize, error)
	Create(ctx context.Context, req dto.PrizeRequest) (*models.Prize, error)
	Update(ctx context.Context, id string, req dto.PrizeRequest) (*models.Prize, error)
	Delete(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) (*models.Prize, error)
	Restore(ctx context.Context, id string) (*models.Prize, error)
}

// PrizeHandler exposes the prize catalog.
type PrizeHandler struct {
	prizes prizeService
}

// NewPrizeHandler constructs PrizeHandler.
func NewPrizeHandler(prizes prizeService) *PrizeHandler {
	return &PrizeHandler{prizes: prizes}
}

// List godoc
// @Summary List prizes
// @Tags Prizes
// @Produce json
// @Param archived query bool false "List archived prizes instead of active ones"
// @Success 200 {object} response.Envelope
// @Router /prizes [get]
func (h *PrizeHandler) List(c *gin.Context) {
	var query dto.PrizeQuery
	if !bindQuery(c, &query) {
		return
	}
	prizes, err := h.prizes.List(c.Request.Context(), query.Archived)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prizes, nil)
}

// Get godoc
// @Summary Get prize
// @Tags Prizes
// @Produce json
// @Param id path string true "Prize ID"
// @Success 200 {object} response.Envelope
// @Router /prizes/{id} [get]
func (h *PrizeHandler) Get(c *gin.Context) {
	prize, err := h.prizes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prize, nil)
}

// Create godoc
// @Summary Create prize
// @Tags Prizes
// @Accept json
// @Produce json
// @Param payload body dto.PrizeRequest true "Prize payload"
// @Success 201 {object} response.Envelope
// @Router /prizes [post]
func (h *PrizeHandler) Create(c *gin.Context) {
	var req dto.PrizeRequest
	if !bindJSON(c, &req) {
		return
	}
	prize, err := h.prizes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, prize)
}

// Update godoc
// @Summary Replace prize
// @Tags Prizes
// @Accept json
// @Produce json
// @Param id path string true "Prize ID"
// @Param payload body dto.PrizeRequest true "Prize payload"
// @Success 200 {object} response.Envelope
// @Router /prizes/{id} [put]
func (h *PrizeHandler) Update(c *gin.Context) {
	var req dto.PrizeRequest
	if !bindJSON(c, &req) {
		return
	}
	prize, err := h.prizes.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prize, nil)
}

// Delete godoc
// @Summary Delete prize
// @Tags Prizes
// @Param id path string true "Prize ID"
// @Success 204
// @Router /prizes/{id} [delete]
func (h *PrizeHandler) Delete(c *gin.Context) {
	if err := h.prizes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Archive godoc
// @Summary Archive an unlimited prize
// @Tags Prizes
// @Produce json
// @Param id path string true "Prize ID"
// @Success 200 {object} response.Envelope
// @Router /prizes/{id}/archive [post]
func (h *PrizeHandler) Archive(c *gin.Context) {
	prize, err := h.prizes.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prize, nil)
}

// Restore godoc
// @Summary Restore an archived prize
// @Tags Prizes
// @Produce json
// @Param id path string true "Prize ID"
// @Success 200 {object} response.Envelope
// @Router /prizes/{id}/restore [post]
func (h *PrizeHandler) Restore(c *gin.Context) {
	prize, err := h.prizes.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prize, nil)
}
