package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/pkg/response"
)

type shopService interface {
	Purchase(ctx context.Context, req dto.PurchaseRequest) (*dto.PurchaseResult, error)
	Refund(ctx context.Context, studentID, purchaseID string) (*dto.RefundResult, error)
}

// ShopHandler exposes redemption endpoints.
type ShopHandler struct {
	shop shopService
}

// NewShopHandler constructs ShopHandler.
func NewShopHandler(shop shopService) *ShopHandler {
	return &ShopHandler{shop: shop}
}

// Purchase godoc
// @Summary Redeem a prize for a student
// @Tags Shop
// @Accept json
// @Produce json
// @Param payload body dto.PurchaseRequest true "Purchase payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /shop/purchases [post]
func (h *ShopHandler) Purchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.shop.Purchase(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Refund godoc
// @Summary Refund a purchase
// @Tags Shop
// @Produce json
// @Param id path string true "Student ID"
// @Param purchaseId path string true "Purchase ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/purchases/{purchaseId}/refund [post]
func (h *ShopHandler) Refund(c *gin.Context) {
	result, err := h.shop.Refund(c.Request.Context(), c.Param("id"), c.Param("purchaseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
