package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/starcoin-api/internal/models"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
	"github.com/noah-isme/starcoin-api/pkg/response"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// bindJSON decodes the request body into dst and writes a validation error
// response when that fails.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return false
	}
	return true
}

// paginate slices items when the request carries a page or limit query
// parameter; otherwise every item is returned without pagination metadata.
func paginate[T any](c *gin.Context, items []T) ([]T, *models.Pagination) {
	pageRaw, limitRaw := c.Query("page"), c.Query("limit")
	if pageRaw == "" && limitRaw == "" {
		return items, nil
	}
	page, err := strconv.Atoi(pageRaw)
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(limitRaw)
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	start := (page - 1) * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], &models.Pagination{Page: page, PageSize: size, TotalCount: len(items)}
}
