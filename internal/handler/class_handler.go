package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/pkg/response"
)

type classService interface {
	List(ctx context.Context, archived bool) ([]models.Class, error)
	Get(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error)
	Update(ctx context.Context, id string, req dto.UpdateClassRequest) (*models.Class, error)
	Archive(ctx context.Context, id string) (int, error)
	Restore(ctx context.Context, id string) (*models.Class, error)
	Delete(ctx context.Context, id string) error
	AddSubgroup(ctx context.Context, classID string, req dto.SubgroupRequest) (*models.Subgroup, error)
	RenameSubgroup(ctx context.Context, classID, subgroupID string, req dto.SubgroupRequest) (*models.Subgroup, error)
	DeleteSubgroup(ctx context.Context, classID, subgroupID string) error
}

// ClassHandler exposes class and subgroup endpoints.
type ClassHandler struct {
	classes classService
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes classService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param archived query bool false "List archived classes"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	var query dto.ClassQuery
	if !bindQuery(c, &query) {
		return
	}
	classes, err := h.classes.List(c.Request.Context(), query.Archived)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Get godoc
// @Summary Get class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.CreateClassRequest
	if !bindJSON(c, &req) {
		return
	}
	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary Rename or recolor class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.UpdateClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req dto.UpdateClassRequest
	if !bindJSON(c, &req) {
		return
	}
	class, err := h.classes.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete class, detaching its students and removing its lessons
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 204
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.classes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Archive godoc
// @Summary Archive class and drop its lessons from today on
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/archive [post]
func (h *ClassHandler) Archive(c *gin.Context) {
	removed, err := h.classes.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removedLessons": removed}, nil)
}

// Restore godoc
// @Summary Restore archived class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/restore [post]
func (h *ClassHandler) Restore(c *gin.Context) {
	class, err := h.classes.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// AddSubgroup godoc
// @Summary Add subgroup to class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.SubgroupRequest true "Subgroup payload"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/subgroups [post]
func (h *ClassHandler) AddSubgroup(c *gin.Context) {
	var req dto.SubgroupRequest
	if !bindJSON(c, &req) {
		return
	}
	subgroup, err := h.classes.AddSubgroup(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subgroup)
}

// RenameSubgroup godoc
// @Summary Rename subgroup
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param subgroupId path string true "Subgroup ID"
// @Param payload body dto.SubgroupRequest true "Subgroup payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/subgroups/{subgroupId} [put]
func (h *ClassHandler) RenameSubgroup(c *gin.Context) {
	var req dto.SubgroupRequest
	if !bindJSON(c, &req) {
		return
	}
	subgroup, err := h.classes.RenameSubgroup(c.Request.Context(), c.Param("id"), c.Param("subgroupId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subgroup, nil)
}

// DeleteSubgroup godoc
// @Summary Delete subgroup
// @Tags Classes
// @Param id path string true "Class ID"
// @Param subgroupId path string true "Subgroup ID"
// @Success 204
// @Router /classes/{id}/subgroups/{subgroupId} [delete]
func (h *ClassHandler) DeleteSubgroup(c *gin.Context) {
	if err := h.classes.DeleteSubgroup(c.Request.Context(), c.Param("id"), c.Param("subgroupId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
