package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
	"github.com/noah-isme/starcoin-api/pkg/response"
)

type scheduleService interface {
	LessonsOnDate(ctx context.Context, date string, filter models.LessonFilter) ([]models.LessonPlan, error)
	LessonsInRange(ctx context.Context, from, to string, filter models.LessonFilter) ([]models.LessonPlan, error)
	Get(ctx context.Context, id string) (*models.LessonPlan, error)
	Create(ctx context.Context, req dto.CreateLessonsRequest) ([]models.LessonPlan, error)
	Update(ctx context.Context, id string, req dto.UpdateLessonRequest) (*models.LessonPlan, error)
	Delete(ctx context.Context, id string, mode models.DeleteMode) (int, error)
}

// ScheduleHandler exposes lesson plan endpoints.
type ScheduleHandler struct {
	schedule scheduleService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedule scheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// List godoc
// @Summary List lesson plans for a day or a date range
// @Tags Lessons
// @Produce json
// @Param date query string false "Single day (YYYY-MM-DD)"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Param classId query string false "Filter by class"
// @Param subgroupId query string false "Filter by subgroup"
// @Param archived query bool false "Lessons of archived classes"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var query dto.LessonQuery
	if !bindQuery(c, &query) {
		return
	}

	var (
		plans []models.LessonPlan
		err   error
	)
	switch {
	case query.Date != "":
		plans, err = h.schedule.LessonsOnDate(c.Request.Context(), query.Date, query.Filter())
	case query.From != "" && query.To != "":
		plans, err = h.schedule.LessonsInRange(c.Request.Context(), query.From, query.To, query.Filter())
	default:
		err = appErrors.Clone(appErrors.ErrValidation, "date or from/to is required")
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, nil)
}

// Get godoc
// @Summary Get lesson plan
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	plan, err := h.schedule.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Create godoc
// @Summary Schedule one or more lessons
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.CreateLessonsRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Router /lessons [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateLessonsRequest
	if !bindJSON(c, &req) {
		return
	}
	plans, err := h.schedule.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plans)
}

// Update godoc
// @Summary Edit lesson plan title, description or time
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.UpdateLessonRequest true "Lesson payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req dto.UpdateLessonRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.schedule.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Delete godoc
// @Summary Delete a lesson, or it and the later lessons of its series
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Param mode query string false "single or future" Enums(single, future)
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	removed, err := h.schedule.Delete(c.Request.Context(), c.Param("id"), models.DeleteMode(c.Query("mode")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}
