package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/internal/service"
	"github.com/noah-isme/starcoin-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentWithLedger, error)
	Get(ctx context.Context, id string) (*models.StudentWithLedger, error)
	Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, id string) error
	RecordLesson(ctx context.Context, id, date string, req dto.RecordLessonRequest) (*models.StudentWithLedger, error)
	Ledger(ctx context.Context, id string) (*models.LedgerSummary, error)
	PurchaseHistory(ctx context.Context, id string) ([]models.PurchaseHistoryEntry, error)
	ExportPurchases(ctx context.Context, id, format string) (*service.ExportFile, error)
	ClassStats(ctx context.Context, filter models.StudentFilter) (*models.ClassStats, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students with their balances
// @Tags Students
// @Produce json
// @Param classId query string false "Filter by class"
// @Param subgroupId query string false "Filter by subgroup"
// @Param archived query bool false "List students of archived classes"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var query dto.StudentQuery
	if !bindQuery(c, &query) {
		return
	}
	students, err := h.students.List(c.Request.Context(), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil, map[string]interface{}{"total": len(students)})
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.CreateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RecordLesson godoc
// @Summary Record attendance and stars for one lesson date
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param date path string true "Lesson date (YYYY-MM-DD)"
// @Param payload body dto.RecordLessonRequest true "Lesson record"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/lessons/{date} [put]
func (h *StudentHandler) RecordLesson(c *gin.Context) {
	var req dto.RecordLessonRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.RecordLesson(c.Request.Context(), c.Param("id"), c.Param("date"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Ledger godoc
// @Summary Get the star balance of a student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/ledger [get]
func (h *StudentHandler) Ledger(c *gin.Context) {
	ledger, err := h.students.Ledger(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger, nil)
}

// Purchases godoc
// @Summary List purchases of a student, newest first
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/purchases [get]
func (h *StudentHandler) Purchases(c *gin.Context) {
	history, err := h.students.PurchaseHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	page, pagination := paginate(c, history)
	response.JSON(c, http.StatusOK, page, pagination)
}

// ExportPurchases godoc
// @Summary Download the purchase history as CSV or PDF
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /students/{id}/purchases/export [get]
func (h *StudentHandler) ExportPurchases(c *gin.Context) {
	file, err := h.students.ExportPurchases(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// ClassStats godoc
// @Summary Aggregate star statistics over a filtered roster
// @Tags Students
// @Produce json
// @Param classId query string false "Filter by class"
// @Param subgroupId query string false "Filter by subgroup"
// @Param archived query bool false "Use archived classes"
// @Success 200 {object} response.Envelope
// @Router /class-stats [get]
func (h *StudentHandler) ClassStats(c *gin.Context) {
	var query dto.StudentQuery
	if !bindQuery(c, &query) {
		return
	}
	stats, err := h.students.ClassStats(c.Request.Context(), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
