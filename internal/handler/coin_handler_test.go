package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/internal/service"
)

type coinServiceMock struct {
	denomination int
	printed      dto.PrintCoinsRequest
}

func (m *coinServiceMock) Denominations() []int { return []int{1, 2, 5} }

func (m *coinServiceMock) Print(ctx context.Context, req dto.PrintCoinsRequest) (*service.CoinPrintResult, error) {
	m.printed = req
	return &service.CoinPrintResult{Sheet: service.ExportFile{
		Filename:    "starcoins_batch_2.pdf",
		ContentType: "application/pdf",
		Payload:     []byte("%PDF-1.3"),
	}}, nil
}

func (m *coinServiceMock) History(ctx context.Context) ([]models.PrintRecord, error) {
	return []models.PrintRecord{}, nil
}

func (m *coinServiceMock) DeleteRecord(ctx context.Context, id string) error { return nil }

func (m *coinServiceMock) ClearHistory(ctx context.Context) error { return nil }

func (m *coinServiceMock) NextBatchNumber(ctx context.Context, denomination int) (int, error) {
	m.denomination = denomination
	return 3, nil
}

func TestCoinHandlerPrintReturnsPDF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &coinServiceMock{}
	handler := NewCoinHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/coins/print",
		bytes.NewReader([]byte(`{"batchNumber":2,"selections":[{"denomination":5,"quantity":6}]}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Print(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "starcoins_batch_2.pdf")
	assert.Equal(t, 2, mock.printed.BatchNumber)
	require.Len(t, mock.printed.Selections, 1)
	assert.Equal(t, 5, mock.printed.Selections[0].Denomination)
}

func TestCoinHandlerNextBatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &coinServiceMock{}
	handler := NewCoinHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/coins/next-batch?denomination=10", nil)
	handler.NextBatch(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, mock.denomination)
	assert.JSONEq(t, `{"data":{"batchNumber":3}}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/coins/next-batch?denomination=ten", nil)
	handler.NextBatch(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type pagedCoinServiceMock struct {
	coinServiceMock
}

func (m *pagedCoinServiceMock) History(ctx context.Context) ([]models.PrintRecord, error) {
	records := make([]models.PrintRecord, 5)
	for i := range records {
		records[i] = models.PrintRecord{BatchNumber: 5 - i}
	}
	return records, nil
}

func TestCoinHandlerHistoryPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCoinHandler(&pagedCoinServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/coins/history?page=2&limit=2", nil)
	handler.History(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data       []models.PrintRecord `json:"data"`
		Pagination models.Pagination    `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, 3, body.Data[0].BatchNumber)
	assert.Equal(t, models.Pagination{Page: 2, PageSize: 2, TotalCount: 5}, body.Pagination)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/coins/history", nil)
	handler.History(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "pagination")
}

func TestCoinHandlerHistoryDeletesNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCoinHandler(&coinServiceMock{})
	r := gin.New()
	r.DELETE("/coins/history", handler.ClearHistory)
	r.DELETE("/coins/history/:id", handler.DeleteRecord)

	for _, path := range []string{"/coins/history", "/coins/history/r1"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, path, nil))
		assert.Equal(t, http.StatusNoContent, w.Code, path)
	}
}
