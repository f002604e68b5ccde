package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/starcoin-api/internal/repository"
	"github.com/noah-isme/starcoin-api/internal/service"
	"github.com/noah-isme/starcoin-api/pkg/kv"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := service.FixedClock(now)
	repo := repository.NewCollectionRepository(kv.NewMemoryStore(), "starcoin_", time.Hour, nil,
		repository.WithClock(func() time.Time { return now }))
	metrics := service.NewMetricsService()

	students := service.NewStudentService(repo, "en", nil, nil, nil, nil)
	shop := service.NewShopService(repo, metrics, clock, nil, nil)
	prizes := service.NewPrizeService(repo, nil, nil)
	schedule := service.NewScheduleService(repo, nil, nil, nil)
	classes := service.NewClassService(repo, nil, clock, nil, nil)
	data := service.NewDataService(repo, metrics, nil)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), Handlers{
		Students: NewStudentHandler(students),
		Shop:     NewShopHandler(shop),
		Prizes:   NewPrizeHandler(prizes),
		Classes:  NewClassHandler(classes),
		Schedule: NewScheduleHandler(schedule),
		Data:     NewDataHandler(data),
		Metrics:  NewMetricsHandler(metrics, repo),
	})
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decodeID(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var entity struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &entity))
	require.NotEmpty(t, entity.ID)
	return entity.ID
}

func TestRouterPurchaseAndRefundFlow(t *testing.T) {
	router := setupRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/classes", map[string]string{"name": "5A"})
	require.Equal(t, http.StatusCreated, w.Code)
	classID := decodeID(t, env.Data)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/students", map[string]string{"name": "Ann", "classId": classID})
	require.Equal(t, http.StatusCreated, w.Code)
	studentID := decodeID(t, env.Data)

	w, _ = doJSON(t, router, http.MethodPut, "/api/v1/students/"+studentID+"/lessons/2024-03-01", map[string]interface{}{"attended": true, "stars": 5})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/prizes", map[string]interface{}{
		"name": "Sticker", "cost": 3, "description": "Shiny", "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	prizeID := decodeID(t, env.Data)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/shop/purchases", map[string]string{"studentId": studentID, "prizeId": prizeID})
	require.Equal(t, http.StatusCreated, w.Code)
	var purchase struct {
		Purchase struct {
			ID string `json:"id"`
		} `json:"purchase"`
		Ledger struct {
			Balance int `json:"balance"`
		} `json:"ledger"`
		Prize struct {
			Archived bool `json:"archived"`
		} `json:"prize"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &purchase))
	assert.Equal(t, 2, purchase.Ledger.Balance)
	assert.True(t, purchase.Prize.Archived)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/shop/purchases", map[string]string{"studentId": studentID, "prizeId": prizeID})
	require.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "OUT_OF_STOCK", env.Error.Code)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/students/"+studentID+"/purchases/"+purchase.Purchase.ID+"/refund", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var refund struct {
		Ledger struct {
			Balance int `json:"balance"`
		} `json:"ledger"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &refund))
	assert.Equal(t, 5, refund.Ledger.Balance)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/students/"+studentID+"/purchases/"+purchase.Purchase.ID+"/refund", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_REFUNDED", env.Error.Code)
}

func TestRouterMissingEntitiesAndValidation(t *testing.T) {
	router := setupRouter(t)

	w, env := doJSON(t, router, http.MethodGet, "/api/v1/students/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/shop/purchases", map[string]string{"prizeId": "p"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_STUDENT_SELECTED", env.Error.Code)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/data/restore", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/lessons", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/system/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterWeeklyLessons(t *testing.T) {
	router := setupRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/classes", map[string]string{"name": "5A"})
	require.Equal(t, http.StatusCreated, w.Code)
	classID := decodeID(t, env.Data)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/lessons", map[string]interface{}{
		"classId": classID, "mode": "weekly", "date": "2024-03-11", "weeks": 4,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created []struct {
		Date string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created, 4)
	assert.Equal(t, "2024-04-01", created[3].Date)

	w, env = doJSON(t, router, http.MethodGet, "/api/v1/lessons?from=2024-03-01&to=2024-03-20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 2)
}

func TestRouterDeletesReturnNoContent(t *testing.T) {
	router := setupRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/classes", map[string]string{"name": "5A"})
	require.Equal(t, http.StatusCreated, w.Code)
	classID := decodeID(t, env.Data)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/classes/"+classID+"/subgroups", map[string]string{"name": "Group 1"})
	require.Equal(t, http.StatusCreated, w.Code)
	subgroupID := decodeID(t, env.Data)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/students", map[string]string{"name": "Ann", "classId": classID})
	require.Equal(t, http.StatusCreated, w.Code)
	studentID := decodeID(t, env.Data)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/prizes", map[string]interface{}{"name": "Sticker", "cost": 3, "description": "Shiny"})
	require.Equal(t, http.StatusCreated, w.Code)
	prizeID := decodeID(t, env.Data)

	for _, path := range []string{
		"/api/v1/classes/" + classID + "/subgroups/" + subgroupID,
		"/api/v1/students/" + studentID,
		"/api/v1/prizes/" + prizeID,
		"/api/v1/classes/" + classID,
	} {
		w, _ = doJSON(t, router, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNoContent, w.Code, path)
		assert.Zero(t, w.Body.Len(), path)
	}

	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/students/"+studentID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/data/clear", map[string]bool{"confirm": true})
	assert.Equal(t, http.StatusNoContent, w.Code)
}
