package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"washtrack-backend/config"
	"washtrack-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Employee{},
		&models.VehicleType{},
		&models.WashType{},
		&models.ConsumableType{},
		&models.Consumable{},
		&models.InventoryRecord{},
		&models.Client{},
		&models.ClientVehicle{},
		&models.Service{},
		&models.ServiceConsumable{},
		&models.Checklist{},
		&models.ActivityLog{},
	))
	config.DB = db

	r := gin.New()
	r.POST("/api/services", CreateService)
	r.GET("/api/services/:id", GetService)
	r.PUT("/api/services/:id/complete", CompleteService)
	r.PUT("/api/services/:id/cancel", CancelService)
	return r
}

func seedServiceTestData(t *testing.T) (employeeID, vehicleTypeID, washTypeID, consumableID uint) {
	t.Helper()

	emp := models.Employee{Code: "EMP-001", FirstName: "Ana", LastName: "Reyes", Status: "Active"}
	require.NoError(t, config.DB.Create(&emp).Error)
	vt := models.VehicleType{Kind: "Sedan", Size: "Medium", Status: "Active"}
	require.NoError(t, config.DB.Create(&vt).Error)
	wt := models.WashType{Name: "Full wash", Cost: 25, Status: "Active"}
	require.NoError(t, config.DB.Create(&wt).Error)

	ctype := models.ConsumableType{Name: "Soap"}
	require.NoError(t, config.DB.Create(&ctype).Error)
	cons := models.Consumable{Name: "Car shampoo", UnitPrice: 3.5, ConsumableTypeID: ctype.ID, Status: "Active"}
	require.NoError(t, config.DB.Create(&cons).Error)
	require.NoError(t, config.DB.Create(&models.InventoryRecord{
		ConsumableID: cons.ID, Stock: 10, MinThreshold: 3,
	}).Error)

	return emp.ID, vt.ID, wt.ID, cons.ID
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", "front-desk")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createBody(empID, vtID, wtID, consID uint, quantity int) gin.H {
	return gin.H{
		"date":          "2026-08-28T00:00:00Z",
		"receivedById":  empID,
		"washedById":    empID,
		"vehicleTypeId": vtID,
		"washTypeId":    wtID,
		"receivedAt":    "2026-08-28T09:00:00Z",
		"price":         25,
		"plate":         "abc-123",
		"consumables":   []gin.H{{"consumableId": consID, "quantity": quantity}},
	}
}

func TestCreateServiceEndpoint(t *testing.T) {
	r := setupServiceTest(t)
	empID, vtID, wtID, consID := seedServiceTestData(t)

	w := doJSON(r, http.MethodPost, "/api/services", createBody(empID, vtID, wtID, consID, 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID    uint   `json:"id"`
		Plate string `json:"plate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "ABC123", resp.Plate)

	var record models.InventoryRecord
	require.NoError(t, config.DB.Where("consumable_id = ?", consID).First(&record).Error)
	assert.Equal(t, 8, record.Stock)

	var entry models.ActivityLog
	require.NoError(t, config.DB.First(&entry).Error)
	assert.Equal(t, "front-desk", entry.Actor)
}

func TestCreateServiceEndpointRejectsBadPlate(t *testing.T) {
	r := setupServiceTest(t)
	empID, vtID, wtID, consID := seedServiceTestData(t)

	body := createBody(empID, vtID, wtID, consID, 1)
	body["plate"] = "!!"
	w := doJSON(r, http.MethodPost, "/api/services", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateServiceEndpointInsufficientStock(t *testing.T) {
	r := setupServiceTest(t)
	empID, vtID, wtID, consID := seedServiceTestData(t)

	w := doJSON(r, http.MethodPost, "/api/services", createBody(empID, vtID, wtID, consID, 11))
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	config.DB.Model(&models.Service{}).Count(&count)
	assert.Zero(t, count)
}

func TestCompleteServiceEndpoint(t *testing.T) {
	r := setupServiceTest(t)
	empID, vtID, wtID, consID := seedServiceTestData(t)

	w := doJSON(r, http.MethodPost, "/api/services", createBody(empID, vtID, wtID, consID, 2))
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := fmt.Sprintf("/api/services/%d/complete", created.ID)
	w = doJSON(r, http.MethodPut, path, gin.H{"deliveredAt": time.Now().UTC().Format(time.RFC3339)})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Second completion conflicts.
	w = doJSON(r, http.MethodPut, path, gin.H{"deliveredAt": time.Now().UTC().Format(time.RFC3339)})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Cancelling a completed service conflicts too.
	w = doJSON(r, http.MethodPut, fmt.Sprintf("/api/services/%d/cancel", created.ID), gin.H{"reason": "late"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancelServiceEndpointRestoresStock(t *testing.T) {
	r := setupServiceTest(t)
	empID, vtID, wtID, consID := seedServiceTestData(t)

	w := doJSON(r, http.MethodPost, "/api/services", createBody(empID, vtID, wtID, consID, 2))
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// No body at all: reason is optional.
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/services/%d/cancel", created.ID), nil)
	req.Header.Set("X-User", "front-desk")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var record models.InventoryRecord
	require.NoError(t, config.DB.Where("consumable_id = ?", consID).First(&record).Error)
	assert.Equal(t, 10, record.Stock)

	var service models.Service
	require.NoError(t, config.DB.First(&service, created.ID).Error)
	assert.Equal(t, models.StatusCancelled, service.Status)
	assert.Contains(t, service.Notes, "not specified")
}

func TestServiceEndpointsNotFound(t *testing.T) {
	r := setupServiceTest(t)
	seedServiceTestData(t)

	w := doJSON(r, http.MethodPut, "/api/services/99/complete", gin.H{"deliveredAt": time.Now().UTC().Format(time.RFC3339)})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPut, "/api/services/99/cancel", gin.H{"reason": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/services/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
