// controllers/service.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"washtrack-backend/config"
	"washtrack-backend/models"
	"washtrack-backend/services"
	"washtrack-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CompleteServiceInput defines the expected JSON structure for completing a service
type CompleteServiceInput struct {
	DeliveredAt           time.Time                 `json:"deliveredAt" binding:"required"`
	AdditionalConsumables []services.ConsumableLine `json:"additionalConsumables" binding:"omitempty,dive"`
}

// CancelServiceInput defines the expected JSON structure for cancelling a service
type CancelServiceInput struct {
	Reason string `json:"reason"`
}

// ServiceRow is the flattened listing shape with joined display names.
type ServiceRow struct {
	ID          uint       `json:"id"`
	Date        time.Time  `json:"date"`
	Plate       string     `json:"plate"`
	VehicleType string     `json:"vehicleType"`
	VehicleSize string     `json:"vehicleSize"`
	WashType    string     `json:"washType"`
	ReceivedBy  string     `json:"receivedBy"`
	WashedBy    string     `json:"washedBy"`
	ReceivedAt  time.Time  `json:"receivedAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
	Price       float64    `json:"price"`
	Status      string     `json:"status"`
}

func serviceListQuery(db *gorm.DB) *gorm.DB {
	return db.Table("services").
		Select(`services.id, services.date, services.plate,
			vehicle_types.kind AS vehicle_type, vehicle_types.size AS vehicle_size,
			wash_types.name AS wash_type,
			r.first_name || ' ' || r.last_name AS received_by,
			w.first_name || ' ' || w.last_name AS washed_by,
			services.received_at, services.delivered_at, services.price, services.status`).
		Joins("JOIN vehicle_types ON vehicle_types.id = services.vehicle_type_id").
		Joins("JOIN wash_types ON wash_types.id = services.wash_type_id").
		Joins("JOIN employees r ON r.id = services.received_by_id").
		Joins("JOIN employees w ON w.id = services.washed_by_id")
}

// respondLifecycleError maps lifecycle error categories to HTTP statuses.
func respondLifecycleError(c *gin.Context, err error) {
	var code int
	switch services.KindOf(err) {
	case services.KindValidation:
		code = http.StatusBadRequest
	case services.KindNotFound:
		code = http.StatusNotFound
	case services.KindConflict:
		code = http.StatusConflict
	default:
		code = http.StatusInternalServerError
	}
	utils.RespondWithError(c, code, err.Error())
}

// GetServices lists services, optionally filtered by date and limited
func GetServices(c *gin.Context) {
	q := serviceListQuery(config.DB)

	if date := c.Query("date"); date != "" {
		day, err := utils.ParseDate(date)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		q = q.Where("services.date = ?", day)
	}

	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		q = q.Limit(n)
	}

	var rows []ServiceRow
	if err := q.Order("services.date DESC, services.received_at DESC").Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, rows)
}

// GetPendingServices lists Received services that have not been delivered,
// oldest first, with the minutes each vehicle has been waiting.
func GetPendingServices(c *gin.Context) {
	var rows []ServiceRow
	if err := serviceListQuery(config.DB).
		Where("services.delivered_at IS NULL AND services.status = ?", models.StatusReceived).
		Order("services.date, services.received_at").
		Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve pending services")
		return
	}

	type pendingRow struct {
		ServiceRow
		WaitingMinutes int `json:"waitingMinutes"`
	}
	pending := make([]pendingRow, 0, len(rows))
	for _, row := range rows {
		pending = append(pending, pendingRow{
			ServiceRow:     row,
			WaitingMinutes: int(time.Since(row.ReceivedAt).Minutes()),
		})
	}

	c.JSON(http.StatusOK, pending)
}

// GetServicesByPlate returns the wash history of a plate along with the
// registered client and vehicle, if any.
func GetServicesByPlate(c *gin.Context) {
	plate := utils.NormalizePlate(c.Param("plate"))
	if plate == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Plate is required")
		return
	}

	var rows []ServiceRow
	if err := serviceListQuery(config.DB).
		Where("services.plate = ?", plate).
		Order("services.date DESC, services.received_at DESC").
		Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	var vehicle models.ClientVehicle
	response := gin.H{
		"plate":         plate,
		"services":      rows,
		"totalServices": len(rows),
		"client":        nil,
		"vehicle":       nil,
	}
	if len(rows) > 0 {
		response["lastService"] = rows[0]
	}

	err := config.DB.Preload("Client").Where("plate = ?", plate).First(&vehicle).Error
	if err == nil {
		response["client"] = gin.H{
			"id":    vehicle.Client.ID,
			"name":  vehicle.Client.Name,
			"phone": vehicle.Client.Phone,
			"email": vehicle.Client.Email,
		}
		response["vehicle"] = gin.H{
			"plate": vehicle.Plate,
			"brand": vehicle.Brand,
			"model": vehicle.Model,
			"color": vehicle.Color,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetService returns one service with its consumable usage, checklist and
// registered client/vehicle.
func GetService(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID")
		return
	}

	var service models.Service
	if err := config.DB.
		Preload("ReceivedBy").
		Preload("WashedBy").
		Preload("VehicleType").
		Preload("WashType").
		Preload("Consumables.Consumable").
		Preload("Checklist").
		First(&service, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	type usageLine struct {
		ID           uint    `json:"id"`
		ConsumableID uint    `json:"consumableId"`
		Name         string  `json:"name"`
		Quantity     int     `json:"quantity"`
		UnitPrice    float64 `json:"unitPrice"`
		Subtotal     float64 `json:"subtotal"`
	}
	lines := make([]usageLine, 0, len(service.Consumables))
	for _, u := range service.Consumables {
		lines = append(lines, usageLine{
			ID:           u.ID,
			ConsumableID: u.ConsumableID,
			Name:         u.Consumable.Name,
			Quantity:     u.Quantity,
			UnitPrice:    u.Consumable.UnitPrice,
			Subtotal:     u.Consumable.UnitPrice * float64(u.Quantity),
		})
	}

	response := gin.H{
		"id":          service.ID,
		"date":        service.Date,
		"plate":       service.Plate,
		"vehicleType": service.VehicleType.Kind,
		"vehicleSize": service.VehicleType.Size,
		"washType":    service.WashType.Name,
		"receivedBy":  service.ReceivedBy.FullName(),
		"washedBy":    service.WashedBy.FullName(),
		"receivedAt":  service.ReceivedAt,
		"deliveredAt": service.DeliveredAt,
		"price":       service.Price,
		"notes":       service.Notes,
		"status":      service.Status,
		"consumables": lines,
		"checklist":   service.Checklist,
		"client":      nil,
		"vehicle":     gin.H{"plate": service.Plate},
	}

	var vehicle models.ClientVehicle
	err = config.DB.Preload("Client").Where("plate = ?", service.Plate).First(&vehicle).Error
	if err == nil {
		response["client"] = gin.H{
			"id":    vehicle.Client.ID,
			"name":  vehicle.Client.Name,
			"phone": vehicle.Client.Phone,
			"email": vehicle.Client.Email,
		}
		response["vehicle"] = gin.H{
			"plate": service.Plate,
			"brand": vehicle.Brand,
			"model": vehicle.Model,
			"color": vehicle.Color,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, response)
}

// CreateService registers a new wash service in status Received
func CreateService(c *gin.Context) {
	var input services.CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePlate(input.Plate) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid plate format")
		return
	}
	input.Plate = utils.NormalizePlate(input.Plate)

	if input.Client != nil && !utils.ValidatePhone(input.Client.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client phone number format")
		return
	}

	lifecycle := services.NewLifecycle(config.DB)
	id, err := lifecycle.Create(utils.CurrentActor(c), input)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    id,
		"plate": input.Plate,
	})
}

// CompleteService marks a Received service as delivered
func CompleteService(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID")
		return
	}

	var input CompleteServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	lifecycle := services.NewLifecycle(config.DB)
	if err := lifecycle.Complete(utils.CurrentActor(c), uint(id), input.DeliveredAt, input.AdditionalConsumables); err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": uint(id)})
}

// CancelService cancels a Received service and restores its consumables
func CancelService(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID")
		return
	}

	// Body is optional; cancelling without a reason is allowed.
	var input CancelServiceInput
	_ = c.ShouldBindJSON(&input)

	lifecycle := services.NewLifecycle(config.DB)
	if err := lifecycle.Cancel(utils.CurrentActor(c), uint(id), input.Reason); err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": uint(id)})
}
