// controllers/inventory.go
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

// CreateConsumableInput defines the expected JSON structure for creating a consumable
type CreateConsumableInput struct {
	Name             string  `json:"name" binding:"required"`
	UnitPrice        float64 `json:"unitPrice" binding:"required,min=0"`
	ConsumableTypeID uint    `json:"consumableTypeId" binding:"required"`
	Stock            int     `json:"stock" binding:"min=0"`
	MinThreshold     *int    `json:"minThreshold"`
}

// UpdateConsumableInput defines the expected JSON structure for updating a consumable
type UpdateConsumableInput struct {
	Name             string  `json:"name" binding:"required"`
	UnitPrice        float64 `json:"unitPrice" binding:"required,min=0"`
	ConsumableTypeID uint    `json:"consumableTypeId" binding:"required"`
	Status           string  `json:"status" binding:"required,oneof=Active Inactive"`
	MinThreshold     *int    `json:"minThreshold"`
}

// AdjustStockInput defines the expected JSON structure for a manual stock adjustment
type AdjustStockInput struct {
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	Operation     string `json:"operation" binding:"required,oneof=add subtract"`
	Justification string `json:"justification"`
}

// InventoryRow is the flattened inventory listing shape.
type InventoryRow struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	UnitPrice    float64    `json:"unitPrice"`
	TypeID       uint       `json:"typeId"`
	Type         string     `json:"type"`
	Stock        int        `json:"stock"`
	MinThreshold int        `json:"minThreshold"`
	TotalValue   float64    `json:"totalValue"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	Status       string     `json:"status"`
	IsLowStock   bool       `json:"isLowStock"`
}

func inventoryQuery(db *gorm.DB) *gorm.DB {
	return db.Table("inventory_records").
		Select(`consumables.id, consumables.name, consumables.unit_price,
			consumable_types.id AS type_id, consumable_types.name AS type,
			inventory_records.stock, inventory_records.min_threshold,
			(consumables.unit_price * inventory_records.stock) AS total_value,
			inventory_records.updated_at, consumables.status,
			(inventory_records.stock < inventory_records.min_threshold) AS is_low_stock`).
		Joins("JOIN consumables ON consumables.id = inventory_records.consumable_id").
		Joins("JOIN consumable_types ON consumable_types.id = consumables.consumable_type_id")
}

// GetInventory lists all active consumables with their stock ledger
func GetInventory(c *gin.Context) {
	var rows []InventoryRow
	if err := inventoryQuery(config.DB).
		Where("consumables.status = ?", "Active").
		Order("consumables.name").
		Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve inventory")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetLowStock lists active consumables under their minimum threshold,
// most depleted first.
func GetLowStock(c *gin.Context) {
	type lowStockRow struct {
		InventoryRow
		Missing      int     `json:"missing"`
		MissingValue float64 `json:"missingValue"`
	}

	var rows []InventoryRow
	if err := inventoryQuery(config.DB).
		Where("inventory_records.stock < inventory_records.min_threshold AND consumables.status = ?", "Active").
		Order("inventory_records.stock").
		Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve low-stock consumables")
		return
	}

	result := make([]lowStockRow, 0, len(rows))
	for _, row := range rows {
		missing := row.MinThreshold - row.Stock
		result = append(result, lowStockRow{
			InventoryRow: row,
			Missing:      missing,
			MissingValue: row.UnitPrice * float64(missing),
		})
	}

	c.JSON(http.StatusOK, result)
}

// GetConsumableTypes lists the active consumable categories
func GetConsumableTypes(c *gin.Context) {
	var types []models.ConsumableType
	if err := config.DB.Where("status = ?", "Active").
		Order("name").Find(&types).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve consumable types")
		return
	}
	c.JSON(http.StatusOK, types)
}

// GetInventoryValue summarizes the total value of the active inventory
func GetInventoryValue(c *gin.Context) {
	type valueSummary struct {
		TotalValue       float64 `json:"totalValue"`
		TotalConsumables int     `json:"totalConsumables"`
		LowStockCount    int     `json:"lowStockCount"`
	}

	var summary valueSummary
	if err := config.DB.Table("inventory_records").
		Select(`COALESCE(SUM(consumables.unit_price * inventory_records.stock), 0) AS total_value,
			COUNT(DISTINCT consumables.id) AS total_consumables,
			COUNT(CASE WHEN inventory_records.stock < inventory_records.min_threshold THEN 1 END) AS low_stock_count`).
		Joins("JOIN consumables ON consumables.id = inventory_records.consumable_id").
		Where("consumables.status = ?", "Active").
		Scan(&summary).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute inventory value")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetConsumptionHistory aggregates consumable usage over the last N days
// (30 by default).
func GetConsumptionHistory(c *gin.Context) {
	days := 30
	if d := c.Query("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid days parameter")
			return
		}
		days = n
	}
	since := utils.BeginningOfDay(time.Now().AddDate(0, 0, -days))

	type consumptionRow struct {
		ID            uint    `json:"id"`
		Name          string  `json:"name"`
		TotalQuantity int     `json:"totalQuantity"`
		TotalServices int     `json:"totalServices"`
		TotalValue    float64 `json:"totalValue"`
	}

	var rows []consumptionRow
	if err := config.DB.Table("service_consumables").
		Select(`consumables.id, consumables.name,
			SUM(service_consumables.quantity) AS total_quantity,
			COUNT(DISTINCT services.id) AS total_services,
			ROUND(SUM(service_consumables.quantity * consumables.unit_price), 2) AS total_value`).
		Joins("JOIN consumables ON consumables.id = service_consumables.consumable_id").
		Joins("JOIN services ON services.id = service_consumables.service_id").
		Where("services.date >= ?", since).
		Group("consumables.id, consumables.name").
		Order("total_quantity DESC").
		Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve consumption history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"days":    days,
		"history": rows,
	})
}

// GetConsumable returns one consumable with its recent usage history
func GetConsumable(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid consumable ID")
		return
	}

	var row InventoryRow
	res := inventoryQuery(config.DB).Where("consumables.id = ?", uint(id)).Scan(&row)
	if res.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Consumable not found")
		return
	}

	type usageRow struct {
		ServiceID uint      `json:"serviceId"`
		Date      time.Time `json:"date"`
		Quantity  int       `json:"quantity"`
		Plate     string    `json:"plate"`
		WashType  string    `json:"washType"`
	}
	var usage []usageRow
	if err := config.DB.Table("service_consumables").
		Select(`service_consumables.service_id, services.date,
			service_consumables.quantity, services.plate,
			wash_types.name AS wash_type`).
		Joins("JOIN services ON services.id = service_consumables.service_id").
		Joins("JOIN wash_types ON wash_types.id = services.wash_type_id").
		Where("service_consumables.consumable_id = ?", uint(id)).
		Order("services.date DESC, services.received_at DESC").
		Limit(10).
		Scan(&usage).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve usage history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"consumable":   row,
		"usageHistory": usage,
		"totalUsages":  len(usage),
	})
}

// CreateConsumable creates a consumable and its inventory record
func CreateConsumable(c *gin.Context) {
	var input CreateConsumableInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var typeCount int64
	if err := config.DB.Model(&models.ConsumableType{}).
		Where("id = ?", input.ConsumableTypeID).Count(&typeCount).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if typeCount == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Consumable type not found")
		return
	}

	threshold := 10
	if input.MinThreshold != nil {
		threshold = *input.MinThreshold
	}

	consumable := models.Consumable{
		Name:             input.Name,
		UnitPrice:        input.UnitPrice,
		ConsumableTypeID: input.ConsumableTypeID,
		Status:           "Active",
	}

	actor := utils.CurrentActor(c)
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&consumable).Error; err != nil {
			return err
		}
		record := models.InventoryRecord{
			ConsumableID: consumable.ID,
			Stock:        input.Stock,
			MinThreshold: threshold,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return services.LogActivity(tx, actor, "Create consumable", "consumables", consumable.ID, input)
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create consumable")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": consumable.ID})
}

// UpdateConsumable updates a consumable and optionally its threshold
func UpdateConsumable(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid consumable ID")
		return
	}

	var input UpdateConsumableInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var consumable models.Consumable
	if err := config.DB.First(&consumable, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Consumable not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	actor := utils.CurrentActor(c)
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&consumable).Updates(map[string]interface{}{
			"name":               input.Name,
			"unit_price":         input.UnitPrice,
			"consumable_type_id": input.ConsumableTypeID,
			"status":             input.Status,
		}).Error; err != nil {
			return err
		}
		if input.MinThreshold != nil {
			if err := tx.Model(&models.InventoryRecord{}).
				Where("consumable_id = ?", consumable.ID).
				Update("min_threshold", *input.MinThreshold).Error; err != nil {
				return err
			}
		}
		return services.LogActivity(tx, actor, "Update consumable", "consumables", consumable.ID, input)
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update consumable")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": consumable.ID})
}

// AdjustStock manually adds or subtracts stock for a consumable.
// Subtracting below zero is rejected.
func AdjustStock(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid consumable ID")
		return
	}

	var input AdjustStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var record models.InventoryRecord
	if err := config.DB.Where("consumable_id = ?", uint(id)).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Consumable not found in inventory")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	previousStock := record.Stock
	actor := utils.CurrentActor(c)

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.InventoryRecord{}).Where("consumable_id = ?", uint(id))
		var expr interface{}
		if input.Operation == "add" {
			expr = gorm.Expr("stock + ?", input.Quantity)
		} else {
			// Guard in the statement so concurrent adjustments cannot
			// drive stock negative.
			q = q.Where("stock >= ?", input.Quantity)
			expr = gorm.Expr("stock - ?", input.Quantity)
		}
		res := q.Updates(map[string]interface{}{
			"stock":      expr,
			"updated_at": time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return services.NewConflictError("cannot subtract more stock than available")
		}

		details := map[string]interface{}{
			"quantity":      input.Quantity,
			"operation":     input.Operation,
			"justification": input.Justification,
			"previousStock": previousStock,
		}
		return services.LogActivity(tx, actor, "Adjust stock", "inventory_records", uint(id), details)
	})
	if err != nil {
		if services.KindOf(err) == services.KindConflict {
			utils.RespondWithError(c, http.StatusConflict, err.Error())
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to adjust stock")
		}
		return
	}

	var updated models.InventoryRecord
	if err := config.DB.Where("consumable_id = ?", uint(id)).First(&updated).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         uint(id),
		"newStock":   updated.Stock,
		"operation":  input.Operation,
		"isLowStock": updated.IsLowStock(),
	})
}
