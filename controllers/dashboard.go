// controllers/dashboard.go
package controllers

import (
	"net/http"
	"time"

	"washtrack-backend/config"
	"washtrack-backend/models"
	"washtrack-backend/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview returns the figures the front desk screen shows
// for the current day.
func GetDashboardOverview(c *gin.Context) {
	today := utils.BeginningOfDay(time.Now())

	// Pending services
	var pendingCount int64
	config.DB.Model(&models.Service{}).
		Where("date = ? AND status = ?", today, models.StatusReceived).
		Count(&pendingCount)

	// Today's revenue (completed services only)
	var todayRevenue float64
	config.DB.Model(&models.Service{}).
		Where("date = ? AND status = ?", today, models.StatusCompleted).
		Select("COALESCE(SUM(price), 0)").Scan(&todayRevenue)

	var completedCount int64
	config.DB.Model(&models.Service{}).
		Where("date = ? AND status = ?", today, models.StatusCompleted).
		Count(&completedCount)

	// Consumables under their threshold
	var lowStockCount int64
	config.DB.Table("inventory_records").
		Joins("JOIN consumables ON consumables.id = inventory_records.consumable_id").
		Where("consumables.status = ? AND inventory_records.stock < inventory_records.min_threshold", "Active").
		Count(&lowStockCount)

	// Employees scheduled for today's weekday
	var onShiftCount int64
	config.DB.Table("shifts").
		Joins("JOIN employees ON employees.id = shifts.employee_id").
		Where("shifts.day = ? AND employees.status = ?", time.Now().Weekday().String(), "Active").
		Count(&onShiftCount)

	// Average duration of today's completed washes
	var avgMinutes *float64
	config.DB.Model(&models.Service{}).
		Where("date = ? AND status = ? AND delivered_at IS NOT NULL", today, models.StatusCompleted).
		Select("AVG(" + durationMinutes + ")").Scan(&avgMinutes)

	// Today's services per wash type
	type washTypeCount struct {
		WashType string  `json:"washType"`
		Total    int     `json:"total"`
		Revenue  float64 `json:"revenue"`
	}
	var byWashType []washTypeCount
	config.DB.Table("services").
		Select("wash_types.name AS wash_type, COUNT(services.id) AS total, SUM(services.price) AS revenue").
		Joins("JOIN wash_types ON wash_types.id = services.wash_type_id").
		Where("services.date = ? AND services.status <> ?", today, models.StatusCancelled).
		Group("wash_types.name").
		Order("total DESC").
		Scan(&byWashType)

	c.JSON(http.StatusOK, gin.H{
		"date":              utils.FormatDate(today),
		"pendingServices":   pendingCount,
		"completedServices": completedCount,
		"todayRevenue":      todayRevenue,
		"lowStockItems":     lowStockCount,
		"employeesOnShift":  onShiftCount,
		"averageMinutes":    avgMinutes,
		"servicesByType":    byWashType,
	})
}

// GetStatus reports whether the API and its database are reachable.
func GetStatus(c *gin.Context) {
	sqlDB, err := config.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "connected",
		"time":     time.Now().Format(time.RFC3339),
	})
}
