// controllers/report.go
package controllers

import (
	"net/http"
	"time"

	"washtrack-backend/config"
	"washtrack-backend/models"
	"washtrack-backend/utils"

	"github.com/gin-gonic/gin"
)

// ReportController handles all reporting functions
type ReportController struct{}

// durationMinutes is the SQL expression for a completed service's duration.
const durationMinutes = "EXTRACT(EPOCH FROM (services.delivered_at - services.received_at)) / 60"

// parseRange reads the start/end query params, defaulting to the last
// defaultDays days.
func (rc *ReportController) parseRange(c *gin.Context, defaultDays int) (time.Time, time.Time, bool) {
	now := time.Now()
	start := utils.BeginningOfDay(now.AddDate(0, 0, -defaultDays))
	end := utils.BeginningOfDay(now)

	if s := c.Query("start"); s != "" {
		parsed, err := utils.ParseDate(s)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD")
			return start, end, false
		}
		start = parsed
	}
	if e := c.Query("end"); e != "" {
		parsed, err := utils.ParseDate(e)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD")
			return start, end, false
		}
		end = parsed
	}
	return start, end, true
}

// DailyRevenueRow aggregates one day of completed services.
type DailyRevenueRow struct {
	Date          time.Time `json:"date"`
	TotalServices int       `json:"totalServices"`
	TotalRevenue  float64   `json:"totalRevenue"`
	AveragePrice  float64   `json:"averagePrice"`
	MinPrice      float64   `json:"minPrice"`
	MaxPrice      float64   `json:"maxPrice"`
}

// GetDailyRevenue reports revenue from completed services grouped by date
func (rc *ReportController) GetDailyRevenue(c *gin.Context) {
	start, end, ok := rc.parseRange(c, 30)
	if !ok {
		return
	}

	var rows []DailyRevenueRow
	if err := config.DB.Table("services").
		Select(`services.date,
			COUNT(services.id) AS total_services,
			SUM(services.price) AS total_revenue,
			AVG(services.price) AS average_price,
			MIN(services.price) AS min_price,
			MAX(services.price) AS max_price`).
		Where("services.date BETWEEN ? AND ? AND services.status = ?", start, end, models.StatusCompleted).
		Group("services.date").
		Order("services.date").
		Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate daily revenue report")
		return
	}

	var totalServices int
	var totalRevenue, avgSum float64
	for _, row := range rows {
		totalServices += row.TotalServices
		totalRevenue += row.TotalRevenue
		avgSum += row.AveragePrice
	}
	averagePrice := 0.0
	if len(rows) > 0 {
		averagePrice = avgSum / float64(len(rows))
	}

	c.JSON(http.StatusOK, gin.H{
		"start":   utils.FormatDate(start),
		"end":     utils.FormatDate(end),
		"revenue": rows,
		"totals": gin.H{
			"totalServices": totalServices,
			"totalRevenue":  totalRevenue,
			"averagePrice":  averagePrice,
			"days":          len(rows),
		},
	})
}

// DurationRow aggregates wash durations per wash type and vehicle type.
type DurationRow struct {
	WashTypeID     uint    `json:"washTypeId"`
	WashType       string  `json:"washType"`
	VehicleType    string  `json:"vehicleType"`
	VehicleSize    string  `json:"vehicleSize"`
	TotalServices  int     `json:"totalServices"`
	AverageMinutes float64 `json:"averageMinutes"`
	MinMinutes     float64 `json:"minMinutes"`
	MaxMinutes     float64 `json:"maxMinutes"`
}

// GetAverageDuration reports wash durations per wash type and vehicle
// type, plus a weighted rollup per wash type.
func (rc *ReportController) GetAverageDuration(c *gin.Context) {
	start, end, ok := rc.parseRange(c, 30)
	if !ok {
		return
	}

	var rows []DurationRow
	if err := config.DB.Table("services").
		Select(`wash_types.id AS wash_type_id, wash_types.name AS wash_type,
			vehicle_types.kind AS vehicle_type, vehicle_types.size AS vehicle_size,
			COUNT(services.id) AS total_services,
			AVG(`+durationMinutes+`) AS average_minutes,
			MIN(`+durationMinutes+`) AS min_minutes,
			MAX(`+durationMinutes+`) AS max_minutes`).
		Joins("JOIN wash_types ON wash_types.id = services.wash_type_id").
		Joins("JOIN vehicle_types ON vehicle_types.id = services.vehicle_type_id").
		Where("services.date BETWEEN ? AND ? AND services.status = ? AND services.delivered_at IS NOT NULL",
			start, end, models.StatusCompleted).
		Group("wash_types.id, wash_types.name, vehicle_types.kind, vehicle_types.size").
		Order("average_minutes").
		Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate duration report")
		return
	}

	type washTypeSummary struct {
		WashTypeID     uint          `json:"washTypeId"`
		WashType       string        `json:"washType"`
		AverageMinutes float64       `json:"averageMinutes"`
		TotalServices  int           `json:"totalServices"`
		ByVehicle      []DurationRow `json:"byVehicle"`
	}

	byType := make(map[uint]*washTypeSummary)
	order := []uint{}
	for _, row := range rows {
		summary, seen := byType[row.WashTypeID]
		if !seen {
			summary = &washTypeSummary{WashTypeID: row.WashTypeID, WashType: row.WashType}
			byType[row.WashTypeID] = summary
			order = append(order, row.WashTypeID)
		}
		summary.ByVehicle = append(summary.ByVehicle, row)
		summary.TotalServices += row.TotalServices
	}
	// Weight each vehicle-type average by its service count.
	summaries := make([]washTypeSummary, 0, len(order))
	for _, id := range order {
		summary := byType[id]
		var weighted float64
		for _, row := range summary.ByVehicle {
			weighted += row.AverageMinutes * float64(row.TotalServices)
		}
		if summary.TotalServices > 0 {
			summary.AverageMinutes = weighted / float64(summary.TotalServices)
		}
		summaries = append(summaries, *summary)
	}

	c.JSON(http.StatusOK, gin.H{
		"start":      utils.FormatDate(start),
		"end":        utils.FormatDate(end),
		"detailed":   rows,
		"byWashType": summaries,
	})
}

// GetWorkloadReport reports each active employee's load for a date,
// including the detail of their pending services.
func (rc *ReportController) GetWorkloadReport(c *gin.Context) {
	day := utils.BeginningOfDay(time.Now())
	if d := c.Query("date"); d != "" {
		parsed, err := utils.ParseDate(d)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	type workloadRow struct {
		ID             uint     `json:"id"`
		Employee       string   `json:"employee"`
		TotalAssigned  int      `json:"totalAssigned"`
		Pending        int      `json:"pending"`
		Completed      int      `json:"completed"`
		AverageMinutes *float64 `json:"averageMinutes"`
	}

	var workload []workloadRow
	if err := config.DB.Table("employees").
		Select(`employees.id,
			employees.first_name || ' ' || employees.last_name AS employee,
			COUNT(services.id) AS total_assigned,
			SUM(CASE WHEN services.delivered_at IS NULL THEN 1 ELSE 0 END) AS pending,
			SUM(CASE WHEN services.delivered_at IS NOT NULL THEN 1 ELSE 0 END) AS completed,
			AVG(CASE WHEN services.delivered_at IS NOT NULL THEN `+durationMinutes+` ELSE NULL END) AS average_minutes`).
		Joins("LEFT JOIN services ON services.washed_by_id = employees.id AND services.date = ?", day).
		Where("employees.status = ?", "Active").
		Group("employees.id, employees.first_name, employees.last_name").
		Order("total_assigned DESC").
		Scan(&workload).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate workload report")
		return
	}

	type pendingService struct {
		ID             uint      `json:"id"`
		Plate          string    `json:"plate"`
		ReceivedAt     time.Time `json:"receivedAt"`
		WaitingMinutes int       `json:"waitingMinutes"`
		WashType       string    `json:"washType"`
		VehicleType    string    `json:"vehicleType"`
	}
	type pendingDetail struct {
		EmployeeID uint             `json:"employeeId"`
		Employee   string           `json:"employee"`
		Services   []pendingService `json:"services"`
	}

	details := []pendingDetail{}
	for _, emp := range workload {
		if emp.Pending == 0 {
			continue
		}

		var services []pendingService
		if err := config.DB.Table("services").
			Select(`services.id, services.plate, services.received_at,
				wash_types.name AS wash_type, vehicle_types.kind AS vehicle_type`).
			Joins("JOIN wash_types ON wash_types.id = services.wash_type_id").
			Joins("JOIN vehicle_types ON vehicle_types.id = services.vehicle_type_id").
			Where("services.washed_by_id = ? AND services.date = ? AND services.delivered_at IS NULL AND services.status = ?",
				emp.ID, day, models.StatusReceived).
			Order("services.received_at").
			Scan(&services).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate workload report")
			return
		}
		for i := range services {
			services[i].WaitingMinutes = int(time.Since(services[i].ReceivedAt).Minutes())
		}

		details = append(details, pendingDetail{
			EmployeeID: emp.ID,
			Employee:   emp.Employee,
			Services:   services,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"date":          utils.FormatDate(day),
		"workload":      workload,
		"pendingDetail": details,
	})
}

// GetWeekdayDistribution reports how services spread over the days of
// the week.
func (rc *ReportController) GetWeekdayDistribution(c *gin.Context) {
	start, end, ok := rc.parseRange(c, 90)
	if !ok {
		return
	}

	type weekdayRow struct {
		Weekday        string   `json:"weekday"`
		TotalServices  int      `json:"totalServices"`
		TotalRevenue   float64  `json:"totalRevenue"`
		AveragePrice   float64  `json:"averagePrice"`
		AverageMinutes *float64 `json:"averageMinutes"`
	}

	var rows []weekdayRow
	if err := config.DB.Table("services").
		Select(`TRIM(TO_CHAR(services.date, 'Day')) AS weekday,
			COUNT(services.id) AS total_services,
			SUM(services.price) AS total_revenue,
			AVG(services.price) AS average_price,
			AVG(CASE WHEN services.delivered_at IS NOT NULL THEN `+durationMinutes+` ELSE NULL END) AS average_minutes`).
		Where("services.date BETWEEN ? AND ?", start, end).
		Group("TRIM(TO_CHAR(services.date, 'Day')), EXTRACT(ISODOW FROM services.date)").
		Order("EXTRACT(ISODOW FROM services.date)").
		Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate weekday distribution report")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"start":        utils.FormatDate(start),
		"end":          utils.FormatDate(end),
		"distribution": rows,
	})
}

// GetEmployeeEfficiency ranks employees by average wash duration over a
// period, with a per-wash-type breakdown for each.
func (rc *ReportController) GetEmployeeEfficiency(c *gin.Context) {
	start, end, ok := rc.parseRange(c, 30)
	if !ok {
		return
	}

	type efficiencyRow struct {
		ID             uint     `json:"id"`
		Employee       string   `json:"employee"`
		TotalServices  int      `json:"totalServices"`
		DaysWorked     int      `json:"daysWorked"`
		AverageMinutes *float64 `json:"averageMinutes"`
		TotalValue     float64  `json:"totalValue"`
		AverageValue   float64  `json:"averageValue"`
	}
	type washTypeRow struct {
		WashType       string   `json:"washType"`
		TotalServices  int      `json:"totalServices"`
		AverageMinutes *float64 `json:"averageMinutes"`
	}

	var efficiency []efficiencyRow
	if err := config.DB.Table("employees").
		Select(`employees.id,
			employees.first_name || ' ' || employees.last_name AS employee,
			COUNT(services.id) AS total_services,
			COUNT(DISTINCT services.date) AS days_worked,
			AVG(`+durationMinutes+`) AS average_minutes,
			SUM(services.price) AS total_value,
			ROUND((SUM(services.price) / COUNT(services.id))::numeric, 2) AS average_value`).
		Joins("JOIN services ON services.washed_by_id = employees.id").
		Where("services.date BETWEEN ? AND ? AND services.status = ?", start, end, models.StatusCompleted).
		Group("employees.id, employees.first_name, employees.last_name").
		Order("average_minutes").
		Scan(&efficiency).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate efficiency report")
		return
	}

	result := make([]gin.H, 0, len(efficiency))
	for _, emp := range efficiency {
		var byWashType []washTypeRow
		if err := config.DB.Table("services").
			Select(`wash_types.name AS wash_type,
				COUNT(services.id) AS total_services,
				AVG(`+durationMinutes+`) AS average_minutes`).
			Joins("JOIN wash_types ON wash_types.id = services.wash_type_id").
			Where("services.washed_by_id = ? AND services.date BETWEEN ? AND ? AND services.status = ?",
				emp.ID, start, end, models.StatusCompleted).
			Group("wash_types.name").
			Order("total_services DESC").
			Scan(&byWashType).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate efficiency report")
			return
		}

		result = append(result, gin.H{
			"id":             emp.ID,
			"employee":       emp.Employee,
			"totalServices":  emp.TotalServices,
			"daysWorked":     emp.DaysWorked,
			"averageMinutes": emp.AverageMinutes,
			"totalValue":     emp.TotalValue,
			"averageValue":   emp.AverageValue,
			"byWashType":     byWashType,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"start":      utils.FormatDate(start),
		"end":        utils.FormatDate(end),
		"efficiency": result,
	})
}

// GetConsumableUsage reports consumable consumption over a period,
// overall and grouped by wash type.
func (rc *ReportController) GetConsumableUsage(c *gin.Context) {
	start, end, ok := rc.parseRange(c, 30)
	if !ok {
		return
	}

	type usageRow struct {
		ID                uint    `json:"id"`
		Consumable        string  `json:"consumable"`
		ConsumableType    string  `json:"consumableType"`
		TotalQuantity     int     `json:"totalQuantity"`
		TotalServices     int     `json:"totalServices"`
		TotalCost         float64 `json:"totalCost"`
		AveragePerService float64 `json:"averagePerService"`
	}

	var usage []usageRow
	if err := config.DB.Table("service_consumables").
		Select(`consumables.id, consumables.name AS consumable,
			consumable_types.name AS consumable_type,
			SUM(service_consumables.quantity) AS total_quantity,
			COUNT(DISTINCT services.id) AS total_services,
			ROUND(SUM(service_consumables.quantity * consumables.unit_price)::numeric, 2) AS total_cost,
			ROUND((SUM(service_consumables.quantity)::numeric / COUNT(DISTINCT services.id)), 2) AS average_per_service`).
		Joins("JOIN consumables ON consumables.id = service_consumables.consumable_id").
		Joins("JOIN consumable_types ON consumable_types.id = consumables.consumable_type_id").
		Joins("JOIN services ON services.id = service_consumables.service_id").
		Where("services.date BETWEEN ? AND ?", start, end).
		Group("consumables.id, consumables.name, consumable_types.name").
		Order("total_quantity DESC").
		Scan(&usage).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate consumable usage report")
		return
	}

	type washTypeUsageRow struct {
		WashType          string  `json:"washType"`
		Consumable        string  `json:"consumable"`
		TotalQuantity     int     `json:"totalQuantity"`
		TotalServices     int     `json:"totalServices"`
		AveragePerService float64 `json:"averagePerService"`
	}

	var byWashTypeRows []washTypeUsageRow
	if err := config.DB.Table("service_consumables").
		Select(`wash_types.name AS wash_type, consumables.name AS consumable,
			SUM(service_consumables.quantity) AS total_quantity,
			COUNT(DISTINCT services.id) AS total_services,
			ROUND((SUM(service_consumables.quantity)::numeric / COUNT(DISTINCT services.id)), 2) AS average_per_service`).
		Joins("JOIN consumables ON consumables.id = service_consumables.consumable_id").
		Joins("JOIN services ON services.id = service_consumables.service_id").
		Joins("JOIN wash_types ON wash_types.id = services.wash_type_id").
		Where("services.date BETWEEN ? AND ?", start, end).
		Group("wash_types.name, consumables.name").
		Order("wash_types.name, total_quantity DESC").
		Scan(&byWashTypeRows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate consumable usage report")
		return
	}

	byWashType := make(map[string][]washTypeUsageRow)
	for _, row := range byWashTypeRows {
		byWashType[row.WashType] = append(byWashType[row.WashType], row)
	}

	var totalCost float64
	for _, row := range usage {
		totalCost += row.TotalCost
	}
	var totalServices int64
	if err := config.DB.Model(&models.Service{}).
		Where("date BETWEEN ? AND ?", start, end).
		Count(&totalServices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate consumable usage report")
		return
	}
	averageCost := 0.0
	if totalServices > 0 {
		averageCost = totalCost / float64(totalServices)
	}

	c.JSON(http.StatusOK, gin.H{
		"start":      utils.FormatDate(start),
		"end":        utils.FormatDate(end),
		"usage":      usage,
		"byWashType": byWashType,
		"totals": gin.H{
			"totalCost":             totalCost,
			"totalServices":         totalServices,
			"averageCostPerService": averageCost,
		},
	})
}
