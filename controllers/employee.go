// controllers/employee.go
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

// CreateEmployeeInput defines the expected JSON structure for creating an employee
type CreateEmployeeInput struct {
	Code      string    `json:"code" binding:"required"`
	FirstName string    `json:"firstName" binding:"required"`
	LastName  string    `json:"lastName" binding:"required"`
	BirthDate time.Time `json:"birthDate" binding:"required"`
}

// UpdateEmployeeInput defines the expected JSON structure for updating an employee
type UpdateEmployeeInput struct {
	FirstName string    `json:"firstName" binding:"required"`
	LastName  string    `json:"lastName" binding:"required"`
	BirthDate time.Time `json:"birthDate" binding:"required"`
	Status    string    `json:"status" binding:"required,oneof=Active Inactive"`
}

// AssignShiftInput defines the expected JSON structure for assigning a shift
type AssignShiftInput struct {
	WorkScheduleID uint   `json:"workScheduleId" binding:"required"`
	Day            string `json:"day" binding:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
}

// GetEmployees lists active employees
func GetEmployees(c *gin.Context) {
	var employees []models.Employee
	if err := config.DB.Where("status = ?", "Active").Find(&employees).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve employees")
		return
	}
	c.JSON(http.StatusOK, employees)
}

// GetEmployee returns one employee by ID
func GetEmployee(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	var employee models.Employee
	if err := config.DB.First(&employee, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, employee)
}

// CreateEmployee registers a new employee
func CreateEmployee(c *gin.Context) {
	var input CreateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var existing models.Employee
	if err := config.DB.Where("code = ?", input.Code).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "An employee with this code already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	employee := models.Employee{
		Code:      input.Code,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		BirthDate: input.BirthDate,
		Status:    "Active",
	}

	actor := utils.CurrentActor(c)
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&employee).Error; err != nil {
			return err
		}
		return services.LogActivity(tx, actor, "Create employee", "employees", employee.ID, input)
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create employee")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": employee.ID})
}

// UpdateEmployee updates an existing employee
func UpdateEmployee(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	var input UpdateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var employee models.Employee
	if err := config.DB.First(&employee, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	actor := utils.CurrentActor(c)
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&employee).Updates(map[string]interface{}{
			"first_name": input.FirstName,
			"last_name":  input.LastName,
			"birth_date": input.BirthDate,
			"status":     input.Status,
		}).Error; err != nil {
			return err
		}
		return services.LogActivity(tx, actor, "Update employee", "employees", employee.ID, input)
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update employee")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": employee.ID})
}

// DeleteEmployee deactivates an employee (no physical delete)
func DeleteEmployee(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	var employee models.Employee
	if err := config.DB.First(&employee, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	actor := utils.CurrentActor(c)
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&employee).Update("status", "Inactive").Error; err != nil {
			return err
		}
		return services.LogActivity(tx, actor, "Deactivate employee", "employees", employee.ID, nil)
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to deactivate employee")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": employee.ID})
}

// GetWorkSchedules lists the active work schedules
func GetWorkSchedules(c *gin.Context) {
	var schedules []models.WorkSchedule
	if err := config.DB.Where("status = ?", "Active").Find(&schedules).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve work schedules")
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// ShiftRow is the flattened shift listing shape.
type ShiftRow struct {
	ID         uint   `json:"id"`
	EmployeeID uint   `json:"employeeId"`
	Employee   string `json:"employee"`
	Day        string `json:"day"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

// GetAllShifts lists the shifts of all active employees
func GetAllShifts(c *gin.Context) {
	var shifts []ShiftRow
	if err := config.DB.Table("shifts").
		Select(`shifts.id, employees.id AS employee_id,
			employees.first_name || ' ' || employees.last_name AS employee,
			shifts.day, work_schedules.start_time, work_schedules.end_time`).
		Joins("JOIN employees ON employees.id = shifts.employee_id").
		Joins("JOIN work_schedules ON work_schedules.id = shifts.work_schedule_id").
		Where("employees.status = ?", "Active").
		Order("shifts.day, work_schedules.start_time").
		Scan(&shifts).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve shifts")
		return
	}

	c.JSON(http.StatusOK, shifts)
}

// GetEmployeeShifts lists one employee's shifts
func GetEmployeeShifts(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	var count int64
	if err := config.DB.Model(&models.Employee{}).Where("id = ?", uint(id)).Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if count == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		return
	}

	var shifts []models.Shift
	if err := config.DB.Preload("WorkSchedule").
		Where("employee_id = ?", uint(id)).
		Find(&shifts).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve shifts")
		return
	}

	c.JSON(http.StatusOK, shifts)
}

// AssignShift creates or replaces an employee's shift for a day
func AssignShift(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	var input AssignShiftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var employeeCount int64
	if err := config.DB.Model(&models.Employee{}).Where("id = ?", uint(id)).Count(&employeeCount).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if employeeCount == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		return
	}

	var scheduleCount int64
	if err := config.DB.Model(&models.WorkSchedule{}).Where("id = ?", input.WorkScheduleID).Count(&scheduleCount).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if scheduleCount == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Work schedule not found")
		return
	}

	actor := utils.CurrentActor(c)

	var existing models.Shift
	err = config.DB.Where("employee_id = ? AND day = ?", uint(id), input.Day).First(&existing).Error
	if err == nil {
		// Replace the existing assignment for that day.
		txErr := config.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&existing).Update("work_schedule_id", input.WorkScheduleID).Error; err != nil {
				return err
			}
			return services.LogActivity(tx, actor, "Update shift", "shifts", existing.ID, input)
		})
		if txErr != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update shift")
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": existing.ID})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	shift := models.Shift{
		EmployeeID:     uint(id),
		WorkScheduleID: input.WorkScheduleID,
		Day:            input.Day,
	}
	txErr := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shift).Error; err != nil {
			return err
		}
		return services.LogActivity(tx, actor, "Assign shift", "shifts", shift.ID, input)
	})
	if txErr != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to assign shift")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": shift.ID})
}

// DeleteShift removes one shift from an employee
func DeleteShift(c *gin.Context) {
	employeeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID")
		return
	}
	shiftID, err := strconv.ParseUint(c.Param("shiftId"), 10, 32)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid shift ID")
		return
	}

	var shift models.Shift
	if err := config.DB.Where("id = ? AND employee_id = ?", uint(shiftID), uint(employeeID)).
		First(&shift).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Shift not found for this employee")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	actor := utils.CurrentActor(c)
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&shift).Error; err != nil {
			return err
		}
		return services.LogActivity(tx, actor, "Delete shift", "shifts", shift.ID, nil)
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete shift")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": shift.ID})
}

// GetWorkload returns each active employee's assigned, pending and
// completed services for a date (today by default).
func GetWorkload(c *gin.Context) {
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
		ID            uint   `json:"id"`
		Employee      string `json:"employee"`
		TotalAssigned int    `json:"totalAssigned"`
		Pending       int    `json:"pending"`
		Completed     int    `json:"completed"`
	}

	var rows []workloadRow
	if err := config.DB.Table("employees").
		Select(`employees.id,
			employees.first_name || ' ' || employees.last_name AS employee,
			COUNT(services.id) AS total_assigned,
			SUM(CASE WHEN services.delivered_at IS NULL THEN 1 ELSE 0 END) AS pending,
			SUM(CASE WHEN services.delivered_at IS NOT NULL THEN 1 ELSE 0 END) AS completed`).
		Joins("LEFT JOIN services ON services.washed_by_id = employees.id AND services.date = ?", day).
		Where("employees.status = ?", "Active").
		Group("employees.id, employees.first_name, employees.last_name").
		Order("pending DESC, total_assigned DESC").
		Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve workload")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":     utils.FormatDate(day),
		"workload": rows,
	})
}

// GetAvailableEmployees lists employees on shift right now, least-loaded
// first, for assigning incoming services.
func GetAvailableEmployees(c *gin.Context) {
	now := time.Now()
	day := now.Weekday().String()
	clock := now.Format("15:04:05")

	type availableRow struct {
		ID              uint   `json:"id"`
		Employee        string `json:"employee"`
		StartTime       string `json:"startTime"`
		EndTime         string `json:"endTime"`
		PendingServices int    `json:"pendingServices"`
	}

	var rows []availableRow
	if err := config.DB.Table("employees").
		Select(`employees.id,
			employees.first_name || ' ' || employees.last_name AS employee,
			work_schedules.start_time, work_schedules.end_time,
			(SELECT COUNT(services.id) FROM services
				WHERE services.washed_by_id = employees.id
				AND services.date = ?
				AND services.delivered_at IS NULL) AS pending_services`,
			utils.BeginningOfDay(now)).
		Joins("JOIN shifts ON shifts.employee_id = employees.id").
		Joins("JOIN work_schedules ON work_schedules.id = shifts.work_schedule_id").
		Where("employees.status = ? AND shifts.day = ? AND ? BETWEEN work_schedules.start_time AND work_schedules.end_time",
			"Active", day, clock).
		Order("pending_services").
		Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve available employees")
		return
	}

	c.JSON(http.StatusOK, rows)
}
