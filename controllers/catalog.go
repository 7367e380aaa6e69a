// controllers/catalog.go
package controllers

import (
	"net/http"

	"washtrack-backend/config"
	"washtrack-backend/models"
	"washtrack-backend/utils"

	"github.com/gin-gonic/gin"
)

// GetVehicleTypes lists the active vehicle types
func GetVehicleTypes(c *gin.Context) {
	var types []models.VehicleType
	if err := config.DB.Where("status = ?", "Active").
		Order("kind, size").Find(&types).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve vehicle types")
		return
	}
	c.JSON(http.StatusOK, types)
}

// GetWashTypes lists the active wash packages, cheapest first
func GetWashTypes(c *gin.Context) {
	var types []models.WashType
	if err := config.DB.Where("status = ?", "Active").
		Order("cost").Find(&types).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve wash types")
		return
	}
	c.JSON(http.StatusOK, types)
}

// GetClients lists active clients with their registered vehicle counts
func GetClients(c *gin.Context) {
	type clientRow struct {
		ID            uint   `json:"id"`
		Name          string `json:"name"`
		Phone         string `json:"phone"`
		Email         string `json:"email"`
		TotalVehicles int    `json:"totalVehicles"`
	}

	var clients []clientRow
	if err := config.DB.Table("clients").
		Select(`clients.id, clients.name, clients.phone, clients.email,
			COUNT(client_vehicles.id) AS total_vehicles`).
		Joins("LEFT JOIN client_vehicles ON client_vehicles.client_id = clients.id").
		Where("clients.status = ?", "Active").
		Group("clients.id, clients.name, clients.phone, clients.email").
		Order("clients.name").
		Scan(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}

	c.JSON(http.StatusOK, clients)
}

// SearchVehiclesByPlate finds registered vehicles whose plate contains the
// given fragment, with their owners.
func SearchVehiclesByPlate(c *gin.Context) {
	plate := utils.NormalizePlate(c.Param("plate"))
	if plate == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Plate is required")
		return
	}

	var vehicles []models.ClientVehicle
	if err := config.DB.Preload("Client").
		Where("plate LIKE ?", "%"+plate+"%").
		Find(&vehicles).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to search vehicles")
		return
	}

	results := make([]gin.H, 0, len(vehicles))
	for _, v := range vehicles {
		results = append(results, gin.H{
			"plate":       v.Plate,
			"brand":       v.Brand,
			"model":       v.Model,
			"color":       v.Color,
			"clientId":    v.ClientID,
			"clientName":  v.Client.Name,
			"clientPhone": v.Client.Phone,
			"clientEmail": v.Client.Email,
		})
	}

	c.JSON(http.StatusOK, results)
}
