package main

import (
	"fmt"
	"log"
	"os"

	"washtrack-backend/config"
	"washtrack-backend/models"
	"washtrack-backend/routes"
	"washtrack-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.WorkSchedule{},
		&models.Shift{},
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
	)
}

func main() {
	alerts := services.NewStockAlertService(config.DB)
	alerts.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
