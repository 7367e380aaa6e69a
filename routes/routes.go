package routes

import (
	"washtrack-backend/config"
	"washtrack-backend/controllers"
	"washtrack-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-User"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	r.GET("/api/status", controllers.GetStatus)

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Service routes
		services := api.Group("/services")
		{
			services.POST("", controllers.CreateService)
			services.GET("", controllers.GetServices)
			services.GET("/pending", controllers.GetPendingServices)
			services.GET("/plate/:plate", controllers.GetServicesByPlate)
			services.GET("/:id", controllers.GetService)
			services.PUT("/:id/complete", controllers.CompleteService)
			services.PUT("/:id/cancel", controllers.CancelService)
		}

		// Catalog routes
		catalog := api.Group("/catalog")
		{
			catalog.GET("/vehicle-types", controllers.GetVehicleTypes)
			catalog.GET("/wash-types", controllers.GetWashTypes)
			catalog.GET("/clients", controllers.GetClients)
			catalog.GET("/vehicles/:plate", controllers.SearchVehiclesByPlate)
		}

		// Inventory routes
		inventory := api.Group("/inventory")
		{
			inventory.GET("", controllers.GetInventory)
			inventory.GET("/low-stock", controllers.GetLowStock)
			inventory.GET("/types", controllers.GetConsumableTypes)
			inventory.GET("/value", controllers.GetInventoryValue)
			inventory.GET("/consumption", controllers.GetConsumptionHistory)
			inventory.GET("/:id", controllers.GetConsumable)
			inventory.POST("", controllers.CreateConsumable)
			inventory.PUT("/:id", controllers.UpdateConsumable)
			inventory.PUT("/:id/stock", controllers.AdjustStock)
		}

		// Employee routes
		employees := api.Group("/employees")
		{
			employees.GET("", controllers.GetEmployees)
			employees.GET("/schedules", controllers.GetWorkSchedules)
			employees.GET("/shifts", controllers.GetAllShifts)
			employees.GET("/workload", controllers.GetWorkload)
			employees.GET("/available", controllers.GetAvailableEmployees)
			employees.GET("/:id", controllers.GetEmployee)
			employees.GET("/:id/shifts", controllers.GetEmployeeShifts)
			employees.POST("", controllers.CreateEmployee)
			employees.POST("/:id/shifts", controllers.AssignShift)
			employees.PUT("/:id", controllers.UpdateEmployee)
			employees.DELETE("/:id", controllers.DeleteEmployee)
			employees.DELETE("/:id/shifts/:shiftId", controllers.DeleteShift)
		}

		// Report routes
		reportController := controllers.ReportController{}
		reports := api.Group("/reports")
		{
			reports.GET("/daily-revenue", reportController.GetDailyRevenue)
			reports.GET("/average-duration", reportController.GetAverageDuration)
			reports.GET("/workload", reportController.GetWorkloadReport)
			reports.GET("/weekday-distribution", reportController.GetWeekdayDistribution)
			reports.GET("/employee-efficiency", reportController.GetEmployeeEfficiency)
			reports.GET("/consumable-usage", reportController.GetConsumableUsage)
		}

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}
