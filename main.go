package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/torquepoint/autoshop-api/config"
	"github.com/torquepoint/autoshop-api/controllers"
	"github.com/torquepoint/autoshop-api/middleware"
	"github.com/torquepoint/autoshop-api/models"
	"github.com/torquepoint/autoshop-api/services"
)

func main() {
	log.Println("Starting Auto Shop Appointment API server...")

	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := appconfig.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := appconfig.GetDB()
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Photo storage is optional in development
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitPhotoService(s3Service)
		log.Println("Vehicle photo storage initialized")
	} else {
		log.Println("AWS_S3_BUCKET not set, vehicle photo uploads disabled")
	}

	router := buildRouter(cfg)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s (booking mode: %s)", port, cfg.BookingMode)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildRouter wires middleware and routes. Split out so tests can exercise
// the full routing table.
func buildRouter(cfg *appconfig.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://app.torquepoint.io"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Booking de-duplication is active only when Redis is configured.
	var bookingGuards []gin.HandlerFunc
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		bookingGuards = append(bookingGuards, middleware.Idempotency(rdb, 24*time.Hour))
		log.Println("Booking idempotency guard enabled")
	}

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		auth := v1.Group("")
		auth.Use(middleware.EnsureValidToken(cfg))
		{
			auth.POST("/users", controllers.CreateProfile)
			auth.GET("/users/me", controllers.GetMyProfile)
			auth.PUT("/users/me", controllers.UpdateMyProfile)

			auth.GET("/appointments/slots", controllers.GetBookingSlots)
			auth.POST("/appointments", append(bookingGuards, controllers.BookAppointment)...)
			auth.GET("/appointments", controllers.ListAppointments)
			auth.GET("/appointments/:id", controllers.GetAppointment)
			auth.PUT("/appointments/:id", controllers.UpdateAppointment)
			auth.PATCH("/appointments/:id/status", controllers.SetAppointmentStatus)
			auth.POST("/appointments/:id/photo", controllers.UploadVehiclePhoto)
			auth.POST("/appointments/:id/messages", controllers.SendMessage)
			auth.GET("/appointments/:id/messages", controllers.ListMessages)

			auth.GET("/tasks", controllers.ListMyTasks)
			auth.PATCH("/tasks/:id/status", controllers.UpdateTaskStatus)

			admin := auth.Group("/admin")
			{
				admin.PUT("/appointments/:id/approve", controllers.ApproveAppointment)
				admin.PUT("/appointments/:id/reject", controllers.RejectAppointment)
				admin.POST("/appointments/:id/tasks", controllers.AssignTask)
				admin.GET("/technicians", controllers.ListTechnicians)
				admin.PUT("/technicians/:id/approve", controllers.ApproveTechnician)
			}
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Auto Shop Appointment API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := appconfig.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
