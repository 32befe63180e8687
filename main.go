package main

import (
	"lmsync/config"
	"lmsync/database"
	authRoutes "lmsync/routers/authRoutes"
	reportRoutes "lmsync/routers/reportRoutes"
	syncRoutes "lmsync/routers/syncRoutes"
	"lmsync/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"log"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	syncRoutes.SetupSyncRoutes(app)
	reportRoutes.SetupReportRoutes(app)

	// Nightly re-sync of all visible courses
	utils.InitializeSyncScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
