package main

import (
	"fmt"
	"log"
	"os"

	"remindly-backend/config"
	"remindly-backend/models"
	"remindly-backend/routes"
	"remindly-backend/services"

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
		&models.Event{},
		&models.Reminder{},
	)
}

func main() {
	store := services.NewGormStore(config.DB)
	lifecycle := services.NewLifecycle(store, services.SystemClock)
	notifier := services.NewTwilioNotifier(config.DB)

	scheduler := services.NewScheduler(store, lifecycle, notifier, services.SystemClock)
	scheduler.Start()

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
