package routes

import (
	"remindly-backend/config"
	"remindly-backend/controllers"
	"remindly-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

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
		// Event routes
		events := api.Group("/events")
		{
			events.POST("", controllers.CreateEvent)
			events.GET("", controllers.GetEvents)
			events.GET("/:id", controllers.GetEvent)
			events.DELETE("/:id", controllers.DeleteEvent)
		}

		// Reminder routes
		reminders := api.Group("/reminders")
		{
			reminders.POST("", controllers.CreateReminder)
			reminders.GET("", controllers.GetReminders)
			reminders.DELETE("/:id", controllers.DeleteReminder)
		}

		// Birthday helper
		api.POST("/birthdays", controllers.CreateBirthday)
	}

	return r
}
