package routes

import (
	"ride_pool/internal/controllers"
	"ride_pool/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		admin.GET("/users", controllers.ListUsers)
		admin.GET("/rides", controllers.ListRides)
	}
}
