package routes

import (
	"ride_pool/internal/controllers"
	"ride_pool/internal/middleware"

	"github.com/gin-gonic/gin"
)

func DriverRoutes(r *gin.Engine) {
	driver := r.Group("/driver")
	driver.Use(middleware.RequireAuth())
	{
		driver.PUT("/add-passenger", controllers.AddPassenger)
	}
}
