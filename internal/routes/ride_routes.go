package routes

import (
	"ride_pool/internal/controllers"
	"ride_pool/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RideRoutes(r *gin.Engine) {
	rides := r.Group("/rides")
	{
		rides.GET("", controllers.ListRides)
		rides.GET("/search", controllers.SearchRides)
		rides.GET("/rideId/:id", controllers.GetRide)
	}

	authed := r.Group("/rides")
	authed.Use(middleware.RequireAuth())
	{
		authed.POST("/create", controllers.CreateRide)
		authed.GET("/user-rides", controllers.GetUserRides)
		authed.PUT("/update/:id", controllers.UpdateRide)
		authed.POST("/book/:id", controllers.BookRide)
		authed.POST("/request/:id", controllers.CreateRideRequest)
		authed.POST("/handle-request", controllers.HandleRequest)
	}
}
