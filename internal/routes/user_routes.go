package routes

import (
	"ride_pool/internal/controllers"
	"ride_pool/internal/middleware"

	"github.com/gin-gonic/gin"
)

func UserRoutes(r *gin.Engine) {
	users := r.Group("/users")
	{
		users.POST("/register", controllers.RegisterUser)
		users.POST("/login", controllers.LoginUser)
	}

	authed := r.Group("/users")
	authed.Use(middleware.RequireAuth())
	{
		authed.GET("/me", controllers.GetMe)
		authed.PUT("/profile", controllers.UpdateProfile)
		authed.DELETE("/profile", controllers.DeleteProfile)
		authed.PUT("/updatePhoneNumber", controllers.UpdatePhoneNumber)
	}
}
