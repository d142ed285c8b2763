package routes

import (
	"ride_pool/internal/controllers"

	"github.com/gin-gonic/gin"
)

func WebSocketRoutes(r *gin.Engine) {
	ws := r.Group("/ws")
	{
		ws.GET("/requests", controllers.HandleRequestFeed)
	}
}
