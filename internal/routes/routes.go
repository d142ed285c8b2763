package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.New()

	// Request logging + panic recovery
	r.Use(ginlog.SetLogger())
	r.Use(gin.Recovery())

	UserRoutes(r)
	RideRoutes(r)
	DriverRoutes(r)
	AdminRoutes(r)
	WebSocketRoutes(r)

	return r
}
