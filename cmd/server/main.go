package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"ride_pool/internal/config"
	"ride_pool/internal/controllers"
	"ride_pool/internal/geocode"
	"ride_pool/internal/logger"
	"ride_pool/internal/middleware"
	"ride_pool/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database and the optional geocode cache
	config.InitDB()
	config.InitRedis()

	// Geocoding is optional; without an API key rides are stored with
	// free-text locations only.
	if apiKey := os.Getenv("GOOGLE_MAPS_API_KEY"); apiKey != "" {
		provider, err := geocode.NewGoogleProvider(apiKey)
		if err != nil {
			log.Fatalf("failed to init geocoder: %v", err)
		}
		if config.Redis != nil {
			controllers.Geocoder = geocode.WithCache(provider, config.Redis)
		} else {
			controllers.Geocoder = provider
		}
	} else {
		log.Println("GOOGLE_MAPS_API_KEY not set – geocoding disabled")
	}

	// Setup Gin router
	r := routes.SetupRouter()

	// Background sweep for rides whose date has passed
	controllers.StartExpirySweeper(10 * time.Minute)

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running at :%s", port)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+port, handler))
}
