package controllers

import (
	"encoding/binary"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ride_pool/internal/config"
	"ride_pool/internal/fare"
	"ride_pool/internal/geocode"
	"ride_pool/internal/middleware"
	"ride_pool/internal/models"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// Geocoder resolves free-text ride locations; nil when no provider is
// configured, in which case rides are stored without coordinates.
var Geocoder geocode.Geocoder

// RideResponse mirrors models.Ride but carries Geometry as a GeoJSON string
// for API output.
type RideResponse struct {
	ID               uint                     `json:"ID"`
	CreatedAt        time.Time                `json:"CreatedAt"`
	UpdatedAt        time.Time                `json:"UpdatedAt"`
	DeletedAt        gorm.DeletedAt           `json:"DeletedAt,omitempty"`
	Driver           models.User              `json:"driver"`
	DriverID         uint                     `json:"driver_id"`
	StartLocation    string                   `json:"start_location"`
	EndLocation      string                   `json:"end_location"`
	StartLat         float64                  `json:"start_lat"`
	StartLng         float64                  `json:"start_lng"`
	EndLat           float64                  `json:"end_lat"`
	EndLng           float64                  `json:"end_lng"`
	Geometry         string                   `json:"geometry,omitempty"`
	RideDate         time.Time                `json:"ride_date"`
	Price            float64                  `json:"price"`
	AvailableSeats   int                      `json:"available_seats"`
	CO2Savings       float64                  `json:"co2_savings"`
	RideStatus       models.RideStatus        `json:"ride_status"`
	IsExpired        bool                     `json:"is_expired"`
	Passengers       []models.Passenger       `json:"passengers"`
	CustomerRequests []models.CustomerRequest `json:"customer_requests"`
}

// toRideResponse converts a models.Ride to a RideResponse
func toRideResponse(ride models.Ride) RideResponse {
	jsonGeom, _ := convertWKBToGeoJSON(ride.Geometry)
	return RideResponse{
		ID:               ride.ID,
		CreatedAt:        ride.CreatedAt,
		UpdatedAt:        ride.UpdatedAt,
		DeletedAt:        ride.DeletedAt,
		Driver:           ride.Driver,
		DriverID:         ride.DriverID,
		StartLocation:    ride.StartLocation,
		EndLocation:      ride.EndLocation,
		StartLat:         ride.StartLat,
		StartLng:         ride.StartLng,
		EndLat:           ride.EndLat,
		EndLng:           ride.EndLng,
		Geometry:         jsonGeom,
		RideDate:         ride.RideDate,
		Price:            ride.Price,
		AvailableSeats:   ride.AvailableSeats,
		CO2Savings:       ride.CO2Savings,
		RideStatus:       ride.RideStatus,
		IsExpired:        ride.IsExpired,
		Passengers:       ride.Passengers,
		CustomerRequests: ride.CustomerRequests,
	}
}

func toRideResponses(rides []models.Ride) []RideResponse {
	out := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		out = append(out, toRideResponse(r))
	}
	return out
}

// buildRouteGeometry encodes the start→end segment as a WKB LINESTRING.
func buildRouteGeometry(startLat, startLng, endLat, endLng float64) ([]byte, error) {
	if (startLat == 0 && startLng == 0) || (endLat == 0 && endLng == 0) {
		return nil, nil
	}
	ls := geom.NewLineString(geom.XY)
	if _, err := ls.SetCoords([]geom.Coord{{startLng, startLat}, {endLng, endLat}}); err != nil {
		return nil, err
	}
	return wkb.Marshal(ls, binary.LittleEndian)
}

// convertWKBToGeoJSON converts WKB bytes into a GeoJSON string
func convertWKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// resolveRideGeography geocodes both endpoints and derives geometry and a
// CO2 savings estimate. Failures only log; a ride is valid without
// coordinates.
func resolveRideGeography(c *gin.Context, ride *models.Ride) {
	if Geocoder == nil {
		return
	}
	ctx := c.Request.Context()

	start, err := Geocoder.Geocode(ctx, ride.StartLocation)
	if err != nil {
		logrus.WithError(err).WithField("location", ride.StartLocation).Warn("Could not geocode start location")
		return
	}
	end, err := Geocoder.Geocode(ctx, ride.EndLocation)
	if err != nil {
		logrus.WithError(err).WithField("location", ride.EndLocation).Warn("Could not geocode end location")
		return
	}

	ride.StartLat = start.Location.Lat
	ride.StartLng = start.Location.Lng
	ride.EndLat = end.Location.Lat
	ride.EndLng = end.Location.Lng

	if geomBytes, err := buildRouteGeometry(ride.StartLat, ride.StartLng, ride.EndLat, ride.EndLng); err == nil {
		ride.Geometry = geomBytes
	} else {
		logrus.WithError(err).Warn("Could not build ride geometry")
	}

	if ride.CO2Savings == 0 {
		distKm := fare.HaversineKm(ride.StartLat, ride.StartLng, ride.EndLat, ride.EndLng)
		ride.CO2Savings = fare.EstimateCO2Savings(distKm, ride.AvailableSeats)
	}
}

// CreateRide registers a new ride offered by the authenticated driver.
func CreateRide(c *gin.Context) {
	var input struct {
		StartLocation  string    `json:"start_location" binding:"required"`
		EndLocation    string    `json:"end_location" binding:"required"`
		RideDate       time.Time `json:"ride_date" binding:"required"`
		Price          float64   `json:"price" binding:"required,gt=0"`
		AvailableSeats int       `json:"available_seats" binding:"gte=0"`
		CO2Savings     float64   `json:"co2_savings" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ride input: " + err.Error()})
		return
	}

	ride := models.Ride{
		DriverID:       middleware.CurrentUserID(c),
		StartLocation:  input.StartLocation,
		EndLocation:    input.EndLocation,
		RideDate:       input.RideDate,
		Price:          input.Price,
		AvailableSeats: input.AvailableSeats,
		CO2Savings:     input.CO2Savings,
		RideStatus:     models.RideScheduled,
	}
	resolveRideGeography(c, &ride)

	if err := config.DB.Create(&ride).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ride: " + err.Error()})
		return
	}
	config.DB.Preload("Driver").First(&ride, ride.ID)

	c.JSON(http.StatusCreated, gin.H{"ride": toRideResponse(ride)})
}

// ListRides returns every ride. An empty result is a 200 with an empty list.
func ListRides(c *gin.Context) {
	var rides []models.Ride
	if err := config.DB.Preload("Driver").Find(&rides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing rides: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toRideResponses(rides)})
}

// SearchRides filters scheduled, unexpired rides by free-text locations.
func SearchRides(c *gin.Context) {
	start := c.Query("startLocation")
	end := c.Query("endLocation")

	query := config.DB.Preload("Driver").
		Where("is_expired = ?", false).
		Where("ride_status = ?", models.RideScheduled)
	if start != "" {
		query = query.Where("start_location ILIKE ?", "%"+start+"%")
	}
	if end != "" {
		query = query.Where("end_location ILIKE ?", "%"+end+"%")
	}

	var rides []models.Ride
	if err := query.Find(&rides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching rides: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toRideResponses(rides)})
}

// GetRide returns one ride with its passengers, pending requests and fare
// breakdown. A fare computation failure drops the fare panel, not the ride.
func GetRide(c *gin.Context) {
	id := c.Param("id")

	var ride models.Ride
	err := config.DB.Preload("Driver").
		Preload("Passengers").
		Preload("CustomerRequests").
		Preload("CustomerRequests.User").
		First(&ride, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ride not found"})
		return
	}

	resp := gin.H{"ride": toRideResponse(ride)}
	if breakdown, err := fare.Allocate(ride.Price, ride.AvailableSeats, ride.CO2Savings); err != nil {
		logrus.WithError(err).WithField("ride_id", ride.ID).Error("Fare computation failed, omitting fare panel")
	} else {
		resp["fare"] = breakdown.Rounded()
	}

	c.JSON(http.StatusOK, resp)
}

// GetUserRides lists rides the caller drives, rides they ride on, and rides
// they have asked to join.
func GetUserRides(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	passengerRides := config.DB.Table("passengers").Select("ride_id").
		Where("user_id = ? AND deleted_at IS NULL", userID)
	requestedRides := config.DB.Table("customer_requests").Select("ride_id").
		Where("user_id = ? AND status = ? AND deleted_at IS NULL", userID, models.RequestPending)

	var rides []models.Ride
	err := config.DB.Preload("Driver").
		Preload("Passengers").
		Preload("CustomerRequests").
		Preload("CustomerRequests.User").
		Where("driver_id = ? OR id IN (?) OR id IN (?)", userID, passengerRides, requestedRides).
		Find(&rides).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching rides: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toRideResponses(rides)})
}

// UpdateRide applies a partial update to a ride owned by the caller.
func UpdateRide(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id := c.Param("id")

	var ride models.Ride
	if err := config.DB.Where("id = ? AND driver_id = ?", id, userID).First(&ride).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ride not found"})
		return
	}

	var input struct {
		StartLocation  *string            `json:"start_location"`
		EndLocation    *string            `json:"end_location"`
		RideDate       *time.Time         `json:"ride_date"`
		Price          *float64           `json:"price"`
		AvailableSeats *int               `json:"available_seats"`
		CO2Savings     *float64           `json:"co2_savings"`
		RideStatus     *models.RideStatus `json:"ride_status"`
		IsExpired      *bool              `json:"is_expired"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rerouted := false
	if input.StartLocation != nil {
		ride.StartLocation = *input.StartLocation
		rerouted = true
	}
	if input.EndLocation != nil {
		ride.EndLocation = *input.EndLocation
		rerouted = true
	}
	if input.RideDate != nil {
		ride.RideDate = *input.RideDate
		// Rescheduling to the future revives an expired ride.
		if input.IsExpired == nil && ride.RideDate.After(time.Now()) {
			ride.IsExpired = false
		}
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
			return
		}
		ride.Price = *input.Price
	}
	if input.AvailableSeats != nil {
		if *input.AvailableSeats < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "available_seats cannot be negative"})
			return
		}
		ride.AvailableSeats = *input.AvailableSeats
	}
	if input.CO2Savings != nil {
		if *input.CO2Savings < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "co2_savings cannot be negative"})
			return
		}
		ride.CO2Savings = *input.CO2Savings
	}
	if input.RideStatus != nil {
		switch *input.RideStatus {
		case models.RideScheduled, models.RideInProgress, models.RideEnded:
			ride.RideStatus = *input.RideStatus
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ride_status"})
			return
		}
	}
	if input.IsExpired != nil {
		ride.IsExpired = *input.IsExpired
	}

	if rerouted {
		ride.StartLat, ride.StartLng, ride.EndLat, ride.EndLng = 0, 0, 0, 0
		ride.Geometry = nil
		resolveRideGeography(c, &ride)
	}

	if err := config.DB.Save(&ride).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ride: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ride": toRideResponse(ride)})
}
