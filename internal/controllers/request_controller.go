package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ride_pool/internal/booking"
	"ride_pool/internal/config"
	"ride_pool/internal/middleware"
	"ride_pool/internal/models"
)

// CreateRideRequest opens a pending join request on a ride for the caller.
func CreateRideRequest(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id := c.Param("id")

	var input struct {
		Phone    string `json:"phone"`
		Location string `json:"location"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ride models.Ride
	err := config.DB.Preload("Passengers").Preload("CustomerRequests").First(&ride, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ride not found"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	phone := input.Phone
	if phone == "" {
		phone = user.Phone
	}

	req, err := booking.NewRequest(&ride, userID, phone, input.Location)
	if err != nil {
		c.JSON(requestErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	if err := config.DB.Create(&req).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request: " + err.Error()})
		return
	}

	RequestHub.Publish(RequestEvent{
		Type:          EventRequestCreated,
		DriverID:      ride.DriverID,
		RideID:        ride.ID,
		PassengerID:   userID,
		PassengerName: user.Name,
		Status:        string(models.RequestPending),
	})

	c.JSON(http.StatusCreated, gin.H{"request": req})
}

// HandleRequest resolves a pending join request. Body keys match the web
// client: {rideId, action: 'approve'|'reject', passengerId}. Retries of an
// already-resolved request are acknowledged with a 200, not an error.
func HandleRequest(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var input struct {
		RideID      uint   `json:"rideId" binding:"required"`
		Action      string `json:"action" binding:"required,oneof=approve reject"`
		PassengerID uint   `json:"passengerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	// Lock the ride row for the whole resolution; two drivers (or a retry
	// racing the original) must serialize on the seat count.
	var ride models.Ride
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Passengers").First(&ride, input.RideID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Ride not found"})
		return
	}
	if ride.DriverID != userID {
		tx.Rollback()
		c.JSON(http.StatusForbidden, gin.H{"error": booking.ErrNotDriver.Error()})
		return
	}

	// Unscoped: resolved requests are soft-deleted, and a retried resolve
	// must find them to report the no-op instead of a 404. Locked so a
	// concurrent resolution sees the terminal status, not stale pending.
	var req models.CustomerRequest
	err := tx.Unscoped().Clauses(clause.Locking{Strength: "UPDATE"}).Preload("User").
		Where("ride_id = ? AND user_id = ?", input.RideID, input.PassengerID).
		Order("id DESC").First(&req).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No request from this passenger"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	switch input.Action {
	case "approve":
		passenger, err := booking.Approve(&ride, &req)
		if err != nil {
			tx.Rollback()
			respondResolveError(c, err, req)
			return
		}
		if err := tx.Create(&passenger).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add passenger: " + err.Error()})
			return
		}
		if err := takeSeat(tx, ride.ID); err != nil {
			tx.Rollback()
			c.JSON(requestErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
	case "reject":
		if err := booking.Reject(&req); err != nil {
			tx.Rollback()
			respondResolveError(c, err, req)
			return
		}
	}

	// Persist the terminal status, then soft-delete so the request drops out
	// of the pending list but stays findable for retries.
	if err := tx.Model(&models.CustomerRequest{}).Where("id = ?", req.ID).
		Update("status", req.Status).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request: " + err.Error()})
		return
	}
	if err := tx.Delete(&models.CustomerRequest{}, req.ID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve request: " + err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	RequestHub.Publish(RequestEvent{
		Type:          EventRequestResolved,
		DriverID:      ride.DriverID,
		RideID:        ride.ID,
		PassengerID:   input.PassengerID,
		PassengerName: req.User.Name,
		Status:        string(req.Status),
	})

	c.JSON(http.StatusOK, gin.H{
		"message":         "request " + string(req.Status),
		"available_seats": ride.AvailableSeats,
	})
}

// BookRide seats the caller directly on a ride, skipping driver approval.
func BookRide(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id := c.Param("id")

	var input struct {
		Phone    string `json:"phone"`
		Location string `json:"location"`
	}
	// Body is optional; an empty request books with profile defaults.
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	var ride models.Ride
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Passengers").Preload("CustomerRequests").First(&ride, id).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Ride not found"})
		return
	}

	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	phone := input.Phone
	if phone == "" {
		phone = user.Phone
	}

	passenger, err := booking.Book(&ride, userID, user.Name, phone, input.Location)
	if err != nil {
		tx.Rollback()
		c.JSON(requestErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	if err := tx.Create(&passenger).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book seat: " + err.Error()})
		return
	}
	if err := takeSeat(tx, ride.ID); err != nil {
		tx.Rollback()
		c.JSON(requestErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"passenger":       passenger,
		"available_seats": ride.AvailableSeats,
	})
}

// AddPassenger lets a driver seat someone directly, e.g. a passenger who
// arranged the ride off-app.
func AddPassenger(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var input struct {
		RideID        uint `json:"rideId" binding:"required"`
		PassengerData struct {
			UserID   uint   `json:"user_id"`
			Name     string `json:"name"`
			Phone    string `json:"phone" binding:"required"`
			Location string `json:"location"`
		} `json:"passengerData" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	var ride models.Ride
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ride, input.RideID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Ride not found"})
		return
	}
	if ride.DriverID != userID {
		tx.Rollback()
		c.JSON(http.StatusForbidden, gin.H{"error": "only the ride driver may add passengers"})
		return
	}
	if ride.AvailableSeats <= 0 {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": booking.ErrSeatsExhausted.Error()})
		return
	}

	passenger := models.Passenger{
		RideID:   ride.ID,
		UserID:   input.PassengerData.UserID,
		Name:     input.PassengerData.Name,
		Phone:    input.PassengerData.Phone,
		Location: input.PassengerData.Location,
	}
	ride.AvailableSeats--

	if err := tx.Create(&passenger).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add passenger: " + err.Error()})
		return
	}
	if err := takeSeat(tx, ride.ID); err != nil {
		tx.Rollback()
		c.JSON(requestErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"passenger":       passenger,
		"available_seats": ride.AvailableSeats,
	})
}

// takeSeat decrements the ride's seat count in the database, guarded so the
// count never goes below zero. Zero matched rows means a concurrent booking
// took the last seat after our in-memory check.
func takeSeat(tx *gorm.DB, rideID uint) error {
	res := tx.Model(&models.Ride{}).
		Where("id = ? AND available_seats > 0", rideID).
		Update("available_seats", gorm.Expr("available_seats - ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return booking.ErrSeatsExhausted
	}
	return nil
}

func respondResolveError(c *gin.Context, err error, req models.CustomerRequest) {
	if errors.Is(err, booking.ErrAlreadyResolved) {
		c.JSON(http.StatusOK, gin.H{
			"message": "request already resolved",
			"status":  req.Status,
		})
		return
	}
	c.JSON(requestErrorStatus(err), gin.H{"error": err.Error()})
}

func requestErrorStatus(err error) int {
	switch {
	case errors.Is(err, booking.ErrDriverOwnRide):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrSeatsExhausted),
		errors.Is(err, booking.ErrAlreadyPassenger),
		errors.Is(err, booking.ErrAlreadyRequested):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
