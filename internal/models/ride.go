package models

import (
	"time"

	"gorm.io/gorm"
)

type RideStatus string

const (
	RideScheduled  RideStatus = "scheduled"
	RideInProgress RideStatus = "in_progress"
	RideEnded      RideStatus = "ended"
)

// Ride is a scheduled shared trip offered by a driver.
// Start/end locations are free text as entered by the driver; coordinates
// are filled in when geocoding is available.
type Ride struct {
	gorm.Model

	DriverID uint `json:"driver_id" gorm:"index"`
	Driver   User `gorm:"foreignKey:DriverID" json:"driver,omitempty"`

	StartLocation string  `json:"start_location" binding:"required"`
	EndLocation   string  `json:"end_location" binding:"required"`
	StartLat      float64 `json:"start_lat"`
	StartLng      float64 `json:"start_lng"`
	EndLat        float64 `json:"end_lat"`
	EndLng        float64 `json:"end_lng"`

	// Start→end LINESTRING stored as WKB; exposed as GeoJSON in responses.
	Geometry []byte `gorm:"type:bytea" json:"-"`

	RideDate       time.Time  `json:"ride_date"`
	Price          float64    `json:"price"`
	AvailableSeats int        `json:"available_seats"`
	CO2Savings     float64    `json:"co2_savings"` // kg avoided by sharing
	RideStatus     RideStatus `json:"ride_status" gorm:"default:'scheduled'"`
	IsExpired      bool       `json:"is_expired"`

	Passengers       []Passenger       `gorm:"foreignKey:RideID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"passengers,omitempty"`
	CustomerRequests []CustomerRequest `gorm:"foreignKey:RideID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"customer_requests,omitempty"`
}
