package models

import "gorm.io/gorm"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// CustomerRequest is a passenger's pending ask to join a ride. Resolved
// requests are soft-deleted so they disappear from pending listings but stay
// visible to the idempotency check on retried approvals.
type CustomerRequest struct {
	gorm.Model
	RideID   uint          `json:"ride_id" gorm:"index"`
	UserID   uint          `json:"user_id" gorm:"index"`
	User     User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Phone    string        `json:"phone"`
	Location string        `json:"location"`
	Status   RequestStatus `json:"status" gorm:"default:'pending'"`
}
