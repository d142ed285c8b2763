// Package booking holds the join-request state machine and seat accounting
// for rides. Everything here mutates in-memory models only; persistence and
// transactions are the caller's job.
package booking

import (
	"errors"

	"ride_pool/internal/models"
)

var (
	ErrSeatsExhausted   = errors.New("no seats available")
	ErrAlreadyResolved  = errors.New("request already resolved")
	ErrNotDriver        = errors.New("only the ride driver may resolve requests")
	ErrDriverOwnRide    = errors.New("driver cannot join their own ride")
	ErrAlreadyPassenger = errors.New("user is already a passenger on this ride")
	ErrAlreadyRequested = errors.New("user already has a pending request for this ride")
)

type Participation string

const (
	ParticipationDriver    Participation = "driver"
	ParticipationRequested Participation = "customer-requested"
	ParticipationPassenger Participation = "passenger"
	ParticipationNone      Participation = "not-participating"
)

// Classify places a user in exactly one participation category for a ride.
// The driver check wins even if the same user also appears elsewhere by data
// anomaly, then pending requests, then confirmed passengers.
func Classify(ride *models.Ride, userID uint) Participation {
	if ride.DriverID == userID {
		return ParticipationDriver
	}
	for _, req := range ride.CustomerRequests {
		if req.UserID == userID && req.Status == models.RequestPending {
			return ParticipationRequested
		}
	}
	for _, p := range ride.Passengers {
		if p.UserID == userID {
			return ParticipationPassenger
		}
	}
	return ParticipationNone
}

// NewRequest builds a pending join request for the user, snapshotting their
// contact details. Requests can only be opened while seats remain.
func NewRequest(ride *models.Ride, userID uint, phone, location string) (models.CustomerRequest, error) {
	switch Classify(ride, userID) {
	case ParticipationDriver:
		return models.CustomerRequest{}, ErrDriverOwnRide
	case ParticipationPassenger:
		return models.CustomerRequest{}, ErrAlreadyPassenger
	case ParticipationRequested:
		return models.CustomerRequest{}, ErrAlreadyRequested
	}
	if ride.AvailableSeats <= 0 {
		return models.CustomerRequest{}, ErrSeatsExhausted
	}
	return models.CustomerRequest{
		RideID:   ride.ID,
		UserID:   userID,
		Phone:    phone,
		Location: location,
		Status:   models.RequestPending,
	}, nil
}

// Approve moves a pending request to approved: one seat is taken and the
// requester becomes a passenger with the contact snapshot from the request.
// Ride and request are only mutated on success. A request left pending after
// its user was seated some other way (direct booking, driver add) is stale
// and cannot be approved.
func Approve(ride *models.Ride, req *models.CustomerRequest) (models.Passenger, error) {
	if req.Status != models.RequestPending {
		return models.Passenger{}, ErrAlreadyResolved
	}
	for _, p := range ride.Passengers {
		if p.UserID != 0 && p.UserID == req.UserID {
			return models.Passenger{}, ErrAlreadyPassenger
		}
	}
	if ride.AvailableSeats <= 0 {
		return models.Passenger{}, ErrSeatsExhausted
	}

	ride.AvailableSeats--
	req.Status = models.RequestApproved

	return models.Passenger{
		RideID:   ride.ID,
		UserID:   req.UserID,
		Name:     req.User.Name,
		Phone:    req.Phone,
		Location: req.Location,
	}, nil
}

// Reject marks a pending request rejected. Seats are untouched; the user may
// submit a fresh request afterwards.
func Reject(req *models.CustomerRequest) error {
	if req.Status != models.RequestPending {
		return ErrAlreadyResolved
	}
	req.Status = models.RequestRejected
	return nil
}

// Book seats the user directly, without the request/approve round trip. A
// user with an open request must wait for the driver to resolve it; seating
// them here too would let one person consume two seats.
func Book(ride *models.Ride, userID uint, name, phone, location string) (models.Passenger, error) {
	switch Classify(ride, userID) {
	case ParticipationDriver:
		return models.Passenger{}, ErrDriverOwnRide
	case ParticipationPassenger:
		return models.Passenger{}, ErrAlreadyPassenger
	case ParticipationRequested:
		return models.Passenger{}, ErrAlreadyRequested
	}
	if ride.AvailableSeats <= 0 {
		return models.Passenger{}, ErrSeatsExhausted
	}

	ride.AvailableSeats--
	return models.Passenger{
		RideID:   ride.ID,
		UserID:   userID,
		Name:     name,
		Phone:    phone,
		Location: location,
	}, nil
}
