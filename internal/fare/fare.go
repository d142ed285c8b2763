package fare

import (
	"errors"
	"math"
)

// Share ratios of the per-head base fare. The driver pays less than an even
// split because they provide the car; passengers cover the difference.
const (
	DriverShareRatio    = 0.7
	PassengerShareRatio = 1.3

	// Flat discount per kilogram of CO2 avoided, in currency units.
	CO2DiscountPerKg = 5.0
)

var ErrInvalidFareInput = errors.New("invalid fare input")

// Breakdown is the computed split of a ride's total price. It is derived on
// demand from the ride and never persisted.
type Breakdown struct {
	DriverShare           float64 `json:"driver_share"`
	PassengerFare         float64 `json:"passenger_fare"`
	TotalFare             float64 `json:"total_fare"`
	CO2Savings            float64 `json:"co2_savings"`
	AdjustedPassengerFare float64 `json:"adjusted_passenger_fare"`
}

// Allocate splits price across the driver and availableSeats passengers and
// applies the CO2 discount to the per-passenger fare. The adjusted fare is
// intentionally not floored at zero when the discount exceeds it.
func Allocate(price float64, availableSeats int, co2Savings float64) (Breakdown, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return Breakdown{}, ErrInvalidFareInput
	}
	if availableSeats < 0 {
		return Breakdown{}, ErrInvalidFareInput
	}
	if math.IsNaN(co2Savings) || co2Savings < 0 {
		return Breakdown{}, ErrInvalidFareInput
	}

	totalPeople := float64(availableSeats) + 1 // driver occupies a seat too
	base := price / totalPeople

	b := Breakdown{
		DriverShare:   base * DriverShareRatio,
		PassengerFare: base * PassengerShareRatio,
		TotalFare:     price,
		CO2Savings:    co2Savings,
	}

	discount := 0.0
	if co2Savings > 0 {
		discount = co2Savings * CO2DiscountPerKg
	}
	b.AdjustedPassengerFare = b.PassengerFare - discount

	return b, nil
}

// Rounded returns a copy with every amount rounded to 2 decimal places.
// Internal computation keeps full precision; rounding is for display only.
func (b Breakdown) Rounded() Breakdown {
	return Breakdown{
		DriverShare:           round2(b.DriverShare),
		PassengerFare:         round2(b.PassengerFare),
		TotalFare:             round2(b.TotalFare),
		CO2Savings:            round2(b.CO2Savings),
		AdjustedPassengerFare: round2(b.AdjustedPassengerFare),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
