package fare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name           string
		price          float64
		availableSeats int
		co2Savings     float64
		wantDriver     float64
		wantPassenger  float64
		wantAdjusted   float64
	}{
		{
			name:           "1000 split across driver and 3 seats",
			price:          1000,
			availableSeats: 3,
			wantDriver:     175.00,
			wantPassenger:  325.00,
			wantAdjusted:   325.00,
		},
		{
			name:           "2kg CO2 saved knocks 10 off the passenger fare",
			price:          1000,
			availableSeats: 3,
			co2Savings:     2,
			wantDriver:     175.00,
			wantPassenger:  325.00,
			wantAdjusted:   315.00,
		},
		{
			name:           "no passengers, driver pays 70% of the whole price",
			price:          500,
			availableSeats: 0,
			wantDriver:     350.00,
			wantPassenger:  650.00,
			wantAdjusted:   650.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Allocate(tt.price, tt.availableSeats, tt.co2Savings)
			require.NoError(t, err)

			r := b.Rounded()
			assert.Equal(t, tt.wantDriver, r.DriverShare)
			assert.Equal(t, tt.wantPassenger, r.PassengerFare)
			assert.Equal(t, tt.wantAdjusted, r.AdjustedPassengerFare)
			assert.Equal(t, tt.price, b.TotalFare)
			assert.Equal(t, tt.co2Savings, b.CO2Savings)
		})
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	// driverShare + passengerFare*seats == price * (0.7 + 1.3*seats) / (seats+1)
	for _, seats := range []int{0, 1, 2, 3, 7, 15} {
		for _, price := range []float64{1, 99.99, 1000, 123456.78} {
			b, err := Allocate(price, seats, 0)
			require.NoError(t, err)

			got := b.DriverShare + b.PassengerFare*float64(seats)
			want := price * (DriverShareRatio + PassengerShareRatio*float64(seats)) / float64(seats+1)
			assert.InDelta(t, want, got, 1e-9)

			again, err := Allocate(price, seats, 0)
			require.NoError(t, err)
			assert.Equal(t, b, again, "allocation must be reproducible from inputs alone")
		}
	}
}

func TestAllocate_ZeroCO2IsIdentity(t *testing.T) {
	b, err := Allocate(840, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, b.PassengerFare, b.AdjustedPassengerFare)
}

func TestAllocate_DiscountCanExceedFare(t *testing.T) {
	// Discount larger than the passenger fare goes negative; current product
	// behavior, kept until there's a decision to clamp.
	b, err := Allocate(10, 1, 100)
	require.NoError(t, err)
	assert.Less(t, b.AdjustedPassengerFare, 0.0)
	assert.InDelta(t, b.PassengerFare-100*CO2DiscountPerKg, b.AdjustedPassengerFare, 1e-9)
}

func TestAllocate_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		seats int
		co2   float64
	}{
		{"zero price", 0, 2, 0},
		{"negative price", -10, 2, 0},
		{"NaN price", math.NaN(), 2, 0},
		{"infinite price", math.Inf(1), 2, 0},
		{"negative seats", 100, -1, 0},
		{"negative co2", 100, 2, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Allocate(tt.price, tt.seats, tt.co2)
			assert.ErrorIs(t, err, ErrInvalidFareInput)
		})
	}
}

func TestRounded(t *testing.T) {
	b := Breakdown{
		DriverShare:           33.33333,
		PassengerFare:         61.90476,
		TotalFare:             100,
		CO2Savings:            1.005,
		AdjustedPassengerFare: 56.87976,
	}
	r := b.Rounded()
	assert.Equal(t, 33.33, r.DriverShare)
	assert.Equal(t, 61.9, r.PassengerFare)
	assert.Equal(t, 56.88, r.AdjustedPassengerFare)
}

func TestHaversineKm(t *testing.T) {
	// Nairobi CBD to Westlands is roughly 3km as the crow flies.
	d := HaversineKm(-1.2864, 36.8172, -1.2647, 36.8028)
	assert.InDelta(t, 2.9, d, 0.5)

	assert.Zero(t, HaversineKm(1.5, 30.0, 1.5, 30.0))
}

func TestEstimateCO2Savings(t *testing.T) {
	assert.InDelta(t, 7.2, EstimateCO2Savings(20, 3), 1e-9)
	assert.Zero(t, EstimateCO2Savings(0, 3))
	assert.Zero(t, EstimateCO2Savings(20, 0))
	assert.Zero(t, EstimateCO2Savings(-5, 2))
}
