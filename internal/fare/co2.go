package fare

import "math"

const (
	earthRadiusKm = 6371.0

	// Average passenger-car emission factor, kg CO2 per km.
	CO2KgPerKm = 0.12
)

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// EstimateCO2Savings estimates the kilograms of CO2 avoided by sharing a
// trip of distanceKm with up to seats passengers, each of whom would
// otherwise have driven alone.
func EstimateCO2Savings(distanceKm float64, seats int) float64 {
	if distanceKm <= 0 || seats <= 0 {
		return 0
	}
	return distanceKm * CO2KgPerKm * float64(seats)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
