package utils

import (
	"math"

	"ridefare/internal/domain/entities"
)

// RateCard is the fixed pricing of one vehicle class or provider.
//
// Fare = round(BaseFare + DistanceKm*PerKmRate + DurationMins*PerMinuteRate)
// ETA  = round(DurationMins + ETABufferMins)
type RateCard struct {
	BaseFare      float64 `json:"base_fare"`
	PerKmRate     float64 `json:"per_km_rate"`
	PerMinuteRate float64 `json:"per_minute_rate"`
	ETABufferMins float64 `json:"eta_buffer_mins"`
}

// RateTable selects a RateCard per provider: an entry in ByProvider wins,
// otherwise the provider's vehicle class decides.
type RateTable struct {
	ByClass    map[entities.VehicleClass]RateCard
	ByProvider map[string]RateCard
}

// DefaultRateTable returns the rate card used for the default catalog.
func DefaultRateTable() RateTable {
	return RateTable{
		ByClass: map[entities.VehicleClass]RateCard{
			entities.VehicleTwoWheeler:   {BaseFare: 25, PerKmRate: 4, PerMinuteRate: 0.5, ETABufferMins: 3},
			entities.VehicleThreeWheeler: {BaseFare: 35, PerKmRate: 12, PerMinuteRate: 1, ETABufferMins: 5},
			entities.VehicleFourWheeler:  {BaseFare: 40, PerKmRate: 14, PerMinuteRate: 2, ETABufferMins: 7},
		},
		ByProvider: map[string]RateCard{
			"uber": {BaseFare: 50, PerKmRate: 18, PerMinuteRate: 2, ETABufferMins: 7},
			"ola":  {BaseFare: 45, PerKmRate: 16, PerMinuteRate: 2, ETABufferMins: 7},
		},
	}
}

// CardFor returns the rate card that applies to p. An unknown class yields
// the zero card, so the quote degrades to the ride duration.
func (t RateTable) CardFor(p entities.ProviderProfile) RateCard {
	if card, ok := t.ByProvider[p.ID]; ok {
		return card
	}
	return t.ByClass[p.VehicleClass]
}

// RawFare applies the card without any jitter.
func (c RateCard) RawFare(distanceKm, durationMins float64) float64 {
	return math.Round(c.BaseFare + distanceKm*c.PerKmRate + durationMins*c.PerMinuteRate)
}

// RawETA is the ride duration plus the class pickup buffer, in minutes.
func (c RateCard) RawETA(durationMins float64) float64 {
	return math.Round(durationMins + c.ETABufferMins)
}

// MetersToKm converts meters to kilometers.
func MetersToKm(meters float64) float64 {
	return meters / 1000
}

// SecondsToMinutes converts seconds to minutes.
func SecondsToMinutes(seconds float64) float64 {
	return seconds / 60
}
