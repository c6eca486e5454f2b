package entities

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// CurrentLocationName is the short name given to places resolved from the
// device position, whether or not the reverse lookup produced an address.
const CurrentLocationName = "Current Location"

// validate is shared by every GeoPoint check. A *validator.Validate caches
// struct metadata and is safe for concurrent use, so one instance is enough.
var validate = validator.New()

// GeoPoint represents a geographic coordinate pair in degrees.
//
// Go Learning Note — Value Types vs Reference Types:
// GeoPoint is a small, immutable data holder (two float64s). It is passed and
// returned by value everywhere; copying 16 bytes is cheaper than the pointer
// chasing and nil checks a *GeoPoint would need.
//
// Go Learning Note — Validation Tags:
// The `validate:"..."` struct tags are read by go-playground/validator (the
// same engine gin uses behind `binding:"..."`). Keeping the range invariant in
// tags means handlers and clients share one definition of a valid coordinate.
type GeoPoint struct {
	Latitude  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// NewGeoPoint creates a GeoPoint value from latitude and longitude.
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Latitude: lat, Longitude: lon}
}

// Validate reports whether the point lies inside the valid latitude and
// longitude ranges.
func (p GeoPoint) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid coordinate (%v, %v): %w", p.Latitude, p.Longitude, err)
	}
	return nil
}

// String formats the point the way the UI shows raw coordinates.
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.4f, %.4f", p.Latitude, p.Longitude)
}

// Place is a resolved location: coordinates plus display text. DisplayName is
// the full address; Name is the optional short label shown in inputs.
//
// A Place is immutable once selected. The Trip Controller replaces it wholesale
// when the user picks another suggestion or clears the field.
type Place struct {
	Point       GeoPoint `json:"point"`
	DisplayName string   `json:"display_name"`
	Name        string   `json:"name,omitempty"`
}

// Label returns the short name when present, otherwise the full address.
func (p Place) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.DisplayName
}
