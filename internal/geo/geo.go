// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package geo resolves a best-effort user location through an ordered list
// of geolocation providers, falling back to a fixed default when all of
// them fail.
package geo

import (
	"context"
	"math"
)

// Accuracy classes in meters, used by providers to describe how precise a
// fix is.
const (
	AccuracyExact   = 10
	AccuracyZip     = 3000
	AccuracyCity    = 15000
	AccuracyRegion  = 100000
	AccuracyCountry = 300000
	AccuracyUnknown = 1000000
)

// TruncPrecision is the number of decimal places coordinates are truncated
// to before they leave a provider (~11m resolution).
const TruncPrecision = 4

// Coordinate represents a geographic coordinate.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid checks if the coordinate is valid according to the EPSG logic.
// NaN and infinite values are rejected.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Location is a resolved user position with optional address metadata.
// It is never mutated after creation, only replaced.
type Location struct {
	Coordinate
	City        string
	Country     string
	CountryCode string
	Timezone    string // IANA name

	Source         string
	AccuracyMeters float64
	Fallback       bool // true when this is the hard-coded default
}

// Fix is a raw coordinate fix as delivered by a provider, before any
// reverse geocoding.
type Fix struct {
	Coordinate
	AccuracyMeters float64
	City           string
	Country        string
	CountryCode    string
	Timezone       string
}

// Provider is implemented by each geolocation strategy.
type Provider interface {
	Name() string
	Locate(ctx context.Context) (Fix, error)
}

// Truncate cuts a float to the given number of decimal places.
func Truncate(x float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Trunc(x*p) / p
}
