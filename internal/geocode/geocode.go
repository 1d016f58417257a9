// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package geocode turns coordinates into address metadata via external
// reverse-geocoding services.
package geocode

import "context"

// Address is the normalized reverse-geocoding result.
type Address struct {
	AddressFound bool
	CacheHit     bool
	Latitude     float64
	Longitude    float64
	DisplayName  string
	City         string
	State        string
	Country      string
	CountryCode  string
	Postcode     string
}

// Geocoder is implemented by each reverse-geocoding backend.
type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, lat, lon float64) (Address, error)
}
