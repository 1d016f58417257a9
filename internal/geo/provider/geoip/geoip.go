// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package geoip estimates the user position from their public IP address.
// It is the cheapest strategy and the last network-backed fallback before
// the hard-coded default location.
package geoip

import (
	"context"
	"fmt"
	"time"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/http"
)

const (
	// APIEndpoint is the ip-api.com JSON endpoint, overridable in tests.
	APIEndpoint   = "http://ip-api.com/json/"
	LookupTimeout = time.Second * 5
	name          = "geoip"
)

type GeolocationGeoIPProvider struct {
	name     string
	http     *http.Client
	endpoint string
}

type apiResult struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"region,omitempty"`
	City        string  `json:"city,omitempty"`
	Zip         string  `json:"zip,omitempty"`
	Timezone    string  `json:"timezone"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
}

func NewGeolocationGeoIPProvider(http *http.Client) (*GeolocationGeoIPProvider, error) {
	if http == nil {
		return nil, fmt.Errorf("http client is required")
	}
	return &GeolocationGeoIPProvider{
		name:     name,
		http:     http,
		endpoint: APIEndpoint,
	}, nil
}

// NewWithEndpoint returns a provider talking to a custom endpoint. Used by
// tests with httptest servers.
func NewWithEndpoint(http *http.Client, endpoint string) (*GeolocationGeoIPProvider, error) {
	provider, err := NewGeolocationGeoIPProvider(http)
	if err != nil {
		return nil, err
	}
	provider.endpoint = endpoint
	return provider, nil
}

func (p *GeolocationGeoIPProvider) Name() string {
	return p.name
}

// Locate performs a single IP geolocation lookup. The accuracy class is
// derived from how much address detail the API was able to resolve.
func (p *GeolocationGeoIPProvider) Locate(ctx context.Context) (geo.Fix, error) {
	ctxHTTP, cancelHTTP := context.WithTimeout(ctx, LookupTimeout)
	defer cancelHTTP()

	result := new(apiResult)
	status, err := p.http.Get(ctxHTTP, p.endpoint, result, nil, nil)
	if err != nil {
		return geo.Fix{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}
	if status < 200 || status > 299 {
		return geo.Fix{}, fmt.Errorf("geolocation API returned status %d", status)
	}
	if result.Status != "success" {
		return geo.Fix{}, fmt.Errorf("geolocation lookup failed: %s", result.Message)
	}

	acc := float64(geo.AccuracyUnknown)
	if result.CountryCode != "" {
		acc = geo.AccuracyCountry
	}
	if result.Region != "" {
		acc = geo.AccuracyRegion
	}
	if result.City != "" {
		acc = geo.AccuracyCity
	}
	if result.Zip != "" {
		acc = geo.AccuracyZip
	}

	return geo.Fix{
		Coordinate: geo.Coordinate{
			Lat: geo.Truncate(result.Latitude, geo.TruncPrecision),
			Lon: geo.Truncate(result.Longitude, geo.TruncPrecision),
		},
		AccuracyMeters: acc,
		City:           result.City,
		Country:        result.Country,
		CountryCode:    result.CountryCode,
		Timezone:       result.Timezone,
	}, nil
}
