// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package nominatim implements reverse geocoding against the OpenStreetMap
// Nominatim API.
package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geocode"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/http"
)

const (
	// APIReverseEndpoint is the Nominatim reverse geocoding endpoint. It is a
	// variable in tests via the Endpoint field.
	APIReverseEndpoint = "https://nominatim.openstreetmap.org/reverse"
	APITimeout         = time.Second * 10
	name               = "osm-nominatim"
)

type Nominatim struct {
	http     *http.Client
	lang     language.Tag
	Endpoint string
}

type reverseResult struct {
	APILat      string  `json:"lat"`
	APILon      string  `json:"lon"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
}

type address struct {
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

func New(client *http.Client, lang language.Tag) *Nominatim {
	return &Nominatim{
		lang:     lang,
		http:     client,
		Endpoint: APIReverseEndpoint,
	}
}

func (n *Nominatim) Name() string {
	return name
}

func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (geocode.Address, error) {
	var result reverseResult
	var err error

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", fmt.Sprintf("%f", lat))
	query.Set("lon", fmt.Sprintf("%f", lon))
	query.Set("accept-language", n.lang.String())

	status, err := n.http.GetWithTimeout(ctx, n.Endpoint, &result, query, nil, APITimeout)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to fetch reverse address details from Nominatim API: %w", err)
	}
	if status < 200 || status > 299 {
		return geocode.Address{}, fmt.Errorf("Nominatim API returned status %d", status)
	}

	// Fill the geocode.Address struct
	addr := geocode.Address{
		AddressFound: result.DisplayName != "",
		DisplayName:  result.DisplayName,
		City:         result.Address.City,
		State:        result.Address.State,
		Postcode:     result.Address.Postcode,
		Country:      result.Address.Country,
		CountryCode:  strings.ToUpper(result.Address.CountryCode),
	}
	if addr.City == "" && result.Address.Town != "" {
		addr.City = result.Address.Town
	}
	if addr.City == "" && result.Address.Village != "" {
		addr.City = result.Address.Village
	}
	addr.Latitude, err = strconv.ParseFloat(result.APILat, 64)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	addr.Longitude, err = strconv.ParseFloat(result.APILon, 64)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}

	return addr, nil
}
