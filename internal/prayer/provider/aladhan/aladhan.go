// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package aladhan implements the primary prayer time and Qibla source
// against the Aladhan API (https://aladhan.com/prayer-times-api).
package aladhan

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/astro"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/http"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/prayer"
)

const (
	// APIBaseURL is the Aladhan API base, overridable in tests.
	APIBaseURL = "https://api.aladhan.com/v1"
	APITimeout = time.Second * 10
	name       = "aladhan"
)

type Aladhan struct {
	http    *http.Client
	baseURL string
}

type timingsResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Timings struct {
			Fajr       string `json:"Fajr"`
			Sunrise    string `json:"Sunrise"`
			Dhuhr      string `json:"Dhuhr"`
			Asr        string `json:"Asr"`
			Maghrib    string `json:"Maghrib"`
			Isha       string `json:"Isha"`
			Imsak      string `json:"Imsak"`
			Midnight   string `json:"Midnight"`
			Firstthird string `json:"Firstthird"`
			Lastthird  string `json:"Lastthird"`
		} `json:"timings"`
		Date struct {
			Gregorian struct {
				Date    string `json:"date"`
				Weekday struct {
					En string `json:"en"`
				} `json:"weekday"`
			} `json:"gregorian"`
			Hijri struct {
				Date  string `json:"date"`
				Day   string `json:"day"`
				Year  string `json:"year"`
				Month struct {
					Number int    `json:"number"`
					En     string `json:"en"`
				} `json:"month"`
			} `json:"hijri"`
		} `json:"date"`
		Meta struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Timezone  string  `json:"timezone"`
			Method    struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"method"`
		} `json:"meta"`
	} `json:"data"`
}

type qiblaResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Direction float64 `json:"direction"`
	} `json:"data"`
}

func New(client *http.Client) *Aladhan {
	return &Aladhan{
		http:    client,
		baseURL: APIBaseURL,
	}
}

// NewWithBaseURL returns an adapter talking to a custom API base. Used by
// tests with httptest servers.
func NewWithBaseURL(client *http.Client, baseURL string) *Aladhan {
	adapter := New(client)
	adapter.baseURL = baseURL
	return adapter
}

func (a *Aladhan) Name() string {
	return name
}

// FetchTimes fetches the timetable for one day at the given coordinates.
// Out-of-range input is rejected before any network call; non-2xx
// responses and incomplete payloads are reported as retryable errors.
func (a *Aladhan) FetchTimes(ctx context.Context, coords geo.Coordinate,
	method prayer.CalculationMethod, date time.Time,
) (*prayer.Response, error) {
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range (%f, %f)",
			prayer.ErrInvalidInput, coords.Lat, coords.Lon)
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %s", prayer.ErrInvalidInput, method)
	}

	endpoint := fmt.Sprintf("%s/timings/%s", a.baseURL, date.Format("02-01-2006"))
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	query.Set("method", strconv.Itoa(int(method)))

	result := new(timingsResponse)
	status, err := a.http.GetWithTimeout(ctx, endpoint, result, query, nil, APITimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", prayer.ErrProviderUnreachable, err)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: aladhan returned status %d", prayer.ErrProviderUnreachable, status)
	}
	if result.Code != 200 {
		return nil, fmt.Errorf("%w: aladhan returned code %d (%s)",
			prayer.ErrMalformedResponse, result.Code, result.Status)
	}

	return a.normalizeTimes(result, coords, method)
}

func (a *Aladhan) normalizeTimes(result *timingsResponse, coords geo.Coordinate,
	method prayer.CalculationMethod,
) (*prayer.Response, error) {
	// The API may suffix times with a timezone annotation like " (EET)",
	// clean normalizes everything back to plain "HH:MM".
	t := result.Data.Timings
	times := prayer.Times{
		Fajr:       clean(t.Fajr),
		Sunrise:    clean(t.Sunrise),
		Dhuhr:      clean(t.Dhuhr),
		Asr:        clean(t.Asr),
		Maghrib:    clean(t.Maghrib),
		Isha:       clean(t.Isha),
		Imsak:      clean(t.Imsak),
		Midnight:   clean(t.Midnight),
		Firstthird: clean(t.Firstthird),
		Lastthird:  clean(t.Lastthird),
	}
	if err := times.Validate(); err != nil {
		return nil, err
	}

	hijri := result.Data.Date.Hijri
	hijriDay, _ := strconv.Atoi(hijri.Day)
	hijriYear, _ := strconv.Atoi(hijri.Year)

	meta := result.Data.Meta
	if meta.Latitude == 0 && meta.Longitude == 0 {
		meta.Latitude, meta.Longitude = coords.Lat, coords.Lon
	}

	return &prayer.Response{
		Times: times,
		Date: prayer.DateInfo{
			Gregorian:  result.Data.Date.Gregorian.Date,
			Weekday:    result.Data.Date.Gregorian.Weekday.En,
			Hijri:      hijri.Date,
			HijriDay:   hijriDay,
			HijriMonth: hijri.Month.En,
			HijriYear:  hijriYear,
		},
		Meta: prayer.Meta{
			Latitude:  meta.Latitude,
			Longitude: meta.Longitude,
			Timezone:  meta.Timezone,
			Method:    method,
		},
		Origin: prayer.OriginLive,
	}, nil
}

// clean reduces a vendor clock string to "HH:MM". Unparseable input maps
// to the empty string, which Validate rejects for canonical fields.
func clean(raw string) string {
	minutes, err := prayer.MinutesOfDay(raw)
	if err != nil {
		return ""
	}
	return prayer.Clock(minutes)
}

// FetchQibla fetches the Qibla bearing for the given coordinates and
// derives the distance locally, the API does not serve one.
func (a *Aladhan) FetchQibla(ctx context.Context, coords geo.Coordinate) (*prayer.QiblaDirection, error) {
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range (%f, %f)",
			prayer.ErrInvalidInput, coords.Lat, coords.Lon)
	}

	endpoint := fmt.Sprintf("%s/qibla/%s/%s", a.baseURL,
		strconv.FormatFloat(coords.Lat, 'f', -1, 64),
		strconv.FormatFloat(coords.Lon, 'f', -1, 64))

	result := new(qiblaResponse)
	status, err := a.http.GetWithTimeout(ctx, endpoint, result, nil, nil, APITimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", prayer.ErrProviderUnreachable, err)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: aladhan returned status %d", prayer.ErrProviderUnreachable, status)
	}
	if result.Code != 200 {
		return nil, fmt.Errorf("%w: aladhan returned code %d (%s)",
			prayer.ErrMalformedResponse, result.Code, result.Status)
	}
	direction := result.Data.Direction
	if direction < 0 || direction >= 360 {
		return nil, fmt.Errorf("%w: qibla bearing %f out of range", prayer.ErrMalformedResponse, direction)
	}

	// The API serves no distance, derive it locally so live and offline
	// results agree.
	return &prayer.QiblaDirection{
		BearingDegrees: direction,
		DistanceKm:     astro.Distance(coords),
		Origin:         prayer.OriginLive,
	}, nil
}
