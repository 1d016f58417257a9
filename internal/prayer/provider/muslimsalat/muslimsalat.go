// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package muslimsalat implements the fallback prayer time source against
// the MuslimSalat API (https://muslimsalat.com). The API serves 12-hour
// clock times and no per-method timetable beyond its own defaults, so it
// is only consulted when the primary source is unreachable.
package muslimsalat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/http"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/prayer"
)

const (
	// APIBaseURL is the MuslimSalat API base, overridable in tests.
	APIBaseURL = "https://muslimsalat.com"
	APITimeout = time.Second * 10
	name       = "muslimsalat"
)

type MuslimSalat struct {
	http    *http.Client
	baseURL string
}

type dailyResponse struct {
	Title      string `json:"title"`
	Timezone   any    `json:"timezone"`
	StatusCode int    `json:"status_code"`
	Items      []struct {
		DateFor string `json:"date_for"`
		Fajr    string `json:"fajr"`
		Shurooq string `json:"shurooq"`
		Dhuhr   string `json:"dhuhr"`
		Asr     string `json:"asr"`
		Maghrib string `json:"maghrib"`
		Isha    string `json:"isha"`
	} `json:"items"`
}

func New(client *http.Client) *MuslimSalat {
	return &MuslimSalat{
		http:    client,
		baseURL: APIBaseURL,
	}
}

// NewWithBaseURL returns an adapter talking to a custom API base. Used by
// tests with httptest servers.
func NewWithBaseURL(client *http.Client, baseURL string) *MuslimSalat {
	adapter := New(client)
	adapter.baseURL = baseURL
	return adapter
}

func (m *MuslimSalat) Name() string {
	return name
}

// FetchTimes fetches today's timetable for the given coordinates. The API
// has no notion of a calculation method parameter or an arbitrary date;
// the method is validated and recorded in the response metadata, a date
// other than today is rejected so the resolver moves on to a source that
// can serve it.
func (m *MuslimSalat) FetchTimes(ctx context.Context, coords geo.Coordinate,
	method prayer.CalculationMethod, date time.Time,
) (*prayer.Response, error) {
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range (%f, %f)",
			prayer.ErrInvalidInput, coords.Lat, coords.Lon)
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %s", prayer.ErrInvalidInput, method)
	}
	if !sameDay(date, time.Now()) {
		return nil, fmt.Errorf("%w: muslimsalat only serves the current day", prayer.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("%s/%s,%s/daily.json", m.baseURL,
		strconv.FormatFloat(coords.Lat, 'f', -1, 64),
		strconv.FormatFloat(coords.Lon, 'f', -1, 64))

	result := new(dailyResponse)
	status, err := m.http.GetWithTimeout(ctx, endpoint, result, nil, nil, APITimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", prayer.ErrProviderUnreachable, err)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: muslimsalat returned status %d", prayer.ErrProviderUnreachable, status)
	}
	if result.StatusCode != 1 || len(result.Items) == 0 {
		return nil, fmt.Errorf("%w: muslimsalat returned status code %d with %d items",
			prayer.ErrMalformedResponse, result.StatusCode, len(result.Items))
	}

	item := result.Items[0]
	times := prayer.Times{}
	fields := []struct {
		raw    string
		target *string
		name   string
	}{
		{item.Fajr, &times.Fajr, "fajr"},
		{item.Shurooq, &times.Sunrise, "shurooq"},
		{item.Dhuhr, &times.Dhuhr, "dhuhr"},
		{item.Asr, &times.Asr, "asr"},
		{item.Maghrib, &times.Maghrib, "maghrib"},
		{item.Isha, &times.Isha, "isha"},
	}
	for _, f := range fields {
		minutes, err := parse12Hour(f.raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s", prayer.ErrMalformedResponse, f.name, err)
		}
		*f.target = prayer.Clock(minutes)
	}
	if err := times.Validate(); err != nil {
		return nil, err
	}

	response := &prayer.Response{
		Times: times,
		Date: prayer.DateInfo{
			Gregorian: date.Format("02-01-2006"),
			Weekday:   date.Weekday().String(),
		},
		Meta: prayer.Meta{
			Latitude:  coords.Lat,
			Longitude: coords.Lon,
			Timezone:  timezoneName(result.Timezone),
			Method:    method,
		},
		Origin: prayer.OriginLive,
	}
	return response, nil
}

// FetchQibla reports unsupported: the daily endpoint's qibla field is not
// reliable enough to serve. The resolver skips this source for Qibla.
func (m *MuslimSalat) FetchQibla(_ context.Context, _ geo.Coordinate) (*prayer.QiblaDirection, error) {
	return nil, prayer.ErrQiblaUnsupported
}

// parse12Hour converts "5:39 am" / "12:07 pm" into minutes since midnight.
func parse12Hour(raw string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	clock, meridiem, ok := strings.Cut(s, " ")
	if !ok || (meridiem != "am" && meridiem != "pm") {
		return 0, fmt.Errorf("invalid 12-hour time %q", raw)
	}
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, fmt.Errorf("invalid 12-hour time %q", raw)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	if hour == 12 {
		hour = 0
	}
	if meridiem == "pm" {
		hour += 12
	}
	return hour*60 + minute, nil
}

// timezoneName renders the API's timezone field, which is sometimes a
// string name and sometimes a numeric UTC offset.
func timezoneName(tz any) string {
	switch v := tz.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("UTC%+g", v)
	}
	return ""
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
