// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package prayer holds the domain model shared by every prayer time and
// Qibla source: the daily timetable, calculation methods, the Qibla
// direction and the error taxonomy.
package prayer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrLocationUnavailable indicates that every geolocation strategy failed.
	ErrLocationUnavailable = errors.New("location unavailable")
	// ErrProviderUnreachable indicates a network failure or non-2xx response.
	ErrProviderUnreachable = errors.New("provider unreachable")
	// ErrMalformedResponse indicates a 2xx response with an unusable payload.
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrInvalidInput indicates caller-supplied input that no retry can fix.
	ErrInvalidInput = errors.New("invalid input")
)

// Origin describes where a Response or QiblaDirection was obtained from.
type Origin string

const (
	OriginLive       Origin = "live"
	OriginOffline    Origin = "offline"
	OriginStaleCache Origin = "stale-cache"
)

// CalculationMethod identifies an astronomical/juristic convention for
// computing prayer times. The IDs follow the Aladhan API numbering.
type CalculationMethod int

const (
	MethodKarachi   CalculationMethod = 1
	MethodISNA      CalculationMethod = 2
	MethodMWL       CalculationMethod = 3
	MethodUmmAlQura CalculationMethod = 4
	MethodEgyptian  CalculationMethod = 5
	MethodTehran    CalculationMethod = 7
	MethodGulf      CalculationMethod = 8
	MethodKuwait    CalculationMethod = 9
	MethodQatar     CalculationMethod = 10
	MethodSingapore CalculationMethod = 11
	MethodFrance    CalculationMethod = 12
	MethodTurkey    CalculationMethod = 13
	MethodRussia    CalculationMethod = 14
)

// MethodNotProvided is the sentinel for "caller did not choose a method".
// It is distinct from an invalid method: the former resolves to
// DefaultMethod, the latter is rejected with ErrInvalidInput.
const MethodNotProvided CalculationMethod = -1

// DefaultMethod is used when the caller does not specify a method.
const DefaultMethod = MethodMWL

var methodNames = map[CalculationMethod]string{
	MethodKarachi:   "University of Islamic Sciences, Karachi",
	MethodISNA:      "Islamic Society of North America",
	MethodMWL:       "Muslim World League",
	MethodUmmAlQura: "Umm al-Qura University, Makkah",
	MethodEgyptian:  "Egyptian General Authority of Survey",
	MethodTehran:    "Institute of Geophysics, University of Tehran",
	MethodGulf:      "Gulf Region",
	MethodKuwait:    "Kuwait",
	MethodQatar:     "Qatar",
	MethodSingapore: "Majlis Ugama Islam Singapura",
	MethodFrance:    "Union Organization Islamic de France",
	MethodTurkey:    "Diyanet İşleri Başkanlığı",
	MethodRussia:    "Spiritual Administration of Muslims of Russia",
}

// ParseMethod validates a raw method ID. MethodNotProvided resolves to
// DefaultMethod, unknown IDs are rejected rather than silently coerced.
func ParseMethod(id int) (CalculationMethod, error) {
	method := CalculationMethod(id)
	if method == MethodNotProvided {
		return DefaultMethod, nil
	}
	if _, ok := methodNames[method]; !ok {
		return 0, fmt.Errorf("%w: unknown calculation method %d", ErrInvalidInput, id)
	}
	return method, nil
}

// Valid reports whether the method is part of the known set.
func (m CalculationMethod) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

func (m CalculationMethod) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("unknown method (%d)", int(m))
}

// CanonicalOrder lists the prayers and events of one day in chronological
// order. NextPrayer scans this order.
var CanonicalOrder = []string{"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha"}

// Times maps a day's prayers and events to "HH:MM" local clock strings.
// The six canonical fields are always populated, the remaining ones are
// optional and may be empty depending on the source.
type Times struct {
	Fajr    string
	Sunrise string
	Dhuhr   string
	Asr     string
	Maghrib string
	Isha    string

	Imsak      string
	Midnight   string
	Firstthird string
	Lastthird  string
}

// At returns the clock string for the given prayer name.
func (t Times) At(name string) (string, bool) {
	switch name {
	case "Fajr":
		return t.Fajr, true
	case "Sunrise":
		return t.Sunrise, true
	case "Dhuhr":
		return t.Dhuhr, true
	case "Asr":
		return t.Asr, true
	case "Maghrib":
		return t.Maghrib, true
	case "Isha":
		return t.Isha, true
	case "Imsak":
		return t.Imsak, true
	case "Midnight":
		return t.Midnight, true
	case "Firstthird":
		return t.Firstthird, true
	case "Lastthird":
		return t.Lastthird, true
	}
	return "", false
}

// Validate checks that all six canonical fields are populated and parse as
// clock times, and that they are non-decreasing in canonical order. Isha
// may wrap past midnight (smaller than Maghrib), which is accepted as an
// explicit next-day time rather than an ordering violation.
func (t Times) Validate() error {
	minutes := make([]int, len(CanonicalOrder))
	for i, name := range CanonicalOrder {
		raw, _ := t.At(name)
		m, err := MinutesOfDay(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %s", ErrMalformedResponse, name, err)
		}
		minutes[i] = m
	}
	for i := 1; i < len(minutes); i++ {
		if minutes[i] >= minutes[i-1] {
			continue
		}
		if CanonicalOrder[i] == "Isha" && minutes[i] < minutes[0] {
			// Isha past midnight (high-latitude summer), expressed as an
			// early-morning clock time.
			continue
		}
		return fmt.Errorf("%w: %s (%s) earlier than %s (%s)", ErrMalformedResponse,
			CanonicalOrder[i], Clock(minutes[i]), CanonicalOrder[i-1], Clock(minutes[i-1]))
	}
	return nil
}

// MinutesOfDay parses a "HH:MM" clock string into minutes since midnight.
// A trailing annotation such as " (EET)", as returned by some providers, is
// stripped before parsing.
func MinutesOfDay(clock string) (int, error) {
	s := strings.TrimSpace(clock)
	if idx := strings.IndexByte(s, ' '); idx != -1 {
		s = s[:idx]
	}
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q", clock)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return hour*60 + minute, nil
}

// Clock renders minutes since midnight as a "HH:MM" string.
func Clock(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DateInfo labels a Response with its Gregorian date, an approximate Hijri
// date and the current moon phase.
type DateInfo struct {
	Gregorian  string // DD-MM-YYYY
	Weekday    string
	Hijri      string // DD-MM-YYYY (AH)
	HijriDay   int
	HijriMonth string
	HijriYear  int
	MoonPhase  string
}

// Meta carries the request parameters a Response was produced for.
type Meta struct {
	Latitude  float64
	Longitude float64
	Timezone  string
	Method    CalculationMethod
}

// Response is the normalized result every source produces. It is treated
// as read-only once returned to a caller.
type Response struct {
	Times  Times
	Date   DateInfo
	Meta   Meta
	Origin Origin
}

// QiblaDirection is the great-circle bearing and distance from an observer
// to the Kaaba.
type QiblaDirection struct {
	BearingDegrees float64
	DistanceKm     float64
	Origin         Origin
}

// Upcoming describes the next prayer relative to a point in time.
type Upcoming struct {
	Name         string
	Time         string // HH:MM
	MinutesUntil int
}

// NextPrayer scans the canonical order and returns the first prayer whose
// time is strictly after now's minutes since midnight. A prayer starting
// exactly at the current minute counts as already started. When no prayer
// remains today, the result wraps to tomorrow's Fajr and MinutesUntil
// crosses the midnight boundary.
func NextPrayer(t Times, now time.Time) (Upcoming, error) {
	if err := t.Validate(); err != nil {
		return Upcoming{}, err
	}
	current := now.Hour()*60 + now.Minute()

	for _, name := range CanonicalOrder {
		raw, _ := t.At(name)
		m, err := MinutesOfDay(raw)
		if err != nil {
			return Upcoming{}, fmt.Errorf("%w: %s: %s", ErrMalformedResponse, name, err)
		}
		if m > current {
			return Upcoming{Name: name, Time: Clock(m), MinutesUntil: m - current}, nil
		}
	}

	fajr, err := MinutesOfDay(t.Fajr)
	if err != nil {
		return Upcoming{}, fmt.Errorf("%w: Fajr: %s", ErrMalformedResponse, err)
	}
	return Upcoming{
		Name:         "Fajr",
		Time:         Clock(fajr),
		MinutesUntil: (24*60 - current) + fajr,
	}, nil
}
