// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

package astro

import (
	"errors"
	"testing"
	"time"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/prayer"
)

var testBerlin = geo.Coordinate{Lat: 52.5200, Lon: 13.4050}

func TestComputeTimes(t *testing.T) {
	date := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("a mid-latitude timetable is complete and ordered", func(t *testing.T) {
		response, err := ComputeTimes(testBerlin, prayer.MethodMWL, date, time.UTC)
		if err != nil {
			t.Fatalf("expected timetable, got: %s", err)
		}
		if err = response.Times.Validate(); err != nil {
			t.Errorf("expected a valid timetable, got: %s", err)
		}
		if response.Origin != prayer.OriginOffline {
			t.Errorf("expected origin %q, got %q", prayer.OriginOffline, response.Origin)
		}
		if response.Meta.Method != prayer.MethodMWL {
			t.Errorf("expected method %d, got %d", prayer.MethodMWL, response.Meta.Method)
		}
		if response.Meta.Latitude != testBerlin.Lat || response.Meta.Longitude != testBerlin.Lon {
			t.Errorf("expected meta coordinates (%f, %f), got (%f, %f)", testBerlin.Lat,
				testBerlin.Lon, response.Meta.Latitude, response.Meta.Longitude)
		}
	})
	t.Run("fajr precedes sunrise by the method's twilight interval", func(t *testing.T) {
		response, err := ComputeTimes(testBerlin, prayer.MethodISNA, date, time.UTC)
		if err != nil {
			t.Fatalf("expected timetable, got: %s", err)
		}
		fajr, err := prayer.MinutesOfDay(response.Times.Fajr)
		if err != nil {
			t.Fatalf("failed to parse Fajr: %s", err)
		}
		rise, err := prayer.MinutesOfDay(response.Times.Sunrise)
		if err != nil {
			t.Fatalf("failed to parse Sunrise: %s", err)
		}
		if rise-fajr != 60 {
			t.Errorf("expected 60 minutes between Fajr and Sunrise, got %d", rise-fajr)
		}
	})
	t.Run("methods with different twilight intervals disagree", func(t *testing.T) {
		isna, err := ComputeTimes(testBerlin, prayer.MethodISNA, date, time.UTC)
		if err != nil {
			t.Fatalf("expected timetable, got: %s", err)
		}
		ummAlQura, err := ComputeTimes(testBerlin, prayer.MethodUmmAlQura, date, time.UTC)
		if err != nil {
			t.Fatalf("expected timetable, got: %s", err)
		}
		if isna.Times.Fajr == ummAlQura.Times.Fajr {
			t.Error("expected Fajr to differ between methods")
		}
		if isna.Times.Sunrise != ummAlQura.Times.Sunrise {
			t.Error("expected Sunrise to be method-independent")
		}
	})
	t.Run("polar day serves the fixed fallback timetable", func(t *testing.T) {
		svalbard := geo.Coordinate{Lat: 78.2232, Lon: 15.6267}
		response, err := ComputeTimes(svalbard, prayer.MethodMWL, date, time.UTC)
		if err != nil {
			t.Fatalf("expected timetable, got: %s", err)
		}
		if response.Times != polarFallback {
			t.Errorf("expected the polar fallback timetable, got %+v", response.Times)
		}
	})
	t.Run("out-of-range coordinates are rejected", func(t *testing.T) {
		_, err := ComputeTimes(geo.Coordinate{Lat: 91, Lon: 0}, prayer.MethodMWL, date, time.UTC)
		if !errors.Is(err, prayer.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got: %v", err)
		}
	})
	t.Run("unknown method is rejected", func(t *testing.T) {
		_, err := ComputeTimes(testBerlin, prayer.CalculationMethod(6), date, time.UTC)
		if !errors.Is(err, prayer.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got: %v", err)
		}
	})
	t.Run("date metadata is populated", func(t *testing.T) {
		response, err := ComputeTimes(testBerlin, prayer.MethodMWL, date, time.UTC)
		if err != nil {
			t.Fatalf("expected timetable, got: %s", err)
		}
		if response.Date.Gregorian != "15-06-2025" {
			t.Errorf("expected Gregorian date '15-06-2025', got %q", response.Date.Gregorian)
		}
		if response.Date.Weekday != "Sunday" {
			t.Errorf("expected weekday Sunday, got %q", response.Date.Weekday)
		}
		if response.Date.MoonPhase == "" {
			t.Error("expected a moon phase name")
		}
	})
}

func TestHijriDate(t *testing.T) {
	tests := []struct {
		name      string
		gregorian time.Time
		wantDay   int
		wantMonth string
		wantYear  int
	}{
		{
			"turn of the millennium",
			time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			24, "Ramadan", 1420,
		},
		{
			"mid 2025",
			time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
			18, "Dhu al-Hijjah", 1446,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			day, month, year := HijriDate(tc.gregorian)
			if day != tc.wantDay || month != tc.wantMonth || year != tc.wantYear {
				t.Errorf("expected %d %s %d, got %d %s %d", tc.wantDay, tc.wantMonth,
					tc.wantYear, day, month, year)
			}
		})
	}
}

func TestMonthNumber(t *testing.T) {
	t.Run("every month resolves to its 1-based number", func(t *testing.T) {
		for i, name := range hijriMonths {
			if got := monthNumber(name); got != i+1 {
				t.Errorf("expected %q to be month %d, got %d", name, i+1, got)
			}
		}
	})
	t.Run("unknown month names resolve to zero", func(t *testing.T) {
		if got := monthNumber("Undecimber"); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})
}
