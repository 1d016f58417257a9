// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

package astro

import (
	"fmt"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/wneessen/go-moonphase"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/prayer"
)

// twilight holds the simplified per-method twilight intervals in minutes:
// Fajr begins fajrBefore minutes before sunrise, Isha begins ishaAfter
// minutes after sunset. The values approximate the solar depression angles
// of each convention at four minutes per degree.
type twilight struct {
	fajrBefore int
	ishaAfter  int
}

var methodTwilight = map[prayer.CalculationMethod]twilight{
	prayer.MethodKarachi:   {fajrBefore: 72, ishaAfter: 72},
	prayer.MethodISNA:      {fajrBefore: 60, ishaAfter: 60},
	prayer.MethodMWL:       {fajrBefore: 72, ishaAfter: 68},
	prayer.MethodUmmAlQura: {fajrBefore: 74, ishaAfter: 90},
	prayer.MethodEgyptian:  {fajrBefore: 78, ishaAfter: 70},
	prayer.MethodTehran:    {fajrBefore: 71, ishaAfter: 56},
	prayer.MethodGulf:      {fajrBefore: 77, ishaAfter: 90},
	prayer.MethodKuwait:    {fajrBefore: 72, ishaAfter: 70},
	prayer.MethodQatar:     {fajrBefore: 72, ishaAfter: 90},
	prayer.MethodSingapore: {fajrBefore: 80, ishaAfter: 72},
	prayer.MethodFrance:    {fajrBefore: 48, ishaAfter: 48},
	prayer.MethodTurkey:    {fajrBefore: 72, ishaAfter: 68},
	prayer.MethodRussia:    {fajrBefore: 64, ishaAfter: 60},
}

// polarFallback is the fixed timetable used when the sun never rises or
// sets at the observer's latitude on the requested day.
var polarFallback = prayer.Times{
	Fajr:    "05:00",
	Sunrise: "06:30",
	Dhuhr:   "12:00",
	Asr:     "15:30",
	Maghrib: "18:00",
	Isha:    "19:30",
}

// ComputeTimes derives a full prayer timetable from the solar day at the
// given coordinates: sunrise and sunset from the solar model, Dhuhr at
// solar noon, Asr midway between Dhuhr and sunset, Fajr and Isha from the
// method's twilight interval. All six canonical fields are always
// populated. The computation is pure: no network access, no randomness.
func ComputeTimes(coords geo.Coordinate, method prayer.CalculationMethod, date time.Time,
	tz *time.Location,
) (*prayer.Response, error) {
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range (%f, %f)",
			prayer.ErrInvalidInput, coords.Lat, coords.Lon)
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %s", prayer.ErrInvalidInput, method)
	}
	if tz == nil {
		tz = time.Local
	}

	times := solarTimetable(coords, method, date, tz)
	response := &prayer.Response{
		Times:  times,
		Date:   dateInfo(date, tz),
		Meta:   prayer.Meta{Latitude: coords.Lat, Longitude: coords.Lon, Timezone: tz.String(), Method: method},
		Origin: prayer.OriginOffline,
	}
	return response, nil
}

func solarTimetable(coords geo.Coordinate, method prayer.CalculationMethod, date time.Time,
	tz *time.Location,
) prayer.Times {
	rise, set := sunrise.SunriseSunset(coords.Lat, coords.Lon, date.Year(), date.Month(), date.Day())
	if rise.IsZero() || set.IsZero() {
		return polarFallback
	}
	rise, set = rise.In(tz), set.In(tz)

	riseMin := rise.Hour()*60 + rise.Minute()
	setMin := set.Hour()*60 + set.Minute()
	if setMin < riseMin {
		setMin += 24 * 60
	}

	tw := methodTwilight[method]
	noon := (riseMin + setMin) / 2
	asr := (noon + setMin) / 2

	times := prayer.Times{
		Fajr:     prayer.Clock(riseMin - tw.fajrBefore),
		Sunrise:  prayer.Clock(riseMin),
		Dhuhr:    prayer.Clock(noon),
		Asr:      prayer.Clock(asr),
		Maghrib:  prayer.Clock(setMin),
		Isha:     prayer.Clock(setMin + tw.ishaAfter),
		Midnight: prayer.Clock(noon + 12*60),
	}
	if times.Validate() != nil {
		// Extreme latitudes can push Fajr before midnight or Isha past it in
		// a way the simplified model cannot order. Serve the fixed table
		// rather than an inconsistent one.
		return polarFallback
	}
	return times
}

// dateInfo labels the response with Gregorian, Hijri and moon phase data.
func dateInfo(date time.Time, tz *time.Location) prayer.DateInfo {
	local := date.In(tz)
	day, month, year := HijriDate(local)
	moon := moonphase.New(local)

	return prayer.DateInfo{
		Gregorian:  local.Format("02-01-2006"),
		Weekday:    local.Weekday().String(),
		Hijri:      fmt.Sprintf("%02d-%02d-%d", day, monthNumber(month), year),
		HijriDay:   day,
		HijriMonth: month,
		HijriYear:  year,
		MoonPhase:  moon.PhaseName(),
	}
}
