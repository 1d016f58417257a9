// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package astro computes prayer times and the Qibla direction without any
// network dependency. It is the safety net for total provider failure and
// the reference the live results can be sanity-checked against.
package astro

import (
	"math"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/prayer"
)

const (
	// KaabaLat and KaabaLon locate the Kaaba in Mecca.
	KaabaLat = 21.3891
	KaabaLon = 39.8579

	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// coincidentEpsilon treats an observer this close to the Kaaba (in
	// degrees) as standing on it, where a bearing is degenerate.
	coincidentEpsilon = 1e-9
)

// Qibla returns the great-circle initial bearing from the observer to the
// Kaaba, normalized to [0, 360), and the haversine distance rounded to the
// nearest kilometer. An observer at the Kaaba itself yields bearing 0 and
// distance 0. The result is deterministic for identical input.
func Qibla(coords geo.Coordinate) prayer.QiblaDirection {
	if math.Abs(coords.Lat-KaabaLat) < coincidentEpsilon &&
		math.Abs(coords.Lon-KaabaLon) < coincidentEpsilon {
		return prayer.QiblaDirection{BearingDegrees: 0, DistanceKm: 0, Origin: prayer.OriginOffline}
	}

	phiObs := radians(coords.Lat)
	phiKaaba := radians(KaabaLat)
	deltaLambda := radians(KaabaLon - coords.Lon)

	y := math.Sin(deltaLambda) * math.Cos(phiKaaba)
	x := math.Cos(phiObs)*math.Sin(phiKaaba) -
		math.Sin(phiObs)*math.Cos(phiKaaba)*math.Cos(deltaLambda)
	bearing := math.Mod(degrees(math.Atan2(y, x))+360, 360)

	return prayer.QiblaDirection{
		BearingDegrees: bearing,
		DistanceKm:     Distance(coords),
		Origin:         prayer.OriginOffline,
	}
}

// Distance computes the haversine great-circle distance in kilometers
// between the observer and the Kaaba, rounded to the nearest whole
// kilometer.
func Distance(coords geo.Coordinate) float64 {
	dLat := radians(KaabaLat - coords.Lat)
	dLon := radians(KaabaLon - coords.Lon)
	lat1 := radians(coords.Lat)
	lat2 := radians(KaabaLat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	d := 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))

	return math.Round(d)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
