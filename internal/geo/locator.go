// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

package geo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/cache"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geocode"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/logger"
)

const (
	// LocationTTL is how long a resolved location stays fresh. A bearing or
	// timetable for yesterday's position is still better than none, so the
	// TTL is generous.
	LocationTTL = 24 * time.Hour
	// CacheKey is the constant key the current location is cached under.
	CacheKey = "current-location"
)

// Mecca is the hard-coded last-resort location. Resolution can therefore
// never fail outright.
var Mecca = Location{
	Coordinate:     Coordinate{Lat: 21.3891, Lon: 39.8579},
	City:           "Mecca",
	Country:        "Saudi Arabia",
	CountryCode:    "SA",
	Timezone:       "Asia/Riyadh",
	Source:         "default",
	AccuracyMeters: AccuracyCity,
	Fallback:       true,
}

// Locator walks an ordered list of geolocation providers and enriches the
// first successful fix with reverse-geocoded address data. Results are
// cached for LocationTTL.
type Locator struct {
	providers []Provider
	geocoder  geocode.Geocoder
	store     *cache.Store[Location]
	logger    *logger.Logger
}

// NewLocator returns a Locator trying the given providers in order. The
// geocoder may be nil, in which case fixes are used as-is.
func NewLocator(providers []Provider, geocoder geocode.Geocoder, log *logger.Logger) *Locator {
	return &Locator{
		providers: providers,
		geocoder:  geocoder,
		store:     cache.New[Location](LocationTTL),
		logger:    log,
	}
}

// Resolve returns the best-effort current location. It never fails: when
// every provider errors out or delivers an invalid fix, the hard-coded
// Mecca default is returned. Fresh cached locations short-circuit the
// provider chain.
func (l *Locator) Resolve(ctx context.Context) Location {
	if loc, freshness := l.store.Get(CacheKey); freshness == cache.Fresh {
		return loc
	}

	for _, p := range l.providers {
		fix, err := l.safeLocate(ctx, p)
		if err != nil {
			l.logger.Debug("geolocation provider failed", slog.String("provider", p.Name()),
				logger.Err(err))
			continue
		}
		if !fix.Valid() {
			l.logger.Debug("geolocation provider returned invalid coordinates",
				slog.String("provider", p.Name()), slog.Float64("lat", fix.Lat),
				slog.Float64("lon", fix.Lon))
			continue
		}

		loc := l.enrich(ctx, p.Name(), fix)
		l.store.Set(CacheKey, loc)
		return loc
	}

	// Serve a stale cached location before resorting to the fixed default.
	if loc, freshness := l.store.Get(CacheKey); freshness == cache.Stale {
		l.logger.Info("all geolocation providers failed, serving stale location",
			slog.String("source", loc.Source))
		return loc
	}

	l.logger.Info("all geolocation providers failed, falling back to default location",
		slog.String("city", Mecca.City))
	return Mecca
}

// safeLocate invokes a provider and recovers from potential panics, so a
// single faulty provider cannot take down the resolution chain.
func (l *Locator) safeLocate(ctx context.Context, p Provider) (fix Fix, err error) {
	defer func() {
		if r := recover(); r != nil {
			fix, err = Fix{}, fmt.Errorf("provider %s panicked: %v", p.Name(), r)
		}
	}()
	return p.Locate(ctx)
}

// enrich reverse-geocodes a fix into a full Location. Geocoding failures
// degrade to a coordinates-only location, they never fail the resolution.
func (l *Locator) enrich(ctx context.Context, source string, fix Fix) Location {
	loc := Location{
		Coordinate:     fix.Coordinate,
		City:           fix.City,
		Country:        fix.Country,
		CountryCode:    fix.CountryCode,
		Timezone:       fix.Timezone,
		Source:         source,
		AccuracyMeters: fix.AccuracyMeters,
	}
	if loc.Timezone == "" {
		loc.Timezone = time.Now().Location().String()
	}
	if loc.City != "" || l.geocoder == nil {
		return loc
	}

	addr, err := l.geocoder.Reverse(ctx, fix.Lat, fix.Lon)
	if err != nil {
		l.logger.Debug("reverse geocoding failed", slog.String("provider", source), logger.Err(err))
		return loc
	}
	loc.City = addr.City
	loc.Country = addr.Country
	loc.CountryCode = addr.CountryCode
	return loc
}
