// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package resolver orchestrates location resolution, the prayer time and
// Qibla source chain, caching and the offline fallback. Its public
// contract is "always returns a usable result": degradation is reported
// through the response origin, not through errors.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/astro"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/cache"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/logger"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/prayer"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/retry"
)

const (
	// TimesTTL keeps timetables fresh for half an hour: they change by date,
	// not by the minute, but a short TTL picks up provider corrections.
	TimesTTL = 30 * time.Minute
	// QiblaTTL is generous: the bearing from a fixed observer never changes.
	QiblaTTL = 24 * time.Hour
)

// Options select what PrayerTimes resolves. The zero value means "here,
// today, default method".
type Options struct {
	// Coordinates overrides the locator when non-nil.
	Coordinates *geo.Coordinate
	// Method is the raw calculation method ID. prayer.MethodNotProvided
	// resolves to the default method, unknown IDs are rejected.
	Method prayer.CalculationMethod
	// Date defaults to today when zero.
	Date time.Time
}

// Resolver owns the caches and walks the resolution chain: fresh cache,
// sources with retry, offline calculation, stale cache.
type Resolver struct {
	locator *geo.Locator
	sources []prayer.Source
	policy  retry.Policy
	logger  *logger.Logger

	timesCache *cache.Store[*prayer.Response]
	qiblaCache *cache.Store[*prayer.QiblaDirection]

	now func() time.Time
}

// New returns a Resolver consulting the given sources in order.
func New(locator *geo.Locator, sources []prayer.Source, policy retry.Policy, log *logger.Logger) *Resolver {
	return &Resolver{
		locator:    locator,
		sources:    sources,
		policy:     policy,
		logger:     log,
		timesCache: cache.New[*prayer.Response](TimesTTL),
		qiblaCache: cache.New[*prayer.QiblaDirection](QiblaTTL),
		now:        time.Now,
	}
}

// PrayerTimes resolves a full timetable for the requested position, method
// and date. Invalid input surfaces immediately; provider failures degrade
// through the offline calculator and, as absolute last resort, a stale
// cache entry. Only a failure of the offline calculation with an empty
// cache propagates an error.
func (r *Resolver) PrayerTimes(ctx context.Context, opts Options) (*prayer.Response, error) {
	method, err := prayer.ParseMethod(int(opts.Method))
	if err != nil {
		return nil, err
	}

	coords, timezone := r.position(ctx, opts.Coordinates)
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range (%f, %f)",
			prayer.ErrInvalidInput, coords.Lat, coords.Lon)
	}
	date := opts.Date
	if date.IsZero() {
		date = r.now()
	}

	key := timesKey(coords, method, date)
	if cached, freshness := r.timesCache.Get(key); freshness == cache.Fresh {
		return cached, nil
	}

	for _, source := range r.sources {
		response, err := retry.Do(ctx, r.policyFor(source.Name()),
			func(ctx context.Context) (*prayer.Response, error) {
				resp, err := source.FetchTimes(ctx, coords, method, date)
				if errors.Is(err, prayer.ErrInvalidInput) {
					return nil, retry.Permanent(err)
				}
				return resp, err
			})
		if err != nil {
			r.logger.Warn("prayer time source exhausted", slog.String("source", source.Name()),
				logger.Err(err))
			continue
		}
		r.timesCache.Set(key, response)
		return response, nil
	}

	offline, err := r.offlineTimes(coords, method, date, timezone)
	if err == nil {
		return offline, nil
	}
	r.logger.Error("offline prayer time calculation failed", logger.Err(err))

	if cached, freshness := r.timesCache.Get(key); freshness == cache.Stale {
		stale := *cached
		stale.Origin = prayer.OriginStaleCache
		return &stale, nil
	}
	return nil, fmt.Errorf("prayer time resolution failed with empty cache: %w", err)
}

// Qibla resolves the bearing and distance to the Kaaba. With nil
// coordinates the current location is used. The chain mirrors PrayerTimes;
// sources that do not serve Qibla are skipped without retries.
func (r *Resolver) Qibla(ctx context.Context, coordinates *geo.Coordinate) (*prayer.QiblaDirection, error) {
	coords, _ := r.position(ctx, coordinates)
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range (%f, %f)",
			prayer.ErrInvalidInput, coords.Lat, coords.Lon)
	}

	key := qiblaKey(coords)
	if cached, freshness := r.qiblaCache.Get(key); freshness == cache.Fresh {
		return cached, nil
	}

	for _, source := range r.sources {
		direction, err := retry.Do(ctx, r.policyFor(source.Name()),
			func(ctx context.Context) (*prayer.QiblaDirection, error) {
				dir, err := source.FetchQibla(ctx, coords)
				if errors.Is(err, prayer.ErrInvalidInput) || errors.Is(err, prayer.ErrQiblaUnsupported) {
					return nil, retry.Permanent(err)
				}
				return dir, err
			})
		if errors.Is(err, prayer.ErrQiblaUnsupported) {
			continue
		}
		if err != nil {
			r.logger.Warn("qibla source exhausted", slog.String("source", source.Name()),
				logger.Err(err))
			continue
		}
		r.qiblaCache.Set(key, direction)
		return direction, nil
	}

	// The manual computation is pure and cannot fail, making the stale
	// fallback for Qibla practically unreachable. It stays in the chain for
	// symmetry with PrayerTimes.
	direction := astro.Qibla(coords)
	return &direction, nil
}

// NextPrayer returns the next upcoming prayer of the given timetable
// relative to the resolver's clock.
func (r *Resolver) NextPrayer(response *prayer.Response) (prayer.Upcoming, error) {
	if response == nil {
		return prayer.Upcoming{}, fmt.Errorf("%w: nil response", prayer.ErrInvalidInput)
	}
	return prayer.NextPrayer(response.Times, r.now())
}

// position returns the coordinates to resolve for and the IANA timezone
// name, falling back to the locator when the caller supplied none.
func (r *Resolver) position(ctx context.Context, coordinates *geo.Coordinate) (geo.Coordinate, string) {
	if coordinates != nil {
		return *coordinates, ""
	}
	location := r.locator.Resolve(ctx)
	return location.Coordinate, location.Timezone
}

// offlineTimes runs the offline calculator in the location's timezone.
func (r *Resolver) offlineTimes(coords geo.Coordinate, method prayer.CalculationMethod,
	date time.Time, timezone string,
) (*prayer.Response, error) {
	tz := time.Local
	if timezone != "" {
		if loaded, err := time.LoadLocation(timezone); err == nil {
			tz = loaded
		}
	}
	return astro.ComputeTimes(coords, method, date, tz)
}

// policyFor copies the retry policy with a logging attempt callback.
func (r *Resolver) policyFor(sourceName string) retry.Policy {
	policy := r.policy
	callerCallback := policy.OnAttempt
	policy.OnAttempt = func(attempt int, err error) {
		r.logger.Debug("retrying prayer data source", slog.String("source", sourceName),
			slog.Int("attempt", attempt), logger.Err(err))
		if callerCallback != nil {
			callerCallback(attempt, err)
		}
	}
	return policy
}

func timesKey(coords geo.Coordinate, method prayer.CalculationMethod, date time.Time) string {
	return fmt.Sprintf("%.4f:%.4f:%d:%s", coords.Lat, coords.Lon, int(method),
		date.Format("2006-01-02"))
}

func qiblaKey(coords geo.Coordinate) string {
	return fmt.Sprintf("%.4f:%.4f", coords.Lat, coords.Lon)
}
