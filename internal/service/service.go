// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package service wires the resolution engine into a long-running daemon
// that periodically refreshes prayer data and emits rendered output.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/config"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo/provider/geoclue"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo/provider/geoip"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo/provider/gpsd"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo/provider/wifibeacon"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geocode"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geocode/provider/nominatim"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/http"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/logger"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/prayer"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/prayer/provider/aladhan"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/prayer/provider/muslimsalat"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/presenter"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/resolver"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/retry"
)

const (
	OutputClass = "deen-companion"
	DesktopID   = "deen-companion"

	// RefreshTimeout bounds a full refresh including geolocation and all
	// provider attempts.
	RefreshTimeout = 30 * time.Second

	geocodeHitTTL  = 24 * time.Hour
	geocodeMissTTL = time.Hour
)

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	locator   *geo.Locator
	resolver  *resolver.Resolver
	presenter *presenter.Presenter
	scheduler gocron.Scheduler

	dataLock sync.RWMutex
	location geo.Location
	times    *prayer.Response
	qibla    *prayer.QiblaDirection
}

func New(conf *config.Config, log *logger.Logger, loc *spreak.Localizer, tag language.Tag) (*Service, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	pres, err := presenter.New(conf, loc, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}

	service := &Service{
		config:    conf,
		logger:    log,
		presenter: pres,
		scheduler: scheduler,
	}

	httpClient := http.New(log)
	service.locator = geo.NewLocator(service.createProviders(httpClient), service.createGeocoder(httpClient, tag), log)

	policy := retry.Policy{MaxRetries: conf.Retry.MaxRetries}
	sources := []prayer.Source{aladhan.New(httpClient), muslimsalat.New(httpClient)}
	service.resolver = resolver.New(service.locator, sources, policy, log)

	return service, nil
}

func (s *Service) Run(ctx context.Context) error {
	if err := s.createScheduledJob(ctx, s.config.Intervals.Output, s.printTimes,
		"prayerdata_output_job"); err != nil {
		return err
	}
	if err := s.createScheduledJob(ctx, s.config.Intervals.Refresh, s.refresh,
		"prayerdata_refresh_job"); err != nil {
		return err
	}
	s.scheduler.Start()

	// Prime the data so the first output job has something to render
	s.refresh(ctx)
	s.printTimes(ctx)

	<-ctx.Done()
	return s.scheduler.Shutdown()
}

func (s *Service) createProviders(httpClient *http.Client) []geo.Provider {
	var providers []geo.Provider

	if !s.config.GeoLocation.DisableGeoClue {
		providers = append(providers, geoclue.NewGeolocationGeoClueProvider(DesktopID))
	}

	if !s.config.GeoLocation.DisableGPSD {
		providers = append(providers, gpsd.NewGeolocationGPSDProvider())
	}

	if !s.config.GeoLocation.DisableWifiBeacon {
		beacon, err := wifibeacon.NewGeolocationWifiBeaconProvider(httpClient)
		if err != nil {
			s.logger.Error("failed to create wifi beacon provider", logger.Err(err))
		} else {
			providers = append(providers, beacon)
		}
	}

	if !s.config.GeoLocation.DisableGeoIP {
		ipProvider, err := geoip.NewGeolocationGeoIPProvider(httpClient)
		if err != nil {
			s.logger.Error("failed to create geoip provider", logger.Err(err))
		} else {
			providers = append(providers, ipProvider)
		}
	}

	return providers
}

func (s *Service) createGeocoder(httpClient *http.Client, tag language.Tag) geocode.Geocoder {
	if s.config.GeoLocation.DisableGeocoder {
		return nil
	}
	return geocode.NewCachedGeocoder(nominatim.New(httpClient, tag), geocodeHitTTL, geocodeMissTTL)
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}
