// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"time"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/logger"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/prayer"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/resolver"
)

// refresh resolves the current location, today's timetable and the qibla
// direction. A failed refresh keeps the previously stored data.
func (s *Service) refresh(ctx context.Context) {
	ctxRefresh, cancelRefresh := context.WithTimeout(ctx, RefreshTimeout)
	defer cancelRefresh()

	location := s.locator.Resolve(ctxRefresh)

	times, err := s.resolver.PrayerTimes(ctxRefresh, resolver.Options{
		Coordinates: &location.Coordinate,
		Method:      prayer.CalculationMethod(s.config.Prayer.Method),
	})
	if err != nil {
		s.logger.Error("failed to resolve prayer times", logger.Err(err))
	}

	qibla, err := s.resolver.Qibla(ctxRefresh, &location.Coordinate)
	if err != nil {
		s.logger.Error("failed to resolve qibla direction", logger.Err(err))
	}

	s.dataLock.Lock()
	defer s.dataLock.Unlock()
	s.location = location
	if times != nil {
		s.times = times
	}
	if qibla != nil {
		s.qibla = qibla
	}
}

// now is overridable in tests.
var now = time.Now
