// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

package prayer

import (
	"context"
	"errors"
	"time"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
)

// ErrQiblaUnsupported is returned by sources that only serve timetables.
// The resolver skips such sources in the Qibla chain instead of retrying.
var ErrQiblaUnsupported = errors.New("source does not serve qibla directions")

// Source is implemented by each prayer time API backend. Adapters validate
// their input before any network call and normalize the vendor response
// into the shared model.
type Source interface {
	Name() string
	FetchTimes(ctx context.Context, coords geo.Coordinate, method CalculationMethod, date time.Time) (*Response, error)
	FetchQibla(ctx context.Context, coords geo.Coordinate) (*QiblaDirection, error)
}
