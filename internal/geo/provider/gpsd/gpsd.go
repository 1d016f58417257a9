// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package gpsd reads the device position from a local gpsd daemon.
package gpsd

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
)

const (
	host = "localhost"
	port = "2947"

	// LookupTimeout bounds how long we wait for the first usable TPV report.
	LookupTimeout = time.Second * 10

	name = "gpsd"
)

var ErrNoFix = errors.New("gpsd delivered no 2D fix in time")

type GeolocationGPSDProvider struct {
	name    string
	addr    string
	timeout time.Duration
}

func NewGeolocationGPSDProvider() *GeolocationGPSDProvider {
	return &GeolocationGPSDProvider{
		name:    name,
		addr:    net.JoinHostPort(host, port),
		timeout: LookupTimeout,
	}
}

func (p *GeolocationGPSDProvider) Name() string {
	return p.name
}

// Locate connects to gpsd and waits for the first TPV report with at least
// a 2D fix. The session is abandoned once the timeout elapses; go-gpsd has
// no Close, the connection is torn down when the watch ends.
func (p *GeolocationGPSDProvider) Locate(ctx context.Context) (geo.Fix, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	session, err := gpsd.Dial(p.addr)
	if err != nil {
		return geo.Fix{}, ErrNoFix
	}

	fixes := make(chan geo.Fix, 1)
	session.AddFilter("TPV", func(r interface{}) {
		tpv, ok := r.(*gpsd.TPVReport)
		if !ok {
			return
		}
		if tpv.Mode < gpsd.Mode2D {
			return
		}

		fix := geo.Fix{
			Coordinate: geo.Coordinate{
				Lat: geo.Truncate(tpv.Lat, geo.TruncPrecision),
				Lon: geo.Truncate(tpv.Lon, geo.TruncPrecision),
			},
			AccuracyMeters: geo.AccuracyExact,
		}
		select {
		case fixes <- fix:
		default:
		}
	})
	done := session.Watch()

	select {
	case fix := <-fixes:
		return fix, nil
	case <-done:
		return geo.Fix{}, ErrNoFix
	case <-ctx.Done():
		return geo.Fix{}, ErrNoFix
	}
}
