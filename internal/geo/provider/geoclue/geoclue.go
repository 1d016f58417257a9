// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package geoclue reads the device position from the GeoClue2 system
// service over D-Bus. This is the preferred strategy: when the host has a
// working location service the fix beats any IP-based estimate.
package geoclue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
)

const (
	busName       = "org.freedesktop.GeoClue2"
	managerPath   = "/org/freedesktop/GeoClue2/Manager"
	managerIface  = "org.freedesktop.GeoClue2.Manager"
	clientIface   = "org.freedesktop.GeoClue2.Client"
	locationIface = "org.freedesktop.GeoClue2.Location"

	// accuracyExact requests the most precise fix GeoClue can deliver.
	accuracyExact = uint32(8)

	// LookupTimeout bounds how long we wait for a LocationUpdated signal.
	LookupTimeout = time.Second * 10

	name = "geoclue"
)

var ErrNoLocationFix = errors.New("geoclue delivered no location fix in time")

type GeolocationGeoClueProvider struct {
	name      string
	desktopID string
	timeout   time.Duration

	// connectFn allows tests to substitute the system bus connection.
	connectFn func(ctx context.Context) (*dbus.Conn, error)
}

func NewGeolocationGeoClueProvider(desktopID string) *GeolocationGeoClueProvider {
	return &GeolocationGeoClueProvider{
		name:      name,
		desktopID: desktopID,
		timeout:   LookupTimeout,
		connectFn: func(ctx context.Context) (*dbus.Conn, error) {
			return dbus.ConnectSystemBus(dbus.WithContext(ctx))
		},
	}
}

func (p *GeolocationGeoClueProvider) Name() string {
	return p.name
}

// Locate starts a one-shot GeoClue2 client, waits for a single
// LocationUpdated signal and reads the coordinates off the referenced
// location object.
func (p *GeolocationGeoClueProvider) Locate(ctx context.Context) (geo.Fix, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.connectFn(ctx)
	if err != nil {
		return geo.Fix{}, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var clientPath dbus.ObjectPath
	manager := conn.Object(busName, managerPath)
	if err = manager.CallWithContext(ctx, managerIface+".GetClient", 0).Store(&clientPath); err != nil {
		return geo.Fix{}, fmt.Errorf("failed to get GeoClue client: %w", err)
	}

	client := conn.Object(busName, clientPath)
	if err = client.SetProperty(clientIface+".DesktopId", dbus.MakeVariant(p.desktopID)); err != nil {
		return geo.Fix{}, fmt.Errorf("failed to set desktop id: %w", err)
	}
	if err = client.SetProperty(clientIface+".RequestedAccuracyLevel",
		dbus.MakeVariant(accuracyExact)); err != nil {
		return geo.Fix{}, fmt.Errorf("failed to set requested accuracy level: %w", err)
	}

	if err = conn.AddMatchSignalContext(ctx, dbus.WithMatchObjectPath(clientPath),
		dbus.WithMatchInterface(clientIface), dbus.WithMatchMember("LocationUpdated")); err != nil {
		return geo.Fix{}, fmt.Errorf("failed to subscribe to location updates: %w", err)
	}
	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	if err = client.CallWithContext(ctx, clientIface+".Start", 0).Err; err != nil {
		return geo.Fix{}, fmt.Errorf("failed to start GeoClue client: %w", err)
	}
	defer func() { _ = client.CallWithContext(ctx, clientIface+".Stop", 0) }()

	for {
		select {
		case <-ctx.Done():
			return geo.Fix{}, ErrNoLocationFix
		case sgn, ok := <-signals:
			if !ok {
				return geo.Fix{}, ErrNoLocationFix
			}
			if len(sgn.Body) != 2 {
				continue
			}
			newPath, ok := sgn.Body[1].(dbus.ObjectPath)
			if !ok {
				continue
			}
			return p.readLocation(conn, newPath)
		}
	}
}

// readLocation reads latitude, longitude and accuracy off a GeoClue2
// location object.
func (p *GeolocationGeoClueProvider) readLocation(conn *dbus.Conn, path dbus.ObjectPath) (geo.Fix, error) {
	location := conn.Object(busName, path)

	lat, err := floatProperty(location, locationIface+".Latitude")
	if err != nil {
		return geo.Fix{}, err
	}
	lon, err := floatProperty(location, locationIface+".Longitude")
	if err != nil {
		return geo.Fix{}, err
	}
	acc, err := floatProperty(location, locationIface+".Accuracy")
	if err != nil {
		acc = geo.AccuracyUnknown
	}
	if acc == 0 {
		acc = geo.AccuracyExact
	}

	return geo.Fix{
		Coordinate: geo.Coordinate{
			Lat: geo.Truncate(lat, geo.TruncPrecision),
			Lon: geo.Truncate(lon, geo.TruncPrecision),
		},
		AccuracyMeters: acc,
	}, nil
}

func floatProperty(obj dbus.BusObject, prop string) (float64, error) {
	variant, err := obj.GetProperty(prop)
	if err != nil {
		return 0, fmt.Errorf("failed to read property %s: %w", prop, err)
	}
	value, ok := variant.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("property %s is not a float value", prop)
	}
	return value, nil
}
