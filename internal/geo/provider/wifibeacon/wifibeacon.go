// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package wifibeacon estimates the device position from nearby WiFi access
// points via the BeaconDB geolocate API (Ichnaea protocol).
package wifibeacon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mdlayher/wifi"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/http"
)

const (
	// APIEndpoint is the BeaconDB geolocate endpoint, overridable in tests.
	APIEndpoint   = "https://api.beacondb.net/v1/geolocate"
	LookupTimeout = time.Second * 5
	name          = "wifibeacon"
)

type GeolocationWifiBeaconProvider struct {
	name     string
	http     *http.Client
	wlan     *wifi.Client
	endpoint string

	// scanFn allows tests to substitute the WiFi scan.
	scanFn func() ([]WirelessNetwork, error)
}

type apiResult struct {
	Location struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
}

type WirelessNetwork struct {
	LastSeen       int64  `json:"age"`
	MACAddress     string `json:"macAddress"`
	SignalStrength int32  `json:"signalStrength"`
}

func NewGeolocationWifiBeaconProvider(http *http.Client) (*GeolocationWifiBeaconProvider, error) {
	if http == nil {
		return nil, fmt.Errorf("http client is required")
	}
	wlan, err := wifi.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create wifi client: %w", err)
	}

	provider := &GeolocationWifiBeaconProvider{
		name:     name,
		http:     http,
		wlan:     wlan,
		endpoint: APIEndpoint,
	}
	provider.scanFn = provider.wifiAccessPoints
	return provider, nil
}

func (p *GeolocationWifiBeaconProvider) Name() string {
	return p.name
}

// Locate scans the station interfaces for visible access points and sends
// them to the geolocate API. With no visible access points the API falls
// back to an IP-based estimate (considerIp).
func (p *GeolocationWifiBeaconProvider) Locate(ctx context.Context) (geo.Fix, error) {
	wifiList, err := p.scanFn()
	if err != nil {
		return geo.Fix{}, fmt.Errorf("failed to scan wifi access points: %w", err)
	}

	type request struct {
		ConsiderIP   bool              `json:"considerIp"`
		Accesspoints []WirelessNetwork `json:"wifiAccessPoints,omitempty"`
	}
	req := request{
		ConsiderIP:   true,
		Accesspoints: wifiList,
	}
	bodyBuffer := bytes.NewBuffer(nil)
	if err = json.NewEncoder(bodyBuffer).Encode(req); err != nil {
		return geo.Fix{}, fmt.Errorf("failed to encode wifi list to JSON: %w", err)
	}

	ctxHTTP, cancelHTTP := context.WithTimeout(ctx, LookupTimeout)
	defer cancelHTTP()
	result := new(apiResult)
	status, err := p.http.Post(ctxHTTP, p.endpoint, result, bodyBuffer,
		map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return geo.Fix{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}
	if status < 200 || status > 299 {
		return geo.Fix{}, fmt.Errorf("geolocate API returned status %d", status)
	}
	if result.Accuracy == 0 {
		result.Accuracy = geo.AccuracyUnknown
	}

	return geo.Fix{
		Coordinate: geo.Coordinate{
			Lat: geo.Truncate(result.Location.Latitude, geo.TruncPrecision),
			Lon: geo.Truncate(result.Location.Longitude, geo.TruncPrecision),
		},
		AccuracyMeters: geo.Truncate(result.Accuracy, geo.TruncPrecision),
	}, nil
}

func (p *GeolocationWifiBeaconProvider) wifiAccessPoints() ([]WirelessNetwork, error) {
	var checkIfaces []*wifi.Interface
	var list []WirelessNetwork

	ifaces, err := p.wlan.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Type != wifi.InterfaceTypeStation {
			continue
		}
		checkIfaces = append(checkIfaces, iface)
	}
	if len(checkIfaces) == 0 {
		return nil, nil
	}

	for _, iface := range checkIfaces {
		aps, err := p.wlan.AccessPoints(iface)
		if err != nil {
			continue
		}
		for _, ap := range aps {
			if ap.SSID == "" || ap.SSID[0] == '\x00' || strings.HasSuffix(ap.SSID, "_nomap") {
				continue
			}
			list = append(list, WirelessNetwork{
				SignalStrength: ap.Signal / 100,
				MACAddress:     ap.BSSID.String(),
				LastSeen:       ap.LastSeen.Milliseconds(),
			})
		}
	}

	return list, nil
}
