// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

package wifibeacon

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"strings"
	"testing"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/http"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/logger"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/testhelper"
)

func testClient(t *testing.T, fn func(req *stdhttp.Request) (*stdhttp.Response, error)) *http.Client {
	t.Helper()
	client := http.New(logger.NewLogger(slog.LevelError, io.Discard))
	client.Transport = testhelper.MockRoundTripper{Fn: fn}
	return client
}

func testProvider(t *testing.T, client *http.Client, networks []WirelessNetwork,
	scanErr error,
) *GeolocationWifiBeaconProvider {
	t.Helper()
	provider := &GeolocationWifiBeaconProvider{
		name:     "wifibeacon",
		http:     client,
		endpoint: APIEndpoint,
		scanFn: func() ([]WirelessNetwork, error) {
			return networks, scanErr
		},
	}
	return provider
}

func TestGeolocationWifiBeaconProvider_Locate(t *testing.T) {
	t.Run("visible access points resolve to a fix", func(t *testing.T) {
		var gotBody struct {
			ConsiderIP   bool              `json:"considerIp"`
			Accesspoints []WirelessNetwork `json:"wifiAccessPoints"`
		}
		fn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&gotBody); err != nil {
				t.Fatalf("failed to decode request body: %s", err)
			}
			body := `{"location": {"lat": 52.51290939, "lng": 13.39105151}, "accuracy": 25.5}`
			return &stdhttp.Response{
				StatusCode: 200,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(stdhttp.Header),
			}, nil
		}
		networks := []WirelessNetwork{
			{MACAddress: "aa:bb:cc:dd:ee:ff", SignalStrength: -44, LastSeen: 100},
		}
		provider := testProvider(t, testClient(t, fn), networks, nil)

		fix, err := provider.Locate(t.Context())
		if err != nil {
			t.Fatalf("failed to locate: %s", err)
		}
		if !gotBody.ConsiderIP {
			t.Error("expected considerIp to be set in the request")
		}
		if len(gotBody.Accesspoints) != 1 {
			t.Errorf("expected 1 access point in the request, got %d", len(gotBody.Accesspoints))
		}
		if fix.Lat != 52.5129 || fix.Lon != 13.3910 {
			t.Errorf("expected truncated coordinates (52.5129, 13.3910), got (%f, %f)",
				fix.Lat, fix.Lon)
		}
		if fix.AccuracyMeters != 25.5 {
			t.Errorf("expected accuracy 25.5, got %f", fix.AccuracyMeters)
		}
	})
	t.Run("a zero accuracy defaults to unknown", func(t *testing.T) {
		fn := func(*stdhttp.Request) (*stdhttp.Response, error) {
			body := `{"location": {"lat": 52.5129, "lng": 13.3910}}`
			return &stdhttp.Response{
				StatusCode: 200,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(stdhttp.Header),
			}, nil
		}
		provider := testProvider(t, testClient(t, fn), nil, nil)

		fix, err := provider.Locate(t.Context())
		if err != nil {
			t.Fatalf("failed to locate: %s", err)
		}
		if fix.AccuracyMeters != geo.AccuracyUnknown {
			t.Errorf("expected unknown accuracy %d, got %f", geo.AccuracyUnknown, fix.AccuracyMeters)
		}
	})
	t.Run("a failing scan returns an error", func(t *testing.T) {
		provider := testProvider(t, testClient(t, nil), nil, errors.New("intentionally failing"))
		if _, err := provider.Locate(t.Context()); err == nil {
			t.Error("expected locate to fail")
		}
	})
	t.Run("a non-2xx status returns an error", func(t *testing.T) {
		fn := func(*stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{
				StatusCode: 403,
				Body:       io.NopCloser(strings.NewReader(`{}`)),
				Header:     make(stdhttp.Header),
			}, nil
		}
		provider := testProvider(t, testClient(t, fn), nil, nil)
		if _, err := provider.Locate(t.Context()); err == nil {
			t.Error("expected locate to fail")
		}
	})
}
