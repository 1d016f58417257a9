// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

package geoip

import (
	"io"
	"log/slog"
	stdhttp "net/http"
	"os"
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

func fileResponse(t *testing.T, file string) func(*stdhttp.Request) (*stdhttp.Response, error) {
	t.Helper()
	return func(*stdhttp.Request) (*stdhttp.Response, error) {
		data, err := os.Open(file)
		if err != nil {
			t.Fatalf("failed to open JSON response file: %s", err)
		}
		return &stdhttp.Response{
			StatusCode: 200,
			Body:       data,
			Header:     make(stdhttp.Header),
		}, nil
	}
}

func TestNewGeolocationGeoIPProvider(t *testing.T) {
	t.Run("a provider requires an http client", func(t *testing.T) {
		if _, err := NewGeolocationGeoIPProvider(nil); err == nil {
			t.Error("expected provider creation to fail without http client")
		}
	})
	t.Run("a provider reports its name", func(t *testing.T) {
		provider, err := NewGeolocationGeoIPProvider(testClient(t, nil))
		if err != nil {
			t.Fatalf("failed to create provider: %s", err)
		}
		if provider.Name() != "geoip" {
			t.Errorf("expected provider name 'geoip', got %q", provider.Name())
		}
	})
}

func TestGeolocationGeoIPProvider_Locate(t *testing.T) {
	t.Run("a successful lookup returns a truncated fix", func(t *testing.T) {
		provider, err := NewGeolocationGeoIPProvider(testClient(t, fileResponse(t, "testdata/success.json")))
		if err != nil {
			t.Fatalf("failed to create provider: %s", err)
		}

		fix, err := provider.Locate(t.Context())
		if err != nil {
			t.Fatalf("failed to locate: %s", err)
		}
		if fix.Lat != 52.5129 || fix.Lon != 13.3910 {
			t.Errorf("expected truncated coordinates (52.5129, 13.3910), got (%f, %f)",
				fix.Lat, fix.Lon)
		}
		if fix.AccuracyMeters != geo.AccuracyZip {
			t.Errorf("expected zip-level accuracy %d, got %f", geo.AccuracyZip, fix.AccuracyMeters)
		}
		if fix.City != "Berlin" {
			t.Errorf("expected city Berlin, got %q", fix.City)
		}
		if fix.Timezone != "Europe/Berlin" {
			t.Errorf("expected timezone Europe/Berlin, got %q", fix.Timezone)
		}
	})
	t.Run("accuracy degrades with missing address detail", func(t *testing.T) {
		body := `{"status": "success", "country": "Germany", "countryCode": "DE", "lat": 51, "lon": 9}`
		fn := func(*stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{
				StatusCode: 200,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(stdhttp.Header),
			}, nil
		}
		provider, err := NewGeolocationGeoIPProvider(testClient(t, fn))
		if err != nil {
			t.Fatalf("failed to create provider: %s", err)
		}

		fix, err := provider.Locate(t.Context())
		if err != nil {
			t.Fatalf("failed to locate: %s", err)
		}
		if fix.AccuracyMeters != geo.AccuracyCountry {
			t.Errorf("expected country-level accuracy %d, got %f", geo.AccuracyCountry,
				fix.AccuracyMeters)
		}
	})
	t.Run("a failed lookup status returns an error", func(t *testing.T) {
		provider, err := NewGeolocationGeoIPProvider(testClient(t, fileResponse(t, "testdata/failed.json")))
		if err != nil {
			t.Fatalf("failed to create provider: %s", err)
		}
		if _, err = provider.Locate(t.Context()); err == nil {
			t.Error("expected locate to fail")
		}
	})
	t.Run("a non-2xx status returns an error", func(t *testing.T) {
		fn := func(*stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{
				StatusCode: 503,
				Body:       io.NopCloser(strings.NewReader(`{}`)),
				Header:     make(stdhttp.Header),
			}, nil
		}
		provider, err := NewGeolocationGeoIPProvider(testClient(t, fn))
		if err != nil {
			t.Fatalf("failed to create provider: %s", err)
		}
		if _, err = provider.Locate(t.Context()); err == nil {
			t.Error("expected locate to fail")
		}
	})
}
