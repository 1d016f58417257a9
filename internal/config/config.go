// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package config loads and validates the application configuration from
// file and environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/prayer"
)

const (
	configEnv = "DEENCOMPANION"

	DefaultTextTpl = "{{.Next.Name}} {{.Next.Time}} ({{.Until}})"
	DefaultTooltipTpl = "Location: {{.City}}, {{.Country}}\nDate: {{.Date.Gregorian}} / {{.Date.Hijri}} AH\n" +
		"Moon: {{.Date.MoonPhase}}\nQibla: {{printf \"%.1f\" .Qibla.BearingDegrees}}° " +
		"({{printf \"%.0f\" .Qibla.DistanceKm}} km)\n{{.Table}}"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Prayer struct {
		// Method is the raw calculation method ID (Aladhan numbering).
		// -1 means "not configured" and resolves to the default method.
		Method int `fig:"method" default:"-1"`
	} `fig:"prayer"`

	Retry struct {
		MaxRetries int `fig:"max_retries" default:"2"`
	} `fig:"retry"`

	Intervals struct {
		Refresh time.Duration `fig:"refresh" default:"15m"`
		Output  time.Duration `fig:"output" default:"1m"`
	} `fig:"intervals"`

	Templates struct {
		Text    string `fig:"text"`
		Tooltip string `fig:"tooltip"`
	} `fig:"templates"`

	GeoLocation struct {
		DisableGeoClue    bool `fig:"disable_geoclue"`
		DisableGPSD       bool `fig:"disable_gpsd"`
		DisableWifiBeacon bool `fig:"disable_wifibeacon"`
		DisableGeoIP      bool `fig:"disable_geoip"`
		DisableGeocoder   bool `fig:"disable_geocoder"`
	} `fig:"geolocation"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if _, err := prayer.ParseMethod(c.Prayer.Method); err != nil {
		return fmt.Errorf("invalid calculation method: %d", c.Prayer.Method)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("invalid max retries: %d", c.Retry.MaxRetries)
	}
	if c.Intervals.Refresh < time.Minute {
		return fmt.Errorf("invalid refresh interval: %s", c.Intervals.Refresh)
	}
	if c.Intervals.Output < time.Second {
		return fmt.Errorf("invalid output interval: %s", c.Intervals.Output)
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.Tooltip == "" {
		c.Templates.Tooltip = DefaultTooltipTpl
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
