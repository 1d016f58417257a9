// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package i18n provides localized message catalogs for the user-facing
// output.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/Xuanwo/go-locale"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"
)

//go:embed locale/*
var locales embed.FS

// New creates a localizer for the given locale string. An empty string
// triggers system locale detection with an English fallback. The resolved
// language tag is returned alongside the localizer so that callers can
// feed it into locale-aware formatting.
func New(loc string) (*spreak.Localizer, language.Tag, error) {
	tag := language.Make(loc)
	var err error
	if loc == "" {
		tag, err = locale.Detect()
		if err != nil {
			tag = language.English
		}
	}

	localeFS, err := fs.Sub(locales, "locale")
	if err != nil {
		return nil, tag, fmt.Errorf("failed to load locales: %w", err)
	}

	bundle, err := spreak.NewBundle(
		spreak.WithSourceLanguage(language.English),
		spreak.WithFallbackLanguage(language.English),
		spreak.WithDomainFs("", localeFS),
		spreak.WithLanguage(tag),
	)
	if err != nil {
		return nil, tag, fmt.Errorf("failed to create i18n bundle: %w", err)
	}
	return spreak.NewLocalizer(bundle, tag), tag, nil
}
