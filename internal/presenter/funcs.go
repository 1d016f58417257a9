// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/spreak/localize"
)

var i18nVars = map[string]localize.MsgID{
	"Fajr":     "Fajr",
	"Sunrise":  "Sunrise",
	"Dhuhr":    "Dhuhr",
	"Asr":      "Asr",
	"Maghrib":  "Maghrib",
	"Isha":     "Isha",
	"Location": "Location",
	"Date":     "Date",
	"Qibla":    "Qibla",
	"Moon":     "Moon",
	"Prayer":   "Prayer",
	"Time":     "Time",
	"offline":  "offline estimate",
	"stale":    "cached data",
}

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"loc":         p.loc,
		"floatFormat": floatFormat,
		"lc":          strings.ToLower,
		"uc":          strings.ToUpper,
	}
}

func (p *Presenter) loc(val string) string {
	if raw, ok := i18nVars[val]; ok {
		return p.localizer.Get(raw)
	}
	return val
}

func floatFormat(val float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, val)
}

// renderTable lays out the prayer rows in two rune-width aligned columns.
// Localized names can be wider than their rune count suggests, so padding
// is computed with runewidth rather than len.
func (p *Presenter) renderTable(rows []TimeRow) string {
	nameWidth := 0
	for _, row := range rows {
		if w := runewidth.StringWidth(row.Name); w > nameWidth {
			nameWidth = w
		}
	}

	builder := strings.Builder{}
	for i, row := range rows {
		if i > 0 {
			builder.WriteString("\n")
		}
		marker := "  "
		if row.Current {
			marker = "> "
		}
		builder.WriteString(marker)
		builder.WriteString(runewidth.FillRight(row.Name, nameWidth))
		builder.WriteString("  ")
		builder.WriteString(row.Clock)
	}
	return builder.String()
}
