// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

package astro

import "time"

// hijriMonths lists the months of the Islamic calendar in order.
var hijriMonths = []string{
	"Muharram", "Safar", "Rabi al-Awwal", "Rabi al-Thani",
	"Jumada al-Awwal", "Jumada al-Thani", "Rajab", "Shaban",
	"Ramadan", "Shawwal", "Dhu al-Qadah", "Dhu al-Hijjah",
}

// HijriDate converts a Gregorian date to the tabular (arithmetic) Islamic
// calendar. The tabular calendar can be off by a day or two from the
// observational calendar used in practice, which is acceptable here: it
// only labels responses, actual month starts follow moon sighting.
func HijriDate(t time.Time) (day int, month string, year int) {
	jdn := julianDayNumber(t)

	// Kuwaiti algorithm over the civil epoch (16 July 622 CE, JDN 1948440).
	l := jdn - 1948440 + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29

	m := (24 * l) / 709
	day = l - (709*m)/24
	year = 30*n + j - 30
	month = hijriMonths[m-1]
	return day, month, year
}

// monthNumber returns the 1-based number of a Hijri month name.
func monthNumber(name string) int {
	for i, m := range hijriMonths {
		if m == name {
			return i + 1
		}
	}
	return 0
}

// julianDayNumber computes the Julian day number for the given date.
func julianDayNumber(t time.Time) int {
	y, m, d := t.Year(), int(t.Month()), t.Day()
	a := (14 - m) / 12
	y = y + 4800 - a
	m = m + 12*a - 3
	return d + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}
