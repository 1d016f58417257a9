// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

// Package presenter renders resolved prayer data into the text and tooltip
// output consumed by status bars and notification pipelines.
package presenter

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/vorlif/humanize"
	arlocale "github.com/vorlif/humanize/locale/ar"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/config"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/geo"
	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/prayer"
)

// TimeRow is a single prayer name/time pair for tabular display.
type TimeRow struct {
	Name    string
	Clock   string
	Current bool
}

// TemplateContext carries everything the output templates can reference.
type TemplateContext struct {
	Latitude  float64
	Longitude float64
	City      string
	Country   string

	Date  prayer.DateInfo
	Times []TimeRow
	Next  prayer.Upcoming
	Until string
	Qibla prayer.QiblaDirection

	Origin prayer.Origin

	// Table is the pre-rendered rune-width aligned timetable.
	Table string
}

type Presenter struct {
	localizer *spreak.Localizer
	humanizer *humanize.Humanizer

	text    *template.Template
	tooltip *template.Template
}

func New(conf *config.Config, loc *spreak.Localizer, tag language.Tag) (*Presenter, error) {
	collection := humanize.MustNew(humanize.WithLocale(arlocale.New()))

	p := &Presenter{
		localizer: loc,
		humanizer: collection.CreateHumanizer(tag),
	}

	tpl, err := template.New("text").Funcs(p.templateFuncMap()).Parse(conf.Templates.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}
	p.text = tpl

	tpl, err = template.New("tooltip").Funcs(p.templateFuncMap()).Parse(conf.Templates.Tooltip)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tooltip template: %w", err)
	}
	p.tooltip = tpl

	return p, nil
}

// BuildContext assembles the template context from a resolved response,
// qibla direction and location. The next prayer is computed relative to now.
func (p *Presenter) BuildContext(resp *prayer.Response, qibla *prayer.QiblaDirection,
	location geo.Location, now time.Time,
) TemplateContext {
	ctx := TemplateContext{
		Latitude:  location.Lat,
		Longitude: location.Lon,
		City:      location.City,
		Country:   location.Country,
	}
	if qibla != nil {
		ctx.Qibla = *qibla
	}
	if resp == nil {
		return ctx
	}

	ctx.Date = resp.Date
	ctx.Origin = resp.Origin

	next, err := prayer.NextPrayer(resp.Times, now)
	if err == nil {
		ctx.Next = next
		ctx.Next.Name = p.loc(next.Name)
		ctx.Until = p.humanizer.NaturalTime(now.Add(time.Duration(next.MinutesUntil) * time.Minute))
	}

	for _, name := range prayer.CanonicalOrder {
		clock, ok := resp.Times.At(name)
		if !ok {
			continue
		}
		ctx.Times = append(ctx.Times, TimeRow{
			Name:    p.loc(name),
			Clock:   clock,
			Current: next.Name == name,
		})
	}
	ctx.Table = p.renderTable(ctx.Times)

	return ctx
}

// Render executes both output templates against the given context.
func (p *Presenter) Render(ctx TemplateContext) (text, tooltip string, err error) {
	textBuf := bytes.NewBuffer(nil)
	if err = p.text.Execute(textBuf, ctx); err != nil {
		return "", "", fmt.Errorf("failed to render text template: %w", err)
	}
	tooltipBuf := bytes.NewBuffer(nil)
	if err = p.tooltip.Execute(tooltipBuf, ctx); err != nil {
		return "", "", fmt.Errorf("failed to render tooltip template: %w", err)
	}
	return textBuf.String(), tooltipBuf.String(), nil
}
