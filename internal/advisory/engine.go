// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package advisory recommends crops for a coordinate and the current season.
//
// # Architecture
//
// Three pure lookups compose the answer: [Calendar] turns a month into a
// [Season], [Classifier] turns a coordinate into a [Region], and [Table]
// turns the pair into a crop list. [Engine] wires them to a clock.
package advisory

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/krishimitra/internal/platform/apperr"
	"github.com/taibuivan/krishimitra/internal/platform/ctxutil"
)

// Lookup failures. All map to 404 and compare with errors.Is.
var (
	ErrUnknownRegion = apperr.New(apperr.CodeUnknownRegion, http.StatusNotFound, "Could not determine region for this location")
	ErrUnknownSeason = apperr.New(apperr.CodeUnknownSeason, http.StatusNotFound, "Could not determine the current season")
	ErrNoAdvisory    = apperr.New(apperr.CodeNoAdvisory, http.StatusNotFound, "No crop suggestions for this region and season")
)

// Recommendation is the answer for one coordinate at one moment.
type Recommendation struct {
	Region      string   `json:"region"`
	RegionCode  string   `json:"region_code"`
	Season      Season   `json:"season"`
	Suggestions []string `json:"suggestions"`
}

// Engine answers crop advisory queries.
type Engine struct {
	classifier *Classifier
	table      *Table
	calendar   Calendar
	now        func() time.Time
}

// Option customises an [Engine].
type Option func(*Engine)

// WithClock overrides time.Now for season selection.
func WithClock(now func() time.Time) Option {
	return func(engine *Engine) { engine.now = now }
}

// WithCalendar replaces the default season calendar.
func WithCalendar(calendar Calendar) Option {
	return func(engine *Engine) { engine.calendar = calendar }
}

// NewEngine builds an engine over a catalogue.
func NewEngine(catalogue *Catalogue, options ...Option) *Engine {
	engine := &Engine{
		classifier: NewClassifier(catalogue.Regions),
		table:      catalogue.Table,
		calendar:   DefaultCalendar,
		now:        time.Now,
	}
	for _, option := range options {
		option(engine)
	}
	return engine
}

// Advise recommends crops for the coordinate in the current month.
func (engine *Engine) Advise(ctx context.Context, point Coordinate) (*Recommendation, error) {
	return engine.AdviseFor(ctx, point, engine.now().Month())
}

// AdviseFor recommends crops for the coordinate in a given month.
func (engine *Engine) AdviseFor(ctx context.Context, point Coordinate, month time.Month) (*Recommendation, error) {
	season := engine.calendar.SeasonFor(month)
	if season == SeasonUnknown {
		return nil, ErrUnknownSeason
	}

	region := engine.classifier.RegionFor(point.Lat, point.Lon)
	if !region.Known() {
		return nil, ErrUnknownRegion
	}

	crops, ok := engine.table.Lookup(region.Code, season)
	if !ok {
		return nil, ErrNoAdvisory
	}

	ctxutil.GetLogger(ctx).DebugContext(ctx, "advisory_resolved",
		slog.String("region", region.Code),
		slog.String("season", string(season)),
	)

	return &Recommendation{
		Region:      region.Name,
		RegionCode:  region.Code,
		Season:      season,
		Suggestions: crops,
	}, nil
}
