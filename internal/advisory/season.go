// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package advisory

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Season is an Indian cropping season.
type Season string

const (
	SeasonRabi    Season = "Rabi"
	SeasonKharif  Season = "Kharif"
	SeasonZaid    Season = "Zaid"
	SeasonUnknown Season = "Unknown"
)

// ParseSeason matches a season label case-insensitively.
func ParseSeason(label string) (Season, bool) {
	for _, season := range []Season{SeasonRabi, SeasonKharif, SeasonZaid} {
		if strings.EqualFold(strings.TrimSpace(label), string(season)) {
			return season, true
		}
	}
	return SeasonUnknown, false
}

// SeasonRule assigns a set of months to a season.
type SeasonRule struct {
	Season Season
	Months []time.Month
}

// Calendar is an ordered list of rules. The first rule containing a month wins.
type Calendar []SeasonRule

// DefaultCalendar is the Indian agricultural calendar. March belongs to both
// Rabi (harvest) and Zaid (sowing); Rabi is listed first and wins.
var DefaultCalendar = Calendar{
	{Season: SeasonRabi, Months: []time.Month{time.October, time.November, time.December, time.January, time.February, time.March}},
	{Season: SeasonKharif, Months: []time.Month{time.June, time.July, time.August, time.September}},
	{Season: SeasonZaid, Months: []time.Month{time.March, time.April, time.May}},
}

// SeasonFor returns the season of month in the default calendar.
func SeasonFor(month time.Month) Season {
	return DefaultCalendar.SeasonFor(month)
}

// SeasonFor returns the first season whose rule contains month.
// Months outside 1..12 or without a rule yield [SeasonUnknown].
func (calendar Calendar) SeasonFor(month time.Month) Season {
	if month < time.January || month > time.December {
		return SeasonUnknown
	}
	for _, rule := range calendar {
		if slices.Contains(rule.Months, month) {
			return rule.Season
		}
	}
	return SeasonUnknown
}

// Validate reports months that no rule covers.
func (calendar Calendar) Validate() error {
	var gaps []string
	for month := time.January; month <= time.December; month++ {
		if calendar.SeasonFor(month) == SeasonUnknown {
			gaps = append(gaps, month.String())
		}
	}
	if len(gaps) > 0 {
		return fmt.Errorf("advisory: calendar has no season for %s", strings.Join(gaps, ", "))
	}
	return nil
}

// Overlaps returns months claimed by more than one rule. Overlaps are legal;
// rule order settles them.
func (calendar Calendar) Overlaps() []time.Month {
	seen := map[time.Month]int{}
	for _, rule := range calendar {
		for _, month := range rule.Months {
			seen[month]++
		}
	}

	var overlaps []time.Month
	for month := time.January; month <= time.December; month++ {
		if seen[month] > 1 {
			overlaps = append(overlaps, month)
		}
	}
	return overlaps
}
