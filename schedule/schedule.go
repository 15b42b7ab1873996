// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

// Package schedule resolves the next home collection for a street.
package schedule

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wastewise/wastewise/opendata"
	"github.com/wastewise/wastewise/utils/textutils"
	"go.uber.org/zap"
)

// Pickup is the next eligible collection event with its parsed date.
type Pickup struct {
	opendata.CollectionEvent
	Day time.Time `json:"day"`
}

// startHourPattern matches time windows such as "ab 7.00 Uhr" or "from 14:00".
var startHourPattern = regexp.MustCompile(`(?i)\b(?:ab|from)\s+(\d{1,2})[.:]`)

// StartHour extracts the starting hour of a time window.
func StartHour(window string) (int, bool) {
	m := startHourPattern.FindStringSubmatch(window)
	if m == nil {
		return 0, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return 0, false
	}

	return hour, true
}

// coversStreet reports whether any street of e matches street, either
// containing the other.
func coversStreet(e *opendata.CollectionEvent, street string) bool {
	for _, s := range e.Streets {
		if textutils.ContainsEither(s, street) {
			return true
		}
	}

	return false
}

// eligible applies the date policy: future days always qualify, today only
// while the collection has not started. A window without a parsable start
// hour qualifies.
func eligible(day, today time.Time, window string, now time.Time) bool {
	switch {
	case day.After(today):
		return true
	case day.Equal(today):
		hour, ok := StartHour(window)

		return !ok || hour > now.Hour()
	default:
		return false
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextDate returns the earliest eligible collection of wasteType for street,
// or nil. now fixes both today's date and the current hour. Among events on
// the same earliest day the first in input order wins.
func NextDate(street, wasteType string, events []opendata.CollectionEvent, now time.Time) *Pickup {
	street = strings.TrimSpace(street)
	wasteType = strings.TrimSpace(wasteType)

	if street == "" || wasteType == "" {
		return nil
	}

	today := midnight(now)

	var best *Pickup

	for i := range events {
		e := &events[i]

		if !strings.EqualFold(e.WasteType, wasteType) || !coversStreet(e, street) {
			continue
		}

		day, err := e.Day(now.Location())
		if err != nil {
			zap.L().Warn("skipping collection event with invalid date",
				zap.String("waste_type", e.WasteType),
				zap.String("date", e.Date),
				zap.Error(err))

			continue
		}

		if !eligible(day, today, e.TimeWindow, now) {
			continue
		}

		if best == nil || day.Before(best.Day) {
			best = &Pickup{CollectionEvent: e.Clone(), Day: day}
		}
	}

	return best
}

// StreetWasteTypes lists the waste types collected on street, whatever the
// date. Street names compare trimmed and case-insensitively, without
// partial matches. The result is sorted.
func StreetWasteTypes(street string, events []opendata.CollectionEvent) []string {
	street = strings.TrimSpace(street)
	if street == "" {
		return nil
	}

	seen := make(map[string]bool)

	var out []string

	for i := range events {
		e := &events[i]
		if e.WasteType == "" {
			continue
		}

		for _, s := range e.Streets {
			if strings.EqualFold(strings.TrimSpace(s), street) && !seen[e.WasteType] {
				seen[e.WasteType] = true
				out = append(out, e.WasteType)

				break
			}
		}
	}

	sort.Strings(out)

	return out
}
