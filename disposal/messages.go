// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package disposal

import (
	"fmt"
	"strings"

	"github.com/wastewise/wastewise/geocode"
	"github.com/wastewise/wastewise/schedule"
	"github.com/wastewise/wastewise/wastetype"
)

// DateLayout formats pickup dates in messages, e.g. "Tuesday, June 03, 2025".
const DateLayout = "Monday, January 02, 2006"

// typicallyCollected are the streams normally picked up at home.
var typicallyCollected = []wastetype.Type{
	wastetype.Paper,
	wastetype.Cardboard,
	wastetype.Household,
	wastetype.Green,
}

func isTypicallyCollected(upstream string) bool {
	t, ok := wastetype.FromUpstream(upstream)
	if !ok {
		return false
	}

	for _, c := range typicallyCollected {
		if c == t {
			return true
		}
	}

	return false
}

func pickupWhen(p *schedule.Pickup) string {
	return strings.TrimSpace(p.Day.Format(DateLayout) + " " + p.TimeWindow)
}

func translateAll(upstream []string) string {
	out := make([]string, len(upstream))
	for i, u := range upstream {
		out[i] = wastetype.Translate(u)
	}

	return strings.Join(out, ", ")
}

// scenario carries what message synthesis needs.
type scenario struct {
	wasteType string // upstream code
	street    string
	points    int
	pickup    *schedule.Pickup
	available []string // upstream codes collected on the street
}

// message selects one of four texts from the drop-off and pickup flags.
func (s scenario) message() string {
	display := wastetype.Translate(s.wasteType)

	switch {
	case s.points > 0 && s.pickup != nil:
		return fmt.Sprintf("You have two options for %s:\n\n"+
			"1. **Collection from home**: The next collection is on %s\n\n"+
			"2. **Drop-off locations**: There are %d disposal points nearby (see map below)",
			display, pickupWhen(s.pickup), s.points)

	case s.points > 0:
		if len(s.available) > 0 {
			return fmt.Sprintf("%s can be dropped off at %d nearby locations. "+
				"There is no scheduled home collection service for %s on %s. "+
				"Available collection services for your street include: %s.",
				display, s.points, display, s.street, translateAll(s.available))
		}

		return fmt.Sprintf("%s can be dropped off at %d nearby locations. "+
			"There is no scheduled home collection service for this waste type in your area.",
			display, s.points)

	case s.pickup != nil:
		return fmt.Sprintf("%s will be collected on %s. "+
			"This waste type is typically collected directly from homes in your area.",
			display, pickupWhen(s.pickup))

	case len(s.available) > 0:
		return fmt.Sprintf("No disposal options found for %s at %s. "+
			"Available collection services for your street include: %s. "+
			"You may need to visit a recycling center for %s.",
			display, s.street, translateAll(s.available), display)

	case isTypicallyCollected(s.wasteType):
		return fmt.Sprintf("No upcoming collection dates found for %s at your address. "+
			"This waste type is typically collected from homes. Please check the official schedule "+
			"or contact the local waste management office for more information.", display)

	default:
		return fmt.Sprintf("No disposal options found for %s. "+
			"Please check the waste type or contact the local waste management office.", display)
	}
}

// geocodeFailure describes why address could not be placed.
func geocodeFailure(address string, err error) string {
	msg := fmt.Sprintf("Could not find coordinates for address: %s. Please try a more specific address.", address)

	switch {
	case geocode.IsOutOfCoverage(err):
		msg += " The address appears to be outside the St. Gallen service area."
	case geocode.IsNotFound(err):
	case geocode.IsTransportError(err):
		msg += " The address lookup service is currently unavailable, please try again later."
	}

	return msg
}
