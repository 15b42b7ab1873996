// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"strings"

	"github.com/wastewise/wastewise/wastetype"
)

const (
	keywordMaxConfidence = 0.7
	defaultConfidence    = 0.3
)

type keywordList struct {
	category wastetype.Type
	words    []string
}

// keywords are scored in this order; the first best score wins.
var keywords = []keywordList{
	{wastetype.Household, []string{"trash", "garbage", "waste", "dirty", "leftover", "broken", "ordinary"}},
	{wastetype.Paper, []string{"paper", "newspaper", "magazine", "book", "printer", "envelope", "document"}},
	{wastetype.Cardboard, []string{"cardboard", "carton", "box", "packaging", "thick paper"}},
	{wastetype.Glass, []string{"glass", "bottle", "jar", "container", "mirror", "window"}},
	{wastetype.Green, []string{"green", "grass", "leaf", "leaves", "plant", "garden", "flower", "vegetable", "fruit"}},
	{wastetype.Cans, []string{"can", "tin", "aluminum can", "soda", "drink can", "food can"}},
	{wastetype.Aluminium, []string{"aluminum", "foil", "tray", "container", "lid", "wrap", "packaging"}},
	{wastetype.Metal, []string{"metal", "iron", "steel", "scrap", "nails", "screws", "wire"}},
	{wastetype.Textiles, []string{"textile", "clothes", "fabric", "shirt", "pants", "cloth", "cotton", "wool"}},
	{wastetype.Oil, []string{"oil", "cooking oil", "motor oil", "lubricant", "grease"}},
	{wastetype.Hazardous, []string{"battery", "chemical", "toxic", "medicine", "paint", "solvent", "cleaner"}},
	{wastetype.Foam, []string{"foam", "styrofoam", "polystyrene", "packing", "cushion", "insulation"}},
}

// defaultResult is returned when nothing better is known.
func defaultResult() Result {
	return known(wastetype.Household, defaultConfidence, TierDefault)
}

// keywordTier scores every category by the number of its keywords found as
// substrings of the description.
func keywordTier(description string) Result {
	description = strings.ToLower(description)

	best, bestScore := -1, 0

	for i, kw := range keywords {
		score := 0

		for _, w := range kw.words {
			if strings.Contains(description, w) {
				score++
			}
		}

		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		return defaultResult()
	}

	kw := keywords[best]
	confidence := min(keywordMaxConfidence, float64(bestScore)/float64(len(kw.words)))

	return known(kw.category, confidence, TierHeuristic)
}
