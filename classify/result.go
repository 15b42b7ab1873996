// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

// Package classify predicts the waste category of an item from a short
// description or a photo. Each prediction tries a trained model, then a
// heuristic, then a fixed default, and never fails.
package classify

import (
	"github.com/wastewise/wastewise/wastetype"
)

// ConfidenceThreshold is the model confidence below which the category is
// reported as unknown.
const ConfidenceThreshold = 0.3

// Tier names the stage of the fallback chain that produced a Result.
type Tier int

const (
	// TierNone means there was no input to classify.
	TierNone Tier = iota
	// TierModel is a trained model prediction.
	TierModel
	// TierHeuristic is a keyword or color heuristic.
	TierHeuristic
	// TierDefault is the fixed household fallback.
	TierDefault
)

func (t Tier) String() string {
	switch t {
	case TierModel:
		return "model"
	case TierHeuristic:
		return "heuristic"
	case TierDefault:
		return "default"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Result is a classification.
//
// Label is empty when there was no input, wastetype.UnknownLabel when the
// model was not confident enough, and the display label of Category
// otherwise. A model label outside the vocabulary is passed through in
// Label with Category Unknown.
type Result struct {
	Category   wastetype.Type `json:"category"`
	Label      string         `json:"label"`
	Confidence float64        `json:"confidence"`
	Tier       Tier           `json:"tier"`
}

// NoInput reports whether the Result is the empty-input sentinel.
func (r Result) NoInput() bool {
	return r.Tier == TierNone
}

// Advice returns the sorting advice for the category, if any.
func (r Result) Advice() (wastetype.Advice, bool) {
	return wastetype.AdviceFor(r.Category)
}

func known(t wastetype.Type, confidence float64, tier Tier) Result {
	return Result{Category: t, Label: t.Display(), Confidence: confidence, Tier: tier}
}

// Outcome is the result of one tier attempt.
type Outcome int

const (
	// OutcomeSuccess means the tier produced the Result.
	OutcomeSuccess Outcome = iota
	// OutcomeUnavailable means the tier had nothing to run with.
	OutcomeUnavailable
	// OutcomeFailed means the tier ran and failed.
	OutcomeFailed
)

// attempt is the tagged result of a tier.
type attempt struct {
	Outcome Outcome
	Result  Result
	Err     error
}

func succeeded(r Result) attempt {
	return attempt{Outcome: OutcomeSuccess, Result: r}
}

func unavailable() attempt {
	return attempt{Outcome: OutcomeUnavailable}
}

func failed(err error) attempt {
	return attempt{Outcome: OutcomeFailed, Err: err}
}
