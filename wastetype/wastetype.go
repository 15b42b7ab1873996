// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

// Package wastetype defines the closed vocabulary of waste streams and the
// mappings between its internal codes, the upstream open data codes and the
// labels shown to residents.
package wastetype

import (
	"github.com/wastewise/wastewise/utils/textutils"
)

// Type is one physical waste stream. The zero value is Unknown.
type Type uint8

// The closed vocabulary. Unknown is a sentinel and not part of All().
const (
	Unknown Type = iota
	Household
	Paper
	Cardboard
	Glass
	Green
	Cans
	Aluminium
	Metal
	Textiles
	Oil
	Hazardous
	Foam

	count
)

// UnknownLabel is the display label of the Unknown sentinel.
const UnknownLabel = "Unknown 🚫"

var codes = [count]string{
	Unknown:   "unknown",
	Household: "household",
	Paper:     "paper",
	Cardboard: "cardboard",
	Glass:     "glass",
	Green:     "green",
	Cans:      "cans",
	Aluminium: "aluminium",
	Metal:     "metal",
	Textiles:  "textiles",
	Oil:       "oil",
	Hazardous: "hazardous",
	Foam:      "foam",
}

// upstream codes as published by the St. Gallen open data portal
var upstream = [count]string{
	Unknown:   "",
	Household: "Kehricht",
	Paper:     "Papier",
	Cardboard: "Karton",
	Glass:     "Glas",
	Green:     "Grüngut",
	Cans:      "Dosen",
	Aluminium: "Aluminium",
	Metal:     "Altmetall",
	Textiles:  "Alttextilien",
	Oil:       "Altöl",
	Hazardous: "Sonderabfall",
	Foam:      "Styropor",
}

var names = [count]string{
	Unknown:   "Unknown",
	Household: "Household waste",
	Paper:     "Paper",
	Cardboard: "Cardboard",
	Glass:     "Glass",
	Green:     "Green waste",
	Cans:      "Cans",
	Aluminium: "Aluminium",
	Metal:     "Metal",
	Textiles:  "Textiles",
	Oil:       "Oil",
	Hazardous: "Hazardous waste",
	Foam:      "Foam packaging",
}

var displays = [count]string{
	Unknown:   UnknownLabel,
	Household: "Household waste 🗑",
	Paper:     "Paper 📄",
	Cardboard: "Cardboard 📦",
	Glass:     "Glass 🍾",
	Green:     "Green waste 🌿",
	Cans:      "Cans 🥫",
	Aluminium: "Aluminium 🧴",
	Metal:     "Metal 🪙",
	Textiles:  "Textiles 👕",
	Oil:       "Oil 🛢",
	Hazardous: "Hazardous waste ⚠",
	Foam:      "Foam packaging ☁",
}

// labels are the class names emitted by the trained text classifier.
var labels = [count]string{
	Unknown:   "",
	Household: "Household",
	Paper:     "Paper",
	Cardboard: "Cardboard",
	Glass:     "Glass",
	Green:     "Green",
	Cans:      "Cans",
	Aluminium: "Aluminium",
	Metal:     "Metal",
	Textiles:  "Textiles",
	Oil:       "Oil",
	Hazardous: "Hazardous",
	Foam:      "Foam packaging",
}

// aliases accepted by Parse on top of the tables above.
var aliases = map[string]Type{
	"aluminum":        Aluminium,
	"household":       Household,
	"garbage":         Household,
	"mixed":           Household,
	"organic":         Green,
	"green":           Green,
	"hazardous":       Hazardous,
	"foam":            Foam,
	"styrofoam":       Foam,
	"polystyrene":     Foam,
	"scrap metal":     Metal,
	"cooking oil":     Oil,
	"textile":         Textiles,
	"clothes":         Textiles,
	"tin cans":        Cans,
	"alu":             Aluminium,
	"gruengut":        Green,
	"altoel":          Oil,
	"household waste": Household,
}

var byFolded = func() map[string]Type {
	m := make(map[string]Type, int(count)*5+len(aliases))
	for t := Household; t < count; t++ {
		for _, s := range []string{codes[t], upstream[t], names[t], displays[t], labels[t]} {
			if s != "" {
				m[textutils.LowerASCIIFolding(s)] = t
			}
		}
	}

	for k, v := range aliases {
		m[textutils.LowerASCIIFolding(k)] = v
	}

	return m
}()

var byUpstream = func() map[string]Type {
	m := make(map[string]Type, int(count))
	for t := Household; t < count; t++ {
		m[textutils.LowerASCIIFolding(upstream[t])] = t
	}

	return m
}()

var byCode = func() map[string]Type {
	m := make(map[string]Type, int(count))
	for t := Household; t < count; t++ {
		m[codes[t]] = t
	}

	return m
}()

// All returns the twelve waste streams in their canonical order.
func All() []Type {
	all := make([]Type, 0, int(count)-1)
	for t := Household; t < count; t++ {
		all = append(all, t)
	}

	return all
}

// Valid reports whether t is one of the twelve waste streams.
func (t Type) Valid() bool {
	return t > Unknown && t < count
}

func (t Type) index() Type {
	if t >= count {
		return Unknown
	}

	return t
}

// Code returns the internal canonical code, e.g. "paper".
func (t Type) Code() string { return codes[t.index()] }

// Upstream returns the open data code, e.g. "Papier".
func (t Type) Upstream() string { return upstream[t.index()] }

// Name returns the plain English name, e.g. "Green waste".
func (t Type) Name() string { return names[t.index()] }

// Display returns the resident facing label, e.g. "Paper 📄".
func (t Type) Display() string { return displays[t.index()] }

// Label returns the class name used by the trained text classifier.
func (t Type) Label() string { return labels[t.index()] }

func (t Type) String() string { return t.Code() }

// HomeCollected reports whether the stream is typically picked up at the
// curb rather than dropped off.
func (t Type) HomeCollected() bool {
	switch t {
	case Paper, Cardboard, Household, Green:
		return true
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.Code()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognized input
// yields Unknown.
func (t *Type) UnmarshalText(b []byte) error {
	*t, _ = Parse(string(b))

	return nil
}

// Parse resolves s written in any of the vocabularies (internal code,
// upstream code, English name, display label or classifier label). Matching
// ignores case, surrounding spaces and accents.
func Parse(s string) (Type, bool) {
	t, ok := byFolded[textutils.LowerASCIIFolding(s)]

	return t, ok
}

// FromUpstream resolves an upstream open data code.
func FromUpstream(s string) (Type, bool) {
	t, ok := byUpstream[textutils.LowerASCIIFolding(s)]

	return t, ok
}

// FromCode resolves an internal canonical code. Matching is exact.
func FromCode(s string) (Type, bool) {
	t, ok := byCode[s]

	return t, ok
}

// UpstreamToInternal maps an upstream code to the internal code. Unmapped
// input is returned unchanged.
func UpstreamToInternal(s string) string {
	if t, ok := FromUpstream(s); ok {
		return t.Code()
	}

	return s
}

// InternalToUpstream maps an internal code to the upstream code. Unmapped
// input is returned unchanged.
func InternalToUpstream(s string) string {
	if t, ok := FromCode(s); ok {
		return t.Upstream()
	}

	return s
}

// ToDisplay maps any known spelling to the display label. Unmapped input is
// returned unchanged.
func ToDisplay(s string) string {
	if t, ok := Parse(s); ok {
		return t.Display()
	}

	return s
}

// ToUpstream maps any known spelling to the upstream code. Unmapped input is
// returned unchanged.
func ToUpstream(s string) string {
	if t, ok := Parse(s); ok {
		return t.Upstream()
	}

	return s
}

// Translate maps an upstream code to its English name. Unmapped input is
// returned unchanged.
func Translate(s string) string {
	if t, ok := FromUpstream(s); ok {
		return t.Name()
	}

	return s
}
