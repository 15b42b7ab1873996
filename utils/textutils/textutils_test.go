// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerAsciiFolding(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello world"},
		{"  Spaces  ", "spaces"},
		{"Grüngut", "grungut"},
		{"Altöl", "altol"},
		{"Crème Brûlée", "creme brulee"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, LowerASCIIFolding(tc.input))
		})
	}
}

func TestContainsEither(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Rorschacher Strasse", "rorschacher strasse", true},
		{"Rorschacher", "Rorschacher Strasse", true},
		{"  Rorschacher Strasse ", "Rorschacher", true},
		{"Teufener Strasse", "Rorschacher Strasse", false},
		{"", "Rorschacher Strasse", false},
		{"Rorschacher Strasse", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.a+"|"+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.want, ContainsEither(tc.a, tc.b))
		})
	}
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("12"))
	assert.True(t, IsNumeric("12a"))
	assert.False(t, IsNumeric("Strasse"))
	assert.False(t, IsNumeric(""))
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{100, "100"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234567, "-1,234,567"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, FormatInt(tc.input))
	}
}
