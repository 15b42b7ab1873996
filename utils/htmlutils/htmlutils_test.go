// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package htmlutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "Mo-Fr 8-18 Uhr", "Mo-Fr 8-18 Uhr"},
		{"collapses whitespace", "  Mo-Fr\n 8-18   Uhr ", "Mo-Fr 8-18 Uhr"},
		{"line break", "Mo-Fr 8-18 Uhr<br>Sa 8-12 Uhr", "Mo-Fr 8-18 Uhr Sa 8-12 Uhr"},
		{"paragraphs", "<p>Mo-Fr</p><p>8-18 Uhr</p>", "Mo-Fr 8-18 Uhr"},
		{"entities", "Mo&ndash;Fr 8&nbsp;Uhr", "Mo–Fr 8 Uhr"},
		{"self-closing break", "Mo-Sa<br/>7-20 Uhr", "Mo-Sa 7-20 Uhr"},
		{"nested markup", "<div><b>Mo-Sa</b><br>7-20&nbsp;Uhr</div>", "Mo-Sa 7-20 Uhr"},
		{"script ignored", "<script>alert(1)</script>24h", "24h"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestNode2string(t *testing.T) {
	n, err := html.Parse(strings.NewReader("<html><body><div>Sammelstelle <b>Bahnhof</b></div></body></html>"))
	require.NoError(t, err)

	sb := strings.Builder{}
	Node2string(n, &sb)
	assert.Equal(t, "Sammelstelle Bahnhof", sb.String())
}
