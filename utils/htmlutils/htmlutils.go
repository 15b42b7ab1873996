// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node2string appends the text content of n to sb, one space between text
// nodes. Line breaks inside text collapse to spaces.
func Node2string(n *html.Node, sb *strings.Builder) {
	switch {
	case n.Type == html.TextNode:
		tmp := strings.Join(strings.Fields(n.Data), " ")
		if tmp == "" {
			return
		}

		if sb.Len() != 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(tmp)
	case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
		return
	default:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			Node2string(child, sb)
		}
	}
}

// PlainText strips markup from a fragment such as "Mo-Fr<br>8-18 Uhr" and
// returns its text. Input without markup is only whitespace-normalized.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		zap.L().Warn("parsing html fragment", zap.Error(err))

		return strings.Join(strings.Fields(s), " ")
	}

	sb := strings.Builder{}
	for _, n := range nodes {
		Node2string(n, &sb)
	}

	return sb.String()
}
