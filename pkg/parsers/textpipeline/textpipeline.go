// SPDX-License-Identifier: Apache-2.0

// Package textpipeline composes the three-stage transform shared by the
// Notes, Questions, Words, and Commentary parsers: markup transformers,
// markdown→HTML conversion, then per-resource-kind heading remap
// (implemented in headingremap).
package textpipeline

import (
	"github.com/wkelly17/bibleassembler/pkg/markdown"
	"github.com/wkelly17/bibleassembler/pkg/markup"
	"github.com/wkelly17/bibleassembler/pkg/parsers/headingremap"
)

// Render runs raw source text through section removal, link rewriting,
// markdown→HTML conversion, and heading remap, in that fixed order.
// remap may be nil, in which case no heading adjustment is applied.
func Render(raw string, sections map[string]bool, ctx markup.Context, deps markup.Dependencies, remap map[int]int) (string, error) {
	md := markup.RemoveSections(raw, sections)
	md = markup.Rewrite(md, ctx, deps)
	htmlBytes, err := markdown.ToHTML([]byte(md))
	if err != nil {
		return "", err
	}
	html := string(htmlBytes)
	if remap != nil {
		html = headingremap.Remap(html, remap)
	}
	return html, nil
}
