// SPDX-License-Identifier: Apache-2.0

// Package markup implements the two fixed-order preprocessors that
// run on lightweight markup before it is converted to HTML: the Section
// Remover and the Link Rewriter.
package markup

import (
	"regexp"
	"strings"
)

var headingLineRE = regexp.MustCompile(`^(#+)\s`)

// RemoveSections strips every top-level section in md whose heading text
// matches an entry of sections (case-sensitive, exact heading text after
// the leading '#'s and whitespace). A section spans from its heading line
// through to the next heading of equal or higher level (exclusive); input
// order of sections is preserved and only matched sections are elided.
func RemoveSections(md string, sections map[string]bool) string {
	if len(sections) == 0 {
		return md
	}
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))

	i := 0
	for i < len(lines) {
		level, title, isHeading := parseHeading(lines[i])
		if isHeading && sections[title] {
			skipLevel := level
			i++
			for i < len(lines) {
				lvl, _, ok := parseHeading(lines[i])
				if ok && lvl <= skipLevel {
					break
				}
				i++
			}
			continue
		}
		out = append(out, lines[i])
		i++
	}
	return strings.Join(out, "\n")
}

// parseHeading reports the ATX heading level and trimmed title text of a
// line, or ok=false if the line is not a heading.
func parseHeading(line string) (level int, title string, ok bool) {
	m := headingLineRE.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	level = len(m[1])
	title = strings.TrimSpace(line[len(m[0]):])
	return level, title, true
}
