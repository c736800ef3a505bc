// SPDX-License-Identifier: Apache-2.0

// Package headingremap applies per-resource-kind heading level permutations
// to already-converted HTML. It avoids the hazard where a literal h6
// scratch level could corrupt pre-existing h6 headings by using a
// private-use sentinel substitution instead, which is provably injective
// regardless of mapping shape.
package headingremap

import (
	"fmt"
	"regexp"
)

var headingTagRE = regexp.MustCompile(`(</?h)([1-6])(\b[^>]*>)`)

// sentinel wraps a target level so the second substitution pass can never
// be mistaken for a real heading tag digit produced by the first pass.
func sentinel(level int) string {
	return fmt.Sprintf("\x00H%d\x00", level)
}

var sentinelRE = regexp.MustCompile("\x00H([1-6])\x00")

// Remap applies mapping (origin heading level → destination heading level)
// to every <hN>/</hN> tag in html. Levels absent from mapping are left
// unchanged. The permutation is applied atomically per occurrence: every
// tag's origin level is read from the untouched input before any rewriting
// happens, so a mapping like {1:2, 2:3} can never cause an original h1 to
// be promoted twice into an h3.
func Remap(html string, mapping map[int]int) string {
	// Pass 1: origin levels present in mapping become sentinel placeholders.
	staged := headingTagRE.ReplaceAllStringFunc(html, func(m string) string {
		g := headingTagRE.FindStringSubmatch(m)
		origin := int(g[2][0] - '0')
		target, ok := mapping[origin]
		if !ok {
			return m
		}
		return g[1] + sentinel(target) + g[3]
	})
	// Pass 2: sentinel placeholders become their final literal digit.
	return sentinelRE.ReplaceAllString(staged, "$1")
}

// Notes book intro: h1→h2, h2→h3, h3→h4.
var NotesBookIntro = map[int]int{1: 2, 2: 3, 3: 4}

// Notes chapter intro / Commentary: h1→h3, h2→h4, h3→h4, h4→h5.
var ChapterIntro = map[int]int{1: 3, 2: 4, 3: 4, 4: 5}

// Any per-verse HTML: h1→h5.
var PerVerse = map[int]int{1: 5}

// Words (per-word HTML): h1→h3, h2→h4.
var Words = map[int]int{1: 3, 2: 4}
