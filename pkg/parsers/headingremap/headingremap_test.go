// SPDX-License-Identifier: Apache-2.0

package headingremap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemap_NotesBookIntro(t *testing.T) {
	in := `<h1>Book</h1><h2>Section</h2><h3>Sub</h3>`
	out := Remap(in, NotesBookIntro)
	assert.Equal(t, `<h2>Book</h2><h3>Section</h3><h4>Sub</h4>`, out)
}

func TestRemap_NoDoubleApplication(t *testing.T) {
	// h1->h2 then h2->h3 in the SAME mapping must not cause the original
	// h1's output (h2) to be re-caught by the h2->h3 rule.
	mapping := map[int]int{1: 2, 2: 3}
	in := `<h1>A</h1><h2>B</h2>`
	out := Remap(in, mapping)
	assert.Equal(t, `<h2>A</h2><h3>B</h3>`, out)
}

func TestRemap_ChapterIntroCollapsesH3AndH4ToH4(t *testing.T) {
	// ChapterIntro is intentionally non-injective on origin h3/h4 (both
	// land on h4) -- that's the intended mapping, not a defect. What
	// matters is that the *tags actually present* are each transformed
	// exactly once from their true origin level.
	in := `<h1>Intro</h1><h2>Sub</h2><h3>X</h3><h4>Y</h4>`
	out := Remap(in, ChapterIntro)
	assert.Equal(t, `<h3>Intro</h3><h4>Sub</h4><h4>X</h4><h5>Y</h5>`, out)
}

func TestRemap_PreservesExistingH6(t *testing.T) {
	// A literal h6 scratch level would corrupt pre-existing h6 content.
	// This must not happen here.
	in := `<h1>A</h1><h6>Untouched</h6>`
	out := Remap(in, PerVerse)
	assert.Equal(t, `<h5>A</h5><h6>Untouched</h6>`, out)
}

func TestRemap_PreservesAttributesAndContent(t *testing.T) {
	in := `<h1 class="title" id="x">Hello <b>World</b></h1>`
	out := Remap(in, PerVerse)
	assert.Equal(t, `<h5 class="title" id="x">Hello <b>World</b></h5>`, out)
}

func TestRemap_NoMappingLeavesUnchanged(t *testing.T) {
	in := `<h2>Untouched</h2>`
	out := Remap(in, PerVerse)
	assert.Equal(t, in, out)
}
