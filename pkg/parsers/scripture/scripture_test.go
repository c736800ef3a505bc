// SPDX-License-Identifier: Apache-2.0

package scripture

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairMalformedChapterMarkers_SplitsAndInsertsParagraph(t *testing.T) {
	in := "some trailing text\\c 2 more text"
	out := repairMalformedChapterMarkers(in)
	assert.Contains(t, out, "\n\\c 2\n\\p")
}

func TestSynthesize_SingleFile(t *testing.T) {
	dir := t.TempDir()
	content := "\\id TIT\n\\ide UTF-8\n\\h Titus\n\\c 1\n\\v 1 Paul, a servant.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TIT.usfm"), []byte(content), 0o644))

	out, err := Synthesize(dir, "tit", "Titus")
	require.NoError(t, err)
	assert.Contains(t, out, "\\id TIT")
	assert.Contains(t, out, "\\v 1 Paul")
}

func TestSynthesize_ChapterDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "1"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1", "1.txt"), []byte("\\v 1 In the beginning."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1", "2.txt"), []byte("\\v 2 And the earth."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2", "1.txt"), []byte("\\v 1 Chapter two."), 0o644))

	out, err := Synthesize(dir, "gen", "Genesis")
	require.NoError(t, err)
	assert.Contains(t, out, "\\id GEN")

	c1 := strings.Index(out, "\\c 1")
	c2 := strings.Index(out, "\\c 2")
	v2 := strings.Index(out, "Chapter two")
	require.True(t, c1 >= 0 && c2 > c1 && v2 > c2, "chapters must be in numeric order: %q", out)
}

func TestBasicConverter_ChapterAndVerseMarkers(t *testing.T) {
	usfm := "\\id TIT\n\\ide UTF-8\n\\h Titus\n\\c 1\n\\v 1 Paul, a servant of God.\n\\v 2 In hope of eternal life.\n"
	out, err := BasicConverter(context.Background(), usfm)
	require.NoError(t, err)
	assert.Contains(t, out, `<h2 class="c-num" id="c-1">1</h2>`)
	assert.Contains(t, out, `<span class="v-num" id="ch-001-v-001">1</span>`)
	assert.Contains(t, out, `<span class="v-num" id="ch-001-v-002">2</span>`)
}

func TestBasicConverter_Footnote(t *testing.T) {
	usfm := "\\c 1\n\\v 1 Text\\f + Some note.\\f* continues.\n"
	out, err := BasicConverter(context.Background(), usfm)
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="footnotes">`)
	assert.Contains(t, out, "Some note.")
	assert.Contains(t, out, `class="footnote-ref"`)
}

func TestParse_EndToEnd_VerseAndRangeExtraction(t *testing.T) {
	dir := t.TempDir()
	usfm := "\\id TIT\n\\ide UTF-8\n\\h Titus\n" +
		"\\c 1\n\\v 1 Paul, a servant of God.\n\\v 2-3 A combined verse range.\n\\v 4 Final verse.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TIT.usfm"), []byte(usfm), 0o644))

	book, err := Parse(context.Background(), dir, Options{
		LangCode: "en", LangName: "English", BookCode: "tit", BookName: "Titus",
	})
	require.NoError(t, err)
	require.Contains(t, book.Chapters, 1)

	ch := book.Chapters[1]
	var refs []string
	for ref := range ch.Verses {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	assert.Equal(t, []string{"1", "2-3", "4"}, refs)

	// Verse "1"'s slice must not bleed into verse "2-3"'s content.
	assert.Contains(t, ch.Verses["1"], "Paul, a servant")
	assert.NotContains(t, ch.Verses["1"], "combined verse range")

	// Verse "2-3" (upper_bound 4) must end exactly where the verse
	// labelled "4" begins.
	assert.Contains(t, ch.Verses["2-3"], "combined verse range")
	assert.NotContains(t, ch.Verses["2-3"], "Final verse")

	// ids are prefixed with lang + zero-padded book_num (tit = 56).
	assert.Contains(t, ch.Verses["1"], `id="en-056-ch-001-v-001"`)
}

func TestParse_PrintModeNeutersFootnoteRefs(t *testing.T) {
	dir := t.TempDir()
	usfm := "\\id TIT\n\\ide UTF-8\n\\h Titus\n\\c 1\n\\v 1 Text\\f + A note.\\f*\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TIT.usfm"), []byte(usfm), 0o644))

	book, err := Parse(context.Background(), dir, Options{
		LangCode: "en", BookCode: "tit", BookName: "Titus", Print: true,
	})
	require.NoError(t, err)
	ch := book.Chapters[1]
	assert.NotContains(t, ch.Verses["1"]+ch.Footnotes, "<a class=\"footnote-ref\"")
	assert.Contains(t, ch.Verses["1"], `<span class="footnote-ref"`)
}

func TestParse_VerseRefSetMatchesHTMLAnchors(t *testing.T) {
	// The set of verse_refs returned must equal the set of verse
	// anchors present in the generated chapter HTML.
	dir := t.TempDir()
	usfm := "\\id TIT\n\\h Titus\n\\c 1\n\\v 1 One.\n\\v 2 Two.\n\\v 3 Three.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TIT.usfm"), []byte(usfm), 0o644))

	book, err := Parse(context.Background(), dir, Options{LangCode: "en", BookCode: "tit", BookName: "Titus"})
	require.NoError(t, err)

	ch := book.Chapters[1]
	fullChapterHTML := ch.Content[0]
	for _, ref := range ch.VerseOrder {
		assert.Contains(t, fullChapterHTML, "v-"+zeroPadRef(ref))
	}
	assert.Len(t, ch.VerseOrder, 3)
}
