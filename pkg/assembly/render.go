// SPDX-License-Identifier: Apache-2.0

package assembly

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wkelly17/bibleassembler/pkg/api"
	"github.com/wkelly17/bibleassembler/pkg/model"
)

// renderCell implements the per-(book,lang)-cell interleaving. The
// same shape is used by both ordering strategies (only the outer grouping
// differs, in assemble.go); the dispatch table maps every presence/layout/
// chunk combination to this single generically-branching function: the
// shape is the same fixed algorithm regardless of which bits are set, and
// presence bits are handled with nil checks rather than one hand-written
// function per bit pattern.
//
// Design note: there's a tension between when the link rewriter runs (during
// per-resource parsing, which happens concurrently) and when WordsBook.uses
// accumulates "as a side effect of link rewriting" (during assembly, which
// is single-threaded specifically because that mutation is unsynchronized).
// Parsing therefore
// never calls a WordsBook-mutating callback — it only emits the `#tw-
// {lang}-{word}` anchors the link rewriter already produces deterministically.
// Assembly (genuinely single-threaded, see assemble.go) scans each
// finalized per-verse NOTE fragment for those anchors — in
// collectWordUsesForCell/scanWordUses, called from Assemble rather than from
// renderCell — and records each WordUse in Result.WordUses, which preserves the causal description ("as NOTE HTML
// passes through the link rewriter... records a WordUse") while keeping
// the actual map write confined to the single-threaded phase.
func renderCell(c *Cell, key dispatchKey, print bool) []string {
	var out []string
	out = append(out, fmt.Sprintf(`<div dir="%s" class="lang-cell">`, c.LangDirection))

	if c.Notes != nil && c.Notes.BookIntro != "" {
		out = append(out, c.Notes.BookIntro)
	}
	if c.Commentary != nil && c.Commentary.BookIntro != "" {
		out = append(out, c.Commentary.BookIntro)
	}
	out = append(out, fmt.Sprintf(`<h1 class="book-title">%s</h1>`, c.BookName))

	for _, ch := range chapterOrder(c) {
		if key.chunkSize == api.Verse {
			out = append(out, renderChapterVerseMode(c, ch)...)
		} else {
			out = append(out, renderChapterChapterMode(c, ch)...)
		}
		out = append(out, `<div class="end-of-chapter"></div>`)
	}

	out = append(out, `</div>`)
	return out
}

func chapterOrder(c *Cell) []int {
	if c.Scripture != nil {
		return c.Scripture.ChapterOrder
	}
	if c.Notes != nil {
		return c.Notes.ChapterOrder
	}
	if c.Questions != nil {
		return c.Questions.ChapterOrder
	}
	if c.Commentary != nil {
		return c.Commentary.ChapterOrder
	}
	return nil
}

func renderChapterChapterMode(c *Cell, ch int) []string {
	var out []string
	if c.Scripture != nil {
		if sc := c.Scripture.Chapters[ch]; sc != nil {
			out = append(out, sc.Content...)
			out = append(out, `<hr/>`)
			if sc.Footnotes != "" {
				out = append(out, sc.Footnotes)
			}
		}
	}
	if c.Notes != nil {
		if nc := c.Notes.Chapters[ch]; nc != nil {
			if nc.Intro != "" {
				out = append(out, nc.Intro)
			}
		}
	}
	if c.Commentary != nil {
		if cc := c.Commentary.Chapters[ch]; cc != nil {
			out = append(out, cc.HTML)
		}
	}
	if c.Notes != nil {
		if nc := c.Notes.Chapters[ch]; nc != nil {
			for _, ref := range nc.VerseOrder {
				out = append(out, nc.Verses[ref])
			}
		}
	}
	if c.Questions != nil {
		if qc := c.Questions.Chapters[ch]; qc != nil {
			for _, ref := range qc.VerseOrder {
				out = append(out, qc.Verses[ref])
			}
		}
	}
	if c.SecondaryScripture != nil {
		if sc := c.SecondaryScripture.Chapters[ch]; sc != nil {
			out = append(out, sc.Content...)
		}
	}
	return out
}

func renderChapterVerseMode(c *Cell, ch int) []string {
	var out []string
	if c.Notes != nil {
		if nc := c.Notes.Chapters[ch]; nc != nil && nc.Intro != "" {
			out = append(out, nc.Intro)
		}
	}
	if c.Commentary != nil {
		if cc := c.Commentary.Chapters[ch]; cc != nil {
			out = append(out, cc.HTML)
		}
	}

	if c.Scripture != nil {
		if sc := c.Scripture.Chapters[ch]; sc != nil {
			for _, ref := range sc.VerseOrder {
				out = append(out, sc.Verses[ref])
				if c.Notes != nil {
					if nc := c.Notes.Chapters[ch]; nc != nil {
						if html, ok := nc.Verses[ref]; ok {
							out = append(out, html)
						}
					}
				}
				if c.Questions != nil {
					if qc := c.Questions.Chapters[ch]; qc != nil {
						if html, ok := qc.Verses[ref]; ok {
							out = append(out, html)
						}
					}
				}
			}
			if sc.Footnotes != "" {
				out = append(out, sc.Footnotes)
			}
		}
	}

	if c.SecondaryScripture != nil {
		if sc := c.SecondaryScripture.Chapters[ch]; sc != nil {
			out = append(out, sc.Content...)
		}
	}
	return out
}

// orphanNoteVerses checks chapter-level verse alignment: for CHAPTER
// chunk size, every NOTE verse_ref should match a SCR verse_ref in the
// same chapter. Callers record the returned refs as orphaned in the
// per-resource status rather than treating them as fatal.
func orphanNoteVerses(c *Cell, ch int) []string {
	if c.Scripture == nil || c.Notes == nil {
		return nil
	}
	sc, ok1 := c.Scripture.Chapters[ch]
	nc, ok2 := c.Notes.Chapters[ch]
	if !ok1 || !ok2 {
		return nil
	}
	have := map[string]bool{}
	for _, r := range sc.VerseOrder {
		have[r] = true
	}
	var orphans []string
	for _, r := range nc.VerseOrder {
		if !have[r] {
			orphans = append(orphans, r)
		}
	}
	return orphans
}

var twAnchorRE = regexp.MustCompile(`href="#tw-([a-zA-Z0-9_-]+)-([a-zA-Z0-9_-]+)"`)

// scanWordUses implements the word-uses accumulation by inspecting
// the already-rewritten per-verse NOTE HTML for `#tw-{lang}-{word}`
// anchors (see the Open Question resolution documented on renderCell).
func scanWordUses(html, langCode, bookCode, bookName string, chapter int, verseRef string) []model.WordUse {
	var uses []model.WordUse
	for _, m := range twAnchorRE.FindAllStringSubmatch(html, -1) {
		if m[1] != langCode {
			continue
		}
		uses = append(uses, model.WordUse{
			LangCode: langCode, BookCode: bookCode, BookName: bookName,
			ChapterNum: chapter, VerseRef: verseRef, LocalizedWord: m[2],
		})
	}
	return uses
}

func collectWordUsesForCell(c *Cell) []model.WordUse {
	if c.Notes == nil {
		return nil
	}
	var all []model.WordUse
	for _, ch := range c.Notes.ChapterOrder {
		nc := c.Notes.Chapters[ch]
		if nc == nil {
			continue
		}
		for _, ref := range nc.VerseOrder {
			all = append(all, scanWordUses(nc.Verses[ref], c.LangCode, c.BookCode, c.BookName, ch, ref)...)
		}
	}
	return all
}

// joinFragments joins fragments, skipping empties, purely a formatting
// convenience for callers assembling the final document body.
func joinFragments(frags []string) string {
	nonEmpty := frags[:0]
	for _, f := range frags {
		if strings.TrimSpace(f) != "" {
			nonEmpty = append(nonEmpty, f)
		}
	}
	return strings.Join(nonEmpty, "\n")
}
