// SPDX-License-Identifier: Apache-2.0

package assembly

import (
	"sort"

	"github.com/wkelly17/bibleassembler/pkg/api"
	"github.com/wkelly17/bibleassembler/pkg/apperrors"
	"github.com/wkelly17/bibleassembler/pkg/model"
)

// Request is the assembly engine's input: one Cell per requested
// (language, book) pair that was successfully provisioned and parsed,
// plus the per-language WordsBook map (nil entries allowed for languages
// with no Words resource).
type Request struct {
	Cells     []*Cell
	Words     map[string]*model.WordsBook
	Strategy  api.AssemblyStrategyKind
	Layout    api.AssemblyLayoutKind
	ChunkSize api.ChunkSize
	Print     bool
}

// Result is the engine's output: the ordered body fragments (ready for
// the Word-Definitions Appender and Document Assembler), the
// word uses accumulated during assembly (keyed by lang_code then by
// localized word — owned by the engine, not written into the caller's
// WordsBook values; see the "Cyclic / mutable structure" design note),
// and any orphaned NOTE verse refs observed during CHAPTER-chunk
// alignment checks, recorded but non-fatal.
type Result struct {
	BodyFragments []string
	WordUses      map[string]map[string][]model.WordUse
	Orphans       []apperrors.ResourceStatus
}

// Assemble runs the full assembly engine: groups cells by the requested
// ordering strategy, dispatches each cell through the exhaustive table,
// wraps adjacent-language pairs for two-column layouts, and accumulates
// word uses into Result.WordUses (single-threaded: Assemble runs entirely
// on the calling goroutine). WordsBook values passed in via Request.Words are
// never mutated — the join against WordsBook.Entries happens later, in the
// Word-Definitions Appender.
func Assemble(req Request) (*Result, error) {
	var ordered []*Cell
	switch req.Strategy {
	case api.BookLanguageOrder:
		ordered = orderBookThenLanguage(req.Cells)
	default:
		ordered = orderLanguageThenBook(req.Cells)
	}

	result := &Result{WordUses: map[string]map[string][]model.WordUse{}}

	renderOne := func(c *Cell) ([]string, error) {
		hasWord := req.Words[c.LangCode] != nil
		key := dispatchKey{
			strategy: req.Strategy, layout: req.Layout, chunkSize: req.ChunkSize,
			presence: c.presence(hasWord),
		}
		fn, err := lookup(key)
		if err != nil {
			return nil, err
		}
		frags := fn(c, key, req.Print)

		if req.ChunkSize == api.Chapter {
			for _, ch := range chapterOrder(c) {
				for _, ref := range orphanNoteVerses(c, ch) {
					result.Orphans = append(result.Orphans, apperrors.ResourceStatus{
						LangCode: c.LangCode, ResourceType: string(api.ResourceNotes),
						BookCode: c.BookCode, Found: true,
						Err: apperrors.New(apperrors.MalformedAsset, ref, nil),
					})
				}
			}
		}

		if req.Words[c.LangCode] != nil {
			langUses := result.WordUses[c.LangCode]
			if langUses == nil {
				langUses = map[string][]model.WordUse{}
				result.WordUses[c.LangCode] = langUses
			}
			for _, use := range collectWordUsesForCell(c) {
				langUses[use.LocalizedWord] = append(langUses[use.LocalizedWord], use)
			}
		}
		return frags, nil
	}

	if isTwoColumn(req.Layout) {
		for i := 0; i+1 < len(ordered); i += 2 {
			left, right := ordered[i], ordered[i+1]
			lf, err := renderOne(left)
			if err != nil {
				return nil, err
			}
			rf, err := renderOne(right)
			if err != nil {
				return nil, err
			}
			result.BodyFragments = append(result.BodyFragments, wrapTwoColumn(lf, rf))
		}
		return result, nil
	}

	for _, c := range ordered {
		frags, err := renderOne(c)
		if err != nil {
			return nil, err
		}
		result.BodyFragments = append(result.BodyFragments, frags...)
	}
	return result, nil
}

// orderBookThenLanguage implements the "mix" ordering: outer
// groupings by book_code in canonical order, inner groupings by language
// in alphabetic order of lang_name.
func orderBookThenLanguage(cells []*Cell) []*Cell {
	byBook := map[string][]*Cell{}
	for _, c := range cells {
		byBook[c.BookCode] = append(byBook[c.BookCode], c)
	}
	var out []*Cell
	for _, code := range model.CanonicalBookCodes() {
		group := byBook[code]
		sort.SliceStable(group, func(i, j int) bool { return group[i].LangName < group[j].LangName })
		out = append(out, group...)
	}
	return out
}

// orderLanguageThenBook implements the "separate" ordering: outer
// groupings by language (sorted by lang_name), inner groupings by book in
// canonical order.
func orderLanguageThenBook(cells []*Cell) []*Cell {
	byLang := map[string][]*Cell{}
	var langNames []string
	seen := map[string]bool{}
	for _, c := range cells {
		byLang[c.LangCode] = append(byLang[c.LangCode], c)
		if !seen[c.LangCode] {
			seen[c.LangCode] = true
			langNames = append(langNames, c.LangCode)
		}
	}
	sort.SliceStable(langNames, func(i, j int) bool {
		return firstLangName(byLang[langNames[i]]) < firstLangName(byLang[langNames[j]])
	})

	bookRank := map[string]int{}
	for i, code := range model.CanonicalBookCodes() {
		bookRank[code] = i
	}

	var out []*Cell
	for _, lang := range langNames {
		group := byLang[lang]
		sort.SliceStable(group, func(i, j int) bool {
			return bookRank[group[i].BookCode] < bookRank[group[j].BookCode]
		})
		out = append(out, group...)
	}
	return out
}

func firstLangName(cells []*Cell) string {
	if len(cells) == 0 {
		return ""
	}
	return cells[0].LangName
}

// wrapTwoColumn implements the two-column layouts: the data is identical to
// one-column; only the containing markup differs. It emits one row holding
// the left cell's whole fragment sequence in the left column and the right
// cell's whole sequence in the right column; chapters of the two languages
// are not aligned row by row.
func wrapTwoColumn(left, right []string) string {
	var sb []string
	sb = append(sb, `<div class="two-column-row">`)
	sb = append(sb, `<div class="column-left">`)
	sb = append(sb, joinFragments(left))
	sb = append(sb, `</div>`)
	sb = append(sb, `<div class="column-right">`)
	sb = append(sb, joinFragments(right))
	sb = append(sb, `</div>`)
	sb = append(sb, `</div>`)
	return joinFragments(sb)
}
