// SPDX-License-Identifier: Apache-2.0

// Package worddefs implements the word-definitions appender: for
// each language with a Words resource, it emits a glossary section built
// from that language's sorted WordsBook.Entries, joined against the
// WordUse records the Assembly Engine accumulated separately (see
// pkg/assembly's "Cyclic / mutable structure" design note — WordsBook
// itself is never mutated).
package worddefs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wkelly17/bibleassembler/pkg/model"
)

var firstHeadingRE = regexp.MustCompile(`(?s)^(\s*<h[1-6])([^>]*)(>)(.*?)(</h[1-6]>)`)

// wordAnchorID mirrors the translation-word anchor scheme: the
// enclosing element carries id="tw-{lang}-{word}" (the form every
// in-body reference points at); the heading itself additionally carries
// the bare id="{word}" form.
func wordAnchorID(lang, word string) string {
	return fmt.Sprintf("tw-%s-%s", lang, word)
}

// renderEntry rewrites e's first HTML heading to carry both anchor ids
// and, when hasScripture is true, appends a "Uses:" subsection linking
// back to each accumulated WordUse's verse anchor.
func renderEntry(langCode string, e model.WordEntry, uses []model.WordUse, hasScripture bool) string {
	var sb strings.Builder
	anchorID := wordAnchorID(langCode, e.LocalizedWord)
	sb.WriteString(fmt.Sprintf(`<div class="tw-entry" id="%s">`, anchorID))

	body := e.Definition
	if m := firstHeadingRE.FindStringSubmatchIndex(body); m != nil {
		body = firstHeadingRE.ReplaceAllString(body, fmt.Sprintf(`${1} id="%s"${3}${4}${5}`, e.LocalizedWord))
	}
	sb.WriteString(body)

	if hasScripture && len(uses) > 0 {
		sb.WriteString(`<div class="tw-uses"><h4>Uses:</h4><ul>`)
		for _, u := range uses {
			href := fmt.Sprintf("#%s-%03d-ch-%03d-v-%s", u.LangCode, model.BookNumber(u.BookCode), u.ChapterNum, zeroPadVerseRef(u.VerseRef))
			sb.WriteString(fmt.Sprintf(`<li><a href="%s">%s %d:%s</a></li>`, href, u.BookName, u.ChapterNum, u.VerseRef))
		}
		sb.WriteString(`</ul></div>`)
	}

	sb.WriteString(`</div>`)
	return sb.String()
}

// zeroPadVerseRef mirrors pkg/parsers/scripture's verse-anchor padding
// rule so href targets match the ids that package rewrites into the
// scripture HTML: each numeric component of a ref ("7" or "7-9") is
// padded to three digits, hyphens preserved.
func zeroPadVerseRef(ref string) string {
	parts := strings.Split(ref, "-")
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		parts[i] = fmt.Sprintf("%03d", n)
	}
	return strings.Join(parts, "-")
}

// Render emits the full glossary section for one language's WordsBook.
// hasScripture gates the "Uses:" subsection ("only when any
// scripture resource was present in the request").
func Render(langCode string, book *model.WordsBook, uses map[string][]model.WordUse, hasScripture bool) string {
	if book == nil || len(book.Entries) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<section class="translation-words">`)
	for _, e := range book.Entries {
		sb.WriteString(renderEntry(langCode, e, uses[e.LocalizedWord], hasScripture))
	}
	sb.WriteString(`</section>`)
	return sb.String()
}

// RenderAll emits one glossary section per language present in books,
// in the language's natural map-iteration-independent order given by
// langOrder (callers should pass the same lang ordering used to build
// the body, e.g. from the assembly strategy).
func RenderAll(langOrder []string, books map[string]*model.WordsBook, wordUses map[string]map[string][]model.WordUse, hasScripture map[string]bool) []string {
	var out []string
	for _, lang := range langOrder {
		book := books[lang]
		if book == nil {
			continue
		}
		if frag := Render(lang, book, wordUses[lang], hasScripture[lang]); frag != "" {
			out = append(out, frag)
		}
	}
	return out
}
