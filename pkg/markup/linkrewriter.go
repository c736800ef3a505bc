// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"fmt"
	"regexp"

	"github.com/wkelly17/bibleassembler/pkg/model"
)

// Context carries the (language, book, chapter, verse) the markup being
// rewritten belongs to, used both to resolve relative links and to record
// word uses with full provenance.
type Context struct {
	LangCode   string
	BookCode   string
	BookName   string
	ChapterNum int
	// VerseRef is set when rewriting per-verse content; empty for
	// chapter/book intros.
	VerseRef string
}

// Dependencies are the link rewriter's collaborators, injected so the
// rewriter itself stays a pure string transform.
type Dependencies struct {
	// KnownWord reports whether word is a known translation word in lang.
	KnownWord func(lang, word string) bool
	// WordsRequested reports whether a Words resource was requested for lang.
	WordsRequested func(lang string) bool
	// NoteAssetExists reports whether the referenced note asset file
	// exists on disk for a requested Notes resource.
	NoteAssetExists func(lang, bookCode string, chapter int, verse string) bool
	// OnWordUse is called for every wikilink/markdown-link that resolves
	// to a known translation word, recording a model.WordUse.
	OnWordUse func(use model.WordUse)
}

var (
	// [[rc://LANG/tw/dict/bible/CAT/WORD]]
	twWikiRE = regexp.MustCompile(`\[\[rc://([^/]+)/tw/dict/bible/([^/]+)/([^\]]+)\]\]`)
	// prefix text immediately preceding a tw wikilink, e.g. "(See: [[rc://en/tw/...]])"
	twWikiPrefixedRE = regexp.MustCompile(`([^\[]*)\[\[rc://([^/]+)/tw/dict/bible/([^/]+)/([^\]]+)\]\]`)
	// [LABEL](rc://LANG/tw/dict/bible/CAT/WORD.md) — the .md markdown-link shape pointing
	// at a TW article. Only targets containing tw/dict/bible/ match; a relative
	// `[LABEL](../CAT/WORD.md)` link is not rewritten by this pattern.
	twMarkdownRE = regexp.MustCompile(`(·\s*)?\[([^\]]+)\]\(([^)]*tw/dict/bible/[^)]*?/([A-Za-z0-9_-]+)\.md)\)`)

	// TA (translation academy) shapes: always removed, no TA support.
	taWikiRE       = regexp.MustCompile(`\[\[rc://[^/]+/ta/man/[^\]]+\]\]`)
	taWikiPrefixRE = regexp.MustCompile(`([^\[]*)\[\[rc://[^/]+/ta/man/[^\]]+\]\]`)
	taMarkdownRE   = regexp.MustCompile(`(·\s*)?\[([^\]]+)\]\([^)]*ta/man/[^)]*\)`)

	// [SCRIPTURE_REF](rc://LANG/tn/help/BOOK/CH/VS) absolute form.
	tnScriptureRE = regexp.MustCompile(`\[([^\]]+)\]\(rc://([^/]+)/tn/help/([^/]+)/(\d+)/(\d+)\)`)
	// relative variant: [SCRIPTURE_REF](../CH/VS.md) or ./CH/VS.md, resolved
	// against the current book/lang context.
	tnRelativeRE = regexp.MustCompile(`\[([^\]]+)\]\((?:\.\./|\./)?(\d+)/(\d+)\.md\)`)

	// OBS note links: [LABEL](rc://LANG/tn/help/obs/CH/VS) — reduced to label.
	obsNoteRE = regexp.MustCompile(`\[([^\]]+)\]\(rc://[^/]+/tn/help/obs/[^)]*\)`)
)

// Rewrite runs the full ordered chain of link transforms. Word uses
// accumulate as a side effect via deps.OnWordUse: uses are recorded only
// during link rewriting of per-verse content, never during Words parsing.
func Rewrite(src string, ctx Context, deps Dependencies) string {
	src = rewriteTWWikiPrefixed(src, ctx, deps)
	src = rewriteTWWiki(src, ctx, deps)
	src = rewriteTWMarkdown(src, ctx, deps)

	src = taWikiPrefixRE.ReplaceAllString(src, "$1")
	src = taWikiRE.ReplaceAllString(src, "")
	src = taMarkdownRE.ReplaceAllString(src, "")

	src = rewriteTNScripture(src, ctx, deps)
	src = rewriteTNRelative(src, ctx, deps)

	src = obsNoteRE.ReplaceAllString(src, "$1")
	return src
}

func rewriteTWWikiPrefixed(src string, ctx Context, deps Dependencies) string {
	return twWikiPrefixedRE.ReplaceAllStringFunc(src, func(m string) string {
		g := twWikiPrefixedRE.FindStringSubmatch(m)
		prefix, lang, _, word := g[1], g[2], g[3], g[4]
		if anchor, ok := resolveWord(lang, word, ctx, deps); ok {
			return prefix + fmt.Sprintf("[%s](%s)", word, anchor)
		}
		return prefix
	})
}

func rewriteTWWiki(src string, ctx Context, deps Dependencies) string {
	return twWikiRE.ReplaceAllStringFunc(src, func(m string) string {
		g := twWikiRE.FindStringSubmatch(m)
		lang, word := g[1], g[3]
		if anchor, ok := resolveWord(lang, word, ctx, deps); ok {
			return fmt.Sprintf("[%s](%s)", word, anchor)
		}
		return ""
	})
}

func rewriteTWMarkdown(src string, ctx Context, deps Dependencies) string {
	return twMarkdownRE.ReplaceAllStringFunc(src, func(m string) string {
		g := twMarkdownRE.FindStringSubmatch(m)
		label, word := g[2], g[4]
		if anchor, ok := resolveWord(ctx.LangCode, word, ctx, deps); ok {
			return fmt.Sprintf(`[%s](%s)`, label, anchor)
		}
		// failure: replace the whole "· [LABEL](...)" token with empty string
		return ""
	})
}

// resolveWord implements the shared WORD→anchor mapping: WORD is a known
// translation word in lang AND a Words resource was requested for that
// language. On success it records a WordUse (for per-verse content only —
// ctx.VerseRef will be empty for book/chapter intros, in which case no use
// is recorded, matching the "per-verse content only" rule) and returns
// the `#tw-{lang}-{word}` anchor markdown link target.
func resolveWord(lang, word string, ctx Context, deps Dependencies) (string, bool) {
	if deps.KnownWord == nil || deps.WordsRequested == nil {
		return "", false
	}
	if !deps.KnownWord(lang, word) || !deps.WordsRequested(lang) {
		return "", false
	}
	anchor := fmt.Sprintf("#tw-%s-%s", lang, word)
	if ctx.VerseRef != "" && deps.OnWordUse != nil {
		deps.OnWordUse(model.WordUse{
			LangCode:      lang,
			BookCode:      ctx.BookCode,
			BookName:      ctx.BookName,
			ChapterNum:    ctx.ChapterNum,
			VerseRef:      ctx.VerseRef,
			LocalizedWord: word,
		})
	}
	return anchor, true
}

func rewriteTNScripture(src string, ctx Context, deps Dependencies) string {
	return tnScriptureRE.ReplaceAllStringFunc(src, func(m string) string {
		g := tnScriptureRE.FindStringSubmatch(m)
		label, lang, book, ch, vs := g[1], g[2], g[3], g[4], g[5]
		return resolveTNLink(label, lang, book, ch, vs, deps)
	})
}

func rewriteTNRelative(src string, ctx Context, deps Dependencies) string {
	return tnRelativeRE.ReplaceAllStringFunc(src, func(m string) string {
		g := tnRelativeRE.FindStringSubmatch(m)
		label, ch, vs := g[1], g[2], g[3]
		return resolveTNLink(label, ctx.LangCode, ctx.BookCode, ch, vs, deps)
	})
}

func resolveTNLink(label, lang, book, chStr, vsStr string, deps Dependencies) string {
	ch := atoiSafe(chStr)
	if deps.NoteAssetExists != nil && deps.NoteAssetExists(lang, book, ch, vsStr) {
		anchor := "#" + NoteAnchorID(lang, book, ch, vsStr)
		return fmt.Sprintf("[%s](%s)", label, anchor)
	}
	return label
}

// NoteAnchorID builds the stable id="tn-{lang}-{book_num:03}-{ch:03}-{vs:03}"
// cross-link target for a Notes chapter-intro or per-verse fragment. verseRef
// may be a non-numeric token such as "intro"; it is zero-padded only when
// numeric, and passed through unchanged otherwise.
func NoteAnchorID(lang, book string, chapter int, verseRef string) string {
	return fmt.Sprintf("tn-%s-%03d-%03d-%s", lang, model.BookNumber(book), chapter, zeroPad3(verseRef))
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func zeroPad3(s string) string {
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	n := atoiSafe(s)
	return fmt.Sprintf("%03d", n)
}
