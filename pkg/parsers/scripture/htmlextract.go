// SPDX-License-Identifier: Apache-2.0

package scripture

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/wkelly17/bibleassembler/pkg/model"
)

type chapterMark struct {
	num   int
	start int
}

type verseMark struct {
	id         string
	ref        string
	upperBound int
	start      int
	chapterIdx int
}

type footnotesMark struct {
	start      int
	chapterIdx int
}

// scanMarks walks docHTML with an HTML tokenizer, recording the byte
// offset of every chapter h2, verse span, and footnotes div. Offsets are
// computed by summing each token's raw byte length as it is consumed —
// the tokenizer does not expose positions directly, so this reconstructs
// them, which is what lets per-verse HTML be extracted as an exact
// substring of the original document rather than a re-serialized DOM
// fragment.
func scanMarks(docHTML string) (chapters []chapterMark, verses []verseMark, footnotes []footnotesMark) {
	z := html.NewTokenizer(strings.NewReader(docHTML))
	pos := 0
	chapterIdx := -1
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		start := pos
		raw := z.Raw()
		pos += len(raw)
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		class := attrVal(tok, "class")
		id := attrVal(tok, "id")
		switch {
		case tok.Data == "h2" && strings.Contains(class, "c-num"):
			n, _ := strconv.Atoi(strings.TrimPrefix(id, "c-"))
			chapters = append(chapters, chapterMark{num: n, start: start})
			chapterIdx++
		case tok.Data == "span" && strings.Contains(class, "v-num"):
			ref := verseRefFromID(id)
			verses = append(verses, verseMark{
				id:         id,
				ref:        ref,
				upperBound: upperBoundOf(ref),
				start:      start,
				chapterIdx: chapterIdx,
			})
		case tok.Data == "div" && strings.Contains(class, "footnotes"):
			footnotes = append(footnotes, footnotesMark{start: start, chapterIdx: chapterIdx})
		}
	}
	return
}

func attrVal(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

var spanIDRefRE = regexp.MustCompile(`-v-([0-9-]+)$`)

// verseRefFromID extracts the verse_ref from a span id of shape
// "ch-NNN-v-MMM" or "ch-NNN-v-MMM-LLL" (range), stripping leading zeros
// from each numeric component.
func verseRefFromID(id string) string {
	m := spanIDRefRE.FindStringSubmatch(id)
	if m == nil {
		return ""
	}
	parts := strings.Split(m[1], "-")
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "-")
}

// upperBoundOf computes upper_bound: N+1 for a plain verse, M+1 for a
// range "N-M".
func upperBoundOf(ref string) int {
	parts := strings.Split(ref, "-")
	last := parts[len(parts)-1]
	n, _ := strconv.Atoi(last)
	return n + 1
}

func startNum(ref string) int {
	parts := strings.Split(ref, "-")
	n, _ := strconv.Atoi(parts[0])
	return n
}

// Extract builds the per-chapter ScriptureChapter map from converter
// output docHTML: chapter boundary
// extraction, per-verse slicing up to the next verse whose start number
// equals this verse's upper_bound (or the footnotes block, or chapter
// end), language-code id prefixing, and print-mode footnote-ref
// neutering.
func Extract(docHTML, langCode, bookCode string, print bool) (map[int]*model.ScriptureChapter, []int, error) {
	docHTML = rewriteVerseIDs(docHTML, langCode, bookCode)
	if print {
		docHTML = neuterFootnoteRefs(docHTML)
	}

	chapters, verses, footnotes := scanMarks(docHTML)

	result := map[int]*model.ScriptureChapter{}
	var order []int

	for ci, cm := range chapters {
		chapEnd := len(docHTML)
		if ci+1 < len(chapters) {
			chapEnd = chapters[ci+1].start
		}

		fnStart := -1
		for _, fm := range footnotes {
			if fm.chapterIdx == ci {
				fnStart = fm.start
				break
			}
		}
		bodyEnd := chapEnd
		footnotesHTML := ""
		if fnStart >= 0 {
			footnotesHTML = docHTML[fnStart:chapEnd]
			bodyEnd = fnStart
		}

		ch := &model.ScriptureChapter{
			Verses:    map[string]string{},
			Footnotes: footnotesHTML,
		}

		var versesInChapter []verseMark
		for _, vm := range verses {
			if vm.chapterIdx == ci {
				versesInChapter = append(versesInChapter, vm)
			}
		}

		for vi, vm := range versesInChapter {
			end := bodyEnd
			for vj := vi + 1; vj < len(versesInChapter); vj++ {
				if startNum(versesInChapter[vj].ref) == vm.upperBound {
					end = versesInChapter[vj].start
					break
				}
			}
			ch.Verses[vm.ref] = docHTML[vm.start:end]
			ch.VerseOrder = append(ch.VerseOrder, vm.ref)
		}

		ch.Content = []string{strings.TrimSpace(docHTML[cm.start:bodyEnd])}
		result[cm.num] = ch
		order = append(order, cm.num)
	}

	return result, order, nil
}

var verseSpanIDAttrRE = regexp.MustCompile(`id="ch-(\d+-v-[0-9-]+)"`)

// rewriteVerseIDs prepends "{lang}-{book_num:03}-" to every verse span id,
// producing a stable cross-document anchor.
func rewriteVerseIDs(docHTML, langCode, bookCode string) string {
	bookNum := model.BookNumber(bookCode)
	return verseSpanIDAttrRE.ReplaceAllString(docHTML, `id="`+langCode+`-`+zeroPad3Int(bookNum)+`-ch-$1"`)
}

func zeroPad3Int(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

var footnoteRefTagRE = regexp.MustCompile(`<a class="footnote-ref" href="(#[^"]+)">(.*?)</a>`)

// neuterFootnoteRefs replaces footnote reference <a> elements with inert
// <span> elements when the document is being assembled for print.
func neuterFootnoteRefs(docHTML string) string {
	return footnoteRefTagRE.ReplaceAllString(docHTML, `<span class="footnote-ref" data-ref="$1">$2</span>`)
}
