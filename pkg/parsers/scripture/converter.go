// SPDX-License-Identifier: Apache-2.0

package scripture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Converter turns synthesized USFM-like markup into the HTML shape that
// htmlextract.go expects: chapter boundaries as `<h2 class="c-num"
// id="c-N">`, verse markers as `<span class="v-num" id="ch-NNN-v-
// MMM">` spans holding the verse number, and an optional `<div class="footnotes">` per chapter. See
// this design for why this is injected rather than hardcoded.
type Converter func(ctx context.Context, usfm string) (string, error)

// ExecConverter shells out to an external markup→HTML converter binary,
// piping usfm on stdin and reading HTML from stdout.
func ExecConverter(binPath string, args ...string) Converter {
	return func(ctx context.Context, usfm string) (string, error) {
		cmd := exec.CommandContext(ctx, binPath, args...)
		cmd.Stdin = strings.NewReader(usfm)
		var out, errBuf bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &errBuf
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("scripture: external converter %s: %w: %s", binPath, err, errBuf.String())
		}
		return out.String(), nil
	}
}

var (
	chapterMarkerRE = regexp.MustCompile(`\\c\s+(\d+)`)
	verseMarkerRE   = regexp.MustCompile(`\\v\s+(\d+(?:-\d+)?)\s*`)
	headingRE       = regexp.MustCompile(`\\s\d?\s+([^\n\\]+)`)
	footnoteRE      = regexp.MustCompile(`\\f\s*\+?\s*(.*?)\\f\*`)
	headerLineRE    = regexp.MustCompile(`\\(id|ide|h)\b[^\n]*\n?`)
	paragraphRE     = regexp.MustCompile(`\\p\b\s*`)
)

// BasicConverter is a minimal in-process USFM→HTML converter used as a
// fallback when no external binary is configured, and for tests. It
// understands \id/\ide/\h headers, \c chapter markers, \v verse markers
// (including bridged ranges "N-M"), \s section headings, \p paragraph
// breaks, and \f ... \f* footnote pairs.
func BasicConverter(ctx context.Context, usfm string) (string, error) {
	body := headerLineRE.ReplaceAllString(usfm, "")

	var sb strings.Builder
	var footnotes strings.Builder
	footnoteN := 0
	chapterNum := 0

	flushFootnotes := func() {
		if footnotes.Len() > 0 {
			sb.WriteString(`<div class="footnotes">`)
			sb.WriteString(footnotes.String())
			sb.WriteString(`</div>`)
			footnotes.Reset()
			footnoteN = 0
		}
	}

	lines := strings.Split(body, "\n")
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if m := chapterMarkerRE.FindStringSubmatch(line); m != nil && strings.TrimSpace(line) == m[0] {
			flushFootnotes()
			chapterNum, _ = strconv.Atoi(m[1])
			sb.WriteString(fmt.Sprintf(`<h2 class="c-num" id="c-%d">%d</h2>`, chapterNum, chapterNum))
			continue
		}
		if m := headingRE.FindStringSubmatch(line); m != nil {
			sb.WriteString(fmt.Sprintf(`<h3 class="s-head">%s</h3>`, strings.TrimSpace(m[1])))
			continue
		}
		line = paragraphRE.ReplaceAllString(line, `<br/>`)

		line = footnoteRE.ReplaceAllStringFunc(line, func(m string) string {
			sub := footnoteRE.FindStringSubmatch(m)
			footnoteN++
			id := fmt.Sprintf("fn-%d-%d", chapterNum, footnoteN)
			footnotes.WriteString(fmt.Sprintf(`<p id="%s">[%d] %s</p>`, id, footnoteN, sub[1]))
			return fmt.Sprintf(`<a class="footnote-ref" href="#%s">[%d]</a>`, id, footnoteN)
		})

		line = verseMarkerRE.ReplaceAllStringFunc(line, func(m string) string {
			sub := verseMarkerRE.FindStringSubmatch(m)
			id := verseSpanID(chapterNum, sub[1])
			return fmt.Sprintf(`<span class="v-num" id="%s">%s</span>`, id, sub[1])
		})
		sb.WriteString(line)
	}
	flushFootnotes()
	return sb.String(), nil
}

// verseSpanID renders the pre-language-prefix verse span id. The caller
// (rewriteVerseIDs) prepends "{lang}-{book_num:03}-" to produce the final
// stable anchor: id="{lang}-{book_num:03}-ch-{ch:03}-v-{vs:03}".
func verseSpanID(chapter int, verseRef string) string {
	return fmt.Sprintf("ch-%03d-v-%s", chapter, zeroPadRef(verseRef))
}

// zeroPadRef zero-pads each numeric component of a verse ref ("7" or
// "7-9") to three digits, preserving range hyphens.
func zeroPadRef(ref string) string {
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
