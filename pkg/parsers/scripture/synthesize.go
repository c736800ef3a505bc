// SPDX-License-Identifier: Apache-2.0

package scripture

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/wkelly17/bibleassembler/pkg/parsers/fsutil"
)

// malformedChapterRE matches a \c marker that does not begin its own line —
// i.e. preceded on the same line by other text.
var malformedChapterRE = regexp.MustCompile(`([^\n])(\\c\s+\d+)`)

// repairMalformedChapterMarkers rescues malformed markup: any chapter
// marker not on its own line is split onto a new line and immediately
// followed by a paragraph marker, so the rescued markup always opens the
// new chapter's content with a fresh paragraph.
func repairMalformedChapterMarkers(markup string) string {
	return malformedChapterRE.ReplaceAllString(markup, "$1\n$2\n\\p")
}

// discoverSingleFile looks for a single whole-book markup file named after
// bookCode directly under dir (the common git-layout shape: one .usfm file
// per book).
func discoverSingleFile(dir, bookCode string) (string, bool) {
	candidates := []string{
		filepath.Join(dir, strings.ToUpper(bookCode)+".usfm"),
		filepath.Join(dir, bookCode+".usfm"),
		filepath.Join(dir, strings.ToUpper(bookCode)+".USFM"),
	}
	for _, c := range candidates {
		if data, err := os.ReadFile(c); err == nil {
			return string(data), true
		}
	}
	return "", false
}

// synthesizeFromChapterDirs handles the chapter-directory layout: directories are
// discovered, sorted numerically, and the verse files within each are
// concatenated in numeric order, each chapter prefixed with its own \c
// marker.
func synthesizeFromChapterDirs(dir string) (string, error) {
	chapterDirs, err := fsutil.NumericEntries(dir)
	if err != nil {
		return "", fmt.Errorf("scripture: discovering chapter directories: %w", err)
	}
	var sb strings.Builder
	for _, cdName := range chapterDirs {
		cNum, _ := strconv.Atoi(cdName)
		cdPath := filepath.Join(dir, cdName)
		verseFiles, err := fsutil.NumericEntries(cdPath)
		if err != nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n\\c %d\n", cNum))
		for _, vfName := range verseFiles {
			matches, _ := filepath.Glob(filepath.Join(cdPath, vfName+".*"))
			if len(matches) == 0 {
				continue
			}
			data, err := os.ReadFile(matches[0])
			if err != nil {
				continue
			}
			sb.Write(data)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// Synthesize produces the unified USFM-like markup for bookCode/bookName
// from dir: a single per-book file is used as-is (after
// malformed-marker repair); otherwise the parser synthesizes one from
// per-chapter, per-verse files and prepends the required header markers.
func Synthesize(dir, bookCode, bookName string) (string, error) {
	if raw, ok := discoverSingleFile(dir, bookCode); ok {
		if strings.Contains(raw, "\\id") {
			return repairMalformedChapterMarkers(raw), nil
		}
		header := headerMarkers(bookCode, bookName)
		return repairMalformedChapterMarkers(header + raw), nil
	}

	body, err := synthesizeFromChapterDirs(dir)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("scripture: no markup found for book %s under %s", bookCode, dir)
	}
	full := headerMarkers(bookCode, bookName) + body
	return repairMalformedChapterMarkers(full), nil
}

func headerMarkers(bookCode, bookName string) string {
	return fmt.Sprintf("\\id %s\n\\ide UTF-8\n\\h %s\n", strings.ToUpper(bookCode), bookName)
}
