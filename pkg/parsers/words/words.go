// SPDX-License-Identifier: Apache-2.0

// Package words implements the Words (tw) resource parser. Unlike
// the other kinds, Words is not book-scoped: it walks the whole resource
// tree for one word-per-file markup entries.
package words

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/wkelly17/bibleassembler/pkg/apperrors"
	"github.com/wkelly17/bibleassembler/pkg/markup"
	"github.com/wkelly17/bibleassembler/pkg/model"
	"github.com/wkelly17/bibleassembler/pkg/parsers/headingremap"
	"github.com/wkelly17/bibleassembler/pkg/parsers/langdir"
	"github.com/wkelly17/bibleassembler/pkg/parsers/textpipeline"
)

// Options configures a single Parse call.
type Options struct {
	LangCode       string
	RemoveSections map[string]bool
	Deps           markup.Dependencies
}

var firstHeadingRE = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)

// Parse walks dir for word markup files and returns the normalized
// WordsBook, sorted by localized word. WordsBook carries no word uses:
// those are accumulated separately by the assembly pass.
func Parse(dir string, opts Options) (*model.WordsBook, error) {
	root, ok := locateBibleRoot(dir)
	if !ok {
		return nil, apperrors.New(apperrors.MalformedAsset, "", fmt.Errorf("words: no bible/ tree found under %s", dir))
	}

	var entries []model.WordEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		word := extractLocalizedWord(string(raw), path)
		html, err := textpipeline.Render(string(raw), opts.RemoveSections, markup.Context{
			LangCode: opts.LangCode,
		}, opts.Deps, headingremap.Words)
		if err != nil {
			return nil
		}
		entries = append(entries, model.WordEntry{LocalizedWord: word, Definition: html})
		return nil
	})
	if err != nil {
		return nil, apperrors.New(apperrors.MalformedAsset, "", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].LocalizedWord < entries[j].LocalizedWord })

	return &model.WordsBook{
		LangCode: opts.LangCode,
		Entries:  entries,
	}, nil
}

func extractLocalizedWord(raw, path string) string {
	if m := firstHeadingRE.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func locateBibleRoot(dir string) (string, bool) {
	candidates := []string{filepath.Join(dir, "bible")}
	matches, _ := filepath.Glob(filepath.Join(dir, "*", "bible"))
	candidates = append(candidates, matches...)
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// Direction resolves the word list's own directory's language direction,
// exposed separately since WordsBook carries no LangDirection field (it is
// assembled alongside scripture/notes in the same language and uses
// theirs).
func Direction(dir string) string {
	return string(langdir.Resolve(dir))
}
