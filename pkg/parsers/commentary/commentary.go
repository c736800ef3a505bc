// SPDX-License-Identifier: Apache-2.0

// Package commentary implements the Commentary (bc) resource parser:
// one markup file per chapter (no per-verse content), a
// chapter-1 " Commentary" title suffix, and link rewriting of intra-
// document article references to absolute external URLs.
package commentary

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/wkelly17/bibleassembler/pkg/apperrors"
	"github.com/wkelly17/bibleassembler/pkg/markup"
	"github.com/wkelly17/bibleassembler/pkg/model"
	"github.com/wkelly17/bibleassembler/pkg/parsers/fsutil"
	"github.com/wkelly17/bibleassembler/pkg/parsers/headingremap"
	"github.com/wkelly17/bibleassembler/pkg/parsers/langdir"
	"github.com/wkelly17/bibleassembler/pkg/parsers/textpipeline"
)

// Options configures a single Parse call.
type Options struct {
	LangCode          string
	LangName          string
	BookCode          string
	BookName          string
	IncludeBookIntros bool
	RemoveSections    map[string]bool
	Deps              markup.Dependencies
	// ArticleURLFormat is an fmt format string with three %s verbs (lang
	// code, book code, chapter number) used to rewrite intra-document
	// commentary links into absolute URLs. Defaults to
	// defaultArticleURLFormat when empty.
	ArticleURLFormat string
}

const defaultArticleURLFormat = "https://git.door43.org/unfoldingWord/en_bc/raw/branch/master/%s/%s/%s.md"

var firstH1RE = regexp.MustCompile(`(?m)^# (.+)$`)
var commentaryLinkRE = regexp.MustCompile(`\]\(\.\./([a-z0-9]+)/(\d+)\.md\)`)

// Parse locates a book's Commentary tree under dir and returns its
// normalized CommentaryBook.
func Parse(dir string, opts Options) (*model.CommentaryBook, error) {
	root, ok := fsutil.ResolveBookRoot(dir, opts.BookCode)
	if !ok {
		return nil, apperrors.New(apperrors.MalformedAsset, opts.BookCode, fmt.Errorf("commentary: book root not found for %s", opts.BookCode))
	}

	format := opts.ArticleURLFormat
	if format == "" {
		format = defaultArticleURLFormat
	}

	book := &model.CommentaryBook{
		LangCode:      opts.LangCode,
		LangName:      opts.LangName,
		LangDirection: langdir.Resolve(dir),
		BookCode:      opts.BookCode,
		Chapters:      map[int]*model.CommentaryChapter{},
	}

	if opts.IncludeBookIntros {
		if introPath, ok := fsutil.FirstExisting(root, "front/intro.md", "front/intro.txt"); ok {
			raw, err := os.ReadFile(introPath)
			if err == nil {
				html, err := textpipeline.Render(string(raw), opts.RemoveSections, markup.Context{
					LangCode: opts.LangCode, BookCode: opts.BookCode, BookName: opts.BookName,
				}, opts.Deps, headingremap.ChapterIntro)
				if err == nil {
					book.BookIntro = html
				}
			}
		}
	}

	chapterFiles, err := fsutil.NumericEntries(root)
	if err != nil {
		return nil, apperrors.New(apperrors.MalformedAsset, opts.BookCode, err)
	}

	for _, cf := range chapterFiles {
		cNum, _ := strconv.Atoi(cf)
		matches, _ := filepath.Glob(filepath.Join(root, cf+".*"))
		if len(matches) == 0 {
			continue
		}
		raw, err := os.ReadFile(matches[0])
		if err != nil {
			continue
		}
		src := string(raw)
		if cNum == 1 {
			src = firstH1RE.ReplaceAllString(src, "# $1 Commentary")
		}
		src = rewriteArticleLinks(src, format, opts.LangCode, opts.BookCode)

		html, err := textpipeline.Render(src, opts.RemoveSections, markup.Context{
			LangCode: opts.LangCode, BookCode: opts.BookCode, BookName: opts.BookName, ChapterNum: cNum,
		}, opts.Deps, headingremap.ChapterIntro)
		if err != nil {
			continue
		}

		book.Chapters[cNum] = &model.CommentaryChapter{HTML: html}
		book.ChapterOrder = append(book.ChapterOrder, cNum)
	}

	return book, nil
}

func rewriteArticleLinks(src, format, lang, bookCode string) string {
	return commentaryLinkRE.ReplaceAllStringFunc(src, func(m string) string {
		g := commentaryLinkRE.FindStringSubmatch(m)
		book, chapter := g[1], g[2]
		return fmt.Sprintf("](%s)", fmt.Sprintf(format, lang, book, chapter))
	})
}
