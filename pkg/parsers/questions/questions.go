// SPDX-License-Identifier: Apache-2.0

// Package questions implements the Questions (tq) resource parser.
// It has the same directory shape as Notes but never carries book
// or chapter intros.
package questions

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

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
	LangCode             string
	LangName             string
	BookCode             string
	BookName             string
	WrapWithVerseHeading bool
	RemoveSections       map[string]bool
	Deps                 markup.Dependencies
}

// Parse locates a book's Questions tree under dir and returns its
// normalized QuestionsBook.
func Parse(dir string, opts Options) (*model.QuestionsBook, error) {
	root, ok := fsutil.ResolveBookRoot(dir, opts.BookCode)
	if !ok {
		return nil, apperrors.New(apperrors.MalformedAsset, opts.BookCode, fmt.Errorf("questions: book root not found for %s", opts.BookCode))
	}

	book := &model.QuestionsBook{
		LangCode:      opts.LangCode,
		LangName:      opts.LangName,
		LangDirection: langdir.Resolve(dir),
		BookCode:      opts.BookCode,
		Chapters:      map[int]*model.QuestionsChapter{},
	}

	chapterDirs, err := fsutil.NumericEntries(root)
	if err != nil {
		return nil, apperrors.New(apperrors.MalformedAsset, opts.BookCode, err)
	}

	for _, cd := range chapterDirs {
		cNum, _ := strconv.Atoi(cd)
		cdPath := filepath.Join(root, cd)

		chapter := &model.QuestionsChapter{Verses: map[string]string{}}

		verseFiles, err := fsutil.NumericEntries(cdPath)
		if err != nil {
			continue
		}
		for _, vf := range verseFiles {
			matches, _ := filepath.Glob(filepath.Join(cdPath, vf+".*"))
			if len(matches) == 0 {
				continue
			}
			raw, err := os.ReadFile(matches[0])
			if err != nil {
				continue
			}
			verseRef := strings.TrimLeft(vf, "0")
			if verseRef == "" {
				verseRef = "0"
			}
			html, err := textpipeline.Render(string(raw), opts.RemoveSections, markup.Context{
				LangCode: opts.LangCode, BookCode: opts.BookCode, BookName: opts.BookName,
				ChapterNum: cNum, VerseRef: verseRef,
			}, opts.Deps, headingremap.PerVerse)
			if err != nil {
				continue
			}
			if opts.WrapWithVerseHeading {
				html = fmt.Sprintf("<h4>%s %d:%s</h4>%s", opts.BookName, cNum, verseRef, html)
			}
			chapter.Verses[verseRef] = html
			chapter.VerseOrder = append(chapter.VerseOrder, verseRef)
		}

		book.Chapters[cNum] = chapter
		book.ChapterOrder = append(book.ChapterOrder, cNum)
	}

	return book, nil
}
