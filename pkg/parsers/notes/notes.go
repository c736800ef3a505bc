// SPDX-License-Identifier: Apache-2.0

// Package notes implements the Notes (tn) resource parser.
package notes

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
	LangCode              string
	LangName              string
	BookCode              string
	BookName              string
	IncludeBookIntros     bool
	WrapWithVerseHeading  bool // prefixes each verse's HTML with a "<h4>Book C:V</h4>" heading; core.Generate passes false for every chunk size
	RemoveSections        map[string]bool
	Deps                  markup.Dependencies
}

// Parse locates a book's Notes tree under dir and returns its normalized
// NotesBook.
func Parse(dir string, opts Options) (*model.NotesBook, error) {
	root, ok := fsutil.ResolveBookRoot(dir, opts.BookCode)
	if !ok {
		return nil, apperrors.New(apperrors.MalformedAsset, opts.BookCode, fmt.Errorf("notes: book root not found for %s", opts.BookCode))
	}

	book := &model.NotesBook{
		LangCode:      opts.LangCode,
		LangName:      opts.LangName,
		LangDirection: langdir.Resolve(dir),
		BookCode:      opts.BookCode,
		Chapters:      map[int]*model.NotesChapter{},
	}

	if opts.IncludeBookIntros {
		if introPath, ok := fsutil.FirstExisting(root, "front/intro.md", "front/intro.txt"); ok {
			raw, err := os.ReadFile(introPath)
			if err == nil {
				html, err := textpipeline.Render(string(raw), opts.RemoveSections, markup.Context{
					LangCode: opts.LangCode, BookCode: opts.BookCode, BookName: opts.BookName,
				}, opts.Deps, headingremap.NotesBookIntro)
				if err == nil {
					book.BookIntro = html
				}
			}
		}
	}

	chapterDirs, err := fsutil.NumericEntries(root)
	if err != nil {
		return nil, apperrors.New(apperrors.MalformedAsset, opts.BookCode, err)
	}

	for _, cd := range chapterDirs {
		cNum, _ := strconv.Atoi(cd)
		cdPath := filepath.Join(root, cd)

		chapter := &model.NotesChapter{Verses: map[string]string{}}

		if introPath, ok := fsutil.FirstExisting(cdPath, "intro.md", "intro.txt"); ok {
			raw, err := os.ReadFile(introPath)
			if err == nil {
				html, err := textpipeline.Render(string(raw), opts.RemoveSections, markup.Context{
					LangCode: opts.LangCode, BookCode: opts.BookCode, BookName: opts.BookName, ChapterNum: cNum,
				}, opts.Deps, headingremap.ChapterIntro)
				if err == nil {
					anchorID := markup.NoteAnchorID(opts.LangCode, opts.BookCode, cNum, "intro")
					chapter.Intro = fmt.Sprintf(`<a id="%s"></a>`, anchorID) + html
				}
			}
		}

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
			anchorID := markup.NoteAnchorID(opts.LangCode, opts.BookCode, cNum, verseRef)
			html = fmt.Sprintf(`<a id="%s"></a>`, anchorID) + html
			chapter.Verses[verseRef] = html
			chapter.VerseOrder = append(chapter.VerseOrder, verseRef)
		}

		book.Chapters[cNum] = chapter
		book.ChapterOrder = append(book.ChapterOrder, cNum)
	}

	return book, nil
}
