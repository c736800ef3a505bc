// SPDX-License-Identifier: Apache-2.0

// Package scripture implements the SCR resource parser: it
// synthesizes a unified markup representation from one or more on-disk
// files, converts it to HTML via a pluggable Converter, and extracts
// chapter/verse structure from the HTML with golang.org/x/net/html.
package scripture

import (
	"context"
	"fmt"

	"github.com/wkelly17/bibleassembler/pkg/apperrors"
	"github.com/wkelly17/bibleassembler/pkg/model"
	"github.com/wkelly17/bibleassembler/pkg/parsers/langdir"
)

// Options configures a single Parse call.
type Options struct {
	LangCode         string
	LangName         string
	BookCode         string
	BookName         string
	ResourceTypeName string
	Print            bool
	Converter        Converter
}

// Parse runs the full synthesize/convert/extract pipeline for one book and returns its
// normalized ScriptureBook.
func Parse(ctx context.Context, dir string, opts Options) (*model.ScriptureBook, error) {
	conv := opts.Converter
	if conv == nil {
		conv = BasicConverter
	}

	markup, err := Synthesize(dir, opts.BookCode, opts.BookName)
	if err != nil {
		return nil, apperrors.New(apperrors.MalformedAsset, opts.BookCode, err)
	}

	docHTML, err := conv(ctx, markup)
	if err != nil {
		return nil, apperrors.New(apperrors.MalformedAsset, opts.BookCode, fmt.Errorf("converting markup: %w", err))
	}

	chapters, order, err := Extract(docHTML, opts.LangCode, opts.BookCode, opts.Print)
	if err != nil {
		return nil, apperrors.New(apperrors.MalformedAsset, opts.BookCode, err)
	}
	if len(chapters) == 0 {
		return nil, apperrors.New(apperrors.MalformedAsset, opts.BookCode, fmt.Errorf("no chapters extracted"))
	}

	direction := langdir.Resolve(dir)

	return &model.ScriptureBook{
		LangCode:         opts.LangCode,
		LangName:         opts.LangName,
		LangDirection:    direction,
		BookCode:         opts.BookCode,
		ResourceTypeName: opts.ResourceTypeName,
		Chapters:         chapters,
		ChapterOrder:     order,
	}, nil
}
