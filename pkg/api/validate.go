// SPDX-License-Identifier: Apache-2.0

package api

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/wkelly17/bibleassembler/pkg/model"
)

// ValidateDocumentRequest performs the validation rules: failure of
// any rule rejects the request and the core never runs. On success the
// request's AssemblyLayoutKind is filled in if it was left empty.
func ValidateDocumentRequest(req *DocumentRequest) error {
	var errs *multierror.Error

	if req == nil {
		return fmt.Errorf("document request must not be nil")
	}
	if len(req.ResourceRequests) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("resource_requests must contain at least one entry"))
	}
	for i, rr := range req.ResourceRequests {
		if rr.LangCode == "" {
			errs = multierror.Append(errs, fmt.Errorf("resource_requests[%d]: lang_code must not be empty", i))
		}
		if rr.ResourceType == "" {
			errs = multierror.Append(errs, fmt.Errorf("resource_requests[%d]: resource_type must not be empty", i))
		}
		if rr.BookCode == "" {
			errs = multierror.Append(errs, fmt.Errorf("resource_requests[%d]: book_code must not be empty", i))
		} else if !model.IsCanonicalBook(rr.BookCode) {
			errs = multierror.Append(errs, fmt.Errorf("resource_requests[%d]: book_code %q is not one of the 66 canonical books", i, rr.BookCode))
		}
	}
	if req.AssemblyStrategyKind != LanguageBookOrder && req.AssemblyStrategyKind != BookLanguageOrder {
		errs = multierror.Append(errs, fmt.Errorf("assembly_strategy_kind must be LANGUAGE_BOOK_ORDER or BOOK_LANGUAGE_ORDER, got %q", req.AssemblyStrategyKind))
	}

	// Rule 1: print ⇒ neither epub nor docx.
	if req.LayoutForPrint && (req.GenerateEpub || req.GenerateDocx) {
		errs = multierror.Append(errs, fmt.Errorf("layout_for_print=true is incompatible with generate_epub or generate_docx"))
	}

	if req.AssemblyLayoutKind == TwoColumnScriptureLeftRight || req.AssemblyLayoutKind == TwoColumnScriptureLeftRightCompact {
		// Rule 2: two-column SL/SR requires book-then-language ordering.
		if req.AssemblyStrategyKind != BookLanguageOrder {
			errs = multierror.Append(errs, fmt.Errorf("%s requires assembly_strategy_kind=BOOK_LANGUAGE_ORDER", req.AssemblyLayoutKind))
		}
		scriptureLangs := distinctScriptureLangs(req.ResourceRequests)
		// Rule 3: non-zero, even number of distinct scripture languages.
		if len(scriptureLangs) == 0 || len(scriptureLangs)%2 != 0 {
			errs = multierror.Append(errs, fmt.Errorf("%s requires a non-zero, even number of distinct scripture languages, got %d", req.AssemblyLayoutKind, len(scriptureLangs)))
		}
		// Rule 4: book sets per scripture language must be pairwise equal.
		if !equalBookSetsPerLanguage(req.ResourceRequests, scriptureLangs) {
			errs = multierror.Append(errs, fmt.Errorf("%s requires identical book_code sets across all scripture languages", req.AssemblyLayoutKind))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	if req.AssemblyLayoutKind == "" {
		req.AssemblyLayoutKind = defaultLayout(req)
	}
	return nil
}

// defaultLayout implements the layout defaulting rules, applied only after
// validation has passed.
func defaultLayout(req *DocumentRequest) AssemblyLayoutKind {
	switch {
	case req.LayoutForPrint && req.AssemblyStrategyKind == LanguageBookOrder:
		return OneColumnCompact
	case !req.LayoutForPrint && req.AssemblyStrategyKind == LanguageBookOrder:
		return OneColumn
	case !req.LayoutForPrint && req.AssemblyStrategyKind == BookLanguageOrder:
		return TwoColumnScriptureLeftRight
	default:
		return OneColumn
	}
}

func distinctScriptureLangs(rrs []ResourceRequest) []string {
	seen := map[string]bool{}
	var langs []string
	for _, rr := range rrs {
		if rr.ResourceType == ResourceScripture && !seen[rr.LangCode] {
			seen[rr.LangCode] = true
			langs = append(langs, rr.LangCode)
		}
	}
	return langs
}

func equalBookSetsPerLanguage(rrs []ResourceRequest, scriptureLangs []string) bool {
	if len(scriptureLangs) < 2 {
		return true
	}
	booksByLang := map[string]map[string]bool{}
	for _, rr := range rrs {
		if rr.ResourceType != ResourceScripture {
			continue
		}
		if booksByLang[rr.LangCode] == nil {
			booksByLang[rr.LangCode] = map[string]bool{}
		}
		booksByLang[rr.LangCode][rr.BookCode] = true
	}
	first := booksByLang[scriptureLangs[0]]
	for _, lang := range scriptureLangs[1:] {
		other := booksByLang[lang]
		if len(other) != len(first) {
			return false
		}
		for b := range first {
			if !other[b] {
				return false
			}
		}
	}
	return true
}
