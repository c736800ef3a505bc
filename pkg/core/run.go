// SPDX-License-Identifier: Apache-2.0

// Package core implements the top-level generation orchestration: given a
// validated api.DocumentRequest, it resolves every requested resource
// against the Catalog, provisions it to disk, parses it, runs the
// Assembly Engine and Word-Definitions Appender, and writes the final
// document. Concurrency within each pass is delegated to pkg/jobs, a
// generic Job/WorkQueue abstraction also used to drive --watch mode.
package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"k8s.io/klog/v2"

	"github.com/wkelly17/bibleassembler/pkg/api"
	"github.com/wkelly17/bibleassembler/pkg/apperrors"
	"github.com/wkelly17/bibleassembler/pkg/assembly"
	"github.com/wkelly17/bibleassembler/pkg/catalog"
	"github.com/wkelly17/bibleassembler/pkg/document"
	"github.com/wkelly17/bibleassembler/pkg/jobs"
	"github.com/wkelly17/bibleassembler/pkg/markup"
	"github.com/wkelly17/bibleassembler/pkg/model"
	"github.com/wkelly17/bibleassembler/pkg/parsers/commentary"
	"github.com/wkelly17/bibleassembler/pkg/parsers/fsutil"
	"github.com/wkelly17/bibleassembler/pkg/parsers/notes"
	"github.com/wkelly17/bibleassembler/pkg/parsers/questions"
	"github.com/wkelly17/bibleassembler/pkg/parsers/scripture"
	"github.com/wkelly17/bibleassembler/pkg/parsers/words"
	"github.com/wkelly17/bibleassembler/pkg/provisioner"
	"github.com/wkelly17/bibleassembler/pkg/worddefs"
)

// Options configures a single Generate call.
type Options struct {
	OutputDir  string
	Workers    int
	FailFast   bool
	NowUnix    int64
	Title      string
}

// Outcome is the result of successfully generating a document.
type Outcome struct {
	DocumentKey string
	Statuses    []apperrors.ResourceStatus
	Orphans     []apperrors.ResourceStatus
}

// bookCell accumulates every resource kind parsed for one (lang, book)
// pair, filled in across the fan-out passes before being handed to the
// Assembly Engine as an assembly.Cell. Its fields are written concurrently
// by secondPassWorker.Work for distinct resource requests that resolve to
// the same (lang, book), so every write goes through mu.
type bookCell struct {
	langCode, langName string
	bookCode, bookName string

	mu         sync.Mutex
	scriptures []scriptureEntry
	notes      *model.NotesBook
	questions  *model.QuestionsBook
	commentary *model.CommentaryBook
}

// scriptureEntry pairs a parsed ScriptureBook with the position its
// ResourceRequest held in the request's ResourceRequests slice, so two
// Scripture resources resolving to the same (lang, book) — e.g. a ULB and
// a UDB for the same book — can be ordered deterministically regardless of
// which parse finishes first.
type scriptureEntry struct {
	order int
	book  *model.ScriptureBook
}

func (c *bookCell) addScripture(order int, book *model.ScriptureBook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scriptures = append(c.scriptures, scriptureEntry{order: order, book: book})
}

// primaryAndSecondary returns the request-order-first Scripture book as
// primary and the second (if any) as secondary. A third or later Scripture
// resource for the same (lang, book) has no assembly slot and is dropped.
func (c *bookCell) primaryAndSecondary() (primary, secondary *model.ScriptureBook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sort.Slice(c.scriptures, func(i, j int) bool { return c.scriptures[i].order < c.scriptures[j].order })
	if len(c.scriptures) > 0 {
		primary = c.scriptures[0].book
	}
	if len(c.scriptures) > 1 {
		secondary = c.scriptures[1].book
	}
	return primary, secondary
}

func (c *bookCell) setNotes(b *model.NotesBook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = b
}

func (c *bookCell) setQuestions(b *model.QuestionsBook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.questions = b
}

func (c *bookCell) setCommentary(b *model.CommentaryBook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commentary = b
}

func (c *bookCell) snapshot() (notes *model.NotesBook, questions *model.QuestionsBook, commentary *model.CommentaryBook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notes, c.questions, c.commentary
}

// Generate runs the full generation pipeline for a validated request. Callers must
// have already run api.ValidateDocumentRequest on req.
func Generate(ctx context.Context, req *api.DocumentRequest, cat *catalog.Catalog, prov *provisioner.Provisioner, opts Options) (*Outcome, error) {
	langNames := map[string]string{}
	for _, l := range cat.Languages() {
		langNames[l.LangCode] = l.LangName
	}

	statuses := &statusSink{}

	// Pass 1: every requested Words resource, so KnownWord/WordsRequested
	// can be answered before any link rewriting of Notes/Questions/
	// Commentary content begins.
	wordsBooks := runWordsPass(ctx, req, cat, prov, opts, statuses)

	wordsRequested := map[string]bool{}
	for _, rr := range req.ResourceRequests {
		if rr.ResourceType == api.ResourceWords {
			wordsRequested[rr.LangCode] = true
		}
	}
	knownWord := func(lang, word string) bool {
		book := wordsBooks[lang]
		if book == nil {
			return false
		}
		for _, e := range book.Entries {
			if e.LocalizedWord == word {
				return true
			}
		}
		return false
	}

	hasScripture := map[string]bool{}
	for _, rr := range req.ResourceRequests {
		if rr.ResourceType == api.ResourceScripture {
			hasScripture[rr.LangCode] = true
		}
	}

	// Pass 2: every other resource kind, fanned out together; each parsed
	// result is folded into the (lang, book) cell it belongs to.
	cellsMu := sync.Mutex{}
	cells := map[string]*bookCell{}
	cellFor := func(rr api.ResourceRequest) *bookCell {
		cellsMu.Lock()
		defer cellsMu.Unlock()
		key := rr.LangCode + "/" + rr.BookCode
		c, ok := cells[key]
		if !ok {
			c = &bookCell{
				langCode: rr.LangCode,
				langName: langNames[rr.LangCode],
				bookCode: rr.BookCode,
				bookName: model.BookName(rr.BookCode),
			}
			cells[key] = c
		}
		return c
	}

	notesDirsMu := sync.Mutex{}
	notesDirs := map[string]string{}
	noteAssetExists := func(lang, book string, chapter int, verse string) bool {
		notesDirsMu.Lock()
		dir, ok := notesDirs[lang]
		notesDirsMu.Unlock()
		if !ok {
			return false
		}
		return noteVerseFileExists(dir, book, chapter, verse)
	}

	worker := &secondPassWorker{
		cat: cat, prov: prov, statuses: statuses,
		wordsRequested: wordsRequested, knownWord: knownWord, noteAssetExists: noteAssetExists,
		langNames: langNames, cellFor: cellFor,
		notesDirsMu: &notesDirsMu, notesDirs: notesDirs,
		print: req.LayoutForPrint,
	}

	var tasks []interface{}
	for i, rr := range req.ResourceRequests {
		if rr.ResourceType == api.ResourceWords {
			continue
		}
		tasks = append(tasks, secondPassTask{rr: rr, order: i})
	}

	job := &jobs.Job{
		ID:         "fetch-parse",
		MinWorkers: 0,
		MaxWorkers: workerCount(opts.Workers, len(tasks)),
		Worker:     worker,
		FailFast:   opts.FailFast,
		Queue:      jobs.NewWorkQueue(len(tasks) + 1),
	}
	if werr := job.Dispatch(ctx, tasks); werr != nil {
		return nil, fmt.Errorf("core: fetch/parse pass: %w", werr)
	}

	// Build assembly.Cells from the accumulated bookCells.
	var assemblyCells []*assembly.Cell
	for _, c := range cells {
		primary, secondary := c.primaryAndSecondary()
		notesBook, questionsBook, commentaryBook := c.snapshot()
		if primary == nil && notesBook == nil && questionsBook == nil && commentaryBook == nil {
			continue
		}
		assemblyCells = append(assemblyCells, &assembly.Cell{
			LangCode:           c.langCode,
			LangName:           c.langName,
			LangDirection:      cellDirection(primary, notesBook, questionsBook, commentaryBook),
			BookCode:           c.bookCode,
			BookName:           c.bookName,
			Scripture:          primary,
			SecondaryScripture: secondary,
			Notes:              notesBook,
			Questions:          questionsBook,
			Commentary:         commentaryBook,
		})
	}

	result, err := assembly.Assemble(assembly.Request{
		Cells:     assemblyCells,
		Words:     wordsBooks,
		Strategy:  req.AssemblyStrategyKind,
		Layout:    req.AssemblyLayoutKind,
		ChunkSize: req.EffectiveChunkSize(),
		Print:     req.LayoutForPrint,
	})
	if err != nil {
		return nil, fmt.Errorf("core: assembly: %w", err)
	}

	langOrder := languageOrder(req)
	wordDefFragments := worddefs.RenderAll(langOrder, wordsBooks, result.WordUses, hasScripture)

	title := opts.Title
	if title == "" {
		title = defaultTitle(req)
	}

	key, err := document.Write(opts.OutputDir, *req, title, result.BodyFragments, wordDefFragments, opts.NowUnix)
	if err != nil {
		return nil, apperrors.New(apperrors.IOFatal, "", err)
	}

	return &Outcome{
		DocumentKey: key,
		Statuses:    statuses.list(),
		Orphans:     result.Orphans,
	}, nil
}

func workerCount(configured, tasks int) int {
	if configured <= 0 {
		configured = 4
	}
	if tasks == 0 {
		return 0
	}
	if configured > tasks {
		return tasks
	}
	return configured
}

func cellDirection(primary *model.ScriptureBook, notes *model.NotesBook, questions *model.QuestionsBook, commentary *model.CommentaryBook) model.Direction {
	switch {
	case primary != nil:
		return primary.LangDirection
	case notes != nil:
		return notes.LangDirection
	case questions != nil:
		return questions.LangDirection
	case commentary != nil:
		return commentary.LangDirection
	default:
		return model.LTR
	}
}

func languageOrder(req *api.DocumentRequest) []string {
	seen := map[string]bool{}
	var order []string
	for _, rr := range req.ResourceRequests {
		if !seen[rr.LangCode] {
			seen[rr.LangCode] = true
			order = append(order, rr.LangCode)
		}
	}
	sort.Strings(order)
	return order
}

func defaultTitle(req *api.DocumentRequest) string {
	books := map[string]bool{}
	for _, rr := range req.ResourceRequests {
		books[rr.BookCode] = true
	}
	var names []string
	for b := range books {
		names = append(names, model.BookName(b))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// statusSink collects apperrors.ResourceStatus records concurrently.
type statusSink struct {
	mu   sync.Mutex
	recs []apperrors.ResourceStatus
}

func (s *statusSink) record(rec apperrors.ResourceStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
}

func (s *statusSink) list() []apperrors.ResourceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]apperrors.ResourceStatus(nil), s.recs...)
}

func resourceKey(rr api.ResourceRequest) string {
	return fmt.Sprintf("%s/%s/%s", rr.LangCode, rr.ResourceType, rr.BookCode)
}

// runWordsPass resolves, provisions, and parses every requested Words
// resource, one per distinct language, before the second pass begins.
func runWordsPass(ctx context.Context, req *api.DocumentRequest, cat *catalog.Catalog, prov *provisioner.Provisioner, opts Options, statuses *statusSink) map[string]*model.WordsBook {
	var langs []string
	seen := map[string]bool{}
	for _, rr := range req.ResourceRequests {
		if rr.ResourceType == api.ResourceWords && !seen[rr.LangCode] {
			seen[rr.LangCode] = true
			langs = append(langs, rr.LangCode)
		}
	}

	books := map[string]*model.WordsBook{}
	if len(langs) == 0 {
		return books
	}

	var mu sync.Mutex
	worker := jobs.WorkerFunc(func(ctx context.Context, task interface{}, _ jobs.WorkQueue) *jobs.WorkerError {
		lang := task.(string)
		rr := api.ResourceRequest{LangCode: lang, ResourceType: api.ResourceWords, BookCode: ""}
		loc, err := cat.Resolve(lang, string(api.ResourceWords), "")
		if err != nil {
			return jobs.NewWorkerError(err, 0)
		}
		if !loc.Found() {
			statuses.record(apperrors.ResourceStatus{LangCode: lang, ResourceType: string(api.ResourceWords), Found: false,
				Err: apperrors.New(apperrors.CatalogMiss, resourceKey(rr), fmt.Errorf("words resource not found for %s", lang))})
			return nil
		}
		dir, err := prov.Provision(ctx, lang, string(api.ResourceWords), loc)
		if err != nil {
			statuses.record(apperrors.ResourceStatus{LangCode: lang, ResourceType: string(api.ResourceWords), Found: false,
				Err: apperrors.New(apperrors.ProvisionFailure, resourceKey(rr), err)})
			return nil
		}
		book, err := words.Parse(dir, words.Options{LangCode: lang})
		if err != nil {
			var ae *apperrors.Error
			if errors.As(err, &ae) && ae.Kind.Recoverable() {
				statuses.record(apperrors.ResourceStatus{LangCode: lang, ResourceType: string(api.ResourceWords), Found: false, Err: ae})
				return nil
			}
			return jobs.NewWorkerError(err, 0)
		}
		mu.Lock()
		books[lang] = book
		mu.Unlock()
		statuses.record(apperrors.ResourceStatus{LangCode: lang, ResourceType: string(api.ResourceWords), Found: true})
		return nil
	})

	job := &jobs.Job{
		ID: "words-pass", MinWorkers: 0, MaxWorkers: workerCount(opts.Workers, len(langs)),
		Worker: worker, FailFast: opts.FailFast, Queue: jobs.NewWorkQueue(len(langs) + 1),
	}
	tasks := make([]interface{}, len(langs))
	for i, l := range langs {
		tasks[i] = l
	}
	if werr := job.Dispatch(ctx, tasks); werr != nil {
		klog.Errorf("words pass: %v", werr)
	}
	return books
}

// secondPassWorker resolves, provisions, and parses one Scripture/Notes/
// Questions/Commentary resource request and folds the result into its
// (lang, book) bookCell.
type secondPassWorker struct {
	cat             *catalog.Catalog
	prov            *provisioner.Provisioner
	statuses        *statusSink
	wordsRequested  map[string]bool
	knownWord       func(lang, word string) bool
	noteAssetExists func(lang, book string, chapter int, verse string) bool
	langNames       map[string]string
	cellFor         func(api.ResourceRequest) *bookCell
	notesDirsMu     *sync.Mutex
	notesDirs       map[string]string
	print           bool
}

// secondPassTask pairs a resource request with the index it held in the
// original DocumentRequest, used to order same-(lang,book) Scripture
// resources deterministically once both have parsed.
type secondPassTask struct {
	rr    api.ResourceRequest
	order int
}

func (w *secondPassWorker) Work(ctx context.Context, task interface{}, _ jobs.WorkQueue) *jobs.WorkerError {
	t := task.(secondPassTask)
	rr := t.rr

	loc, err := w.cat.Resolve(rr.LangCode, string(rr.ResourceType), rr.BookCode)
	if err != nil {
		return jobs.NewWorkerError(err, 0)
	}
	if !loc.Found() {
		w.statuses.record(apperrors.ResourceStatus{LangCode: rr.LangCode, ResourceType: string(rr.ResourceType), BookCode: rr.BookCode,
			Found: false, Err: apperrors.New(apperrors.CatalogMiss, resourceKey(rr), fmt.Errorf("not found in catalog"))})
		return nil
	}
	dir, err := w.prov.Provision(ctx, rr.LangCode, string(rr.ResourceType), loc)
	if err != nil {
		w.statuses.record(apperrors.ResourceStatus{LangCode: rr.LangCode, ResourceType: string(rr.ResourceType), BookCode: rr.BookCode,
			Found: false, Err: apperrors.New(apperrors.ProvisionFailure, resourceKey(rr), err)})
		return nil
	}
	if rr.ResourceType == api.ResourceNotes {
		w.notesDirsMu.Lock()
		w.notesDirs[rr.LangCode] = dir
		w.notesDirsMu.Unlock()
	}

	bookName := model.BookName(rr.BookCode)
	deps := markup.Dependencies{
		KnownWord:       w.knownWord,
		WordsRequested:  func(lang string) bool { return w.wordsRequested[lang] },
		NoteAssetExists: w.noteAssetExists,
	}

	var perr error
	c := w.cellFor(rr)

	switch rr.ResourceType {
	case api.ResourceScripture:
		book, e := scripture.Parse(ctx, dir, scripture.Options{
			LangCode: rr.LangCode, LangName: w.langNames[rr.LangCode],
			BookCode: rr.BookCode, BookName: bookName,
			ResourceTypeName: loc.ResourceTypeName, Print: w.print,
		})
		if e == nil {
			c.addScripture(t.order, book)
		}
		perr = e
	case api.ResourceNotes:
		book, e := notes.Parse(dir, notes.Options{
			LangCode: rr.LangCode, LangName: w.langNames[rr.LangCode],
			BookCode: rr.BookCode, BookName: bookName,
			IncludeBookIntros: true, WrapWithVerseHeading: false,
			Deps: deps,
		})
		if e == nil {
			c.setNotes(book)
		}
		perr = e
	case api.ResourceQuestions:
		book, e := questions.Parse(dir, questions.Options{
			LangCode: rr.LangCode, LangName: w.langNames[rr.LangCode],
			BookCode: rr.BookCode, BookName: bookName,
			Deps: deps,
		})
		if e == nil {
			c.setQuestions(book)
		}
		perr = e
	case api.ResourceCommentary:
		book, e := commentary.Parse(dir, commentary.Options{
			LangCode: rr.LangCode, LangName: w.langNames[rr.LangCode],
			BookCode: rr.BookCode, BookName: bookName,
			IncludeBookIntros: true, Deps: deps,
		})
		if e == nil {
			c.setCommentary(book)
		}
		perr = e
	default:
		perr = fmt.Errorf("unsupported resource type %q", rr.ResourceType)
	}

	if perr != nil {
		var ae *apperrors.Error
		if errors.As(perr, &ae) && ae.Kind.Recoverable() {
			w.statuses.record(apperrors.ResourceStatus{LangCode: rr.LangCode, ResourceType: string(rr.ResourceType), BookCode: rr.BookCode,
				Found: false, Err: ae})
			return nil
		}
		return jobs.NewWorkerError(perr, 0)
	}

	w.statuses.record(apperrors.ResourceStatus{LangCode: rr.LangCode, ResourceType: string(rr.ResourceType), BookCode: rr.BookCode, Found: true})
	return nil
}

// noteVerseFileExists mirrors the chapter/verse directory-and-file naming
// convention pkg/parsers/notes itself uses (numeric-entries, any padding)
// so link rewriting can tell whether a cross-reference target exists.
func noteVerseFileExists(notesDir, bookCode string, chapter int, verseRef string) bool {
	root, ok := fsutil.ResolveBookRoot(notesDir, bookCode)
	if !ok {
		return false
	}
	chapterDirs, err := fsutil.NumericEntries(root)
	if err != nil {
		return false
	}
	for _, cd := range chapterDirs {
		n, convErr := strconv.Atoi(cd)
		if convErr != nil || n != chapter {
			continue
		}
		verseFiles, err := fsutil.NumericEntries(filepath.Join(root, cd))
		if err != nil {
			return false
		}
		want := strings.TrimLeft(verseRef, "0")
		if want == "" {
			want = "0"
		}
		for _, vf := range verseFiles {
			got := strings.TrimLeft(vf, "0")
			if got == "" {
				got = "0"
			}
			if got == want {
				return true
			}
		}
	}
	return false
}
