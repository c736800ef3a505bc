// SPDX-License-Identifier: Apache-2.0

// Package api defines the request types accepted at the boundary of the
// core: ResourceRequest and DocumentRequest, their enums, and validation.
package api

// AssemblyStrategyKind selects the outer ordering of the assembled document.
type AssemblyStrategyKind string

const (
	// LanguageBookOrder groups the document by language, then by book.
	LanguageBookOrder AssemblyStrategyKind = "LANGUAGE_BOOK_ORDER"
	// BookLanguageOrder groups the document by book, then by language.
	BookLanguageOrder AssemblyStrategyKind = "BOOK_LANGUAGE_ORDER"
)

// AssemblyLayoutKind selects the column layout of the assembled document.
type AssemblyLayoutKind string

const (
	OneColumn                          AssemblyLayoutKind = "ONE_COLUMN"
	OneColumnCompact                   AssemblyLayoutKind = "ONE_COLUMN_COMPACT"
	TwoColumnScriptureLeftRight        AssemblyLayoutKind = "TWO_COLUMN_SCRIPTURE_LEFT_SCRIPTURE_RIGHT"
	TwoColumnScriptureLeftRightCompact AssemblyLayoutKind = "TWO_COLUMN_SCRIPTURE_LEFT_SCRIPTURE_RIGHT_COMPACT"
)

// ChunkSize selects the interleaving granularity.
type ChunkSize string

const (
	Verse   ChunkSize = "VERSE"
	Chapter ChunkSize = "CHAPTER"
)

// ResourceType identifies one of the five supported resource kinds by its
// catalog-facing short code.
type ResourceType string

const (
	ResourceScripture  ResourceType = "scripture"
	ResourceNotes      ResourceType = "notes"
	ResourceQuestions  ResourceType = "questions"
	ResourceWords      ResourceType = "words"
	ResourceCommentary ResourceType = "commentary"
)

// ResourceRequest names a single (language, resource type, book) triple to
// resolve and acquire. Immutable once created.
type ResourceRequest struct {
	LangCode     string       `yaml:"lang_code" json:"lang_code"`
	ResourceType ResourceType `yaml:"resource_type" json:"resource_type"`
	BookCode     string       `yaml:"book_code" json:"book_code"`
}

// DocumentRequest is the validated, immutable input to the assembly core.
type DocumentRequest struct {
	EmailAddress         string                `yaml:"email_address,omitempty" json:"email_address,omitempty"`
	AssemblyStrategyKind AssemblyStrategyKind  `yaml:"assembly_strategy_kind" json:"assembly_strategy_kind"`
	// AssemblyLayoutKind is optional on input; ValidateDocumentRequest fills it in
	// per the defaulting rules once validation has passed.
	AssemblyLayoutKind AssemblyLayoutKind `yaml:"assembly_layout_kind,omitempty" json:"assembly_layout_kind,omitempty"`
	LayoutForPrint     bool                `yaml:"layout_for_print" json:"layout_for_print"`
	ChunkSize          ChunkSize           `yaml:"chunk_size,omitempty" json:"chunk_size,omitempty"`
	GeneratePDF        bool                `yaml:"generate_pdf" json:"generate_pdf"`
	GenerateEpub       bool                `yaml:"generate_epub" json:"generate_epub"`
	GenerateDocx       bool                `yaml:"generate_docx" json:"generate_docx"`
	ResourceRequests   []ResourceRequest   `yaml:"resource_requests" json:"resource_requests"`
}

// EffectiveChunkSize returns r.ChunkSize, defaulting to CHAPTER.
func (r *DocumentRequest) EffectiveChunkSize() ChunkSize {
	if r.ChunkSize == "" {
		return Chapter
	}
	return r.ChunkSize
}
