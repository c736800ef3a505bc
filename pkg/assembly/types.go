// SPDX-License-Identifier: Apache-2.0

// Package assembly implements the assembly engine: given the
// parsed *Book values for a DocumentRequest, it produces the ordered HTML
// fragments that, concatenated, form the document body.
package assembly

import "github.com/wkelly17/bibleassembler/pkg/model"

// Cell holds every resource parsed for one (language, book) pair. Exactly
// one of Scripture/SecondaryScripture is "primary"; Commentary may be
// populated under either ordering strategy.
type Cell struct {
	LangCode           string
	LangName           string
	LangDirection      model.Direction
	BookCode           string
	BookName           string
	Scripture          *model.ScriptureBook
	SecondaryScripture *model.ScriptureBook
	Notes              *model.NotesBook
	Questions          *model.QuestionsBook
	Commentary         *model.CommentaryBook
}

// presence reports which of the five slots are populated, in 8-tuple
// order: SCR/SCR1, NOTE, Q, WORD, SCR2-or-COM.
type presence struct {
	scr1      bool
	note      bool
	q         bool
	word      bool
	scr2OrCom bool
}

func (c *Cell) presence(hasWord bool) presence {
	return presence{
		scr1:      c.Scripture != nil,
		note:      c.Notes != nil,
		q:         c.Questions != nil,
		word:      hasWord,
		scr2OrCom: c.SecondaryScripture != nil || c.Commentary != nil,
	}
}
