// SPDX-License-Identifier: Apache-2.0

package assembly

import (
	"github.com/wkelly17/bibleassembler/pkg/api"
	"github.com/wkelly17/bibleassembler/pkg/apperrors"
)

// dispatchKey is the 8-tuple: the five presence bits plus
// strategy, layout, and chunk size (the two orderings are never mixed in
// one request). The 5th presence bit is set when a secondary scripture or
// a commentary is present, under either strategy; it does not single out
// commentary alone for book-then-language.
type dispatchKey struct {
	strategy  api.AssemblyStrategyKind
	layout    api.AssemblyLayoutKind
	chunkSize api.ChunkSize
	presence  presence
}

// subAssemblyFunc renders one (lang, book) Cell into ordered HTML
// fragments, given the dispatch key that selected it.
type subAssemblyFunc func(c *Cell, key dispatchKey, print bool) []string

var dispatchTable map[dispatchKey]subAssemblyFunc

// allLayouts and allChunkSizes enumerate every value the validated
// DocumentRequest can carry — used to build an exhaustive table.
var allLayouts = []api.AssemblyLayoutKind{
	api.OneColumn,
	api.OneColumnCompact,
	api.TwoColumnScriptureLeftRight,
	api.TwoColumnScriptureLeftRightCompact,
}
var allChunkSizes = []api.ChunkSize{api.Verse, api.Chapter}
var allStrategies = []api.AssemblyStrategyKind{api.LanguageBookOrder, api.BookLanguageOrder}

func init() {
	dispatchTable = map[dispatchKey]subAssemblyFunc{}
	for _, strat := range allStrategies {
		for _, layout := range allLayouts {
			// Two-column layouts are only ever reachable via
			// BOOK_LANGUAGE_ORDER; validation rejects the request
			// otherwise, so the table need not register the combination.
			if isTwoColumn(layout) && strat != api.BookLanguageOrder {
				continue
			}
			for _, chunk := range allChunkSizes {
				for _, bits := range allPresenceCombinations() {
					key := dispatchKey{strategy: strat, layout: layout, chunkSize: chunk, presence: bits}
					dispatchTable[key] = renderCell
				}
			}
		}
	}
}

func isTwoColumn(l api.AssemblyLayoutKind) bool {
	return l == api.TwoColumnScriptureLeftRight || l == api.TwoColumnScriptureLeftRightCompact
}

func allPresenceCombinations() []presence {
	var out []presence
	for i := 0; i < 32; i++ {
		out = append(out, presence{
			scr1:      i&1 != 0,
			note:      i&2 != 0,
			q:         i&4 != 0,
			word:      i&8 != 0,
			scr2OrCom: i&16 != 0,
		})
	}
	return out
}

// lookup finds the sub-assembly function for key, returning a fatal
// apperrors.DispatchMiss if the table — which must be exhaustive for
// every supported (layout, chunk_size) combination — has no entry. This can
// only happen for a combination validation should have rejected; it is a
// programmer error, not a user error.
func lookup(key dispatchKey) (subAssemblyFunc, error) {
	fn, ok := dispatchTable[key]
	if !ok {
		return nil, apperrors.New(apperrors.DispatchMiss, "", dispatchMissError(key))
	}
	return fn, nil
}

type dispatchMissError dispatchKey

func (e dispatchMissError) Error() string {
	return "assembly: no dispatch entry for presence/layout/chunk combination"
}
