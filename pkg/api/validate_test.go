// SPDX-License-Identifier: Apache-2.0

package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRequest() *DocumentRequest {
	return &DocumentRequest{
		AssemblyStrategyKind: LanguageBookOrder,
		ResourceRequests: []ResourceRequest{
			{LangCode: "en", ResourceType: ResourceScripture, BookCode: "tit"},
			{LangCode: "en", ResourceType: ResourceNotes, BookCode: "tit"},
		},
	}
}

func TestValidateDocumentRequest_DefaultsLayout(t *testing.T) {
	req := baseRequest()
	require.NoError(t, ValidateDocumentRequest(req))
	assert.Equal(t, OneColumn, req.AssemblyLayoutKind)
}

func TestValidateDocumentRequest_PrintDefaultsToCompact(t *testing.T) {
	req := baseRequest()
	req.LayoutForPrint = true
	require.NoError(t, ValidateDocumentRequest(req))
	assert.Equal(t, OneColumnCompact, req.AssemblyLayoutKind)
}

func TestValidateDocumentRequest_PrintRejectsEpubDocx(t *testing.T) {
	req := baseRequest()
	req.LayoutForPrint = true
	req.GenerateEpub = true
	assert.Error(t, ValidateDocumentRequest(req))
}

func TestValidateDocumentRequest_TwoColumnRequiresBookLanguageOrder(t *testing.T) {
	req := baseRequest()
	req.AssemblyLayoutKind = TwoColumnScriptureLeftRight
	assert.Error(t, ValidateDocumentRequest(req))
}

func TestValidateDocumentRequest_TwoColumnRequiresEvenLanguageCount(t *testing.T) {
	req := baseRequest()
	req.AssemblyStrategyKind = BookLanguageOrder
	req.AssemblyLayoutKind = TwoColumnScriptureLeftRight
	assert.Error(t, ValidateDocumentRequest(req))
}

func TestValidateDocumentRequest_TwoColumnAcceptsMatchingPair(t *testing.T) {
	req := &DocumentRequest{
		AssemblyStrategyKind: BookLanguageOrder,
		AssemblyLayoutKind:   TwoColumnScriptureLeftRight,
		ResourceRequests: []ResourceRequest{
			{LangCode: "en", ResourceType: ResourceScripture, BookCode: "tit"},
			{LangCode: "es-419", ResourceType: ResourceScripture, BookCode: "tit"},
		},
	}
	assert.NoError(t, ValidateDocumentRequest(req))
}

func TestValidateDocumentRequest_TwoColumnRejectsMismatchedBookSets(t *testing.T) {
	req := &DocumentRequest{
		AssemblyStrategyKind: BookLanguageOrder,
		AssemblyLayoutKind:   TwoColumnScriptureLeftRight,
		ResourceRequests: []ResourceRequest{
			{LangCode: "en", ResourceType: ResourceScripture, BookCode: "tit"},
			{LangCode: "es-419", ResourceType: ResourceScripture, BookCode: "col"},
		},
	}
	assert.Error(t, ValidateDocumentRequest(req))
}

func TestValidateDocumentRequest_RejectsUnknownBookCode(t *testing.T) {
	req := baseRequest()
	req.ResourceRequests[0].BookCode = "xyz"
	assert.Error(t, ValidateDocumentRequest(req))
}

func TestValidateDocumentRequest_RejectsEmptyResourceList(t *testing.T) {
	req := &DocumentRequest{AssemblyStrategyKind: LanguageBookOrder}
	assert.Error(t, ValidateDocumentRequest(req))
}
