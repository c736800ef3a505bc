// SPDX-License-Identifier: Apache-2.0

package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wkelly17/bibleassembler/pkg/api"
)

func sampleRequest() api.DocumentRequest {
	return api.DocumentRequest{
		AssemblyStrategyKind: api.LanguageBookOrder,
		AssemblyLayoutKind:   api.OneColumn,
		ChunkSize:            api.Chapter,
		ResourceRequests: []api.ResourceRequest{
			{LangCode: "en", ResourceType: api.ResourceScripture, BookCode: "tit"},
			{LangCode: "en", ResourceType: api.ResourceNotes, BookCode: "tit"},
		},
	}
}

func TestKey_DeterministicForIdenticalRequests(t *testing.T) {
	k1 := Key(sampleRequest(), 1000)
	k2 := Key(sampleRequest(), 2000)
	if k1 != k2 {
		t.Fatalf("expected identical requests to produce the same key, got %q vs %q", k1, k2)
	}
}

func TestKey_DiffersForDifferentRequests(t *testing.T) {
	req1 := sampleRequest()
	req2 := sampleRequest()
	req2.AssemblyLayoutKind = api.OneColumnCompact
	if Key(req1, 1) == Key(req2, 1) {
		t.Fatal("expected differing requests to produce different keys")
	}
}

func TestKey_FallsBackPastByteLimit(t *testing.T) {
	req := sampleRequest()
	for i := 0; i < 100; i++ {
		req.ResourceRequests = append(req.ResourceRequests, api.ResourceRequest{
			LangCode: "en", ResourceType: api.ResourceScripture, BookCode: "gen",
		})
	}
	key := Key(req, 42)
	if len(key) > maxKeyBytes {
		t.Fatalf("expected fallback key within %d bytes, got %d", maxKeyBytes, len(key))
	}
	if !strings.HasPrefix(key, "doc-42-") {
		t.Fatalf("expected fallback key to embed the supplied timestamp, got %q", key)
	}
}

func TestKey_FallbackIsReproducibleForSameOversizedRequest(t *testing.T) {
	req := sampleRequest()
	for i := 0; i < 100; i++ {
		req.ResourceRequests = append(req.ResourceRequests, api.ResourceRequest{
			LangCode: "en", ResourceType: api.ResourceScripture, BookCode: "gen",
		})
	}
	k1 := Key(req, 1)
	k2 := Key(req, 1)
	if k1 != k2 {
		t.Fatalf("expected fallback key to be reproducible given the same timestamp, got %q vs %q", k1, k2)
	}
}

func TestWrap_SelectsCompactTemplateForCompactLayouts(t *testing.T) {
	out, err := Wrap("Titus", api.OneColumnCompact, []string{"<p>body</p>"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `class="layout-compact"`) {
		t.Fatalf("expected compact wrapper class, got %q", out)
	}
	if !strings.Contains(out, "<p>body</p>") {
		t.Fatalf("expected body content preserved, got %q", out)
	}
}

func TestWrap_SelectsStandardTemplateForNonCompactLayouts(t *testing.T) {
	out, err := Wrap("Titus", api.OneColumn, []string{"<p>body</p>"}, []string{"<section>words</section>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `class="layout-standard"`) {
		t.Fatalf("expected standard wrapper class, got %q", out)
	}
	if !strings.Contains(out, "<section>words</section>") {
		t.Fatalf("expected word-definitions content appended, got %q", out)
	}
}

func TestWrite_WritesFileNamedByDocumentKey(t *testing.T) {
	dir := t.TempDir()
	req := sampleRequest()
	key, err := Write(dir, req, "Titus", []string{"<p>body</p>"}, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(dir, key+".html")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected file at %s: %v", path, err)
	}
	if !strings.Contains(string(data), "<p>body</p>") {
		t.Fatalf("expected written file to contain body content, got %q", string(data))
	}
}
