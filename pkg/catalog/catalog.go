// SPDX-License-Identifier: Apache-2.0

// Package catalog implements the catalog resolver: it loads a JSON
// catalog document once per process, refreshed by mtime+TTL, and resolves
// (lang_code, resource_type, book_code) triples to ResourceLocations.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"k8s.io/klog/v2"

	"github.com/wkelly17/bibleassembler/pkg/util/urls"
)

// TransportKind identifies how a ResourceLocation must be acquired.
type TransportKind string

const (
	TransportGit        TransportKind = "git"
	TransportZip        TransportKind = "zip"
	TransportSingleFile TransportKind = "single-file"
)

// ResourceLocation is the result of resolving a ResourceRequest against the
// catalog. A nil/empty URL means "not found" and the caller must skip the
// resource (CatalogMiss).
type ResourceLocation struct {
	URL              string
	Transport        TransportKind
	ResourceTypeName string
	// PathHint is a selector for where inside the downloaded tree the
	// book's assets live (e.g. a sub-path within a monorepo-style
	// resource container).
	PathHint string
}

// Found reports whether resolution produced a usable location.
func (r *ResourceLocation) Found() bool {
	return r != nil && r.URL != ""
}

// LanguageInfo is a (lang_code, lang_name) pair surfaced by catalog
// introspection, mirroring a `lang_codes_and_names`-style listing endpoint.
type LanguageInfo struct {
	LangCode string
	LangName string
}

// catalogDoc is the in-memory shape of the catalog JSON document: a map of
// language code to a map of resource-type group name to a node tree.
type catalogDoc struct {
	Languages map[string]*languageEntry `json:"languages"`
}

type languageEntry struct {
	LangName  string                    `json:"lang_name"`
	Direction string                    `json:"direction"`
	Resources map[string]*resourceGroup `json:"resources"`
}

type resourceGroup struct {
	// DisplayName is the catalog-supplied display string for this node,
	// propagated into ResourceLocation.ResourceTypeName.
	DisplayName string `json:"display_name"`
	// ZipURL, when set, is a group-level zip download link (query path b).
	ZipURL string `json:"zip_url"`
	// Books maps book_code to its own subentry (query path a).
	Books map[string]*bookEntry `json:"books"`
	// RepoURL is a fallback generic repo-style entry (query path c).
	RepoURL string `json:"repo_url"`
}

type bookEntry struct {
	DownloadURL string `json:"download_url"`
}

// Catalog is a read-only, process-wide singleton once loaded, consulted by
// Resolve. Safe for concurrent use.
type Catalog struct {
	path string
	ttl  time.Duration

	mu       sync.RWMutex
	doc      *catalogDoc
	loadedAt time.Time
	modTime  time.Time
}

// Load reads the catalog JSON document at path. A missing or malformed
// catalog is fatal at startup.
func Load(path string, ttl time.Duration) (*Catalog, error) {
	c := &Catalog{path: path, ttl: ttl}
	if err := c.reload(); err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// reload refreshes the in-memory catalog if the on-disk file's mtime is
// newer than what was last loaded, or if the TTL has elapsed.
func (c *Catalog) reload() error {
	info, err := os.Stat(c.path)
	if err != nil {
		return err
	}
	c.mu.RLock()
	stale := c.doc == nil || info.ModTime().After(c.modTime) || time.Since(c.loadedAt) > c.ttl
	c.mu.RUnlock()
	if !stale {
		return nil
	}

	raw, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}
	var doc catalogDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing catalog JSON: %w", err)
	}

	c.mu.Lock()
	c.doc = &doc
	c.modTime = info.ModTime()
	c.loadedAt = time.Now()
	c.mu.Unlock()
	klog.V(4).Infof("catalog reloaded from %s", c.path)
	return nil
}

// Resolve implements the resolution algorithm: for (lang_code, resource_type) walk
// query paths (a) language→resource-type group→book subentry, (b)
// resource-type group with a zip link, (c) generic repo fallback; first
// match wins.
func (c *Catalog) Resolve(langCode string, resourceType string, bookCode string) (*ResourceLocation, error) {
	if err := c.reload(); err != nil {
		return nil, fmt.Errorf("refreshing catalog: %w", err)
	}
	resourceType = canonicalResourceTypeKey(resourceType)

	c.mu.RLock()
	defer c.mu.RUnlock()

	lang, ok := c.doc.Languages[langCode]
	if !ok {
		return nil, nil
	}
	group, ok := lang.Resources[resourceType]
	if !ok {
		return nil, nil
	}

	// (a) language entry → resource-type group → book-code subentry.
	if group.Books != nil {
		if book, ok := group.Books[bookCode]; ok && book.DownloadURL != "" {
			return &ResourceLocation{
				URL:              book.DownloadURL,
				Transport:        transportFor(book.DownloadURL),
				ResourceTypeName: group.DisplayName,
			}, nil
		}
	}

	// (b) resource-type group itself has a zip link.
	if group.ZipURL != "" {
		return &ResourceLocation{
			URL:              group.ZipURL,
			Transport:        TransportZip,
			ResourceTypeName: group.DisplayName,
			PathHint:         bookCode,
		}, nil
	}

	// (c) fallback to generic repo-style entry.
	if group.RepoURL != "" {
		return &ResourceLocation{
			URL:              group.RepoURL,
			Transport:        transportFor(group.RepoURL),
			ResourceTypeName: group.DisplayName,
			PathHint:         bookCode,
		}, nil
	}

	return nil, nil
}

// Languages enumerates every (lang_code, lang_name) pair present in the
// catalog, for catalog introspection callers.
func (c *Catalog) Languages() []LanguageInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]LanguageInfo, 0, len(c.doc.Languages))
	for code, entry := range c.doc.Languages {
		out = append(out, LanguageInfo{LangCode: code, LangName: entry.LangName})
	}
	return out
}

// Direction returns the language direction recorded in the catalog for
// langCode, defaulting to ltr when unknown.
func (c *Catalog) Direction(langCode string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if lang, ok := c.doc.Languages[langCode]; ok && lang.Direction != "" {
		return lang.Direction
	}
	return "ltr"
}

func transportFor(rawURL string) TransportKind {
	switch urls.Ext(rawURL) {
	case "git":
		return TransportGit
	case "zip":
		return TransportZip
	default:
		return TransportSingleFile
	}
}
