// SPDX-License-Identifier: Apache-2.0

// Package provisioner implements the asset provisioner: it
// materializes a catalog.ResourceLocation into a local directory, handling
// clone-vs-download-and-unzip, idempotency, and per-key concurrency.
package provisioner

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"k8s.io/klog/v2"

	"github.com/wkelly17/bibleassembler/pkg/catalog"
	"github.com/wkelly17/bibleassembler/pkg/util/httpclient"
	"github.com/wkelly17/bibleassembler/pkg/util/units"
)

// maxAttempts bounds the retry-with-backoff policy: a network error
// is retried up to 3 attempts.
const maxAttempts = 3

// backoffSchedule is the fixed table of waits between retry attempts (a
// schedule rather than a formula).
var backoffSchedule = []time.Duration{250 * time.Millisecond, 750 * time.Millisecond, 2 * time.Second}

// HTTPDoer is the minimal interface this package needs from an HTTP client,
// satisfied by *http.Client and by caching decorators.
type HTTPDoer = httpclient.Client

// Cloner performs a shallow git clone into a target directory. Implemented
// by gitCloner (backed by pkg/git) in production, fakeable in tests.
type Cloner interface {
	ShallowClone(ctx context.Context, url, dir string) error
}

// Provisioner materializes ResourceLocations into a shared, on-disk asset
// cache. Safe for concurrent use across distinct (lang, resource_type)
// triples; same-triple calls are serialized by a per-key lock.
type Provisioner struct {
	cacheRoot string
	http      HTTPDoer
	cloner    Cloner

	keyLocksMu sync.Mutex
	keyLocks   map[string]*sync.Mutex
}

// New creates a Provisioner rooted at cacheRoot.
func New(cacheRoot string, httpDoer HTTPDoer, cloner Cloner) *Provisioner {
	return &Provisioner{
		cacheRoot: cacheRoot,
		http:      httpDoer,
		cloner:    cloner,
		keyLocks:  make(map[string]*sync.Mutex),
	}
}

// DirFor returns the deterministic target directory name for a (lang,
// resource_type) pair: `{cache}/{lang}_{resource_type}`.
func (p *Provisioner) DirFor(langCode, resourceType string) string {
	return filepath.Join(p.cacheRoot, fmt.Sprintf("%s_%s", langCode, resourceType))
}

// Provision materializes loc into DirFor(langCode, resourceType). It is
// idempotent: if the target directory already exists and is non-empty, it
// returns immediately without re-fetching.
func (p *Provisioner) Provision(ctx context.Context, langCode, resourceType string, loc *catalog.ResourceLocation) (string, error) {
	if !loc.Found() {
		return "", fmt.Errorf("provision: resource location not found")
	}
	target := p.DirFor(langCode, resourceType)
	lock := p.lockFor(target)
	lock.Lock()
	defer lock.Unlock()

	if nonEmpty(target) {
		klog.V(4).Infof("provision: %s already present, skipping fetch", target)
		return target, nil
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoffSchedule[attempt-1]):
			}
			klog.V(3).Infof("provision: retrying %s (attempt %d/%d) after: %v", target, attempt+1, maxAttempts, lastErr)
		}
		if lastErr = p.fetchOnce(ctx, target, loc); lastErr == nil {
			return target, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("provision %s: %w", target, lastErr)
}

func (p *Provisioner) lockFor(key string) *sync.Mutex {
	p.keyLocksMu.Lock()
	defer p.keyLocksMu.Unlock()
	lock, ok := p.keyLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		p.keyLocks[key] = lock
	}
	return lock
}

// fetchOnce performs a single fetch attempt into a temp path, then renames
// atomically into place so partial state is never visible to readers.
func (p *Provisioner) fetchOnce(ctx context.Context, target string, loc *catalog.ResourceLocation) error {
	tmp := target + ".tmp-" + fmt.Sprint(time.Now().UnixNano())
	if err := os.RemoveAll(tmp); err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	switch loc.Transport {
	case catalog.TransportGit:
		if err := p.cloner.ShallowClone(ctx, loc.URL, tmp); err != nil {
			return fmt.Errorf("git clone %s: %w", loc.URL, err)
		}
	case catalog.TransportZip:
		if err := p.downloadAndUnzip(ctx, loc.URL, tmp); err != nil {
			return fmt.Errorf("download+unzip %s: %w", loc.URL, err)
		}
	case catalog.TransportSingleFile:
		if err := p.downloadSingleFile(ctx, loc.URL, tmp); err != nil {
			return fmt.Errorf("download %s: %w", loc.URL, err)
		}
	default:
		return fmt.Errorf("unsupported transport kind %q", loc.Transport)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

func (p *Provisioner) downloadSingleFile(ctx context.Context, url, dir string) error {
	body, err := p.get(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, filepath.Base(url)))
	if err != nil {
		return err
	}
	defer f.Close()
	n, err := io.Copy(f, body)
	if err != nil {
		return err
	}
	klog.V(4).Infof("downloaded %s (%.2f MB)", url, float64(n)/float64(units.MB))
	return nil
}

func (p *Provisioner) downloadAndUnzip(ctx context.Context, url, dir string) error {
	body, err := p.get(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	tmpZip, err := os.CreateTemp("", "asset-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmpZip.Name())
	defer tmpZip.Close()

	n, err := io.Copy(tmpZip, body)
	if err != nil {
		return err
	}
	klog.V(4).Infof("downloaded %s (%.2f MB)", url, float64(n)/float64(units.MB))

	r, err := zip.OpenReader(tmpZip.Name())
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, f := range r.File {
		dest := filepath.Join(dir, f.Name)
		if !isWithinDir(dir, dest) {
			return fmt.Errorf("zip entry %q escapes target directory", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := extractZipFile(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, src)
	return err
}

func isWithinDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !filepathHasParentPrefix(rel)
}

func filepathHasParentPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.'
}

func (p *Provisioner) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

func nonEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}
