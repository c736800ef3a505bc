// SPDX-License-Identifier: Apache-2.0

// Package fsutil holds small filesystem helpers shared by the resource
// parsers: numeric directory/file ordering and git-layout/zip-layout
// dual-path resolution, trying the primary layout then the alternate.
package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// NumericEntries returns the numerically-named entries of dir (files or
// subdirectories), sorted ascending by integer value, with any file
// extension stripped — callers glob back the extension when they need
// the underlying file (e.g. "01.md" becomes "01"). Non-numeric entries
// are ignored.
func NumericEntries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type numbered struct {
		name string
		n    int
	}
	var nums []numbered
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if n, err := strconv.Atoi(name); err == nil {
			nums = append(nums, numbered{name, n})
		}
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i].n < nums[j].n })
	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = n.name
	}
	return out, nil
}

// ResolveBookRoot locates the directory for bookCode under dir, trying the
// git-layout path first (dir/bookCode, the clone's own root) and falling
// back to the zip-layout path (dir/*/bookCode, one nested level down from
// the zip's single top-level extracted folder).
func ResolveBookRoot(dir, bookCode string) (string, bool) {
	primary := filepath.Join(dir, bookCode)
	if isDir(primary) {
		return primary, true
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*", bookCode))
	for _, m := range matches {
		if isDir(m) {
			return m, true
		}
	}
	return "", false
}

// ResolveFile tries path, then the same relative path one directory level
// down from dir (the zip-layout alternate).
func ResolveFile(dir, rel string) (string, bool) {
	primary := filepath.Join(dir, rel)
	if isFile(primary) {
		return primary, true
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*", rel))
	for _, m := range matches {
		if isFile(m) {
			return m, true
		}
	}
	return "", false
}

// FirstExisting returns the first of rels (relative to root) that exists
// as a regular file, trying each in order — used for primary-extension
// (.md) then fallback-extension (.txt) probing.
func FirstExisting(root string, rels ...string) (string, bool) {
	for _, rel := range rels {
		p := filepath.Join(root, rel)
		if isFile(p) {
			return p, true
		}
	}
	return "", false
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
