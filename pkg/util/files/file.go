// SPDX-License-Identifier: Apache-2.0

// Package files provides a debounced watcher over a fixed set of files,
// used to drive --watch mode in cmd/docgen.
package files

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"k8s.io/klog/v2"
)

const (
	watchDebounceDelay = 250 * time.Millisecond
)

// Watcher encapsulates file watch and configuration,
// abstracting form the underlying file watch provider
type Watcher struct {
	Watcher      *fsnotify.Watcher
	WatchedFiles []string
	watched      []string
}

// NewFileWatcher creates Watcher
func NewFileWatcher() *Watcher {
	return &Watcher{
		WatchedFiles: []string{},
		watched:      []string{},
	}
}

// AddToWatch adds files to a WatchedFiles list monitored
// by this Watcher. The underlying fsnotify.Watcher is created on
// demand if it's nil when the operation is invoked.
func (w *Watcher) AddToWatch(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	if w.Watcher == nil {
		var err error
		w.Watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return err
		}
	}
	w.WatchedFiles = append(w.WatchedFiles, files...)
	return nil
}

// Watch starts monitoring WatchedFiles until a signal is received on stop. If
// WatchedFiles or Watcher are not initialized, Watch returns immediately. The
// eventHandler function is invoked, debounced, upon Write/Create events
// raised by the watched files.
func (w *Watcher) Watch(stop <-chan struct{}, eventHandler func() error) error {
	if w.Watcher == nil || len(w.WatchedFiles) == 0 {
		return nil
	}
	defer w.Watcher.Close() // nolint: errcheck

	// watch the parent directory of each target file so editors that
	// replace-on-save (unlink+create) are still caught.
	for _, file := range w.WatchedFiles {
		watchDir := filepath.Dir(file)
		if contains(w.watched, watchDir) {
			continue
		}
		if err := w.Watcher.Add(watchDir); err != nil {
			return err
		}
		klog.V(4).Infof("watching %s", watchDir)
		w.watched = append(w.watched, watchDir)
	}

	var timerC <-chan time.Time
	for {
		select {
		case <-timerC:
			timerC = nil
			if eventHandler != nil {
				if err := eventHandler(); err != nil {
					klog.Errorf("watch handler: %v", err)
				}
			}
		case event, ok := <-w.Watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && w.matches(event.Name) {
				timerC = time.After(watchDebounceDelay)
			}
		case err, ok := <-w.Watcher.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watcher error: %v", err)
		case <-stop:
			return nil
		}
	}
}

func (w *Watcher) matches(name string) bool {
	for _, f := range w.WatchedFiles {
		if filepath.Base(f) == filepath.Base(name) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
