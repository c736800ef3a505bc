// SPDX-License-Identifier: Apache-2.0

package docgen

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/wkelly17/bibleassembler/pkg/jobs"
	"github.com/wkelly17/bibleassembler/pkg/util/files"
)

// watchAndRun runs exec once, then re-runs it every time the request or
// catalog file changes, until ctx is cancelled. A single-worker
// jobs.Controller serializes regenerations so an edit mid-run is picked up
// by the next pass rather than racing the one in flight.
func watchAndRun(ctx context.Context, options *Options) error {
	worker := jobs.WorkerFunc(func(ctx context.Context, task interface{}, wq jobs.WorkQueue) *jobs.WorkerError {
		if err := exec(ctx, options); err != nil {
			klog.Errorf("docgen: regeneration failed: %v", err)
		}
		return nil
	})
	job := &jobs.Job{
		ID:         "docgen-watch",
		MaxWorkers: 1,
		MinWorkers: 1,
		Worker:     worker,
		FailFast:   false,
		Queue:      jobs.NewWorkQueue(4),
	}
	controller := jobs.NewController(job)

	errCh := make(chan error, 1)
	go controller.Start(ctx, errCh, nil)
	controller.Enqueue(ctx, struct{}{})

	watcher := files.NewFileWatcher()
	if err := watcher.AddToWatch(options.RequestPath, options.CatalogPath); err != nil {
		return err
	}

	stop := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(stop)
	}()

	watchErr := watcher.Watch(stop, func() error {
		klog.Infof("docgen: change detected, regenerating")
		controller.Enqueue(ctx, struct{}{})
		return nil
	})

	controller.Shutdown()
	select {
	case err := <-errCh:
		return err
	default:
		return watchErr
	}
}
