// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package uploader orchestrates the end-to-end flow: seed the shared queue
// from local discovery, then drain it into the resolved destination folder.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/cardinalhq/driveup/internal/localfiles"
	"github.com/cardinalhq/driveup/internal/logctx"
	"github.com/cardinalhq/driveup/internal/pathresolver"
	"github.com/cardinalhq/driveup/internal/remote"
	"github.com/cardinalhq/driveup/internal/workqueue"
)

// Config holds the coordinator's knobs.
type Config struct {
	// QueueKey names the shared queue. Every worker configured with the
	// same key cooperates on the same batch.
	QueueKey string `mapstructure:"queue_key"`
	// ProgressInterval is how many successful uploads pass between
	// remaining-depth progress logs.
	ProgressInterval int64 `mapstructure:"progress_interval"`
}

// DefaultConfig returns the default coordinator configuration.
func DefaultConfig() Config {
	return Config{
		QueueKey:         workqueue.DefaultKey,
		ProgressInterval: 50,
	}
}

// Coordinator wires the remote store, path resolver and work queue into
// the upload flow. All service handles are injected; the coordinator owns
// none of them.
type Coordinator struct {
	remote   remote.Store
	resolver *pathresolver.Resolver
	queue    workqueue.Store
	cfg      Config
}

// New returns a Coordinator over the given handles.
func New(remoteStore remote.Store, resolver *pathresolver.Resolver, queue workqueue.Store, cfg Config) *Coordinator {
	if cfg.QueueKey == "" {
		cfg.QueueKey = workqueue.DefaultKey
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 50
	}
	return &Coordinator{
		remote:   remoteStore,
		resolver: resolver,
		queue:    queue,
		cfg:      cfg,
	}
}

// RunOptions describes one end-to-end invocation.
type RunOptions struct {
	// SourceDirs, when non-empty, seeds the queue from local discovery
	// before draining. Worker instances joining an in-flight batch leave
	// it empty.
	SourceDirs []string
	// DestPath is the slash-separated remote destination.
	DestPath string
	// Filter narrows local discovery.
	Filter localfiles.Filter
	// Overwrite enqueues every discovered file even when a same-named
	// file already exists in the destination.
	Overwrite bool
}

// Run performs the optional seed followed by the drain. It is the whole
// lifetime of one worker process.
func (c *Coordinator) Run(ctx context.Context, opts RunOptions) error {
	ll := logctx.FromContext(ctx).With(
		slog.String("queueKey", c.cfg.QueueKey),
		slog.String("dest", opts.DestPath),
		slog.String("runID", uuid.NewString()))
	ctx = logctx.WithLogger(ctx, ll)

	if len(opts.SourceDirs) > 0 {
		candidates, err := localfiles.Discover(ctx, opts.SourceDirs, opts.Filter)
		if err != nil {
			return fmt.Errorf("discover local files: %w", err)
		}
		if _, err := c.Seed(ctx, candidates, opts.DestPath, opts.Overwrite); err != nil {
			return fmt.Errorf("seed queue: %w", err)
		}
	}

	if _, err := c.Drain(ctx, opts.DestPath); err != nil {
		return err
	}
	return nil
}

// Seed resolves the destination, drops candidates that already exist
// remotely by name (unless overwrite), and bulk-adds the remainder to the
// shared queue. Returns the number of items newly added.
func (c *Coordinator) Seed(ctx context.Context, candidates []string, destPath string, overwrite bool) (int64, error) {
	ll := logctx.FromContext(ctx)

	if !overwrite {
		folderID, err := c.resolver.Resolve(ctx, destPath)
		if err != nil {
			return 0, err
		}
		existing, err := c.remote.ListChildren(ctx, folderID)
		if err != nil {
			return 0, fmt.Errorf("list destination %q: %w", destPath, err)
		}
		ll.Info("Found existing files in destination folder",
			slog.Int("count", len(existing)))

		names := make(map[string]struct{}, len(existing))
		for _, child := range existing {
			names[child.Name] = struct{}{}
		}
		kept := make([]string, 0, len(candidates))
		for _, candidate := range candidates {
			if _, ok := names[filepath.Base(candidate)]; !ok {
				kept = append(kept, candidate)
			}
		}
		candidates = kept
	}

	return workqueue.Seed(ctx, c.queue, c.cfg.QueueKey, candidates)
}

// Drain resolves the destination once, then takes items until the queue
// reports empty, uploading each. A single failed upload is logged and
// dropped, not re-enqueued; a queue failure is fatal. Returns the number
// of successful uploads by this worker.
func (c *Coordinator) Drain(ctx context.Context, destPath string) (int64, error) {
	ll := logctx.FromContext(ctx)

	folderID, err := c.resolver.Resolve(ctx, destPath)
	if err != nil {
		return 0, err
	}
	ll.Info("Uploading files to remote folder",
		slog.String("dest", destPath),
		slog.String("folderID", folderID))

	var uploaded, failed int64
	for {
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}
		item, err := c.queue.TakeOne(ctx, c.cfg.QueueKey)
		if err != nil {
			if errors.Is(err, workqueue.ErrEmpty) {
				ll.Info("All files uploaded",
					slog.Int64("uploaded", uploaded),
					slog.Int64("failed", failed))
				return uploaded, nil
			}
			return uploaded, fmt.Errorf("take work item: %w", err)
		}

		ll.Info("Uploading file", slog.String("path", item))
		if _, err := c.remote.UploadFile(ctx, item, folderID); err != nil {
			// The item was removed from the queue when taken; it is not
			// re-enqueued. Re-seeding retries failures.
			ll.Error("Upload failed, dropping item",
				slog.String("path", item),
				slog.Any("error", err))
			failed++
			continue
		}
		uploaded++

		if uploaded%c.cfg.ProgressInterval == 0 {
			remaining, err := c.queue.Depth(ctx, c.cfg.QueueKey)
			if err != nil {
				ll.Warn("Failed to read queue depth", slog.Any("error", err))
				continue
			}
			ll.Info("Upload progress",
				slog.Int64("uploaded", uploaded),
				slog.Int64("remaining", remaining))
		}
	}
}
