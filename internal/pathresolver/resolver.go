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

// Package pathresolver maps a slash-separated destination path onto a
// remote folder ID, creating missing segments along the way.
package pathresolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cardinalhq/driveup/internal/logctx"
	"github.com/cardinalhq/driveup/internal/remote"
)

// ErrEmptyPath is returned when a destination path contains no segments.
var ErrEmptyPath = errors.New("destination path has no segments")

// Config holds the retry policy for child listings. Transient and
// rate-limited listing failures are retried with exponential backoff; once
// retries are exhausted the listing is treated as empty and the walk
// continues best-effort.
type Config struct {
	ListRetries     uint64        `mapstructure:"list_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
}

// DefaultConfig returns the default resolver retry policy.
func DefaultConfig() Config {
	return Config{
		ListRetries:     3,
		InitialInterval: 500 * time.Millisecond,
	}
}

// Resolver walks the remote tree. It is safe for concurrent use, but two
// resolvers racing on the same novel path may each create a same-named
// folder; callers should resolve a destination once per run and share the
// resulting ID.
type Resolver struct {
	store remote.Store
	cfg   Config
}

// New returns a Resolver over the given store.
func New(store remote.Store, cfg Config) *Resolver {
	return &Resolver{store: store, cfg: cfg}
}

// SplitPath parses a slash-separated destination path into its segments.
// Leading, trailing, and repeated slashes are dropped. A path with no
// segments left is a caller error.
func SplitPath(path string) ([]string, error) {
	var segments []string
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyPath, path)
	}
	return segments, nil
}

// Resolve walks the tree left to right from the root, one segment at a
// time, descending into the first child whose name matches exactly and
// which is a folder, and creating the folder when no child matches. It
// returns the ID of the folder for the final segment.
//
// Resolve may create folders as a side effect; a second call for the same
// path creates nothing and returns the same ID.
func (r *Resolver) Resolve(ctx context.Context, path string) (string, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return "", err
	}
	ll := logctx.FromContext(ctx)

	parentID := remote.RootFolderID
	for _, segment := range segments {
		children, err := r.listChildren(ctx, parentID)
		if err != nil {
			if remote.IsNotFound(err) {
				return "", fmt.Errorf("folder %q was not found on the remote store: %w", segment, err)
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			// Best-effort navigation: a listing that keeps failing is
			// treated as empty, at the cost of a possible duplicate folder.
			ll.Warn("Listing children failed, assuming empty",
				slog.String("segment", segment),
				slog.String("parentID", parentID),
				slog.Any("error", err))
			children = nil
		}

		// First match in listing order wins; duplicate names under one
		// parent are a pre-existing remote ambiguity.
		folderID := ""
		for _, child := range children {
			if child.IsFolder && child.Name == segment {
				folderID = child.ID
				break
			}
		}
		if folderID == "" {
			folderID, err = r.store.CreateFolder(ctx, segment, parentID)
			if err != nil {
				return "", fmt.Errorf("create folder %q under %q: %w", segment, parentID, err)
			}
		}
		parentID = folderID
	}
	return parentID, nil
}

// listChildren lists with bounded exponential backoff on retryable
// failures. NotFound and other non-retryable errors return immediately.
func (r *Resolver) listChildren(ctx context.Context, parentID string) ([]remote.Child, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.InitialInterval
	return backoff.RetryWithData(func() ([]remote.Child, error) {
		children, err := r.store.ListChildren(ctx, parentID)
		if err != nil {
			if remote.IsRetryable(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return children, nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, r.cfg.ListRetries), ctx))
}
