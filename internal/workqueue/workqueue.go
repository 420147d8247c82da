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

// Package workqueue is the shared pending set that lets any number of
// independent worker processes cooperate on one batch of uploads. The set
// lives in an external store keyed by a queue name, outlives any single
// worker, and hands each item to exactly one taker. Delivery is
// at-most-once: an item taken by a worker that dies mid-upload is gone.
package workqueue

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cardinalhq/driveup/internal/logctx"
)

// DefaultKey names the queue used when the operator does not pick one, so
// that multiple invocations cooperate automatically.
const DefaultKey = "driveup"

// Item is a single unit of work: a local file path. Identity is
// full-string equality, nothing more.
type Item = string

// ErrEmpty signals that the named queue holds no more items.
var ErrEmpty = errors.New("work queue is empty")

// Store is the set-semantics queue contract. Items carry no order; the
// only guarantee is that TakeOne never hands the same item to two callers.
type Store interface {
	// Add inserts items into the named queue. Items already present are
	// no-ops. Returns the number of items newly added.
	Add(ctx context.Context, key string, items ...Item) (int64, error)

	// TakeOne atomically removes and returns one arbitrary item, or
	// ErrEmpty when none remain.
	TakeOne(ctx context.Context, key string) (Item, error)

	// Depth returns the current item count. Advisory only: concurrent
	// takers may have changed it the instant after it is read.
	Depth(ctx context.Context, key string) (int64, error)

	// Purge drops the named queue entirely.
	Purge(ctx context.Context, key string) error
}

// Seed bulk-adds items to the named queue and logs the outcome.
func Seed(ctx context.Context, store Store, key string, items []Item) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	added, err := store.Add(ctx, key, items...)
	if err != nil {
		return 0, err
	}
	logctx.FromContext(ctx).Info("Cached local files for upload",
		slog.String("queueKey", key),
		slog.Int("candidates", len(items)),
		slog.Int64("added", added))
	return added, nil
}

// Depth returns the number of items remaining in the named queue.
func Depth(ctx context.Context, store Store, key string) (int64, error) {
	return store.Depth(ctx, key)
}
