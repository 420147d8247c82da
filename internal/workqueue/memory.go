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

package workqueue

import (
	"context"
	"sync"
)

// MemoryStore implements Store in process memory. It exists for tests and
// single-process runs without a Redis; it provides the same atomicity
// contract within one process but nothing survives a restart.
type MemoryStore struct {
	mu     sync.Mutex
	queues map[string]map[Item]struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{queues: map[string]map[Item]struct{}{}}
}

func (s *MemoryStore) Add(ctx context.Context, key string, items ...Item) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queues[key]
	if q == nil {
		q = map[Item]struct{}{}
		s.queues[key] = q
	}
	var added int64
	for _, item := range items {
		if _, ok := q[item]; !ok {
			q[item] = struct{}{}
			added++
		}
	}
	return added, nil
}

func (s *MemoryStore) TakeOne(ctx context.Context, key string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for item := range s.queues[key] {
		delete(s.queues[key], item)
		return item, nil
	}
	return "", ErrEmpty
}

func (s *MemoryStore) Depth(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.queues[key])), nil
}

func (s *MemoryStore) Purge(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queues, key)
	return nil
}
