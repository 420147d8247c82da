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
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/orlangure/gnomock"
	redispreset "github.com/orlangure/gnomock/preset/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Global shared container for all Redis store tests.
var (
	sharedRedisAddr string
	redisStartErr   error
)

// TestMain sets up and tears down a shared Redis container.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() || os.Getenv("SKIP_DOCKER_TESTS") != "" {
		os.Exit(m.Run())
	}

	var container *gnomock.Container
	container, redisStartErr = gnomock.Start(redispreset.Preset())
	if redisStartErr == nil {
		sharedRedisAddr = container.DefaultAddress()
	}

	code := m.Run()

	if container != nil {
		if err := gnomock.Stop(container); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to stop shared Redis container: %v\n", err)
		}
	}
	os.Exit(code)
}

func newRedisTestStore(t *testing.T) *RedisStore {
	t.Helper()
	if testing.Short() || os.Getenv("SKIP_DOCKER_TESTS") != "" {
		t.Skip("skipping Redis container tests")
	}
	if redisStartErr != nil {
		t.Skipf("Redis container unavailable: %v", redisStartErr)
	}
	client := goredis.NewClient(&goredis.Options{Addr: sharedRedisAddr})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreFromClient(client)
}

func uniqueKey(t *testing.T) string {
	return "driveup-test:" + t.Name()
}

func TestRedisStoreSetSemantics(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()
	key := uniqueKey(t)
	t.Cleanup(func() { _ = s.Purge(context.Background(), key) })

	added, err := s.Add(ctx, key, "/data/a.txt", "/data/b.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(2), added)

	added, err = s.Add(ctx, key, "/data/a.txt")
	require.NoError(t, err)
	assert.Zero(t, added, "duplicate add must not change the set")

	depth, err := s.Depth(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), depth)
}

func TestRedisStoreTakeOneDrains(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()
	key := uniqueKey(t)
	t.Cleanup(func() { _ = s.Purge(context.Background(), key) })

	_, err := s.Add(ctx, key, "a", "b", "c")
	require.NoError(t, err)

	seen := map[string]bool{}
	for range 3 {
		item, err := s.TakeOne(ctx, key)
		require.NoError(t, err)
		assert.False(t, seen[item])
		seen[item] = true
	}
	_, err = s.TakeOne(ctx, key)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRedisStoreEmptyKey(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()

	_, err := s.TakeOne(ctx, uniqueKey(t))
	assert.ErrorIs(t, err, ErrEmpty)

	depth, err := s.Depth(ctx, uniqueKey(t))
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestRedisStorePurge(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()
	key := uniqueKey(t)

	_, err := s.Add(ctx, key, "a", "b")
	require.NoError(t, err)
	require.NoError(t, s.Purge(ctx, key))

	depth, err := s.Depth(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, depth)
}

// The whole point of SPOP: concurrent takers across connections never
// receive the same member.
func TestRedisStoreConcurrentTakersUniqueDelivery(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()
	key := uniqueKey(t)
	t.Cleanup(func() { _ = s.Purge(context.Background(), key) })

	const n = 500
	items := make([]Item, n)
	for i := range n {
		items[i] = fmt.Sprintf("file-%04d.dat", i)
	}
	added, err := s.Add(ctx, key, items...)
	require.NoError(t, err)
	require.Equal(t, int64(n), added)

	const workers = 8
	var mu sync.Mutex
	taken := map[string]int{}
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each taker uses its own connection, like a separate process.
			client := goredis.NewClient(&goredis.Options{Addr: sharedRedisAddr})
			defer func() { _ = client.Close() }()
			worker := NewRedisStoreFromClient(client)
			for {
				item, err := worker.TakeOne(ctx, key)
				if err != nil {
					assert.ErrorIs(t, err, ErrEmpty)
					return
				}
				mu.Lock()
				taken[item]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, taken, n)
	for item, count := range taken {
		assert.Equal(t, 1, count, "item %q delivered %d times", item, count)
	}
}
