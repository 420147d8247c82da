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

package localfiles

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/driveup/internal/logctx"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func TestDiscoverNoFilter(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.log", "c.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	files, err := Discover(context.Background(), []string{dir}, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.log"),
		filepath.Join(dir, "c.txt"),
	}, files, "directories must not be candidates")
}

func TestDiscoverGlob(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.log", "c.txt")

	files, err := Discover(context.Background(), []string{dir}, Filter{Glob: "*.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "c.txt"),
	}, files)
}

func TestDiscoverGlobRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "top.csv")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested", "deep"), 0o755))
	writeFiles(t, filepath.Join(dir, "nested", "deep"), "inner.csv")

	files, err := Discover(context.Background(), []string{dir}, Filter{Glob: "**/*.csv"})
	require.NoError(t, err)
	assert.Contains(t, files, filepath.Join(dir, "nested", "deep", "inner.csv"))
}

func TestDiscoverRegex(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "run-001.dat", "run-002.dat", "other.dat")

	files, err := Discover(context.Background(), []string{dir}, Filter{Regex: `run-\d+`})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "run-001.dat"),
		filepath.Join(dir, "run-002.dat"),
	}, files)
}

func TestDiscoverGlobAndRegexAreAdditive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "run-001.dat", "other.bin")

	files, err := Discover(context.Background(), []string{dir}, Filter{Glob: "*.txt", Regex: `run-\d+`})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "run-001.dat"),
	}, files)
}

func TestDiscoverFiltersOverlapDeduplicates(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "run-001.txt")

	files, err := Discover(context.Background(), []string{dir}, Filter{Glob: "*.txt", Regex: `run-`})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestDiscoverMultipleDirs(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	writeFiles(t, dir1, "a.txt")
	writeFiles(t, dir2, "b.txt")

	files, err := Discover(context.Background(), []string{dir1, dir2}, Filter{})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestDiscoverBadRegex(t *testing.T) {
	_, err := Discover(context.Background(), []string{t.TempDir()}, Filter{Regex: "["})
	assert.Error(t, err)
}

func TestDiscoverLogsThroughContext(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.txt")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := logctx.WithLogger(context.Background(), logger)

	files, err := Discover(ctx, []string{dir}, Filter{})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Contains(t, buf.String(), "Found local files")
	assert.Contains(t, buf.String(), "count=2")
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, Filter{})
	assert.Error(t, err)
}
