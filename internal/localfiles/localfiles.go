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

// Package localfiles enumerates upload candidates from local source
// directories.
package localfiles

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cardinalhq/driveup/internal/logctx"
)

// Filter selects files from the source directories. Glob and Regex are
// independent: each contributes its matches, and the result is the
// deduplicated union. With neither set, every file directly under each
// directory is a candidate.
type Filter struct {
	Glob  string
	Regex string
}

// Discover returns the sorted list of candidate file paths in dirs that
// pass the filter. Directories are never candidates.
func Discover(ctx context.Context, dirs []string, filter Filter) ([]string, error) {
	var re *regexp.Regexp
	if filter.Regex != "" {
		var err error
		re, err = regexp.Compile(filter.Regex)
		if err != nil {
			return nil, fmt.Errorf("compile regex %q: %w", filter.Regex, err)
		}
	}

	found := map[string]struct{}{}
	for _, dir := range dirs {
		if filter.Glob == "" && re == nil {
			if err := listAll(dir, found); err != nil {
				return nil, err
			}
			continue
		}
		if filter.Glob != "" {
			if err := listGlob(dir, filter.Glob, found); err != nil {
				return nil, err
			}
		}
		if re != nil {
			if err := listRegex(dir, re, found); err != nil {
				return nil, err
			}
		}
	}

	files := make([]string, 0, len(found))
	for f := range found {
		files = append(files, f)
	}
	sort.Strings(files)

	logctx.FromContext(ctx).Info("Found local files",
		slog.Int("count", len(files)),
		slog.Any("dirs", dirs),
		slog.String("glob", filter.Glob),
		slog.String("regex", filter.Regex))
	return files, nil
}

func listAll(dir string, found map[string]struct{}) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			found[filepath.Join(dir, e.Name())] = struct{}{}
		}
	}
	return nil
}

func listGlob(dir, pattern string, found map[string]struct{}) error {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
	if err != nil {
		return fmt.Errorf("glob %q in %s: %w", pattern, dir, err)
	}
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			return fmt.Errorf("stat %s: %w", m, err)
		}
		if !fi.IsDir() {
			found[m] = struct{}{}
		}
	}
	return nil
}

func listRegex(dir string, re *regexp.Regexp, found map[string]struct{}) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !e.IsDir() && re.MatchString(path) {
			found[path] = struct{}{}
		}
	}
	return nil
}
