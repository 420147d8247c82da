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

package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileStore implements Store on the local filesystem. It is intended for
// tests and offline runs that want to bypass the real Drive service.
// Folder IDs are slash paths relative to the base directory; the root
// sentinel maps to the base directory itself.
type FileStore struct {
	base string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at base.
func NewFileStore(base string) *FileStore {
	return &FileStore{base: base}
}

func (s *FileStore) path(folderID string) string {
	if folderID == RootFolderID {
		return s.base
	}
	return filepath.Join(s.base, filepath.FromSlash(folderID))
}

func (s *FileStore) childID(parentID, name string) string {
	if parentID == RootFolderID {
		return name
	}
	return parentID + "/" + name
}

// ListChildren returns the entries directly under folderID.
func (s *FileStore) ListChildren(ctx context.Context, folderID string) ([]Child, error) {
	entries, err := os.ReadDir(s.path(folderID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Kind: KindNotFound, Op: "list", Err: err}
		}
		return nil, &Error{Kind: KindOther, Op: "list", Err: err}
	}
	children := make([]Child, 0, len(entries))
	for _, e := range entries {
		children = append(children, Child{
			ID:       s.childID(folderID, e.Name()),
			Name:     e.Name(),
			IsFolder: e.IsDir(),
		})
	}
	return children, nil
}

// CreateFolder creates a directory named name under parentID.
func (s *FileStore) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	id := s.childID(parentID, name)
	if err := os.Mkdir(filepath.Join(s.base, filepath.FromSlash(id)), 0o755); err != nil {
		if os.IsNotExist(err) {
			return "", &Error{Kind: KindNotFound, Op: "create folder", Err: err}
		}
		return "", &Error{Kind: KindOther, Op: "create folder", Err: err}
	}
	return id, nil
}

// UploadFile copies the local file under parentID, named by its base name.
func (s *FileStore) UploadFile(ctx context.Context, localPath, parentID string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer func() { _ = src.Close() }()

	id := s.childID(parentID, filepath.Base(localPath))
	dst, err := os.Create(filepath.Join(s.base, filepath.FromSlash(id)))
	if err != nil {
		if os.IsNotExist(err) {
			return "", &Error{Kind: KindNotFound, Op: "upload", Err: err}
		}
		return "", &Error{Kind: KindOther, Op: "upload", Err: err}
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return "", &Error{Kind: KindOther, Op: "upload", Err: err}
	}
	return id, nil
}
