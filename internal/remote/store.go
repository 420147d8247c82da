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

// Package remote abstracts the hierarchical remote store that uploads land
// in. The production implementation talks to Google Drive; a filesystem
// implementation backs tests and offline runs.
package remote

import (
	"context"
)

// RootFolderID is the sentinel parent ID for the top of the remote tree.
const RootFolderID = "root"

// Child is one entry directly under a remote folder. Trashed entries are
// never returned; a trashed item must not occupy a name.
type Child struct {
	ID       string
	Name     string
	IsFolder bool
}

// Store provides the remote capabilities the uploader consumes. Folder IDs
// are opaque strings assigned by the store and stable for its lifetime.
type Store interface {
	// ListChildren returns the direct, non-trashed children of folderID.
	ListChildren(ctx context.Context, folderID string) ([]Child, error)

	// CreateFolder creates a folder named name under parentID and returns
	// the new folder's ID.
	CreateFolder(ctx context.Context, name, parentID string) (string, error)

	// UploadFile uploads the local file's bytes under parentID, named by
	// the file's base name, and returns the remote file ID.
	UploadFile(ctx context.Context, localPath, parentID string) (string, error)
}
