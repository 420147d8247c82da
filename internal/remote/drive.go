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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/cardinalhq/driveup/internal/logctx"
)

// driveFolderMimeType marks a Drive file as a folder.
const driveFolderMimeType = "application/vnd.google-apps.folder"

// listPageSize is the page size for children listings. Drive caps this at
// 1000; larger destination folders paginate.
const listPageSize = 1000

// DriveStore implements Store against the Google Drive v3 API.
type DriveStore struct {
	svc *drive.Service
}

var _ Store = (*DriveStore)(nil)

// DriveConfig configures the Drive service connection.
type DriveConfig struct {
	// CredentialsFile is a path to a service account or authorized user
	// credentials JSON file. Empty means Application Default Credentials.
	CredentialsFile string `mapstructure:"credentials_file"`
}

// DefaultDriveConfig returns the default Drive configuration.
func DefaultDriveConfig() DriveConfig {
	return DriveConfig{}
}

// NewDriveStore builds an authenticated Drive store. The authentication
// handshake itself is the OAuth library's concern; we only hand it the
// credentials source.
func NewDriveStore(ctx context.Context, cfg DriveConfig) (*DriveStore, error) {
	opts, err := driveClientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveStore{svc: svc}, nil
}

// driveClientOptions turns the configured credentials file into a token
// source for the Drive service. An empty file path falls through to
// Application Default Credentials.
func driveClientOptions(ctx context.Context, cfg DriveConfig) ([]option.ClientOption, error) {
	opts := []option.ClientOption{option.WithScopes(drive.DriveScope)}
	if cfg.CredentialsFile == "" {
		return opts, nil
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file %s: %w", cfg.CredentialsFile, err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file %s: %w", cfg.CredentialsFile, err)
	}
	return append(opts, option.WithTokenSource(creds.TokenSource)), nil
}

// ListChildren returns the direct, non-trashed children of folderID. The
// query predicate must stay exactly "in parents and trashed=false": a
// trashed item must never be treated as occupying a name.
func (d *DriveStore) ListChildren(ctx context.Context, folderID string) ([]Child, error) {
	var children []Child
	query := fmt.Sprintf("'%s' in parents and trashed=false", escapeQueryTerm(folderID))
	pageToken := ""
	for {
		call := d.svc.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType)").
			PageSize(listPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		r, err := call.Do()
		if err != nil {
			listErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", classifyDriveError(err).String())))
			return nil, wrapDriveError("list", err)
		}
		for _, f := range r.Files {
			children = append(children, Child{
				ID:       f.Id,
				Name:     f.Name,
				IsFolder: f.MimeType == driveFolderMimeType,
			})
		}
		if r.NextPageToken == "" {
			return children, nil
		}
		pageToken = r.NextPageToken
	}
}

// CreateFolder creates a Drive folder named name under parentID.
func (d *DriveStore) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	f, err := d.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: driveFolderMimeType,
		Parents:  []string{parentID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", wrapDriveError("create folder", err)
	}
	foldersCreated.Add(ctx, 1)
	logctx.FromContext(ctx).Info("Created remote folder",
		slog.String("name", name),
		slog.String("id", f.Id),
		slog.String("parentID", parentID))
	return f.Id, nil
}

// UploadFile streams the local file into the folder parentID, named by the
// file's base name.
func (d *DriveStore) UploadFile(ctx context.Context, localPath, parentID string) (string, error) {
	fh, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer func() { _ = fh.Close() }()

	fi, err := fh.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", localPath, err)
	}

	f, err := d.svc.Files.Create(&drive.File{
		Name:    filepath.Base(localPath),
		Parents: []string{parentID},
	}).Media(fh).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", wrapDriveError("upload", err)
	}
	uploadCount.Add(ctx, 1)
	uploadBytes.Add(ctx, fi.Size())
	return f.Id, nil
}

// escapeQueryTerm escapes a value interpolated into a Drive search query.
// Escaping the backslash isn't documented but works.
func escapeQueryTerm(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func wrapDriveError(op string, err error) error {
	return &Error{Kind: classifyDriveError(err), Op: op, Err: err}
}

// classifyDriveError maps a Drive API failure onto the store's error
// taxonomy: 404 means the named parent is gone, 429 and quota-flavored 403s
// are rate limits, 5xx is transient.
func classifyDriveError(err error) ErrorKind {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return KindOther
	}
	switch {
	case gerr.Code == 404:
		return KindNotFound
	case gerr.Code == 429:
		return KindRateLimited
	case gerr.Code == 403:
		for _, e := range gerr.Errors {
			switch e.Reason {
			case "rateLimitExceeded", "userRateLimitExceeded", "dailyLimitExceeded":
				return KindRateLimited
			}
		}
		return KindOther
	case gerr.Code >= 500:
		return KindTransient
	default:
		return KindOther
	}
}
