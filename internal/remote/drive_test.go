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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriveClientOptionsDefaultCredentials(t *testing.T) {
	opts, err := driveClientOptions(context.Background(), DriveConfig{})
	require.NoError(t, err)
	// Only the scope option; ADC resolution happens inside the client.
	assert.Len(t, opts, 1)
}

func TestDriveClientOptionsCredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"type":"authorized_user","client_id":"id","client_secret":"secret","refresh_token":"token"}`,
	), 0o600))

	opts, err := driveClientOptions(context.Background(), DriveConfig{CredentialsFile: path})
	require.NoError(t, err)
	// Scope plus the token source built from the credentials file.
	assert.Len(t, opts, 2)
}

func TestDriveClientOptionsMissingFile(t *testing.T) {
	_, err := driveClientOptions(context.Background(), DriveConfig{
		CredentialsFile: filepath.Join(t.TempDir(), "nope.json"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read credentials file")
}

func TestDriveClientOptionsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"unknown"}`), 0o600))

	_, err := driveClientOptions(context.Background(), DriveConfig{CredentialsFile: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse credentials file")
}
