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
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	uploadCount    metric.Int64Counter
	uploadBytes    metric.Int64Counter
	foldersCreated metric.Int64Counter
	listErrors     metric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/driveup/internal/remote")

	var err error
	uploadCount, err = meter.Int64Counter(
		"driveup.remote.upload.count",
		metric.WithDescription("Number of files uploaded to the remote store"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create upload.count counter: %w", err))
	}

	uploadBytes, err = meter.Int64Counter(
		"driveup.remote.upload.bytes",
		metric.WithDescription("Bytes uploaded to the remote store"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create upload.bytes counter: %w", err))
	}

	foldersCreated, err = meter.Int64Counter(
		"driveup.remote.folders.created",
		metric.WithDescription("Number of remote folders created during path resolution"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create folders.created counter: %w", err))
	}

	listErrors, err = meter.Int64Counter(
		"driveup.remote.list.errors",
		metric.WithDescription("Number of remote listing errors by kind"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create list.errors counter: %w", err))
	}
}
