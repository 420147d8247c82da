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

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/driveup/config"
	"github.com/cardinalhq/driveup/internal/localfiles"
	"github.com/cardinalhq/driveup/internal/pathresolver"
	"github.com/cardinalhq/driveup/internal/remote"
	"github.com/cardinalhq/driveup/internal/uploader"
	"github.com/cardinalhq/driveup/internal/workqueue"
)

var (
	srcDirs       []string
	dstPath       string
	globPattern   string
	regexPattern  string
	overwrite     bool
	queueKey      string
	localStoreDir string
)

func init() {
	uploadCmd.Flags().StringArrayVarP(&srcDirs, "src", "s", nil,
		"Directory containing files to cache for upload (repeatable). Only the first worker of a batch should pass it.")
	uploadCmd.Flags().StringVarP(&dstPath, "dst", "d", "",
		"Slash-separated remote directory where files will be uploaded to")
	_ = uploadCmd.MarkFlagRequired("dst")
	uploadCmd.Flags().StringVarP(&globPattern, "glob", "g", "",
		"Glob pattern for matching file names")
	uploadCmd.Flags().StringVarP(&regexPattern, "re", "r", "",
		"Regex pattern for matching file paths")
	uploadCmd.Flags().BoolVarP(&overwrite, "overwrite-existing", "o", false,
		"Enqueue files even when a same-named file already exists in the destination")
	uploadCmd.Flags().StringVarP(&queueKey, "queue-key", "k", "",
		"Name of the shared work queue (defaults to the configured key)")
	uploadCmd.Flags().StringVar(&localStoreDir, "local-store", "",
		"Upload into a local directory instead of Google Drive (for dry runs)")

	rootCmd.AddCommand(uploadCmd)
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Seed the shared queue from local directories and drain it into the destination",
	Long: `With --src, discover local files, cache the ones not already present in the
destination into the shared queue, then drain the queue. Without --src, join
an in-flight batch and drain only.`,
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupService("upload")
	defer cancel()

	c, queue, err := buildCoordinator(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = queue.Close() }()

	return c.Run(ctx, uploader.RunOptions{
		SourceDirs: srcDirs,
		DestPath:   dstPath,
		Filter:     localfiles.Filter{Glob: globPattern, Regex: regexPattern},
		Overwrite:  overwrite,
	})
}

// buildCoordinator constructs the injected service handles from config and
// flags. The returned closer releases the queue connection.
func buildCoordinator(ctx context.Context) (*uploader.Coordinator, *workqueue.RedisStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if queueKey != "" {
		cfg.Upload.QueueKey = queueKey
	}

	queue, err := workqueue.NewRedisStore(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to queue store: %w", err)
	}

	var store remote.Store
	if localStoreDir != "" {
		store = remote.NewFileStore(localStoreDir)
	} else {
		store, err = remote.NewDriveStore(ctx, cfg.Drive)
		if err != nil {
			_ = queue.Close()
			return nil, nil, fmt.Errorf("connect to drive: %w", err)
		}
	}

	c := uploader.New(store, pathresolver.New(store, cfg.Resolver), queue, cfg.Upload)
	return c, queue, nil
}
