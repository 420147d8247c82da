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
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/driveup/internal/localfiles"
)

func init() {
	seedCmd.Flags().StringArrayVarP(&srcDirs, "src", "s", nil,
		"Directory containing files to cache for upload (repeatable)")
	_ = seedCmd.MarkFlagRequired("src")
	seedCmd.Flags().StringVarP(&dstPath, "dst", "d", "",
		"Slash-separated remote directory where files will be uploaded to")
	_ = seedCmd.MarkFlagRequired("dst")
	seedCmd.Flags().StringVarP(&globPattern, "glob", "g", "",
		"Glob pattern for matching file names")
	seedCmd.Flags().StringVarP(&regexPattern, "re", "r", "",
		"Regex pattern for matching file paths")
	seedCmd.Flags().BoolVarP(&overwrite, "overwrite-existing", "o", false,
		"Enqueue files even when a same-named file already exists in the destination")
	seedCmd.Flags().StringVarP(&queueKey, "queue-key", "k", "",
		"Name of the shared work queue (defaults to the configured key)")
	seedCmd.Flags().StringVar(&localStoreDir, "local-store", "",
		"Resolve the destination in a local directory instead of Google Drive")

	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Cache local files into the shared queue without uploading",
	Long: `Discover local files and cache the ones not already present in the
destination into the shared queue, then exit. Workers started afterwards with
the same queue key drain the batch.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupService("seed")
	defer cancel()

	c, queue, err := buildCoordinator(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = queue.Close() }()

	candidates, err := localfiles.Discover(ctx, srcDirs, localfiles.Filter{
		Glob:  globPattern,
		Regex: regexPattern,
	})
	if err != nil {
		return err
	}

	added, err := c.Seed(ctx, candidates, dstPath, overwrite)
	if err != nil {
		return err
	}
	slog.Info("Finished caching local files", slog.Int64("added", added))
	return nil
}
