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
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/driveup/config"
	"github.com/cardinalhq/driveup/internal/workqueue"
)

var queueKeyFlag string

func init() {
	queueCmd.PersistentFlags().StringVarP(&queueKeyFlag, "queue-key", "k", "",
		"Name of the shared work queue (defaults to the configured key)")
	queueCmd.AddCommand(queueDepthCmd)
	queueCmd.AddCommand(queuePurgeCmd)
	rootCmd.AddCommand(queueCmd)
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and manage the shared work queue",
}

var queueDepthCmd = &cobra.Command{
	Use:   "depth",
	Short: "Print the number of items remaining in the shared queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := setupService("queue-depth")
		defer cancel()

		queue, key, err := openQueue(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = queue.Close() }()

		depth, err := workqueue.Depth(ctx, queue, key)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d\n", key, depth)
		return nil
	},
}

var queuePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop every pending item from the shared queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := setupService("queue-purge")
		defer cancel()

		queue, key, err := openQueue(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = queue.Close() }()

		if err := queue.Purge(ctx, key); err != nil {
			return err
		}
		slog.Info("Purged work queue", slog.String("queueKey", key))
		return nil
	},
}

func openQueue(ctx context.Context) (*workqueue.RedisStore, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	key := cfg.Upload.QueueKey
	if queueKeyFlag != "" {
		key = queueKeyFlag
	}
	queue, err := workqueue.NewRedisStore(ctx, cfg.Redis)
	if err != nil {
		return nil, "", fmt.Errorf("connect to queue store: %w", err)
	}
	return queue, key, nil
}
