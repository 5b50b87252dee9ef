/*
 *     Copyright 2024 The AI Verify Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aiverify-foundation/aiverify-sub001/apigw"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/metrics"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/worker"
	"github.com/aiverify-foundation/aiverify-sub001/cmd/dependency"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "run test runs from the work stream",
	Long: `worker reads test run tasks from the work stream as a member of the
worker consumer group, runs the algorithms and reports progress and results.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := dependency.InitConfig(cmd, cfg); err != nil {
			return errors.Wrap(err, "init worker config")
		}

		if err := dependency.InitLogger(cfg, logger.InitWorker); err != nil {
			return errors.Wrap(err, "init worker logger")
		}

		return runWorker(cmd.Context())
	},
}

func init() {
	flags := workerCmd.Flags()
	flags.String("consumer", cfg.Worker.Consumer, "consumer name within the worker group, defaults to the hostname")
	flags.Int("concurrency", cfg.Worker.Concurrency, "number of test runs executed at once")

	if err := viper.BindPFlag("worker.consumer", flags.Lookup("consumer")); err != nil {
		panic(err)
	}

	if err := viper.BindPFlag("worker.concurrency", flags.Lookup("concurrency")); err != nil {
		panic(err)
	}
}

func runWorker(ctx context.Context) error {
	env, err := apigw.NewEnvironment(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := env.Close(); err != nil {
			logger.Warnf("close environment: %v", err)
		}
	}()

	if cfg.Metrics.Enable {
		metricsServer := metrics.New(&cfg.Metrics)
		go func() {
			logger.Infof("started metrics server at %s", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Errorf("metrics server closed unexpect: %+v", err)
			}
		}()
		defer metricsServer.Close()
	}

	w := worker.New(env.Queue, env.Orchestrator, env.Registry, env.Content,
		worker.WithConsumer(cfg.Worker.Consumer),
		worker.WithConcurrency(cfg.Worker.Concurrency),
		worker.WithProgressInterval(cfg.Worker.ProgressInterval),
		worker.WithWorkDir(cfg.Server.WorkDir),
	)

	err = w.Serve(ctx)
	stats := w.Stats()
	logger.Infof("worker stopped, succeeded %d failed %d skipped %d", stats.Succeeded, stats.Failed, stats.Skipped)
	return err
}
