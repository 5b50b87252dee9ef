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
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/aiverify-foundation/aiverify-sub001/apigw"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/config"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/router"
	"github.com/aiverify-foundation/aiverify-sub001/cmd/dependency"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/version"
)

var (
	// Initialize default apigw config
	cfg = config.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "apigw",
	Short: "the api gateway of ai verify",
	Long: `apigw is a long-running process and is mainly responsible
for installing plugins, validating test artifacts and queueing test runs
for workers, offering http apis to the portal.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := dependency.InitConfig(cmd, cfg); err != nil {
			return errors.Wrap(err, "init apigw config")
		}

		if err := dependency.InitLogger(cfg, logger.InitApigw); err != nil {
			return errors.Wrap(err, "init apigw logger")
		}

		return runApigw(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error(err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Initialize cobra
	dependency.InitCommandAndConfig(rootCmd, cfg)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(pluginCmd)
}

func runApigw(ctx context.Context) error {
	logger.Infof("version: %s", version.Info())

	// Initialize tracing
	if cfg.Tracing.Jaeger != "" {
		shutdown, err := dependency.InitTracer(ctx, router.OtelServiceName, cfg.Tracing.Jaeger)
		if err != nil {
			return errors.Wrap(err, "init tracer")
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warnf("shutdown tracer: %v", err)
			}
		}()
	}

	svr, err := apigw.New(ctx, cfg)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- svr.Serve()
	}()

	select {
	case err := <-serveErr:
		svr.Stop()
		return err
	case <-ctx.Done():
		logger.Info("received quit signal")
		svr.Stop()
		return <-serveErr
	}
}
