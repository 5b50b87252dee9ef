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
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/aiverify-foundation/aiverify-sub001/apigw"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/pluginstore"
	"github.com/aiverify-foundation/aiverify-sub001/cmd/dependency"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/schemas"
)

var pluginCmd = &cobra.Command{
	Use:               "plugin",
	Short:             "manage plugin packages",
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
}

var pluginValidateCmd = &cobra.Command{
	Use:               "validate <dir>",
	Short:             "validate a plugin directory without installing it",
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := dependency.InitConfig(cmd, cfg); err != nil {
			return errors.Wrap(err, "init apigw config")
		}

		registry, err := schemas.New(cfg.Plugin.SchemaDir)
		if err != nil {
			return err
		}

		// Validation only reads the package and the schemas
		store := pluginstore.New(nil, nil, nil, registry, nil)
		plugin, err := store.ValidatePluginDirectory(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s %s: %d algorithms, %d widgets, %d input blocks, %d templates\n",
			plugin.Meta.GID, plugin.Meta.Version,
			len(plugin.Algorithms), len(plugin.Widgets), len(plugin.InputBlocks), len(plugin.Templates))
		return nil
	},
}

var pluginInstallStockCmd = &cobra.Command{
	Use:               "install-stock [dir]",
	Short:             "reinstall the stock plugins",
	Long:              `install-stock removes stock plugins no test result refers to and installs every plugin folder of the stock directory.`,
	Args:              cobra.MaximumNArgs(1),
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := dependency.InitConfig(cmd, cfg); err != nil {
			return errors.Wrap(err, "init apigw config")
		}

		if err := dependency.InitLogger(cfg, logger.InitApigw); err != nil {
			return errors.Wrap(err, "init apigw logger")
		}

		stockDir := cfg.Plugin.StockDir
		if len(args) > 0 {
			stockDir = args[0]
		}

		if stockDir == "" {
			return errors.New("stock directory is not configured")
		}

		ctx := cmd.Context()
		env, err := apigw.NewEnvironment(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close() // nolint: errcheck

		installed, err := env.Plugins.ScanStockPlugins(ctx, stockDir)
		if err != nil {
			return err
		}

		fmt.Printf("installed %d stock plugins from %s\n", installed, stockDir)
		return nil
	},
}

func init() {
	pluginCmd.AddCommand(pluginValidateCmd)
	pluginCmd.AddCommand(pluginInstallStockCmd)
}
