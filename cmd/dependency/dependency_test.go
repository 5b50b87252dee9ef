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

package dependency

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/config"
)

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T, cmd *cobra.Command, dir string)
		expect func(t *testing.T, cfg *config.Config, dir string, err error)
	}{
		{
			name: "environment options without config file",
			setup: func(t *testing.T, cmd *cobra.Command, dir string) {
				t.Setenv("APIGW_PORT", "4100")
				t.Setenv("APIGW_DATA_DIR", dir)
				t.Setenv("VALKEY_HOST_ADDRESS", "valkey")
				t.Setenv("APIGW_LOG_LEVEL", "debug")
			},
			expect: func(t *testing.T, cfg *config.Config, dir string, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(4100, cfg.Server.Port)
				assert.Equal(dir, cfg.Server.DataDir)
				assert.Equal(filepath.Join(dir, "tmp"), cfg.Server.WorkDir)
				assert.Equal(filepath.Join(dir, "logs"), cfg.LogDir)
				assert.Equal(dir, cfg.ObjectStorage.URL)
				assert.Equal("valkey", cfg.Queue.Host)
				assert.Equal("debug", cfg.LogLevel)
			},
		},
		{
			name: "s3 database uri selects the object storage",
			setup: func(t *testing.T, cmd *cobra.Command, dir string) {
				t.Setenv("APIGW_DATA_DIR", dir)
				t.Setenv("APIGW_DB_URI", "s3://bucket/store/")
				t.Setenv("AWS_REGION_NAME", "us-east-1")
			},
			expect: func(t *testing.T, cfg *config.Config, dir string, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("s3://bucket/store/", cfg.ObjectStorage.URL)
				assert.Equal("us-east-1", cfg.ObjectStorage.Region)
				assert.Equal(config.DefaultDatabaseURI, cfg.Database.URI)
			},
		},
		{
			name: "config file",
			setup: func(t *testing.T, cmd *cobra.Command, dir string) {
				path := filepath.Join(dir, "apigw.yaml")
				require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 4200
  dataDir: `+dir+`
upload:
  maxPluginSize: 1GiB
plugin:
  providerDirs: /opt/providers,/usr/share/providers
worker:
  concurrency: 4
  blockTimeout: 3s
`), 0644))
				require.NoError(t, cmd.PersistentFlags().Set("config", path))
			},
			expect: func(t *testing.T, cfg *config.Config, dir string, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(4200, cfg.Server.Port)
				assert.Equal(config.Size(units.GiB), cfg.Upload.MaxPluginSize)
				assert.Equal(config.DefaultUploadMaxArtifactSize, cfg.Upload.MaxArtifactSize)
				assert.Equal([]string{"/opt/providers", "/usr/share/providers"}, cfg.Plugin.ProviderDirs)
				assert.Equal(4, cfg.Worker.Concurrency)
				assert.Equal(3*time.Second, cfg.Worker.BlockTimeout)
			},
		},
		{
			name: "missing config file set by flag",
			setup: func(t *testing.T, cmd *cobra.Command, dir string) {
				require.NoError(t, cmd.PersistentFlags().Set("config", filepath.Join(dir, "missing.yaml")))
			},
			expect: func(t *testing.T, cfg *config.Config, dir string, err error) {
				assert.True(t, os.IsNotExist(err))
			},
		},
		{
			name: "invalid config",
			setup: func(t *testing.T, cmd *cobra.Command, dir string) {
				t.Setenv("APIGW_DATA_DIR", dir)
				t.Setenv("APIGW_LOG_LEVEL", "loud")
			},
			expect: func(t *testing.T, cfg *config.Config, dir string, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()

			dir := t.TempDir()
			cfg := config.New()
			cmd := &cobra.Command{Use: "apigw"}
			InitCommandAndConfig(cmd, cfg)
			require.NoError(t, cmd.PersistentFlags().Set("config", filepath.Join(dir, "default.yaml")))
			cmd.PersistentFlags().Lookup("config").Changed = false

			tc.setup(t, cmd, dir)
			tc.expect(t, cfg, dir, InitConfig(cmd, cfg))
		})
	}
}
