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
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/mitchellh/mapstructure"
	"github.com/phayes/freeport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/config"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/version"
)

// DefaultConfigPath is the configuration file read when --config is not set.
var DefaultConfigPath = filepath.Join("/etc", "aiverify", "apigw.yaml")

// VersionCmd prints the build information.
var VersionCmd = &cobra.Command{
	Use:               "version",
	Short:             "show version",
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Version:    %s\n", version.GitVersion)
		fmt.Fprintf(out, "Commit:     %s\n", version.GitCommit)
		fmt.Fprintf(out, "Built:      %s\n", version.BuildTime)
		fmt.Fprintf(out, "Go version: %s\n", version.GoVersion)
		fmt.Fprintf(out, "Platform:   %s\n", version.Platform)
	},
}

// InitCommandAndConfig registers the persistent flags shared by every command.
func InitCommandAndConfig(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.PersistentFlags()
	flags.Bool("console", cfg.Console, "whether logger output records to the stdout")
	flags.Bool("verbose", cfg.Verbose, "whether logger use debug level")
	flags.String("log-level", cfg.LogLevel, "root logger level, one of debug, info, warn and error")
	flags.String("config", DefaultConfigPath, "the path of configuration file with yaml extension name")

	for _, name := range []string{"console", "verbose"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	if err := viper.BindPFlag("logLevel", flags.Lookup("log-level")); err != nil {
		panic(err)
	}

	if err := viper.BindPFlag("config", flags.Lookup("config")); err != nil {
		panic(err)
	}

	cmd.AddCommand(VersionCmd)
}

// InitConfig reads the configuration file, binds the environment options and
// decodes the result into cfg.
func InitConfig(cmd *cobra.Command, cfg *config.Config) error {
	for _, binding := range config.EnvBindings {
		if err := viper.BindEnv(binding.Key, binding.Env); err != nil {
			return err
		}
	}

	viper.SetConfigFile(viper.GetString("config"))
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		// The default configuration file is optional
		if f := cmd.Flag("config"); !errors.Is(err, os.ErrNotExist) || (f != nil && f.Changed) {
			return err
		}
	}

	if err := viper.Unmarshal(cfg, initDecoderConfig); err != nil {
		return err
	}

	if err := cfg.Convert(); err != nil {
		return err
	}

	return cfg.Validate()
}

// InitLogger initializes the loggers of a process, apigw or worker.
func InitLogger(cfg *config.Config, init func(verbose, console bool, level zapcore.Level, dir string) error) error {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	if err := init(cfg.Verbose, cfg.Console, level, cfg.LogDir); err != nil {
		return err
	}

	s, _ := yaml.Marshal(cfg)
	logger.Debugf("configuration:\n%s", string(s))

	InitVerboseMode(cfg.Verbose, cfg.PProfPort)
	return nil
}

// InitVerboseMode serves pprof and statsview on localhost in verbose mode.
func InitVerboseMode(verbose bool, pprofPort int) {
	if !verbose {
		return
	}

	go func() {
		if pprofPort == 0 {
			pprofPort, _ = freeport.GetFreePort()
		}

		debugAddr := fmt.Sprintf("localhost:%d", pprofPort)
		viewer.SetConfiguration(viewer.WithAddr(debugAddr))

		logger.With("pprof", fmt.Sprintf("http://%s/debug/pprof", debugAddr),
			"statsview", fmt.Sprintf("http://%s/debug/statsview", debugAddr)).
			Infof("enable pprof at %s", debugAddr)

		if err := statsview.New().Start(); err != nil {
			logger.Warnf("serve pprof error: %v", err)
		}
	}()
}

// InitTracer exports spans to a jaeger collector and returns the shutdown
// function of the provider.
func InitTracer(ctx context.Context, serviceName, endpoint string) (func(context.Context) error, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version.GitVersion),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	logger.Infof("export traces to %s", endpoint)
	return tp.Shutdown, nil
}

func initDecoderConfig(dc *mapstructure.DecoderConfig) {
	dc.TagName = "mapstructure"
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}
