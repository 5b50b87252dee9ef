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

package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"

	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
)

type Config struct {
	// Verbose forces debug logging.
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`

	// Console writes logs to stdout instead of files.
	Console bool `yaml:"console" mapstructure:"console"`

	// LogLevel is the level of the root logger.
	LogLevel string `yaml:"logLevel" mapstructure:"logLevel"`

	// LogDir is the log directory, defaults to <dataDir>/logs.
	LogDir string `yaml:"logDir" mapstructure:"logDir"`

	// PProfPort is the port of the debug server in verbose mode, a free port when zero.
	PProfPort int `yaml:"pprofPort" mapstructure:"pprofPort"`

	// Server configuration.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Database configuration.
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Queue configuration.
	Queue QueueConfig `yaml:"queue" mapstructure:"queue"`

	// ObjectStorage configuration.
	ObjectStorage ObjectStorageConfig `yaml:"objectStorage" mapstructure:"objectStorage"`

	// MDX compiler configuration.
	MDX MDXConfig `yaml:"mdx" mapstructure:"mdx"`

	// Plugin configuration.
	Plugin PluginConfig `yaml:"plugin" mapstructure:"plugin"`

	// Upload configuration.
	Upload UploadConfig `yaml:"upload" mapstructure:"upload"`

	// Cache configuration.
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`

	// Metrics configuration.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	// Tracing configuration.
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`

	// Worker configuration.
	Worker WorkerConfig `yaml:"worker" mapstructure:"worker"`
}

type ServerConfig struct {
	// Host is the bind address.
	Host string `yaml:"host" mapstructure:"host"`

	// Port is the listen port.
	Port int `yaml:"port" mapstructure:"port"`

	// DataDir is the root of the local content store.
	DataDir string `yaml:"dataDir" mapstructure:"dataDir"`

	// WorkDir holds temporary upload and staging directories, defaults to <dataDir>/tmp.
	WorkDir string `yaml:"workDir" mapstructure:"workDir"`
}

type DatabaseConfig struct {
	// URI selects the driver by scheme: sqlite://, mysql:// or postgres://.
	URI string `yaml:"uri" mapstructure:"uri"`

	// Migrate runs schema migration on startup.
	Migrate bool `yaml:"migrate" mapstructure:"migrate"`
}

type QueueConfig struct {
	// Host is the queue server address.
	Host string `yaml:"host" mapstructure:"host"`

	// Port is the queue server port.
	Port int `yaml:"port" mapstructure:"port"`

	// Username is the server username.
	Username string `yaml:"username" mapstructure:"username"`

	// Password is the server password.
	Password string `yaml:"password" mapstructure:"password"`

	// DB is the server database.
	DB int `yaml:"db" mapstructure:"db"`
}

type ObjectStorageConfig struct {
	// URL is the content store root, a directory or an s3:// or oss:// url.
	// Empty means the server data directory.
	URL string `yaml:"url" mapstructure:"url"`

	// Region is the object storage region.
	Region string `yaml:"region" mapstructure:"region"`

	// Endpoint is the object storage endpoint, empty for the aws default.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// AccessKey is the object storage access key.
	AccessKey string `yaml:"accessKey" mapstructure:"accessKey"`

	// SecretKey is the object storage secret key.
	SecretKey string `yaml:"secretKey" mapstructure:"secretKey"`

	// S3ForcePathStyle sets force path style for s3.
	S3ForcePathStyle bool `yaml:"s3ForcePathStyle" mapstructure:"s3ForcePathStyle"`
}

type MDXConfig struct {
	// NpxPath is the binary running the compiler scripts.
	NpxPath string `yaml:"npxPath" mapstructure:"npxPath"`

	// CompilerScript compiles widget and input block mdx.
	CompilerScript string `yaml:"compilerScript" mapstructure:"compilerScript"`

	// SummaryCompilerScript compiles input block summary mdx.
	SummaryCompilerScript string `yaml:"summaryCompilerScript" mapstructure:"summaryCompilerScript"`

	// Timeout bounds one compilation.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Concurrency bounds parallel compilations per plugin.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

type PluginConfig struct {
	// StockDir holds the built-in plugins scanned on first startup.
	StockDir string `yaml:"stockDir" mapstructure:"stockDir"`

	// SchemaDir overrides the built-in json schema documents.
	SchemaDir string `yaml:"schemaDir" mapstructure:"schemaDir"`

	// ProviderDirs are walked for capability provider manifests.
	ProviderDirs []string `yaml:"providerDirs" mapstructure:"providerDirs"`

	// PythonInterpreter runs python algorithms.
	PythonInterpreter string `yaml:"pythonInterpreter" mapstructure:"pythonInterpreter"`
}

type UploadConfig struct {
	// MaxPluginSize limits a plugin package upload, e.g. 512MiB.
	MaxPluginSize Size `yaml:"maxPluginSize" mapstructure:"maxPluginSize"`

	// MaxArtifactSize limits a model or dataset upload, e.g. 4GiB.
	MaxArtifactSize Size `yaml:"maxArtifactSize" mapstructure:"maxArtifactSize"`
}

type CacheConfig struct {
	// TTL is the ttl of bundles cached in the queue server.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`

	// LocalTTL is the ttl of bundles cached in process.
	LocalTTL time.Duration `yaml:"localTTL" mapstructure:"localTTL"`

	// LocalSize is the number of bundles cached in process.
	LocalSize int `yaml:"localSize" mapstructure:"localSize"`
}

type MetricsConfig struct {
	// Enable metrics service.
	Enable bool `yaml:"enable" mapstructure:"enable"`

	// Addr is the metrics service address.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

type TracingConfig struct {
	// Jaeger is the jaeger collector endpoint, tracing is disabled when empty.
	Jaeger string `yaml:"jaeger" mapstructure:"jaeger"`
}

type WorkerConfig struct {
	// Consumer is the consumer name within the group, defaults to the hostname.
	Consumer string `yaml:"consumer" mapstructure:"consumer"`

	// Concurrency is the number of test runs executed at once.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`

	// BlockTimeout is the blocking window of a queue read.
	BlockTimeout time.Duration `yaml:"blockTimeout" mapstructure:"blockTimeout"`

	// ProgressInterval is the minimum interval between progress updates of a run.
	ProgressInterval time.Duration `yaml:"progressInterval" mapstructure:"progressInterval"`
}

// Size is a byte size decoded from human units such as 512MiB.
type Size int64

// UnmarshalText parses human readable sizes.
func (s *Size) UnmarshalText(text []byte) error {
	n, err := units.RAMInBytes(string(text))
	if err != nil {
		return err
	}

	*s = Size(n)
	return nil
}

func (s Size) String() string {
	return units.BytesSize(float64(s))
}

// EnvBinding maps an environment variable onto a config key.
type EnvBinding struct {
	Key string
	Env string
}

// EnvBindings are the environment variables recognized by the api gateway.
var EnvBindings = []EnvBinding{
	{Key: "server.host", Env: "APIGW_HOST_ADDRESS"},
	{Key: "server.port", Env: "APIGW_PORT"},
	{Key: "database.uri", Env: "APIGW_DB_URI"},
	{Key: "server.dataDir", Env: "APIGW_DATA_DIR"},
	{Key: "logLevel", Env: "APIGW_LOG_LEVEL"},
	{Key: "objectStorage.region", Env: "AWS_REGION_NAME"},
	{Key: "queue.host", Env: "VALKEY_HOST_ADDRESS"},
	{Key: "queue.port", Env: "VALKEY_PORT"},
	{Key: "mdx.npxPath", Env: "NPX_PATH"},
}

// New default configuration.
func New() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Server: ServerConfig{
			Host:    DefaultServerHost,
			Port:    DefaultServerPort,
			DataDir: DefaultServerDataDir,
		},
		Database: DatabaseConfig{
			URI:     DefaultDatabaseURI,
			Migrate: true,
		},
		Queue: QueueConfig{
			Host: DefaultQueueHost,
			Port: DefaultQueuePort,
		},
		ObjectStorage: ObjectStorageConfig{
			Region: DefaultObjectStorageRegion,
		},
		MDX: MDXConfig{
			NpxPath:     DefaultMDXNpxPath,
			Timeout:     DefaultMDXTimeout,
			Concurrency: DefaultMDXConcurrency,
		},
		Plugin: PluginConfig{
			PythonInterpreter: DefaultPluginPythonInterpreter,
		},
		Upload: UploadConfig{
			MaxPluginSize:   DefaultUploadMaxPluginSize,
			MaxArtifactSize: DefaultUploadMaxArtifactSize,
		},
		Cache: CacheConfig{
			TTL:       DefaultCacheTTL,
			LocalTTL:  DefaultLocalCacheTTL,
			LocalSize: DefaultLocalCacheSize,
		},
		Metrics: MetricsConfig{
			Enable: false,
			Addr:   DefaultMetricsAddr,
		},
		Worker: WorkerConfig{
			Concurrency:      DefaultWorkerConcurrency,
			BlockTimeout:     DefaultWorkerBlockTimeout,
			ProgressInterval: DefaultWorkerProgressInterval,
		},
	}
}

// Convert normalizes derived parameters.
func (cfg *Config) Convert() error {
	// An s3 database uri points the content store at the bucket and
	// leaves the relational store on the default sqlite file.
	if strings.HasPrefix(cfg.Database.URI, "s3://") {
		cfg.ObjectStorage.URL = cfg.Database.URI
		cfg.Database.URI = DefaultDatabaseURI
	}

	if cfg.Server.DataDir == "" {
		cfg.Server.DataDir = DefaultServerDataDir
	}

	dataDir, err := filepath.Abs(cfg.Server.DataDir)
	if err != nil {
		return err
	}
	cfg.Server.DataDir = dataDir

	if cfg.Server.WorkDir == "" {
		cfg.Server.WorkDir = filepath.Join(dataDir, "tmp")
	}

	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(dataDir, "logs")
	}

	if cfg.ObjectStorage.URL == "" {
		cfg.ObjectStorage.URL = dataDir
	}

	return nil
}

// Validate config parameters.
func (cfg *Config) Validate() error {
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}

	if cfg.Server.Host == "" {
		return errors.New("server requires parameter host")
	}

	if cfg.Server.Port <= 0 {
		return errors.New("server requires parameter port")
	}

	if cfg.Server.DataDir == "" {
		return errors.New("server requires parameter dataDir")
	}

	if _, err := DatabaseScheme(cfg.Database.URI); err != nil {
		return err
	}

	if cfg.Queue.Host == "" {
		return errors.New("queue requires parameter host")
	}

	if cfg.Queue.Port <= 0 {
		return errors.New("queue requires parameter port")
	}

	if strings.HasPrefix(cfg.ObjectStorage.URL, "s3://") && cfg.ObjectStorage.Region == "" {
		return errors.New("objectStorage requires parameter region")
	}

	if cfg.MDX.NpxPath == "" {
		return errors.New("mdx requires parameter npxPath")
	}

	if cfg.MDX.Concurrency <= 0 {
		return errors.New("mdx requires parameter concurrency")
	}

	if cfg.Plugin.PythonInterpreter == "" {
		return errors.New("plugin requires parameter pythonInterpreter")
	}

	if cfg.Upload.MaxPluginSize <= 0 {
		return errors.New("upload requires parameter maxPluginSize")
	}

	if cfg.Upload.MaxArtifactSize <= 0 {
		return errors.New("upload requires parameter maxArtifactSize")
	}

	if cfg.Cache.LocalSize < 0 {
		return errors.New("cache localSize must not be negative")
	}

	if cfg.Metrics.Enable && cfg.Metrics.Addr == "" {
		return errors.New("metrics requires parameter addr")
	}

	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker requires parameter concurrency")
	}

	if cfg.Worker.BlockTimeout <= 0 {
		return errors.New("worker requires parameter blockTimeout")
	}

	return nil
}

// QueueAddr returns host:port of the queue server.
func (cfg *Config) QueueAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Queue.Host, cfg.Queue.Port)
}

// ServerAddr returns host:port of the api gateway.
func (cfg *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
}

// Database schemes.
const (
	DatabaseSchemeSqlite   = "sqlite"
	DatabaseSchemeMysql    = "mysql"
	DatabaseSchemePostgres = "postgres"
)

// DatabaseScheme returns the driver selected by a database uri.
func DatabaseScheme(uri string) (string, error) {
	if uri == "" {
		return "", errors.New("database requires parameter uri")
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid database uri: %w", err)
	}

	switch u.Scheme {
	case DatabaseSchemeSqlite:
		return DatabaseSchemeSqlite, nil
	case DatabaseSchemeMysql:
		return DatabaseSchemeMysql, nil
	case DatabaseSchemePostgres, "postgresql":
		return DatabaseSchemePostgres, nil
	default:
		return "", fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}
