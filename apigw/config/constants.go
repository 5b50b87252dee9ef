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
	"time"

	"github.com/docker/go-units"
)

const (
	// DefaultServerHost is default bind address of the api gateway.
	DefaultServerHost = "127.0.0.1"

	// DefaultServerPort is default port of the api gateway.
	DefaultServerPort = 4000

	// DefaultServerDataDir is default content store root, relative to the working directory.
	DefaultServerDataDir = "data"
)

const (
	// DefaultDatabaseURI is default database connection string.
	DefaultDatabaseURI = "sqlite:///./data/database.db"
)

const (
	// DefaultQueueHost is default address of the queue server.
	DefaultQueueHost = "127.0.0.1"

	// DefaultQueuePort is default port of the queue server.
	DefaultQueuePort = 6379
)

const (
	// DefaultObjectStorageRegion is default region of s3.
	DefaultObjectStorageRegion = "ap-southeast-1"
)

const (
	// DefaultMDXNpxPath is default binary running the mdx compiler.
	DefaultMDXNpxPath = "node"

	// DefaultMDXTimeout is default timeout of one mdx compilation.
	DefaultMDXTimeout = 2 * time.Minute

	// DefaultMDXConcurrency is default number of parallel compilations per plugin.
	DefaultMDXConcurrency = 4
)

const (
	// DefaultPluginPythonInterpreter runs python algorithms and providers.
	DefaultPluginPythonInterpreter = "python3"
)

var (
	// DefaultUploadMaxPluginSize is default size limit of a plugin package.
	DefaultUploadMaxPluginSize = Size(512 * units.MiB)

	// DefaultUploadMaxArtifactSize is default size limit of an uploaded model or dataset.
	DefaultUploadMaxArtifactSize = Size(4 * units.GiB)
)

const (
	// DefaultCacheTTL is default ttl of cached mdx bundles.
	DefaultCacheTTL = 10 * time.Minute

	// DefaultLocalCacheTTL is default ttl of the in process bundle cache.
	DefaultLocalCacheTTL = 30 * time.Second

	// DefaultLocalCacheSize is default number of bundles kept in process.
	DefaultLocalCacheSize = 1000
)

const (
	// DefaultMetricsAddr is default address of the metrics server.
	DefaultMetricsAddr = ":8000"
)

const (
	// DefaultWorkerConcurrency is default number of test runs executed at once.
	DefaultWorkerConcurrency = 1

	// DefaultWorkerBlockTimeout is default blocking window of a queue read.
	DefaultWorkerBlockTimeout = 5 * time.Second

	// DefaultWorkerProgressInterval is default minimum interval between progress updates.
	DefaultWorkerProgressInterval = time.Second
)

const (
	// DefaultLogLevel is default level of the root logger.
	DefaultLogLevel = "info"
)
