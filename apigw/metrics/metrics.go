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

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/config"
	"github.com/aiverify-foundation/aiverify-sub001/version"
)

const (
	Namespace = "aiverify"
	Subsystem = "apigw"
)

// Variables declared for metrics.
var (
	PluginInstallCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "plugin_install_total",
		Help:      "Counter of the number of the plugin installs.",
	}, []string{"stock"})

	PluginInstallFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "plugin_install_failure_total",
		Help:      "Counter of the number of failed of the plugin installs.",
	}, []string{"stock"})

	ArtifactValidateCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "artifact_validate_total",
		Help:      "Counter of the number of the model and dataset validations.",
	}, []string{"kind", "status"})

	TestRunCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "test_run_total",
		Help:      "Counter of the number of the test run operations.",
	}, []string{"operation"})

	TestRunFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "test_run_failure_total",
		Help:      "Counter of the number of failed of the test run operations.",
	}, []string{"operation"})

	QueueFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "queue_failure_total",
		Help:      "Counter of the number of failed of the queue requests.",
	}, []string{"operation"})

	WorkerTaskCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "worker",
		Name:      "task_total",
		Help:      "Counter of the number of the tasks executed by the worker.",
	}, []string{"status"})

	VersionGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "version",
		Help:      "Version info of the service.",
	}, []string{"major", "minor", "git_version", "git_commit", "platform", "build_time", "go_version"})
)

// Test run operations.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationCancel = "cancel"
	OperationDelete = "delete"
	OperationPing   = "ping"
	OperationRead   = "read"
	OperationAck    = "ack"
)

func New(cfg *config.MetricsConfig) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	VersionGauge.WithLabelValues(version.Major, version.Minor, version.GitVersion, version.GitCommit, version.Platform, version.BuildTime, version.GoVersion).Set(1)
	return &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}
}
