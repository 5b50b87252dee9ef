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

package router

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	ginprometheus "github.com/mcuadros/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/config"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/handlers"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/middlewares"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/service"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
)

const (
	PrometheusSubsystemName = "aiverify_apigw"
	OtelServiceName         = "aiverify-apigw"
)

func Init(cfg *config.Config, service service.Service) (*gin.Engine, error) {
	// Set mode.
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	// Custom binding tags.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := types.RegisterValidations(v); err != nil {
			return nil, err
		}
	}

	r := gin.New()
	h := handlers.New(service, handlers.WithWorkDir(cfg.Server.WorkDir))

	// Prometheus metrics.
	p := ginprometheus.NewPrometheus(PrometheusSubsystemName)
	// URL removes query string and path parameters.
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		if route := c.FullPath(); route != "" {
			return route
		}

		return c.Request.URL.Path
	}
	p.Use(r)

	// Opentelemetry
	if cfg.Tracing.Jaeger != "" {
		r.Use(otelgin.Middleware(OtelServiceName))
	}

	// CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true

	// Middleware
	r.Use(gin.Recovery())
	r.Use(ginzap.Ginzap(logger.GinLogger.Desugar(), time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger.GinLogger.Desugar(), true))
	r.Use(middlewares.Error())
	r.Use(cors.New(corsConfig))

	pluginLimit := middlewares.BodyLimit(int64(cfg.Upload.MaxPluginSize))
	artifactLimit := middlewares.BodyLimit(int64(cfg.Upload.MaxArtifactSize))

	// Router
	apiv1 := r.Group("/api/v1")

	// Plugin
	pl := apiv1.Group("/plugins")
	pl.POST("", pluginLimit, h.UploadPlugin)
	pl.DELETE(":gid", h.DestroyPlugin)
	pl.DELETE("", h.DestroyPlugins)
	pl.GET(":gid", h.GetPlugin)
	pl.GET("", h.GetPlugins)
	pl.GET(":gid/download", h.DownloadPlugin)
	pl.GET(":gid/algorithms/:cid", h.GetAlgorithm)
	pl.GET(":gid/algorithms/:cid/download", h.DownloadAlgorithm)
	pl.GET(":gid/bundles/:cid", h.GetBundle)

	// Test Model
	tm := apiv1.Group("/test_models")
	tm.POST("", artifactLimit, h.UploadTestModel)
	tm.DELETE(":id", h.DestroyTestModel)
	tm.PATCH(":id", h.UpdateTestModel)
	tm.GET(":id", h.GetTestModel)
	tm.GET("", h.GetTestModels)

	// Test Dataset
	td := apiv1.Group("/test_datasets")
	td.POST("", artifactLimit, h.UploadTestDataset)
	td.DELETE(":id", h.DestroyTestDataset)
	td.PATCH(":id", h.UpdateTestDataset)
	td.GET(":id", h.GetTestDataset)
	td.GET("", h.GetTestDatasets)

	// Test Run
	tr := apiv1.Group("/test_runs")
	tr.POST("", h.CreateTestRun)
	tr.DELETE(":id", h.DestroyTestRun)
	tr.PATCH(":id", h.UpdateTestRun)
	tr.POST(":id/cancel", h.CancelTestRun)
	tr.GET(":id", h.GetTestRun)
	tr.GET("", h.GetTestRuns)

	// Test Result
	rs := apiv1.Group("/test_results")
	rs.DELETE(":id", h.DestroyTestResult)
	rs.PATCH(":id", h.UpdateTestResult)
	rs.GET(":id", h.GetTestResult)
	rs.GET("", h.GetTestResults)
	rs.GET(":id/artifacts/*filename", h.GetTestResultArtifact)

	// Project Template
	pt := apiv1.Group("/project_templates")
	pt.POST("", h.CreateProjectTemplate)
	pt.DELETE(":id", h.DestroyProjectTemplate)
	pt.PATCH(":id", h.UpdateProjectTemplate)
	pt.GET(":id", h.GetProjectTemplate)
	pt.GET("", h.GetProjectTemplates)

	// Health Check
	r.GET("/healthz", h.GetHealth)

	return r, nil
}
