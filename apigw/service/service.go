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

//go:generate mockgen -destination mocks/service_mock.go -source service.go -package mocks

package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/artifactstore"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/cache"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/pluginstore"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/testrun"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	"github.com/aiverify-foundation/aiverify-sub001/internal/schemas"
)

type Service interface {
	UploadPlugin(context.Context, string) (*models.Plugin, error)
	GetPlugin(context.Context, string) (*models.Plugin, error)
	GetPlugins(context.Context) ([]models.Plugin, error)
	DestroyPlugin(context.Context, string) error
	DestroyPlugins(context.Context) error
	GetAlgorithm(context.Context, string, string) (*models.Algorithm, error)
	GetPluginZip(context.Context, string) ([]byte, error)
	GetAlgorithmZip(context.Context, string, string) ([]byte, error)
	GetBundle(context.Context, string, string, bool) ([]byte, error)

	UploadTestModel(context.Context, artifactstore.Upload, types.UploadTestModelRequest) (*models.TestModel, error)
	GetTestModel(context.Context, uint) (*models.TestModel, error)
	GetTestModels(context.Context, types.GetTestArtifactsQuery) ([]models.TestModel, int64, error)
	UpdateTestModel(context.Context, uint, types.UpdateTestArtifactRequest) (*models.TestModel, error)
	DestroyTestModel(context.Context, uint) error

	UploadTestDataset(context.Context, artifactstore.Upload, types.UploadTestDatasetRequest) (*models.TestDataset, error)
	GetTestDataset(context.Context, uint) (*models.TestDataset, error)
	GetTestDatasets(context.Context, types.GetTestArtifactsQuery) ([]models.TestDataset, int64, error)
	UpdateTestDataset(context.Context, uint, types.UpdateTestArtifactRequest) (*models.TestDataset, error)
	DestroyTestDataset(context.Context, uint) error

	CreateTestRun(context.Context, types.RunTestRequest) (*models.TestRun, error)
	GetTestRun(context.Context, string) (*models.TestRun, error)
	GetTestRuns(context.Context, types.GetTestRunsQuery) ([]models.TestRun, int64, error)
	UpdateTestRun(context.Context, string, types.UpdateTestRunRequest) (*models.TestRun, error)
	CancelTestRun(context.Context, string) (*models.TestRun, error)
	DestroyTestRun(context.Context, string) error

	GetTestResult(context.Context, uint) (*models.TestResult, error)
	GetTestResults(context.Context, types.GetTestResultsQuery) ([]models.TestResult, int64, error)
	UpdateTestResult(context.Context, uint, types.UpdateTestResultRequest) (*models.TestResult, error)
	DestroyTestResult(context.Context, uint) error
	GetTestResultArtifact(context.Context, uint, string) (*models.TestArtifact, []byte, error)

	CreateProjectTemplate(context.Context, types.CreateProjectTemplateRequest) (*models.ProjectTemplate, error)
	GetProjectTemplate(context.Context, uint) (*models.ProjectTemplate, error)
	GetProjectTemplates(context.Context, types.GetProjectTemplatesQuery) ([]models.ProjectTemplate, int64, error)
	UpdateProjectTemplate(context.Context, uint, types.UpdateProjectTemplateRequest) (*models.ProjectTemplate, error)
	DestroyProjectTemplate(context.Context, uint) error

	Ping(context.Context) error
}

type service struct {
	db        *gorm.DB
	cache     *cache.Cache
	schemas   *schemas.Registry
	plugins   *pluginstore.Store
	artifacts *artifactstore.Store
	testRuns  *testrun.Orchestrator
	workDir   string
}

// Option is a functional option for service
type Option func(s *service)

// WithDatabase set the database client
func WithDatabase(db *gorm.DB) Option {
	return func(s *service) {
		s.db = db
	}
}

// WithCache set the cache client
func WithCache(cache *cache.Cache) Option {
	return func(s *service) {
		s.cache = cache
	}
}

// WithSchemas set the json schema registry
func WithSchemas(schemas *schemas.Registry) Option {
	return func(s *service) {
		s.schemas = schemas
	}
}

// WithPluginStore set the plugin store
func WithPluginStore(plugins *pluginstore.Store) Option {
	return func(s *service) {
		s.plugins = plugins
	}
}

// WithArtifactStore set the model and dataset store
func WithArtifactStore(artifacts *artifactstore.Store) Option {
	return func(s *service) {
		s.artifacts = artifacts
	}
}

// WithOrchestrator set the test run orchestrator
func WithOrchestrator(testRuns *testrun.Orchestrator) Option {
	return func(s *service) {
		s.testRuns = testRuns
	}
}

// WithWorkDir set the parent of temporary upload directories
func WithWorkDir(dir string) Option {
	return func(s *service) {
		s.workDir = dir
	}
}

// New returns a new Service instence
func New(options ...Option) Service {
	s := &service{}

	for _, opt := range options {
		opt(s)
	}

	return s
}
