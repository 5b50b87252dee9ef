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

package apigw

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/artifactstore"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/cache"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/config"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/database"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/pluginstore"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/testrun"
	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
	"github.com/aiverify-foundation/aiverify-sub001/internal/capability/providers"
	"github.com/aiverify-foundation/aiverify-sub001/internal/contentstore"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/job"
	"github.com/aiverify-foundation/aiverify-sub001/internal/mdx"
	"github.com/aiverify-foundation/aiverify-sub001/internal/schemas"
	"github.com/aiverify-foundation/aiverify-sub001/internal/validator"
)

// Environment holds the collaborators shared by the api gateway and the worker.
type Environment struct {
	Config       *config.Config
	Database     *database.Database
	Cache        *cache.Cache
	Queue        job.Queue
	Content      *contentstore.Store
	Registry     *capability.Registry
	Schemas      *schemas.Registry
	Compiler     mdx.Compiler
	Validator    validator.Validator
	Plugins      *pluginstore.Store
	Artifacts    *artifactstore.Store
	Orchestrator *testrun.Orchestrator
}

// NewEnvironment builds every collaborator from cfg and makes sure the work
// stream exists.
func NewEnvironment(ctx context.Context, cfg *config.Config) (*Environment, error) {
	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}

	env := &Environment{
		Config:   cfg,
		Database: db,
		Cache:    cache.New(&cfg.Cache, db.RDB),
	}

	// Blocking stream reads hold a connection, keep them off the cache client
	if env.Queue, err = job.New(&job.Config{
		Addrs:    []string{cfg.QueueAddr()},
		Username: cfg.Queue.Username,
		Password: cfg.Queue.Password,
		DB:       cfg.Queue.DB,
	}, job.WithBlockTimeout(cfg.Worker.BlockTimeout)); err != nil {
		if cerr := env.Close(); cerr != nil {
			logger.Warnf("close environment: %v", cerr)
		}
		return nil, err
	}

	if err := env.init(ctx); err != nil {
		if cerr := env.Close(); cerr != nil {
			logger.Warnf("close environment: %v", cerr)
		}
		return nil, err
	}

	return env, nil
}

func (e *Environment) init(ctx context.Context) error {
	cfg := e.Config

	// Initialize content store
	content, err := contentstore.New(ctx, contentstore.Config{
		URL:              cfg.ObjectStorage.URL,
		Region:           cfg.ObjectStorage.Region,
		Endpoint:         cfg.ObjectStorage.Endpoint,
		AccessKey:        cfg.ObjectStorage.AccessKey,
		SecretKey:        cfg.ObjectStorage.SecretKey,
		S3ForcePathStyle: cfg.ObjectStorage.S3ForcePathStyle,
	})
	if err != nil {
		return err
	}
	e.Content = content

	// Initialize schemas
	if e.Schemas, err = schemas.New(cfg.Plugin.SchemaDir); err != nil {
		return err
	}

	// Initialize capability registry
	e.Registry = capability.New(capability.WithInterpreter(capability.LanguagePython, cfg.Plugin.PythonInterpreter))
	if err := providers.RegisterBuiltins(e.Registry); err != nil {
		return err
	}

	for _, dir := range cfg.Plugin.ProviderDirs {
		n, err := e.Registry.Discover(ctx, dir, "")
		if err != nil {
			logger.Warnf("discover providers in %s: %v", dir, err)
			continue
		}
		logger.Infof("discovered %d providers in %s", n, dir)
	}

	e.Compiler = mdx.New(mdx.Config{
		NpxPath:               cfg.MDX.NpxPath,
		CompilerScript:        cfg.MDX.CompilerScript,
		SummaryCompilerScript: cfg.MDX.SummaryCompilerScript,
		Timeout:               cfg.MDX.Timeout,
	})
	e.Validator = validator.New(e.Registry)

	// Initialize stores
	e.Plugins = pluginstore.New(e.Database.DB, e.Content, e.Registry, e.Schemas, e.Compiler,
		pluginstore.WithWorkDir(cfg.Server.WorkDir),
		pluginstore.WithCompileConcurrency(cfg.MDX.Concurrency),
		pluginstore.WithChangeHook(e.Cache.InvalidatePlugin),
	)

	e.Artifacts = artifactstore.New(e.Database.DB, e.Content, e.Validator)

	// Initialize orchestrator
	e.Orchestrator = testrun.New(e.Database.DB, e.Queue, e.Schemas, e.Content)
	return e.Orchestrator.Start(ctx)
}

// Close releases the database and queue connections.
func (e *Environment) Close() error {
	var result error
	if e.Queue != nil {
		if err := e.Queue.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if e.Database != nil && e.Database.RDB != nil {
		if err := e.Database.RDB.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if e.Database != nil && e.Database.DB != nil {
		sqlDB, err := e.Database.DB.DB()
		if err != nil {
			result = multierror.Append(result, err)
		} else if err := sqlDB.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result
}
