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
	"net/http"
	"time"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/config"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/metrics"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/router"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/service"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
)

const (
	gracefulStopTimeout = 10 * time.Second
)

type Server struct {
	// Server configuration
	config *config.Config

	// Shared collaborators
	env *Environment

	// REST server
	restServer *http.Server

	// Metrics server
	metricsServer *http.Server
}

func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	env, err := NewEnvironment(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Install stock plugins and register stored algorithms
	if err := env.Plugins.Bootstrap(ctx, cfg.Plugin.StockDir); err != nil {
		env.Close() // nolint: errcheck
		return nil, err
	}

	// Initialize REST server
	restService := service.New(
		service.WithDatabase(env.Database.DB),
		service.WithCache(env.Cache),
		service.WithSchemas(env.Schemas),
		service.WithPluginStore(env.Plugins),
		service.WithArtifactStore(env.Artifacts),
		service.WithOrchestrator(env.Orchestrator),
		service.WithWorkDir(cfg.Server.WorkDir),
	)
	router, err := router.Init(cfg, restService)
	if err != nil {
		env.Close() // nolint: errcheck
		return nil, err
	}

	s := &Server{
		config: cfg,
		env:    env,
		restServer: &http.Server{
			Addr:    cfg.ServerAddr(),
			Handler: router,
		},
	}

	// Initialize metrics server
	if cfg.Metrics.Enable {
		s.metricsServer = metrics.New(&cfg.Metrics)
	}

	return s, nil
}

func (s *Server) Serve() error {
	// Started metrics server
	if s.metricsServer != nil {
		go func() {
			logger.Infof("started metrics server at %s", s.metricsServer.Addr)
			if err := s.metricsServer.ListenAndServe(); err != nil {
				if err == http.ErrServerClosed {
					return
				}
				logger.Fatalf("metrics server closed unexpect: %+v", err)
			}
		}()
	}

	// Started REST server
	logger.Infof("started rest server at %s", s.restServer.Addr)
	if err := s.restServer.ListenAndServe(); err != nil {
		if err == http.ErrServerClosed {
			return nil
		}
		logger.Errorf("rest server closed unexpect: %+v", err)
		return err
	}

	return nil
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulStopTimeout)
	defer cancel()

	// Stop metrics server
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			logger.Errorf("metrics server failed to stop: %+v", err)
		}
		logger.Info("metrics server closed under request")
	}

	// Stop REST server
	if err := s.restServer.Shutdown(ctx); err != nil {
		logger.Errorf("rest server failed to stop: %+v", err)
	}
	logger.Info("rest server closed under request")

	if err := s.env.Close(); err != nil {
		logger.Errorf("environment failed to close: %+v", err)
	}
}
