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

package pluginstore

import (
	"context"
	"encoding/json"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
	"github.com/aiverify-foundation/aiverify-sub001/internal/contentstore"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/internal/mdx"
	"github.com/aiverify-foundation/aiverify-sub001/internal/schemas"
)

const (
	// DefaultCompileConcurrency bounds parallel MDX compilations of one plugin.
	DefaultCompileConcurrency = 4
)

// ChangeHook is called after the stored content of a plugin changed. The gid
// is empty when every plugin was removed.
type ChangeHook func(ctx context.Context, gid string)

// Store owns the lifecycle of plugin packages: rows, stored bytes and
// registered algorithm providers.
type Store struct {
	db       *gorm.DB
	content  *contentstore.Store
	registry *capability.Registry
	schemas  *schemas.Registry
	compiler mdx.Compiler

	workDir            string
	compileConcurrency int
	hooks              []ChangeHook
}

// Option is a functional option for configuring the store.
type Option func(s *Store)

// WithWorkDir sets the parent of temporary staging directories.
func WithWorkDir(dir string) Option {
	return func(s *Store) {
		s.workDir = dir
	}
}

// WithCompileConcurrency sets how many MDX files are compiled at once.
func WithCompileConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.compileConcurrency = n
		}
	}
}

// WithChangeHook registers a hook called after a plugin is installed or removed.
func WithChangeHook(hook ChangeHook) Option {
	return func(s *Store) {
		s.hooks = append(s.hooks, hook)
	}
}

// New returns a plugin store.
func New(db *gorm.DB, content *contentstore.Store, registry *capability.Registry, schemas *schemas.Registry, compiler mdx.Compiler, opts ...Option) *Store {
	s := &Store{
		db:                 db,
		content:            content,
		registry:           registry,
		schemas:            schemas,
		compiler:           compiler,
		compileConcurrency: DefaultCompileConcurrency,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetPlugin returns a plugin with its components.
func (s *Store) GetPlugin(ctx context.Context, gid string) (*models.Plugin, error) {
	plugin := models.Plugin{}
	if err := s.db.WithContext(ctx).
		Preload("Algorithms").
		Preload("Widgets").
		Preload("InputBlocks").
		Preload("Templates").
		First(&plugin, "gid = ?", gid).Error; err != nil {
		if dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
			return nil, dferrors.ReferenceNotFound("plugin %s not found", gid)
		}
		return nil, err
	}

	return &plugin, nil
}

// ListPlugins returns every plugin with its components, ordered by gid.
func (s *Store) ListPlugins(ctx context.Context) ([]models.Plugin, error) {
	var plugins []models.Plugin
	if err := s.db.WithContext(ctx).
		Preload("Algorithms").
		Preload("Widgets").
		Preload("InputBlocks").
		Preload("Templates").
		Order("gid").
		Find(&plugins).Error; err != nil {
		return nil, err
	}

	return plugins, nil
}

// GetAlgorithm returns the algorithm gid:cid.
func (s *Store) GetAlgorithm(ctx context.Context, gid, cid string) (*models.Algorithm, error) {
	algorithm := models.Algorithm{}
	if err := s.db.WithContext(ctx).First(&algorithm, "id = ?", capability.AlgorithmID(gid, cid)).Error; err != nil {
		if dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
			return nil, dferrors.ReferenceNotFound("algorithm %s not found", capability.AlgorithmID(gid, cid))
		}
		return nil, err
	}

	return &algorithm, nil
}

// LoadAlgorithms registers a provider for every stored algorithm.
func (s *Store) LoadAlgorithms(ctx context.Context) (int, error) {
	var algorithms []models.Algorithm
	if err := s.db.WithContext(ctx).Find(&algorithms).Error; err != nil {
		return 0, err
	}

	registered := 0
	for i := range algorithms {
		if s.registerAlgorithm(&algorithms[i]) {
			registered++
		}
	}

	return registered, nil
}

// registerAlgorithm points the registry at the published algorithm folder when
// the content store is local. Remote stores only expose metadata here; workers
// fetch the sub-package themselves.
func (s *Store) registerAlgorithm(algorithm *models.Algorithm) bool {
	log := logger.WithComponent(algorithm.GID, algorithm.CID)

	if pluginKey, err := contentstore.PluginKey(algorithm.GID); err == nil {
		if pluginDir, ok := s.content.LocalDir(pluginKey); ok {
			dir := filepath.Join(pluginDir, filepath.FromSlash(algorithm.AlgoDir))
			if _, err := s.registry.DiscoverAlgorithm(algorithm.GID, dir, ""); err != nil {
				log.Warnf("register algorithm failed: %v", err)
				return false
			}
			return true
		}
	}

	manifest, err := algorithmManifest(algorithm)
	if err != nil {
		log.Warnf("decode algorithm meta failed: %v", err)
		return false
	}

	p, err := s.registry.NewAlgorithmProvider(manifest)
	if err != nil {
		log.Warnf("create algorithm provider failed: %v", err)
		return false
	}

	if err := s.registry.Register(p); err != nil {
		log.Warnf("register algorithm failed: %v", err)
		return false
	}

	return true
}

func algorithmManifest(algorithm *models.Algorithm) (*capability.AlgorithmManifest, error) {
	meta := &capability.AlgorithmMeta{}
	if len(algorithm.MetaJSON) > 0 {
		if err := json.Unmarshal(algorithm.MetaJSON, meta); err != nil {
			return nil, err
		}
	}

	meta.CID = algorithm.CID
	if meta.Language == "" {
		meta.Language = algorithm.Language
	}

	return &capability.AlgorithmManifest{
		GID:  algorithm.GID,
		CID:  algorithm.CID,
		Meta: meta,
		Layout: &capability.AlgorithmLayout{
			Script:     algorithm.Script,
			ModuleName: algorithm.ModuleName,
		},
		InputSchema:  algorithm.InputSchema,
		OutputSchema: algorithm.OutputSchema,
	}, nil
}

func (s *Store) unregisterAlgorithms(algorithms []models.Algorithm) {
	for _, algorithm := range algorithms {
		s.registry.RemovePlugin(capability.PluginTypeAlgorithm, algorithm.ID)
	}
}

func (s *Store) notify(ctx context.Context, gid string) {
	for _, hook := range s.hooks {
		hook(ctx, gid)
	}
}
