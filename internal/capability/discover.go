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

package capability

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
)

const (
	pluginMetaFileName = "plugin.meta.json"
	algorithmsDirName  = "algorithms"
)

var skippedDirs = map[string]struct{}{
	"node_modules": {},
	"__pycache__":  {},
	"venv":         {},
	".venv":        {},
}

// Discover walks root for provider manifests and plugin folders and registers
// what it finds. When id is set only the provider with that id, or the
// algorithm gid:cid, is registered. Errors are logged and the walk continues.
func (r *Registry) Discover(ctx context.Context, root string, id string) (int, error) {
	if _, err := os.Stat(root); err != nil {
		return 0, err
	}

	registered := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnf("discover %s: %v", path, err)
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if _, ok := skippedDirs[d.Name()]; ok || (path != root && strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		switch d.Name() {
		case ManifestFileName:
			n, err := r.discoverProvider(path, id)
			if err != nil {
				logger.Warnf("discover provider %s: %v", path, err)
				return nil
			}
			registered += n
		case pluginMetaFileName:
			registered += r.discoverPlugin(filepath.Dir(path), id)
		}

		return nil
	})

	return registered, err
}

func (r *Registry) discoverProvider(path, id string) (int, error) {
	m, err := LoadProviderManifest(path)
	if err != nil {
		return 0, err
	}

	if id != "" && m.ID != id {
		return 0, nil
	}

	p, err := NewExecProvider(m, manifestDir(path))
	if err != nil {
		return 0, err
	}

	if err := r.Register(p); err != nil {
		return 0, err
	}

	return 1, nil
}

func (r *Registry) discoverPlugin(dir, id string) int {
	data, err := os.ReadFile(filepath.Join(dir, pluginMetaFileName))
	if err != nil {
		logger.Warnf("discover plugin %s: %v", dir, err)
		return 0
	}

	var meta struct {
		GID string `json:"gid"`
	}
	if err := json.Unmarshal(data, &meta); err != nil || meta.GID == "" {
		logger.Warnf("discover plugin %s: invalid %s", dir, pluginMetaFileName)
		return 0
	}

	entries, err := os.ReadDir(filepath.Join(dir, algorithmsDirName))
	if err != nil {
		return 0
	}

	registered := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		p, err := r.DiscoverAlgorithm(meta.GID, filepath.Join(dir, algorithmsDirName, entry.Name()), id)
		if err != nil {
			logger.WithPlugin(meta.GID).Warnf("discover algorithm %s: %v", entry.Name(), err)
			continue
		}

		if p != nil {
			registered++
		}
	}

	return registered
}

// DiscoverAlgorithm registers the algorithm folder of plugin gid. When id is set
// and does not match, nothing is registered and the provider is nil.
func (r *Registry) DiscoverAlgorithm(gid, dir, id string) (AlgorithmProvider, error) {
	manifest, err := LoadAlgorithmManifest(gid, dir)
	if err != nil {
		return nil, err
	}

	if id != "" && AlgorithmID(manifest.GID, manifest.CID) != id {
		return nil, nil
	}

	p, err := r.NewAlgorithmProvider(manifest)
	if err != nil {
		return nil, err
	}

	if err := r.Register(p); err != nil {
		return nil, errors.Wrapf(err, "register %s", p.ID())
	}

	return p, nil
}
