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
	"os"
	"path/filepath"
	"strconv"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/metrics"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

const defaultPluginVersion = "1.0.0"

// InstallPlugin installs the plugin directory dir, replacing an existing
// plugin of the same gid. The new package is validated and compiled before
// the existing one is touched. When committing the new package fails, the
// previous package is restored with its original stock flag.
func (s *Store) InstallPlugin(ctx context.Context, dir string, isStock bool) (*models.Plugin, error) {
	stock := strconv.FormatBool(isStock)
	metrics.PluginInstallCount.WithLabelValues(stock).Inc()
	plugin, err := s.installPlugin(ctx, dir, isStock)
	if err != nil {
		metrics.PluginInstallFailureCount.WithLabelValues(stock).Inc()
		return nil, err
	}

	return plugin, nil
}

func (s *Store) installPlugin(ctx context.Context, dir string, isStock bool) (*models.Plugin, error) {
	validated, err := s.ValidatePluginDirectory(dir)
	if err != nil {
		return nil, err
	}

	gid := validated.Meta.GID
	log := logger.WithPlugin(gid)

	var plugin *models.Plugin
	err = fileutils.WithTempDir(s.workDir, "install-*", func(tmp string) error {
		staged, err := s.stage(ctx, validated, filepath.Join(tmp, "stage"))
		if err != nil {
			return err
		}

		existing := models.Plugin{}
		if err := s.db.WithContext(ctx).First(&existing, "gid = ?", gid).Error; err != nil {
			if !dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
				return err
			}

			plugin, err = s.commit(ctx, staged, isStock)
			return err
		}

		backup := filepath.Join(tmp, "backup")
		if err := s.content.RestorePlugin(ctx, gid, backup); err != nil {
			return err
		}

		if err := s.DeletePlugin(ctx, gid); err != nil {
			return err
		}

		plugin, err = s.commit(ctx, staged, isStock)
		if err != nil {
			log.Warnf("install failed, restore previous package: %v", err)
			if _, rerr := s.ScanPluginDirectory(ctx, backup, filepath.Join(tmp, "restore"), existing.IsStock); rerr != nil {
				log.Errorf("restore previous package failed: %v", rerr)
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return plugin, nil
}

// ScanAlgorithmDirectory installs a single algorithm folder. The algorithm
// joins the plugin named by its gid, which is created when missing.
func (s *Store) ScanAlgorithmDirectory(ctx context.Context, dir string) (*models.Plugin, error) {
	algorithm, err := s.ValidateAlgorithmDirectory(dir, "")
	if err != nil {
		return nil, err
	}

	gid, cid := algorithm.Manifest.GID, algorithm.Manifest.CID

	existing := models.Plugin{}
	found := true
	if err := s.db.WithContext(ctx).First(&existing, "gid = ?", gid).Error; err != nil {
		if !dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
			return nil, err
		}
		found = false
	}

	var plugin *models.Plugin
	err = fileutils.WithTempDir(s.workDir, "algorithm-*", func(tmp string) error {
		pluginDir := filepath.Join(tmp, "plugin")
		isStock := false
		if found {
			if err := s.content.RestorePlugin(ctx, gid, pluginDir); err != nil {
				return err
			}
			isStock = existing.IsStock
		} else if err := writePluginMeta(pluginDir, algorithm); err != nil {
			return err
		}

		target := filepath.Join(pluginDir, AlgorithmsDir, cid)
		if err := os.RemoveAll(target); err != nil {
			return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "replace algorithm %s", cid)
		}

		if err := fileutils.CopyDir(target, dir); err != nil {
			return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "copy algorithm %s", cid)
		}

		plugin, err = s.InstallPlugin(ctx, pluginDir, isStock)
		return err
	})
	if err != nil {
		return nil, err
	}

	return plugin, nil
}

// writePluginMeta creates a minimal plugin package around one algorithm.
func writePluginMeta(dir string, algorithm *ValidatedAlgorithm) error {
	meta := algorithm.Manifest.Meta
	pluginMeta := PluginMeta{
		GID:         algorithm.Manifest.GID,
		Version:     meta.Version,
		Name:        meta.Name,
		Author:      meta.Author,
		Description: meta.Description,
	}

	if pluginMeta.Version == "" {
		pluginMeta.Version = defaultPluginVersion
	}

	data, err := json.MarshalIndent(pluginMeta, "", "  ")
	if err != nil {
		return dferrors.Wrap(dferrors.CodeInternalInvariant, err, "encode plugin meta")
	}

	if err := fileutils.MkdirAll(dir); err != nil {
		return dferrors.Wrap(dferrors.CodeStoreFailure, err, "create plugin directory")
	}

	if err := os.WriteFile(filepath.Join(dir, PluginMetaFileName), data, 0644); err != nil {
		return dferrors.Wrap(dferrors.CodeStoreFailure, err, "write plugin meta")
	}

	return nil
}
