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
	"os"
	"path/filepath"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/internal/contentstore"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

// UploadPlugin installs a zipped plugin package. The package root is either
// the archive root or its single top level folder.
func (s *Store) UploadPlugin(ctx context.Context, zipPath string) (*models.Plugin, error) {
	var plugin *models.Plugin
	if err := fileutils.WithTempDir(s.workDir, "upload-*", func(tmp string) error {
		if err := fileutils.Unzip(zipPath, tmp); err != nil {
			return dferrors.Wrap(dferrors.CodeInputValidation, err, "unpack plugin package")
		}

		root, err := packageRoot(tmp)
		if err != nil {
			return err
		}

		plugin, err = s.InstallPlugin(ctx, root, false)
		return err
	}); err != nil {
		return nil, err
	}

	return plugin, nil
}

func packageRoot(dir string) (string, error) {
	if fileutils.IsRegularFile(filepath.Join(dir, PluginMetaFileName)) {
		return dir, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", dferrors.Wrap(dferrors.CodeStoreFailure, err, "read plugin package")
	}

	if len(entries) == 1 && entries[0].IsDir() {
		root := filepath.Join(dir, entries[0].Name())
		if fileutils.IsRegularFile(filepath.Join(root, PluginMetaFileName)) {
			return root, nil
		}
	}

	return "", dferrors.InputValidation("missing %s", PluginMetaFileName)
}

// GetPluginZip returns the stored package of a plugin.
func (s *Store) GetPluginZip(ctx context.Context, gid string) ([]byte, error) {
	if _, err := s.GetPlugin(ctx, gid); err != nil {
		return nil, err
	}

	key, err := contentstore.PluginZipKey(gid)
	if err != nil {
		return nil, err
	}

	return s.content.ReadAll(ctx, key)
}

// GetAlgorithmZip returns the stored sub-package of an algorithm.
func (s *Store) GetAlgorithmZip(ctx context.Context, gid, cid string) ([]byte, error) {
	if _, err := s.GetAlgorithm(ctx, gid, cid); err != nil {
		return nil, err
	}

	key, err := contentstore.AlgorithmZipKey(gid, cid)
	if err != nil {
		return nil, err
	}

	return s.content.ReadAll(ctx, key)
}

// GetBundle returns the compiled MDX bundle of a widget or input block.
// Summary bundles only exist for input blocks.
func (s *Store) GetBundle(ctx context.Context, gid, cid string, summary bool) ([]byte, error) {
	id := models.ComponentID(gid, cid)
	db := s.db.WithContext(ctx)

	var inputBlocks int64
	if err := db.Model(&models.InputBlock{}).Where("id = ?", id).Count(&inputBlocks).Error; err != nil {
		return nil, err
	}

	if inputBlocks == 0 {
		var widgets int64
		if err := db.Model(&models.Widget{}).Where("id = ?", id).Count(&widgets).Error; err != nil {
			return nil, err
		}

		if widgets == 0 || summary {
			return nil, dferrors.ReferenceNotFound("bundle of %s not found", id)
		}
	}

	return s.content.GetBundle(ctx, gid, cid, summary)
}
