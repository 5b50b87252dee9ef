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

	"github.com/hashicorp/go-multierror"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

// ScanStockPlugins removes plugins no test result refers to, then installs
// every plugin directory under root as a stock plugin. Directories are
// installed independently; failures are collected and returned together.
func (s *Store) ScanStockPlugins(ctx context.Context, root string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, dferrors.Wrapf(dferrors.CodeInputValidation, err, "read stock plugin directory")
	}

	var referenced []string
	if err := s.db.WithContext(ctx).Model(&models.TestResult{}).Distinct().Pluck("gid", &referenced).Error; err != nil {
		return 0, err
	}

	var gids []string
	if err := s.db.WithContext(ctx).Model(&models.Plugin{}).Where("gid NOT IN ?", append(referenced, "")).Pluck("gid", &gids).Error; err != nil {
		return 0, err
	}

	for _, gid := range gids {
		if err := s.DeletePlugin(ctx, gid); err != nil {
			return 0, err
		}
	}

	var (
		installed int
		errs      *multierror.Error
	)
	for _, entry := range entries {
		if !isStockPluginDir(entry) {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		if _, err := s.InstallPlugin(ctx, dir, true); err != nil {
			logger.Errorf("install stock plugin %s failed: %v", entry.Name(), err)
			errs = multierror.Append(errs, dferrors.Wrapf(dferrors.CodeOf(err), err, "stock plugin %s", entry.Name()))
			continue
		}
		installed++
	}

	logger.Infof("installed %d stock plugins from %s", installed, root)
	return installed, errs.ErrorOrNil()
}

func isStockPluginDir(entry os.DirEntry) bool {
	name := entry.Name()
	if !entry.IsDir() || name == UserDefinedFilesDir || name == "" {
		return false
	}

	c := name[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// Bootstrap installs the stock plugins when no plugin exists yet, prunes
// stored packages without a plugin row and registers every stored algorithm.
func (s *Store) Bootstrap(ctx context.Context, stockDir string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Plugin{}).Count(&count).Error; err != nil {
		return err
	}

	if count == 0 && stockDir != "" {
		if _, err := s.ScanStockPlugins(ctx, stockDir); err != nil {
			logger.Warnf("scan stock plugins: %v", err)
		}
	}

	if err := s.pruneOrphanPackages(ctx); err != nil {
		logger.Warnf("prune orphan plugin packages: %v", err)
	}

	registered, err := s.LoadAlgorithms(ctx)
	if err != nil {
		return err
	}

	logger.Infof("registered %d algorithms", registered)
	return nil
}

// pruneOrphanPackages drops stored plugin content whose plugin row is gone,
// which an install interrupted between the store and the database leaves.
func (s *Store) pruneOrphanPackages(ctx context.Context) error {
	stored, err := s.content.ListPluginGIDs(ctx)
	if err != nil {
		return err
	}

	var known []string
	if err := s.db.WithContext(ctx).Model(&models.Plugin{}).Pluck("gid", &known).Error; err != nil {
		return err
	}

	rows := make(map[string]struct{}, len(known))
	for _, gid := range known {
		rows[gid] = struct{}{}
	}

	var result error
	for _, gid := range stored {
		if _, ok := rows[gid]; ok {
			continue
		}

		logger.Infof("remove orphan plugin package %s", gid)
		if err := s.content.DeletePlugin(ctx, gid); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result
}
