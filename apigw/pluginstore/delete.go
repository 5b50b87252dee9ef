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

	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
)

// DeletePlugin removes a plugin, its components and the project templates
// copied from it, then its stored content. Content store failures are logged.
func (s *Store) DeletePlugin(ctx context.Context, gid string) error {
	plugin, err := s.GetPlugin(ctx, gid)
	if err != nil {
		return err
	}

	templateIDs := make([]string, 0, len(plugin.Templates))
	for _, template := range plugin.Templates {
		templateIDs = append(templateIDs, template.ID)
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Algorithm{}, &models.Widget{}, &models.InputBlock{}, &models.Template{}} {
			if err := tx.Where("gid = ?", gid).Delete(model).Error; err != nil {
				return err
			}
		}

		if len(templateIDs) > 0 {
			if err := tx.Where("template_id IN ?", templateIDs).Delete(&models.ProjectTemplate{}).Error; err != nil {
				return err
			}
		}

		return tx.Where("gid = ?", gid).Delete(&models.Plugin{}).Error
	}); err != nil {
		return err
	}

	s.unregisterAlgorithms(plugin.Algorithms)

	log := logger.WithPlugin(gid)
	if err := s.content.DeletePlugin(ctx, gid); err != nil {
		log.Warnf("delete stored content failed: %v", err)
	}

	s.notify(ctx, gid)
	log.Info("deleted plugin")
	return nil
}

// DeleteAllPlugins removes every plugin row, every project template copied
// from a plugin and all stored plugin content.
func (s *Store) DeleteAllPlugins(ctx context.Context) error {
	var algorithms []models.Algorithm
	if err := s.db.WithContext(ctx).Find(&algorithms).Error; err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&models.Algorithm{}, &models.Widget{}, &models.InputBlock{}, &models.Template{}, &models.Plugin{}} {
			if err := global.Delete(model).Error; err != nil {
				return err
			}
		}

		return tx.Where("template_id IS NOT NULL AND template_id <> ''").Delete(&models.ProjectTemplate{}).Error
	}); err != nil {
		return err
	}

	s.unregisterAlgorithms(algorithms)

	if err := s.content.DeleteAllPlugins(ctx); err != nil {
		logger.Warnf("delete stored plugin content failed: %v", err)
	}

	s.notify(ctx, "")
	logger.Info("deleted all plugins")
	return nil
}
