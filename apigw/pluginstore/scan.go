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
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
	"github.com/aiverify-foundation/aiverify-sub001/internal/contentstore"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/internal/mdx"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

// stagedPlugin is a validated plugin whose algorithm folders and MDX bundles
// are ready under a work directory.
type stagedPlugin struct {
	*ValidatedPlugin
	algorithmDirs map[string]string
	bundleDir     string
}

type compileJob struct {
	name   string
	script string
	kind   mdx.Kind
	output string
}

// ScanPluginDirectory validates a plugin directory, stages it under workDir
// and commits rows and content in one step.
func (s *Store) ScanPluginDirectory(ctx context.Context, dir, workDir string, isStock bool) (*models.Plugin, error) {
	validated, err := s.ValidatePluginDirectory(dir)
	if err != nil {
		return nil, err
	}

	staged, err := s.stage(ctx, validated, workDir)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, staged, isStock)
}

func (s *Store) stage(ctx context.Context, validated *ValidatedPlugin, workDir string) (*stagedPlugin, error) {
	staged := &stagedPlugin{
		ValidatedPlugin: validated,
		algorithmDirs:   make(map[string]string, len(validated.Algorithms)),
		bundleDir:       filepath.Join(workDir, contentstore.MdxBundlesDir),
	}

	for _, algorithm := range validated.Algorithms {
		cid := algorithm.Manifest.CID
		target := filepath.Join(workDir, AlgorithmsDir, cid)
		if err := fileutils.CopyDir(target, algorithm.Dir); err != nil {
			return nil, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "stage algorithm %s", cid)
		}
		staged.algorithmDirs[cid] = target
	}

	if err := fileutils.MkdirAll(staged.bundleDir); err != nil {
		return nil, dferrors.Wrap(dferrors.CodeStoreFailure, err, "create bundle directory")
	}

	var jobs []compileJob
	for _, widget := range validated.Widgets {
		jobs = append(jobs, compileJob{
			name:   "widget " + widget.Meta.CID,
			script: widget.MDXPath,
			kind:   mdx.KindDefault,
			output: filepath.Join(staged.bundleDir, widget.Meta.CID+contentstore.BundleSuffix),
		})
	}

	for _, inputBlock := range validated.InputBlocks {
		jobs = append(jobs, compileJob{
			name:   "input block " + inputBlock.Meta.CID,
			script: inputBlock.MDXPath,
			kind:   mdx.KindDefault,
			output: filepath.Join(staged.bundleDir, inputBlock.Meta.CID+contentstore.BundleSuffix),
		}, compileJob{
			name:   "input block summary " + inputBlock.Meta.CID,
			script: inputBlock.SummaryMDXPath,
			kind:   mdx.KindSummary,
			output: filepath.Join(staged.bundleDir, inputBlock.Meta.CID+contentstore.SummaryBundleSuffix),
		})
	}

	if err := s.compileBundles(ctx, validated.Meta.GID, jobs); err != nil {
		return nil, err
	}

	return staged, nil
}

func (s *Store) compileBundles(ctx context.Context, gid string, jobs []compileJob) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.compileConcurrency)

	for _, job := range jobs {
		job := job
		eg.Go(func() error {
			bundle, err := s.compiler.Compile(ctx, job.script, job.kind)
			if err != nil {
				return dferrors.Wrapf(dferrors.CodeInputValidation, err, "compile %s", job.name)
			}

			if err := os.WriteFile(job.output, bundle, 0644); err != nil {
				return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "write bundle of %s", job.name)
			}

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		logger.WithPlugin(gid).Warnf("compile mdx failed: %v", err)
		return err
	}

	return nil
}

// commit stores the staged content and inserts the rows in one transaction.
// Content published before a failed transaction is removed again.
func (s *Store) commit(ctx context.Context, staged *stagedPlugin, isStock bool) (*models.Plugin, error) {
	gid := staged.Meta.GID
	log := logger.WithPlugin(gid)

	plugin, err := staged.toModel(isStock)
	if err != nil {
		return nil, err
	}

	published := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Plugin{}).Where("gid = ?", gid).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return dferrors.StateConflict("plugin %s already exists", gid)
		}

		result, err := s.content.CommitPlugin(ctx, contentstore.PluginCommit{
			GID:           gid,
			SourceDir:     staged.Dir,
			AlgorithmDirs: staged.algorithmDirs,
			BundleDir:     staged.bundleDir,
		})
		if err != nil {
			return err
		}
		published = true

		plugin.ZipHash = result.ZipHash
		for i := range plugin.Algorithms {
			plugin.Algorithms[i].ZipHash = result.AlgorithmHashes[plugin.Algorithms[i].CID]
		}

		if err := tx.Create(plugin).Error; err != nil {
			return err
		}

		for _, template := range staged.Templates {
			templateID := models.ComponentID(gid, template.Meta.CID)
			if err := tx.Create(&models.ProjectTemplate{
				Name:        template.Meta.Name,
				Description: template.Meta.Description,
				TemplateID:  &templateID,
				Data:        datatypes.JSON(template.Data),
			}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if published {
			if derr := s.content.DeletePlugin(ctx, gid); derr != nil {
				log.Warnf("remove published content failed: %v", derr)
			}
		}
		return nil, err
	}

	for i := range plugin.Algorithms {
		s.registerAlgorithm(&plugin.Algorithms[i])
	}

	s.notify(ctx, gid)
	log.Infof("installed plugin %s, stock %t, %d algorithms, %d widgets, %d input blocks, %d templates",
		plugin.Version, isStock, len(plugin.Algorithms), len(plugin.Widgets), len(plugin.InputBlocks), len(plugin.Templates))
	return plugin, nil
}

func (v *ValidatedPlugin) toModel(isStock bool) (*models.Plugin, error) {
	gid := v.Meta.GID
	plugin := &models.Plugin{
		GID:         gid,
		Version:     v.Meta.Version,
		Name:        v.Meta.Name,
		Author:      v.Meta.Author,
		Description: v.Meta.Description,
		URL:         v.Meta.URL,
		MetaJSON:    datatypes.JSON(v.MetaJSON),
		IsStock:     isStock,
	}

	for _, algorithm := range v.Algorithms {
		meta := algorithm.Manifest.Meta
		plugin.Algorithms = append(plugin.Algorithms, models.Algorithm{
			Component: models.Component{
				ID:          capability.AlgorithmID(gid, meta.CID),
				GID:         gid,
				CID:         meta.CID,
				Name:        meta.Name,
				Version:     meta.Version,
				Author:      meta.Author,
				Description: meta.Description,
				Tags:        meta.Tags,
				MetaJSON:    datatypes.JSON(algorithm.MetaJSON),
			},
			ModelType:          strings.Join(meta.ModelType, ","),
			RequireGroundTruth: meta.RequireGroundTruth,
			InputSchema:        algorithm.Manifest.InputSchema,
			OutputSchema:       algorithm.Manifest.OutputSchema,
			AlgoDir:            path.Join(AlgorithmsDir, meta.CID),
			Language:           meta.Language,
			Script:             algorithm.Manifest.Layout.Script,
			ModuleName:         algorithm.Manifest.Layout.ModuleName,
		})
	}

	for _, widget := range v.Widgets {
		meta := widget.Meta
		size, err := jsonColumn(meta.WidgetSize)
		if err != nil {
			return nil, err
		}

		properties, err := jsonColumn(meta.Properties)
		if err != nil {
			return nil, err
		}

		mockData, err := jsonColumn(meta.MockData)
		if err != nil {
			return nil, err
		}

		dependencies, err := jsonColumn(meta.Dependencies)
		if err != nil {
			return nil, err
		}

		plugin.Widgets = append(plugin.Widgets, models.Widget{
			Component:     component(gid, meta.ComponentMeta, widget.MetaJSON),
			WidgetSize:    size,
			Properties:    properties,
			MockData:      mockData,
			Dependencies:  dependencies,
			DynamicHeight: meta.DynamicHeight,
		})
	}

	for _, inputBlock := range v.InputBlocks {
		meta := inputBlock.Meta
		width := meta.Width
		if width == "" {
			width = models.InputBlockWidthMD
		}

		plugin.InputBlocks = append(plugin.InputBlocks, models.InputBlock{
			Component:   component(gid, meta.ComponentMeta, inputBlock.MetaJSON),
			Group:       meta.Group,
			GroupNumber: meta.GroupNumber,
			Width:       width,
			FullScreen:  meta.FullScreen,
		})
	}

	for _, template := range v.Templates {
		plugin.Templates = append(plugin.Templates, models.Template{
			Component:    component(gid, template.Meta.ComponentMeta, template.MetaJSON),
			TemplateData: datatypes.JSON(template.Data),
		})
	}

	return plugin, nil
}

func component(gid string, meta ComponentMeta, metaJSON []byte) models.Component {
	return models.Component{
		ID:          models.ComponentID(gid, meta.CID),
		GID:         gid,
		CID:         meta.CID,
		Name:        meta.Name,
		Version:     meta.Version,
		Author:      meta.Author,
		Description: meta.Description,
		Tags:        meta.Tags,
		MetaJSON:    datatypes.JSON(metaJSON),
	}
}

// jsonColumn encodes v, writing empty lists instead of null.
func jsonColumn(v any) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, dferrors.Wrap(dferrors.CodeInternalInvariant, err, "encode json column")
	}

	if string(data) == "null" {
		return datatypes.JSON("[]"), nil
	}

	return datatypes.JSON(data), nil
}
